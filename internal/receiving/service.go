package receiving

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kechei-store/warehouse-api/internal/shared"
	"github.com/kechei-store/warehouse-api/internal/stock"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context) ([]GoodsReceivedNote, error)
	Get(ctx context.Context, id string) (GoodsReceivedNote, []GRNLine, error)
}

// AuditPort records committed mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MovementRecorder counts committed stock movements.
type MovementRecorder interface {
	CountMovement(movementType string)
}

// Service orchestrates goods receipt. One Receive call maps to exactly one
// store transaction: header, lines, stock increments and IN movements persist
// together or not at all.
type Service struct {
	repo    RepositoryPort
	ledger  stock.Ledger
	audit   AuditPort
	metrics MovementRecorder
}

// NewService constructs the receiving service.
func NewService(repo RepositoryPort, ledger stock.Ledger, audit AuditPort) *Service {
	return &Service{repo: repo, ledger: ledger, audit: audit}
}

// SetMovementRecorder attaches an optional movement counter.
func (s *Service) SetMovementRecorder(metrics MovementRecorder) {
	s.metrics = metrics
}

// Receive validates the request and posts the full receipt atomically. Lines
// are processed in submitted order; a later line for the same item observes
// the earlier line's effect because the ledger re-reads under lock per line.
func (s *Service) Receive(ctx context.Context, input CreateGRNInput) (GoodsReceivedNote, error) {
	if err := validateInput(input); err != nil {
		return GoodsReceivedNote{}, err
	}

	grn := GoodsReceivedNote{
		GRNNumber:          strings.TrimSpace(input.GRNNumber),
		SupplierID:         input.SupplierID,
		DeliveryNoteNumber: input.DeliveryNoteNumber,
		ReceivedDate:       input.ReceivedDate,
		ReceivedBy:         input.ReceivedBy,
		Notes:              input.Notes,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertGRN(ctx, grn)
		if err != nil {
			return err
		}
		grn.ID = id

		store := tx.Stock()
		for _, line := range input.Lines {
			if err := tx.InsertLine(ctx, GRNLine{
				GRNID:       id,
				ItemID:      line.ItemID,
				Quantity:    line.Quantity,
				ExpiryDate:  line.ExpiryDate,
				BatchNumber: line.BatchNumber,
				Notes:       line.Notes,
			}); err != nil {
				return err
			}
			_, err := s.ledger.Adjust(ctx, store, stock.AdjustmentRequest{
				ItemID:        line.ItemID,
				Delta:         line.Quantity,
				ReferenceType: stock.ReferenceGRN,
				ReferenceID:   id,
				PerformedBy:   input.ReceivedBy,
				Reason:        fmt.Sprintf("GRN %s", grn.GRNNumber),
				MovementDate:  input.ReceivedDate,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return GoodsReceivedNote{}, classify(err)
	}

	if s.metrics != nil {
		for range input.Lines {
			s.metrics.CountMovement(string(stock.MovementIn))
		}
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ReceivedBy,
			Action:   "grn:create",
			Entity:   "goods_received_note",
			EntityID: grn.ID,
			Meta:     map[string]any{"grn_number": grn.GRNNumber, "lines": len(input.Lines)},
		})
	}
	return grn, nil
}

// List returns all note headers.
func (s *Service) List(ctx context.Context) ([]GoodsReceivedNote, error) {
	return s.repo.List(ctx)
}

// Get returns one note with its lines.
func (s *Service) Get(ctx context.Context, id string) (GoodsReceivedNote, []GRNLine, error) {
	if id == "" {
		return GoodsReceivedNote{}, nil, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func validateInput(input CreateGRNInput) error {
	if strings.TrimSpace(input.GRNNumber) == "" {
		return fmt.Errorf("%w: grn number required", ErrValidation)
	}
	if input.ReceivedDate.IsZero() {
		return fmt.Errorf("%w: received date required", ErrValidation)
	}
	if input.ReceivedBy == "" {
		return fmt.Errorf("%w: received by required", ErrValidation)
	}
	if len(input.Lines) == 0 {
		return fmt.Errorf("%w: at least one line required", ErrValidation)
	}
	for _, line := range input.Lines {
		if line.ItemID == "" {
			return fmt.Errorf("%w: line item required", ErrValidation)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: line quantity must be positive", ErrValidation)
		}
	}
	return nil
}

// classify keeps the domain error taxonomy intact and folds everything else
// into the transaction-aborted bucket.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrDuplicateNumber),
		errors.Is(err, stock.ErrItemNotFound),
		errors.Is(err, stock.ErrInsufficientStock),
		errors.Is(err, stock.ErrInvalidQuantity):
		return err
	default:
		return fmt.Errorf("%w: %v", stock.ErrTransactionAborted, err)
	}
}
