package issuing

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
	List(ctx context.Context) ([]StockIssue, error)
	Get(ctx context.Context, id string) (StockIssue, []IssueLine, error)
}

// AuditPort records committed mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MovementRecorder counts committed stock movements.
type MovementRecorder interface {
	CountMovement(movementType string)
}

// Service orchestrates stock issues. One Issue call maps to exactly one store
// transaction: header, lines, stock decrements and OUT movements persist
// together or not at all.
type Service struct {
	repo    RepositoryPort
	ledger  stock.Ledger
	audit   AuditPort
	metrics MovementRecorder
}

// NewService constructs the issuing service.
func NewService(repo RepositoryPort, ledger stock.Ledger, audit AuditPort) *Service {
	return &Service{repo: repo, ledger: ledger, audit: audit}
}

// SetMovementRecorder attaches an optional movement counter.
func (s *Service) SetMovementRecorder(metrics MovementRecorder) {
	s.metrics = metrics
}

// Issue validates the request, checks availability across all lines up front
// and posts the full issue atomically. The up-front check fails fast before
// anything is written; the ledger repeats it per line under row locks, so a
// concurrent issue that drains an item between the two reads still rolls back.
func (s *Service) Issue(ctx context.Context, input CreateIssueInput) (StockIssue, error) {
	if err := validateInput(input); err != nil {
		return StockIssue{}, err
	}

	issue := StockIssue{
		IssueNumber:  strings.TrimSpace(input.IssueNumber),
		DepartmentID: input.DepartmentID,
		IssuedTo:     strings.TrimSpace(input.IssuedTo),
		IssuedBy:     input.IssuedBy,
		IssueDate:    input.IssueDate,
		Purpose:      input.Purpose,
		Notes:        input.Notes,
		Status:       StatusIssued,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		store := tx.Stock()
		if err := s.checkAvailability(ctx, store, input.Lines); err != nil {
			return err
		}

		id, err := tx.InsertIssue(ctx, issue)
		if err != nil {
			return err
		}
		issue.ID = id

		for _, line := range input.Lines {
			if err := tx.InsertLine(ctx, IssueLine{
				IssueID:           id,
				ItemID:            line.ItemID,
				QuantityRequested: line.Quantity,
				QuantityIssued:    line.Quantity,
				Notes:             line.Notes,
			}); err != nil {
				return err
			}
			_, err := s.ledger.Adjust(ctx, store, stock.AdjustmentRequest{
				ItemID:        line.ItemID,
				Delta:         -line.Quantity,
				ReferenceType: stock.ReferenceIssue,
				ReferenceID:   id,
				PerformedBy:   input.IssuedBy,
				Reason:        fmt.Sprintf("Issue %s to %s", issue.IssueNumber, issue.IssuedTo),
				MovementDate:  input.IssueDate,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return StockIssue{}, classify(err)
	}

	if s.metrics != nil {
		for range input.Lines {
			s.metrics.CountMovement(string(stock.MovementOut))
		}
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.IssuedBy,
			Action:   "issue:create",
			Entity:   "stock_issue",
			EntityID: issue.ID,
			Meta:     map[string]any{"issue_number": issue.IssueNumber, "issued_to": issue.IssuedTo, "lines": len(input.Lines)},
		})
	}
	return issue, nil
}

// checkAvailability verifies every line can be satisfied before any write.
// Quantities are aggregated per item so two lines for the same item are
// checked against their combined total. Reads here are unlocked; the ledger's
// locked re-read remains authoritative.
func (s *Service) checkAvailability(ctx context.Context, store stock.TxStore, lines []IssueLineInput) error {
	requested := make(map[string]float64, len(lines))
	order := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, seen := requested[line.ItemID]; !seen {
			order = append(order, line.ItemID)
		}
		requested[line.ItemID] += line.Quantity
	}
	for _, itemID := range order {
		available, err := store.Quantity(ctx, itemID)
		if err != nil {
			return err
		}
		if requested[itemID] > available {
			return &stock.InsufficientStockError{ItemID: itemID, Requested: requested[itemID], Available: available}
		}
	}
	return nil
}

// List returns all issue headers.
func (s *Service) List(ctx context.Context) ([]StockIssue, error) {
	return s.repo.List(ctx)
}

// Get returns one issue with its lines.
func (s *Service) Get(ctx context.Context, id string) (StockIssue, []IssueLine, error) {
	if id == "" {
		return StockIssue{}, nil, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func validateInput(input CreateIssueInput) error {
	if strings.TrimSpace(input.IssueNumber) == "" {
		return fmt.Errorf("%w: issue number required", ErrValidation)
	}
	if input.DepartmentID == "" {
		return fmt.Errorf("%w: department required", ErrValidation)
	}
	if strings.TrimSpace(input.IssuedTo) == "" {
		return fmt.Errorf("%w: issued to required", ErrValidation)
	}
	if input.IssueDate.IsZero() {
		return fmt.Errorf("%w: issue date required", ErrValidation)
	}
	if input.IssuedBy == "" {
		return fmt.Errorf("%w: issued by required", ErrValidation)
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
