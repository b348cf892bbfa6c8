package stock

import (
	"context"
)

// TxStore exposes the stock operations available inside an enclosing
// transaction. Implementations are bound to a single transaction; nothing
// written through a TxStore is visible outside it until the caller commits.
type TxStore interface {
	// Quantity reads the current quantity without locking the row. Used for
	// fast-fail availability checks; not a concurrency guarantee.
	Quantity(ctx context.Context, itemID string) (float64, error)
	// QuantityForUpdate reads the current quantity with a row lock so that
	// concurrent adjustments to the same item serialize.
	QuantityForUpdate(ctx context.Context, itemID string) (float64, error)
	// SetQuantity writes the new quantity and refreshes last_updated.
	SetQuantity(ctx context.Context, itemID string, quantity float64) error
	// AppendMovement appends one entry to the movement ledger.
	AppendMovement(ctx context.Context, m Movement) error
}

// Ledger applies signed quantity adjustments to items. It is stateless: every
// Adjust re-reads the current quantity under lock, so two lines for the same
// item within one transaction fold sequentially instead of computing
// independent deltas from one stale read.
type Ledger struct{}

// NewLedger constructs a Ledger.
func NewLedger() Ledger {
	return Ledger{}
}

// Adjust applies one signed delta to an item inside the transaction owning
// store. It returns the balance after the adjustment. A negative result is
// rejected with InsufficientStockError before anything is written.
func (Ledger) Adjust(ctx context.Context, store TxStore, req AdjustmentRequest) (float64, error) {
	if req.ItemID == "" {
		return 0, ErrItemNotFound
	}
	if req.Delta == 0 {
		return 0, ErrInvalidQuantity
	}

	current, err := store.QuantityForUpdate(ctx, req.ItemID)
	if err != nil {
		return 0, err
	}

	newBalance := current + req.Delta
	if newBalance < 0 {
		return 0, &InsufficientStockError{ItemID: req.ItemID, Requested: -req.Delta, Available: current}
	}

	if err := store.SetQuantity(ctx, req.ItemID, newBalance); err != nil {
		return 0, err
	}

	movementType := MovementIn
	quantity := req.Delta
	if req.Delta < 0 {
		movementType = MovementOut
		quantity = -req.Delta
	}
	movement := Movement{
		ItemID:        req.ItemID,
		Type:          movementType,
		Quantity:      quantity,
		BalanceAfter:  newBalance,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		PerformedBy:   req.PerformedBy,
		Reason:        req.Reason,
		MovementDate:  req.MovementDate,
	}
	if err := store.AppendMovement(ctx, movement); err != nil {
		return 0, err
	}

	return newBalance, nil
}
