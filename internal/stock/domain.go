package stock

import (
	"errors"
	"fmt"
	"time"
)

// MovementType classifies a ledger movement by direction.
type MovementType string

const (
	// MovementIn represents an inbound quantity change.
	MovementIn MovementType = "IN"
	// MovementOut represents an outbound quantity change.
	MovementOut MovementType = "OUT"
)

// ReferenceType identifies the document a movement originates from.
type ReferenceType string

const (
	// ReferenceGRN marks movements created by a goods received note.
	ReferenceGRN ReferenceType = "GRN"
	// ReferenceIssue marks movements created by a stock issue.
	ReferenceIssue ReferenceType = "ISSUE"
)

// Level is the current stock position of one item.
type Level struct {
	ItemID       string    `json:"item_id"`
	ItemCode     string    `json:"item_code"`
	ItemName     string    `json:"item_name"`
	CategoryName string    `json:"category_name"`
	Unit         string    `json:"unit"`
	Quantity     float64   `json:"quantity"`
	ReorderLevel float64   `json:"reorder_level"`
	LastUpdated  time.Time `json:"last_updated"`
}

// Movement is one append-only entry in the movement ledger. Once written it is
// never updated or deleted; balance_after is the quantity immediately after the
// movement was applied and is stored at write time.
type Movement struct {
	ID            string        `json:"id"`
	ItemID        string        `json:"item_id"`
	Type          MovementType  `json:"movement_type"`
	Quantity      float64       `json:"quantity"`
	BalanceAfter  float64       `json:"balance_after"`
	ReferenceType ReferenceType `json:"reference_type"`
	ReferenceID   string        `json:"reference_id"`
	PerformedBy   string        `json:"performed_by"`
	Reason        string        `json:"reason"`
	MovementDate  time.Time     `json:"movement_date"`
	CreatedAt     time.Time     `json:"created_at"`
}

// AdjustmentRequest describes one signed quantity change against an item.
type AdjustmentRequest struct {
	ItemID        string
	Delta         float64
	ReferenceType ReferenceType
	ReferenceID   string
	PerformedBy   string
	Reason        string
	MovementDate  time.Time
}

var (
	// ErrItemNotFound indicates the referenced item has no stock row.
	ErrItemNotFound = errors.New("stock: item not found")
	// ErrInvalidQuantity indicates a zero or malformed delta.
	ErrInvalidQuantity = errors.New("stock: quantity must be non zero")
	// ErrInsufficientStock triggered when a movement would drive quantity negative.
	ErrInsufficientStock = errors.New("stock: insufficient quantity")
	// ErrTransactionAborted wraps store-level failures that forced a rollback.
	ErrTransactionAborted = errors.New("stock: transaction aborted")
)

// InsufficientStockError carries the offending item so callers can report
// which line of a multi-item request failed. errors.Is matches it against
// ErrInsufficientStock.
type InsufficientStockError struct {
	ItemID    string
	Requested float64
	Available float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock: insufficient quantity for item %s: requested %v, available %v", e.ItemID, e.Requested, e.Available)
}

// Is reports whether target is the ErrInsufficientStock sentinel.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
