package items

import (
	"errors"
	"time"
)

// Item is one catalogued warehouse article.
type Item struct {
	ID              string    `json:"id"`
	ItemCode        string    `json:"item_code"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	CategoryID      string    `json:"category_id"`
	CategoryName    string    `json:"category_name,omitempty"`
	UnitOfMeasureID string    `json:"unit_of_measure_id"`
	UnitName        string    `json:"unit_name,omitempty"`
	UnitAbbr        string    `json:"unit_abbr,omitempty"`
	ReorderLevel    float64   `json:"reorder_level"`
	HasExpiry       bool      `json:"has_expiry"`
	IsActive        bool      `json:"is_active"`
	CurrentStock    float64   `json:"current_stock"`
	CreatedBy       string    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateItemInput describes a new item. Every item is created with a zero
// stock row in the same transaction.
type CreateItemInput struct {
	ItemCode        string
	Name            string
	Description     string
	CategoryID      string
	UnitOfMeasureID string
	ReorderLevel    float64
	HasExpiry       bool
	CreatedBy       string
}

// UpdateItemInput describes a full item update. The item code is immutable.
type UpdateItemInput struct {
	Name            string
	Description     string
	CategoryID      string
	UnitOfMeasureID string
	ReorderLevel    float64
	HasExpiry       bool
	IsActive        bool
}

// ListFilter narrows the item listing.
type ListFilter struct {
	CategoryID string
	Active     *bool
}

var (
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("items: invalid input")
	// ErrDuplicateCode indicates the item_code is already used.
	ErrDuplicateCode = errors.New("items: item code already exists")
	// ErrNotFound indicates the requested item does not exist.
	ErrNotFound = errors.New("items: not found")
)
