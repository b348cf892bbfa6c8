package receiving

import (
	"errors"
	"time"
)

// GoodsReceivedNote is the header of one inbound delivery.
type GoodsReceivedNote struct {
	ID                 string    `json:"id"`
	GRNNumber          string    `json:"grn_number"`
	SupplierID         string    `json:"supplier_id"`
	SupplierName       string    `json:"supplier_name,omitempty"`
	DeliveryNoteNumber string    `json:"delivery_note_number"`
	ReceivedDate       time.Time `json:"received_date"`
	ReceivedBy         string    `json:"received_by"`
	ReceivedByName     string    `json:"received_by_name,omitempty"`
	Notes              string    `json:"notes"`
	ItemCount          int       `json:"item_count,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// GRNLine is one received item on a note.
type GRNLine struct {
	ID          string     `json:"id"`
	GRNID       string     `json:"grn_id"`
	ItemID      string     `json:"item_id"`
	ItemCode    string     `json:"item_code,omitempty"`
	ItemName    string     `json:"item_name,omitempty"`
	Unit        string     `json:"unit,omitempty"`
	Quantity    float64    `json:"quantity"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
	BatchNumber string     `json:"batch_number,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// CreateGRNInput describes a receipt request.
type CreateGRNInput struct {
	GRNNumber          string
	SupplierID         string
	DeliveryNoteNumber string
	ReceivedDate       time.Time
	ReceivedBy         string
	Notes              string
	Lines              []GRNLineInput
}

// GRNLineInput is one requested line.
type GRNLineInput struct {
	ItemID      string
	Quantity    float64
	ExpiryDate  *time.Time
	BatchNumber string
	Notes       string
}

var (
	// ErrValidation indicates a malformed header or line set.
	ErrValidation = errors.New("receiving: invalid input")
	// ErrDuplicateNumber indicates the grn_number is already used.
	ErrDuplicateNumber = errors.New("receiving: grn number already exists")
	// ErrNotFound indicates the requested note does not exist.
	ErrNotFound = errors.New("receiving: not found")
)
