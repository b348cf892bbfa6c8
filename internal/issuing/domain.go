package issuing

import (
	"errors"
	"time"
)

// StatusIssued is the status written on successful issue. The document is
// final once committed; there is no draft state.
const StatusIssued = "issued"

// StockIssue is the header of one outbound issue to a department or person.
type StockIssue struct {
	ID             string    `json:"id"`
	IssueNumber    string    `json:"issue_number"`
	DepartmentID   string    `json:"department_id"`
	DepartmentName string    `json:"department_name,omitempty"`
	IssuedTo       string    `json:"issued_to"`
	IssuedBy       string    `json:"issued_by"`
	IssuedByName   string    `json:"issued_by_name,omitempty"`
	IssueDate      time.Time `json:"issue_date"`
	Purpose        string    `json:"purpose"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	ItemCount      int       `json:"item_count,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// IssueLine is one issued item on a document. Quantity requested and issued
// are recorded separately even though issues post all-or-nothing today.
type IssueLine struct {
	ID                string  `json:"id"`
	IssueID           string  `json:"issue_id"`
	ItemID            string  `json:"item_id"`
	ItemCode          string  `json:"item_code,omitempty"`
	ItemName          string  `json:"item_name,omitempty"`
	Unit              string  `json:"unit,omitempty"`
	QuantityRequested float64 `json:"quantity_requested"`
	QuantityIssued    float64 `json:"quantity_issued"`
	Notes             string  `json:"notes,omitempty"`
}

// CreateIssueInput describes an issue request.
type CreateIssueInput struct {
	IssueNumber  string
	DepartmentID string
	IssuedTo     string
	IssuedBy     string
	IssueDate    time.Time
	Purpose      string
	Notes        string
	Lines        []IssueLineInput
}

// IssueLineInput is one requested line.
type IssueLineInput struct {
	ItemID   string
	Quantity float64
	Notes    string
}

var (
	// ErrValidation indicates a malformed header or line set.
	ErrValidation = errors.New("issuing: invalid input")
	// ErrDuplicateNumber indicates the issue_number is already used.
	ErrDuplicateNumber = errors.New("issuing: issue number already exists")
	// ErrNotFound indicates the requested issue does not exist.
	ErrNotFound = errors.New("issuing: not found")
)
