// Package masterdata serves the reference entities items and documents point
// at: categories, units of measure, departments and suppliers.
package masterdata

import (
	"errors"
	"time"
)

// Category groups items.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Unit is a unit of measure.
type Unit struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// Department receives stock issues.
type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Supplier delivers goods received notes.
type Supplier struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

var (
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("masterdata: invalid input")
	// ErrDuplicateName indicates the name is already taken.
	ErrDuplicateName = errors.New("masterdata: name already exists")
)
