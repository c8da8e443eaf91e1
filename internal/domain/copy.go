// Package domain defines the core lending entities: copies, loans,
// reservations and user accounts.
package domain

import (
	"strings"
	"time"
)

// CopyState represents the lifecycle state of a physical copy.
// Transitions are driven only by the lending services:
// AVAILABLE -> BORROWED (loan creation) -> RESERVED (reservation while
// borrowed) -> AVAILABLE (return).
type CopyState string

const (
	// CopyStateAvailable means the copy is on the shelf and loanable.
	CopyStateAvailable CopyState = "AVAILABLE"
	// CopyStateBorrowed means the copy is checked out on an active loan.
	CopyStateBorrowed CopyState = "BORROWED"
	// CopyStateReserved means the copy is checked out and spoken for.
	CopyStateReserved CopyState = "RESERVED"
)

// Valid reports whether the state is one of the defined states.
func (s CopyState) Valid() bool {
	switch s {
	case CopyStateAvailable, CopyStateBorrowed, CopyStateReserved:
		return true
	}
	return false
}

// Equals compares states case-insensitively. Catalog backends are not
// consistent about casing, so every state comparison goes through here.
func (s CopyState) Equals(other CopyState) bool {
	return strings.EqualFold(string(s), string(other))
}

// Copy is one physical instance of a title. Many copies can share an ISBN.
type Copy struct {
	ID        string    `json:"id"`
	ISBN      string    `json:"isbn"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	State     CopyState `json:"state"`
	Genres    []string  `json:"genres,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAvailable reports whether the copy can be lent out right now.
func (c *Copy) IsAvailable() bool {
	return c.State.Equals(CopyStateAvailable)
}

// Touch updates the UpdatedAt timestamp.
func (c *Copy) Touch() {
	c.UpdatedAt = time.Now()
}
