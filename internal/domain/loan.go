package domain

import (
	"strings"
	"time"
)

// Lending policy constants. These are fixed policy, not configuration.
const (
	// LoanPeriodDays is how long a fresh loan runs.
	LoanPeriodDays = 30
	// ExtensionDays is how far one extension pushes the due date.
	ExtensionDays = 30
	// MaxExtensions caps how often a single loan can be extended.
	MaxExtensions = 12
	// ExtensionWindowDays is how many days before the due date an
	// extension first becomes legal.
	ExtensionWindowDays = 1
)

// Loan is one borrowing of one copy by one user. Loans are never deleted;
// a return only flips Returned.
type Loan struct {
	LoanID             int64     `json:"loan_id"`
	BookID             string    `json:"book_id"`
	ISBN               string    `json:"isbn"`
	Username           string    `json:"username"`
	BorrowDate         time.Time `json:"borrow_date"`
	DueDate            time.Time `json:"due_date"`
	Returned           bool      `json:"returned"`
	NumberOfExtensions int       `json:"number_of_extensions"`
}

// IsActive reports whether the loan is still outstanding.
func (l *Loan) IsActive() bool {
	return !l.Returned
}

// BelongsTo reports whether username is the borrower, case-insensitively.
func (l *Loan) BelongsTo(username string) bool {
	return strings.EqualFold(l.Username, username)
}

// AllowableExtensionDate is the first calendar day on which the loan may
// be extended: one day before the due date, inclusive.
func (l *Loan) AllowableExtensionDate() time.Time {
	return DateOnly(l.DueDate).AddDate(0, 0, -ExtensionWindowDays)
}

// ExtendableOn reports whether the loan may be extended on the given day.
// Legal on or after AllowableExtensionDate, including past the due date.
func (l *Loan) ExtendableOn(today time.Time) bool {
	return !DateOnly(today).Before(l.AllowableExtensionDate())
}

// Extend advances the due date by the extension period and bumps the
// extension counter. Callers check eligibility first.
func (l *Loan) Extend() {
	l.DueDate = DateOnly(l.DueDate).AddDate(0, 0, ExtensionDays)
	l.NumberOfExtensions++
}
