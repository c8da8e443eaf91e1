package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLoanBelongsTo(t *testing.T) {
	loan := &Loan{Username: "Alice"}

	assert.True(t, loan.BelongsTo("alice"))
	assert.True(t, loan.BelongsTo("ALICE"))
	assert.False(t, loan.BelongsTo("bob"))
}

func TestLoanAllowableExtensionDate(t *testing.T) {
	loan := &Loan{DueDate: date(2025, time.March, 15)}

	assert.Equal(t, date(2025, time.March, 14), loan.AllowableExtensionDate())
}

func TestLoanExtendableOn(t *testing.T) {
	loan := &Loan{DueDate: date(2025, time.March, 15)}

	tests := []struct {
		name  string
		today time.Time
		want  bool
	}{
		{"two days before due", date(2025, time.March, 13), false},
		{"one day before due", date(2025, time.March, 14), true},
		{"on due date", date(2025, time.March, 15), true},
		{"after due date", date(2025, time.March, 20), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loan.ExtendableOn(tt.today))
		})
	}
}

func TestLoanExtendableOnIgnoresTimeOfDay(t *testing.T) {
	loan := &Loan{DueDate: date(2025, time.March, 15)}

	lateEvening := time.Date(2025, time.March, 14, 23, 59, 0, 0, time.UTC)
	assert.True(t, loan.ExtendableOn(lateEvening))
}

func TestLoanExtend(t *testing.T) {
	loan := &Loan{
		DueDate:            date(2025, time.March, 15),
		NumberOfExtensions: 3,
	}

	loan.Extend()

	assert.Equal(t, date(2025, time.April, 14), loan.DueDate)
	assert.Equal(t, 4, loan.NumberOfExtensions)
}

func TestCopyStateEquals(t *testing.T) {
	assert.True(t, CopyState("available").Equals(CopyStateAvailable))
	assert.True(t, CopyState("Borrowed").Equals(CopyStateBorrowed))
	assert.False(t, CopyState("RESERVED").Equals(CopyStateBorrowed))
}

func TestCopyIsAvailable(t *testing.T) {
	c := &Copy{State: CopyState("Available")}
	assert.True(t, c.IsAvailable())

	c.State = CopyStateBorrowed
	assert.False(t, c.IsAvailable())
}

func TestReservationHeldBy(t *testing.T) {
	r := &Reservation{Username: "Carol"}

	assert.True(t, r.HeldBy("carol"))
	assert.False(t, r.HeldBy("dave"))
}
