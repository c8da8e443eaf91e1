package domain

import (
	"strings"
	"time"
)

// Reservation queues a user for the copy of a title expected back soonest.
// PositionInQueue is a read-time projection: the count of outstanding
// reservations for the ISBN at creation time, never a stored sequence.
type Reservation struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	BookID          string    `json:"book_id"`
	ISBN            string    `json:"isbn"`
	ReservationDate time.Time `json:"reservation_date"`
	PositionInQueue int       `json:"position_in_queue"`
}

// HeldBy reports whether username holds this reservation, case-insensitively.
func (r *Reservation) HeldBy(username string) bool {
	return strings.EqualFold(r.Username, username)
}
