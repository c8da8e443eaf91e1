package store

import "fmt"

// Key layout. Primary records live under a short type prefix; secondary
// indexes live under "idx:" and hold either the primary ID or nothing
// (key-only membership indexes).
const (
	copyPrefix       = "copy:"
	copyByISBNPrefix = "idx:copies:isbn:" // idx:copies:isbn:<isbn>:<copyID> -> ""

	loanPrefix        = "loan:"
	loanByISBNPrefix  = "idx:loans:isbn:" // idx:loans:isbn:<isbn>:<loanKey> -> ""
	loanByUserPrefix  = "idx:loans:user:" // idx:loans:user:<username>:<loanKey> -> ""
	loanSeqKey        = "seq:loans"
	reservationPrefix = "res:"
	resByISBNPrefix   = "idx:res:isbn:" // idx:res:isbn:<isbn>:<resKey> -> ""
	reservationSeqKey = "seq:reservations"

	userPrefix           = "user:"
	userByUsernamePrefix = "idx:users:username:" // For login lookups
	sessionPrefix        = "session:"
	sessionByUserPrefix  = "idx:sessions:user:"  // For listing user sessions
	sessionByTokenPrefix = "idx:sessions:token:" // For refresh token lookups

	// Badger hands out sequence values in leases of this size.
	sequenceBandwidth = 100
)

// ledgerKey zero-pads a numeric ledger ID so lexicographic key order
// matches numeric order under Badger's sorted iteration.
func ledgerKey(id int64) string {
	return fmt.Sprintf("%020d", id)
}
