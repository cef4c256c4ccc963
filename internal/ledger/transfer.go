// Package ledger implements the idempotent multi-item transactional write
// builder for the ledger workload: given a batch of transfers, it produces
// one DynamoDB-shaped transactional write containing a put-if-absent per
// transfer plus coalesced balance-update operations per account touched.
package ledger

import (
	"time"

	"brokle-loadtest/pkg/ulid"
)

// Transfer is an immutable record of money moving from one account to
// another. Its id is a monotonic ULID, so put-if-absent on id doubles as
// dedup when a client retries the same logical transfer.
type Transfer struct {
	ID              ulid.ULID
	DebitAccountID  string
	CreditAccountID string
	Amount          uint64
	LedgerID        string

	Code      uint16
	Flags     uint16
	UserData  []byte
	PendingID *ulid.ULID
	Timeout   time.Duration
	Timestamp time.Time
}

// Account tracks the four balance counters a transfer can move. Balances
// are non-negative by construction: they only ever accumulate via ADD.
type Account struct {
	ID       string
	LedgerID string

	DebitsPending  uint64
	DebitsPosted   uint64
	CreditsPending uint64
	CreditsPosted  uint64

	Code      uint16
	Flags     uint16
	UserData  []byte
	Timestamp time.Time
}
