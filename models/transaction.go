package models

import (
	"time"
)

// Transaction is an immutable ledger entry recording a persisted balance change.
// Corrections are made by appending a reversing entry, never by editing a row.
type Transaction struct {
	ID        int64     `db:"id"`
	MemberID  int64     `db:"member_id"`
	Delta     int64     `db:"delta"`
	CreatedAt time.Time `db:"created_at"`
}

// IsGain reports whether the entry increased the member's balance
func (t *Transaction) IsGain() bool {
	return t.Delta > 0
}

// IsLoss reports whether the entry decreased the member's balance
func (t *Transaction) IsLoss() bool {
	return t.Delta < 0
}
