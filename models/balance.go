package models

import (
	"time"
)

// Balance is a member's current coin holding. A member with no row has never
// been verified, which is distinct from a stored balance of zero.
type Balance struct {
	MemberID  int64     `db:"member_id"`
	Coin      int64     `db:"coin"`
	UpdatedAt time.Time `db:"updated_at"`
}
