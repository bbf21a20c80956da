package testutil

import (
	"time"

	"cactuscoin/models"
)

// CreateTestTransaction creates a ledger entry stamped at createdAt
func CreateTestTransaction(memberID, delta int64, createdAt time.Time) *models.Transaction {
	return &models.Transaction{
		MemberID:  memberID,
		Delta:     delta,
		CreatedAt: createdAt,
	}
}

// Deltas extracts the delta of each transaction in order
func Deltas(txs []*models.Transaction) []int64 {
	deltas := make([]int64, len(txs))
	for i, tx := range txs {
		deltas[i] = tx.Delta
	}
	return deltas
}
