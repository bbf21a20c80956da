package repository

import (
	"context"
	"fmt"
	"time"

	"cactuscoin/database"
	"cactuscoin/models"

	"github.com/jackc/pgx/v5"
)

// TransactionRepository implements service.TransactionRepository on PostgreSQL
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a transaction repository outside any transaction
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Append records tx. A zero CreatedAt is stamped with the current time.
func (r *TransactionRepository) Append(ctx context.Context, tx *models.Transaction) error {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO transactions (created_at, member_id, delta)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, tx.CreatedAt.UTC(), tx.MemberID, tx.Delta).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append transaction for member %d: %w", tx.MemberID, err)
	}
	tx.CreatedAt = tx.CreatedAt.UTC()
	return nil
}

// ListSince returns transactions between since and now ordered by delta
func (r *TransactionRepository) ListSince(ctx context.Context, since time.Time) ([]*models.Transaction, error) {
	query := `
		SELECT id, created_at, member_id, delta
		FROM transactions
		WHERE created_at BETWEEN $1 AND $2
		ORDER BY delta ASC, created_at ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query, since.UTC(), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions since %s: %w", since.Format(time.RFC3339), err)
	}
	return scanTransactions(rows)
}

// ListByMember returns a member's most recent transactions
func (r *TransactionRepository) ListByMember(ctx context.Context, memberID int64, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, created_at, member_id, delta
		FROM transactions
		WHERE member_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for member %d: %w", memberID, err)
	}
	return scanTransactions(rows)
}

// DeleteByMember removes a member's history and returns the number of rows removed
func (r *TransactionRepository) DeleteByMember(ctx context.Context, memberID int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE member_id = $1`, memberID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions for member %d: %w", memberID, err)
	}
	return tag.RowsAffected(), nil
}

func scanTransactions(rows pgx.Rows) ([]*models.Transaction, error) {
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.CreatedAt, &tx.MemberID, &tx.Delta); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.CreatedAt = tx.CreatedAt.UTC()
		txs = append(txs, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txs, nil
}
