package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cactuscoin/database"
	"cactuscoin/models"
)

// TransactionRepository implements service.TransactionRepository on SQLite
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a transaction repository outside any transaction
func NewTransactionRepository(db *database.SQLiteDB) *TransactionRepository {
	return &TransactionRepository{q: db.DB}
}

func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Append records tx. A zero CreatedAt is stamped with the current time.
func (r *TransactionRepository) Append(ctx context.Context, tx *models.Transaction) error {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	tx.CreatedAt = fromMillis(toMillis(tx.CreatedAt))

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO transactions (created_at, member_id, delta) VALUES (?, ?, ?)`,
		toMillis(tx.CreatedAt), tx.MemberID, tx.Delta,
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction for member %d: %w", tx.MemberID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read transaction id: %w", err)
	}
	tx.ID = id
	return nil
}

func (r *TransactionRepository) ListSince(ctx context.Context, since time.Time) ([]*models.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, created_at, member_id, delta
		FROM transactions
		WHERE created_at BETWEEN ? AND ?
		ORDER BY delta ASC, created_at ASC, id ASC
	`, toMillis(since), toMillis(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions since %s: %w", since.Format(time.RFC3339), err)
	}
	return scanTransactions(rows)
}

func (r *TransactionRepository) ListByMember(ctx context.Context, memberID int64, limit int) ([]*models.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, created_at, member_id, delta
		FROM transactions
		WHERE member_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for member %d: %w", memberID, err)
	}
	return scanTransactions(rows)
}

func (r *TransactionRepository) DeleteByMember(ctx context.Context, memberID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM transactions WHERE member_id = ?`, memberID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions for member %d: %w", memberID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected, nil
}

func scanTransactions(rows *sql.Rows) ([]*models.Transaction, error) {
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		var (
			tx        models.Transaction
			createdAt int64
		)
		if err := rows.Scan(&tx.ID, &createdAt, &tx.MemberID, &tx.Delta); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.CreatedAt = fromMillis(createdAt)
		txs = append(txs, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txs, nil
}
