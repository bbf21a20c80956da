package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cactuscoin/database"
	"cactuscoin/models"
)

// BalanceRepository implements service.BalanceRepository on SQLite
type BalanceRepository struct {
	q queryable
}

// NewBalanceRepository creates a balance repository outside any transaction
func NewBalanceRepository(db *database.SQLiteDB) *BalanceRepository {
	return &BalanceRepository{q: db.DB}
}

func newBalanceRepositoryWithTx(tx queryable) *BalanceRepository {
	return &BalanceRepository{q: tx}
}

func (r *BalanceRepository) GetBalance(ctx context.Context, memberID int64) (*models.Balance, error) {
	var (
		balance   models.Balance
		updatedAt int64
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT member_id, coin, updated_at FROM balances WHERE member_id = ?`, memberID,
	).Scan(&balance.MemberID, &balance.Coin, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for member %d: %w", memberID, err)
	}

	balance.UpdatedAt = fromMillis(updatedAt)
	return &balance, nil
}

func (r *BalanceRepository) InitBalance(ctx context.Context, memberID int64, coin int64) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO balances (member_id, coin, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (member_id) DO NOTHING
	`, memberID, coin, toMillis(time.Now()))
	if err != nil {
		return false, fmt.Errorf("failed to initialize balance for member %d: %w", memberID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *BalanceRepository) SetBalance(ctx context.Context, memberID int64, coin int64) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO balances (member_id, coin, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (member_id) DO UPDATE
		SET coin = excluded.coin, updated_at = excluded.updated_at
	`, memberID, coin, toMillis(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to set balance for member %d: %w", memberID, err)
	}
	return nil
}

func (r *BalanceRepository) AddBalance(ctx context.Context, memberID int64, delta int64) (int64, error) {
	var coin int64
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO balances (member_id, coin, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (member_id) DO UPDATE
		SET coin = balances.coin + excluded.coin, updated_at = excluded.updated_at
		RETURNING coin
	`, memberID, delta, toMillis(time.Now())).Scan(&coin)
	if err != nil {
		return 0, fmt.Errorf("failed to add %d to balance for member %d: %w", delta, memberID, err)
	}
	return coin, nil
}

func (r *BalanceRepository) DeleteBalance(ctx context.Context, memberID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM balances WHERE member_id = ?`, memberID); err != nil {
		return fmt.Errorf("failed to delete balance for member %d: %w", memberID, err)
	}
	return nil
}

func (r *BalanceRepository) ListRankings(ctx context.Context) ([]*models.Balance, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT member_id, coin, updated_at
		FROM balances
		ORDER BY coin ASC, member_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings: %w", err)
	}
	defer rows.Close()

	var balances []*models.Balance
	for rows.Next() {
		var (
			balance   models.Balance
			updatedAt int64
		)
		if err := rows.Scan(&balance.MemberID, &balance.Coin, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balance.UpdatedAt = fromMillis(updatedAt)
		balances = append(balances, &balance)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balances: %w", err)
	}

	return balances, nil
}
