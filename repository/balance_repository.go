package repository

import (
	"context"
	"errors"
	"fmt"

	"cactuscoin/database"
	"cactuscoin/models"

	"github.com/jackc/pgx/v5"
)

// BalanceRepository implements service.BalanceRepository on PostgreSQL
type BalanceRepository struct {
	q queryable
}

// NewBalanceRepository creates a balance repository outside any transaction
func NewBalanceRepository(db *database.DB) *BalanceRepository {
	return &BalanceRepository{q: db.Pool}
}

func newBalanceRepositoryWithTx(tx queryable) *BalanceRepository {
	return &BalanceRepository{q: tx}
}

// GetBalance returns nil when the member has no balance row
func (r *BalanceRepository) GetBalance(ctx context.Context, memberID int64) (*models.Balance, error) {
	query := `
		SELECT member_id, coin, updated_at
		FROM balances
		WHERE member_id = $1
	`

	var balance models.Balance
	err := r.q.QueryRow(ctx, query, memberID).Scan(&balance.MemberID, &balance.Coin, &balance.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for member %d: %w", memberID, err)
	}

	return &balance, nil
}

// InitBalance inserts a balance unless one already exists
func (r *BalanceRepository) InitBalance(ctx context.Context, memberID int64, coin int64) (bool, error) {
	query := `
		INSERT INTO balances (member_id, coin, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (member_id) DO NOTHING
	`

	tag, err := r.q.Exec(ctx, query, memberID, coin)
	if err != nil {
		return false, fmt.Errorf("failed to initialize balance for member %d: %w", memberID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// SetBalance overwrites or creates a member's balance
func (r *BalanceRepository) SetBalance(ctx context.Context, memberID int64, coin int64) error {
	query := `
		INSERT INTO balances (member_id, coin, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (member_id) DO UPDATE
		SET coin = EXCLUDED.coin, updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, memberID, coin); err != nil {
		return fmt.Errorf("failed to set balance for member %d: %w", memberID, err)
	}
	return nil
}

// AddBalance increments a balance in one statement so concurrent writers to
// the same member serialise on the row lock
func (r *BalanceRepository) AddBalance(ctx context.Context, memberID int64, delta int64) (int64, error) {
	query := `
		INSERT INTO balances (member_id, coin, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (member_id) DO UPDATE
		SET coin = balances.coin + EXCLUDED.coin, updated_at = NOW()
		RETURNING coin
	`

	var coin int64
	if err := r.q.QueryRow(ctx, query, memberID, delta).Scan(&coin); err != nil {
		return 0, fmt.Errorf("failed to add %d to balance for member %d: %w", delta, memberID, err)
	}
	return coin, nil
}

// DeleteBalance removes a member's balance row
func (r *BalanceRepository) DeleteBalance(ctx context.Context, memberID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM balances WHERE member_id = $1`, memberID); err != nil {
		return fmt.Errorf("failed to delete balance for member %d: %w", memberID, err)
	}
	return nil
}

// ListRankings returns every balance ordered by coin ascending
func (r *BalanceRepository) ListRankings(ctx context.Context) ([]*models.Balance, error) {
	query := `
		SELECT member_id, coin, updated_at
		FROM balances
		ORDER BY coin ASC, member_id ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings: %w", err)
	}
	defer rows.Close()

	var balances []*models.Balance
	for rows.Next() {
		var balance models.Balance
		if err := rows.Scan(&balance.MemberID, &balance.Coin, &balance.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, &balance)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balances: %w", err)
	}

	return balances, nil
}
