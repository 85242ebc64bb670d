package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotRepository keeps one encounter snapshot per player.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

func (r *SnapshotRepository) Save(ctx context.Context, playerID string, state []byte) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO battle_snapshots (player_id, state, saved_at) VALUES ($1, $2, NOW())
		ON CONFLICT (player_id) DO UPDATE SET state = EXCLUDED.state, saved_at = EXCLUDED.saved_at
	`, playerID, state)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) Get(ctx context.Context, playerID string) ([]byte, error) {
	var state []byte
	err := r.pool.QueryRow(ctx, `SELECT state FROM battle_snapshots WHERE player_id = $1`, playerID).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return state, nil
}

func (r *SnapshotRepository) Delete(ctx context.Context, playerID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM battle_snapshots WHERE player_id = $1`, playerID)
	return err
}

func (r *SnapshotRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM battle_snapshots`).Scan(&n)
	return n, err
}
