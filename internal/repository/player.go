package repository

import (
	"context"
	"errors"
	"fmt"

	"spacegame-combat/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// LootCategory is the inventory category combat loot is stored under.
const LootCategory = "loot"

// LevelFunc applies gained experience to a level and returns the new level
// and leftover experience.
type LevelFunc func(level, experience, gained int) (int, int)

type PlayerRepository struct {
	pool *pgxpool.Pool
}

func NewPlayerRepository(pool *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

const playerColumns = `id, username, email, password_hash, level, experience, credits, kills,
	is_banned, last_login_at, created_at, updated_at`

func scanPlayer(row pgx.Row) (*model.Player, error) {
	p := &model.Player{}
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.PasswordHash, &p.Level, &p.Experience, &p.Credits, &p.Kills,
		&p.IsBanned, &p.LastLoginAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PlayerRepository) Create(ctx context.Context, username, email, passwordHash string) (*model.Player, error) {
	p, err := scanPlayer(r.pool.QueryRow(ctx, `
		INSERT INTO players (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+playerColumns, username, email, passwordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert player: %w", err)
	}
	return p, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, id string) (*model.Player, error) {
	return scanPlayer(r.pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
}

func (r *PlayerRepository) GetByUsername(ctx context.Context, username string) (*model.Player, error) {
	return scanPlayer(r.pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE username = $1`, username))
}

func (r *PlayerRepository) UpdateLoginTime(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE players SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *PlayerRepository) CountTotal(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM players`).Scan(&count)
	return count, err
}

func (r *PlayerRepository) Inventory(ctx context.Context, playerID string) ([]model.InventoryItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT category, item_name, quantity FROM player_inventory
		WHERE player_id = $1 ORDER BY category, item_name
	`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.InventoryItem{}
	for rows.Next() {
		var item model.InventoryItem
		if err := rows.Scan(&item.Category, &item.ItemName, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ApplyGrant adds a progression delta in one transaction. The player row is
// locked while levelUp runs so concurrent grants never lose experience.
func (r *PlayerRepository) ApplyGrant(ctx context.Context, playerID string, g model.Grant, levelUp LevelFunc) (*model.Player, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin grant: %w", err)
	}
	defer tx.Rollback(ctx)

	var level, exp int
	err = tx.QueryRow(ctx, `SELECT level, experience FROM players WHERE id = $1 FOR UPDATE`, playerID).Scan(&level, &exp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock player: %w", err)
	}

	level, exp = levelUp(level, exp, g.Experience)

	p, err := scanPlayer(tx.QueryRow(ctx, `
		UPDATE players SET level = $2, experience = $3, credits = credits + $4, kills = kills + $5, updated_at = NOW()
		WHERE id = $1
		RETURNING `+playerColumns, playerID, level, exp, g.Credits, g.Kills))
	if err != nil {
		return nil, fmt.Errorf("update progression: %w", err)
	}

	for _, item := range g.Loot {
		_, err = tx.Exec(ctx, `
			INSERT INTO player_inventory (player_id, category, item_name, quantity) VALUES ($1, $2, $3, 1)
			ON CONFLICT (player_id, category, item_name) DO UPDATE SET quantity = player_inventory.quantity + 1
		`, playerID, LootCategory, item)
		if err != nil {
			return nil, fmt.Errorf("add loot %q: %w", item, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit grant: %w", err)
	}
	return p, nil
}
