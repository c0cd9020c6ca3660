package db

import (
	"context"
	"time"
)

// User is a known Discord user.
type User struct {
	ID        int64
	DiscordID string
	Username  string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

const userCols = "id, discord_id, username, is_admin, created_at, updated_at"

func scanUser(row interface{ Scan(dest ...any) error }) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.DiscordID, &u.Username, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, Translate(err)
	}
	return &u, nil
}

// ensureUser upserts a user by discord id, refreshing the username. Runs on
// either the pool or a transaction.
func ensureUser(ctx context.Context, q querier, discordID, username string) (*User, error) {
	row := q.QueryRow(ctx, `
		INSERT INTO users (discord_id, username)
		VALUES ($1, $2)
		ON CONFLICT (discord_id)
		DO UPDATE SET username = EXCLUDED.username, updated_at = now()
		RETURNING `+userCols,
		discordID, username)
	return scanUser(row)
}

// EnsureUser records (or refreshes) a user and returns the stored row.
func (d *DB) EnsureUser(ctx context.Context, discordID, username string) (*User, error) {
	return ensureUser(ctx, d.pool, discordID, username)
}

// UserByDiscordID looks a user up; returns pgx.ErrNoRows when unknown.
func (d *DB) UserByDiscordID(ctx context.Context, discordID string) (*User, error) {
	row := d.pool.QueryRow(ctx,
		"SELECT "+userCols+" FROM users WHERE discord_id = $1", discordID)
	return scanUser(row)
}

// SetAdmin flips the admin flag for a user.
func (d *DB) SetAdmin(ctx context.Context, discordID string, admin bool) error {
	_, err := d.UpdateWhere(ctx, "users",
		map[string]any{"is_admin": admin},
		map[string]any{"discord_id": discordID})
	return err
}
