package db

import "context"

// Schema: a users table plus a polymorphic requests base joined to one
// detail table per request type.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		discord_id TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS requests (
		id BIGSERIAL PRIMARY KEY,
		type TEXT NOT NULL CHECK (type IN ('appeal', 'report', 'citizenship')),
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected')),
		requester_id BIGINT NOT NULL REFERENCES users (id),
		reviewer_id BIGINT REFERENCES users (id),
		admin_notes TEXT,
		cache_message_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		reviewed_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS appeal_details (
		request_id BIGINT PRIMARY KEY REFERENCES requests (id) ON DELETE CASCADE,
		sanction_description TEXT NOT NULL,
		appeal_description TEXT NOT NULL,
		media_links TEXT[]
	)`,
	`CREATE TABLE IF NOT EXISTS report_details (
		request_id BIGINT PRIMARY KEY REFERENCES requests (id) ON DELETE CASCADE,
		reported_usernames TEXT[] NOT NULL,
		incident_description TEXT NOT NULL,
		evidence_links TEXT[]
	)`,
	`CREATE TABLE IF NOT EXISTS citizenship_details (
		request_id BIGINT PRIMARY KEY REFERENCES requests (id) ON DELETE CASCADE,
		additional_notes TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_status ON requests (status)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_requester ON requests (requester_id)`,
}

// EnsureSchema creates missing tables and indexes. Statements are idempotent
// so repeated startups are safe.
func (d *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.pool.Exec(ctx, stmt); err != nil {
			return Translate(err)
		}
	}
	return nil
}
