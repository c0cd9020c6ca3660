package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func pgErr(code, message string) error {
	return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, Message: message})
}

func category(t *testing.T, err error) Category {
	t.Helper()
	var dbErr *Error
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected *db.Error, got %T: %v", err, err)
	}
	return dbErr.Category
}

func TestTranslateCategories(t *testing.T) {
	cases := []struct {
		code    string
		message string
		want    Category
	}{
		{"23505", `duplicate key value violates unique constraint "users_discord_id_key"`, CategoryDuplicate},
		{"23503", `insert or update on table "requests" violates foreign key constraint`, CategoryInvalidReference},
		{"23503", `update or delete on table "users" violates foreign key constraint`, CategoryReferenced},
		{"42703", `column "nme" does not exist`, CategoryInvalidField},
		{"42P01", `relation "userz" does not exist`, CategoryInvalidField},
		{"42601", `syntax error at or near "SELEC"`, CategorySyntax},
		{"28P01", `password authentication failed`, CategoryAccessDenied},
		{"42501", `permission denied for table users`, CategoryAccessDenied},
		{"08001", `could not establish connection`, CategoryConnRefused},
		{"08006", `connection failure`, CategoryConnLost},
		{"57P01", `terminating connection due to administrator command`, CategoryConnLost},
		{"XX000", `internal error`, CategoryGeneric},
	}

	for _, tc := range cases {
		got := category(t, Translate(pgErr(tc.code, tc.message)))
		assert.Equal(t, tc.want, got, "code %s", tc.code)
	}
}

func TestTranslatePassesThrough(t *testing.T) {
	assert.NoError(t, Translate(nil))

	// No-rows is expected control flow for lookups, not a fault.
	err := fmt.Errorf("lookup: %w", pgx.ErrNoRows)
	assert.Equal(t, err, Translate(err))
}

func TestTranslateKeepsCause(t *testing.T) {
	cause := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
	translated := Translate(fmt.Errorf("exec: %w", cause))

	var dbErr *Error
	assert.True(t, errors.As(translated, &dbErr))
	assert.Equal(t, "23505", dbErr.Code)
	assert.True(t, errors.Is(translated, cause), "original error must remain reachable")
	assert.Contains(t, translated.Error(), "duplicate entry")
}

func TestTranslateDialRefused(t *testing.T) {
	err := errors.New("failed to connect to `host=localhost`: dial error (connection refused)")
	assert.Equal(t, CategoryConnRefused, category(t, Translate(err)))
}

func TestInsertSQLStableOrder(t *testing.T) {
	sql, args := insertSQL("users", map[string]any{
		"username":   "ada",
		"discord_id": "42",
	})
	assert.Equal(t, "INSERT INTO users (discord_id, username) VALUES ($1, $2)", sql)
	assert.Equal(t, []any{"42", "ada"}, args)
}

func TestWhereSQLPlaceholderOffset(t *testing.T) {
	where, args := whereSQL(map[string]any{"status": "pending", "type": "appeal"}, 3)
	assert.Equal(t, "status = $3 AND type = $4", where)
	assert.Equal(t, []any{"pending", "appeal"}, args)
}

func TestSelectSQL(t *testing.T) {
	sql, args := selectSQL("requests", map[string]any{"status": "pending"}, "created_at ASC", 25)
	assert.Equal(t, "SELECT * FROM requests WHERE status = $1 ORDER BY created_at ASC LIMIT 25", sql)
	assert.Equal(t, []any{"pending"}, args)

	sql, args = selectSQL("users", nil, "", 0)
	assert.Equal(t, "SELECT * FROM users", sql)
	assert.Empty(t, args)

	// The by-id form used by FindByID.
	sql, args = selectSQL("users", map[string]any{"id": int64(7)}, "", 1)
	assert.Equal(t, "SELECT * FROM users WHERE id = $1 LIMIT 1", sql)
	assert.Equal(t, []any{int64(7)}, args)
}
