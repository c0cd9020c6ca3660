// Package db is the data access layer: a pgx connection pool with generic
// parameterized CRUD helpers, a transaction wrapper, and translation of
// vendor error codes into a small set of readable categories. It never
// swallows an error, only translates it.
package db

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"portiere/internal/config"
)

// DB wraps a pgx pool. All methods acquire and release pooled connections
// internally; no connection outlives a single call except inside WithTx.
type DB struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// querier is the subset shared by *pgxpool.Pool and pgx.Tx, so repository
// helpers run both pooled and inside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// New opens the pool and verifies connectivity with a ping. A failed ping is
// returned as an error; the caller treats it as fatal at startup.
func New(ctx context.Context, cfg config.Database, log *zap.Logger) (*DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?pool_max_conns=%d",
		url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password),
		cfg.Host, cfg.Port, cfg.Name, cfg.MaxConns)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", Translate(err))
	}

	log.Info("database pool ready",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Int("max_conns", cfg.MaxConns))
	return &DB{pool: pool, log: log}, nil
}

// Close releases the pool.
func (d *DB) Close() {
	d.pool.Close()
	d.log.Info("database pool closed")
}

// Query runs a SELECT and returns the rows. The caller must close them.
func (d *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, Translate(err)
	}
	return rows, nil
}

// Exec runs a statement and returns the number of affected rows.
func (d *DB) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := d.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, Translate(err)
	}
	return tag.RowsAffected(), nil
}

// WithTx runs fn inside a transaction: begin, fn, commit, with rollback on
// any error or panic. The transaction spans exactly one pooled connection.
func (d *DB) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return Translate(err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	if err := fn(tx); err != nil {
		return Translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Translate(err)
	}
	return nil
}

// sortedKeys gives map-based SQL builders a stable column order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// insertSQL builds "INSERT INTO t (a, b) VALUES ($1, $2)" plus its args.
func insertSQL(table string, cols map[string]any) (string, []any) {
	keys := sortedKeys(cols)
	args := make([]any, 0, len(keys))
	ph := make([]string, 0, len(keys))
	for i, k := range keys {
		args = append(args, cols[k])
		ph = append(ph, fmt.Sprintf("$%d", i+1))
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(keys, ", "), strings.Join(ph, ", "))
	return sql, args
}

// whereSQL builds "a = $n AND b = $n+1" starting at placeholder n.
func whereSQL(conds map[string]any, n int) (string, []any) {
	keys := sortedKeys(conds)
	args := make([]any, 0, len(keys))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s = $%d", k, n))
		args = append(args, conds[k])
		n++
	}
	return strings.Join(parts, " AND "), args
}

// Create inserts a row and returns its generated id.
func (d *DB) Create(ctx context.Context, table string, cols map[string]any) (int64, error) {
	sql, args := insertSQL(table, cols)
	var id int64
	if err := d.pool.QueryRow(ctx, sql+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, Translate(err)
	}
	return id, nil
}

// Insert inserts a row into a table without a generated id column.
func (d *DB) Insert(ctx context.Context, table string, cols map[string]any) error {
	sql, args := insertSQL(table, cols)
	if _, err := d.pool.Exec(ctx, sql, args...); err != nil {
		return Translate(err)
	}
	return nil
}

// selectSQL builds "SELECT * FROM t WHERE ... ORDER BY ... LIMIT n" plus its
// args. Zero limit means no limit; empty orderBy means unordered.
func selectSQL(table string, conds map[string]any, orderBy string, limit int) (string, []any) {
	sql := "SELECT * FROM " + table
	var args []any
	if len(conds) > 0 {
		where, a := whereSQL(conds, 1)
		sql += " WHERE " + where
		args = a
	}
	if orderBy != "" {
		sql += " ORDER BY " + orderBy
	}
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}
	return sql, args
}

// FindWhere runs a conditional SELECT *.
func (d *DB) FindWhere(ctx context.Context, table string, conds map[string]any, orderBy string, limit int) (pgx.Rows, error) {
	sql, args := selectSQL(table, conds, orderBy, limit)
	return d.Query(ctx, sql, args...)
}

// FindByID fetches the row with the given id. The caller scans and closes
// the rows; no row is not an error here.
func (d *DB) FindByID(ctx context.Context, table string, id int64) (pgx.Rows, error) {
	return d.FindWhere(ctx, table, map[string]any{"id": id}, "", 1)
}

// UpdateWhere updates matching rows and returns how many changed.
func (d *DB) UpdateWhere(ctx context.Context, table string, set, conds map[string]any) (int64, error) {
	setKeys := sortedKeys(set)
	args := make([]any, 0, len(setKeys)+len(conds))
	parts := make([]string, 0, len(setKeys))
	for i, k := range setKeys {
		parts = append(parts, fmt.Sprintf("%s = $%d", k, i+1))
		args = append(args, set[k])
	}
	sql := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(parts, ", "))
	if len(conds) > 0 {
		where, a := whereSQL(conds, len(setKeys)+1)
		sql += " WHERE " + where
		args = append(args, a...)
	}
	return d.Exec(ctx, sql, args...)
}

// DeleteWhere deletes matching rows and returns how many were removed.
func (d *DB) DeleteWhere(ctx context.Context, table string, conds map[string]any) (int64, error) {
	sql := "DELETE FROM " + table
	var args []any
	if len(conds) > 0 {
		where, a := whereSQL(conds, 1)
		sql += " WHERE " + where
		args = a
	}
	return d.Exec(ctx, sql, args...)
}

// Count returns the number of matching rows.
func (d *DB) Count(ctx context.Context, table string, conds map[string]any) (int64, error) {
	sql := "SELECT COUNT(*) FROM " + table
	var args []any
	if len(conds) > 0 {
		where, a := whereSQL(conds, 1)
		sql += " WHERE " + where
		args = a
	}
	var n int64
	if err := d.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, Translate(err)
	}
	return n, nil
}

// Exists reports whether at least one matching row exists.
func (d *DB) Exists(ctx context.Context, table string, conds map[string]any) (bool, error) {
	n, err := d.Count(ctx, table, conds)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
