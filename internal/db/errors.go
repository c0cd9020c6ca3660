package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Category is a human-readable class of database failure.
type Category string

const (
	CategoryDuplicate        Category = "duplicate entry"
	CategoryInvalidReference Category = "invalid reference"
	CategoryReferenced       Category = "referenced by other records"
	CategoryInvalidField     Category = "invalid field"
	CategorySyntax           Category = "query syntax error"
	CategoryAccessDenied     Category = "access denied"
	CategoryConnRefused      Category = "connection refused"
	CategoryConnLost         Category = "connection lost"
	CategoryGeneric          Category = "database error"
)

// Error wraps a driver error with its category and SQLSTATE code.
type Error struct {
	Category Category
	Code     string
	cause    error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s [%s]: %v", e.Category, e.Code, e.cause)
	}
	return fmt.Sprintf("%s: %v", e.Category, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets callers match on category: errors.Is(err, &Error{Category: ...}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Category == e.Category
}

// Translate maps a vendor error to an *Error with a readable category.
// pgx.ErrNoRows and nil pass through untouched; everything else is wrapped,
// never dropped.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &Error{Category: categorize(pgErr), Code: pgErr.Code, cause: err}
	}

	// Dial-time failures never reach the PgError path.
	if strings.Contains(err.Error(), "connection refused") {
		return &Error{Category: CategoryConnRefused, cause: err}
	}
	return &Error{Category: CategoryGeneric, cause: err}
}

func categorize(pgErr *pgconn.PgError) Category {
	switch pgErr.Code {
	case "23505": // unique_violation
		return CategoryDuplicate
	case "23503": // foreign_key_violation, both directions
		if strings.HasPrefix(pgErr.Message, "update or delete") {
			return CategoryReferenced
		}
		return CategoryInvalidReference
	case "42703", "42P01": // undefined_column, undefined_table
		return CategoryInvalidField
	case "42601": // syntax_error
		return CategorySyntax
	case "28P01", "28000", "42501": // bad password, bad auth, insufficient_privilege
		return CategoryAccessDenied
	case "08001", "08004": // can't connect, rejected
		return CategoryConnRefused
	case "08003", "08006", "57P01": // closed, failure, admin_shutdown
		return CategoryConnLost
	}
	return CategoryGeneric
}
