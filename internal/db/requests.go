package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// RequestType discriminates the polymorphic request rows.
type RequestType string

const (
	RequestAppeal      RequestType = "appeal"
	RequestReport      RequestType = "report"
	RequestCitizenship RequestType = "citizenship"
)

// RequestStatus is the review state of a request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

// ErrNotPending is returned when reviewing a request that has already been
// decided (or does not exist).
var ErrNotPending = errors.New("request is not pending")

// Request is a row of the polymorphic base table.
type Request struct {
	ID             int64
	Type           RequestType
	Status         RequestStatus
	RequesterID    int64
	ReviewerID     *int64
	AdminNotes     *string
	CacheMessageID *string
	CreatedAt      time.Time
	ReviewedAt     *time.Time
}

// PendingRequest is a base row joined with its requester for review listings.
type PendingRequest struct {
	Request
	RequesterDiscordID string
	RequesterName      string
}

// AppealDetail is the appeal-specific payload.
type AppealDetail struct {
	SanctionDescription string
	AppealDescription   string
	MediaLinks          []string
}

// ReportDetail is the report-specific payload.
type ReportDetail struct {
	ReportedUsernames   []string
	IncidentDescription string
	EvidenceLinks       []string
}

// CitizenshipDetail is the citizenship-specific payload.
type CitizenshipDetail struct {
	AdditionalNotes string
}

// submitRequest inserts the base row inside a transaction and returns its id.
func submitRequest(ctx context.Context, tx pgx.Tx, typ RequestType, requesterID int64) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx,
		"INSERT INTO requests (type, requester_id) VALUES ($1, $2) RETURNING id",
		typ, requesterID).Scan(&id)
	return id, err
}

// SubmitAppeal stores an appeal: user upsert, base row, and detail row in one
// transaction.
func (d *DB) SubmitAppeal(ctx context.Context, discordID, username string, detail AppealDetail) (int64, error) {
	var id int64
	err := d.WithTx(ctx, func(tx pgx.Tx) error {
		u, err := ensureUser(ctx, tx, discordID, username)
		if err != nil {
			return err
		}
		if id, err = submitRequest(ctx, tx, RequestAppeal, u.ID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO appeal_details (request_id, sanction_description, appeal_description, media_links)
			VALUES ($1, $2, $3, $4)`,
			id, detail.SanctionDescription, detail.AppealDescription, detail.MediaLinks)
		return err
	})
	return id, err
}

// SubmitReport stores a report in one transaction.
func (d *DB) SubmitReport(ctx context.Context, discordID, username string, detail ReportDetail) (int64, error) {
	var id int64
	err := d.WithTx(ctx, func(tx pgx.Tx) error {
		u, err := ensureUser(ctx, tx, discordID, username)
		if err != nil {
			return err
		}
		if id, err = submitRequest(ctx, tx, RequestReport, u.ID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO report_details (request_id, reported_usernames, incident_description, evidence_links)
			VALUES ($1, $2, $3, $4)`,
			id, detail.ReportedUsernames, detail.IncidentDescription, detail.EvidenceLinks)
		return err
	})
	return id, err
}

// SubmitCitizenship stores a citizenship request in one transaction.
func (d *DB) SubmitCitizenship(ctx context.Context, discordID, username string, detail CitizenshipDetail) (int64, error) {
	var id int64
	err := d.WithTx(ctx, func(tx pgx.Tx) error {
		u, err := ensureUser(ctx, tx, discordID, username)
		if err != nil {
			return err
		}
		if id, err = submitRequest(ctx, tx, RequestCitizenship, u.ID); err != nil {
			return err
		}
		var notes *string
		if detail.AdditionalNotes != "" {
			notes = &detail.AdditionalNotes
		}
		_, err = tx.Exec(ctx,
			"INSERT INTO citizenship_details (request_id, additional_notes) VALUES ($1, $2)",
			id, notes)
		return err
	})
	return id, err
}

// PendingRequests lists pending requests, oldest first.
func (d *DB) PendingRequests(ctx context.Context, limit int) ([]PendingRequest, error) {
	rows, err := d.Query(ctx, `
		SELECT r.id, r.type, r.status, r.requester_id, r.reviewer_id, r.admin_notes,
		       r.cache_message_id, r.created_at, r.reviewed_at,
		       u.discord_id, u.username
		FROM requests r
		JOIN users u ON u.id = r.requester_id
		WHERE r.status = 'pending'
		ORDER BY r.created_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingRequest
	for rows.Next() {
		var p PendingRequest
		if err := rows.Scan(&p.ID, &p.Type, &p.Status, &p.RequesterID, &p.ReviewerID,
			&p.AdminNotes, &p.CacheMessageID, &p.CreatedAt, &p.ReviewedAt,
			&p.RequesterDiscordID, &p.RequesterName); err != nil {
			return nil, Translate(err)
		}
		out = append(out, p)
	}
	return out, Translate(rows.Err())
}

// ReviewRequest decides a pending request: records the reviewer, the verdict,
// and optional notes. Returns ErrNotPending when the request was already
// decided or does not exist.
func (d *DB) ReviewRequest(ctx context.Context, requestID int64, reviewerDiscordID, reviewerName string, accept bool, notes string) error {
	return d.WithTx(ctx, func(tx pgx.Tx) error {
		reviewer, err := ensureUser(ctx, tx, reviewerDiscordID, reviewerName)
		if err != nil {
			return err
		}

		status := StatusRejected
		if accept {
			status = StatusAccepted
		}
		var notesArg *string
		if notes != "" {
			notesArg = &notes
		}

		tag, err := tx.Exec(ctx, `
			UPDATE requests
			SET status = $1, reviewer_id = $2, admin_notes = $3, reviewed_at = now()
			WHERE id = $4 AND status = 'pending'`,
			status, reviewer.ID, notesArg, requestID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotPending
		}
		return nil
	})
}

// SetCachedMessage remembers the Discord message that mirrors a request, so
// review commands can update it later.
func (d *DB) SetCachedMessage(ctx context.Context, requestID int64, messageID string) error {
	_, err := d.UpdateWhere(ctx, "requests",
		map[string]any{"cache_message_id": messageID},
		map[string]any{"id": requestID})
	return err
}
