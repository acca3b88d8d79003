// ABOUTME: SQLite persistence for tool invocation records.
// ABOUTME: Feeds the status page's recent-activity listing.

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// maxStoredError caps the error text kept per invocation record.
const maxStoredError = 1000

// RecordInvocation persists one tool execution record.
// Long error messages are truncated before storage.
func (s *SQLiteStore) RecordInvocation(ctx context.Context, inv *Invocation) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}

	errText := inv.Error
	if len(errText) > maxStoredError {
		errText = errText[:maxStoredError]
	}

	var action *string
	if inv.Action != "" {
		action = &inv.Action
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invocations (id, tool, action, success, error, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.Tool, action, inv.Success, errText, inv.ElapsedMS,
		inv.CreatedAt.Format(time.RFC3339Nano))

	return err
}

// ListInvocations returns the most recent invocation records, newest first.
func (s *SQLiteStore) ListInvocations(ctx context.Context, limit int) ([]*Invocation, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tool, action, success, error, elapsed_ms, created_at FROM invocations
		ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var invocations []*Invocation
	for rows.Next() {
		var inv Invocation
		var action, errText sql.NullString
		var createdAt string
		if err := rows.Scan(&inv.ID, &inv.Tool, &action, &inv.Success, &errText, &inv.ElapsedMS, &createdAt); err != nil {
			return nil, err
		}
		inv.Action = action.String
		inv.Error = errText.String
		inv.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		invocations = append(invocations, &inv)
	}
	return invocations, rows.Err()
}
