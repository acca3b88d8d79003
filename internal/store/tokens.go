// ABOUTME: SQLite persistence for API tokens with bcrypt-hashed secrets.
// ABOUTME: Token plaintext is "{id}.{secret}" and is only returned at creation.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Dummy hash compared against when a token's ID is unknown, so that
// lookups take the same time whether or not the ID exists.
const dummyTokenHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// CreateAPIToken mints a new token and returns its plaintext form.
// Only the bcrypt hash of the secret half is stored.
func (s *SQLiteStore) CreateAPIToken(ctx context.Context, name string) (string, *APIToken, error) {
	id := uuid.New().String()
	secret := uuid.New().String()

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hashing token secret: %w", err)
	}

	record := &APIToken{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO api_tokens (id, name, secret_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, record.ID, record.Name, string(hash), record.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return "", nil, err
	}

	return id + "." + secret, record, nil
}

// VerifyAPIToken checks a plaintext token against the stored hash.
// Unknown IDs and mismatched secrets both return ErrInvalidToken after a
// bcrypt comparison, keeping verification constant-time either way.
func (s *SQLiteStore) VerifyAPIToken(ctx context.Context, plaintext string) (*APIToken, error) {
	id, secret, ok := strings.Cut(plaintext, ".")
	if !ok || id == "" || secret == "" {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyTokenHash), []byte(plaintext))
		return nil, ErrInvalidToken
	}

	var record APIToken
	var hash, createdAt string
	var lastUsed sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, secret_hash, created_at, last_used_at FROM api_tokens WHERE id = ?
	`, id).Scan(&record.ID, &record.Name, &hash, &createdAt, &lastUsed)
	if err == sql.ErrNoRows {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyTokenHash), []byte(secret))
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return nil, ErrInvalidToken
	}

	record.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if lastUsed.Valid {
		t, err := time.Parse(time.RFC3339, lastUsed.String)
		if err == nil {
			record.LastUsedAt = &t
		}
	}

	// Best effort; verification already succeeded
	now := time.Now()
	_, _ = s.db.ExecContext(ctx, `
		UPDATE api_tokens SET last_used_at = ? WHERE id = ?
	`, now.Format(time.RFC3339), record.ID)

	return &record, nil
}

// ListAPITokens returns all token records, newest first.
func (s *SQLiteStore) ListAPITokens(ctx context.Context) ([]*APIToken, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, last_used_at FROM api_tokens ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tokens []*APIToken
	for rows.Next() {
		var record APIToken
		var createdAt string
		var lastUsed sql.NullString
		if err := rows.Scan(&record.ID, &record.Name, &createdAt, &lastUsed); err != nil {
			return nil, err
		}
		record.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if lastUsed.Valid {
			t, err := time.Parse(time.RFC3339, lastUsed.String)
			if err == nil {
				record.LastUsedAt = &t
			}
		}
		tokens = append(tokens, &record)
	}
	return tokens, rows.Err()
}

// DeleteAPIToken removes a token record by ID.
func (s *SQLiteStore) DeleteAPIToken(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM api_tokens WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
