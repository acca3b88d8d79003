// ABOUTME: Tests for API token creation, verification, and deletion.
// ABOUTME: Verifies secrets are stored hashed and bad tokens are rejected.

package store

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCreateAndVerifyAPIToken(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	plaintext, record, err := s.CreateAPIToken(ctx, "ci")
	if err != nil {
		t.Fatalf("CreateAPIToken failed: %v", err)
	}
	if record.ID == "" {
		t.Error("expected token ID to be set")
	}
	if !strings.HasPrefix(plaintext, record.ID+".") {
		t.Errorf("plaintext %q does not start with token ID", plaintext)
	}

	verified, err := s.VerifyAPIToken(ctx, plaintext)
	if err != nil {
		t.Fatalf("VerifyAPIToken failed: %v", err)
	}
	if verified.ID != record.ID {
		t.Errorf("ID mismatch: got %q, want %q", verified.ID, record.ID)
	}
	if verified.Name != "ci" {
		t.Errorf("Name mismatch: got %q", verified.Name)
	}
}

func TestVerifyAPITokenRejectsBadSecret(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	_, record, err := s.CreateAPIToken(ctx, "dev")
	if err != nil {
		t.Fatalf("CreateAPIToken failed: %v", err)
	}

	cases := []string{
		record.ID + ".wrong-secret",
		"unknown-id.whatever",
		"not-a-token",
		"",
	}
	for _, tok := range cases {
		_, err := s.VerifyAPIToken(ctx, tok)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestVerifyAPITokenUpdatesLastUsed(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	plaintext, _, err := s.CreateAPIToken(ctx, "dev")
	if err != nil {
		t.Fatalf("CreateAPIToken failed: %v", err)
	}

	if _, err := s.VerifyAPIToken(ctx, plaintext); err != nil {
		t.Fatalf("VerifyAPIToken failed: %v", err)
	}

	tokens, err := s.ListAPITokens(ctx)
	if err != nil {
		t.Fatalf("ListAPITokens failed: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	if tokens[0].LastUsedAt == nil {
		t.Error("expected LastUsedAt to be set after verification")
	}
}

func TestDeleteAPIToken(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	plaintext, record, err := s.CreateAPIToken(ctx, "old")
	if err != nil {
		t.Fatalf("CreateAPIToken failed: %v", err)
	}

	if err := s.DeleteAPIToken(ctx, record.ID); err != nil {
		t.Fatalf("DeleteAPIToken failed: %v", err)
	}

	_, err = s.VerifyAPIToken(ctx, plaintext)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken after delete, got %v", err)
	}

	if err := s.DeleteAPIToken(ctx, record.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}
