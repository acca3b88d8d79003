// ABOUTME: Tests for invocation record persistence.
// ABOUTME: Covers ID assignment, error truncation, and newest-first listing.

package store

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRecordInvocation(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	inv := &Invocation{
		Tool:      "bash",
		Action:    "execute",
		Success:   true,
		ElapsedMS: 42,
	}
	if err := s.RecordInvocation(ctx, inv); err != nil {
		t.Fatalf("RecordInvocation failed: %v", err)
	}
	if inv.ID == "" {
		t.Error("expected ID to be set")
	}
	if inv.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	records, err := s.ListInvocations(ctx, 10)
	if err != nil {
		t.Fatalf("ListInvocations failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.Tool != "bash" || got.Action != "execute" {
		t.Errorf("record mismatch: tool=%q action=%q", got.Tool, got.Action)
	}
	if !got.Success {
		t.Error("expected success")
	}
	if got.ElapsedMS != 42 {
		t.Errorf("ElapsedMS mismatch: got %d", got.ElapsedMS)
	}
}

func TestRecordInvocationTruncatesError(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	inv := &Invocation{
		Tool:    "web_search",
		Success: false,
		Error:   strings.Repeat("x", maxStoredError+500),
	}
	if err := s.RecordInvocation(ctx, inv); err != nil {
		t.Fatalf("RecordInvocation failed: %v", err)
	}

	records, err := s.ListInvocations(ctx, 1)
	if err != nil {
		t.Fatalf("ListInvocations failed: %v", err)
	}
	if len(records[0].Error) != maxStoredError {
		t.Errorf("expected error truncated to %d bytes, got %d", maxStoredError, len(records[0].Error))
	}
}

func TestListInvocationsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i, tool := range []string{"bash", "planning", "browser"} {
		inv := &Invocation{
			Tool:      tool,
			Success:   true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.RecordInvocation(ctx, inv); err != nil {
			t.Fatalf("RecordInvocation failed: %v", err)
		}
	}

	records, err := s.ListInvocations(ctx, 2)
	if err != nil {
		t.Fatalf("ListInvocations failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Tool != "browser" || records[1].Tool != "planning" {
		t.Errorf("unexpected order: %s, %s", records[0].Tool, records[1].Tool)
	}
}
