package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "ledger", "runs.db"))
	if err != nil {
		t.Fatalf("NewStore() err=%v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub := &Submission{RunID: "run-1", JobID: "job-123", ExperimentID: "0", ProjectURI: "/work/demo", EntryPoint: "main", ResourceProfile: "gpu-large"}
	if err := s.Record(ctx, sub); err != nil {
		t.Fatalf("Record() err=%v", err)
	}
	if sub.ID == "" || sub.CreatedAt.IsZero() {
		t.Fatalf("Record() should fill ID and CreatedAt: %+v", sub)
	}

	got, err := s.ByRunID(ctx, "run-1")
	if err != nil {
		t.Fatalf("ByRunID() err=%v", err)
	}
	if got.JobID != "job-123" || got.ResourceProfile != "gpu-large" || got.ID != sub.ID {
		t.Fatalf("ByRunID()=%+v", got)
	}

	if _, err := s.ByRunID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordDuplicateRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.Record(ctx, &Submission{RunID: "run-1", JobID: "a", ProjectURI: "p", EntryPoint: "main"}); err != nil {
		t.Fatalf("Record() err=%v", err)
	}
	if err := s.Record(ctx, &Submission{RunID: "run-1", JobID: "b", ProjectURI: "p", EntryPoint: "main"}); err == nil {
		t.Fatalf("expected error for duplicate run id")
	}
	if err := s.Record(ctx, &Submission{RunID: "run-2"}); err == nil {
		t.Fatalf("expected error for missing job id")
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, run := range []string{"r1", "r2", "r3"} {
		sub := &Submission{RunID: run, JobID: "j-" + run, ProjectURI: "p", EntryPoint: "main", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.Record(ctx, sub); err != nil {
			t.Fatalf("Record() err=%v", err)
		}
	}

	subs, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() err=%v", err)
	}
	if len(subs) != 2 || subs[0].RunID != "r3" || subs[1].RunID != "r2" {
		t.Fatalf("List(2)=%+v", subs)
	}
	if !subs[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("CreatedAt=%v", subs[0].CreatedAt)
	}

	all, err := s.List(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("List(0)=%d,%v", len(all), err)
	}
}
