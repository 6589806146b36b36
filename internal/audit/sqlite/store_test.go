package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kapilduraphe/okta-mcp-server/internal/audit"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRecordAndListRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := audit.RunRecord{
		RowsProcessed: 3, Onboarded: 2, ImportFailures: 1,
		GroupsAssigned: 2, ApplicationsProvisioned: 4,
		ReportJSON: `{"note":""}`,
		CreatedAt:  time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	second := audit.RunRecord{
		RowsProcessed: 1, Onboarded: 1,
		ReportJSON: `{}`,
		CreatedAt:  time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC),
	}
	if err := store.RecordRun(ctx, first); err != nil {
		t.Fatalf("record first: %v", err)
	}
	if err := store.RecordRun(ctx, second); err != nil {
		t.Fatalf("record second: %v", err)
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	// Newest first.
	if runs[0].RowsProcessed != 1 || runs[1].RowsProcessed != 3 {
		t.Errorf("unexpected order: %+v", runs)
	}
	if runs[1].ImportFailures != 1 || runs[1].ApplicationsProvisioned != 4 {
		t.Errorf("lost counters: %+v", runs[1])
	}
	if runs[1].ReportJSON != `{"note":""}` {
		t.Errorf("lost report json: %q", runs[1].ReportJSON)
	}
}

func TestListRunsRejectsNonPositiveLimit(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.ListRuns(context.Background(), 0); err == nil {
		t.Fatal("expected error for limit 0")
	}
}
