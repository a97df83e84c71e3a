package audit_test

import (
	"context"
	"testing"
	"time"

	"taskboard/internal/audit"
	"taskboard/internal/db"
	"taskboard/internal/migrate"
)

func newWriter(t *testing.T) audit.Writer {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	w := audit.New(conn)
	w.Now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return w
}

func TestAppendAndList(t *testing.T) {
	w := newWriter(t)
	ctx := context.Background()

	if err := w.Append(ctx, "p1", "t1", "alice", "task.created"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := w.Append(ctx, "p1", "t1", "alice", `task.deleted "Fuel"`); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := w.Append(ctx, "p1", "", "alice", "project.created"); err != nil {
		t.Fatalf("append project-level: %v", err)
	}
	if err := w.Append(ctx, "p2", "t9", "bob", "task.created"); err != nil {
		t.Fatalf("append other project: %v", err)
	}

	records, err := w.List(ctx, "p1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records for p1, got %d", len(records))
	}
	// newest first
	if records[0].Action != "project.created" || records[2].Action != "task.created" {
		t.Fatalf("order: %+v", records)
	}
	if records[0].TaskID != "" {
		t.Fatalf("project-level record should have no task id: %+v", records[0])
	}
	if records[1].TS != "2026-01-01T00:00:00Z" {
		t.Fatalf("timestamp %q", records[1].TS)
	}

	limited, err := w.List(ctx, "p1", 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Action != "project.created" {
		t.Fatalf("limit: %+v", limited)
	}
}
