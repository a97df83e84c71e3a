package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskboard/internal/db"
	"taskboard/internal/domain"
	"taskboard/internal/migrate"
	"taskboard/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store.Store{DB: conn}
}

func sampleProject(id string) domain.Project {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	return domain.Project{
		ID:        id,
		Name:      "Apollo",
		CreatedBy: "alice",
		Members:   []string{"bob"},
		Tasks: []domain.Task{{
			ID:         "t1",
			Title:      "Fuel",
			Type:       domain.TaskTypeTask,
			Status:     domain.StatusNotStarted,
			Priority:   domain.PriorityNone,
			AssignedTo: []string{"alice"},
			CreatedBy:  "alice",
			CreatedAt:  ts,
			UpdatedAt:  ts,
			ActivityLog: []domain.ActivityLogEntry{{
				Action: "Task created", PerformedBy: "alice", Timestamp: ts,
			}},
		}},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func TestProjectRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := sampleProject("p1")
	if err := s.SaveProject(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.FindProject(ctx, "p1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Name != "Apollo" || len(got.Tasks) != 1 || got.Tasks[0].ActivityLog[0].Action != "Task created" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	// save again replaces the document
	p.Name = "Artemis"
	if err := s.SaveProject(ctx, p); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, err = s.FindProject(ctx, "p1")
	if err != nil {
		t.Fatalf("refind: %v", err)
	}
	if got.Name != "Artemis" {
		t.Fatalf("update not applied: %q", got.Name)
	}

	if err := s.DeleteProject(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.FindProject(ctx, "p1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.DeleteProject(ctx, "p1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("double delete should be not found, got %v", err)
	}
}

func TestListProjectsByCreator(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleProject("p1")
	b := sampleProject("p2")
	b.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	c := sampleProject("p3")
	c.CreatedBy = "someone-else"
	for _, p := range []domain.Project{a, b, c} {
		if err := s.SaveProject(ctx, p); err != nil {
			t.Fatalf("save %s: %v", p.ID, err)
		}
	}

	mine, err := s.ListProjectsByCreator(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != "p2" || mine[1].ID != "p1" {
		t.Fatalf("expected newest first [p2 p1], got %+v", mine)
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Now().UTC().Format(time.RFC3339)

	u := domain.User{ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "x", CreatedAt: ts, UpdatedAt: ts}
	if err := s.InsertUser(ctx, u); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.GetUserByUsername(ctx, "alice"); err != nil {
		t.Fatalf("by username: %v", err)
	}
	if _, err := s.GetUserByUsernameOrEmail(ctx, "other", "alice@example.com"); err != nil {
		t.Fatalf("by email: %v", err)
	}
	if _, err := s.GetUser(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	// unique username enforced by the schema
	dupe := u
	dupe.ID = "u2"
	dupe.Email = "alt@example.com"
	if err := s.InsertUser(ctx, dupe); err == nil {
		t.Fatal("duplicate username should fail")
	}

	names, err := s.UsernamesByID(ctx, []string{"u1", "missing"})
	if err != nil {
		t.Fatalf("usernames: %v", err)
	}
	if names["u1"] != "alice" {
		t.Fatalf("names %v", names)
	}
	if _, ok := names["missing"]; ok {
		t.Fatalf("unknown id should be absent: %v", names)
	}
}

func TestAPIKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Now().UTC().Format(time.RFC3339)

	key := domain.APIKey{ID: "k1", UserID: "u1", Name: "ci", KeyHash: store.HashAPIKey("tb_secret"), CreatedAt: ts}
	if err := s.InsertAPIKey(ctx, key); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := s.GetAPIKeyByHash(ctx, store.HashAPIKey("tb_secret"))
	if err != nil {
		t.Fatalf("by hash: %v", err)
	}
	if got.UserID != "u1" || got.Name != "ci" {
		t.Fatalf("key %+v", got)
	}
	if _, err := s.GetAPIKeyByHash(ctx, store.HashAPIKey("wrong")); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.DeleteAPIKey(ctx, "k1", "someone-else"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("delete scoped to owner, got %v", err)
	}
	if err := s.DeleteAPIKey(ctx, "k1", "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
