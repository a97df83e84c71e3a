package engine

import (
	"fmt"
	"testing"
	"time"
)

func TestAppendActivityEmptyDiffIsNoop(t *testing.T) {
	task := baseTask()
	appendActivity(&task, nil, "u1", time.Now())
	if len(task.ActivityLog) != 0 {
		t.Fatalf("expected empty log, got %d entries", len(task.ActivityLog))
	}
}

func TestAppendActivityJoinsFragments(t *testing.T) {
	task := baseTask()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	appendActivity(&task, []string{"Description updated", "Task status updated to Done"}, "u1", now)
	if len(task.ActivityLog) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(task.ActivityLog))
	}
	entry := task.ActivityLog[0]
	if entry.Action != "Description updated. Task status updated to Done" {
		t.Fatalf("action %q", entry.Action)
	}
	if entry.PerformedBy != "u1" || entry.Timestamp != "2026-01-02T03:04:05Z" {
		t.Fatalf("entry %+v", entry)
	}
}

func TestActivityPagination(t *testing.T) {
	task := baseTask()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		appendActivity(&task, []string{fmt.Sprintf("entry %d", i)}, "u1", base.Add(time.Duration(i)*time.Minute))
	}

	page1 := activityPage(task, 1, nil)
	if page1.TotalLogs != 12 || page1.TotalPages != 3 || page1.CurrentPage != 1 {
		t.Fatalf("page 1 meta: %+v", page1)
	}
	if len(page1.Logs) != 5 {
		t.Fatalf("page 1 size %d", len(page1.Logs))
	}
	if page1.Logs[0].Action != "entry 11" || page1.Logs[4].Action != "entry 7" {
		t.Fatalf("page 1 order: %v", page1.Logs)
	}

	page3 := activityPage(task, 3, nil)
	if len(page3.Logs) != 2 {
		t.Fatalf("page 3 size %d", len(page3.Logs))
	}
	if page3.Logs[0].Action != "entry 1" || page3.Logs[1].Action != "entry 0" {
		t.Fatalf("page 3 order: %v", page3.Logs)
	}

	beyond := activityPage(task, 9, nil)
	if len(beyond.Logs) != 0 || beyond.TotalPages != 3 {
		t.Fatalf("out-of-range page: %+v", beyond)
	}
}

func TestActivityPaginationTimestampTies(t *testing.T) {
	task := baseTask()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	appendActivity(&task, []string{"first"}, "u1", now)
	appendActivity(&task, []string{"second"}, "u1", now)

	page := activityPage(task, 1, nil)
	if page.Logs[0].Action != "second" || page.Logs[1].Action != "first" {
		t.Fatalf("tie order: %v", page.Logs)
	}
}

func TestActivityPageDefaultsAndNames(t *testing.T) {
	task := baseTask()
	appendActivity(&task, []string{"one"}, "u1", time.Now())

	page := activityPage(task, 0, map[string]string{"u1": "alice"})
	if page.CurrentPage != 1 {
		t.Fatalf("non-positive page should default to 1, got %d", page.CurrentPage)
	}
	if page.Logs[0].PerformedByName != "alice" {
		t.Fatalf("name %q", page.Logs[0].PerformedByName)
	}

	unresolved := activityPage(task, 1, nil)
	if unresolved.Logs[0].PerformedByName != "u1" {
		t.Fatalf("unresolved performer should keep the id, got %q", unresolved.Logs[0].PerformedByName)
	}
}
