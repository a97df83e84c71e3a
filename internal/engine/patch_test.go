package engine

import (
	"errors"
	"testing"

	"taskboard/internal/domain"
)

func fixedResolver(ids []string) map[string]string {
	names := map[string]string{"u1": "u1-name", "u2": "u2-name"}
	out := map[string]string{}
	for _, id := range ids {
		if n, ok := names[id]; ok {
			out[id] = n
		}
	}
	return out
}

func baseTask() domain.Task {
	return domain.Task{
		ID:         "t1",
		Title:      "A",
		Type:       domain.TaskTypeTask,
		Status:     domain.StatusNotStarted,
		Priority:   domain.PriorityNone,
		AssignedTo: []string{"u1"},
	}
}

func strPtr(s string) *string { return &s }

func TestApplyPatchTitle(t *testing.T) {
	task := baseTask()
	frags, err := applyPatch(&task, TaskPatch{Title: strPtr("B")}, fixedResolver)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(frags) != 1 {
		t.Fatalf("expected 1 fragment, got %d: %v", len(frags), frags)
	}
	want := `Title changed from "A" to "B"`
	if frags[0] != want {
		t.Fatalf("fragment %q, want %q", frags[0], want)
	}
	if task.Title != "B" {
		t.Fatalf("title not applied: %q", task.Title)
	}
}

func TestApplyPatchNoChanges(t *testing.T) {
	task := baseTask()
	frags, err := applyPatch(&task, TaskPatch{
		Title:      strPtr("A"),
		Status:     strPtr(domain.StatusNotStarted),
		Priority:   strPtr(domain.PriorityNone),
		AssignedTo: &[]string{"u1"},
	}, fixedResolver)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(frags) != 0 {
		t.Fatalf("expected no fragments, got %v", frags)
	}
}

func TestApplyPatchAssigneeSwap(t *testing.T) {
	task := baseTask()
	frags, err := applyPatch(&task, TaskPatch{AssignedTo: &[]string{"u2"}}, fixedResolver)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(frags) != 1 {
		t.Fatalf("expected 1 fragment, got %v", frags)
	}
	want := "Added members: u2-name. Removed members: u1-name"
	if frags[0] != want {
		t.Fatalf("fragment %q, want %q", frags[0], want)
	}
	if len(task.AssignedTo) != 1 || task.AssignedTo[0] != "u2" {
		t.Fatalf("assignees not applied: %v", task.AssignedTo)
	}
}

func TestApplyPatchAssigneeReorderIsNoop(t *testing.T) {
	task := baseTask()
	task.AssignedTo = []string{"u1", "u2"}
	frags, err := applyPatch(&task, TaskPatch{AssignedTo: &[]string{"u2", "u1"}}, fixedResolver)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(frags) != 0 {
		t.Fatalf("expected no fragments for reorder, got %v", frags)
	}
}

func TestApplyPatchInvalidStatus(t *testing.T) {
	task := baseTask()
	_, err := applyPatch(&task, TaskPatch{Title: strPtr("B"), Status: strPtr("Blocked")}, fixedResolver)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if task.Title != "A" || task.Status != domain.StatusNotStarted {
		t.Fatalf("task mutated despite error: %+v", task)
	}
}

func TestApplyPatchDescription(t *testing.T) {
	task := baseTask()
	frags, err := applyPatch(&task, TaskPatch{Description: strPtr("secret details")}, fixedResolver)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(frags) != 1 || frags[0] != "Description updated" {
		t.Fatalf("fragments %v", frags)
	}
}

func TestApplyPatchDates(t *testing.T) {
	task := baseTask()
	frags, err := applyPatch(&task, TaskPatch{
		Timeline: &domain.Timeline{Start: strPtr("2026-03-05"), End: strPtr("2026-03-20T00:00:00Z")},
	}, fixedResolver)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(frags) != 2 {
		t.Fatalf("expected 2 fragments, got %v", frags)
	}
	if frags[0] != `Start date changed from "Not set" to "05/03/2026"` {
		t.Fatalf("start fragment %q", frags[0])
	}
	if frags[1] != `End date changed from "Not set" to "20/03/2026"` {
		t.Fatalf("end fragment %q", frags[1])
	}
}

func TestApplyPatchDateRangeValidation(t *testing.T) {
	task := baseTask()
	_, err := applyPatch(&task, TaskPatch{
		Timeline: &domain.Timeline{Start: strPtr("2026-03-20"), End: strPtr("2026-03-05")},
	}, fixedResolver)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestApplyPatchUnparseableDates(t *testing.T) {
	task := baseTask()
	_, err := applyPatch(&task, TaskPatch{
		Timeline: &domain.Timeline{Start: strPtr("next tuesday")},
	}, fixedResolver)
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Field != "timeline" {
		t.Fatalf("expected timeline ValidationError, got %v", err)
	}
	if task.Timeline.Start != nil {
		t.Fatalf("task mutated by rejected patch: %+v", task.Timeline)
	}

	_, err = applyPatch(&task, TaskPatch{
		Timeline: &domain.Timeline{End: strPtr("03-2026-05")},
	}, fixedResolver)
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for end date, got %v", err)
	}
}

func TestApplyPatchCombinedUpdate(t *testing.T) {
	task := baseTask()
	frags, err := applyPatch(&task, TaskPatch{
		Title:    strPtr("B"),
		Status:   strPtr(domain.StatusInProgress),
		Priority: strPtr(domain.PriorityHigh),
	}, fixedResolver)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments, got %v", frags)
	}
	if frags[1] != `Status changed from "Not Started" to "In Progress"` {
		t.Fatalf("status fragment %q", frags[1])
	}
	if frags[2] != `Priority changed from "none" to "high"` {
		t.Fatalf("priority fragment %q", frags[2])
	}
}
