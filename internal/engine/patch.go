package engine

import (
	"fmt"
	"strings"
	"time"

	"taskboard/internal/domain"
)

// TaskPatch carries a partial task update. Nil fields are absent from the
// payload and leave the current value alone.
type TaskPatch struct {
	Title       *string
	Description *string
	Type        *string
	Status      *string
	Priority    *string
	Timeline    *domain.Timeline
	AssignedTo  *[]string
}

// applyPatch validates the patch, applies the changed fields to the task and
// returns one diff fragment per changed field, in field order. The task is
// untouched when an error is returned. resolve maps user ids to display
// names for assignee fragments.
func applyPatch(t *domain.Task, p TaskPatch, resolve func(ids []string) map[string]string) ([]string, error) {
	if p.Status != nil && !domain.ValidStatus(*p.Status) {
		return nil, ValidationError{Field: "status", Message: fmt.Sprintf("invalid status %q", *p.Status)}
	}
	if p.Priority != nil && !domain.ValidPriority(*p.Priority) {
		return nil, ValidationError{Field: "priority", Message: fmt.Sprintf("invalid priority %q", *p.Priority)}
	}
	if p.Type != nil && !domain.ValidTaskType(*p.Type) {
		return nil, ValidationError{Field: "type", Message: fmt.Sprintf("invalid type %q", *p.Type)}
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, ValidationError{Field: "title", Message: "title must not be empty"}
	}
	if p.Timeline != nil {
		if err := validateTimeline(*p.Timeline); err != nil {
			return nil, err
		}
	}

	var frags []string
	if p.Title != nil && *p.Title != t.Title {
		frags = append(frags, fmt.Sprintf("Title changed from %q to %q", t.Title, *p.Title))
		t.Title = *p.Title
	}
	if p.Description != nil && *p.Description != t.Description {
		frags = append(frags, "Description updated")
		t.Description = *p.Description
	}
	if p.Status != nil && *p.Status != t.Status {
		frags = append(frags, fmt.Sprintf("Status changed from %q to %q", t.Status, *p.Status))
		t.Status = *p.Status
	}
	if p.Priority != nil && *p.Priority != t.Priority {
		frags = append(frags, fmt.Sprintf("Priority changed from %q to %q", t.Priority, *p.Priority))
		t.Priority = *p.Priority
	}
	if p.Type != nil && *p.Type != t.Type {
		frags = append(frags, fmt.Sprintf("Type changed from %q to %q", t.Type, *p.Type))
		t.Type = *p.Type
	}
	if p.Timeline != nil {
		if !sameDate(t.Timeline.Start, p.Timeline.Start) {
			frags = append(frags, fmt.Sprintf("Start date changed from %q to %q",
				formatDate(t.Timeline.Start), formatDate(p.Timeline.Start)))
			t.Timeline.Start = p.Timeline.Start
		}
		if !sameDate(t.Timeline.End, p.Timeline.End) {
			frags = append(frags, fmt.Sprintf("End date changed from %q to %q",
				formatDate(t.Timeline.End), formatDate(p.Timeline.End)))
			t.Timeline.End = p.Timeline.End
		}
	}
	if p.AssignedTo != nil {
		added := diffIDs(*p.AssignedTo, t.AssignedTo)
		removed := diffIDs(t.AssignedTo, *p.AssignedTo)
		if len(added) > 0 || len(removed) > 0 {
			names := resolve(append(append([]string{}, added...), removed...))
			var parts []string
			if len(added) > 0 {
				parts = append(parts, "Added members: "+joinNames(added, names))
			}
			if len(removed) > 0 {
				parts = append(parts, "Removed members: "+joinNames(removed, names))
			}
			frags = append(frags, strings.Join(parts, ". "))
			t.AssignedTo = append([]string{}, *p.AssignedTo...)
		}
	}
	return frags, nil
}

func validateTimeline(tl domain.Timeline) error {
	start, okS := parseDate(tl.Start)
	if !okS && tl.Start != nil && *tl.Start != "" {
		return ValidationError{Field: "timeline", Message: fmt.Sprintf("unparseable start date %q", *tl.Start)}
	}
	end, okE := parseDate(tl.End)
	if !okE && tl.End != nil && *tl.End != "" {
		return ValidationError{Field: "timeline", Message: fmt.Sprintf("unparseable end date %q", *tl.End)}
	}
	if okS && okE && end.Before(start) {
		return ValidationError{Field: "timeline", Message: "end date precedes start date"}
	}
	return nil
}

// diffIDs returns the ids in a that are not in b, preserving a's order.
func diffIDs(a, b []string) []string {
	var out []string
	for _, id := range a {
		found := false
		for _, other := range b {
			if id == other {
				found = true
				break
			}
		}
		if !found {
			out = append(out, id)
		}
	}
	return out
}

func joinNames(ids []string, names map[string]string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if n, ok := names[id]; ok && n != "" {
			out[i] = n
		} else {
			out[i] = "Unknown"
		}
	}
	return strings.Join(out, ", ")
}

func parseDate(v *string) (time.Time, bool) {
	if v == nil || *v == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, *v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func formatDate(v *string) string {
	ts, ok := parseDate(v)
	if !ok {
		return "Not set"
	}
	return ts.Format("02/01/2006")
}

func sameDate(a, b *string) bool {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	if okA != okB {
		return false
	}
	if !okA {
		return true
	}
	return ta.Equal(tb)
}
