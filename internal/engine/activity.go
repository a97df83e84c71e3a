package engine

import (
	"sort"
	"strings"
	"time"

	"taskboard/internal/domain"
)

const activityPageSize = 5

// appendActivity joins diff fragments into one action string and appends a
// single attributed entry. Empty diffs append nothing.
func appendActivity(t *domain.Task, frags []string, actorID string, now time.Time) {
	action := strings.Join(frags, ". ")
	if action == "" {
		return
	}
	t.ActivityLog = append(t.ActivityLog, domain.ActivityLogEntry{
		Action:      action,
		PerformedBy: actorID,
		Timestamp:   now.UTC().Format(time.RFC3339),
	})
}

// ActivityEntry is one log entry with its performer resolved for display.
type ActivityEntry struct {
	Action          string `json:"action"`
	PerformedBy     string `json:"performed_by"`
	PerformedByName string `json:"performed_by_name"`
	Timestamp       string `json:"timestamp" format:"date-time"`
}

// ActivityPage is one page of a task's history, newest first.
type ActivityPage struct {
	Logs        []ActivityEntry `json:"logs"`
	CurrentPage int             `json:"currentPage"`
	TotalPages  int             `json:"totalPages"`
	TotalLogs   int             `json:"totalLogs"`
}

// activityPage slices the task's log reverse-chronologically. Timestamp ties
// keep the most recently appended entry first. Pages outside the range come
// back with empty logs rather than an error.
func activityPage(t domain.Task, page int, names map[string]string) ActivityPage {
	if page < 1 {
		page = 1
	}
	total := len(t.ActivityLog)
	totalPages := (total + activityPageSize - 1) / activityPageSize

	type indexed struct {
		idx   int
		entry domain.ActivityLogEntry
	}
	ordered := make([]indexed, total)
	for i, e := range t.ActivityLog {
		ordered[i] = indexed{idx: i, entry: e}
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.entry.Timestamp != b.entry.Timestamp {
			return a.entry.Timestamp > b.entry.Timestamp
		}
		return a.idx > b.idx
	})

	start := (page - 1) * activityPageSize
	end := start + activityPageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	logs := make([]ActivityEntry, 0, end-start)
	for _, it := range ordered[start:end] {
		name := names[it.entry.PerformedBy]
		if name == "" {
			name = it.entry.PerformedBy
		}
		logs = append(logs, ActivityEntry{
			Action:          it.entry.Action,
			PerformedBy:     it.entry.PerformedBy,
			PerformedByName: name,
			Timestamp:       it.entry.Timestamp,
		})
	}
	return ActivityPage{Logs: logs, CurrentPage: page, TotalPages: totalPages, TotalLogs: total}
}
