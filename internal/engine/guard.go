package engine

import "taskboard/internal/domain"

// canEditTask reports whether the user may mutate the task: project creators
// and current assignees may, anyone else may not. Existence of the project
// and task is checked by the caller before this runs.
func canEditTask(p domain.Project, t domain.Task, userID string) bool {
	if p.CreatedBy == userID {
		return true
	}
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}
