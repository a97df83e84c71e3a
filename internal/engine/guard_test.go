package engine

import (
	"testing"

	"taskboard/internal/domain"
)

func TestCanEditTask(t *testing.T) {
	p := domain.Project{ID: "p1", CreatedBy: "creator", Members: []string{"member"}}
	task := domain.Task{ID: "t1", AssignedTo: []string{"assignee"}}

	if !canEditTask(p, task, "creator") {
		t.Fatal("creator must be allowed even when not assigned")
	}
	if !canEditTask(p, task, "assignee") {
		t.Fatal("assignee must be allowed even when not the creator")
	}
	if canEditTask(p, task, "member") {
		t.Fatal("plain member must not be allowed")
	}
	if canEditTask(p, task, "outsider") {
		t.Fatal("outsider must not be allowed")
	}
}
