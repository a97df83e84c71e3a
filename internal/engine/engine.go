// Package engine holds the application core: task lifecycle, activity
// logging, access checks and project bookkeeping, all persisted through the
// store as whole project documents.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/audit"
	"taskboard/internal/domain"
	"taskboard/internal/store"
)

type Engine struct {
	DB     *sql.DB
	Store  store.Store
	Audit  audit.Writer
	Logger *log.Logger
	Now    func() time.Time
}

func New(db *sql.DB) Engine {
	return Engine{
		DB:    db,
		Store: store.Store{DB: db},
		Audit: audit.Writer{DB: db},
		Now:   time.Now,
	}
}

func (e Engine) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.Default()
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) rfcNow() string {
	return e.now().UTC().Format(time.RFC3339)
}

// UserRef pairs a user id with its display name for responses.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// TaskView is a task with its assignee identities resolved.
type TaskView struct {
	domain.Task
	Assignees []UserRef `json:"assignees"`
}

// resolveNames maps user ids to usernames, best effort. Lookup failures leave
// the map partial; callers fall back to the raw id or "Unknown".
func (e Engine) resolveNames(ctx context.Context, ids []string) map[string]string {
	names, err := e.Store.UsernamesByID(ctx, ids)
	if err != nil {
		return map[string]string{}
	}
	return names
}

func (e Engine) taskView(ctx context.Context, t domain.Task) TaskView {
	names := e.resolveNames(ctx, t.AssignedTo)
	refs := make([]UserRef, 0, len(t.AssignedTo))
	for _, id := range t.AssignedTo {
		name := names[id]
		if name == "" {
			name = "Unknown"
		}
		refs = append(refs, UserRef{ID: id, Username: name})
	}
	return TaskView{Task: t, Assignees: refs}
}

// TaskCreateOptions are parameters for creating a task inside a project.
type TaskCreateOptions struct {
	Title       string
	Description string
	Type        string
	Status      string
	Priority    string
	AssignedTo  []string
	Timeline    *domain.Timeline
	ActorID     string
}

func (e Engine) CreateTask(ctx context.Context, projectID string, opts TaskCreateOptions) (TaskView, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return TaskView{}, ValidationError{Field: "title", Message: "title is required"}
	}
	if opts.Type == "" {
		opts.Type = domain.TaskTypeTask
	}
	if opts.Status == "" {
		opts.Status = domain.StatusNotStarted
	}
	if opts.Priority == "" {
		opts.Priority = domain.PriorityNone
	}
	if !domain.ValidTaskType(opts.Type) {
		return TaskView{}, ValidationError{Field: "type", Message: fmt.Sprintf("invalid type %q", opts.Type)}
	}
	if !domain.ValidStatus(opts.Status) {
		return TaskView{}, ValidationError{Field: "status", Message: fmt.Sprintf("invalid status %q", opts.Status)}
	}
	if !domain.ValidPriority(opts.Priority) {
		return TaskView{}, ValidationError{Field: "priority", Message: fmt.Sprintf("invalid priority %q", opts.Priority)}
	}
	var tl domain.Timeline
	if opts.Timeline != nil {
		if err := validateTimeline(*opts.Timeline); err != nil {
			return TaskView{}, err
		}
		tl = *opts.Timeline
	}
	if len(opts.AssignedTo) == 0 {
		opts.AssignedTo = []string{opts.ActorID}
	}

	p, err := e.Store.FindProject(ctx, projectID)
	if err != nil {
		return TaskView{}, err
	}

	ts := e.rfcNow()
	t := domain.Task{
		ID:          uuid.NewString(),
		Title:       opts.Title,
		Description: opts.Description,
		Type:        opts.Type,
		Status:      opts.Status,
		Priority:    opts.Priority,
		Timeline:    tl,
		AssignedTo:  append([]string{}, opts.AssignedTo...),
		CreatedBy:   opts.ActorID,
		CreatedAt:   ts,
		UpdatedAt:   ts,
		ActivityLog: []domain.ActivityLogEntry{{
			Action:      "Task created",
			PerformedBy: opts.ActorID,
			Timestamp:   ts,
		}},
	}
	p.Tasks = append(p.Tasks, t)
	p.UpdatedAt = ts
	if err := e.Store.SaveProject(ctx, p); err != nil {
		return TaskView{}, fmt.Errorf("save project: %w", err)
	}
	// The task is already persisted; a failed audit append does not undo it.
	if err := e.Audit.Append(ctx, p.ID, t.ID, opts.ActorID, "task.created"); err != nil {
		e.logger().Printf("audit append failed (project=%s task=%s): %v", p.ID, t.ID, err)
	}
	return e.taskView(ctx, t), nil
}

func (e Engine) GetTask(ctx context.Context, projectID, taskID string) (TaskView, error) {
	p, err := e.Store.FindProject(ctx, projectID)
	if err != nil {
		return TaskView{}, err
	}
	t := p.TaskByID(taskID)
	if t == nil {
		return TaskView{}, store.ErrNotFound
	}
	return e.taskView(ctx, *t), nil
}

func (e Engine) ListTasks(ctx context.Context, projectID string) ([]TaskView, error) {
	p, err := e.Store.FindProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	views := make([]TaskView, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		views = append(views, e.taskView(ctx, t))
	}
	return views, nil
}

// UpdateTask applies a partial update, logging all changed fields as one
// activity entry. Only the project creator and current assignees may update.
func (e Engine) UpdateTask(ctx context.Context, projectID, taskID string, patch TaskPatch, actorID string) (TaskView, error) {
	p, err := e.Store.FindProject(ctx, projectID)
	if err != nil {
		return TaskView{}, err
	}
	t := p.TaskByID(taskID)
	if t == nil {
		return TaskView{}, store.ErrNotFound
	}
	if !canEditTask(p, *t, actorID) {
		return TaskView{}, PermissionDeniedError{UserID: actorID, Action: "update task"}
	}
	frags, err := applyPatch(t, patch, func(ids []string) map[string]string {
		return e.resolveNames(ctx, ids)
	})
	if err != nil {
		return TaskView{}, err
	}
	if len(frags) == 0 {
		return e.taskView(ctx, *t), nil
	}
	now := e.now()
	appendActivity(t, frags, actorID, now)
	t.UpdatedAt = now.UTC().Format(time.RFC3339)
	p.UpdatedAt = t.UpdatedAt
	if err := e.Store.SaveProject(ctx, p); err != nil {
		return TaskView{}, fmt.Errorf("save project: %w", err)
	}
	return e.taskView(ctx, *t), nil
}

// UpdateTaskStatus changes only the status field. The new status is validated
// before the project is touched, so a bad value leaves task and log alone.
func (e Engine) UpdateTaskStatus(ctx context.Context, projectID, taskID, status, actorID string) (TaskView, error) {
	if !domain.ValidStatus(status) {
		return TaskView{}, ValidationError{Field: "status", Message: fmt.Sprintf("invalid status %q", status)}
	}
	p, err := e.Store.FindProject(ctx, projectID)
	if err != nil {
		return TaskView{}, err
	}
	t := p.TaskByID(taskID)
	if t == nil {
		return TaskView{}, store.ErrNotFound
	}
	if !canEditTask(p, *t, actorID) {
		return TaskView{}, PermissionDeniedError{UserID: actorID, Action: "edit task status"}
	}
	now := e.now()
	t.Status = status
	appendActivity(t, []string{fmt.Sprintf("Task status updated to %s", status)}, actorID, now)
	t.UpdatedAt = now.UTC().Format(time.RFC3339)
	p.UpdatedAt = t.UpdatedAt
	if err := e.Store.SaveProject(ctx, p); err != nil {
		return TaskView{}, fmt.Errorf("save project: %w", err)
	}
	return e.taskView(ctx, *t), nil
}

// DeleteTask writes the durable audit record before the task leaves the
// document, so deletion history survives the task itself.
func (e Engine) DeleteTask(ctx context.Context, projectID, taskID, actorID string) error {
	p, err := e.Store.FindProject(ctx, projectID)
	if err != nil {
		return err
	}
	t := p.TaskByID(taskID)
	if t == nil {
		return store.ErrNotFound
	}
	now := e.now()
	appendActivity(t, []string{"Task deleted"}, actorID, now)
	if err := e.Audit.Append(ctx, p.ID, taskID, actorID, fmt.Sprintf("task.deleted %q", t.Title)); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	p.RemoveTask(taskID)
	p.UpdatedAt = now.UTC().Format(time.RFC3339)
	if err := e.Store.SaveProject(ctx, p); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

// GetActivity returns one page of a task's history, newest entries first.
func (e Engine) GetActivity(ctx context.Context, projectID, taskID string, page int) (ActivityPage, error) {
	p, err := e.Store.FindProject(ctx, projectID)
	if err != nil {
		return ActivityPage{}, err
	}
	t := p.TaskByID(taskID)
	if t == nil {
		return ActivityPage{}, store.ErrNotFound
	}
	ids := make([]string, 0, len(t.ActivityLog))
	for _, entry := range t.ActivityLog {
		ids = append(ids, entry.PerformedBy)
	}
	names := e.resolveNames(ctx, ids)
	return activityPage(*t, page, names), nil
}

// ListAudit returns the durable project-level audit trail, newest first.
func (e Engine) ListAudit(ctx context.Context, projectID string, limit int) ([]domain.AuditRecord, error) {
	if _, err := e.Store.FindProject(ctx, projectID); err != nil {
		return nil, err
	}
	return e.Audit.List(ctx, projectID, limit)
}
