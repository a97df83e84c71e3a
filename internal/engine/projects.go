package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"taskboard/internal/domain"
	"taskboard/internal/store"
)

// ProjectView is a project with creator and member identities resolved.
type ProjectView struct {
	domain.Project
	Creator    UserRef   `json:"creator"`
	MemberRefs []UserRef `json:"member_refs"`
}

func (e Engine) projectView(ctx context.Context, p domain.Project) ProjectView {
	ids := append([]string{p.CreatedBy}, p.Members...)
	names := e.resolveNames(ctx, ids)
	ref := func(id string) UserRef {
		name := names[id]
		if name == "" {
			name = "Unknown"
		}
		return UserRef{ID: id, Username: name}
	}
	refs := make([]UserRef, 0, len(p.Members))
	for _, id := range p.Members {
		refs = append(refs, ref(id))
	}
	return ProjectView{Project: p, Creator: ref(p.CreatedBy), MemberRefs: refs}
}

func (e Engine) CreateProject(ctx context.Context, name, description, actorID string) (ProjectView, error) {
	if strings.TrimSpace(name) == "" {
		return ProjectView{}, ValidationError{Field: "name", Message: "name is required"}
	}
	ts := e.rfcNow()
	p := domain.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedBy:   actorID,
		Members:     []string{},
		Tasks:       []domain.Task{},
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := e.Store.SaveProject(ctx, p); err != nil {
		return ProjectView{}, fmt.Errorf("save project: %w", err)
	}
	if err := e.Audit.Append(ctx, p.ID, "", actorID, "project.created"); err != nil {
		e.logger().Printf("audit append failed (project=%s): %v", p.ID, err)
	}
	return e.projectView(ctx, p), nil
}

func (e Engine) GetProject(ctx context.Context, id string) (ProjectView, error) {
	p, err := e.Store.FindProject(ctx, id)
	if err != nil {
		return ProjectView{}, err
	}
	return e.projectView(ctx, p), nil
}

// ListProjects returns the user's own projects newest first, followed by the
// projects they were invited into.
func (e Engine) ListProjects(ctx context.Context, userID string) ([]ProjectView, error) {
	own, err := e.Store.ListProjectsByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := e.Store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ProjectView, 0, len(own))
	for _, p := range own {
		views = append(views, e.projectView(ctx, p))
	}
	for _, p := range all {
		if p.CreatedBy != userID && p.HasMember(userID) {
			views = append(views, e.projectView(ctx, p))
		}
	}
	return views, nil
}

// ProjectPatch carries a partial project update. Only the creator may apply one.
type ProjectPatch struct {
	Name        *string
	Description *string
}

func (e Engine) UpdateProject(ctx context.Context, id string, patch ProjectPatch, actorID string) (ProjectView, error) {
	p, err := e.Store.FindProject(ctx, id)
	if err != nil {
		return ProjectView{}, err
	}
	if p.CreatedBy != actorID {
		return ProjectView{}, PermissionDeniedError{UserID: actorID, Action: "update project"}
	}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return ProjectView{}, ValidationError{Field: "name", Message: "name must not be empty"}
		}
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	p.UpdatedAt = e.rfcNow()
	if err := e.Store.SaveProject(ctx, p); err != nil {
		return ProjectView{}, fmt.Errorf("save project: %w", err)
	}
	return e.projectView(ctx, p), nil
}

func (e Engine) DeleteProject(ctx context.Context, id, actorID string) error {
	p, err := e.Store.FindProject(ctx, id)
	if err != nil {
		return err
	}
	if p.CreatedBy != actorID {
		return PermissionDeniedError{UserID: actorID, Action: "delete project"}
	}
	if err := e.Audit.Append(ctx, p.ID, "", actorID, fmt.Sprintf("project.deleted %q", p.Name)); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return e.Store.DeleteProject(ctx, id)
}

// AddMember adds a user to the project by username. Only the creator may
// change the member list; adding an existing member is rejected.
func (e Engine) AddMember(ctx context.Context, projectID, username, actorID string) (ProjectView, error) {
	p, err := e.Store.FindProject(ctx, projectID)
	if err != nil {
		return ProjectView{}, err
	}
	if p.CreatedBy != actorID {
		return ProjectView{}, PermissionDeniedError{UserID: actorID, Action: "manage members"}
	}
	u, err := e.Store.GetUserByUsername(ctx, username)
	if err != nil {
		return ProjectView{}, err
	}
	if u.ID == p.CreatedBy {
		return ProjectView{}, ValidationError{Field: "username", Message: "user is the project creator"}
	}
	for _, m := range p.Members {
		if m == u.ID {
			return ProjectView{}, ValidationError{Field: "username", Message: "user is already a member"}
		}
	}
	p.Members = append(p.Members, u.ID)
	p.UpdatedAt = e.rfcNow()
	if err := e.Store.SaveProject(ctx, p); err != nil {
		return ProjectView{}, fmt.Errorf("save project: %w", err)
	}
	return e.projectView(ctx, p), nil
}

func (e Engine) RemoveMember(ctx context.Context, projectID, userID, actorID string) (ProjectView, error) {
	p, err := e.Store.FindProject(ctx, projectID)
	if err != nil {
		return ProjectView{}, err
	}
	if p.CreatedBy != actorID {
		return ProjectView{}, PermissionDeniedError{UserID: actorID, Action: "manage members"}
	}
	for i, m := range p.Members {
		if m == userID {
			p.Members = append(p.Members[:i], p.Members[i+1:]...)
			p.UpdatedAt = e.rfcNow()
			if err := e.Store.SaveProject(ctx, p); err != nil {
				return ProjectView{}, fmt.Errorf("save project: %w", err)
			}
			return e.projectView(ctx, p), nil
		}
	}
	return ProjectView{}, store.ErrNotFound
}

// SearchHit is one match from a cross-entity search.
type SearchHit struct {
	Kind        string `json:"kind" enum:"project,task"`
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	TaskID      string `json:"task_id,omitempty"`
	Title       string `json:"title"`
}

// SearchFilters narrow task hits; empty fields match everything.
type SearchFilters struct {
	Term     string
	Status   string
	Priority string
	Type     string
}

// Search matches project names and descriptions and task titles and
// descriptions, restricted to projects the user created or belongs to.
// The status, priority and type filters narrow task hits only; project
// hits are unaffected by them.
func (e Engine) Search(ctx context.Context, f SearchFilters, userID string) ([]SearchHit, error) {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	if term == "" {
		return nil, ValidationError{Field: "term", Message: "search term is required"}
	}
	all, err := e.Store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	matches := func(v string) bool {
		return strings.Contains(strings.ToLower(v), term)
	}
	var hits []SearchHit
	for _, p := range all {
		if !p.HasMember(userID) {
			continue
		}
		if matches(p.Name) || matches(p.Description) {
			hits = append(hits, SearchHit{Kind: "project", ProjectID: p.ID, ProjectName: p.Name, Title: p.Name})
		}
		for _, t := range p.Tasks {
			if !matches(t.Title) && !matches(t.Description) {
				continue
			}
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			if f.Priority != "" && t.Priority != f.Priority {
				continue
			}
			if f.Type != "" && t.Type != f.Type {
				continue
			}
			hits = append(hits, SearchHit{Kind: "task", ProjectID: p.ID, ProjectName: p.Name, TaskID: t.ID, Title: t.Title})
		}
	}
	return hits, nil
}
