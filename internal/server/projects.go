package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"taskboard/internal/domain"
	"taskboard/internal/engine"
)

type ProjectPath struct {
	ProjectID string `path:"project_id"`
}

func registerProjects(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "projects-create",
		Method:        http.MethodPost,
		Path:          "/projects",
		Summary:       "Create a project",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body struct {
			Name        string `json:"name" minLength:"1"`
			Description string `json:"description,omitempty"`
		} `json:"body"`
	}) (*struct {
		Body engine.ProjectView `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		p, err := e.CreateProject(ctx, input.Body.Name, input.Body.Description, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.ProjectView `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "projects-list",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List projects you created or belong to",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []engine.ProjectView `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		views, err := e.ListProjects(ctx, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []engine.ProjectView `json:"body"`
		}{Body: views}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "projects-get",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}",
		Summary:     "Get one project",
	}, func(ctx context.Context, input *ProjectPath) (*struct {
		Body engine.ProjectView `json:"body"`
	}, error) {
		p, err := e.GetProject(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.ProjectView `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "projects-update",
		Method:      http.MethodPatch,
		Path:        "/projects/{project_id}",
		Summary:     "Update project name or description",
	}, func(ctx context.Context, input *struct {
		ProjectPath
		Body struct {
			Name        *string `json:"name,omitempty"`
			Description *string `json:"description,omitempty"`
		} `json:"body"`
	}) (*struct {
		Body engine.ProjectView `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		p, err := e.UpdateProject(ctx, input.ProjectID, engine.ProjectPatch{
			Name:        input.Body.Name,
			Description: input.Body.Description,
		}, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.ProjectView `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "projects-delete",
		Method:      http.MethodDelete,
		Path:        "/projects/{project_id}",
		Summary:     "Delete a project",
	}, func(ctx context.Context, input *ProjectPath) (*struct {
		Body messageBody `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := e.DeleteProject(ctx, input.ProjectID, actorID); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body messageBody `json:"body"`
		}{Body: messageBody{Message: "project deleted"}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "projects-add-member",
		Method:      http.MethodPost,
		Path:        "/projects/{project_id}/members",
		Summary:     "Add a member by username",
	}, func(ctx context.Context, input *struct {
		ProjectPath
		Body struct {
			Username string `json:"username" minLength:"1"`
		} `json:"body"`
	}) (*struct {
		Body engine.ProjectView `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		p, err := e.AddMember(ctx, input.ProjectID, input.Body.Username, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.ProjectView `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "projects-remove-member",
		Method:      http.MethodDelete,
		Path:        "/projects/{project_id}/members/{user_id}",
		Summary:     "Remove a member",
	}, func(ctx context.Context, input *struct {
		ProjectPath
		UserID string `path:"user_id"`
	}) (*struct {
		Body engine.ProjectView `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		p, err := e.RemoveMember(ctx, input.ProjectID, input.UserID, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.ProjectView `json:"body"`
		}{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "projects-audit",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}/audit",
		Summary:     "Project audit trail, newest first",
	}, func(ctx context.Context, input *struct {
		ProjectPath
		Limit int `query:"limit" default:"50" minimum:"1" maximum:"500"`
	}) (*struct {
		Body []domain.AuditRecord `json:"body"`
	}, error) {
		records, err := e.ListAudit(ctx, input.ProjectID, input.Limit)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.AuditRecord `json:"body"`
		}{Body: records}, nil
	})
}

func registerSearch(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/search",
		Summary:     "Search projects and tasks you can access",
	}, func(ctx context.Context, input *struct {
		Term     string `query:"term" minLength:"1"`
		Status   string `query:"status"`
		Priority string `query:"priority"`
		Type     string `query:"type"`
	}) (*struct {
		Body []engine.SearchHit `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		hits, err := e.Search(ctx, engine.SearchFilters{
			Term:     input.Term,
			Status:   input.Status,
			Priority: input.Priority,
			Type:     input.Type,
		}, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []engine.SearchHit `json:"body"`
		}{Body: hits}, nil
	})
}
