package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"taskboard/internal/domain"
	"taskboard/internal/engine"
)

type TaskPath struct {
	ProjectID string `path:"project_id"`
	TaskID    string `path:"task_id"`
}

func registerTasks(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "tasks-create",
		Method:        http.MethodPost,
		Path:          "/projects/{project_id}/tasks",
		Summary:       "Create a task",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		ProjectPath
		Body struct {
			Title       string           `json:"title" minLength:"1"`
			Description string           `json:"description,omitempty"`
			Type        string           `json:"type,omitempty" enum:"task,bug"`
			Status      string           `json:"status,omitempty" enum:"Not Started,In Progress,Stuck,Done"`
			Priority    string           `json:"priority,omitempty" enum:"none,low,medium,high,critical"`
			AssignedTo  []string         `json:"assignedTo,omitempty"`
			Timeline    *domain.Timeline `json:"timeline,omitempty"`
		} `json:"body"`
	}) (*struct {
		Body engine.TaskView `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		t, err := e.CreateTask(ctx, input.ProjectID, engine.TaskCreateOptions{
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Type:        input.Body.Type,
			Status:      input.Body.Status,
			Priority:    input.Body.Priority,
			AssignedTo:  input.Body.AssignedTo,
			Timeline:    input.Body.Timeline,
			ActorID:     actorID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.TaskView `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "tasks-list",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}/tasks",
		Summary:     "List a project's tasks",
	}, func(ctx context.Context, input *ProjectPath) (*struct {
		Body []engine.TaskView `json:"body"`
	}, error) {
		tasks, err := e.ListTasks(ctx, input.ProjectID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []engine.TaskView `json:"body"`
		}{Body: tasks}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "tasks-get",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}/tasks/{task_id}",
		Summary:     "Get one task",
	}, func(ctx context.Context, input *TaskPath) (*struct {
		Body engine.TaskView `json:"body"`
	}, error) {
		t, err := e.GetTask(ctx, input.ProjectID, input.TaskID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.TaskView `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "tasks-update",
		Method:      http.MethodPatch,
		Path:        "/projects/{project_id}/tasks/{task_id}",
		Summary:     "Update a task, logging every changed field",
	}, func(ctx context.Context, input *struct {
		TaskPath
		Body struct {
			Title       *string          `json:"title,omitempty"`
			Description *string          `json:"description,omitempty"`
			Type        *string          `json:"type,omitempty" enum:"task,bug"`
			Status      *string          `json:"status,omitempty"`
			Priority    *string          `json:"priority,omitempty"`
			Timeline    *domain.Timeline `json:"timeline,omitempty"`
			AssignedTo  *[]string        `json:"assignedTo,omitempty"`
		} `json:"body"`
	}) (*struct {
		Body engine.TaskView `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		t, err := e.UpdateTask(ctx, input.ProjectID, input.TaskID, engine.TaskPatch{
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Type:        input.Body.Type,
			Status:      input.Body.Status,
			Priority:    input.Body.Priority,
			Timeline:    input.Body.Timeline,
			AssignedTo:  input.Body.AssignedTo,
		}, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.TaskView `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "tasks-update-status",
		Method:      http.MethodPatch,
		Path:        "/projects/{project_id}/tasks/{task_id}/status",
		Summary:     "Update a task's status",
	}, func(ctx context.Context, input *struct {
		TaskPath
		Body struct {
			Status string `json:"status" minLength:"1"`
		} `json:"body"`
	}) (*struct {
		Body engine.TaskView `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		t, err := e.UpdateTaskStatus(ctx, input.ProjectID, input.TaskID, input.Body.Status, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.TaskView `json:"body"`
		}{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "tasks-delete",
		Method:      http.MethodDelete,
		Path:        "/projects/{project_id}/tasks/{task_id}",
		Summary:     "Delete a task",
	}, func(ctx context.Context, input *TaskPath) (*struct {
		Body messageBody `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := e.DeleteTask(ctx, input.ProjectID, input.TaskID, actorID); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body messageBody `json:"body"`
		}{Body: messageBody{Message: "task deleted"}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "tasks-activity",
		Method:      http.MethodGet,
		Path:        "/projects/{project_id}/tasks/{task_id}/activity",
		Summary:     "Paginated task activity, newest first",
	}, func(ctx context.Context, input *struct {
		TaskPath
		Page int `query:"page" default:"1"`
	}) (*struct {
		Body engine.ActivityPage `json:"body"`
	}, error) {
		page, err := e.GetActivity(ctx, input.ProjectID, input.TaskID, input.Page)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.ActivityPage `json:"body"`
		}{Body: page}, nil
	})
}
