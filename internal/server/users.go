package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"taskboard/internal/domain"
	"taskboard/internal/engine"
)

func registerUsers(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "users-list",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List users",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []userBody `json:"body"`
	}, error) {
		users, err := e.ListUsers(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]userBody, 0, len(users))
		for _, u := range users {
			out = append(out, toUserBody(u))
		}
		return &struct {
			Body []userBody `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "users-get",
		Method:      http.MethodGet,
		Path:        "/users/{user_id}",
		Summary:     "Get one user",
	}, func(ctx context.Context, input *struct {
		UserID string `path:"user_id"`
	}) (*struct {
		Body userBody `json:"body"`
	}, error) {
		u, err := e.GetUser(ctx, input.UserID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body userBody `json:"body"`
		}{Body: toUserBody(u)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "users-check-username",
		Method:      http.MethodGet,
		Path:        "/users/check/{username}",
		Summary:     "Check whether a username is taken",
	}, func(ctx context.Context, input *struct {
		Username string `path:"username"`
	}) (*struct {
		Body struct {
			Username string `json:"username"`
			Taken    bool   `json:"taken"`
		} `json:"body"`
	}, error) {
		taken, err := e.CheckUsername(ctx, input.Username)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Username string `json:"username"`
				Taken    bool   `json:"taken"`
			} `json:"body"`
		}{}
		out.Body.Username = input.Username
		out.Body.Taken = taken
		return out, nil
	})
}

type APIKeyBody struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

func toAPIKeyBody(k domain.APIKey) APIKeyBody {
	return APIKeyBody{ID: k.ID, Name: k.Name, CreatedAt: k.CreatedAt}
}

func registerAPIKeys(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "apikeys-create",
		Method:        http.MethodPost,
		Path:          "/apikeys",
		Summary:       "Create a personal access token",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body struct {
			Name string `json:"name,omitempty"`
		} `json:"body"`
	}) (*struct {
		Body struct {
			APIKeyBody
			Key string `json:"key"`
		} `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		key, plaintext, err := e.CreateAPIKey(ctx, actorID, input.Body.Name)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				APIKeyBody
				Key string `json:"key"`
			} `json:"body"`
		}{}
		out.Body.APIKeyBody = toAPIKeyBody(key)
		out.Body.Key = plaintext
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "apikeys-list",
		Method:      http.MethodGet,
		Path:        "/apikeys",
		Summary:     "List your personal access tokens",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []APIKeyBody `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		keys, err := e.ListAPIKeys(ctx, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]APIKeyBody, 0, len(keys))
		for _, k := range keys {
			out = append(out, toAPIKeyBody(k))
		}
		return &struct {
			Body []APIKeyBody `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "apikeys-revoke",
		Method:      http.MethodDelete,
		Path:        "/apikeys/{key_id}",
		Summary:     "Revoke a personal access token",
	}, func(ctx context.Context, input *struct {
		KeyID string `path:"key_id"`
	}) (*struct {
		Body messageBody `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := e.RevokeAPIKey(ctx, input.KeyID, actorID); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body messageBody `json:"body"`
		}{Body: messageBody{Message: "api key revoked"}}, nil
	})
}

type messageBody struct {
	Message string `json:"message"`
}
