package taskboardsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Taskboard HTTP API client.
type Client struct {
	BaseURL     string
	APIKey      string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Task represents the API task model (partial).
type Task struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Type       string   `json:"type"`
	Status     string   `json:"status"`
	Priority   string   `json:"priority"`
	AssignedTo []string `json:"assigned_to"`
}

// Project represents the API project model (partial).
type Project struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CreatedBy string   `json:"created_by"`
	Members   []string `json:"members"`
	Tasks     []Task   `json:"tasks"`
}

// ActivityEntry is one task history record.
type ActivityEntry struct {
	Action          string `json:"action"`
	PerformedBy     string `json:"performed_by"`
	PerformedByName string `json:"performed_by_name"`
	Timestamp       string `json:"timestamp"`
}

// ActivityPage wraps paginated task history.
type ActivityPage struct {
	Logs        []ActivityEntry `json:"logs"`
	CurrentPage int             `json:"currentPage"`
	TotalPages  int             `json:"totalPages"`
	TotalLogs   int             `json:"totalLogs"`
}

// AuditRecord is one durable project-level audit entry.
type AuditRecord struct {
	ID        int64  `json:"id"`
	TS        string `json:"ts"`
	ProjectID string `json:"project_id"`
	TaskID    string `json:"task_id"`
	ActorID   string `json:"actor_id"`
	Action    string `json:"action"`
}

// LoginResult carries the bearer token for subsequent calls.
type LoginResult struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// SearchHit is one cross-entity search match.
type SearchHit struct {
	Kind        string `json:"kind"`
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	TaskID      string `json:"task_id,omitempty"`
	Title       string `json:"title"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Login exchanges credentials for a bearer token and stores it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	body := map[string]any{"username": username, "password": password}
	var resp LoginResult
	if err := c.do(ctx, http.MethodPost, "v1/auth/login", body, &resp); err != nil {
		return resp, err
	}
	c.BearerToken = resp.Token
	return resp, nil
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, name, description string) (Project, error) {
	body := map[string]any{"name": name, "description": description}
	var resp Project
	err := c.do(ctx, http.MethodPost, "v1/projects", body, &resp)
	return resp, err
}

// CreateTask creates a task inside a project.
func (c *Client) CreateTask(ctx context.Context, projectID, title, taskType string) (Task, error) {
	body := map[string]any{"title": title}
	if taskType != "" {
		body["type"] = taskType
	}
	var resp Task
	err := c.do(ctx, http.MethodPost, c.projectPath(projectID, "tasks"), body, &resp)
	return resp, err
}

// UpdateTask applies a partial update; fields is any subset of the mutable
// task fields (title, description, type, status, priority, timeline,
// assignedTo).
func (c *Client) UpdateTask(ctx context.Context, projectID, taskID string, fields map[string]any) (Task, error) {
	var resp Task
	endpoint := c.projectPath(projectID, fmt.Sprintf("tasks/%s", url.PathEscape(taskID)))
	err := c.do(ctx, http.MethodPatch, endpoint, fields, &resp)
	return resp, err
}

// UpdateTaskStatus changes only the status field.
func (c *Client) UpdateTaskStatus(ctx context.Context, projectID, taskID, status string) (Task, error) {
	var resp Task
	endpoint := c.projectPath(projectID, fmt.Sprintf("tasks/%s/status", url.PathEscape(taskID)))
	err := c.do(ctx, http.MethodPatch, endpoint, map[string]any{"status": status}, &resp)
	return resp, err
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, projectID, taskID string) error {
	endpoint := c.projectPath(projectID, fmt.Sprintf("tasks/%s", url.PathEscape(taskID)))
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// Activity returns one page of a task's history, newest first.
func (c *Client) Activity(ctx context.Context, projectID, taskID string, page int) (ActivityPage, error) {
	endpoint := c.projectPath(projectID, fmt.Sprintf("tasks/%s/activity", url.PathEscape(taskID)))
	if page > 0 {
		endpoint = fmt.Sprintf("%s?page=%d", endpoint, page)
	}
	var resp ActivityPage
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// Audit returns recent project audit records, newest first.
func (c *Client) Audit(ctx context.Context, projectID string, limit int) ([]AuditRecord, error) {
	endpoint := c.projectPath(projectID, "audit")
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var resp []AuditRecord
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// Search matches projects and tasks you can access.
func (c *Client) Search(ctx context.Context, term string) ([]SearchHit, error) {
	endpoint := "v1/search?term=" + url.QueryEscape(term)
	var resp []SearchHit
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.APIKey != "":
		req.Header.Set("X-Api-Key", c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) projectPath(projectID, p string) string {
	return fmt.Sprintf("v1/projects/%s/%s", url.PathEscape(projectID), strings.TrimLeft(p, "/"))
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
