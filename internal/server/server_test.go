package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"

	"taskboard/internal/db"
	"taskboard/internal/engine"
	"taskboard/internal/migrate"
)

type testServer struct {
	URL    string
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	workspace := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := engine.New(conn)
	handler, err := New(Config{Engine: e, BasePath: "/v1", Auth: AuthConfig{JWTSecret: "test-secret"}})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	t.Cleanup(testSrv.Close)
	return testSrv
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

// registerAndLogin returns a bearer header map plus the user id.
func registerAndLogin(t *testing.T, srv *testServer, username string) (map[string]string, string) {
	t.Helper()
	client := srv.Client()
	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v1/auth/register", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse",
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v1/auth/login", map[string]any{
		"username": username,
		"password": "correct-horse",
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login status %d: %s", res.StatusCode, string(data))
	}
	var login struct {
		Token    string `json:"token"`
		UserID   string `json:"userId"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &login); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}
	if login.Token == "" || login.Username != username {
		t.Fatalf("login body: %s", string(data))
	}
	return map[string]string{"Authorization": "Bearer " + login.Token}, login.UserID
}

func TestRequestsWithoutCredentialsAreRejected(t *testing.T) {
	srv := newTestServer(t)
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v1/projects", nil, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d: %s", res.StatusCode, string(data))
	}

	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v1/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health should stay open, got %d", res.StatusCode)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv, "alice")
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/auth/login", map[string]any{
		"username": "alice",
		"password": "wrong-password",
	}, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d: %s", res.StatusCode, string(data))
	}
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()
	alice, _ := registerAndLogin(t, srv, "alice")
	carol, _ := registerAndLogin(t, srv, "carol")

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v1/projects", map[string]any{
		"name": "Apollo",
	}, alice)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create project status %d: %s", res.StatusCode, string(data))
	}
	var project struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &project); err != nil {
		t.Fatalf("unmarshal project: %v", err)
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v1/projects/"+project.ID+"/tasks", map[string]any{
		"title": "Fuel the rocket",
	}, alice)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create task status %d: %s", res.StatusCode, string(data))
	}
	var task struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &task); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	if task.Status != "Not Started" {
		t.Fatalf("default status %q", task.Status)
	}

	taskURL := srv.URL + "/v1/projects/" + project.ID + "/tasks/" + task.ID

	// bad enum value is a 400
	res, data = doJSON(t, client, http.MethodPatch, taskURL+"/status", map[string]any{
		"status": "Blocked",
	}, alice)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad status should be 400, got %d: %s", res.StatusCode, string(data))
	}

	// outsider is a 403
	res, data = doJSON(t, client, http.MethodPatch, taskURL+"/status", map[string]any{
		"status": "In Progress",
	}, carol)
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("outsider should be 403, got %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodPatch, taskURL+"/status", map[string]any{
		"status": "In Progress",
	}, alice)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status update %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodPatch, taskURL, map[string]any{
		"title": "Fuel and launch",
	}, alice)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("update %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodGet, taskURL+"/activity", nil, alice)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("activity %d: %s", res.StatusCode, string(data))
	}
	var page struct {
		Logs []struct {
			Action string `json:"action"`
		} `json:"logs"`
		CurrentPage int `json:"currentPage"`
		TotalPages  int `json:"totalPages"`
		TotalLogs   int `json:"totalLogs"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		t.Fatalf("unmarshal activity: %v", err)
	}
	if page.TotalLogs != 3 || page.CurrentPage != 1 || page.TotalPages != 1 {
		t.Fatalf("activity meta: %s", string(data))
	}
	if page.Logs[0].Action != `Title changed from "Fuel the rocket" to "Fuel and launch"` {
		t.Fatalf("newest entry: %q", page.Logs[0].Action)
	}

	res, data = doJSON(t, client, http.MethodDelete, taskURL, nil, alice)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("delete %d: %s", res.StatusCode, string(data))
	}
	res, _ = doJSON(t, client, http.MethodGet, taskURL, nil, alice)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted task should be 404, got %d", res.StatusCode)
	}

	// the deletion survives in the project audit trail
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v1/projects/"+project.ID+"/audit", nil, alice)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("audit %d: %s", res.StatusCode, string(data))
	}
	var records []struct {
		TaskID string `json:"task_id"`
		Action string `json:"action"`
	}
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("unmarshal audit: %v", err)
	}
	found := false
	for _, r := range records {
		if r.TaskID == task.ID && r.Action == `task.deleted "Fuel and launch"` {
			found = true
		}
	}
	if !found {
		t.Fatalf("deletion record missing: %s", string(data))
	}
}

func TestAPIKeyAuth(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()
	alice, _ := registerAndLogin(t, srv, "alice")

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v1/apikeys", map[string]any{
		"name": "ci",
	}, alice)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create key %d: %s", res.StatusCode, string(data))
	}
	var key struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	if err := json.Unmarshal(data, &key); err != nil {
		t.Fatalf("unmarshal key: %v", err)
	}
	if key.Key == "" {
		t.Fatalf("plaintext key missing: %s", string(data))
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v1/projects", nil, map[string]string{"X-Api-Key": key.Key})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("api key auth %d: %s", res.StatusCode, string(data))
	}

	res, _ = doJSON(t, client, http.MethodDelete, srv.URL+"/v1/apikeys/"+key.ID, nil, alice)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("revoke %d", res.StatusCode)
	}
	res, _ = doJSON(t, client, http.MethodGet, srv.URL+"/v1/projects", nil, map[string]string{"X-Api-Key": key.Key})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("revoked key should be 401, got %d", res.StatusCode)
	}
}
