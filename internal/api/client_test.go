package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/protomem/pmaster/internal/ctxstore"
	"github.com/protomem/pmaster/internal/model"
	"github.com/protomem/pmaster/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	c, err := New(cfg, session.New(), discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// countingServer counts every request that reaches it.
func countingServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var n atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.Add(1)
		if h != nil {
			h(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()

	got, ok := KindOf(err)
	if !ok {
		t.Fatalf("error %v is not an *api.Error", err)
	}
	if got != want {
		t.Fatalf("kind = %s, want %s (err: %v)", got, want, err)
	}
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "ftp://example.com"
	if _, err := New(cfg, session.New(), nil); err == nil {
		t.Fatal("expected error for ftp scheme")
	}
	if _, err := New(DefaultConfig(), nil, nil); err == nil {
		t.Fatal("expected error for nil session")
	}
}

func TestLoginValidationMakesNoCalls(t *testing.T) {
	srv, calls := countingServer(t, nil)
	c := newTestClient(t, srv.URL)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"blank email", "", "Abc123!"},
		{"blank password", "user@test.com", ""},
		{"whitespace only", "   ", "  "},
		{"no at sign", "usertest.com", "Abc123!"},
		{"short tld", "user@test.c", "Abc123!"},
		{"space inside", "us er@test.com", "Abc123!"},
		{"no domain", "user@.com", "Abc123!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Login(context.Background(), tt.email, tt.password)
			assertKind(t, err, KindValidation)
			if !errors.Is(err, model.ErrValidation) {
				t.Fatalf("errors.Is(err, ErrValidation) = false")
			}
		})
	}

	if got := calls.Load(); got != 0 {
		t.Fatalf("server received %d requests, want 0", got)
	}
}

func TestSignInScenario(t *testing.T) {
	var (
		mu         sync.Mutex
		authHeader string
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var creds model.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad body"})
			return
		}
		if creds.Email != "user@test.com" || creds.Password != "Abc123!" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "nope"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"userID":       1,
			"userKey":      "K1",
			"role":         "1",
			"tempPassword": false,
		})
	})
	mux.HandleFunc("/api/login/getToken", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("user_key"); got != "K1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "bad key"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "T1"})
	})
	mux.HandleFunc("/api/project", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		authHeader = r.Header.Get("Authorization")
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"projects": []model.Project{}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL+"/api/")

	res, tok, err := c.SignIn(context.Background(), "user@test.com", "Abc123!")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if res.UserID != 1 || res.UserKey != "K1" || res.Role != model.RoleAdmin || res.TempPassword {
		t.Fatalf("login result = %+v", res)
	}
	if tok.Token != "T1" {
		t.Fatalf("token = %q, want T1", tok.Token)
	}
	if got, ok := c.Session().CurrentToken(); !ok || got != "T1" {
		t.Fatalf("CurrentToken() = %q, %v; want T1", got, ok)
	}

	if _, err := c.ListProjects(context.Background()); err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	mu.Lock()
	got := authHeader
	mu.Unlock()
	if got != "bearer T1" {
		t.Fatalf("Authorization = %q, want %q", got, "bearer T1")
	}

	c.SignOut()
	if _, err := c.ListProjects(context.Background()); err != nil {
		t.Fatalf("ListProjects after sign out: %v", err)
	}
	mu.Lock()
	got = authHeader
	mu.Unlock()
	if got != "" {
		t.Fatalf("Authorization after logout = %q, want none", got)
	}
}

func TestSignInFailureLeavesSessionEmpty(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/login") {
			writeJSON(w, http.StatusOK, map[string]any{"userID": 1, "userKey": "K1", "role": "2"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{})
	})
	c := newTestClient(t, srv.URL)

	_, _, err := c.SignIn(context.Background(), "user@test.com", "Abc123!")
	assertKind(t, err, KindDecode)
	if c.Session().Authenticated() {
		t.Fatal("session holds a token after failed exchange")
	}
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		login  bool
		want   Kind
	}{
		{"login 400", http.StatusBadRequest, true, KindInvalidCredentials},
		{"login 401", http.StatusUnauthorized, true, KindInvalidCredentials},
		{"login 500", http.StatusInternalServerError, true, KindStatus},
		{"other 401", http.StatusUnauthorized, false, KindUnauthorized},
		{"other 400", http.StatusBadRequest, false, KindStatus},
		{"other 404", http.StatusNotFound, false, KindStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, map[string]string{"error": "boom"})
			})
			c := newTestClient(t, srv.URL)

			var err error
			if tt.login {
				_, err = c.Login(context.Background(), "user@test.com", "Abc123!")
			} else {
				_, err = c.ListProjects(context.Background())
			}
			assertKind(t, err, tt.want)

			var apiErr *Error
			if errors.As(err, &apiErr) && apiErr.Status != tt.status {
				t.Fatalf("status = %d, want %d", apiErr.Status, tt.status)
			}
		})
	}
}

func TestInvalidCredentialsAndUnauthorizedMessagesDiffer(t *testing.T) {
	login := &Error{Op: "login", Kind: KindInvalidCredentials, Status: 401}
	other := &Error{Op: "list projects", Kind: KindUnauthorized, Status: 401}

	if Message(login) == Message(other) {
		t.Fatalf("both render %q", Message(login))
	}
	if !errors.Is(login, model.ErrInvalidCredentials) || errors.Is(login, model.ErrUnauthorized) {
		t.Fatal("login error sentinel mismatch")
	}
	if !errors.Is(other, model.ErrUnauthorized) || errors.Is(other, model.ErrInvalidCredentials) {
		t.Fatal("unauthorized error sentinel mismatch")
	}
}

func TestStatusErrorKeepsBody(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "member: already exists"})
	})
	c := newTestClient(t, srv.URL)

	_, err := c.AddProjectMember(context.Background(), "1", 2)
	assertKind(t, err, KindStatus)
	if msg := Message(err); !strings.Contains(msg, "409") || !strings.Contains(msg, "already exists") {
		t.Fatalf("Message() = %q", msg)
	}
}

func TestCreateProjectNullID(t *testing.T) {
	for _, body := range []string{`{"projectID":null}`, `{"projectID":"  "}`, `{}`} {
		t.Run(body, func(t *testing.T) {
			srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, body)
			})
			c := newTestClient(t, srv.URL)

			_, err := c.CreateProject(context.Background(), CreateProjectRequest{
				Name:         "P",
				Description:  "D",
				ClientID:     99,
				TeamLeaderID: 98,
				Start:        "2024-03-01",
				End:          "2024-03-31",
			})
			assertKind(t, err, KindSemantic)
			if !errors.Is(err, model.ErrMissingProjectID) {
				t.Fatal("errors.Is(err, ErrMissingProjectID) = false")
			}
			if !strings.Contains(Message(err), "client and team leader") {
				t.Fatalf("Message() = %q", Message(err))
			}
		})
	}
}

func TestCreateProjectNormalizesDates(t *testing.T) {
	var got CreateProjectRequest
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusCreated, map[string]string{"projectID": "42"})
	})
	c := newTestClient(t, srv.URL)

	id, err := c.CreateProject(context.Background(), CreateProjectRequest{
		Name:         "P",
		Description:  "D",
		ClientID:     1,
		TeamLeaderID: 2,
		Start:        "2024-02-28",
		End:          "2024-02-29",
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if id != "42" {
		t.Fatalf("id = %q, want 42", id)
	}
	if got.Start != "2024-02-28T00:00:00Z" || got.End != "2024-02-29T23:59:59Z" {
		t.Fatalf("dates sent = %q, %q", got.Start, got.End)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	srv, calls := countingServer(t, nil)
	c := newTestClient(t, srv.URL)

	tests := []struct {
		name string
		req  CreateProjectRequest
	}{
		{"blank name", CreateProjectRequest{Description: "D", Start: "2024-01-01", End: "2024-01-02"}},
		{"slash date", CreateProjectRequest{Name: "P", Description: "D", Start: "2024/01/01", End: "2024-01-02"}},
		{"impossible date", CreateProjectRequest{Name: "P", Description: "D", Start: "2024-02-30", End: "2024-03-02"}},
		{"timestamp", CreateProjectRequest{Name: "P", Description: "D", Start: "2024-01-01T00:00:00Z", End: "2024-01-02"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateProject(context.Background(), tt.req)
			assertKind(t, err, KindValidation)
		})
	}

	if got := calls.Load(); got != 0 {
		t.Fatalf("server received %d requests, want 0", got)
	}
}

func TestCreateTaskBlankPriorityMakesNoCall(t *testing.T) {
	srv, calls := countingServer(t, nil)
	c := newTestClient(t, srv.URL)

	_, err := c.CreateTask(context.Background(), CreateTaskRequest{
		ProjectID:   "1",
		ModuleID:    "1",
		Title:       "Write tests",
		Description: "All of them",
		Priority:    "",
		Status:      model.StatusTodo,
		UserIDs:     []model.ID{2},
	})
	assertKind(t, err, KindValidation)
	if !strings.Contains(Message(err), "priority") {
		t.Fatalf("Message() = %q, want priority mention", Message(err))
	}
	if got := calls.Load(); got != 0 {
		t.Fatalf("server received %d requests, want 0", got)
	}
}

func TestDecodeError(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"projects": "not a list"}`)
	})
	c := newTestClient(t, srv.URL)

	_, err := c.ListProjects(context.Background())
	assertKind(t, err, KindDecode)
	if !errors.Is(err, model.ErrBadResponse) {
		t.Fatal("errors.Is(err, ErrBadResponse) = false")
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"projects":[{"id":"1","name":"P","color":"red"}],"total":1}`)
	})
	c := newTestClient(t, srv.URL)

	projects, err := c.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "P" || projects[0].Start != "" {
		t.Fatalf("projects = %+v", projects)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url)
	_, err := c.ListProjects(context.Background())
	assertKind(t, err, KindTransport)
	if !strings.Contains(Message(err), "Connection error") {
		t.Fatalf("Message() = %q", Message(err))
	}
}

func TestCancelledContext(t *testing.T) {
	srv, _ := countingServer(t, nil)
	c := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListProjects(ctx)
	assertKind(t, err, KindTransport)
	if Message(err) != "Request cancelled." {
		t.Fatalf("Message() = %q", Message(err))
	}
}

// headerRecorder answers every request with a fixed JSON body and keeps the
// header map as the client built it, before any server canonicalizes it.
type headerRecorder struct {
	body string
	seen http.Header
}

func (hr *headerRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	hr.seen = req.Header.Clone()
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(hr.body)),
		Request:    req,
	}, nil
}

func TestUnderscoreHeadersSentVerbatim(t *testing.T) {
	c := newTestClient(t, "http://pmaster.test/api/")
	rec := &headerRecorder{body: `{"tasks":[]}`}
	c.http.Transport = NewAuthenticator(c.Session(), rec)

	if _, err := c.ListTasks(context.Background(), "7", "3"); err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if v := rec.seen["project_id"]; len(v) != 1 || v[0] != "7" {
		t.Fatalf("project_id header = %v", v)
	}
	if v := rec.seen["module_id"]; len(v) != 1 || v[0] != "3" {
		t.Fatalf("module_id header = %v", v)
	}
	if _, ok := rec.seen["Project_id"]; ok {
		t.Fatal("project_id header was canonicalized")
	}
}

func TestServerSeesUnderscoreHeaders(t *testing.T) {
	var projectID, moduleID string
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		projectID = r.Header.Get("project_id")
		moduleID = r.Header.Get("module_id")
		writeJSON(w, http.StatusOK, map[string]any{"tasks": []model.Task{}})
	})
	c := newTestClient(t, srv.URL)

	if _, err := c.ListTasks(context.Background(), "7", "3"); err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if projectID != "7" || moduleID != "3" {
		t.Fatalf("project_id = %q, module_id = %q", projectID, moduleID)
	}
}

func TestRedirectDoesNotForwardToken(t *testing.T) {
	foreign, foreignCalls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get(HeaderAuthorization); auth != "" {
			t.Errorf("foreign host received Authorization %q", auth)
		}
		writeJSON(w, http.StatusOK, map[string]any{"projects": []model.Project{}})
	})
	// Same listener under another host name, so net/http treats it as a
	// different domain.
	target := strings.Replace(foreign.URL, "127.0.0.1", "localhost", 1) + "/elsewhere"

	srv, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	})
	c := newTestClient(t, srv.URL)
	c.Session().OnLoginSuccess("SECRET")

	_, err := c.ListProjects(context.Background())
	assertKind(t, err, KindStatus)

	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusFound {
		t.Fatalf("err = %v, want status 302", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("api calls = %d, want 1", n)
	}
	if n := foreignCalls.Load(); n != 0 {
		t.Fatalf("redirect followed: foreign calls = %d", n)
	}
}

func TestRequestIDFromContext(t *testing.T) {
	var got string
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(HeaderRequestID)
		writeJSON(w, http.StatusOK, map[string]any{"projects": []model.Project{}})
	})
	c := newTestClient(t, srv.URL)

	ctx := ctxstore.WithRequestID(context.Background(), "req-1")
	if _, err := c.ListProjects(ctx); err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if got != "req-1" {
		t.Fatalf("request id = %q, want req-1", got)
	}

	if _, err := c.ListProjects(context.Background()); err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if got == "" || got == "req-1" {
		t.Fatalf("generated request id = %q", got)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"tasks": []model.Task{{ID: 1, Title: "A"}}})
	})
	c := newTestClient(t, srv.URL)

	task, err := c.GetTask(context.Background(), "1", "1", 1)
	if err != nil || task.Title != "A" {
		t.Fatalf("GetTask(1) = %+v, %v", task, err)
	}

	_, err = c.GetTask(context.Background(), "1", "1", 2)
	assertKind(t, err, KindNotFound)
	if !errors.Is(err, model.ErrTaskNotFound) {
		t.Fatal("errors.Is(err, ErrTaskNotFound) = false")
	}
}
