package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/protomem/pmaster/internal/api"
	"github.com/protomem/pmaster/internal/board"
	"github.com/protomem/pmaster/internal/mockserver"
	"github.com/protomem/pmaster/internal/model"
	"github.com/protomem/pmaster/internal/session"
)

func newTestApp(t *testing.T, email, password string) (*application, *bytes.Buffer) {
	t.Helper()

	app, out, _ := newCountingTestApp(t, email, password)
	return app, out
}

// newCountingTestApp also reports how many requests reached the backend.
func newCountingTestApp(t *testing.T, email, password string) (*application, *bytes.Buffer, *atomic.Int64) {
	t.Helper()

	store := mockserver.NewStore()
	mockserver.Seed(store, true)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := mockserver.New(logger, store).Handler()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := api.DefaultConfig()
	cfg.BaseURL = srv.URL + "/api/"
	sess := session.New()
	client, err := api.New(cfg, sess, logger)
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}

	var out bytes.Buffer
	return &application{
		config:  config{api: cfg, email: email, password: password},
		client:  client,
		logger:  logger,
		session: sess,
		out:     &out,
	}, &out, &calls
}

func runCommand(t *testing.T, app *application, name string, args ...string) error {
	t.Helper()

	cmd, ok := lookupCommand(name)
	if !ok {
		t.Fatalf("command %q not registered", name)
	}
	return app.execute(context.Background(), cmd, args)
}

func TestCommandsRegistered(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range _commands {
		if seen[c.name] {
			t.Fatalf("duplicate command %q", c.name)
		}
		seen[c.name] = true
	}
	if _, ok := lookupCommand("nope"); ok {
		t.Fatal("unknown command resolved")
	}
}

func TestProjectsCommand(t *testing.T) {
	app, out := newTestApp(t, mockserver.AdminEmail, mockserver.AdminPassword)

	if err := runCommand(t, app, "projects"); err != nil {
		t.Fatalf("projects: %v", err)
	}

	var projects []model.Project
	if err := json.Unmarshal(out.Bytes(), &projects); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(projects) != 1 || projects[0].Name != "Demo" {
		t.Fatalf("projects = %+v", projects)
	}
	if app.session.Authenticated() {
		t.Fatal("session not cleared after command")
	}
}

func TestAdminCommandRefusedForMember(t *testing.T) {
	app, out := newTestApp(t, "member@pmaster.test", "Member123!")

	err := runCommand(t, app, "users")
	if err == nil || !strings.Contains(err.Error(), "not available for role User") {
		t.Fatalf("users as member: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestBoardCommand(t *testing.T) {
	app, out := newTestApp(t, "member@pmaster.test", "Member123!")

	if err := runCommand(t, app, "board", "-project", "1", "-module", "1"); err != nil {
		t.Fatalf("board: %v", err)
	}

	var b board.Board
	if err := json.Unmarshal(out.Bytes(), &b); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b.Project.Name != "Demo" || len(b.Columns) != 3 {
		t.Fatalf("board = %+v", b)
	}
	for _, col := range b.Columns {
		if len(col.Tasks) != 1 {
			t.Fatalf("column %s has %d tasks, want 1", col.Label, len(col.Tasks))
		}
	}
}

func TestSetStatusCommand(t *testing.T) {
	app, _ := newTestApp(t, "member@pmaster.test", "Member123!")

	if err := runCommand(t, app, "set-status", "-project", "1", "-module", "1", "-task", "3", "-status", "done"); err != nil {
		t.Fatalf("set-status: %v", err)
	}

	app.out = io.Discard
	if _, _, err := app.client.SignIn(context.Background(), "member@pmaster.test", "Member123!"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	task, err := app.client.GetTask(context.Background(), "1", "1", 3)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task.Status != model.StatusDone || task.Title != "Write docs" {
		t.Fatalf("task = %+v", task)
	}
}

func TestCreateTaskCommandRejectsBadUsers(t *testing.T) {
	app, _ := newTestApp(t, mockserver.AdminEmail, mockserver.AdminPassword)

	err := runCommand(t, app, "create-task", "-project", "1", "-module", "1", "-title", "T", "-priority", "low", "-users", "1,x")
	if err == nil || !strings.Contains(err.Error(), "invalid user id: x") {
		t.Fatalf("create-task: %v", err)
	}
}

func TestCreateTaskCommandBlankPriority(t *testing.T) {
	app, _ := newTestApp(t, mockserver.AdminEmail, mockserver.AdminPassword)

	err := runCommand(t, app, "create-task", "-project", "1", "-module", "1", "-title", "T")
	if kind, _ := api.KindOf(err); kind != api.KindValidation {
		t.Fatalf("create-task without priority: %v", err)
	}
}

func TestRequiredFlags(t *testing.T) {
	app, _ := newTestApp(t, mockserver.AdminEmail, mockserver.AdminPassword)

	err := runCommand(t, app, "add-member", "-project", "1")
	if err == nil || !strings.Contains(err.Error(), "-user: flag is required") {
		t.Fatalf("add-member without -user: %v", err)
	}
}

func TestFlagErrorsMakeNoCalls(t *testing.T) {
	app, out, calls := newCountingTestApp(t, mockserver.AdminEmail, mockserver.AdminPassword)

	if err := runCommand(t, app, "add-member", "-project", "1"); err == nil {
		t.Fatal("add-member without -user succeeded")
	}
	if err := runCommand(t, app, "tasks", "-bogus"); err == nil {
		t.Fatal("tasks with unknown flag succeeded")
	}
	if err := runCommand(t, app, "set-status", "-h"); err != nil {
		t.Fatalf("set-status -h: %v", err)
	}

	if n := calls.Load(); n != 0 {
		t.Fatalf("backend calls = %d, want 0", n)
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output %q", out)
	}
	if app.session.Authenticated() {
		t.Fatal("session authenticated without a command run")
	}
}

func TestSignInFailure(t *testing.T) {
	app, _ := newTestApp(t, mockserver.AdminEmail, "wrong")

	err := runCommand(t, app, "whoami")
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Fatalf("whoami with bad password: %v", err)
	}
	if api.Message(err) != "Invalid credentials." {
		t.Fatalf("Message() = %q", api.Message(err))
	}
}
