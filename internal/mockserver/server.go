// Package mockserver is an in-memory stand-in for the PMaster backend. It
// serves the endpoints the client calls so the client can be exercised end to
// end without the real service.
package mockserver

import (
	"log/slog"
	"net/http"

	"github.com/protomem/pmaster/internal/model"
)

const (
	AdminEmail    = "admin@pmaster.test"
	AdminPassword = "Admin123!"
)

type Server struct {
	logger *slog.Logger
	store  *Store
}

func New(logger *slog.Logger, store *Store) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = NewStore()
	}
	return &Server{
		logger: logger.With("module", "mockserver"),
		store:  store,
	}
}

func (srv *Server) Store() *Store {
	return srv.store
}

func (srv *Server) Handler() http.Handler {
	return srv.routes()
}

// Seed adds the admin account and, with demo set, a small sample project.
func Seed(store *Store, demo bool) {
	adminID := store.AddUser("Admin", AdminEmail, "5550000", AdminPassword, model.RoleAdmin)
	if !demo {
		return
	}

	memberID := store.AddUser("Member", "member@pmaster.test", "5550001", "Member123!", model.RoleMember)
	clientID := store.AddUser("Client", "client@pmaster.test", "5550002", "Client123!", model.RoleClient)

	projectID, _ := store.CreateProject(NewProject{
		Name:         "Demo",
		Description:  "Sample project",
		ClientID:     clientID,
		TeamLeaderID: adminID,
		Start:        "2024-01-01T00:00:00Z",
		End:          "2024-12-31T23:59:59Z",
	})
	_ = store.AddMember(projectID, memberID)

	moduleID, _ := store.CreateModule(projectID, model.Module{
		Title:       "Backlog",
		Description: "Initial module",
		Priority:    model.PriorityMedium,
		Status:      model.StatusTodo,
	})

	mid := itoa(moduleID)
	for _, t := range []model.Task{
		{Title: "Design board", Priority: model.PriorityHigh, Status: model.StatusDone},
		{Title: "Wire login", Priority: model.PriorityMedium, Status: model.StatusInProgress},
		{Title: "Write docs", Priority: model.PriorityLow, Status: model.StatusTodo},
	} {
		_, _ = store.CreateTask(projectID, mid, t, []model.ID{memberID})
	}

	_, _ = store.CreateTeam(projectID, "Core", "Core team")
}
