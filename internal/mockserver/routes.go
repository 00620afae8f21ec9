package mockserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (srv *Server) routes() http.Handler {
	mux := chi.NewRouter()

	mux.NotFound(srv.notFound)
	mux.MethodNotAllowed(srv.methodNotAllowed)

	mux.Use(srv.traceID)
	mux.Use(srv.logAccess)
	mux.Use(srv.recoverPanic)

	mux.Use(srv.CORS)

	mux.Route("/api", func(api chi.Router) {
		api.Get("/status", srv.handleStatus)

		api.Post("/login", srv.handleLogin)
		api.Get("/login/getToken", srv.handleGetToken)

		api.Group(func(authed chi.Router) {
			authed.Use(srv.requireBearer)

			authed.Get("/project", srv.handleListProjects)
			authed.Get("/project/getMembers", srv.handleGetMembers)
			authed.Get("/project/getModules", srv.handleGetModules)
			authed.Post("/project/createModule", srv.handleCreateModule)
			authed.Get("/project/getTasks", srv.handleGetTasks)
			authed.Post("/project/createTask", srv.handleCreateTask)
			authed.Post("/project/updateTask", srv.handleUpdateTask)
			authed.Post("/project/removeTask", srv.handleRemoveTask)
			authed.Get("/project/getTeams", srv.handleGetTeams)

			authed.Group(func(admin chi.Router) {
				admin.Use(srv.requireAdmin)

				admin.Post("/project", srv.handleCreateProject)
				admin.Post("/project/deleteProject", srv.handleDeleteProject)
				admin.Post("/project/addMember", srv.handleAddMember)
				admin.Post("/project/createTeam", srv.handleCreateTeam)
				admin.Post("/project/updateTeam", srv.handleUpdateTeam)
				admin.Post("/project/removeTeam", srv.handleRemoveTeam)
				admin.Get("/user", srv.handleListUsers)
				admin.Post("/user", srv.handleCreateUser)
			})
		})
	})

	srv.logger.Debug("routes configured", "routes", chiRoutesToStrings(mux.Routes()))

	return mux
}

func chiRoutesToStrings(routes []chi.Route) []string {
	parsedRoutes := make([]string, 0, len(routes))
	for _, route := range routes {
		parsedRoutes = append(parsedRoutes, route.Pattern)
		if route.SubRoutes != nil {
			parsedRoutes = append(parsedRoutes, chiRoutesToStrings(route.SubRoutes.Routes())...)
		}
	}
	return parsedRoutes
}
