package mockserver

import (
	"errors"
	"net/http"

	"github.com/protomem/pmaster/internal/model"
	"github.com/protomem/pmaster/internal/request"
	"github.com/protomem/pmaster/internal/response"
	"github.com/protomem/pmaster/internal/validator"
)

func (srv *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if err := response.JSON(w, http.StatusOK, response.JSONObject{"status": "OK"}); err != nil {
		srv.serverError(w, r, err)
	}
}

func (srv *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		srv.badRequest(w, r, err)
		return
	}
	if !validator.NotBlank(input.Email) || !validator.NotBlank(input.Password) {
		srv.badRequest(w, r, errors.New("email and password are required"))
		return
	}

	res, err := srv.store.Authenticate(input.Email, input.Password)
	if err != nil {
		srv.errorMessage(w, r, http.StatusUnauthorized, err.Error(), nil)
		return
	}

	srv.writeJSON(w, r, http.StatusOK, res)
}

func (srv *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	key, err := headerParam(r, "user_key")
	if err != nil {
		srv.badRequest(w, r, err)
		return
	}

	token, err := srv.store.IssueToken(key)
	if err != nil {
		srv.errorMessage(w, r, http.StatusUnauthorized, err.Error(), nil)
		return
	}

	srv.writeJSON(w, r, http.StatusOK, model.AuthToken{Token: token})
}

func (srv *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	srv.writeJSON(w, r, http.StatusOK, response.JSONObject{"projects": srv.store.Projects()})
}

// handleCreateProject answers 200 with a null projectID when the client or team
// leader id is unknown, like the real backend.
func (srv *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var input createProjectRequest
	if err := request.DecodeJSON(w, r, &input); err != nil {
		srv.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	validateCreateProject(&v, input)
	if v.HasErrors() {
		srv.failedValidation(w, r, v)
		return
	}

	id, ok := srv.store.CreateProject(NewProject{
		Name:         input.Name,
		Description:  input.Description,
		ClientID:     input.ClientID,
		TeamLeaderID: input.TeamLeaderID,
		Start:        input.Start,
		End:          input.End,
	})
	if !ok {
		srv.writeJSON(w, r, http.StatusOK, response.JSONObject{"projectID": nil})
		return
	}

	srv.writeJSON(w, r, http.StatusCreated, response.JSONObject{"projectID": id})
}

func (srv *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	var input projectRequest
	if err := request.DecodeJSON(w, r, &input); err != nil {
		srv.badRequest(w, r, err)
		return
	}

	if err := srv.store.DeleteProject(input.ProjectID); err != nil {
		srv.storeError(w, r, err)
		return
	}

	srv.message(w, r, "Project deleted")
}

func (srv *Server) handleGetMembers(w http.ResponseWriter, r *http.Request) {
	projectID, err := headerParam(r, "project_id")
	if err != nil {
		srv.badRequest(w, r, err)
		return
	}

	members, err := srv.store.Members(projectID)
	if err != nil {
		srv.storeError(w, r, err)
		return
	}

	srv.writeJSON(w, r, http.StatusOK, response.JSONObject{"members": members})
}

func (srv *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var input addMemberRequest
	if err := request.DecodeJSON(w, r, &input); err != nil {
		srv.badRequest(w, r, err)
		return
	}

	if err := srv.store.AddMember(input.ProjectID, input.UserID); err != nil {
		srv.storeError(w, r, err)
		return
	}

	srv.message(w, r, "Member added")
}

func (srv *Server) handleGetModules(w http.ResponseWriter, r *http.Request) {
	projectID, err := headerParam(r, "project_id")
	if err != nil {
		srv.badRequest(w, r, err)
		return
	}

	modules, err := srv.store.Modules(projectID)
	if err != nil {
		srv.storeError(w, r, err)
		return
	}

	srv.writeJSON(w, r, http.StatusOK, response.JSONObject{"modules": modules})
}

func (srv *Server) handleCreateModule(w http.ResponseWriter, r *http.Request) {
	var input createModuleRequest
	if err := request.DecodeJSON(w, r, &input); err != nil {
		srv.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	validateCreateModule(&v, input)
	if v.HasErrors() {
		srv.failedValidation(w, r, v)
		return
	}

	_, err := srv.store.CreateModule(input.ProjectID, model.Module{
		Title:       input.Title,
		Description: input.Description,
		Priority:    model.Priority(input.Priority),
		Status:      model.Status(input.Status),
	})
	if err != nil {
		srv.storeError(w, r, err)
		return
	}

	srv.message(w, r, "Module created")
}

func (srv *Server) handleGetTasks(w http.ResponseWriter, r *http.Request) {
	projectID, err := headerParam(r, "project_id")
	if err != nil {
		srv.badRequest(w, r, err)
		return
	}
	moduleID, err := headerParam(r, "module_id")
	if err != nil {
		srv.badRequest(w, r, err)
		return
	}

	tasks, err := srv.store.Tasks(projectID, moduleID)
	if err != nil {
		srv.storeError(w, r, err)
		return
	}

	srv.writeJSON(w, r, http.StatusOK, response.JSONObject{"tasks": tasks})
}

func (srv *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	input, ok := srv.decodeTask(w, r)
	if !ok {
		return
	}

	_, err := srv.store.CreateTask(input.ProjectID, input.ModuleID, taskFromRequest(input), input.UserIDs)
	if err != nil {
		srv.storeError(w, r, err)
		return
	}

	srv.message(w, r, "Task created")
}

func (srv *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	input, ok := srv.decodeTask(w, r)
	if !ok {
		return
	}

	err := srv.store.ReplaceTask(input.ProjectID, input.ModuleID, taskFromRequest(input), input.UserIDs)
	if err != nil {
		srv.storeError(w, r, err)
		return
	}

	srv.message(w, r, "Task updated")
}

func (srv *Server) handleRemoveTask(w http.ResponseWriter, r *http.Request) {
	var input taskRequest
	if err := request.DecodeJSON(w, r, &input); err != nil {
		srv.badRequest(w, r, err)
		return
	}

	if err := srv.store.RemoveTask(input.ProjectID, input.ModuleID, input.TaskID); err != nil {
		srv.storeError(w, r, err)
		return
	}

	srv.message(w, r, "Task removed")
}

func (srv *Server) handleGetTeams(w http.ResponseWriter, r *http.Request) {
	projectID, err := headerParam(r, "project_id")
	if err != nil {
		srv.badRequest(w, r, err)
		return
	}

	teams, err := srv.store.Teams(projectID)
	if err != nil {
		srv.storeError(w, r, err)
		return
	}

	srv.writeJSON(w, r, http.StatusOK, response.JSONObject{"teams": teams})
}

func (srv *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	input, ok := srv.decodeTeam(w, r)
	if !ok {
		return
	}

	if _, err := srv.store.CreateTeam(input.ProjectID, input.Name, input.Description); err != nil {
		srv.storeError(w, r, err)
		return
	}

	srv.message(w, r, "Team created")
}

func (srv *Server) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	input, ok := srv.decodeTeam(w, r)
	if !ok {
		return
	}

	err := srv.store.UpdateTeam(input.ProjectID, model.Team{
		ID:          input.TeamID,
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		srv.storeError(w, r, err)
		return
	}

	srv.message(w, r, "Team updated")
}

func (srv *Server) handleRemoveTeam(w http.ResponseWriter, r *http.Request) {
	var input teamRequest
	if err := request.DecodeJSON(w, r, &input); err != nil {
		srv.badRequest(w, r, err)
		return
	}

	if err := srv.store.RemoveTeam(input.ProjectID, input.TeamID); err != nil {
		srv.storeError(w, r, err)
		return
	}

	srv.message(w, r, "Team removed")
}

func (srv *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	srv.writeJSON(w, r, http.StatusOK, response.JSONObject{"users": srv.store.Users()})
}

func (srv *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var input createUserRequest
	if err := request.DecodeJSON(w, r, &input); err != nil {
		srv.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	validateCreateUser(&v, input)
	if v.HasErrors() {
		srv.failedValidation(w, r, v)
		return
	}

	password, err := srv.store.CreateUser(input.Name, input.Email, input.Phone, model.Role(input.Role))
	if err != nil {
		srv.storeError(w, r, err)
		return
	}

	srv.writeJSON(w, r, http.StatusCreated, response.JSONObject{
		"message":      "User created",
		"tempPassword": password,
	})
}

func (srv *Server) decodeTask(w http.ResponseWriter, r *http.Request) (taskRequest, bool) {
	var input taskRequest
	if err := request.DecodeJSON(w, r, &input); err != nil {
		srv.badRequest(w, r, err)
		return taskRequest{}, false
	}

	var v validator.Validator
	validateTask(&v, input)
	if v.HasErrors() {
		srv.failedValidation(w, r, v)
		return taskRequest{}, false
	}

	return input, true
}

func (srv *Server) decodeTeam(w http.ResponseWriter, r *http.Request) (teamRequest, bool) {
	var input teamRequest
	if err := request.DecodeJSON(w, r, &input); err != nil {
		srv.badRequest(w, r, err)
		return teamRequest{}, false
	}

	var v validator.Validator
	validateTeam(&v, input)
	if v.HasErrors() {
		srv.failedValidation(w, r, v)
		return teamRequest{}, false
	}

	return input, true
}

func taskFromRequest(req taskRequest) model.Task {
	return model.Task{
		ID:          req.TaskID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    model.Priority(req.Priority),
		Status:      model.Status(req.Status),
	}
}

func (srv *Server) message(w http.ResponseWriter, r *http.Request, msg string) {
	srv.writeJSON(w, r, http.StatusOK, response.JSONObject{"message": msg})
}

func (srv *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	if err := response.JSON(w, status, data); err != nil {
		srv.serverError(w, r, err)
	}
}
