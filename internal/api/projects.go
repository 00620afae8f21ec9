package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/protomem/pmaster/internal/model"
	"github.com/protomem/pmaster/internal/validator"
)

type CreateProjectRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	ClientID     model.ID `json:"client_id"`
	TeamLeaderID model.ID `json:"team_leader_id"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
}

type createProjectResponse struct {
	ProjectID *string `json:"projectID"`
}

type deleteProjectRequest struct {
	ProjectID model.ProjectID `json:"project_id"`
}

type addMemberRequest struct {
	ProjectID model.ProjectID `json:"project_id"`
	UserID    model.ID        `json:"user_id"`
}

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var res struct {
		Projects []model.Project `json:"projects"`
	}
	err := c.do(ctx, call{
		op:     "list projects",
		method: http.MethodGet,
		path:   "project",
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Projects, nil
}

// CreateProject expects Start and End as YYYY-MM-DD and sends them as full
// start-of-day and end-of-day timestamps. A success response without a project
// id is reported as a semantic failure.
func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (model.ProjectID, error) {
	const op = "create project"

	var v validator.Validator
	v.CheckField(validator.NotBlank(req.Name), "name", "cannot be blank")
	v.CheckField(validator.NotBlank(req.Description), "description", "cannot be blank")
	v.CheckField(validator.NotBlank(req.Start), "start", "cannot be blank")
	v.CheckField(validator.NotBlank(req.End), "end", "cannot be blank")
	v.CheckField(validator.IsDate(req.Start), "start", "must be a date in YYYY-MM-DD format")
	v.CheckField(validator.IsDate(req.End), "end", "must be a date in YYYY-MM-DD format")
	if v.HasErrors() {
		return "", invalid(op, &v)
	}

	req.Start, _ = StartOfDay(req.Start)
	req.End, _ = EndOfDay(req.End)

	var res createProjectResponse
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "project",
		body:   req,
	}, &res)
	if err != nil {
		return "", err
	}

	if res.ProjectID == nil || strings.TrimSpace(*res.ProjectID) == "" {
		c.logger.Warn("project not created", "op", op, "clientId", req.ClientID, "teamLeaderId", req.TeamLeaderID)
		return "", &Error{Op: op, Kind: KindSemantic, Status: http.StatusOK, Err: model.ErrMissingProjectID}
	}

	return *res.ProjectID, nil
}

func (c *Client) DeleteProject(ctx context.Context, projectID model.ProjectID) (string, error) {
	const op = "delete project"

	if !validator.NotBlank(projectID) {
		return "", invalidMessage(op, "project id cannot be blank")
	}

	var res messageResponse
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "project/deleteProject",
		body:   deleteProjectRequest{ProjectID: projectID},
	}, &res)
	return res.Message, err
}

func (c *Client) ProjectMembers(ctx context.Context, projectID model.ProjectID) ([]model.ProjectMember, error) {
	const op = "project members"

	if !validator.NotBlank(projectID) {
		return nil, invalidMessage(op, "project id cannot be blank")
	}

	var res struct {
		Members []model.ProjectMember `json:"members"`
	}
	err := c.do(ctx, call{
		op:      op,
		method:  http.MethodGet,
		path:    "project/getMembers",
		headers: map[string]string{"project_id": projectID},
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Members, nil
}

func (c *Client) AddProjectMember(ctx context.Context, projectID model.ProjectID, userID model.ID) (string, error) {
	const op = "add project member"

	if !validator.NotBlank(projectID) {
		return "", invalidMessage(op, "project id cannot be blank")
	}

	var res messageResponse
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "project/addMember",
		body:   addMemberRequest{ProjectID: projectID, UserID: userID},
	}, &res)
	return res.Message, err
}

// StartOfDay turns YYYY-MM-DD into the first second of that day in UTC.
func StartOfDay(date string) (string, error) {
	t, err := time.Parse(validator.DateLayout, date)
	if err != nil {
		return "", err
	}
	return t.UTC().Format(time.RFC3339), nil
}

// EndOfDay turns YYYY-MM-DD into the last second of that day in UTC.
func EndOfDay(date string) (string, error) {
	t, err := time.Parse(validator.DateLayout, date)
	if err != nil {
		return "", err
	}
	return t.UTC().Add(24*time.Hour - time.Second).Format(time.RFC3339), nil
}
