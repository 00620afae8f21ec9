package api

import (
	"context"
	"net/http"

	"github.com/protomem/pmaster/internal/model"
	"github.com/protomem/pmaster/internal/validator"
)

type CreateTeamRequest struct {
	ProjectID   model.ProjectID `json:"project_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
}

type UpdateTeamRequest struct {
	ProjectID   model.ProjectID `json:"project_id"`
	TeamID      model.ID        `json:"team_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
}

type RemoveTeamRequest struct {
	ProjectID model.ProjectID `json:"project_id"`
	TeamID    model.ID        `json:"team_id"`
}

func (c *Client) ListTeams(ctx context.Context, projectID model.ProjectID) ([]model.Team, error) {
	const op = "list teams"

	if !validator.NotBlank(projectID) {
		return nil, invalidMessage(op, "project id cannot be blank")
	}

	var res struct {
		Teams []model.Team `json:"teams"`
	}
	err := c.do(ctx, call{
		op:      op,
		method:  http.MethodGet,
		path:    "project/getTeams",
		headers: map[string]string{"project_id": projectID},
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Teams, nil
}

func (c *Client) CreateTeam(ctx context.Context, req CreateTeamRequest) (string, error) {
	const op = "create team"

	var v validator.Validator
	validateTeamFields(&v, req.ProjectID, req.Name, req.Description)
	if v.HasErrors() {
		return "", invalid(op, &v)
	}

	var res messageResponse
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "project/createTeam",
		body:   req,
	}, &res)
	return res.Message, err
}

func (c *Client) UpdateTeam(ctx context.Context, req UpdateTeamRequest) (string, error) {
	const op = "update team"

	var v validator.Validator
	validateTeamFields(&v, req.ProjectID, req.Name, req.Description)
	if v.HasErrors() {
		return "", invalid(op, &v)
	}

	var res messageResponse
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "project/updateTeam",
		body:   req,
	}, &res)
	return res.Message, err
}

func (c *Client) RemoveTeam(ctx context.Context, req RemoveTeamRequest) (string, error) {
	const op = "remove team"

	if !validator.NotBlank(req.ProjectID) {
		return "", invalidMessage(op, "project id cannot be blank")
	}

	var res messageResponse
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "project/removeTeam",
		body:   req,
	}, &res)
	return res.Message, err
}

func validateTeamFields(v *validator.Validator, projectID model.ProjectID, name, description string) {
	v.CheckField(validator.NotBlank(projectID), "project_id", "select a project")
	v.CheckField(validator.NotBlank(name), "name", "cannot be blank")
	v.CheckField(validator.NotBlank(description), "description", "cannot be blank")
}
