package api

import (
	"context"
	"net/http"

	"github.com/protomem/pmaster/internal/model"
	"github.com/protomem/pmaster/internal/validator"
)

type CreateUserRequest struct {
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Phone string     `json:"phone"`
	Role  model.Role `json:"role"`
}

// CreatedUser carries the server generated temporary password in plain text.
// It cannot be fetched again, so callers must show it once and drop it.
type CreatedUser struct {
	Message      string `json:"message"`
	TempPassword string `json:"tempPassword"`
}

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (CreatedUser, error) {
	const op = "create user"

	var v validator.Validator
	v.CheckField(validator.NotBlank(req.Name), "name", "cannot be blank")
	v.CheckField(validator.NotBlank(req.Email), "email", "cannot be blank")
	v.CheckField(validator.IsEmail(req.Email), "email", "invalid email address")
	v.CheckField(validator.NotBlank(req.Phone), "phone", "cannot be blank")
	v.CheckField(validator.NotBlank(string(req.Role)), "role", "cannot be blank")
	if v.HasErrors() {
		return CreatedUser{}, invalid(op, &v)
	}

	var res CreatedUser
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "user",
		body:   req,
	}, &res)
	if err != nil {
		return CreatedUser{}, err
	}

	c.logger.Info("user created", "email", req.Email, "role", req.Role.Label())

	return res, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]model.AdminUser, error) {
	var res struct {
		Users []model.AdminUser `json:"users"`
	}
	err := c.do(ctx, call{
		op:     "list users",
		method: http.MethodGet,
		path:   "user",
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Users, nil
}
