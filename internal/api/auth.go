package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/protomem/pmaster/internal/model"
	"github.com/protomem/pmaster/internal/validator"
)

// Login checks the credentials. The returned user key is not a bearer token;
// exchange it with ExchangeToken.
func (c *Client) Login(ctx context.Context, email, password string) (model.LoginResult, error) {
	const op = "login"

	var v validator.Validator
	v.Check(validator.NotBlank(email) && validator.NotBlank(password), "Please enter your email and password.")
	if !v.HasErrors() {
		v.CheckField(validator.IsEmail(email), "email", "invalid email address")
	}
	if v.HasErrors() {
		return model.LoginResult{}, invalid(op, &v)
	}

	var res model.LoginResult
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "login",
		body:   model.Credentials{Email: email, Password: password},
		login:  true,
	}, &res)
	if err != nil {
		return model.LoginResult{}, err
	}
	if strings.TrimSpace(res.UserKey) == "" {
		return model.LoginResult{}, decodeError(op, "missing userKey")
	}

	return res, nil
}

func (c *Client) ExchangeToken(ctx context.Context, userKey string) (model.AuthToken, error) {
	const op = "exchange token"

	if !validator.NotBlank(userKey) {
		return model.AuthToken{}, invalidMessage(op, "user key cannot be blank")
	}

	var tok model.AuthToken
	err := c.do(ctx, call{
		op:      op,
		method:  http.MethodGet,
		path:    "login/getToken",
		headers: map[string]string{"user_key": userKey},
	}, &tok)
	if err != nil {
		return model.AuthToken{}, err
	}
	if strings.TrimSpace(tok.Token) == "" {
		return model.AuthToken{}, decodeError(op, "missing token")
	}

	return tok, nil
}

// SignIn runs the login and token exchange steps in order and stores the
// token in the session. The session is left untouched on failure.
func (c *Client) SignIn(ctx context.Context, email, password string) (model.LoginResult, model.AuthToken, error) {
	res, err := c.Login(ctx, email, password)
	if err != nil {
		return model.LoginResult{}, model.AuthToken{}, err
	}

	tok, err := c.ExchangeToken(ctx, res.UserKey)
	if err != nil {
		return model.LoginResult{}, model.AuthToken{}, err
	}

	c.session.OnLoginSuccess(tok.Token)
	c.logger.Info("signed in", "userId", res.UserID, "role", res.Role.Label(), "tempPassword", res.TempPassword)

	return res, tok, nil
}

func (c *Client) SignOut() {
	c.session.OnLogout()
	c.logger.Info("signed out")
}
