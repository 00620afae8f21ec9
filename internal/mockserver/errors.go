package mockserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/protomem/pmaster/internal/ctxstore"
	"github.com/protomem/pmaster/internal/model"
	"github.com/protomem/pmaster/internal/response"
	"github.com/protomem/pmaster/internal/validator"
)

func (srv *Server) reportServerError(r *http.Request, err error) {
	var (
		message = err.Error()
		method  = r.Method
		url     = r.URL.String()
		tid     = ctxstore.FromOr(r.Context(), _traceIDKey, "")
	)

	srv.logger.Error(message, "request_method", method, "request_url", url, _traceIDKey.String(), tid)
}

func (srv *Server) errorMessage(w http.ResponseWriter, r *http.Request, status int, message string, headers http.Header) {
	if message == "" {
		message = http.StatusText(status)
	}
	message = strings.ToUpper(message[:1]) + message[1:]

	err := response.JSONWithHeaders(w, status, response.JSONObject{"error": message}, headers)
	if err != nil {
		srv.reportServerError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (srv *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	srv.reportServerError(r, err)

	message := "The server encountered a problem and could not process your request"
	srv.errorMessage(w, r, http.StatusInternalServerError, message, nil)
}

func (srv *Server) notFound(w http.ResponseWriter, r *http.Request) {
	message := "The requested resource could not be found"
	srv.errorMessage(w, r, http.StatusNotFound, message, nil)
}

func (srv *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	message := "The " + r.Method + " method is not supported for this resource"
	srv.errorMessage(w, r, http.StatusMethodNotAllowed, message, nil)
}

func (srv *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	srv.errorMessage(w, r, http.StatusBadRequest, err.Error(), nil)
}

func (srv *Server) unauthorized(w http.ResponseWriter, r *http.Request) {
	srv.errorMessage(w, r, http.StatusUnauthorized, "missing or invalid bearer token", nil)
}

func (srv *Server) failedValidation(w http.ResponseWriter, r *http.Request, v validator.Validator) {
	err := response.JSON(w, http.StatusUnprocessableEntity, v)
	if err != nil {
		srv.serverError(w, r, err)
	}
}

// storeError maps store sentinels onto status codes.
func (srv *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		srv.errorMessage(w, r, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, model.ErrExists):
		srv.errorMessage(w, r, http.StatusConflict, err.Error(), nil)
	default:
		srv.serverError(w, r, err)
	}
}
