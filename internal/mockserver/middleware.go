package mockserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/protomem/pmaster/internal/ctxstore"
	"github.com/protomem/pmaster/internal/model"
	"github.com/protomem/pmaster/internal/response"
	"github.com/rs/cors"
	"github.com/tomasen/realip"
)

const (
	_traceIDKey = ctxstore.Key("traceId")
	_userKey    = ctxstore.Key("user")
)

// traceID reuses the caller's X-Request-Id when present.
func (srv *Server) traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := r.Header.Get("X-Request-Id")
		if tid == "" {
			tid = genTraceID()
		}
		w.Header().Set("X-Request-Id", tid)
		ctx := ctxstore.With(r.Context(), _traceIDKey, tid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (srv *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err != nil {
				srv.serverError(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (srv *Server) logAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw := response.NewMetricsResponseWriter(w)
		next.ServeHTTP(mw, r)

		var (
			ip     = realip.FromRequest(r)
			method = r.Method
			url    = r.URL.String()
			proto  = r.Proto
			tid    = ctxstore.FromOr(r.Context(), _traceIDKey, "")
		)

		userAttrs := slog.Group("user", "ip", ip)
		requestAttrs := slog.Group("request", "method", method, "url", url, "proto", proto, _traceIDKey.String(), tid)
		responseAttrs := slog.Group("response", "status", mw.StatusCode, "size", mw.BytesCount)

		srv.logger.Info("access", userAttrs, requestAttrs, responseAttrs)
	})
}

func (srv *Server) CORS(next http.Handler) http.Handler {
	return cors.AllowAll().Handler(next)
}

// requireBearer rejects requests without a known "Authorization: bearer" token.
func (srv *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			srv.unauthorized(w, r)
			return
		}

		user, ok := srv.store.UserByToken(token)
		if !ok {
			srv.unauthorized(w, r)
			return
		}

		ctx := ctxstore.With(r.Context(), _userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (srv *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := ctxstore.From[model.AdminUser](r.Context(), _userKey)
		if !ok || !user.Role.IsAdmin() {
			srv.errorMessage(w, r, http.StatusForbidden, "admin role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func genTraceID() string {
	id, _ := uuid.NewRandom()
	return id.String()
}
