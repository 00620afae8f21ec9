package mockserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// headerParam reads a header whose name may carry underscores. Clients that
// set it verbatim leave it under the raw key; the wire form arrives
// canonicalized.
func headerParam(r *http.Request, key string) (string, error) {
	var val string
	if vals := r.Header[key]; len(vals) > 0 {
		val = vals[0]
	} else {
		val = r.Header.Get(key)
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return "", errors.New(key + " header is required")
	}
	return val, nil
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createProjectRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ClientID     int    `json:"client_id"`
	TeamLeaderID int    `json:"team_leader_id"`
	Start        string `json:"start"`
	End          string `json:"end"`
}

type projectRequest struct {
	ProjectID string `json:"project_id"`
}

type addMemberRequest struct {
	ProjectID string `json:"project_id"`
	UserID    int    `json:"user_id"`
}

type createModuleRequest struct {
	ProjectID   string `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

type taskRequest struct {
	ProjectID   string `json:"project_id"`
	ModuleID    string `json:"module_id"`
	TaskID      int    `json:"task_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	UserIDs     []int  `json:"user_ids"`
}

type teamRequest struct {
	ProjectID   string `json:"project_id"`
	TeamID      int    `json:"team_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}
