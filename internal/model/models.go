package model

import "strings"

type (
	ProjectID = string
	ID        = int
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	UserID       ID     `json:"userID"`
	UserKey      string `json:"userKey"`
	Role         Role   `json:"role"`
	TempPassword bool   `json:"tempPassword"`
}

type AuthToken struct {
	Token string `json:"token"`
}

type Project struct {
	ID          ProjectID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Start       string    `json:"start"`
	End         string    `json:"end"`
}

type ProjectMember struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

type Module struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	TeamIDs     *ID      `json:"team_ids,omitempty"`
}

// Task is the server's read representation. UserIDs comes back as a scalar
// while task requests send a list.
type Task struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	UserIDs     *ID      `json:"user_ids,omitempty"`
}

// AssigneeList converts the scalar UserIDs into the list form used by requests.
func (t Task) AssigneeList() []ID {
	if t.UserIDs == nil {
		return nil
	}
	return []ID{*t.UserIDs}
}

type Team struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AdminUser struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Role codes gate client-side navigation only.
type Role string

const (
	RoleAdmin  Role = "1"
	RoleMember Role = "2"
	RoleClient Role = "3"
)

func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleClient:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleMember:
		return "User"
	case RoleClient:
		return "Client"
	default:
		return string(r)
	}
}

// ParseRole accepts a wire code or a label like "admin".
func ParseRole(s string) (Role, bool) {
	for _, r := range []Role{RoleAdmin, RoleMember, RoleClient} {
		if s == string(r) || strings.EqualFold(s, r.Label()) {
			return r, true
		}
	}
	if strings.EqualFold(s, "member") {
		return RoleMember, true
	}
	return "", false
}

// Status codes are a wire contract with the server and must not change.
type Status string

const (
	StatusTodo       Status = "1"
	StatusInProgress Status = "2"
	StatusDone       Status = "3"
)

var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

func (s Status) Known() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "TODO"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusDone:
		return "DONE"
	default:
		return string(s)
	}
}

// ParseStatus accepts a wire code or a label like "in_progress".
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if s == string(st) || strings.EqualFold(s, st.Label()) {
			return st, true
		}
	}
	return "", false
}

type Priority string

const (
	PriorityLow    Priority = "1"
	PriorityMedium Priority = "2"
	PriorityHigh   Priority = "3"
)

func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return string(p)
	}
}

func ParsePriority(s string) (Priority, bool) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		if s == string(p) || strings.EqualFold(s, p.Label()) {
			return p, true
		}
	}
	return "", false
}
