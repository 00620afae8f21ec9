// Package access decides which operations and screens a role may reach. It
// drives navigation and display only; the server enforces authorization.
package access

import "github.com/protomem/pmaster/internal/model"

type Capability int

const (
	ViewProjects Capability = iota
	ViewBoard
	ViewTaskDetail
	UpdateTaskStatus
	CreateTasks
	CreateModules
	ManageProjects
	ManageUsers
	ManageTeams
)

var _capabilityNames = map[Capability]string{
	ViewProjects:     "view-projects",
	ViewBoard:        "view-board",
	ViewTaskDetail:   "view-task-detail",
	UpdateTaskStatus: "update-task-status",
	CreateTasks:      "create-tasks",
	CreateModules:    "create-modules",
	ManageProjects:   "manage-projects",
	ManageUsers:      "manage-users",
	ManageTeams:      "manage-teams",
}

func (c Capability) String() string {
	if name, ok := _capabilityNames[c]; ok {
		return name
	}
	return "unknown"
}

// AdminOnly reports whether only RoleAdmin holds c.
func (c Capability) AdminOnly() bool {
	switch c {
	case ManageProjects, ManageUsers, ManageTeams:
		return true
	}
	return false
}

var _allCapabilities = []Capability{
	ViewProjects,
	ViewBoard,
	ViewTaskDetail,
	UpdateTaskStatus,
	CreateTasks,
	CreateModules,
	ManageProjects,
	ManageUsers,
	ManageTeams,
}

// Allowed reports whether role holds capability. Unknown roles get the reduced
// set.
func Allowed(role model.Role, capability Capability) bool {
	if _, ok := _capabilityNames[capability]; !ok {
		return false
	}
	if capability.AdminOnly() {
		return role.IsAdmin()
	}
	return true
}

func Capabilities(role model.Role) []Capability {
	caps := make([]Capability, 0, len(_allCapabilities))
	for _, c := range _allCapabilities {
		if Allowed(role, c) {
			caps = append(caps, c)
		}
	}
	return caps
}

type Destination struct {
	Name      string
	Label     string
	AdminOnly bool
}

var (
	Home              = Destination{Name: "home", Label: "Home"}
	ProjectManagement = Destination{Name: "project-management", Label: "Project management", AdminOnly: true}
	AddProject        = Destination{Name: "add-project", Label: "Add project", AdminOnly: true}
	Profile           = Destination{Name: "profile", Label: "Profile"}
)

var _destinations = []Destination{Home, ProjectManagement, AddProject, Profile}

// Destinations lists the navigation entries visible to role, in menu order.
func Destinations(role model.Role) []Destination {
	out := make([]Destination, 0, len(_destinations))
	for _, d := range _destinations {
		if d.AdminOnly && !role.IsAdmin() {
			continue
		}
		out = append(out, d)
	}
	return out
}
