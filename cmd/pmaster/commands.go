package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"

	"github.com/protomem/pmaster/internal/access"
	"github.com/protomem/pmaster/internal/api"
	"github.com/protomem/pmaster/internal/board"
	"github.com/protomem/pmaster/internal/model"
	"github.com/protomem/pmaster/internal/state"
	"github.com/protomem/pmaster/internal/validator"
)

type action func(ctx context.Context, app *application) (any, error)

type command struct {
	name    string
	summary string
	needs   access.Capability
	// bind registers the command flags and returns the action to run once
	// they are parsed, along with the names of required flags.
	bind func(fs *flag.FlagSet) (action, []string)
}

var _commands = []command{
	{"whoami", "show the signed in role and what it unlocks", access.ViewProjects, cmdWhoami},
	{"projects", "list projects", access.ViewProjects, cmdProjects},
	{"create-project", "create a project", access.ManageProjects, cmdCreateProject},
	{"delete-project", "delete a project", access.ManageProjects, cmdDeleteProject},
	{"members", "list project members", access.ViewProjects, cmdMembers},
	{"add-member", "add a user to a project", access.ManageProjects, cmdAddMember},
	{"modules", "list project modules", access.ViewBoard, cmdModules},
	{"create-module", "create a module", access.CreateModules, cmdCreateModule},
	{"tasks", "list module tasks", access.ViewBoard, cmdTasks},
	{"board", "show module tasks as kanban columns", access.ViewBoard, cmdBoard},
	{"create-task", "create a task", access.CreateTasks, cmdCreateTask},
	{"set-status", "move a task to another column", access.UpdateTaskStatus, cmdSetStatus},
	{"remove-task", "remove a task", access.CreateTasks, cmdRemoveTask},
	{"teams", "list project teams", access.ViewProjects, cmdTeams},
	{"create-team", "create a team", access.ManageTeams, cmdCreateTeam},
	{"update-team", "rename or describe a team", access.ManageTeams, cmdUpdateTeam},
	{"remove-team", "remove a team", access.ManageTeams, cmdRemoveTeam},
	{"users", "list users", access.ManageUsers, cmdUsers},
	{"create-user", "create a user with a temporary password", access.ManageUsers, cmdCreateUser},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range _commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// execute parses the command flags, signs in, checks the role against the
// command and prints the result as JSON. A help request is not an error.
func (app *application) execute(ctx context.Context, cmd command, args []string) error {
	fs := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	run, required := cmd.bind(fs)
	if err := parse(fs, args, required...); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	login, _, err := app.client.SignIn(ctx, app.config.email, app.config.password)
	if err != nil {
		return err
	}
	app.login = login
	defer app.client.SignOut()

	if login.TempPassword {
		app.logger.Warn("account uses a temporary password")
	}

	if !access.Allowed(login.Role, cmd.needs) {
		return fmt.Errorf("%s is not available for role %s", cmd.name, login.Role.Label())
	}

	out, err := run(ctx, app)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func parse(fs *flag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var v validator.Validator
	for _, name := range required {
		v.CheckField(set[name], "-"+name, "flag is required")
	}
	return v.Err()
}

func parseStatus(s string) (model.Status, error) {
	st, ok := model.ParseStatus(s)
	if !ok {
		return "", fmt.Errorf("unknown status %q (use todo, in_progress, done or 1-3)", s)
	}
	return st, nil
}

func parsePriority(s string) (model.Priority, error) {
	p, ok := model.ParsePriority(s)
	if !ok {
		return "", fmt.Errorf("unknown priority %q (use low, medium, high or 1-3)", s)
	}
	return p, nil
}

type message struct {
	Message string `json:"message"`
}

func cmdWhoami(_ *flag.FlagSet) (action, []string) {
	return func(_ context.Context, app *application) (any, error) {
		caps := access.Capabilities(app.login.Role)
		names := make([]string, 0, len(caps))
		for _, c := range caps {
			names = append(names, c.String())
		}

		menu := access.Destinations(app.login.Role)
		destinations := make([]string, 0, len(menu))
		for _, d := range menu {
			destinations = append(destinations, d.Label)
		}

		return struct {
			UserID       model.ID   `json:"userId"`
			Role         model.Role `json:"role"`
			RoleLabel    string     `json:"roleLabel"`
			TempPassword bool       `json:"tempPassword"`
			Capabilities []string   `json:"capabilities"`
			Destinations []string   `json:"destinations"`
		}{
			UserID:       app.login.UserID,
			Role:         app.login.Role,
			RoleLabel:    app.login.Role.Label(),
			TempPassword: app.login.TempPassword,
			Capabilities: names,
			Destinations: destinations,
		}, nil
	}, nil
}

func cmdProjects(_ *flag.FlagSet) (action, []string) {
	return func(ctx context.Context, app *application) (any, error) {
		return app.client.ListProjects(ctx)
	}, nil
}

func cmdCreateProject(fs *flag.FlagSet) (action, []string) {
	var req api.CreateProjectRequest
	fs.StringVar(&req.Name, "name", "", "project name")
	fs.StringVar(&req.Description, "description", "", "project description")
	fs.IntVar(&req.ClientID, "client", 0, "client user id")
	fs.IntVar(&req.TeamLeaderID, "leader", 0, "team leader user id")
	fs.StringVar(&req.Start, "start", "", "start date, YYYY-MM-DD")
	fs.StringVar(&req.End, "end", "", "end date, YYYY-MM-DD")
	return func(ctx context.Context, app *application) (any, error) {
		id, err := app.client.CreateProject(ctx, req)
		if err != nil {
			return nil, err
		}
		return struct {
			ProjectID model.ProjectID `json:"projectId"`
		}{id}, nil
	}, []string{"client", "leader"}
}

func cmdDeleteProject(fs *flag.FlagSet) (action, []string) {
	projectID := fs.String("project", "", "project id")
	return func(ctx context.Context, app *application) (any, error) {
		msg, err := app.client.DeleteProject(ctx, *projectID)
		return message{msg}, err
	}, nil
}

func cmdMembers(fs *flag.FlagSet) (action, []string) {
	projectID := fs.String("project", "", "project id")
	return func(ctx context.Context, app *application) (any, error) {
		return app.client.ProjectMembers(ctx, *projectID)
	}, nil
}

func cmdAddMember(fs *flag.FlagSet) (action, []string) {
	projectID := fs.String("project", "", "project id")
	userID := fs.Int("user", 0, "user id")
	return func(ctx context.Context, app *application) (any, error) {
		msg, err := app.client.AddProjectMember(ctx, *projectID, *userID)
		return message{msg}, err
	}, []string{"user"}
}

func cmdModules(fs *flag.FlagSet) (action, []string) {
	projectID := fs.String("project", "", "project id")
	return func(ctx context.Context, app *application) (any, error) {
		return app.client.ListModules(ctx, *projectID)
	}, nil
}

func cmdCreateModule(fs *flag.FlagSet) (action, []string) {
	var req api.CreateModuleRequest
	fs.StringVar(&req.ProjectID, "project", "", "project id")
	fs.StringVar(&req.Title, "title", "", "module title")
	fs.StringVar(&req.Description, "description", "", "module description")
	priority := fs.String("priority", "medium", "low, medium or high")
	status := fs.String("status", "todo", "todo, in_progress or done")
	return func(ctx context.Context, app *application) (any, error) {
		var err error
		if req.Priority, err = parsePriority(*priority); err != nil {
			return nil, err
		}
		if req.Status, err = parseStatus(*status); err != nil {
			return nil, err
		}

		msg, err := app.client.CreateModule(ctx, req)
		return message{msg}, err
	}, nil
}

func cmdTasks(fs *flag.FlagSet) (action, []string) {
	projectID := fs.String("project", "", "project id")
	moduleID := fs.String("module", "", "module id")
	return func(ctx context.Context, app *application) (any, error) {
		return app.client.ListTasks(ctx, *projectID, *moduleID)
	}, nil
}

func cmdBoard(fs *flag.FlagSet) (action, []string) {
	projectID := fs.String("project", "", "project id")
	moduleID := fs.String("module", "", "module id")
	return func(ctx context.Context, app *application) (any, error) {
		project := model.Project{ID: *projectID}
		projects, err := app.client.ListProjects(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range projects {
			if p.ID == *projectID {
				project = p
				break
			}
		}

		res := board.NewLoader(app.logger, app.client).Load(ctx, project, *moduleID)
		if res.Phase == state.Error {
			return nil, res.Err
		}
		return res.Value, nil
	}, nil
}

func cmdCreateTask(fs *flag.FlagSet) (action, []string) {
	var req api.CreateTaskRequest
	fs.StringVar(&req.ProjectID, "project", "", "project id")
	fs.StringVar(&req.ModuleID, "module", "", "module id")
	fs.StringVar(&req.Title, "title", "", "task title")
	fs.StringVar(&req.Description, "description", "", "task description")
	priority := fs.String("priority", "", "low, medium or high")
	status := fs.String("status", "todo", "todo, in_progress or done")
	users := fs.String("users", "", "comma separated assignee ids")
	return func(ctx context.Context, app *application) (any, error) {
		var err error
		if *priority != "" {
			if req.Priority, err = parsePriority(*priority); err != nil {
				return nil, err
			}
		}
		if req.Status, err = parseStatus(*status); err != nil {
			return nil, err
		}
		if req.UserIDs, err = validator.ParseIDList(*users); err != nil {
			return nil, err
		}

		msg, err := app.client.CreateTask(ctx, req)
		return message{msg}, err
	}, nil
}

func cmdSetStatus(fs *flag.FlagSet) (action, []string) {
	projectID := fs.String("project", "", "project id")
	moduleID := fs.String("module", "", "module id")
	taskID := fs.Int("task", 0, "task id")
	status := fs.String("status", "", "todo, in_progress or done")
	return func(ctx context.Context, app *application) (any, error) {
		st, err := parseStatus(*status)
		if err != nil {
			return nil, err
		}

		task, err := app.client.GetTask(ctx, *projectID, *moduleID, *taskID)
		if err != nil {
			return nil, err
		}

		msg, err := app.client.SetTaskStatus(ctx, *projectID, *moduleID, task, st)
		return message{msg}, err
	}, []string{"task", "status"}
}

func cmdRemoveTask(fs *flag.FlagSet) (action, []string) {
	var req api.RemoveTaskRequest
	fs.StringVar(&req.ProjectID, "project", "", "project id")
	fs.StringVar(&req.ModuleID, "module", "", "module id")
	fs.IntVar(&req.TaskID, "task", 0, "task id")
	return func(ctx context.Context, app *application) (any, error) {
		msg, err := app.client.RemoveTask(ctx, req)
		return message{msg}, err
	}, []string{"task"}
}

func cmdTeams(fs *flag.FlagSet) (action, []string) {
	projectID := fs.String("project", "", "project id")
	return func(ctx context.Context, app *application) (any, error) {
		return app.client.ListTeams(ctx, *projectID)
	}, nil
}

func cmdCreateTeam(fs *flag.FlagSet) (action, []string) {
	var req api.CreateTeamRequest
	fs.StringVar(&req.ProjectID, "project", "", "project id")
	fs.StringVar(&req.Name, "name", "", "team name")
	fs.StringVar(&req.Description, "description", "", "team description")
	return func(ctx context.Context, app *application) (any, error) {
		msg, err := app.client.CreateTeam(ctx, req)
		return message{msg}, err
	}, nil
}

func cmdUpdateTeam(fs *flag.FlagSet) (action, []string) {
	var req api.UpdateTeamRequest
	fs.StringVar(&req.ProjectID, "project", "", "project id")
	fs.IntVar(&req.TeamID, "team", 0, "team id")
	fs.StringVar(&req.Name, "name", "", "team name")
	fs.StringVar(&req.Description, "description", "", "team description")
	return func(ctx context.Context, app *application) (any, error) {
		msg, err := app.client.UpdateTeam(ctx, req)
		return message{msg}, err
	}, []string{"team"}
}

func cmdRemoveTeam(fs *flag.FlagSet) (action, []string) {
	var req api.RemoveTeamRequest
	fs.StringVar(&req.ProjectID, "project", "", "project id")
	fs.IntVar(&req.TeamID, "team", 0, "team id")
	return func(ctx context.Context, app *application) (any, error) {
		msg, err := app.client.RemoveTeam(ctx, req)
		return message{msg}, err
	}, []string{"team"}
}

func cmdUsers(_ *flag.FlagSet) (action, []string) {
	return func(ctx context.Context, app *application) (any, error) {
		return app.client.ListUsers(ctx)
	}, nil
}

func cmdCreateUser(fs *flag.FlagSet) (action, []string) {
	var req api.CreateUserRequest
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Phone, "phone", "", "phone number")
	role := fs.String("role", "", "admin, member or client")
	return func(ctx context.Context, app *application) (any, error) {
		r, ok := model.ParseRole(*role)
		if !ok {
			return nil, fmt.Errorf("unknown role %q (use admin, member, client or 1-3)", *role)
		}
		req.Role = r

		// The temporary password is printed once and cannot be fetched again.
		return app.client.CreateUser(ctx, req)
	}, []string{"role"}
}
