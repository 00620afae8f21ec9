package api

import (
	"context"
	"net/http"

	"github.com/protomem/pmaster/internal/model"
	"github.com/protomem/pmaster/internal/validator"
)

type CreateModuleRequest struct {
	ProjectID   model.ProjectID `json:"project_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    model.Priority  `json:"priority"`
	Status      model.Status    `json:"status"`
}

type CreateTaskRequest struct {
	ProjectID   model.ProjectID `json:"project_id"`
	ModuleID    string          `json:"module_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    model.Priority  `json:"priority"`
	Status      model.Status    `json:"status"`
	UserIDs     []model.ID      `json:"user_ids,omitempty"`
}

// UpdateTaskRequest replaces every field of the task. Send the unchanged
// fields too.
type UpdateTaskRequest struct {
	ProjectID   model.ProjectID `json:"project_id"`
	ModuleID    string          `json:"module_id"`
	TaskID      model.ID        `json:"task_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    model.Priority  `json:"priority"`
	Status      model.Status    `json:"status"`
	UserIDs     []model.ID      `json:"user_ids,omitempty"`
}

type RemoveTaskRequest struct {
	ProjectID model.ProjectID `json:"project_id"`
	ModuleID  string          `json:"module_id"`
	TaskID    model.ID        `json:"task_id"`
}

func (c *Client) ListModules(ctx context.Context, projectID model.ProjectID) ([]model.Module, error) {
	const op = "list modules"

	if !validator.NotBlank(projectID) {
		return nil, invalidMessage(op, "project id cannot be blank")
	}

	var res struct {
		Modules []model.Module `json:"modules"`
	}
	err := c.do(ctx, call{
		op:      op,
		method:  http.MethodGet,
		path:    "project/getModules",
		headers: map[string]string{"project_id": projectID},
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Modules, nil
}

func (c *Client) CreateModule(ctx context.Context, req CreateModuleRequest) (string, error) {
	const op = "create module"

	var v validator.Validator
	v.CheckField(validator.NotBlank(req.ProjectID), "project_id", "cannot be blank")
	v.CheckField(validator.NotBlank(req.Title), "title", "cannot be blank")
	v.CheckField(validator.NotBlank(req.Description), "description", "cannot be blank")
	if v.HasErrors() {
		return "", invalid(op, &v)
	}

	var res messageResponse
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "project/createModule",
		body:   req,
	}, &res)
	return res.Message, err
}

func (c *Client) ListTasks(ctx context.Context, projectID model.ProjectID, moduleID string) ([]model.Task, error) {
	const op = "list tasks"

	var v validator.Validator
	v.CheckField(validator.NotBlank(projectID), "project_id", "cannot be blank")
	v.CheckField(validator.NotBlank(moduleID), "module_id", "cannot be blank")
	if v.HasErrors() {
		return nil, invalid(op, &v)
	}

	var res struct {
		Tasks []model.Task `json:"tasks"`
	}
	err := c.do(ctx, call{
		op:      op,
		method:  http.MethodGet,
		path:    "project/getTasks",
		headers: map[string]string{"project_id": projectID, "module_id": moduleID},
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Tasks, nil
}

// GetTask has no endpoint of its own; it lists the module's tasks and picks one.
func (c *Client) GetTask(ctx context.Context, projectID model.ProjectID, moduleID string, taskID model.ID) (model.Task, error) {
	tasks, err := c.ListTasks(ctx, projectID, moduleID)
	if err != nil {
		return model.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return model.Task{}, &Error{Op: "get task", Kind: KindNotFound, Err: model.ErrTaskNotFound}
}

func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (string, error) {
	const op = "create task"

	var v validator.Validator
	validateTaskFields(&v, req.ProjectID, req.ModuleID, req.Title, req.Priority, req.Status)
	if v.HasErrors() {
		return "", invalid(op, &v)
	}

	var res messageResponse
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "project/createTask",
		body:   req,
	}, &res)
	return res.Message, err
}

func (c *Client) UpdateTask(ctx context.Context, req UpdateTaskRequest) (string, error) {
	const op = "update task"

	var v validator.Validator
	validateTaskFields(&v, req.ProjectID, req.ModuleID, req.Title, req.Priority, req.Status)
	if v.HasErrors() {
		return "", invalid(op, &v)
	}

	var res messageResponse
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "project/updateTask",
		body:   req,
	}, &res)
	return res.Message, err
}

// SetTaskStatus resends task with only the status changed.
func (c *Client) SetTaskStatus(ctx context.Context, projectID model.ProjectID, moduleID string, task model.Task, status model.Status) (string, error) {
	return c.UpdateTask(ctx, UpdateRequestFor(projectID, moduleID, task, status))
}

// UpdateRequestFor builds the full-replace request for task with a new status.
// The scalar user_ids of the read form becomes a one element list.
func UpdateRequestFor(projectID model.ProjectID, moduleID string, task model.Task, status model.Status) UpdateTaskRequest {
	return UpdateTaskRequest{
		ProjectID:   projectID,
		ModuleID:    moduleID,
		TaskID:      task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      status,
		UserIDs:     task.AssigneeList(),
	}
}

func (c *Client) RemoveTask(ctx context.Context, req RemoveTaskRequest) (string, error) {
	const op = "remove task"

	var v validator.Validator
	v.CheckField(validator.NotBlank(req.ProjectID), "project_id", "cannot be blank")
	v.CheckField(validator.NotBlank(req.ModuleID), "module_id", "cannot be blank")
	if v.HasErrors() {
		return "", invalid(op, &v)
	}

	var res messageResponse
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "project/removeTask",
		body:   req,
	}, &res)
	return res.Message, err
}

func validateTaskFields(v *validator.Validator, projectID model.ProjectID, moduleID, title string, priority model.Priority, status model.Status) {
	v.CheckField(validator.NotBlank(projectID), "project_id", "cannot be blank")
	v.CheckField(validator.NotBlank(moduleID), "module_id", "select a module")
	v.CheckField(validator.NotBlank(title), "title", "cannot be blank")
	v.CheckField(validator.NotBlank(string(priority)), "priority", "cannot be blank")
	v.CheckField(validator.NotBlank(string(status)), "status", "cannot be blank")
}
