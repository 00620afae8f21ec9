// Package board projects a module's tasks onto kanban columns.
package board

import (
	"context"
	"log/slog"

	"github.com/protomem/pmaster/internal/model"
	"github.com/protomem/pmaster/internal/state"
)

type Column struct {
	Status model.Status `json:"status"`
	Label  string       `json:"label"`
	Tasks  []model.Task `json:"tasks"`
}

type Board struct {
	Project  model.Project `json:"project"`
	ModuleID string        `json:"moduleId"`
	Columns  []Column      `json:"columns"`
}

// Build groups tasks by status in TODO, IN_PROGRESS, DONE order. Server order
// is kept inside a column and unknown statuses land in TODO.
func Build(project model.Project, moduleID string, tasks []model.Task) Board {
	b := Board{
		Project:  project,
		ModuleID: moduleID,
		Columns:  make([]Column, len(model.Statuses)),
	}

	index := make(map[model.Status]int, len(model.Statuses))
	for i, st := range model.Statuses {
		b.Columns[i] = Column{Status: st, Label: st.Label(), Tasks: []model.Task{}}
		index[st] = i
	}

	for _, t := range tasks {
		i, ok := index[t.Status]
		if !ok {
			i = index[model.StatusTodo]
		}
		b.Columns[i].Tasks = append(b.Columns[i].Tasks, t)
	}

	return b
}

func (b Board) Column(status model.Status) (Column, bool) {
	for _, c := range b.Columns {
		if c.Status == status {
			return c, true
		}
	}
	return Column{}, false
}

type TaskLister interface {
	ListTasks(ctx context.Context, projectID model.ProjectID, moduleID string) ([]model.Task, error)
}

// Loader fetches boards into a slot so that switching projects quickly never
// lets an older response overwrite a newer one.
type Loader struct {
	logger *slog.Logger
	api    TaskLister
	slot   state.Slot[Board]
}

func NewLoader(logger *slog.Logger, api TaskLister) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger.With("module", "board"),
		api:    api,
	}
}

func (l *Loader) Slot() *state.Slot[Board] {
	return &l.slot
}

// Load fetches the module's tasks and resolves the slot. It reports the
// result the slot holds afterwards.
func (l *Loader) Load(ctx context.Context, project model.Project, moduleID string) state.Result[Board] {
	ctx, ticket := l.slot.Begin(ctx)

	tasks, err := l.api.ListTasks(ctx, project.ID, moduleID)
	var b Board
	if err == nil {
		b = Build(project, moduleID, tasks)
	}

	if !l.slot.Resolve(ticket, b, err) {
		l.logger.Debug("stale board response dropped", "projectId", project.ID, "moduleId", moduleID)
	}
	return l.slot.Current()
}

// Leave drops whatever is in flight.
func (l *Loader) Leave() {
	l.slot.Reset()
}
