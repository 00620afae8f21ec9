package mockserver

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/protomem/pmaster/internal/model"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type user struct {
	model.AdminUser
	password string
	phone    string
}

type task struct {
	model.Task
	assignees []model.ID
}

type module struct {
	model.Module
	tasks    map[model.ID]*task
	nextTask model.ID
}

type project struct {
	model.Project
	clientID     model.ID
	teamLeaderID model.ID
	members      []model.ID
	modules      map[model.ID]*module
	teams        map[model.ID]*model.Team
	nextModule   model.ID
	nextTeam     model.ID
}

// Store keeps the whole backend state in memory.
type Store struct {
	mu sync.RWMutex

	users    map[model.ID]*user
	userKeys map[string]model.ID
	tokens   map[string]model.ID
	projects map[model.ID]*project

	nextUser    model.ID
	nextProject model.ID
}

func NewStore() *Store {
	return &Store{
		users:       make(map[model.ID]*user),
		userKeys:    make(map[string]model.ID),
		tokens:      make(map[string]model.ID),
		projects:    make(map[model.ID]*project),
		nextUser:    1,
		nextProject: 1,
	}
}

func (s *Store) AddUser(name, email, phone, password string, role model.Role) model.ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addUserLocked(name, email, phone, password, role)
}

func (s *Store) addUserLocked(name, email, phone, password string, role model.Role) model.ID {
	id := s.nextUser
	s.nextUser++
	s.users[id] = &user{
		AdminUser: model.AdminUser{ID: id, Name: name, Email: email, Role: role},
		password:  password,
		phone:     phone,
	}
	return id
}

// Authenticate returns the login result with a fresh user key.
func (s *Store) Authenticate(email, password string) (model.LoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) && u.password == password {
			key := uuid.NewString()
			s.userKeys[key] = u.ID
			return model.LoginResult{
				UserID:       u.ID,
				UserKey:      key,
				Role:         u.Role,
				TempPassword: strings.HasPrefix(u.password, _tempPasswordPrefix),
			}, nil
		}
	}

	return model.LoginResult{}, model.ErrInvalidCredentials
}

func (s *Store) IssueToken(userKey string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.userKeys[userKey]
	if !ok {
		return "", model.ErrInvalidCredentials
	}
	token := uuid.NewString()
	s.tokens[token] = id
	return token, nil
}

func (s *Store) UserByToken(token string) (model.AdminUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.tokens[token]
	if !ok {
		return model.AdminUser{}, false
	}
	u, ok := s.users[id]
	if !ok {
		return model.AdminUser{}, false
	}
	return u.AdminUser, true
}

func (s *Store) Users() []model.AdminUser {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := maps.Keys(s.users)
	slices.Sort(ids)

	users := make([]model.AdminUser, 0, len(ids))
	for _, id := range ids {
		users = append(users, s.users[id].AdminUser)
	}
	return users
}

const _tempPasswordPrefix = "tmp-"

// CreateUser returns the generated temporary password.
func (s *Store) CreateUser(name, email, phone string, role model.Role) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return "", model.NewError("user", model.ErrExists)
		}
	}

	password := _tempPasswordPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	s.addUserLocked(name, email, phone, password, role)
	return password, nil
}

type NewProject struct {
	Name         string
	Description  string
	ClientID     model.ID
	TeamLeaderID model.ID
	Start        string
	End          string
}

// CreateProject reports false when the client or team leader is unknown.
func (s *Store) CreateProject(in NewProject) (model.ProjectID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[in.ClientID]; !ok {
		return "", false
	}
	if _, ok := s.users[in.TeamLeaderID]; !ok {
		return "", false
	}

	id := s.nextProject
	s.nextProject++
	s.projects[id] = &project{
		Project: model.Project{
			ID:          strconv.Itoa(id),
			Name:        in.Name,
			Description: in.Description,
			Start:       in.Start,
			End:         in.End,
		},
		clientID:     in.ClientID,
		teamLeaderID: in.TeamLeaderID,
		members:      []model.ID{in.TeamLeaderID},
		modules:      make(map[model.ID]*module),
		teams:        make(map[model.ID]*model.Team),
		nextModule:   1,
		nextTeam:     1,
	}
	return strconv.Itoa(id), true
}

func (s *Store) Projects() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := maps.Keys(s.projects)
	slices.Sort(ids)

	projects := make([]model.Project, 0, len(ids))
	for _, id := range ids {
		projects = append(projects, s.projects[id].Project)
	}
	return projects
}

func (s *Store) DeleteProject(projectID model.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.projectLocked(projectID)
	if err != nil {
		return err
	}
	delete(s.projects, p.intID())
	return nil
}

func (s *Store) Members(projectID model.ProjectID) ([]model.ProjectMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.projectLocked(projectID)
	if err != nil {
		return nil, err
	}

	members := make([]model.ProjectMember, 0, len(p.members))
	for _, id := range p.members {
		if u, ok := s.users[id]; ok {
			members = append(members, model.ProjectMember{ID: id, Name: u.Name})
		}
	}
	return members, nil
}

func (s *Store) AddMember(projectID model.ProjectID, userID model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.projectLocked(projectID)
	if err != nil {
		return err
	}
	if _, ok := s.users[userID]; !ok {
		return model.NewError("user", model.ErrNotFound)
	}
	if slices.Contains(p.members, userID) {
		return model.NewError("member", model.ErrExists)
	}
	p.members = append(p.members, userID)
	return nil
}

func (s *Store) Modules(projectID model.ProjectID) ([]model.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.projectLocked(projectID)
	if err != nil {
		return nil, err
	}

	ids := maps.Keys(p.modules)
	slices.Sort(ids)

	modules := make([]model.Module, 0, len(ids))
	for _, id := range ids {
		modules = append(modules, p.modules[id].Module)
	}
	return modules, nil
}

func (s *Store) CreateModule(projectID model.ProjectID, m model.Module) (model.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.projectLocked(projectID)
	if err != nil {
		return 0, err
	}

	m.ID = p.nextModule
	p.nextModule++
	p.modules[m.ID] = &module{Module: m, tasks: make(map[model.ID]*task), nextTask: 1}
	return m.ID, nil
}

func (s *Store) Tasks(projectID model.ProjectID, moduleID string) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := s.moduleLocked(projectID, moduleID)
	if err != nil {
		return nil, err
	}

	ids := maps.Keys(m.tasks)
	slices.Sort(ids)

	tasks := make([]model.Task, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, m.tasks[id].readForm())
	}
	return tasks, nil
}

func (s *Store) CreateTask(projectID model.ProjectID, moduleID string, t model.Task, assignees []model.ID) (model.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.moduleLocked(projectID, moduleID)
	if err != nil {
		return 0, err
	}

	t.ID = m.nextTask
	m.nextTask++
	m.tasks[t.ID] = &task{Task: t, assignees: slices.Clone(assignees)}
	return t.ID, nil
}

// ReplaceTask overwrites every field of an existing task.
func (s *Store) ReplaceTask(projectID model.ProjectID, moduleID string, t model.Task, assignees []model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.moduleLocked(projectID, moduleID)
	if err != nil {
		return err
	}
	if _, ok := m.tasks[t.ID]; !ok {
		return model.NewError("task", model.ErrNotFound)
	}
	m.tasks[t.ID] = &task{Task: t, assignees: slices.Clone(assignees)}
	return nil
}

func (s *Store) RemoveTask(projectID model.ProjectID, moduleID string, taskID model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.moduleLocked(projectID, moduleID)
	if err != nil {
		return err
	}
	if _, ok := m.tasks[taskID]; !ok {
		return model.NewError("task", model.ErrNotFound)
	}
	delete(m.tasks, taskID)
	return nil
}

func (s *Store) Teams(projectID model.ProjectID) ([]model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.projectLocked(projectID)
	if err != nil {
		return nil, err
	}

	ids := maps.Keys(p.teams)
	slices.Sort(ids)

	teams := make([]model.Team, 0, len(ids))
	for _, id := range ids {
		teams = append(teams, *p.teams[id])
	}
	return teams, nil
}

func (s *Store) CreateTeam(projectID model.ProjectID, name, description string) (model.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.projectLocked(projectID)
	if err != nil {
		return 0, err
	}

	id := p.nextTeam
	p.nextTeam++
	p.teams[id] = &model.Team{ID: id, Name: name, Description: description}
	return id, nil
}

func (s *Store) UpdateTeam(projectID model.ProjectID, team model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.projectLocked(projectID)
	if err != nil {
		return err
	}
	if _, ok := p.teams[team.ID]; !ok {
		return model.NewError("team", model.ErrNotFound)
	}
	p.teams[team.ID] = &team
	return nil
}

func (s *Store) RemoveTeam(projectID model.ProjectID, teamID model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.projectLocked(projectID)
	if err != nil {
		return err
	}
	if _, ok := p.teams[teamID]; !ok {
		return model.NewError("team", model.ErrNotFound)
	}
	delete(p.teams, teamID)
	return nil
}

func (s *Store) projectLocked(projectID model.ProjectID) (*project, error) {
	id, err := strconv.Atoi(strings.TrimSpace(projectID))
	if err != nil {
		return nil, model.NewError("project", model.ErrNotFound)
	}
	p, ok := s.projects[id]
	if !ok {
		return nil, model.NewError("project", model.ErrNotFound)
	}
	return p, nil
}

func (s *Store) moduleLocked(projectID model.ProjectID, moduleID string) (*module, error) {
	p, err := s.projectLocked(projectID)
	if err != nil {
		return nil, err
	}
	id, err := strconv.Atoi(strings.TrimSpace(moduleID))
	if err != nil {
		return nil, model.NewError("module", model.ErrNotFound)
	}
	m, ok := p.modules[id]
	if !ok {
		return nil, model.NewError("module", model.ErrNotFound)
	}
	return m, nil
}

func (p *project) intID() model.ID {
	id, _ := strconv.Atoi(p.ID)
	return id
}

// readForm reports only the first assignee, as the real backend does.
func (t *task) readForm() model.Task {
	out := t.Task
	out.UserIDs = nil
	if len(t.assignees) > 0 {
		first := t.assignees[0]
		out.UserIDs = &first
	}
	return out
}
