// Package collabotest provides in-memory doubles for the collabo workflow's
// collaborators so services and handlers can be tested without Postgres.
package collabotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
)

type state struct {
	projects      []domain.Project
	roles         []domain.Role
	workspaces    []domain.Workspace
	messages      []domain.Message
	tasks         []domain.Task
	files         []domain.File
	payments      []domain.Payment
	notifications []domain.Notification
}

func (s state) clone() state {
	c := state{
		projects:      append([]domain.Project(nil), s.projects...),
		roles:         append([]domain.Role(nil), s.roles...),
		messages:      append([]domain.Message(nil), s.messages...),
		tasks:         append([]domain.Task(nil), s.tasks...),
		files:         append([]domain.File(nil), s.files...),
		payments:      append([]domain.Payment(nil), s.payments...),
		notifications: append([]domain.Notification(nil), s.notifications...),
	}
	for _, w := range s.workspaces {
		c.workspaces = append(c.workspaces, copyWorkspace(w))
	}
	return c
}

// Store is an in-memory domain.Store. Strict makes Atomic roll back every
// write of a failed unit; otherwise writes made before a failure are kept.
type Store struct {
	Strict bool

	txMu sync.Mutex
	mu   sync.Mutex
	st   state

	users          map[string]domain.UserSummary
	profiles       []domain.Profile
	failures       map[string]error
	notifyFailures map[string]error
}

func NewStore(strict bool) *Store {
	return &Store{
		Strict:         strict,
		users:          map[string]domain.UserSummary{},
		failures:       map[string]error{},
		notifyFailures: map[string]error{},
	}
}

// FailOn makes every later call of the named method return err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

// FailNotificationsFor makes InsertNotification return err for userID only.
func (s *Store) FailNotificationsFor(userID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyFailures[userID] = err
}

func (s *Store) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]error{}
	s.notifyFailures = map[string]error{}
}

func (s *Store) fail(method string) error {
	return s.failures[method]
}

func (s *Store) AddUser(u domain.UserSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) AddProfile(userID string, skills ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append(s.profiles, domain.Profile{UserID: userID, Skills: skills})
}

func (s *Store) Atomic(ctx context.Context, fn func(tx domain.Repository) error) error {
	if !s.Strict {
		return fn(s)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Inspection helpers used by tests.

func (s *Store) Projects() []domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Project(nil), s.st.projects...)
}

func (s *Store) Roles() []domain.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Role(nil), s.st.roles...)
}

func (s *Store) Workspaces() []domain.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Workspace, 0, len(s.st.workspaces))
	for _, w := range s.st.workspaces {
		out = append(out, copyWorkspace(w))
	}
	return out
}

func (s *Store) Payments() []domain.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Payment(nil), s.st.payments...)
}

func (s *Store) Files() []domain.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.File(nil), s.st.files...)
}

func (s *Store) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Notification(nil), s.st.notifications...)
}

// Projects

func (s *Store) InsertProject(ctx context.Context, p *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertProject"); err != nil {
		return err
	}
	cp := *p
	cp.WorkspaceID = ""
	s.st.projects = append(s.st.projects, cp)
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetProject"); err != nil {
		return nil, err
	}
	return s.getProject(id)
}

func (s *Store) getProject(id string) (*domain.Project, error) {
	for _, p := range s.st.projects {
		if p.ID == id {
			cp := s.withWorkspace(p)
			return &cp, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (s *Store) withWorkspace(p domain.Project) domain.Project {
	p.WorkspaceID = ""
	for _, w := range s.st.workspaces {
		if w.ProjectID == p.ID {
			p.WorkspaceID = w.ID
		}
	}
	return p
}

func (s *Store) ListProjectsByClient(ctx context.Context, clientID string) ([]domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListProjectsByClient"); err != nil {
		return nil, err
	}
	out := []domain.Project{}
	for i := len(s.st.projects) - 1; i >= 0; i-- {
		if p := s.st.projects[i]; p.ClientID == clientID {
			out = append(out, s.withWorkspace(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) SetProjectStatus(ctx context.Context, id string, status domain.ProjectStatus) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SetProjectStatus"); err != nil {
		return nil, err
	}
	for i := range s.st.projects {
		if s.st.projects[i].ID == id {
			s.st.projects[i].Status = status
			return s.getProject(id)
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (s *Store) ListProjectsWithoutWorkspace(ctx context.Context, createdBefore time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, p := range s.st.projects {
		if p.CreatedAt.Before(createdBefore) && s.withWorkspace(p).WorkspaceID == "" {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

// Roles

func (s *Store) InsertRoles(ctx context.Context, roles []domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertRoles"); err != nil {
		return err
	}
	s.st.roles = append(s.st.roles, roles...)
	return nil
}

func (s *Store) GetRole(ctx context.Context, id string) (*domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.st.roles {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (s *Store) ListRoles(ctx context.Context, projectID string, status domain.RoleStatus) ([]domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListRoles"); err != nil {
		return nil, err
	}
	out := []domain.Role{}
	for _, r := range s.st.roles {
		if r.ProjectID == projectID && (status == "" || r.Status == status) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ClaimRole(ctx context.Context, roleID, freelancerID string) (*domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ClaimRole"); err != nil {
		return nil, err
	}
	for i := range s.st.roles {
		r := &s.st.roles[i]
		if r.ID == roleID && r.Status == domain.RoleOpen {
			id := freelancerID
			r.FreelancerID = &id
			r.Status = domain.RoleFilled
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrRoleUnavailable
}

// Workspaces

func (s *Store) InsertWorkspace(ctx context.Context, w *domain.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertWorkspace"); err != nil {
		return err
	}
	for _, existing := range s.st.workspaces {
		if existing.ProjectID == w.ProjectID {
			return domain.ErrWorkspaceExists
		}
	}
	s.st.workspaces = append(s.st.workspaces, copyWorkspace(*w))
	return nil
}

func (s *Store) GetWorkspace(ctx context.Context, id string) (*domain.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.st.workspaces {
		if w.ID == id {
			cp := copyWorkspace(w)
			return &cp, nil
		}
	}
	return nil, domain.ErrWorkspaceNotFound
}

func (s *Store) GetWorkspaceByProject(ctx context.Context, projectID string) (*domain.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.st.workspaces {
		if w.ProjectID == projectID {
			cp := copyWorkspace(w)
			return &cp, nil
		}
	}
	return nil, domain.ErrWorkspaceNotFound
}

func (s *Store) AddRoleToChannel(ctx context.Context, projectID, channel, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("AddRoleToChannel"); err != nil {
		return err
	}
	for i := range s.st.workspaces {
		w := &s.st.workspaces[i]
		if w.ProjectID != projectID {
			continue
		}
		if ch := w.Channel(channel); ch != nil && !ch.HasRole(roleID) {
			ch.RoleIDs = append(ch.RoleIDs, roleID)
		}
	}
	return nil
}

// Collaboration

func (s *Store) InsertMessage(ctx context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertMessage"); err != nil {
		return err
	}
	s.st.messages = append(s.st.messages, *m)
	return nil
}

func (s *Store) ListMessages(ctx context.Context, workspaceID, channel string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Message{}
	for _, m := range s.st.messages {
		if m.WorkspaceID == workspaceID && m.ChannelName == channel {
			m.Sender = s.summary(m.SenderID)
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) InsertTask(ctx context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertTask"); err != nil {
		return err
	}
	s.st.tasks = append(s.st.tasks, *t)
	return nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.st.tasks {
		if t.ID == id {
			cp := s.withAssignee(t)
			return &cp, nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (s *Store) UpdateTask(ctx context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateTask"); err != nil {
		return err
	}
	for i := range s.st.tasks {
		if s.st.tasks[i].ID == t.ID {
			s.st.tasks[i] = *t
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (s *Store) ListTasks(ctx context.Context, workspaceID string) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Task{}
	for i := len(s.st.tasks) - 1; i >= 0; i-- {
		if t := s.st.tasks[i]; t.WorkspaceID == workspaceID {
			out = append(out, s.withAssignee(t))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) InsertFile(ctx context.Context, f *domain.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertFile"); err != nil {
		return err
	}
	s.st.files = append(s.st.files, *f)
	return nil
}

func (s *Store) ListFiles(ctx context.Context, workspaceID string) ([]domain.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.File{}
	for i := len(s.st.files) - 1; i >= 0; i-- {
		if f := s.st.files[i]; f.WorkspaceID == workspaceID {
			f.Uploader = s.summary(f.UploaderID)
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Payments

func (s *Store) InsertPayment(ctx context.Context, p *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertPayment"); err != nil {
		return err
	}
	s.st.payments = append(s.st.payments, *p)
	return nil
}

func (s *Store) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.st.payments {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (s *Store) SetPaymentReference(ctx context.Context, id, reference string) error {
	return s.updatePayment(id, func(p *domain.Payment) { p.GatewayReference = reference })
}

func (s *Store) SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	return s.updatePayment(id, func(p *domain.Payment) { p.Status = status })
}

func (s *Store) updatePayment(id string, fn func(p *domain.Payment)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.payments {
		if s.st.payments[i].ID == id {
			fn(&s.st.payments[i])
			return nil
		}
	}
	return domain.ErrPaymentNotFound
}

func (s *Store) HasSuccessfulPayment(ctx context.Context, projectID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.st.payments {
		if p.CollaboProjectID == projectID && p.Status == domain.PaymentSuccessful {
			return true, nil
		}
	}
	return false, nil
}

// Directory

func (s *Store) GetUser(ctx context.Context, id string) (*domain.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) FindProfilesBySkills(ctx context.Context, skills []string, limit int) ([]domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("FindProfilesBySkills"); err != nil {
		return nil, err
	}
	var out []domain.Profile
	for _, p := range s.profiles {
		if len(out) >= limit {
			break
		}
		if intersects(p.Skills, skills) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) InsertNotification(ctx context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertNotification"); err != nil {
		return err
	}
	if err := s.notifyFailures[n.UserID]; err != nil {
		return err
	}
	for _, existing := range s.st.notifications {
		if existing.ID == n.ID {
			return nil
		}
	}
	s.st.notifications = append(s.st.notifications, *n)
	return nil
}

// summary mirrors the users left join of the Postgres store.
func (s *Store) summary(userID string) *domain.UserSummary {
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	return &domain.UserSummary{ID: u.ID, DisplayName: u.DisplayName, PhotoURL: u.PhotoURL}
}

func (s *Store) withAssignee(t domain.Task) domain.Task {
	t.Assignee = nil
	if t.AssigneeID != nil {
		t.Assignee = s.summary(*t.AssigneeID)
	}
	return t
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func copyWorkspace(w domain.Workspace) domain.Workspace {
	chs := make([]domain.Channel, len(w.Channels))
	for i, ch := range w.Channels {
		chs[i] = domain.Channel{Name: ch.Name, RoleIDs: append([]string{}, ch.RoleIDs...)}
	}
	w.Channels = chs
	return w
}

var _ domain.Store = (*Store)(nil)
