// Package store caches the API's users, tasks and assignments for one
// signed-in client and derives the views built on top of them.
//
// Every mutation invalidates the cache: after a successful API call the
// store refetches everything with Load instead of patching local state.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"task-tracker.com/task-tracker/pkg/client"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

var ErrNotLoggedIn = errors.New("not logged in")

// API is the subset of the HTTP client the store relies on.
type API interface {
	Login(ctx context.Context, username, password string) (*model.LoginResponse, error)
	Me(ctx context.Context, token string) (*model.PublicUser, error)
	Logout(ctx context.Context, token string) error
	ListTasks(ctx context.Context, token string) ([]model.Task, error)
	CreateTask(ctx context.Context, token, designation string) (*model.Task, error)
	DeleteTask(ctx context.Context, token, id string) error
	ListUsers(ctx context.Context, token string) ([]model.User, error)
	CreateUser(ctx context.Context, token, username, password string) (*model.User, error)
	DeleteUser(ctx context.Context, token, id string) error
	ChangePassword(ctx context.Context, token, userID, oldPassword, newPassword string) error
	ListUserTasks(ctx context.Context, token, userID string) ([]model.UserTaskDetails, error)
	ListAllUserTasks(ctx context.Context, token string) ([]model.UserTaskDetails, error)
	AssignTask(ctx context.Context, token, userID, taskID string) (*model.UserTask, error)
	UpdateUserTask(ctx context.Context, token, id string, update model.ProgressUpdate) (*model.UserTask, error)
	RemoveUserTask(ctx context.Context, token, id string) error
}

var _ API = (*client.Client)(nil)

// Snapshot is a consistent copy of the store's state.
type Snapshot struct {
	Ready       bool
	Identity    *model.PublicUser
	Users       []model.User
	Tasks       []model.Task
	Assignments []model.UserTask
	Err         error
}

type Store struct {
	api      API
	sessions SessionStore
	logger   logrus.FieldLogger
	now      func() time.Time

	mu          sync.RWMutex
	token       string
	identity    *model.PublicUser
	users       []model.User
	tasks       []model.Task
	assignments []model.UserTask
	ready       bool
	err         error
}

type Option func(*Store)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(api API, sessions SessionStore, opts ...Option) *Store {
	s := &Store{
		api:      api,
		sessions: sessions,
		logger:   logrus.StandardLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore picks up a persisted session, revalidates its token and loads
// data for it. Without a session the store is simply marked ready and
// empty. A token the server rejects is dropped together with the saved
// session; any other failure is kept in Err. Only a broken session store
// is returned as an error, so login and logout always stay reachable.
func (s *Store) Restore(ctx context.Context) error {
	sess, err := s.sessions.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if sess == nil {
		s.mu.Lock()
		s.ready = true
		s.mu.Unlock()
		return nil
	}

	user, err := s.api.Me(ctx, sess.Token)
	if client.IsStatus(err, http.StatusUnauthorized) {
		return s.dropSession(ctx, err)
	}

	s.mu.Lock()
	s.token = sess.Token
	if err == nil {
		s.identity = user
	} else {
		saved := sess.User
		s.identity = &saved
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.WithError(err).Warn("could not revalidate saved session")
		_ = s.failLoad(err)
		return nil
	}

	if err := s.Load(ctx); err != nil {
		if client.IsStatus(err, http.StatusUnauthorized) {
			return s.dropSession(ctx, err)
		}
		s.logger.WithError(err).Warn("initial load failed")
	}
	return nil
}

// dropSession forgets a session whose token the server no longer accepts.
func (s *Store) dropSession(ctx context.Context, cause error) error {
	s.logger.WithError(cause).Info("saved session rejected, clearing it")

	s.mu.Lock()
	s.token = ""
	s.identity = nil
	s.users = nil
	s.tasks = nil
	s.assignments = nil
	s.err = cause
	s.ready = true
	s.mu.Unlock()

	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) Login(ctx context.Context, username, password string) (*model.PublicUser, error) {
	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.setErr(err)
		return nil, err
	}

	if err := s.sessions.Save(ctx, Session{Token: resp.Token, User: resp.User}); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	user := resp.User
	s.mu.Lock()
	s.token = resp.Token
	s.identity = &user
	s.mu.Unlock()

	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout clears local state and the persisted session. The server-side
// revocation is best effort.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.token = ""
	s.identity = nil
	s.users = nil
	s.tasks = nil
	s.assignments = nil
	s.err = nil
	s.mu.Unlock()

	if token != "" {
		if err := s.api.Logout(ctx, token); err != nil {
			s.logger.WithError(err).Warn("server logout failed")
		}
	}

	return s.sessions.Clear(ctx)
}

// Load refetches tasks, assignments and users. Managers get every
// assignment, users their own. A failed users fetch leaves the user set
// empty rather than failing the load.
func (s *Store) Load(ctx context.Context) error {
	s.mu.RLock()
	token, identity := s.token, s.identity
	s.mu.RUnlock()

	if token == "" {
		return ErrNotLoggedIn
	}

	tasks, err := s.api.ListTasks(ctx, token)
	if err != nil {
		return s.failLoad(err)
	}

	var details []model.UserTaskDetails
	if identity != nil && isManager(identity.Role) {
		details, err = s.api.ListAllUserTasks(ctx, token)
	} else {
		details, err = s.api.ListUserTasks(ctx, token, "")
	}
	if err != nil {
		return s.failLoad(err)
	}

	users, err := s.api.ListUsers(ctx, token)
	if err != nil {
		s.logger.WithError(err).Debug("users unavailable, continuing without them")
		users = []model.User{}
	}

	assignments := make([]model.UserTask, 0, len(details))
	for _, d := range details {
		assignments = append(assignments, d.Assignment())
	}

	s.mu.Lock()
	s.tasks = tasks
	s.assignments = assignments
	s.users = users
	s.ready = true
	s.err = nil
	s.mu.Unlock()
	return nil
}

// Invalidate is the refetch every mutation ends with.
func (s *Store) Invalidate(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *Store) AddUser(ctx context.Context, username, password string) error {
	return s.mutate(ctx, func(token string) error {
		_, err := s.api.CreateUser(ctx, token, username, password)
		return err
	})
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	return s.mutate(ctx, func(token string) error {
		return s.api.DeleteUser(ctx, token, userID)
	})
}

func (s *Store) CreateTask(ctx context.Context, designation string) error {
	return s.mutate(ctx, func(token string) error {
		_, err := s.api.CreateTask(ctx, token, designation)
		return err
	})
}

func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	return s.mutate(ctx, func(token string) error {
		return s.api.DeleteTask(ctx, token, taskID)
	})
}

func (s *Store) AssignTask(ctx context.Context, taskID, userID string) error {
	return s.mutate(ctx, func(token string) error {
		_, err := s.api.AssignTask(ctx, token, userID, taskID)
		return err
	})
}

// UpdateProgress sends update with the dates its status implies: today
// (a UTC calendar date) for a missing start or end date, nothing at all
// for NOT_STARTED.
func (s *Store) UpdateProgress(ctx context.Context, assignmentID string, update model.ProgressUpdate) error {
	if update.Status != nil {
		update.StartDate, update.EndDate = model.ApplyStatusDefaults(
			*update.Status, update.StartDate, update.EndDate, model.DateOf(s.now().UTC()),
		)
	}

	return s.mutate(ctx, func(token string) error {
		_, err := s.api.UpdateUserTask(ctx, token, assignmentID, update)
		return err
	})
}

func (s *Store) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	return s.mutate(ctx, func(token string) error {
		return s.api.ChangePassword(ctx, token, userID, oldPassword, newPassword)
	})
}

func (s *Store) RemoveAssignment(ctx context.Context, assignmentID string) error {
	return s.mutate(ctx, func(token string) error {
		return s.api.RemoveUserTask(ctx, token, assignmentID)
	})
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Ready:       s.ready,
		Users:       append([]model.User(nil), s.users...),
		Tasks:       append([]model.Task(nil), s.tasks...),
		Assignments: append([]model.UserTask(nil), s.assignments...),
		Err:         s.err,
	}
	if s.identity != nil {
		identity := *s.identity
		snap.Identity = &identity
	}
	return snap
}

func (s *Store) AssignmentsWithDetails() []model.UserTaskDetails {
	return AssignmentsWithDetails(s.Snapshot())
}

func (s *Store) TaskStats() []TaskStat {
	return TaskStats(s.Snapshot())
}

// Err is the last failure surfaced by a load or mutation.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store) CurrentUser() *model.PublicUser {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return nil
	}
	identity := *s.identity
	return &identity
}

func (s *Store) mutate(ctx context.Context, call func(token string) error) error {
	s.mu.Lock()
	token := s.token
	s.err = nil
	s.mu.Unlock()

	if token == "" {
		return ErrNotLoggedIn
	}

	if err := call(token); err != nil {
		s.setErr(err)
		return err
	}
	return s.Invalidate(ctx)
}

func (s *Store) failLoad(err error) error {
	s.mu.Lock()
	s.err = err
	s.ready = true
	s.mu.Unlock()
	return err
}

func (s *Store) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func isManager(role constants.Role) bool {
	switch role {
	case constants.RoleManager:
		return true
	case constants.RoleUser:
		return false
	default:
		return false
	}
}
