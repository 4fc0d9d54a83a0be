package store

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"task-tracker.com/task-tracker/internal/auth"
	config "task-tracker.com/task-tracker/internal/configs"
	apihttp "task-tracker.com/task-tracker/internal/http"
	repository "task-tracker.com/task-tracker/internal/repositories"
	"task-tracker.com/task-tracker/internal/services"
	"task-tracker.com/task-tracker/internal/session"
	"task-tracker.com/task-tracker/pkg/client"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

// fakeAPI is a scripted API for testing the store without a server
type fakeAPI struct {
	mu sync.Mutex

	role        constants.Role
	tasks       []model.Task
	details     []model.UserTaskDetails
	usersErr    error
	tasksErr    error
	mutationErr error
	meErr       error

	user model.PublicUser

	calls      []string
	lastUpdate model.ProgressUpdate
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	f.record("login")
	if password != "pw" {
		return nil, &client.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	f.mu.Lock()
	f.user = model.PublicUser{ID: "me", Username: username, Role: f.role}
	user := f.user
	f.mu.Unlock()
	return &model.LoginResponse{Token: "tok", User: user}, nil
}

func (f *fakeAPI) Me(ctx context.Context, token string) (*model.PublicUser, error) {
	f.record("me")
	if f.meErr != nil {
		return nil, f.meErr
	}
	if token != "tok" {
		return nil, &client.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid token"}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user := f.user
	return &user, nil
}

func (f *fakeAPI) Logout(ctx context.Context, token string) error {
	f.record("logout")
	return nil
}

func (f *fakeAPI) ListTasks(ctx context.Context, token string) ([]model.Task, error) {
	f.record("tasks")
	if f.tasksErr != nil {
		return nil, f.tasksErr
	}
	return f.tasks, nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, token, designation string) (*model.Task, error) {
	f.record("create-task")
	return &model.Task{ID: "new"}, f.mutationErr
}

func (f *fakeAPI) DeleteTask(ctx context.Context, token, id string) error {
	f.record("delete-task")
	return f.mutationErr
}

func (f *fakeAPI) ListUsers(ctx context.Context, token string) ([]model.User, error) {
	f.record("users")
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return []model.User{{ID: "u1", Username: "alice"}}, nil
}

func (f *fakeAPI) CreateUser(ctx context.Context, token, username, password string) (*model.User, error) {
	f.record("create-user")
	return &model.User{}, f.mutationErr
}

func (f *fakeAPI) DeleteUser(ctx context.Context, token, id string) error {
	f.record("delete-user")
	return f.mutationErr
}

func (f *fakeAPI) ChangePassword(ctx context.Context, token, userID, oldPassword, newPassword string) error {
	f.record("password")
	return f.mutationErr
}

func (f *fakeAPI) ListUserTasks(ctx context.Context, token, userID string) ([]model.UserTaskDetails, error) {
	f.record("user-tasks")
	return f.details, nil
}

func (f *fakeAPI) ListAllUserTasks(ctx context.Context, token string) ([]model.UserTaskDetails, error) {
	f.record("all-user-tasks")
	return f.details, nil
}

func (f *fakeAPI) AssignTask(ctx context.Context, token, userID, taskID string) (*model.UserTask, error) {
	f.record("assign")
	return &model.UserTask{}, f.mutationErr
}

func (f *fakeAPI) UpdateUserTask(ctx context.Context, token, id string, update model.ProgressUpdate) (*model.UserTask, error) {
	f.record("update")
	f.mu.Lock()
	f.lastUpdate = update
	f.mu.Unlock()
	return &model.UserTask{}, f.mutationErr
}

func (f *fakeAPI) RemoveUserTask(ctx context.Context, token, id string) error {
	f.record("remove")
	return f.mutationErr
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestStore_LoginLoadsAndPersists(t *testing.T) {
	api := &fakeAPI{role: constants.RoleManager, tasks: []model.Task{{ID: "t1", Designation: "Sweep"}}}
	sessions := NewMemorySessionStore()
	s := New(api, sessions, WithLogger(quietLogger()))
	ctx := context.Background()

	if _, err := s.Login(ctx, "boss", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	snap := s.Snapshot()
	if !snap.Ready || len(snap.Tasks) != 1 || len(snap.Users) != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if api.count("all-user-tasks") != 1 || api.count("user-tasks") != 0 {
		t.Errorf("manager should load every assignment, calls %v", api.calls)
	}

	saved, _ := sessions.Load(ctx)
	if saved == nil || saved.Token != "tok" || saved.User.Username != "boss" {
		t.Errorf("session not persisted: %+v", saved)
	}

	restored := New(api, sessions, WithLogger(quietLogger()))
	if err := restored.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if u := restored.CurrentUser(); u == nil || u.Username != "boss" {
		t.Errorf("expected restored identity, got %+v", u)
	}
}

func TestStore_RestoreDropsRejectedSession(t *testing.T) {
	api := &fakeAPI{role: constants.RoleUser}
	sessions := NewMemorySessionStore()
	ctx := context.Background()
	stale := Session{Token: "expired", User: model.PublicUser{ID: "me", Username: "bob", Role: constants.RoleUser}}
	if err := sessions.Save(ctx, stale); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	s := New(api, sessions, WithLogger(quietLogger()))
	if err := s.Restore(ctx); err != nil {
		t.Fatalf("restore should not fail on a rejected token: %v", err)
	}

	snap := s.Snapshot()
	if !snap.Ready || snap.Identity != nil || !client.IsStatus(snap.Err, http.StatusUnauthorized) {
		t.Errorf("expected ready store without identity and a 401, got %+v", snap)
	}
	if saved, _ := sessions.Load(ctx); saved != nil {
		t.Errorf("expected rejected session to be cleared, got %+v", saved)
	}
	if api.count("tasks") != 0 {
		t.Errorf("no data should load for a rejected token, calls %v", api.calls)
	}

	if _, err := s.Login(ctx, "bob", "pw"); err != nil {
		t.Fatalf("login after rejected session: %v", err)
	}
	if saved, _ := sessions.Load(ctx); saved == nil || saved.Token != "tok" {
		t.Errorf("expected fresh session, got %+v", saved)
	}
}

func TestStore_RestoreKeepsSessionWhenServerUnreachable(t *testing.T) {
	api := &fakeAPI{role: constants.RoleUser, meErr: errors.New("connection refused")}
	sessions := NewMemorySessionStore()
	ctx := context.Background()
	_ = sessions.Save(ctx, Session{Token: "tok", User: model.PublicUser{ID: "me", Username: "bob"}})

	s := New(api, sessions, WithLogger(quietLogger()))
	if err := s.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if u := s.CurrentUser(); u == nil || u.Username != "bob" {
		t.Errorf("expected saved identity to be kept, got %+v", u)
	}
	if s.Err() == nil || !s.Snapshot().Ready {
		t.Error("expected the failure recorded and the store ready")
	}
	if saved, _ := sessions.Load(ctx); saved == nil {
		t.Error("session must survive a transient failure")
	}
	if err := s.Logout(ctx); err != nil || api.count("logout") != 1 {
		t.Errorf("logout should still revoke the saved token, err=%v calls=%v", err, api.calls)
	}
}

func TestStore_LoginFailureSetsErr(t *testing.T) {
	s := New(&fakeAPI{}, NewMemorySessionStore(), WithLogger(quietLogger()))

	_, err := s.Login(context.Background(), "bob", "wrong")
	if !client.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401, got %v", err)
	}
	if s.Err() == nil || s.CurrentUser() != nil {
		t.Errorf("expected recorded error and no identity")
	}
}

func TestStore_LoadToleratesUsersFailure(t *testing.T) {
	api := &fakeAPI{role: constants.RoleUser, usersErr: &client.APIError{StatusCode: http.StatusForbidden, Message: "Manager access required"}}
	s := New(api, NewMemorySessionStore(), WithLogger(quietLogger()))

	if _, err := s.Login(context.Background(), "bob", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	snap := s.Snapshot()
	if !snap.Ready || snap.Err != nil || len(snap.Users) != 0 {
		t.Errorf("expected ready store with no users, got %+v", snap)
	}
	if api.count("user-tasks") != 1 {
		t.Errorf("user should load own assignments, calls %v", api.calls)
	}
}

func TestStore_LoadFailureMarksReady(t *testing.T) {
	api := &fakeAPI{role: constants.RoleUser}
	s := New(api, NewMemorySessionStore(), WithLogger(quietLogger()))
	_, _ = s.Login(context.Background(), "bob", "pw")

	api.tasksErr = errors.New("connection refused")
	if err := s.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	snap := s.Snapshot()
	if !snap.Ready || snap.Err == nil {
		t.Errorf("expected ready with error, got %+v", snap)
	}
}

func TestStore_MutationsInvalidate(t *testing.T) {
	api := &fakeAPI{role: constants.RoleManager}
	s := New(api, NewMemorySessionStore(), WithLogger(quietLogger()))
	ctx := context.Background()
	_, _ = s.Login(ctx, "boss", "pw")

	mutations := []func() error{
		func() error { return s.AddUser(ctx, "x", "y") },
		func() error { return s.DeleteUser(ctx, "x") },
		func() error { return s.CreateTask(ctx, "x") },
		func() error { return s.DeleteTask(ctx, "x") },
		func() error { return s.AssignTask(ctx, "t", "u") },
		func() error { return s.UpdateProgress(ctx, "a", model.ProgressUpdate{}) },
		func() error { return s.ChangePassword(ctx, "u", "a", "b") },
		func() error { return s.RemoveAssignment(ctx, "a") },
	}
	for i, m := range mutations {
		before := api.count("tasks")
		if err := m(); err != nil {
			t.Fatalf("mutation %d: %v", i, err)
		}
		if api.count("tasks") != before+1 {
			t.Errorf("mutation %d did not reload", i)
		}
	}

	api.mutationErr = &client.APIError{StatusCode: http.StatusConflict, Message: "Task already assigned to this user"}
	before := api.count("tasks")
	if err := s.AssignTask(ctx, "t", "u"); !client.IsStatus(err, http.StatusConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if api.count("tasks") != before {
		t.Error("failed mutation should not reload")
	}
	if s.Err() == nil {
		t.Error("failed mutation should be recorded")
	}
}

func TestStore_UpdateProgressDateDefaults(t *testing.T) {
	api := &fakeAPI{role: constants.RoleUser}
	today := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	s := New(api, NewMemorySessionStore(), WithLogger(quietLogger()), WithClock(func() time.Time { return today }))
	ctx := context.Background()
	_, _ = s.Login(ctx, "bob", "pw")

	inProgress := constants.StatusInProgress
	_ = s.UpdateProgress(ctx, "a", model.ProgressUpdate{Status: &inProgress})
	if api.lastUpdate.StartDate == nil || *api.lastUpdate.StartDate != "2024-06-01" {
		t.Errorf("expected start date today, got %v", api.lastUpdate.StartDate)
	}

	explicit := model.Date("2024-05-01")
	completed := constants.StatusCompleted
	_ = s.UpdateProgress(ctx, "a", model.ProgressUpdate{Status: &completed, EndDate: &explicit})
	if *api.lastUpdate.EndDate != explicit {
		t.Errorf("explicit end date overwritten: %v", *api.lastUpdate.EndDate)
	}

	// 23:30 five hours west of UTC is already the next UTC day.
	lateEvening := time.Date(2024, 6, 1, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
	s.now = func() time.Time { return lateEvening }
	_ = s.UpdateProgress(ctx, "a", model.ProgressUpdate{Status: &completed})
	if api.lastUpdate.EndDate == nil || *api.lastUpdate.EndDate != "2024-06-02" {
		t.Errorf("expected UTC end date 2024-06-02, got %v", api.lastUpdate.EndDate)
	}

	notStarted := constants.StatusNotStarted
	_ = s.UpdateProgress(ctx, "a", model.ProgressUpdate{Status: &notStarted, StartDate: &explicit, EndDate: &explicit})
	if api.lastUpdate.StartDate != nil || api.lastUpdate.EndDate != nil {
		t.Errorf("NOT_STARTED must clear dates, got %+v", api.lastUpdate)
	}
}

func TestStore_LogoutClearsEverything(t *testing.T) {
	api := &fakeAPI{role: constants.RoleManager, tasks: []model.Task{{ID: "t1"}}}
	sessions := NewMemorySessionStore()
	s := New(api, sessions, WithLogger(quietLogger()))
	ctx := context.Background()
	_, _ = s.Login(ctx, "boss", "pw")

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if api.count("logout") != 1 {
		t.Error("expected server logout")
	}
	snap := s.Snapshot()
	if snap.Identity != nil || len(snap.Tasks) != 0 {
		t.Errorf("expected cleared state, got %+v", snap)
	}
	if saved, _ := sessions.Load(ctx); saved != nil {
		t.Errorf("expected cleared session, got %+v", saved)
	}
	if err := s.CreateTask(ctx, "x"); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("expected ErrNotLoggedIn, got %v", err)
	}
}

func newAPIServer(t *testing.T) (*httptest.Server, *services.UserService) {
	db, err := config.NewDatabase(config.DriverSQLite, filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	denylist := session.NewMemoryDenylist(0)
	hasher := auth.NewPasswordHasher(4)
	tokens := auth.NewTokenService("store-test", time.Hour)
	userRepo := repository.NewUserRepository(db)
	users := services.NewUserService(userRepo, hasher)

	e := echo.New()
	apihttp.Register(e, apihttp.NewHandler(
		services.NewAuthService(userRepo, hasher, tokens, denylist),
		users,
		services.NewTaskService(repository.NewTaskRepository(db)),
		services.NewUserTaskService(repository.NewUserTaskRepository(db)),
	), apihttp.RouteConfig{Tokens: tokens, Denylist: denylist, Logger: quietLogger(), RateLimitPerMinute: 10000})

	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		srv.Close()
		sqlDB.Close()
	})
	return srv, users
}

func TestStore_AgainstServer(t *testing.T) {
	srv, users := newAPIServer(t)
	ctx := context.Background()
	if _, err := users.CreateWithRole(ctx, "boss", "bosspw", constants.RoleManager); err != nil {
		t.Fatalf("seed manager: %v", err)
	}

	api := client.New(srv.URL + "/api")
	manager := New(api, NewMemorySessionStore(), WithLogger(quietLogger()))
	if _, err := manager.Login(ctx, "boss", "bosspw"); err != nil {
		t.Fatalf("manager login: %v", err)
	}

	if err := manager.AddUser(ctx, "worker", "workerpw"); err != nil {
		t.Fatalf("add user: %v", err)
	}
	if err := manager.CreateTask(ctx, "Inspect valve"); err != nil {
		t.Fatalf("create task: %v", err)
	}

	snap := manager.Snapshot()
	var workerID string
	for _, u := range snap.Users {
		if u.Username == "worker" {
			workerID = u.ID
		}
	}
	if workerID == "" || len(snap.Tasks) != 1 {
		t.Fatalf("unexpected snapshot after setup %+v", snap)
	}
	taskID := snap.Tasks[0].ID

	if err := manager.AssignTask(ctx, taskID, workerID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := manager.AssignTask(ctx, taskID, workerID); !client.IsStatus(err, http.StatusConflict) {
		t.Errorf("expected duplicate assignment conflict, got %v", err)
	}

	worker := New(api, NewMemorySessionStore(), WithLogger(quietLogger()))
	if _, err := worker.Login(ctx, "worker", "workerpw"); err != nil {
		t.Fatalf("worker login: %v", err)
	}
	if len(worker.Snapshot().Users) != 0 {
		t.Error("worker should not see the user list")
	}

	details := worker.AssignmentsWithDetails()
	if len(details) != 1 || details[0].TaskDesignation != "Inspect valve" || details[0].Username != "worker" {
		t.Fatalf("unexpected worker view %+v", details)
	}

	completed := constants.StatusCompleted
	if err := worker.UpdateProgress(ctx, details[0].ID, model.ProgressUpdate{Status: &completed}); err != nil {
		t.Fatalf("update progress: %v", err)
	}
	details = worker.AssignmentsWithDetails()
	today := model.DateOf(time.Now().UTC())
	if details[0].Status != constants.StatusCompleted || details[0].EndDate == nil || *details[0].EndDate != today {
		t.Errorf("expected completed today, got %+v", details[0])
	}

	if err := manager.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	stats := manager.TaskStats()
	if len(stats) != 1 || stats[0].CompletedCount != 1 || stats[0].ProgressPercentage != 100 {
		t.Errorf("unexpected stats %+v", stats)
	}

	if err := manager.DeleteTask(ctx, taskID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if got := manager.AssignmentsWithDetails(); len(got) != 0 {
		t.Errorf("expected cascade to drop the assignment, got %+v", got)
	}
}
