// Package client is a typed HTTP client for the task-tracker API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	model "task-tracker.com/task-tracker/pkg/models"
)

const unknownError = "Unknown error"

// APIError is a non-2xx response. Message is the server's "error" field.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a client for the API rooted at baseURL, e.g. http://localhost:8080/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Me(ctx context.Context, token string) (*model.PublicUser, error) {
	var user model.PublicUser
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

func (c *Client) ListTasks(ctx context.Context, token string) ([]model.Task, error) {
	tasks := make([]model.Task, 0)
	if err := c.do(ctx, http.MethodGet, "/tasks", token, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, token, designation string) (*model.Task, error) {
	var task model.Task
	body := map[string]string{"designation": designation}
	if err := c.do(ctx, http.MethodPost, "/tasks", token, body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]model.User, error) {
	users := make([]model.User, 0)
	if err := c.do(ctx, http.MethodGet, "/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, token, username, password string) (*model.User, error) {
	var user model.User
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/users", token, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) ChangePassword(ctx context.Context, token, userID, oldPassword, newPassword string) error {
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	return c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(userID)+"/password", token, body, nil)
}

// ListUserTasks lists the caller's assignments, or userID's when set.
func (c *Client) ListUserTasks(ctx context.Context, token, userID string) ([]model.UserTaskDetails, error) {
	path := "/user-tasks"
	if userID != "" {
		path += "?userId=" + url.QueryEscape(userID)
	}

	details := make([]model.UserTaskDetails, 0)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &details); err != nil {
		return nil, err
	}
	return details, nil
}

func (c *Client) ListAllUserTasks(ctx context.Context, token string) ([]model.UserTaskDetails, error) {
	details := make([]model.UserTaskDetails, 0)
	if err := c.do(ctx, http.MethodGet, "/user-tasks/admin/all", token, nil, &details); err != nil {
		return nil, err
	}
	return details, nil
}

func (c *Client) AssignTask(ctx context.Context, token, userID, taskID string) (*model.UserTask, error) {
	var assignment model.UserTask
	body := map[string]string{"userId": userID, "taskId": taskID}
	if err := c.do(ctx, http.MethodPost, "/user-tasks", token, body, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (c *Client) UpdateUserTask(ctx context.Context, token, id string, update model.ProgressUpdate) (*model.UserTask, error) {
	var assignment model.UserTask
	if err := c.do(ctx, http.MethodPut, "/user-tasks/"+url.PathEscape(id), token, update, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (c *Client) RemoveUserTask(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/user-tasks/"+url.PathEscape(id), token, nil, nil)
}

// Health calls /health, which lives outside the /api prefix.
func (c *Client) Health(ctx context.Context) (*model.HealthResponse, error) {
	var health model.HealthResponse
	root := strings.TrimSuffix(c.baseURL, "/api")
	if err := c.doURL(ctx, http.MethodGet, root+"/health", "", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	return c.doURL(ctx, method, c.baseURL+path, token, body, out)
}

func (c *Client) doURL(ctx context.Context, method, target, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}

	message := unknownError
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		message = payload.Error
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
