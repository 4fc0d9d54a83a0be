package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
	"task-tracker.com/task-tracker/pkg/store"
)

func TestProgressUpdateFromFlags(t *testing.T) {
	progressStatus, progressStart, progressEnd, progressNotes = "IN_PROGRESS", "2024-04-01", "", "started"
	t.Cleanup(func() { progressStatus, progressStart, progressEnd, progressNotes = "", "", "", "" })

	update, err := progressUpdateFromFlags()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update.Status == nil || *update.Status != constants.StatusInProgress {
		t.Errorf("unexpected status %v", update.Status)
	}
	if update.StartDate == nil || *update.StartDate != "2024-04-01" || update.EndDate != nil {
		t.Errorf("unexpected dates %+v", update)
	}
	if update.Notes == nil || *update.Notes != "started" {
		t.Errorf("unexpected notes %v", update.Notes)
	}

	progressStatus = "PAUSED"
	if _, err := progressUpdateFromFlags(); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestOrDash(t *testing.T) {
	d := model.Date("2024-01-01")
	empty := ""
	if orDash(&d) != "2024-01-01" || orDash[model.Date](nil) != "-" || orDash(&empty) != "-" {
		t.Error("unexpected orDash output")
	}
}

// newTokenServer accepts only the token "fresh", which it hands out on login.
func newTokenServer(t *testing.T) *httptest.Server {
	user := model.PublicUser{ID: "u1", Username: "bob", Role: constants.RoleUser}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/auth/login":
			_ = json.NewEncoder(w).Encode(model.LoginResponse{Token: "fresh", User: user})
		case r.Header.Get("Authorization") != "Bearer fresh":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid token"}`))
		case r.URL.Path == "/api/auth/me":
			_ = json.NewEncoder(w).Encode(user)
		case r.URL.Path == "/api/auth/logout":
			_, _ = w.Write([]byte(`{"message":"Logged out"}`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func useStaleSession(t *testing.T, srv *httptest.Server) {
	prevURL, prevPath := apiURL, sessionPath
	t.Cleanup(func() { apiURL, sessionPath = prevURL, prevPath })
	apiURL = srv.URL + "/api"
	sessionPath = filepath.Join(t.TempDir(), "session.db")

	sessions, err := store.NewGormSessionStore(sessionPath)
	if err != nil {
		t.Fatalf("open session store: %v", err)
	}
	defer sessions.Close()
	stale := store.Session{Token: "expired", User: model.PublicUser{ID: "u1", Username: "bob", Role: constants.RoleUser}}
	if err := sessions.Save(context.Background(), stale); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func savedToken(t *testing.T) string {
	sessions, err := store.NewGormSessionStore(sessionPath)
	if err != nil {
		t.Fatalf("open session store: %v", err)
	}
	defer sessions.Close()
	sess, err := sessions.Load(context.Background())
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess == nil {
		return ""
	}
	return sess.Token
}

func runCommand(cmd func() error) (string, error) {
	var out bytes.Buffer
	for _, c := range []*cobra.Command{loginCmd, logoutCmd, statsCmd} {
		c.SetContext(context.Background())
		c.SetOut(&out)
	}
	err := cmd()
	return out.String(), err
}

func TestLoginReplacesStaleSession(t *testing.T) {
	useStaleSession(t, newTokenServer(t))

	out, err := runCommand(func() error { return loginCmd.RunE(loginCmd, []string{"bob", "pw"}) })
	if err != nil {
		t.Fatalf("login with a stale session: %v", err)
	}
	if !strings.Contains(out, "logged in as bob") {
		t.Errorf("unexpected output %q", out)
	}
	if got := savedToken(t); got != "fresh" {
		t.Errorf("expected fresh token saved, got %q", got)
	}

	if _, err := runCommand(func() error { return logoutCmd.RunE(logoutCmd, nil) }); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got := savedToken(t); got != "" {
		t.Errorf("expected session cleared, got %q", got)
	}
}

func TestLogoutAndReadsWithStaleSession(t *testing.T) {
	useStaleSession(t, newTokenServer(t))

	if _, err := runCommand(func() error { return statsCmd.RunE(statsCmd, nil) }); !errors.Is(err, errSessionMissing) {
		t.Errorf("expected a prompt to log in again, got %v", err)
	}
	if got := savedToken(t); got != "" {
		t.Errorf("rejected session should be dropped, got %q", got)
	}

	useStaleSession(t, newTokenServer(t))
	out, err := runCommand(func() error { return logoutCmd.RunE(logoutCmd, nil) })
	if err != nil {
		t.Fatalf("logout with a stale session: %v", err)
	}
	if !strings.Contains(out, "logged out") {
		t.Errorf("unexpected output %q", out)
	}
}
