package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/newsdesk/internal/config"
	"github.com/and161185/newsdesk/internal/devserver"
	"github.com/and161185/newsdesk/internal/errs"
	"github.com/and161185/newsdesk/internal/limiter"
	"github.com/and161185/newsdesk/internal/model"
	"github.com/and161185/newsdesk/internal/repository/memory"
	"github.com/and161185/newsdesk/internal/service"
	"github.com/and161185/newsdesk/internal/session"
)

type harness struct {
	t        *testing.T
	baseURL  string
	stateDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	auth := service.NewAuthService(memory.NewUserRepo(), []byte("cli-test"),
		service.TTLs{Access: time.Hour, Refresh: time.Hour}, limiter.NewMemory(time.Minute, 5, time.Minute))
	_, err := auth.EnsureUser(context.Background(), "admin", "admin123", model.RoleAdmin)
	require.NoError(t, err)
	content := devserver.NewContent()
	content.Seed()

	srv := httptest.NewServer(devserver.New(auth, content, zaptest.NewLogger(t), ""))
	t.Cleanup(srv.Close)
	return &harness{t: t, baseURL: srv.URL + "/api", stateDir: t.TempDir()}
}

// run executes one nd invocation with a file-backed session in the harness dir.
func (h *harness) run(args ...string) (stdout, stderr string, err error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"nd",
		"--env-file", "",
		"--base-url", h.baseURL,
		"--session", config.BackendFile,
		"--state-dir", h.stateDir,
		"--admin-gate", config.AdminGateEnforce,
	}, args...)
	err = newApp(&out, &errOut).Run(full)
	return out.String(), errOut.String(), err
}

func (h *harness) persisted() string {
	h.t.Helper()
	tok, err := session.NewFilePersister(h.stateDir, config.DefaultCredentialKey).Load(context.Background())
	require.NoError(h.t, err)
	return tok
}

func TestCLI_LoginPersistsAcrossInvocations(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("login", "-u", "admin", "-p", "admin123")
	require.NoError(t, err)
	require.Contains(t, out, "logged in as admin (ADMIN)")
	require.NotEmpty(t, h.persisted())

	out, _, err = h.run("whoami")
	require.NoError(t, err)
	var id model.Identity
	require.NoError(t, json.Unmarshal([]byte(out), &id))
	require.Equal(t, "admin", id.Username)
	require.True(t, id.IsAdmin())

	out, _, err = h.run("status")
	require.NoError(t, err)
	var st map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	require.Equal(t, true, st["authenticated"])
	require.Equal(t, false, st["expired"])
	require.Contains(t, st, "expiresAt")

	out, _, err = h.run("open", "/admin/news/edit/3")
	require.NoError(t, err)
	require.Contains(t, out, `"decision": "Proceed"`)
	require.Contains(t, out, `"location": "/admin/news/edit/3"`)
	require.Contains(t, out, `"title": "Edit News - News Management System"`)

	out, _, err = h.run("logout")
	require.NoError(t, err)
	require.Contains(t, out, "logged out")
	require.Empty(t, h.persisted())

	_, _, err = h.run("whoami")
	require.ErrorIs(t, err, errs.ErrNoCredential)
}

func TestCLI_StaleCredentialIsPurged(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, session.NewFilePersister(h.stateDir, config.DefaultCredentialKey).Save(context.Background(), "stale"))

	_, stderr, err := h.run("whoami")
	require.ErrorIs(t, err, errs.ErrNoCredential)
	require.Equal(t, "error: authentication required\n", stderr)
	require.Empty(t, h.persisted())
}

func TestCLI_BrowseAnonymously(t *testing.T) {
	h := newHarness(t)

	out, stderr, err := h.run("news", "list", "--size", "2")
	require.NoError(t, err)
	require.Empty(t, stderr)
	var page model.Page[model.News]
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.EqualValues(t, 3, page.TotalElements)
	require.Len(t, page.Content, 2)

	out, stderr, err = h.run("summary", "get", "1")
	require.NoError(t, err)
	require.Equal(t, "no summary yet\n", out)
	require.Empty(t, stderr, "a missing summary is not reported")

	_, stderr, err = h.run("news", "get", "404")
	require.True(t, errs.IsNotFound(err))
	require.Equal(t, "error: resource not found\n", stderr)

	out, _, err = h.run("open", "/admin")
	require.NoError(t, err)
	require.Contains(t, out, `"decision": "RedirectToLogin"`)
	require.Contains(t, out, `"location": "/login?redirect=%2Fadmin"`)

	_, _, err = h.run("news", "get", "abc")
	require.Error(t, err)
	require.Nil(t, errs.AsFailure(err))
}

func TestCLI_ReaderFlow(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("register", "-u", "reader", "-p", "secret1", "--email", "r@example.com")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "registered reader"))

	_, _, err = h.run("comments", "add", "1", "great", "read")
	require.NoError(t, err)
	out, _, err = h.run("comments", "count", "1")
	require.NoError(t, err)
	require.Equal(t, "1\n", out)

	_, _, err = h.run("likes", "like", "1")
	require.NoError(t, err)
	out, _, err = h.run("likes", "status", "1")
	require.NoError(t, err)
	require.Equal(t, "true\n", out)

	_, stderr, err := h.run("news", "stats")
	require.ErrorIs(t, err, errs.ErrForbidden)
	require.NotEmpty(t, stderr)
	require.NotEmpty(t, h.persisted(), "403 keeps the session")

	out, _, err = h.run("open", "/admin")
	require.NoError(t, err)
	require.Contains(t, out, `"decision": "RedirectToForbidden"`)
	require.Contains(t, out, `"location": "/403"`)
}
