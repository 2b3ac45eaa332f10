package commands

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tasq/internal/core/config"
	"github.com/hay-kot/tasq/internal/core/prefs"
	"github.com/hay-kot/tasq/internal/core/task"
	"github.com/hay-kot/tasq/internal/printer"
	"github.com/hay-kot/tasq/internal/store/jsonfile"
	"github.com/hay-kot/tasq/internal/testutil/fakeapi"
)

type harness struct {
	srv    *fakeapi.Server
	flags  *Flags
	store  *jsonfile.PrefsStore
	out    bytes.Buffer
	errOut bytes.Buffer
}

func newHarness(t *testing.T, opts ...fakeapi.Option) *harness {
	t.Helper()

	srv := fakeapi.New(t, append([]fakeapi.Option{fakeapi.WithPageSize(2)}, opts...)...)

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.API.BaseURL = srv.URL()

	store := jsonfile.NewPrefsStore(cfg.PrefsFile())

	return &harness{
		srv:   srv,
		store: store,
		flags: &Flags{Config: &cfg, Prefs: store},
	}
}

// run executes args against a fresh command tree.
func (h *harness) run(args ...string) error {
	h.out.Reset()
	h.errOut.Reset()

	app := &cli.Command{
		Name:           "tasq",
		Writer:         &h.out,
		ErrWriter:      &h.errOut,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	app = NewLsCmd(h.flags).Register(app)
	app = NewAddCmd(h.flags).Register(app)
	app = NewStatusCmd(h.flags).Register(app)
	app = NewAuthCmd(h.flags).Register(app)
	app = NewExportCmd(h.flags).Register(app)
	app = NewConfigValidateCmd(h.flags).Register(app)

	ctx := printer.WithPrinter(context.Background(), printer.New(&h.out, &h.errOut))
	return app.Run(ctx, append([]string{"tasq"}, args...))
}

func (h *harness) stdout() string { return ansi.Strip(h.out.String()) }
func (h *harness) stderr() string { return ansi.Strip(h.errOut.String()) }

func (h *harness) count(method, path string) int {
	n := 0
	for _, r := range h.srv.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func TestLs_FirstPage(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedN(3)

	require.NoError(t, h.run("ls"))

	out := h.stdout()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "PRIORITY")
	assert.Contains(t, out, "Task 1")
	assert.Contains(t, out, "Task 2")
	assert.NotContains(t, out, "Task 3")
	assert.Contains(t, h.stderr(), "tasq ls --cursor c2")
}

func TestLs_Cursor(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedN(3)

	require.NoError(t, h.run("ls", "--cursor", "c2"))

	assert.Contains(t, h.stdout(), "Task 3")
	assert.NotContains(t, h.stdout(), "Task 1")
	assert.NotContains(t, h.stderr(), "More tasks")
}

func TestLs_All(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedN(5)

	require.NoError(t, h.run("ls", "--all"))

	for _, title := range []string{"Task 1", "Task 3", "Task 5"} {
		assert.Contains(t, h.stdout(), title)
	}
	assert.Equal(t, 3, h.count(http.MethodGet, "/api/tasks"))
	assert.NotContains(t, h.stderr(), "More tasks")
}

// loopingLister answers every request with the same page and cursor.
type loopingLister struct {
	cursors []string
}

func (l *loopingLister) ListTasks(_ context.Context, cursor string) (task.Page, error) {
	l.cursors = append(l.cursors, cursor)
	next := "c2"
	return task.Page{
		Tasks:      []task.Task{{ID: "1", Title: "Task 1"}},
		Pagination: task.Pagination{HasMore: true, NextCursor: &next},
	}, nil
}

func TestFetchTasks_RepeatedCursorStops(t *testing.T) {
	l := &loopingLister{}

	tasks, next, err := fetchTasks(context.Background(), l, "", true)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "c2"}, l.cursors)
	assert.Len(t, tasks, 1)
	assert.Empty(t, next)
}

func TestLs_AllNullCursorStops(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedN(5)
	h.srv.FailNext("GET /api/tasks", fakeapi.Failure{
		Status: http.StatusOK,
		Body: map[string]any{
			"tasks":      []task.Task{{ID: "1", Title: "Task 1", Priority: task.PriorityMedium}},
			"pagination": map[string]any{"has_more": true, "next_cursor": nil},
		},
	})

	require.NoError(t, h.run("ls", "--all"))

	assert.Equal(t, 1, h.count(http.MethodGet, "/api/tasks"))
	assert.Contains(t, h.stdout(), "Task 1")
	assert.NotContains(t, h.stdout(), "Task 2")
}

func TestLs_JSON(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedN(3)

	require.NoError(t, h.run("ls", "--all", "--json"))

	lines := strings.Split(strings.TrimSpace(h.out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"title":"Task 1"`)
	assert.Contains(t, lines[2], `"title":"Task 3"`)
}

func TestLs_Empty(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("ls"))
	assert.Empty(t, h.out.String())
	assert.Contains(t, h.stderr(), "No tasks found.")
}

func TestLs_Unauthorized(t *testing.T) {
	h := newHarness(t, fakeapi.WithToken("tok"))

	err := h.run("ls")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list tasks")
}

func TestAdd_Flags(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("add", "--title", "Write docs", "--priority", "high", "--deadline", "2025-03-01 09:30"))

	assert.Contains(t, h.stdout(), "Task 1 created successfully!")

	created, ok := h.srv.Task("1")
	require.True(t, ok)
	assert.Equal(t, "Write docs", created.Title)
	assert.Equal(t, task.PriorityHigh, created.Priority)
	assert.Equal(t, task.StatusActive, created.Status)
	require.NotNil(t, created.Deadline)
	assert.Equal(t, 9, created.Deadline.Time.Hour())

	reqs := h.srv.Requests()
	assert.Contains(t, reqs[len(reqs)-1].Body, `"deadline":"2025-03-01T09:30"`)
}

func TestAdd_DefaultPriority(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("add", "-t", "Chores"))

	created, ok := h.srv.Task("1")
	require.True(t, ok)
	assert.Equal(t, task.PriorityLow, created.Priority)
}

func TestAdd_File(t *testing.T) {
	h := newHarness(t)

	path := filepath.Join(t.TempDir(), "task.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title": "From file", "priority": 2, "status": 1}`), 0o644))

	require.NoError(t, h.run("add", "--file", path, "--json"))

	created, ok := h.srv.Task("1")
	require.True(t, ok)
	assert.Equal(t, "From file", created.Title)
	assert.Equal(t, task.PriorityMedium, created.Priority)
	assert.Equal(t, task.StatusActive, created.Status, "new tasks always start active")
	assert.Contains(t, h.out.String(), `"title":"From file"`)
}

func TestAdd_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "bad deadline", args: []string{"--title", "x", "--deadline", "someday"}, wantErr: "invalid deadline"},
		{name: "bad priority", args: []string{"--title", "x", "--priority", "urgent"}, wantErr: "invalid priority"},
		{name: "blank title", args: []string{"--title", "   "}, wantErr: "title is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			err := h.run(append([]string{"add"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Zero(t, h.count(http.MethodPost, "/api/tasks"))
		})
	}
}

func TestAdd_ServerError(t *testing.T) {
	h := newHarness(t)
	h.srv.FailNext("POST /api/tasks", fakeapi.Failure{
		Status: http.StatusInternalServerError,
		Body:   map[string]any{"success": false, "error": "db down"},
	})

	err := h.run("add", "--title", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error creating task: db down")
}

func TestDoneUndo(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedN(2)

	require.NoError(t, h.run("done", "1", "2"))
	assert.Contains(t, h.stdout(), "Task 1 status updated to 1 on server.")
	assert.Contains(t, h.stdout(), "Task 2 status updated to 1 on server.")

	for _, id := range []task.ID{"1", "2"} {
		got, _ := h.srv.Task(id)
		assert.Equal(t, task.StatusCompleted, got.Status)
	}

	require.NoError(t, h.run("undo", "2"))
	got, _ := h.srv.Task("2")
	assert.Equal(t, task.StatusActive, got.Status)
	assert.Contains(t, h.stdout(), "Task 2 status updated to 0 on server.")
}

func TestDone_PartialFailure(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedN(1)

	err := h.run("done", "99", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update task 99")

	got, _ := h.srv.Task("1")
	assert.Equal(t, task.StatusCompleted, got.Status, "later ids still processed")
	assert.Contains(t, h.stderr(), "Task 99: Task not found")
}

func TestDone_RequiresID(t *testing.T) {
	h := newHarness(t)

	err := h.run("done")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task id is required")
}

func TestLogin_StoresSession(t *testing.T) {
	h := newHarness(t, fakeapi.WithToken("tok"))
	h.srv.SeedN(1)

	require.NoError(t, h.run("login", "--token", "tok"))
	assert.Contains(t, h.stdout(), "Logged in")

	p, err := h.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", p.Session.Token)

	require.NoError(t, h.run("ls"))
	assert.Contains(t, h.stdout(), "Task 1")

	reqs := h.srv.Requests()
	assert.Equal(t, "Bearer tok", reqs[len(reqs)-1].Auth)
}

func TestLogin_Rejected(t *testing.T) {
	h := newHarness(t, fakeapi.WithToken("tok"))

	err := h.run("login", "--token", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credential rejected")

	p, err := h.store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Session.IsZero())
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Save(ctx, prefs.Prefs{Theme: "light", Session: prefs.Session{Token: "tok"}}))

	require.NoError(t, h.run("logout"))

	assert.True(t, h.srv.LoggedOut())
	assert.Contains(t, h.stdout(), "Logged out")
	assert.Contains(t, h.stdout(), config.DefaultLoginURL)

	p, err := h.store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, p.Session.IsZero())
	assert.Equal(t, "light", p.Theme)
}

func TestLogout_Failure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Save(ctx, prefs.Prefs{Session: prefs.Session{Token: "tok"}}))
	h.srv.FailNext("POST /api/auth/logout", fakeapi.Failure{Status: http.StatusInternalServerError})

	err := h.run("logout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logout failed: Internal Server Error")

	p, err := h.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", p.Session.Token, "session kept when the server refused")
}

func TestExport_Markdown(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedN(3)

	require.NoError(t, h.run("export"))

	out := h.out.String()
	assert.Contains(t, out, "# Task 1\n")
	assert.Contains(t, out, "# Task 3\n")
	assert.Less(t, strings.Index(out, "# Task 1"), strings.Index(out, "# Task 3"), "server order kept")
}

func TestExport_HTMLFile(t *testing.T) {
	h := newHarness(t)
	h.srv.Seed(task.Task{Title: "<b>bold</b>"}, task.Task{Title: "plain"})

	path := filepath.Join(t.TempDir(), "out", "tasks.html")
	require.NoError(t, h.run("export", "--html", "--output", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	html := string(data)
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "&lt;b&gt;bold&lt;/b&gt;")
	assert.NotContains(t, html, "<b>bold</b>")
	assert.Contains(t, html, "plain")
	assert.Contains(t, h.stdout(), "Exported 2 task(s)")
}

func TestConfigValidate_Valid(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("config", "validate"))
	assert.Contains(t, h.stdout(), "Configuration is valid")
	assert.Contains(t, h.stderr(), "no token or session cookie configured")
}

func TestConfigValidate_JSON(t *testing.T) {
	h := newHarness(t)
	h.flags.Config.TUI.Theme = "neon"

	err := h.run("config", "validate", "--format", "json")
	require.Error(t, err)

	out := h.out.String()
	assert.Contains(t, out, `"valid": false`)
	assert.Contains(t, out, `"field": "tui.theme"`)
}

func TestConfigValidate_TextErrors(t *testing.T) {
	h := newHarness(t)
	h.flags.Config.API.LoginURL = "ftp://example.com"

	err := h.run("config", "validate")
	require.Error(t, err)
	assert.Contains(t, h.stderr(), "api.login_url")
	assert.Contains(t, h.stderr(), "1 error(s) found")
}

func TestFlagsClient_CredentialPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		stored   string
		flag     string
		wantAuth string
	}{
		{name: "config", wantAuth: "Bearer from-config"},
		{name: "stored session", stored: "from-login", wantAuth: "Bearer from-login"},
		{name: "flag", stored: "from-login", flag: "from-flag", wantAuth: "Bearer from-flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()

			h.flags.Config.API.Token = "from-config"
			h.flags.Token = tt.flag
			if tt.stored != "" {
				require.NoError(t, h.store.Save(ctx, prefs.Prefs{Session: prefs.Session{Token: tt.stored}}))
			}

			svc, err := h.flags.Client(ctx)
			require.NoError(t, err)
			_, err = svc.ListTasks(ctx, "")
			require.NoError(t, err)

			reqs := h.srv.Requests()
			require.Len(t, reqs, 1)
			assert.Equal(t, tt.wantAuth, reqs[0].Auth)
		})
	}
}

func TestFlagsClient_BaseURLOverride(t *testing.T) {
	h := newHarness(t)
	h.flags.BaseURL = h.flags.Config.API.BaseURL
	h.flags.Config.API.BaseURL = "http://127.0.0.1:1/api"

	svc, err := h.flags.Client(context.Background())
	require.NoError(t, err)
	_, err = svc.ListTasks(context.Background(), "")
	require.NoError(t, err)
}
