// Package fakeapi is an in-process task API used by tests. It serves the
// list, create, status and logout endpoints over httptest with in-memory
// tasks, cursor pagination and per-route failure injection.
package fakeapi

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/hay-kot/tasq/internal/core/task"
)

// DefaultPageSize is the number of tasks per page unless overridden.
const DefaultPageSize = 3

// Request is a recorded incoming request.
type Request struct {
	Method    string
	Path      string
	Cursor    string
	RequestID string
	Auth      string
	Body      string
}

// Failure is a canned response returned instead of the normal handler.
type Failure struct {
	Status int
	Body   any
}

// Server is a fake task API.
type Server struct {
	mu        sync.Mutex
	tasks     []task.Task
	nextID    int
	pageSize  int
	token     string
	loggedOut bool
	failures  map[string][]Failure
	requests  []Request

	httpSrv *httptest.Server
}

// Option configures a Server.
type Option func(*Server)

// WithPageSize sets how many tasks each list response carries.
func WithPageSize(n int) Option {
	return func(s *Server) { s.pageSize = n }
}

// WithToken requires "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// New starts a fake API and closes it when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		pageSize: DefaultPageSize,
		nextID:   1,
		failures: map[string][]Failure{},
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}

	api := e.Group("/api", s.record, s.inject, s.authenticate)
	api.GET("/tasks", s.listTasks)
	api.POST("/tasks", s.createTask)
	api.PATCH("/tasks/:id", s.updateStatus)
	api.POST("/auth/logout", s.logout)

	s.httpSrv = httptest.NewServer(e)
	t.Cleanup(s.httpSrv.Close)

	return s
}

// URL returns the API base URL (including the /api prefix).
func (s *Server) URL() string {
	return s.httpSrv.URL + "/api"
}

// Seed appends tasks to the store, assigning ids to tasks without one.
func (s *Server) Seed(tasks ...task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range tasks {
		if t.ID == "" {
			t.ID = task.ID(strconv.Itoa(s.nextID))
			s.nextID++
		}
		if t.Priority == 0 {
			t.Priority = task.DefaultPriority
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = task.Timestamp{Time: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
		}
		s.tasks = append(s.tasks, t)
	}
}

// SeedN creates n tasks titled "Task 1" through "Task n".
func (s *Server) SeedN(n int) {
	for i := 1; i <= n; i++ {
		s.Seed(task.Task{Title: "Task " + strconv.Itoa(i)})
	}
}

// FailNext queues a canned response for the next request matching route,
// written as "METHOD /path" (e.g. "PATCH /api/tasks/:id").
// The canned status may also be a success, for malformed but valid replies.
func (s *Server) FailNext(route string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], f)
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Task returns the stored copy of the task with the given id.
func (s *Server) Task(id task.ID) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// LoggedOut reports whether the logout endpoint has been called.
func (s *Server) LoggedOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedOut
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		var body string
		if req.Body != nil {
			data, err := io.ReadAll(req.Body)
			if err != nil {
				return err
			}
			body = string(data)
			req.Body = io.NopCloser(bytes.NewReader(data))
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    req.Method,
			Path:      req.URL.Path,
			Cursor:    req.URL.Query().Get("cursor"),
			RequestID: req.Header.Get("X-Request-ID"),
			Auth:      req.Header.Get("Authorization"),
			Body:      body,
		})
		s.mu.Unlock()

		return next(c)
	}
}

func (s *Server) inject(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		route := c.Request().Method + " " + c.Path()

		s.mu.Lock()
		queue := s.failures[route]
		var f *Failure
		if len(queue) > 0 {
			f = &queue[0]
			s.failures[route] = queue[1:]
		}
		s.mu.Unlock()

		if f == nil {
			return next(c)
		}
		if f.Body == nil {
			return c.NoContent(f.Status)
		}
		if raw, ok := f.Body.(string); ok {
			return c.String(f.Status, raw)
		}
		return c.JSON(f.Status, f.Body)
	}
}

func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		loggedOut, token := s.loggedOut, s.token
		s.mu.Unlock()

		if loggedOut {
			return c.JSON(http.StatusUnauthorized, map[string]any{"error": "Not authenticated"})
		}
		if token != "" && c.Request().Header.Get("Authorization") != "Bearer "+token {
			return c.JSON(http.StatusUnauthorized, map[string]any{"error": "Not authenticated"})
		}
		return next(c)
	}
}

type listResponse struct {
	Tasks      []task.Task     `json:"tasks"`
	Pagination task.Pagination `json:"pagination"`
}

// listTasks pages through active and completed tasks. The cursor is the
// decimal offset of the next task, prefixed to keep it opaque to callers.
func (s *Server) listTasks(c echo.Context) error {
	offset := 0
	if cursor := c.QueryParam("cursor"); cursor != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(cursor, "c"))
		if err != nil || !strings.HasPrefix(cursor, "c") {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid cursor"})
		}
		offset = n
	}

	s.mu.Lock()
	var visible []task.Task
	for _, t := range s.tasks {
		if t.Status != task.StatusArchived {
			visible = append(visible, t)
		}
	}
	pageSize := s.pageSize
	s.mu.Unlock()

	if offset > len(visible) {
		offset = len(visible)
	}
	end := min(offset+pageSize, len(visible))

	resp := listResponse{Tasks: visible[offset:end]}
	if resp.Tasks == nil {
		resp.Tasks = []task.Task{}
	}
	if end < len(visible) {
		next := "c" + strconv.Itoa(end)
		resp.Pagination = task.Pagination{HasMore: true, NextCursor: &next}
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) createTask(c echo.Context) error {
	var nt task.NewTask
	if err := c.Bind(&nt); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": "invalid body"})
	}
	if strings.TrimSpace(nt.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": "Title is required"})
	}
	if nt.Priority == 0 {
		nt.Priority = task.DefaultPriority
	}

	created := task.Task{
		Title:       nt.Title,
		Description: nt.Description,
		Priority:    nt.Priority,
		Status:      nt.Status,
		CreatedAt:   task.Timestamp{Time: time.Now().UTC()},
	}
	if nt.Deadline != "" {
		if ts, ok := task.ParseTimestamp(nt.Deadline); ok {
			created.Deadline = &ts
		}
	}

	s.mu.Lock()
	created.ID = task.ID(strconv.Itoa(s.nextID))
	s.nextID++
	s.tasks = append(s.tasks, created)
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, map[string]any{"success": true, "task": created})
}

func (s *Server) updateStatus(c echo.Context) error {
	var body struct {
		Status *task.Status `json:"status"`
	}
	if err := c.Bind(&body); err != nil || body.Status == nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": "status is required"})
	}

	id := task.ID(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Status = *body.Status
			s.tasks[i].UpdatedAt = task.Timestamp{Time: time.Now().UTC()}
			return c.JSON(http.StatusOK, map[string]any{"success": true})
		}
	}
	return c.JSON(http.StatusNotFound, map[string]any{"success": false, "error": "Task not found"})
}

func (s *Server) logout(c echo.Context) error {
	s.mu.Lock()
	s.loggedOut = true
	s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

// sonicSerializer lets echo encode and decode with sonic.
type sonicSerializer struct{}

func (sonicSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (sonicSerializer) Deserialize(c echo.Context, i any) error {
	err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}
