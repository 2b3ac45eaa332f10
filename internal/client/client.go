// Package client is the HTTP client for the remote task API.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hay-kot/tasq/internal/core/logging"
	"github.com/hay-kot/tasq/internal/core/task"
)

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Options configures a Client.
type Options struct {
	BaseURL     string
	Token       string // bearer token, optional
	CookieName  string // session cookie name, optional
	CookieValue string
	Timeout     time.Duration
	HTTPClient  *http.Client // overrides Timeout when set
}

// Client talks to the task API. It is safe for concurrent use; methods never
// touch UI state.
type Client struct {
	base   *url.URL
	opts   Options
	http   *http.Client
	logger zerolog.Logger
}

// New builds a Client for the API rooted at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		base:   base,
		opts:   opts,
		http:   hc,
		logger: logging.Component("client"),
	}, nil
}

type createResponse struct {
	Success bool       `json:"success"`
	Task    *task.Task `json:"task"`
	Error   string     `json:"error"`
}

type statusRequest struct {
	Status task.Status `json:"status"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ListTasks fetches one page of tasks. An empty cursor requests the first
// page.
func (c *Client) ListTasks(ctx context.Context, cursor string) (task.Page, error) {
	const op = "list tasks"

	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var page task.Page
	if err := c.do(ctx, op, http.MethodGet, "/tasks", q, nil, &page); err != nil {
		return task.Page{}, err
	}
	return page, nil
}

// CreateTask submits a new task and returns the server's copy of it.
func (c *Client) CreateTask(ctx context.Context, nt task.NewTask) (task.Task, error) {
	const op = "create task"

	var resp createResponse
	if err := c.do(ctx, op, http.MethodPost, "/tasks", nil, nt, &resp); err != nil {
		return task.Task{}, err
	}
	if !resp.Success || resp.Task == nil {
		return task.Task{}, &Error{Kind: KindApplication, Op: op, Message: orUnknown(resp.Error)}
	}
	return *resp.Task, nil
}

// UpdateStatus sets the status of a single task.
func (c *Client) UpdateStatus(ctx context.Context, id task.ID, status task.Status) error {
	const op = "update task status"

	var resp successResponse
	path := "/tasks/" + url.PathEscape(id.String())
	if err := c.do(ctx, op, http.MethodPatch, path, nil, statusRequest{Status: status}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &Error{Kind: KindApplication, Op: op, Message: orUnknown(resp.Error, resp.Message)}
	}
	return nil
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) error {
	const op = "logout"

	var resp successResponse
	if err := c.do(ctx, op, http.MethodPost, "/auth/logout", nil, struct{}{}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &Error{Kind: KindApplication, Op: op, Message: orUnknown(resp.Message, resp.Error)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return &Error{Kind: KindDecode, Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().
			Ctx(ctx).
			Err(err).
			Str("method", method).
			Str("path", u.Path).
			Msg("request failed")
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().
		Ctx(ctx).
		Str("method", method).
		Str("path", u.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request complete")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.httpError(op, resp)
	}

	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}
	if c.opts.CookieName != "" && c.opts.CookieValue != "" {
		req.AddCookie(&http.Cookie{Name: c.opts.CookieName, Value: c.opts.CookieValue})
	}
}

// httpError builds a KindHTTP error, pulling the message from an
// {"error": ...} or {"message": ...} body when the server sent one.
func (c *Client) httpError(op string, resp *http.Response) error {
	apiErr := &Error{Kind: KindHTTP, Op: op, Status: resp.StatusCode}

	if resp.StatusCode == http.StatusUnauthorized {
		apiErr.Message = "Not authenticated"
		return apiErr
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(data) > 0 {
		var body successResponse
		if sonic.Unmarshal(data, &body) == nil {
			apiErr.Message = orUnknown(body.Error, body.Message)
		}
	}
	if apiErr.Message == "" || apiErr.Message == "Unknown error" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	apiErr.Err = errors.New(resp.Status)
	return apiErr
}

func orUnknown(candidates ...string) string {
	for _, s := range candidates {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return "Unknown error"
}
