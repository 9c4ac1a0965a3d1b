package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tgienger/taskdesk/internal/models"
)

const (
	tasksPath    = "/api/tasks"
	commentsPath = "/api/comments"

	// maxErrorBody caps how much of a failed response is kept for the message
	maxErrorBody = 4 << 10
)

// Client talks to the task/comment service. Each method is a single round
// trip: no retries, no caching.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets a per-request timeout; zero keeps the transport default.
// The http.Client passed to WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger attaches a logger for request tracing
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log.With().Str("component", "api").Logger() }
}

// NewClient creates a client for the service at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.client
		hc.Timeout = c.timeout
		c.client = &hc
	}
	return c
}

// ListTasks fetches all tasks in server order
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, "list tasks", http.MethodGet, tasksPath, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// CreateTask creates a task; the server assigns id and timestamps
func (c *Client) CreateTask(ctx context.Context, req models.CreateTaskRequest) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, "create task", http.MethodPost, tasksPath, req, &task)
	return task, err
}

// GetTask fetches a single task
func (c *Client) GetTask(ctx context.Context, id int64) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, "get task", http.MethodGet, itemPath(tasksPath, id), nil, &task)
	return task, err
}

// UpdateTask applies a partial update and returns the stored record
func (c *Client) UpdateTask(ctx context.Context, id int64, req models.UpdateTaskRequest) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, "update task", http.MethodPut, itemPath(tasksPath, id), req, &task)
	return task, err
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, "delete task", http.MethodDelete, itemPath(tasksPath, id), nil, nil)
}

// ListComments fetches the comments of one task. A task without comments
// yields an empty slice, not an error.
func (c *Client) ListComments(ctx context.Context, taskID int64) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.do(ctx, "list comments", http.MethodGet, itemPath(commentsPath, taskID), nil, &comments); err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// CreateComment attaches a new comment to req.TaskID
func (c *Client) CreateComment(ctx context.Context, req models.CreateCommentRequest) (models.Comment, error) {
	var comment models.Comment
	err := c.do(ctx, "create comment", http.MethodPost, commentsPath, req, &comment)
	return comment, err
}

// UpdateComment replaces a comment's content and returns the full record,
// including the server's new updated_at.
func (c *Client) UpdateComment(ctx context.Context, id int64, req models.UpdateCommentRequest) (models.Comment, error) {
	var comment models.Comment
	err := c.do(ctx, "update comment", http.MethodPut, itemPath(commentsPath, id), req, &comment)
	return comment, err
}

// DeleteComment removes a comment. A 404 counts as success: the comment is
// gone either way, so callers can remove it locally.
func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	err := c.do(ctx, "delete comment", http.MethodDelete, itemPath(commentsPath, id), nil, nil)

	var ve *ValidationError
	if errors.As(err, &ve) && ve.StatusCode == http.StatusNotFound {
		c.log.Debug().Int64("comment_id", id).Msg("comment already gone, treating delete as done")
		return nil
	}
	return err
}

func itemPath(collection string, id int64) string {
	return collection + "/" + strconv.FormatInt(id, 10)
}

// do performs one request. in is JSON-encoded when non-nil; out is decoded
// from a 2xx body when non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("request_id", requestID).Str("method", method).Str("path", path).Msg("request failed")
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errorMessage(resp.Body)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return &ValidationError{Op: op, StatusCode: resp.StatusCode, Message: msg}
		}
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(orDefault(msg, resp.Status))}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorMessage extracts {"error": "..."} when present, otherwise the raw body
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
