// Package state owns the client's view of tasks and comments and keeps it in
// step with the remote service.
//
// Every intent returns a tea.Cmd that performs the remote call off the update
// loop. The command's result comes back as a message which must be handed to
// Controller.Update; that is the only place remote results touch state.
package state

import (
	"context"
	"errors"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tgienger/taskdesk/internal/models"
)

// Remote is the subset of the API client the controller depends on
type Remote interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, req models.CreateTaskRequest) (models.Task, error)
	ListComments(ctx context.Context, taskID int64) ([]models.Comment, error)
	CreateComment(ctx context.Context, req models.CreateCommentRequest) (models.Comment, error)
	UpdateComment(ctx context.Context, id int64, req models.UpdateCommentRequest) (models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

// Local validation errors. These are returned before any request is sent.
var (
	ErrEmptyTitle       = errors.New("title is required")
	ErrEmptyDescription = errors.New("description is required")
	ErrInvalidStatus    = errors.New("status must be pending, in_progress or completed")
	ErrEmptyContent     = errors.New("comment content is required")
	ErrNoSelection      = errors.New("no task selected")
	ErrBusy             = errors.New("operation already in progress")
)

// Op identifies an operation class; each has its own in-flight flag
type Op int

const (
	OpLoadTasks Op = iota
	OpLoadComments
	OpCreateTask
	OpCreateComment
	OpUpdateComment
	OpDeleteComment

	numOps
)

func (o Op) String() string {
	switch o {
	case OpLoadTasks:
		return "load_tasks"
	case OpLoadComments:
		return "load_comments"
	case OpCreateTask:
		return "create_task"
	case OpCreateComment:
		return "create_comment"
	case OpUpdateComment:
		return "update_comment"
	case OpDeleteComment:
		return "delete_comment"
	}
	return "unknown"
}

// failureMessage is what the user sees; validation and transport failures
// are not distinguished.
func (o Op) failureMessage() string {
	switch o {
	case OpLoadTasks:
		return "Failed to load tasks. Please try again."
	case OpLoadComments:
		return "Failed to load comments. Please try again."
	case OpCreateTask:
		return "Failed to create task. Please try again."
	case OpCreateComment:
		return "Failed to create comment. Please try again."
	case OpUpdateComment:
		return "Failed to update comment. Please try again."
	case OpDeleteComment:
		return "Failed to delete comment. Please try again."
	}
	return "Something went wrong. Please try again."
}

// Controller is the single writer of client state
type Controller struct {
	remote Remote
	log    zerolog.Logger

	mu       sync.RWMutex
	tasks    []models.Task
	comments []models.Comment
	selected int64 // 0 = no selection
	// generation changes on every selection change; comment loads carry the
	// value current at dispatch and are dropped when it no longer matches.
	generation uint64
	loading    [numOps]bool
	err        string
}

// New creates a controller backed by remote
func New(remote Remote, log zerolog.Logger) *Controller {
	return &Controller{
		remote: remote,
		log:    log.With().Str("component", "state").Logger(),
	}
}

// LoadTasks fetches the full task list. Ignored while a load is pending.
func (c *Controller) LoadTasks() tea.Cmd {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading[OpLoadTasks] {
		return nil
	}
	c.begin(OpLoadTasks)

	return func() tea.Msg {
		tasks, err := c.remote.ListTasks(context.Background())
		return TasksLoadedMsg{Tasks: tasks, Err: err}
	}
}

// SelectTask makes id the selected task, drops the previous task's comments
// and starts loading the new task's comments.
func (c *Controller) SelectTask(id int64) tea.Cmd {
	if id == 0 {
		c.ClearSelection()
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.selected = id
	c.generation++
	c.comments = nil
	return c.loadCommentsLocked()
}

// ClearSelection deselects and empties the comment collection
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selected = 0
	c.generation++
	c.comments = nil
	c.loading[OpLoadComments] = false
}

// LoadComments reloads comments for the current selection. Any load still
// in flight becomes stale.
func (c *Controller) LoadComments() tea.Cmd {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == 0 {
		return nil
	}
	c.generation++
	return c.loadCommentsLocked()
}

func (c *Controller) loadCommentsLocked() tea.Cmd {
	c.begin(OpLoadComments)

	taskID, gen := c.selected, c.generation
	return func() tea.Msg {
		comments, err := c.remote.ListComments(context.Background(), taskID)
		return CommentsLoadedMsg{TaskID: taskID, Generation: gen, Comments: comments, Err: err}
	}
}

// CreateTask validates locally and submits a new task
func (c *Controller) CreateTask(title, description string, status models.Status) (tea.Cmd, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if description == "" {
		return nil, ErrEmptyDescription
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading[OpCreateTask] {
		return nil, ErrBusy
	}
	c.begin(OpCreateTask)

	req := models.CreateTaskRequest{Title: title, Description: description, Status: status}
	return func() tea.Msg {
		task, err := c.remote.CreateTask(context.Background(), req)
		return TaskCreatedMsg{Task: task, Err: err}
	}, nil
}

// CreateComment posts content on the selected task. The task id is fixed
// now, not when the response arrives.
func (c *Controller) CreateComment(content string) (tea.Cmd, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == 0 {
		return nil, ErrNoSelection
	}
	if c.loading[OpCreateComment] {
		return nil, ErrBusy
	}
	c.begin(OpCreateComment)

	req := models.CreateCommentRequest{TaskID: c.selected, Content: content}
	return func() tea.Msg {
		comment, err := c.remote.CreateComment(context.Background(), req)
		return CommentCreatedMsg{TaskID: req.TaskID, Comment: comment, Err: err}
	}, nil
}

// UpdateComment replaces a comment's content. Blank content is refused
// locally and nothing is sent.
func (c *Controller) UpdateComment(id int64, content string) (tea.Cmd, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading[OpUpdateComment] {
		return nil, ErrBusy
	}
	c.begin(OpUpdateComment)

	return func() tea.Msg {
		comment, err := c.remote.UpdateComment(context.Background(), id, models.UpdateCommentRequest{Content: content})
		return CommentUpdatedMsg{ID: id, Comment: comment, Err: err}
	}, nil
}

// DeleteComment removes a comment. Ignored while another delete is pending.
func (c *Controller) DeleteComment(id int64) tea.Cmd {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading[OpDeleteComment] {
		return nil
	}
	c.begin(OpDeleteComment)

	return func() tea.Msg {
		err := c.remote.DeleteComment(context.Background(), id)
		return CommentDeletedMsg{ID: id, Err: err}
	}
}

// DismissError clears the error message without touching collections
func (c *Controller) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = ""
}

// begin marks op pending and clears the previous error. Callers hold mu.
func (c *Controller) begin(op Op) {
	c.loading[op] = true
	c.err = ""
}

// fail records a failed op. Callers hold mu.
func (c *Controller) fail(op Op, err error) {
	c.err = op.failureMessage()
	c.log.Error().Err(err).Str("op", op.String()).Msg("remote call failed")
}
