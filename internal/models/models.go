package models

import (
	"fmt"
	"strings"
)

// Status is the lifecycle label of a task
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every valid status in display order
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// ParseStatus matches s against the known statuses, ignoring case and surrounding space
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Valid reports whether s is one of the known statuses (exact match)
func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Is compares two statuses case-insensitively
func (s Status) Is(other Status) bool {
	return strings.EqualFold(string(s), string(other))
}

// Label returns the human form, e.g. "in progress"
func (s Status) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// Next cycles to the following status, wrapping around
func (s Status) Next() Status {
	for i, st := range Statuses {
		if s.Is(st) {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusPending
}

// Task represents a single task
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// Edited reports whether the server touched the record after creation
func (t Task) Edited() bool {
	return !t.UpdatedAt.Equal(t.CreatedAt.Time)
}

// Comment represents a comment on a task
type Comment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// Edited reports whether the comment content was changed after posting
func (c Comment) Edited() bool {
	return !c.UpdatedAt.Equal(c.CreatedAt.Time)
}

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/{id}; nil fields are left alone
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

// CreateCommentRequest is the body of POST /api/comments
type CreateCommentRequest struct {
	TaskID  int64  `json:"task_id"`
	Content string `json:"content"`
}

// UpdateCommentRequest is the body of PUT /api/comments/{id}
type UpdateCommentRequest struct {
	Content string `json:"content"`
}
