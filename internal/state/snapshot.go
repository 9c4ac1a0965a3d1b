package state

import (
	"github.com/tgienger/taskdesk/internal/models"
)

// State is a consistent copy of the controller's data for rendering
type State struct {
	Tasks      []models.Task
	Comments   []models.Comment
	SelectedID int64 // 0 = none
	Loading    [numOps]bool
	Err        string
}

// IsLoading reports whether op is in flight in this snapshot
func (s State) IsLoading(op Op) bool {
	return s.Loading[op]
}

// SelectedTask resolves the selection against the task list. A selection
// whose task is no longer listed resolves to nothing.
func (s State) SelectedTask() (models.Task, bool) {
	if s.SelectedID == 0 {
		return models.Task{}, false
	}
	for _, t := range s.Tasks {
		if t.ID == s.SelectedID {
			return t, true
		}
	}
	return models.Task{}, false
}

// Snapshot copies the current state
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return State{
		Tasks:      append([]models.Task(nil), c.tasks...),
		Comments:   append([]models.Comment(nil), c.comments...),
		SelectedID: c.selected,
		Loading:    c.loading,
		Err:        c.err,
	}
}

// Tasks returns a copy of the task collection
func (c *Controller) Tasks() []models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Task(nil), c.tasks...)
}

// Comments returns a copy of the selected task's comments
func (c *Controller) Comments() []models.Comment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Comment(nil), c.comments...)
}

// SelectedID returns the selected task id, or 0
func (c *Controller) SelectedID() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// SelectedTask returns the selected task if it is still in the task list
func (c *Controller) SelectedTask() (models.Task, bool) {
	return c.Snapshot().SelectedTask()
}

// Loading reports whether op is in flight
func (c *Controller) Loading(op Op) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading[op]
}

// Busy reports whether any operation is in flight
func (c *Controller) Busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, l := range c.loading {
		if l {
			return true
		}
	}
	return false
}

// Err returns the current error message, or ""
func (c *Controller) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}
