package state

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/taskdesk/internal/models"
)

// TasksLoadedMsg carries the result of LoadTasks
type TasksLoadedMsg struct {
	Tasks []models.Task
	Err   error
}

// CommentsLoadedMsg carries the result of a comment load, tagged with the
// selection it was issued for
type CommentsLoadedMsg struct {
	TaskID     int64
	Generation uint64
	Comments   []models.Comment
	Err        error
}

// TaskCreatedMsg carries the result of CreateTask
type TaskCreatedMsg struct {
	Task models.Task
	Err  error
}

// CommentCreatedMsg carries the result of CreateComment
type CommentCreatedMsg struct {
	TaskID  int64
	Comment models.Comment
	Err     error
}

// CommentUpdatedMsg carries the result of UpdateComment
type CommentUpdatedMsg struct {
	ID      int64
	Comment models.Comment
	Err     error
}

// CommentDeletedMsg carries the result of DeleteComment
type CommentDeletedMsg struct {
	ID  int64
	Err error
}

// Update reconciles a result message into state. It reports whether msg
// belonged to the controller.
func (c *Controller) Update(msg tea.Msg) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch msg := msg.(type) {
	case TasksLoadedMsg:
		c.loading[OpLoadTasks] = false
		if msg.Err != nil {
			// keep the previous list: stale is better than half-applied
			c.fail(OpLoadTasks, msg.Err)
			return true
		}
		c.tasks = append([]models.Task(nil), msg.Tasks...)
		c.log.Debug().Int("count", len(c.tasks)).Msg("tasks loaded")

	case CommentsLoadedMsg:
		if msg.Generation != c.generation || msg.TaskID != c.selected {
			c.log.Debug().
				Int64("task_id", msg.TaskID).
				Uint64("generation", msg.Generation).
				Msg("discarding stale comment load")
			return true
		}
		c.loading[OpLoadComments] = false
		if msg.Err != nil {
			// never leave another task's comments on screen
			c.comments = nil
			c.fail(OpLoadComments, msg.Err)
			return true
		}
		c.comments = append([]models.Comment(nil), msg.Comments...)

	case TaskCreatedMsg:
		c.loading[OpCreateTask] = false
		if msg.Err != nil {
			c.fail(OpCreateTask, msg.Err)
			return true
		}
		c.tasks = append(c.tasks, msg.Task)

	case CommentCreatedMsg:
		c.loading[OpCreateComment] = false
		if msg.Err != nil {
			c.fail(OpCreateComment, msg.Err)
			return true
		}
		if msg.TaskID != c.selected || c.commentIndex(msg.Comment.ID) >= 0 {
			// selection moved on, or a reload already brought it in
			return true
		}
		c.comments = append(c.comments, msg.Comment)

	case CommentUpdatedMsg:
		c.loading[OpUpdateComment] = false
		if msg.Err != nil {
			c.fail(OpUpdateComment, msg.Err)
			return true
		}
		if i := c.commentIndex(msg.ID); i >= 0 {
			c.comments[i] = msg.Comment
		}

	case CommentDeletedMsg:
		c.loading[OpDeleteComment] = false
		if msg.Err != nil {
			c.fail(OpDeleteComment, msg.Err)
			return true
		}
		if i := c.commentIndex(msg.ID); i >= 0 {
			c.comments = append(c.comments[:i:i], c.comments[i+1:]...)
		}

	default:
		return false
	}
	return true
}

func (c *Controller) commentIndex(id int64) int {
	for i, cm := range c.comments {
		if cm.ID == id {
			return i
		}
	}
	return -1
}
