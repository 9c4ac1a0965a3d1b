package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tgienger/taskdesk/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSettings(t *testing.T) {
	database := newTestDB(t)

	if v, err := database.GetSetting("missing"); err != nil || v != "" {
		t.Fatalf("GetSetting(missing) = %q, %v", v, err)
	}

	if err := database.SetLastTaskID(42); err != nil {
		t.Fatal(err)
	}
	if id, err := database.LastTaskID(); err != nil || id != 42 {
		t.Fatalf("LastTaskID() = %d, %v; want 42", id, err)
	}

	if err := database.SetLastTaskID(0); err != nil {
		t.Fatal(err)
	}
	if id, err := database.LastTaskID(); err != nil || id != 0 {
		t.Fatalf("LastTaskID() after clear = %d, %v", id, err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	database := newTestDB(t)

	first, err := database.CreateTask("Write report", "draft it", models.StatusPending)
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	second, err := database.CreateTask("Review", "", models.StatusInProgress)
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if first.CreatedAt.IsZero() || first.UpdatedAt.Before(first.CreatedAt.Time) {
		t.Errorf("timestamps = %v / %v", first.CreatedAt, first.UpdatedAt)
	}

	tasks, err := database.ListTasks()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 || tasks[0].ID != first.ID || tasks[1].ID != second.ID {
		t.Fatalf("ListTasks() = %+v, want insertion order", tasks)
	}

	done := models.StatusCompleted
	updated, err := database.UpdateTask(first.ID, TaskUpdate{Status: &done})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if updated.Status != models.StatusCompleted || updated.Title != "Write report" {
		t.Errorf("UpdateTask() = %+v", updated)
	}

	if _, err := database.UpdateTask(999, TaskUpdate{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTask(999) error = %v, want ErrNotFound", err)
	}
	if err := database.DeleteTask(second.ID); err != nil {
		t.Fatal(err)
	}
	if err := database.DeleteTask(second.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteTask error = %v, want ErrNotFound", err)
	}
	if n, _ := database.TaskCount(); n != 1 {
		t.Errorf("TaskCount() = %d, want 1", n)
	}
}

func TestStatusConstraint(t *testing.T) {
	database := newTestDB(t)
	if _, err := database.CreateTask("t", "d", models.Status("done")); err == nil {
		t.Fatal("expected CHECK constraint failure for unknown status")
	}
}

func TestCommentLifecycle(t *testing.T) {
	database := newTestDB(t)
	task, err := database.CreateTask("t", "d", models.StatusPending)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := database.CreateComment(999, "orphan"); !errors.Is(err, ErrNotFound) {
		t.Errorf("CreateComment on missing task error = %v", err)
	}

	c1, err := database.CreateComment(task.ID, "looks good")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	c2, err := database.CreateComment(task.ID, "second")
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(5 * time.Millisecond)
	edited, err := database.UpdateComment(c1.ID, "looks great")
	if err != nil {
		t.Fatalf("UpdateComment() error = %v", err)
	}
	if edited.Content != "looks great" || !edited.UpdatedAt.After(edited.CreatedAt.Time) {
		t.Errorf("UpdateComment() = %+v", edited)
	}

	comments, err := database.GetTaskComments(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 2 || comments[0].ID != c1.ID || comments[1].ID != c2.ID {
		t.Fatalf("GetTaskComments() = %+v", comments)
	}

	if err := database.DeleteComment(c1.ID); err != nil {
		t.Fatal(err)
	}
	if err := database.DeleteComment(c1.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteComment error = %v", err)
	}
	if _, err := database.UpdateComment(c1.ID, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateComment on deleted error = %v", err)
	}

	empty, err := database.GetTaskComments(12345)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("GetTaskComments(unknown) = %#v, %v", empty, err)
	}
}

func TestDeleteTaskCascadesComments(t *testing.T) {
	database := newTestDB(t)
	task, _ := database.CreateTask("t", "d", models.StatusPending)
	comment, err := database.CreateComment(task.ID, "x")
	if err != nil {
		t.Fatal(err)
	}

	if err := database.DeleteTask(task.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := database.GetComment(comment.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("comment survived its task: %v", err)
	}
}
