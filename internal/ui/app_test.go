package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tgienger/taskdesk/internal/models"
	"github.com/tgienger/taskdesk/internal/state"
	"github.com/tgienger/taskdesk/internal/ui/views"
)

type stubRemote struct {
	tasks []models.Task
}

func (s *stubRemote) ListTasks(ctx context.Context) ([]models.Task, error) {
	return s.tasks, nil
}

func (s *stubRemote) CreateTask(ctx context.Context, req models.CreateTaskRequest) (models.Task, error) {
	return models.Task{}, errors.New("not used")
}

func (s *stubRemote) ListComments(ctx context.Context, taskID int64) ([]models.Comment, error) {
	return []models.Comment{}, nil
}

func (s *stubRemote) CreateComment(ctx context.Context, req models.CreateCommentRequest) (models.Comment, error) {
	return models.Comment{}, errors.New("not used")
}

func (s *stubRemote) UpdateComment(ctx context.Context, id int64, req models.UpdateCommentRequest) (models.Comment, error) {
	return models.Comment{}, errors.New("not used")
}

func (s *stubRemote) DeleteComment(ctx context.Context, id int64) error {
	return nil
}

type memSettings struct {
	lastTaskID int64
	writes     int
}

func (m *memSettings) LastTaskID() (int64, error) { return m.lastTaskID, nil }

func (m *memSettings) SetLastTaskID(id int64) error {
	m.lastTaskID = id
	m.writes++
	return nil
}

var sampleTasks = []models.Task{
	{ID: 1, Title: "Write report", Description: "d", Status: models.StatusPending},
	{ID: 2, Title: "Review", Description: "d", Status: models.StatusCompleted},
}

func newTestApp(lastTaskID int64) (*App, *state.Controller, *memSettings) {
	ctrl := state.New(&stubRemote{tasks: sampleTasks}, zerolog.Nop())
	settings := &memSettings{lastTaskID: lastTaskID}
	app := NewApp(ctrl, settings, zerolog.Nop())
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app, ctrl, settings
}

func TestRestoresLastTask(t *testing.T) {
	app, ctrl, settings := newTestApp(2)
	app.Init()

	_, cmd := app.Update(state.TasksLoadedMsg{Tasks: sampleTasks})
	if cmd == nil {
		t.Fatal("restore did not start a comment load")
	}
	if app.currentView != ViewTaskDetail {
		t.Errorf("view = %v, want task detail", app.currentView)
	}
	if ctrl.SelectedID() != 2 || settings.lastTaskID != 2 {
		t.Errorf("selected = %d, saved = %d, want 2", ctrl.SelectedID(), settings.lastTaskID)
	}

	// only the first load restores
	app.Update(views.BackToTasks{})
	app.Update(state.TasksLoadedMsg{Tasks: sampleTasks})
	if app.currentView != ViewTasks {
		t.Error("second task load reopened the detail screen")
	}
}

func TestRestoreSkipsMissingTask(t *testing.T) {
	app, ctrl, _ := newTestApp(99)
	app.Init()

	_, cmd := app.Update(state.TasksLoadedMsg{Tasks: sampleTasks})
	if cmd != nil || app.currentView != ViewTasks || ctrl.SelectedID() != 0 {
		t.Errorf("missing task restored: view=%v selected=%d", app.currentView, ctrl.SelectedID())
	}
}

func TestRestoreWaitsForSuccessfulLoad(t *testing.T) {
	app, _, _ := newTestApp(1)
	app.Init()

	app.Update(state.TasksLoadedMsg{Err: errors.New("connection refused")})
	if app.currentView != ViewTasks {
		t.Fatal("restored after a failed load")
	}
	if !strings.Contains(app.View(), "Failed to load tasks. Please try again.") {
		t.Error("error banner not rendered")
	}

	app.Update(state.TasksLoadedMsg{Tasks: sampleTasks})
	if app.currentView != ViewTaskDetail {
		t.Error("did not restore after the retry succeeded")
	}
}

func TestSelectAndBack(t *testing.T) {
	app, ctrl, settings := newTestApp(0)
	app.Update(state.TasksLoadedMsg{Tasks: sampleTasks})

	app.Update(views.SelectedTask{ID: 1})
	if app.currentView != ViewTaskDetail || ctrl.SelectedID() != 1 || settings.lastTaskID != 1 {
		t.Fatalf("view=%v selected=%d saved=%d", app.currentView, ctrl.SelectedID(), settings.lastTaskID)
	}
	if !strings.Contains(app.View(), "Write report") {
		t.Error("detail screen does not show the task")
	}

	app.Update(views.BackToTasks{})
	if app.currentView != ViewTasks || ctrl.SelectedID() != 0 || settings.lastTaskID != 0 {
		t.Errorf("after back: view=%v selected=%d saved=%d", app.currentView, ctrl.SelectedID(), settings.lastTaskID)
	}
}

func TestStatusBarShowsPendingWork(t *testing.T) {
	app, ctrl, _ := newTestApp(0)

	if !strings.Contains(app.View(), "ready") {
		t.Error("idle status bar missing")
	}
	ctrl.LoadTasks()
	if !strings.Contains(app.View(), "load tasks...") {
		t.Error("pending load not shown in status bar")
	}
}

func TestDismissErrorFromKeyboard(t *testing.T) {
	app, ctrl, _ := newTestApp(0)
	app.Update(state.TasksLoadedMsg{Err: errors.New("boom")})

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if ctrl.Err() != "" {
		t.Errorf("error = %q after dismiss", ctrl.Err())
	}
}
