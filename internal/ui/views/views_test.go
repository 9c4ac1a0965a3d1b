package views

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tgienger/taskdesk/internal/models"
	"github.com/tgienger/taskdesk/internal/state"
)

type fakeRemote struct {
	tasks    []models.Task
	comments map[int64][]models.Comment
	nextID   int64

	createTaskCalls    int
	createCommentCalls int
	updateCommentCalls int
	deleteCommentCalls int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		tasks: []models.Task{
			{ID: 1, Title: "Write report", Description: "first draft", Status: models.StatusPending},
			{ID: 2, Title: "Review", Description: "second pass", Status: models.StatusInProgress},
		},
		comments: map[int64][]models.Comment{
			1: {{ID: 7, TaskID: 1, Content: "looks good"}},
		},
		nextID: 100,
	}
}

func (f *fakeRemote) ListTasks(ctx context.Context) ([]models.Task, error) {
	return append([]models.Task(nil), f.tasks...), nil
}

func (f *fakeRemote) CreateTask(ctx context.Context, req models.CreateTaskRequest) (models.Task, error) {
	f.createTaskCalls++
	f.nextID++
	t := models.Task{ID: f.nextID, Title: req.Title, Description: req.Description, Status: req.Status}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeRemote) ListComments(ctx context.Context, taskID int64) ([]models.Comment, error) {
	return append([]models.Comment(nil), f.comments[taskID]...), nil
}

func (f *fakeRemote) CreateComment(ctx context.Context, req models.CreateCommentRequest) (models.Comment, error) {
	f.createCommentCalls++
	f.nextID++
	c := models.Comment{ID: f.nextID, TaskID: req.TaskID, Content: req.Content}
	f.comments[req.TaskID] = append(f.comments[req.TaskID], c)
	return c, nil
}

func (f *fakeRemote) UpdateComment(ctx context.Context, id int64, req models.UpdateCommentRequest) (models.Comment, error) {
	f.updateCommentCalls++
	for taskID, list := range f.comments {
		for i, c := range list {
			if c.ID == id {
				list[i].Content = req.Content
				f.comments[taskID] = list
				return list[i], nil
			}
		}
	}
	return models.Comment{}, nil
}

func (f *fakeRemote) DeleteComment(ctx context.Context, id int64) error {
	f.deleteCommentCalls++
	for taskID, list := range f.comments {
		for i, c := range list {
			if c.ID == id {
				f.comments[taskID] = append(list[:i:i], list[i+1:]...)
			}
		}
	}
	return nil
}

var (
	_ tea.Model = (*TaskListView)(nil)
	_ tea.Model = (*TaskDetailView)(nil)
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	ctrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

// deliver runs a controller command and reconciles its result
func deliver(t *testing.T, ctrl *state.Controller, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if !ctrl.Update(cmd()) {
		t.Fatal("controller did not handle the result")
	}
}

func newListView(t *testing.T) (*TaskListView, *state.Controller, *fakeRemote) {
	t.Helper()
	remote := newFakeRemote()
	ctrl := state.New(remote, zerolog.Nop())
	v := NewTaskListView(ctrl)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	deliver(t, ctrl, v.Init())
	v.Sync()
	return v, ctrl, remote
}

func newDetailView(t *testing.T) (*TaskDetailView, *state.Controller, *fakeRemote) {
	t.Helper()
	remote := newFakeRemote()
	ctrl := state.New(remote, zerolog.Nop())
	deliver(t, ctrl, ctrl.LoadTasks())
	deliver(t, ctrl, ctrl.SelectTask(1))

	v := NewTaskDetailView(ctrl)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	v.Sync()
	return v, ctrl, remote
}

func TestTaskListEnterSelectsTask(t *testing.T) {
	v, _, _ := newListView(t)

	_, cmd := v.Update(enter)
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	sel, ok := cmd().(SelectedTask)
	if !ok || sel.ID != 1 {
		t.Errorf("enter = %#v, want SelectedTask{ID: 1}", sel)
	}

	if !strings.Contains(v.View(), "Write report") {
		t.Error("task title not rendered")
	}
}

func TestCreateTaskFormSubmitsOnce(t *testing.T) {
	v, ctrl, remote := newListView(t)

	v.Update(runes("n"))
	if !v.Creating() {
		t.Fatal("n did not open the form")
	}
	v.Update(runes("Ship it"))
	v.Update(tab)
	v.Update(runes("before friday"))

	_, cmd := v.Update(ctrlS)
	if cmd == nil {
		t.Fatal("first submit produced no command")
	}
	if _, again := v.Update(ctrlS); again != nil {
		t.Error("second submit while pending produced a command")
	}
	if !strings.Contains(v.View(), "Creating...") {
		t.Error("submit button not disabled while pending")
	}

	deliver(t, ctrl, cmd)
	v.Sync()

	if remote.createTaskCalls != 1 {
		t.Errorf("CreateTask called %d times, want 1", remote.createTaskCalls)
	}
	if v.Creating() {
		t.Error("form still open after successful create")
	}
	tasks := ctrl.Tasks()
	if last := tasks[len(tasks)-1]; last.Title != "Ship it" || last.Description != "before friday" || last.Status != models.StatusPending {
		t.Errorf("created task = %+v", last)
	}
}

func TestCreateTaskFormValidation(t *testing.T) {
	v, ctrl, remote := newListView(t)

	v.Update(runes("n"))
	_, cmd := v.Update(ctrlS)
	if cmd != nil {
		t.Fatal("empty form produced a command")
	}
	if !v.Creating() || v.formErr == "" {
		t.Errorf("creating=%v formErr=%q, want form open with error", v.Creating(), v.formErr)
	}
	if remote.createTaskCalls != 0 || ctrl.Loading(state.OpCreateTask) {
		t.Error("invalid form reached the remote")
	}

	v.Update(esc)
	if v.Creating() {
		t.Error("esc did not close the form")
	}
}

func TestCreateTaskFormStatusCycle(t *testing.T) {
	v, _, _ := newListView(t)

	v.Update(runes("n"))
	v.Update(tab)
	v.Update(tab)
	v.Update(runes(" "))
	if v.newStatus != models.StatusInProgress {
		t.Errorf("status = %q, want in_progress", v.newStatus)
	}
	v.Update(enter)
	v.Update(enter)
	if v.newStatus != models.StatusPending {
		t.Errorf("status = %q, want wrap to pending", v.newStatus)
	}
}

func TestCommentInputClearedOnDispatch(t *testing.T) {
	v, ctrl, remote := newDetailView(t)

	v.Update(runes("c"))
	if !v.CommentInputFocused() {
		t.Fatal("c did not focus the comment input")
	}
	v.Update(runes("second"))

	_, cmd := v.Update(ctrlS)
	if cmd == nil {
		t.Fatal("submit produced no command")
	}
	if v.commentInput.Value() != "" {
		t.Errorf("input = %q, want cleared on dispatch", v.commentInput.Value())
	}

	deliver(t, ctrl, cmd)
	v.Sync()

	if remote.createCommentCalls != 1 {
		t.Errorf("CreateComment called %d times", remote.createCommentCalls)
	}
	comments := ctrl.Comments()
	if len(comments) != 2 || comments[1].Content != "second" {
		t.Errorf("comments = %+v", comments)
	}
}

func TestEmptyEditStaysInEditMode(t *testing.T) {
	v, _, remote := newDetailView(t)

	v.Update(runes("e"))
	if !v.Editing() {
		t.Fatal("e did not start editing")
	}
	if v.editInput.Value() != "looks good" {
		t.Errorf("edit input = %q, want current content", v.editInput.Value())
	}

	v.editInput.SetValue("   ")
	_, cmd := v.Update(ctrlS)
	if cmd != nil {
		t.Error("blank edit produced a command")
	}
	if !v.Editing() || v.editErr == "" {
		t.Errorf("editing=%v editErr=%q, want still editing with error", v.Editing(), v.editErr)
	}
	if remote.updateCommentCalls != 0 {
		t.Error("blank edit reached the remote")
	}

	v.Update(esc)
	if v.Editing() {
		t.Error("esc did not cancel editing")
	}
}

func TestEditCommentSaves(t *testing.T) {
	v, ctrl, _ := newDetailView(t)

	v.Update(runes("e"))
	v.editInput.SetValue("looks great")
	_, cmd := v.Update(ctrlS)
	if v.Editing() {
		t.Error("still editing after dispatch")
	}
	deliver(t, ctrl, cmd)
	v.Sync()

	if got := ctrl.Comments()[0].Content; got != "looks great" {
		t.Errorf("content = %q", got)
	}
}

func TestDeleteCommentNeedsConfirmation(t *testing.T) {
	v, ctrl, remote := newDetailView(t)

	v.Update(runes("d"))
	if !strings.Contains(v.View(), "Delete Comment?") {
		t.Fatal("no confirmation shown")
	}
	if _, cmd := v.Update(runes("n")); cmd != nil {
		t.Error("declining produced a command")
	}
	if remote.deleteCommentCalls != 0 {
		t.Error("declined delete reached the remote")
	}

	v.Update(runes("d"))
	_, cmd := v.Update(runes("y"))
	deliver(t, ctrl, cmd)
	v.Sync()

	if len(ctrl.Comments()) != 0 {
		t.Errorf("comments = %+v, want empty", ctrl.Comments())
	}
	if !strings.Contains(v.View(), "No comments yet") {
		t.Error("empty state not rendered")
	}
}

func TestDetailRendersStamps(t *testing.T) {
	v, ctrl, remote := newDetailView(t)

	created := models.NewTimestamp(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	remote.comments[1] = []models.Comment{
		{ID: 7, TaskID: 1, Content: "fresh", CreatedAt: created, UpdatedAt: created},
		{ID: 8, TaskID: 1, Content: "changed", CreatedAt: created, UpdatedAt: models.NewTimestamp(created.Add(90 * time.Second))},
	}
	deliver(t, ctrl, ctrl.LoadComments())
	v.Sync()

	out := v.View()
	if !strings.Contains(out, "Posted: ") || !strings.Contains(out, "Edited: ") {
		t.Errorf("stamps missing from view:\n%s", out)
	}
}

func TestDetailWithoutSelection(t *testing.T) {
	v, ctrl, _ := newDetailView(t)

	ctrl.ClearSelection()
	v.Sync()
	if !strings.Contains(v.View(), "Select a Task") {
		t.Error("placeholder not rendered without a selection")
	}

	// selection pointing at a task that is not in the list
	deliver(t, ctrl, ctrl.SelectTask(42))
	if !strings.Contains(v.View(), "Select a Task") {
		t.Error("placeholder not rendered for a dangling selection")
	}

	if _, cmd := v.Update(runes("c")); cmd != nil || v.CommentInputFocused() {
		t.Error("comment input opened without a task")
	}
}

func TestDanglingSelectionIgnoresEditAndDelete(t *testing.T) {
	v, ctrl, remote := newDetailView(t)

	// comments exist for the task id, but the task is gone from the list
	remote.comments[42] = []models.Comment{{ID: 9, TaskID: 42, Content: "orphan"}}
	deliver(t, ctrl, ctrl.SelectTask(42))
	v.Sync()
	if len(ctrl.Comments()) != 1 {
		t.Fatalf("comments = %+v, want the orphan loaded", ctrl.Comments())
	}

	if _, cmd := v.Update(runes("e")); cmd != nil || v.Editing() {
		t.Error("e started an edit without a task on screen")
	}
	v.Update(runes("d"))
	if strings.Contains(v.View(), "Delete Comment?") {
		t.Error("d asked to delete without a task on screen")
	}
	if _, cmd := v.Update(runes("y")); cmd != nil || remote.deleteCommentCalls != 0 {
		t.Error("delete reached the remote without a task on screen")
	}
}
