package views

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdesk/internal/models"
	"github.com/tgienger/taskdesk/internal/state"
	"github.com/tgienger/taskdesk/internal/ui/keys"
	"github.com/tgienger/taskdesk/internal/ui/styles"
)

// TaskDetailView shows the selected task and its comments
type TaskDetailView struct {
	ctrl   *state.Controller
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int

	cursor  int
	scrollY int

	// New comment
	commentInput        textarea.Model
	commentInputFocused bool
	commentErr          string

	// Comment editing
	editing   bool
	editID    int64
	editInput textarea.Model
	editErr   string

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   int64

	showHelpPopup bool
}

// NewTaskDetailView creates the detail screen backed by ctrl
func NewTaskDetailView(ctrl *state.Controller) *TaskDetailView {
	commentInput := textarea.New()
	commentInput.Placeholder = "Add a comment..."
	commentInput.CharLimit = 2000
	commentInput.SetWidth(50)
	commentInput.SetHeight(3)
	commentInput.ShowLineNumbers = false

	editInput := textarea.New()
	editInput.CharLimit = 2000
	editInput.SetWidth(50)
	editInput.SetHeight(3)
	editInput.ShowLineNumbers = false

	return &TaskDetailView{
		ctrl:         ctrl,
		styles:       styles.NewStyles(),
		keys:         keys.DefaultKeyMap(),
		commentInput: commentInput,
		editInput:    editInput,
	}
}

// Init has nothing to load; the app selects the task
func (v *TaskDetailView) Init() tea.Cmd {
	return nil
}

// Reset drops per-task UI state when a different task is opened
func (v *TaskDetailView) Reset() {
	v.cursor = 0
	v.scrollY = 0
	v.commentInput.Reset()
	v.commentInput.Blur()
	v.commentInputFocused = false
	v.commentErr = ""
	v.cancelEdit()
	v.confirmingDelete = false
	v.showHelpPopup = false
}

// Sync keeps the cursor and edit state valid against the controller's
// comment list. The app calls it after every message the controller
// reconciles.
func (v *TaskDetailView) Sync() {
	comments := v.ctrl.Comments()
	if v.cursor >= len(comments) {
		v.cursor = max(0, len(comments)-1)
	}
	v.ensureVisible()

	if v.editing && indexOfComment(comments, v.editID) < 0 {
		// deleted or reloaded away while editing
		v.cancelEdit()
	}
}

// Editing reports whether a comment is being edited
func (v *TaskDetailView) Editing() bool {
	return v.editing
}

// CommentInputFocused reports whether the new comment input has focus
func (v *TaskDetailView) CommentInputFocused() bool {
	return v.commentInputFocused
}

func (v *TaskDetailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 50)
		v.commentInput.SetWidth(inputWidth)
		v.editInput.SetWidth(inputWidth)
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		if v.commentInputFocused {
			return v.updateCommentInput(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskDetailView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	comments := v.ctrl.Comments()
	// nothing on screen to act on while the selection dangles
	_, hasTask := v.ctrl.SelectedTask()

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToTasks{} }

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(comments)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Comment):
		if !hasTask {
			return v, nil
		}
		v.commentInputFocused = true
		v.commentErr = ""
		v.commentInput.Focus()
		return v, textarea.Blink

	case key.Matches(msg, v.keys.Edit):
		if hasTask && v.cursor < len(comments) {
			v.startEdit(comments[v.cursor])
			return v, textarea.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if hasTask && v.cursor < len(comments) {
			v.confirmingDelete = true
			v.deleteTargetID = comments[v.cursor].ID
		}
		return v, nil

	case key.Matches(msg, v.keys.Reload):
		return v, v.ctrl.LoadComments()

	case key.Matches(msg, v.keys.Dismiss):
		v.ctrl.DismissError()
		return v, nil

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}
	return v, nil
}

func (v *TaskDetailView) updateCommentInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.commentInputFocused = false
		v.commentInput.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Save):
		return v, v.submitComment()
	}

	var cmd tea.Cmd
	v.commentInput, cmd = v.commentInput.Update(msg)
	return v, cmd
}

// submitComment posts the comment input on the selected task. The input is
// cleared as soon as the request is dispatched.
func (v *TaskDetailView) submitComment() tea.Cmd {
	cmd, err := v.ctrl.CreateComment(v.commentInput.Value())
	if err != nil {
		v.commentErr = inputError(err)
		return nil
	}
	v.commentErr = ""
	v.commentInput.Reset()
	v.commentInputFocused = false
	v.commentInput.Blur()
	return cmd
}

func (v *TaskDetailView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.cancelEdit()
		return v, nil
	case key.Matches(msg, v.keys.Save):
		return v, v.saveEdit()
	}

	var cmd tea.Cmd
	v.editInput, cmd = v.editInput.Update(msg)
	return v, cmd
}

// saveEdit dispatches the edit. Blank content stays in edit mode and sends
// nothing.
func (v *TaskDetailView) saveEdit() tea.Cmd {
	cmd, err := v.ctrl.UpdateComment(v.editID, v.editInput.Value())
	if err != nil {
		v.editErr = inputError(err)
		if errors.Is(err, state.ErrEmptyContent) {
			v.editInput.Focus()
		}
		return nil
	}
	v.cancelEdit()
	return cmd
}

func (v *TaskDetailView) startEdit(c models.Comment) {
	v.editing = true
	v.editID = c.ID
	v.editErr = ""
	v.editInput.SetValue(c.Content)
	v.editInput.Focus()
}

func (v *TaskDetailView) cancelEdit() {
	v.editing = false
	v.editID = 0
	v.editErr = ""
	v.editInput.Reset()
	v.editInput.Blur()
}

func (v *TaskDetailView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		return v, v.ctrl.DeleteComment(v.deleteTargetID)
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskDetailView) visibleComments() int {
	// Each comment is a stamp line, one content line and a margin
	return max((v.height-22)/3, 1)
}

func (v *TaskDetailView) ensureVisible() {
	visible := v.visibleComments()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

// View renders the view
func (v *TaskDetailView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return renderDeleteConfirm(v.styles, "Delete Comment?", v.width, v.height)
	}

	snap := v.ctrl.Snapshot()
	task, ok := snap.SelectedTask()
	if !ok {
		return v.renderNoSelection()
	}
	return v.renderTask(task, snap)
}

func (v *TaskDetailView) renderNoSelection() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("Select a Task"),
		"",
		s.TitleMuted.Render("Press esc to pick a task from the list"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskDetailView) renderTask(task models.Task, snap state.State) string {
	s := v.styles
	textWidth := clamp(styles.ContentWidth(v.width)-10, 20, 70)
	labelStyle := s.TitleMuted

	descText := task.Description
	if descText == "" {
		descText = s.TitleMuted.Render("No description")
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.MarginBottom(1).Render(task.Title),
		s.StatusBadge(task.Status)+"  "+labelStyle.Render("Created: "+task.CreatedAt.Display()),
		"",
		labelStyle.Render("Description"),
		lipgloss.NewStyle().Width(textWidth).Render(descText),
	)

	commentsLabel := fmt.Sprintf("Comments (%d)", len(snap.Comments))
	if snap.IsLoading(state.OpLoadComments) {
		commentsLabel = "Comments (loading...)"
	}

	commentInputStyle := s.Input
	if v.commentInputFocused {
		commentInputStyle = s.InputFocused
	}

	rows := []string{
		header,
		"",
		labelStyle.Render(commentsLabel),
		v.renderComments(snap.Comments, textWidth),
		"",
		commentInputStyle.Render(v.commentInput.View()),
	}
	if v.commentErr != "" {
		rows = append(rows, s.FieldError.Render(v.commentErr))
	}
	rows = append(rows, "", v.renderHelp())

	padded := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterView(padded, v.width, v.height)
}

func (v *TaskDetailView) renderComments(comments []models.Comment, textWidth int) string {
	s := v.styles

	if len(comments) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			s.TitleMuted.Render("No comments yet"),
			s.TitleMuted.Render("Be the first to add a comment!"),
		)
	}

	end := min(v.scrollY+v.visibleComments(), len(comments))
	var lines []string
	for i := v.scrollY; i < end; i++ {
		c := comments[i]
		selected := i == v.cursor && !v.commentInputFocused

		stamp := "Posted: " + c.CreatedAt.Display()
		if c.Edited() {
			stamp = "Edited: " + c.UpdatedAt.Display()
		}

		marker := "  "
		if selected {
			marker = s.ListMarker.Render("▸ ")
		}

		var body string
		if v.editing && c.ID == v.editID {
			body = s.InputFocused.Render(v.editInput.View())
			if v.editErr != "" {
				body = lipgloss.JoinVertical(lipgloss.Left, body, s.FieldError.Render(v.editErr))
			}
		} else {
			style := lipgloss.NewStyle().Width(textWidth)
			if selected {
				style = style.Foreground(styles.Current.Primary)
			}
			body = style.Render(c.Content)
		}

		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			marker,
			lipgloss.JoinVertical(lipgloss.Left, s.TitleMuted.Render(stamp), body),
		))
	}
	if end < len(comments) || v.scrollY > 0 {
		lines = append(lines, s.TitleMuted.Render(fmt.Sprintf("%d-%d of %d", v.scrollY+1, end, len(comments))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *TaskDetailView) renderHelp() string {
	s := v.styles
	switch {
	case v.editing:
		return s.Help.Render(fmt.Sprintf("%s save • %s cancel",
			s.HelpKey.Render("ctrl+s"),
			s.HelpKey.Render("esc"),
		))
	case v.commentInputFocused:
		return s.Help.Render(fmt.Sprintf("%s submit • %s cancel",
			s.HelpKey.Render("ctrl+s"),
			s.HelpKey.Render("esc"),
		))
	}

	if contentWidth := styles.ContentWidth(v.width); contentWidth > 0 && contentWidth < 50 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	return s.Help.Render(fmt.Sprintf("%s comment • %s edit • %s delete • %s reload • %s back",
		s.HelpKey.Render("c"),
		s.HelpKey.Render("e"),
		s.HelpKey.Render("d"),
		s.HelpKey.Render("r"),
		s.HelpKey.Render("esc"),
	))
}

func (v *TaskDetailView) renderHelpPopup() string {
	s := v.styles
	return renderHelpPopup(s, []string{
		s.HelpKey.Render("↑↓") + "     move",
		s.HelpKey.Render("c") + "      add comment",
		s.HelpKey.Render("e") + "      edit comment",
		s.HelpKey.Render("d") + "      delete comment",
		s.HelpKey.Render("r") + "      reload comments",
		s.HelpKey.Render("x") + "      dismiss error",
		s.HelpKey.Render("esc") + "    back",
		s.HelpKey.Render("q") + "      quit",
	}, v.width, v.height)
}

func indexOfComment(comments []models.Comment, id int64) int {
	for i, c := range comments {
		if c.ID == id {
			return i
		}
	}
	return -1
}
