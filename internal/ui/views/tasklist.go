package views

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdesk/internal/models"
	"github.com/tgienger/taskdesk/internal/state"
	"github.com/tgienger/taskdesk/internal/ui/keys"
	"github.com/tgienger/taskdesk/internal/ui/styles"
)

type taskItem struct {
	task models.Task
}

func (i taskItem) Title() string       { return i.task.Title }
func (i taskItem) Description() string { return i.task.Description }
func (i taskItem) FilterValue() string { return i.task.Title }

type taskDelegate struct {
	styles *styles.Styles
	width  int
}

func (d taskDelegate) Height() int                               { return 2 }
func (d taskDelegate) Spacing() int                              { return 1 }
func (d taskDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	t, ok := item.(taskItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, metaStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		metaStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		metaStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	meta := d.styles.StatusBadge(t.task.Status) + "  Created: " + t.task.CreatedAt.Display()
	if t.task.Edited() {
		meta += "  Updated: " + t.task.UpdatedAt.Display()
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(t.Title()), metaStyle.Render(meta))
}

// TaskListView shows all tasks and the new task form
type TaskListView struct {
	ctrl     *state.Controller
	list     list.Model
	delegate *taskDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int

	// New task form
	creating  bool
	submitted bool // waiting on the create response
	newTitle  textinput.Model
	newDesc   textarea.Model
	newStatus models.Status
	focusIdx  int // 0=title, 1=desc, 2=status, 3=create
	formErr   string

	showHelpPopup bool
}

// NewTaskListView creates the task list backed by ctrl
func NewTaskListView(ctrl *state.Controller) *TaskListView {
	s := styles.NewStyles()

	newTitle := textinput.New()
	newTitle.Placeholder = "Task title"
	newTitle.CharLimit = 200

	newDesc := textarea.New()
	newDesc.Placeholder = "Description"
	newDesc.CharLimit = 1000
	newDesc.SetWidth(50)
	newDesc.SetHeight(3)
	newDesc.ShowLineNumbers = false

	delegate := &taskDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Tasks"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &TaskListView{
		ctrl:      ctrl,
		list:      l,
		delegate:  delegate,
		styles:    s,
		keys:      keys.DefaultKeyMap(),
		newTitle:  newTitle,
		newDesc:   newDesc,
		newStatus: models.StatusPending,
	}
}

// Init loads the task list
func (v *TaskListView) Init() tea.Cmd {
	return v.ctrl.LoadTasks()
}

// Sync pulls the controller's task list into the view. The app calls it
// after every message the controller reconciles.
func (v *TaskListView) Sync() {
	var selectedID int64
	if item, ok := v.list.SelectedItem().(taskItem); ok {
		selectedID = item.task.ID
	}

	tasks := v.ctrl.Tasks()
	items := make([]list.Item, len(tasks))
	cursor := -1
	for i, t := range tasks {
		items[i] = taskItem{task: t}
		if t.ID == selectedID {
			cursor = i
		}
	}
	v.list.SetItems(items)
	if cursor >= 0 {
		v.list.Select(cursor)
	} else if v.list.Index() >= len(items) {
		v.list.Select(max(0, len(items)-1))
	}

	if v.submitted && !v.ctrl.Loading(state.OpCreateTask) {
		v.submitted = false
		if v.ctrl.Err() == "" {
			v.closeForm()
		}
	}
}

// Creating reports whether the new task form is open
func (v *TaskListView) Creating() bool {
	return v.creating
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-4)
		v.newDesc.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.creating {
			return v.updateCreating(msg)
		}

		// Typing into the list filter
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			if v.list.FilterState() == list.FilterApplied {
				break
			}
			return v, nil
		case key.Matches(msg, v.keys.New):
			v.openForm()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Reload):
			return v, v.ctrl.LoadTasks()
		case key.Matches(msg, v.keys.Dismiss):
			v.ctrl.DismissError()
			return v, nil
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(taskItem); ok {
				id := item.task.ID
				return v, func() tea.Msg {
					return SelectedTask{ID: id}
				}
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *TaskListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.closeForm()
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.submit()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 3) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.focusIdx {
		case 0:
			v.focusIdx++
			v.updateFocus()
			return v, nil
		case 2:
			v.newStatus = v.newStatus.Next()
			return v, nil
		case 3:
			return v, v.submit()
		}
		// enter in the description is a newline

	case v.focusIdx == 2 && (msg.String() == " " || msg.String() == "right" || msg.String() == "l"):
		v.newStatus = v.newStatus.Next()
		return v, nil
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newTitle, cmd = v.newTitle.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	}
	return v, cmd
}

// submit dispatches the create unless one is already in flight
func (v *TaskListView) submit() tea.Cmd {
	if v.submitted || v.ctrl.Loading(state.OpCreateTask) {
		return nil
	}
	cmd, err := v.ctrl.CreateTask(v.newTitle.Value(), v.newDesc.Value(), v.newStatus)
	if err != nil {
		v.formErr = inputError(err)
		return nil
	}
	v.formErr = ""
	v.submitted = true
	return cmd
}

func (v *TaskListView) openForm() {
	v.creating = true
	v.submitted = false
	v.focusIdx = 0
	v.formErr = ""
	v.newTitle.Reset()
	v.newDesc.Reset()
	v.newStatus = models.StatusPending
	v.updateFocus()
}

func (v *TaskListView) closeForm() {
	v.creating = false
	v.formErr = ""
	v.newTitle.Reset()
	v.newDesc.Reset()
	v.newTitle.Blur()
	v.newDesc.Blur()
}

func (v *TaskListView) updateFocus() {
	v.newTitle.Blur()
	v.newDesc.Blur()
	switch v.focusIdx {
	case 0:
		v.newTitle.Focus()
	case 1:
		v.newDesc.Focus()
	}
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.creating {
		return v.renderCreateForm()
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *TaskListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	hint := "Press 'n' to create your first task"
	if v.ctrl.Loading(state.OpLoadTasks) {
		hint = "Loading..."
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Tasks"),
		"",
		s.TitleMuted.Render(hint),
		"",
		s.ButtonPrimary.Render(" New Task "),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	titleStyle := s.Input
	descStyle := s.Input
	statusStyle := s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		statusStyle = s.InputFocused
	case 3:
		btnStyle = s.ButtonFocused
	}

	btnLabel := " Create "
	if v.submitted || v.ctrl.Loading(state.OpCreateTask) {
		btnStyle = s.ButtonDisabled
		btnLabel = " Creating... "
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	rows := []string{
		s.Title.Render("New Task"),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.newTitle.View()),
		"",
		"Description:",
		descStyle.Render(v.newDesc.View()),
		"",
		"Status:",
		statusStyle.Width(inputWidth).Render("◀ " + s.StatusBadge(v.newStatus) + " ▶"),
		"",
		btnStyle.Render(btnLabel),
	}
	if v.formErr != "" {
		rows = append(rows, "", s.FieldError.Render(v.formErr))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • Space: status • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s reload • %s filter • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	return renderHelpPopup(s, []string{
		s.HelpKey.Render("↵") + "      open task",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("r") + "      reload",
		s.HelpKey.Render("/") + "      filter",
		s.HelpKey.Render("x") + "      dismiss error",
		s.HelpKey.Render("q") + "      quit",
	}, v.width, v.height)
}
