package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tgienger/taskdesk/internal/state"
	"github.com/tgienger/taskdesk/internal/ui/styles"
	"github.com/tgienger/taskdesk/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewTasks View = iota
	ViewTaskDetail
)

// lines reserved for the error banner and status bar
const chromeHeight = 4

// Settings remembers the last opened task between runs
type Settings interface {
	LastTaskID() (int64, error)
	SetLastTaskID(id int64) error
}

type App struct {
	ctrl        *state.Controller
	settings    Settings
	log         zerolog.Logger
	styles      *styles.Styles
	spinner     spinner.Model
	currentView View
	taskList    *views.TaskListView
	taskDetail  *views.TaskDetailView
	width       int
	height      int

	// task to reopen once the first task list arrives
	restoreID int64
}

// Creates a new application
func NewApp(ctrl *state.Controller, settings Settings, log zerolog.Logger) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Current.Accent)

	return &App{
		ctrl:        ctrl,
		settings:    settings,
		log:         log.With().Str("component", "ui").Logger(),
		styles:      styles.NewStyles(),
		spinner:     sp,
		currentView: ViewTasks,
		taskList:    views.NewTaskListView(ctrl),
		taskDetail:  views.NewTaskDetailView(ctrl),
	}
}

func (a *App) Init() tea.Cmd {
	// Check for last opened task
	id, err := a.settings.LastTaskID()
	if err != nil {
		a.log.Warn().Err(err).Msg("could not read last task")
	}
	a.restoreID = id

	return tea.Batch(a.taskList.Init(), a.spinner.Tick)
}

func (a *App) openTask(id int64) tea.Cmd {
	a.currentView = ViewTaskDetail
	a.taskDetail.Reset()

	// Save as last opened task
	if err := a.settings.SetLastTaskID(id); err != nil {
		a.log.Warn().Err(err).Int64("task_id", id).Msg("could not save last task")
	}

	return a.ctrl.SelectTask(id)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Both views persist, so both track the size
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-chromeHeight, 0)}
		a.taskList.Update(inner)
		a.taskDetail.Update(inner)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case views.SelectedTask:
		return a, a.openTask(msg.ID)

	case views.BackToTasks:
		a.currentView = ViewTasks
		a.ctrl.ClearSelection()
		if err := a.settings.SetLastTaskID(0); err != nil {
			a.log.Warn().Err(err).Msg("could not clear last task")
		}
		return a, nil
	}

	if a.ctrl.Update(msg) {
		a.taskList.Sync()
		a.taskDetail.Sync()
		return a, a.restore(msg)
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	case ViewTaskDetail:
		_, cmd = a.taskDetail.Update(msg)
	}

	return a, cmd
}

// restore reopens the remembered task after the first successful task
// load, if that task still exists.
func (a *App) restore(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(state.TasksLoadedMsg)
	if !ok || a.restoreID == 0 || loaded.Err != nil {
		return nil
	}
	id := a.restoreID
	a.restoreID = 0

	if a.currentView != ViewTasks || a.taskList.Creating() {
		return nil
	}
	for _, t := range loaded.Tasks {
		if t.ID == id {
			return a.openTask(id)
		}
	}
	a.log.Debug().Int64("task_id", id).Msg("last task no longer exists")
	return nil
}

func (a *App) View() string {
	var body string
	switch a.currentView {
	case ViewTaskDetail:
		body = a.taskDetail.View()
	default:
		body = a.taskList.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderBanner(),
		body,
		a.renderStatusBar(),
	)
}

func (a *App) renderBanner() string {
	msg := a.ctrl.Err()
	if msg == "" {
		return ""
	}
	width := styles.ContentWidth(a.width)
	banner := a.styles.ErrorBanner.Width(max(width-4, 20)).Render(msg + "  " + a.styles.HelpDesc.Render("(x to dismiss)"))
	return a.center(banner)
}

func (a *App) renderStatusBar() string {
	if !a.ctrl.Busy() {
		return a.center(a.styles.StatusBar.Render("ready"))
	}

	snap := a.ctrl.Snapshot()

	var pending []string
	for op := state.OpLoadTasks; op <= state.OpDeleteComment; op++ {
		if snap.IsLoading(op) {
			pending = append(pending, strings.ReplaceAll(op.String(), "_", " "))
		}
	}

	text := a.spinner.View() + " " + strings.Join(pending, ", ") + "..."
	return a.center(a.styles.StatusBar.Render(text))
}

func (a *App) center(line string) string {
	if a.width <= styles.MaxWidth {
		return line
	}
	return lipgloss.PlaceHorizontal(a.width, lipgloss.Center, line)
}
