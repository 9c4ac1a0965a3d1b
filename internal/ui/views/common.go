package views

import (
	"errors"

	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdesk/internal/state"
	"github.com/tgienger/taskdesk/internal/ui/styles"
)

// SelectedTask asks the app to select a task and open its detail screen
type SelectedTask struct {
	ID int64
}

// BackToTasks signals to go back to the task list
type BackToTasks struct{}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// inputError turns a local validation error into form text
func inputError(err error) string {
	switch {
	case errors.Is(err, state.ErrEmptyTitle):
		return "Title is required"
	case errors.Is(err, state.ErrEmptyDescription):
		return "Description is required"
	case errors.Is(err, state.ErrInvalidStatus):
		return "Pick a status"
	case errors.Is(err, state.ErrEmptyContent):
		return "Comment cannot be empty"
	case errors.Is(err, state.ErrNoSelection):
		return "Select a task first"
	case errors.Is(err, state.ErrBusy):
		return "Still saving..."
	}
	return err.Error()
}

// renderPopup centers content in a bordered box
func renderPopup(s *styles.Styles, content string, width, height int) string {
	contentWidth := styles.ContentWidth(width)
	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, width, height)
}

func renderHelpPopup(s *styles.Styles, items []string, width, height int) string {
	lines := append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, items...)
	lines = append(lines, "", s.TitleMuted.Render("Press any key to close"))
	return renderPopup(s, lipgloss.JoinVertical(lipgloss.Left, lines...), width, height)
}

func renderDeleteConfirm(s *styles.Styles, title string, width, height int) string {
	contentWidth := styles.ContentWidth(width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(title),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, width, height)
}
