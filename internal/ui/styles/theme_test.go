package styles

import (
	"strings"
	"testing"

	"github.com/tgienger/taskdesk/internal/models"
)

func TestStatusColor(t *testing.T) {
	tests := []struct {
		status models.Status
		want   string
	}{
		{models.StatusPending, string(Current.ForegroundDim)},
		{models.StatusInProgress, string(Current.Warning)},
		{models.StatusCompleted, string(Current.Success)},
		{"COMPLETED", string(Current.Success)},
		{"archived", string(Current.ForegroundDim)},
	}

	for _, tt := range tests {
		if got := string(StatusColor(tt.status)); got != tt.want {
			t.Errorf("StatusColor(%q) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestStatusBadgeUsesLabel(t *testing.T) {
	if got := NewStyles().StatusBadge(models.StatusInProgress); !strings.Contains(got, "in progress") {
		t.Errorf("StatusBadge() = %q, want the readable label", got)
	}
}

func TestContentWidth(t *testing.T) {
	if got := ContentWidth(200); got != MaxWidth {
		t.Errorf("ContentWidth(200) = %d", got)
	}
	if got := ContentWidth(40); got != 40 {
		t.Errorf("ContentWidth(40) = %d", got)
	}
}
