package timeline

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/resdesk/internal/models"
)

func TestLine(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := models.Reservation{
		ID:          "r1",
		OrderNumber: "1042",
		Name:        "Lan",
		Status:      models.StatusReady,
		GuestCount:  2,
		CreatedAt:   now.Add(-5 * time.Minute),
	}

	got := Line(r, now)
	for _, want := range []string{"#1042", "Lan", "for 2", "Ready", "5 minutes ago"} {
		if !strings.Contains(got, want) {
			t.Errorf("Line() = %q, missing %q", got, want)
		}
	}
}

func TestViewEmpty(t *testing.T) {
	m := New()
	if !strings.Contains(m.View(), "No activity yet") {
		t.Errorf("unexpected empty view %q", m.View())
	}
}
