package recent

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/resdesk/internal/models"
)

func TestRows(t *testing.T) {
	created := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	rows := Rows([]models.Reservation{{
		ID:          "r1",
		OrderNumber: "7",
		Name:        "Minh",
		Phone:       "0900",
		GuestCount:  4,
		Date:        "2025-06-02",
		Hour:        "18",
		Minute:      "5",
		Status:      models.StatusPending,
		CreatedAt:   created,
	}}, time.UTC)

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	want := []string{"#7", "Minh", "0900", "4", "2025-06-02 18:05", "Pending", "Jun 1, 2025 / 09:30 AM"}
	for i, cell := range want {
		if rows[0][i] != cell {
			t.Errorf("cell %d = %q, want %q", i, rows[0][i], cell)
		}
	}
}

func TestViewStates(t *testing.T) {
	m := New(time.UTC)
	if !strings.Contains(m.View(), "Loading") {
		t.Errorf("expected loading view, got %q", m.View())
	}

	m.SetError(errors.New("offline"))
	if !strings.Contains(m.View(), "offline") {
		t.Errorf("expected error view, got %q", m.View())
	}

	m.SetItems([]models.Reservation{{ID: "a", Name: "Hoa", Status: models.StatusReady}}, 12)
	v := m.View()
	if !strings.Contains(v, "12 total") || !strings.Contains(v, "Hoa") {
		t.Errorf("unexpected view %q", v)
	}
}
