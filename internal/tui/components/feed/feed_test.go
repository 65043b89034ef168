package feed

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/resdesk/internal/models"
)

func TestUnreadCountAndKeys(t *testing.T) {
	m := New(time.UTC)
	m.SetSize(80, 10)

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")}); cmd != nil {
		t.Error("mark read with nothing unread should do nothing")
	}

	m.SetItems([]models.Notification{
		{ID: "1", Title: "New Reservation", Description: "Reservation #1", ReceivedAt: time.Now()},
		{ID: "2", Title: "New Reservation", Description: "Reservation #2", ReceivedAt: time.Now(), Read: true},
	})
	if m.Unread() != 1 {
		t.Errorf("Unread() = %d, want 1", m.Unread())
	}
	if !strings.Contains(m.View(), "Reservation #1") {
		t.Errorf("notification not rendered: %q", m.View())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	if _, ok := cmd().(MarkReadMsg); !ok {
		t.Error("m should request marking notifications read")
	}
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if _, ok := cmd().(ClearMsg); !ok {
		t.Error("c should request clearing the journal")
	}
}
