package detail

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/resdesk/internal/models"
	"github.com/julianstephens/resdesk/internal/transition"
	"github.com/julianstephens/resdesk/internal/tui/components/reservations"
)

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBusyBlocksActions(t *testing.T) {
	m := New(time.UTC)
	m.SetReservation(models.Reservation{ID: "r1", Status: models.StatusPending})

	_, cmd := m.Update(press("a"))
	if cmd == nil {
		t.Fatal("accept should be available")
	}
	if msg := cmd().(reservations.ActionMsg); msg.Action != transition.ActionAccept {
		t.Errorf("unexpected action %s", msg.Action)
	}

	m.SetBusy(true)
	if _, cmd := m.Update(press("a")); cmd != nil {
		t.Error("actions must be ignored while a mutation is in flight")
	}
	if !strings.Contains(m.View(), "Saving") {
		t.Error("busy view should say it is saving")
	}
}

func TestDisabledActionIgnored(t *testing.T) {
	m := New(time.UTC)
	m.SetReservation(models.Reservation{ID: "r1", Status: models.StatusCancelled})

	if _, cmd := m.Update(press("x")); cmd != nil {
		t.Error("reject is disabled for a cancelled reservation")
	}
	if _, cmd := m.Update(press("p")); cmd == nil {
		t.Error("pending is enabled for a cancelled reservation")
	}
}

func TestNotLoaded(t *testing.T) {
	m := New(time.UTC)
	if _, cmd := m.Update(press("a")); cmd != nil {
		t.Error("no actions before the reservation is loaded")
	}
	m.SetError(errors.New("not found"))
	if !strings.Contains(m.View(), "not found") {
		t.Errorf("unexpected view %q", m.View())
	}
}

func TestErrorKeepsRecord(t *testing.T) {
	m := New(time.UTC)
	m.SetReservation(models.Reservation{ID: "r1", Name: "Lan", Status: models.StatusReady})
	m.SetBusy(true)
	m.SetError(errors.New("Error updating record"))

	r, ok := m.Reservation()
	if !ok || r.Status != models.StatusReady {
		t.Errorf("failed mutation must leave the record unchanged, got %+v", r)
	}
	if m.Busy() {
		t.Error("an error clears the busy flag")
	}
	v := m.View()
	if !strings.Contains(v, "Lan") || !strings.Contains(v, "Error updating record") {
		t.Errorf("unexpected view %q", v)
	}
}
