package toasts

import (
	"strings"
	"testing"

	"github.com/julianstephens/resdesk/internal/toast"
)

func TestPushAndExpire(t *testing.T) {
	m := New()
	if cmd := m.Push(toast.New("New Reservation", "Reservation #1")); cmd == nil {
		t.Fatal("Push should schedule an expiry")
	}
	m.Push(toast.New("New Reservation", "Reservation #2"))

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if !strings.Contains(m.View(), "Reservation #2") {
		t.Errorf("toast not rendered: %q", m.View())
	}

	m.Expire(1)
	if m.Len() != 1 || strings.Contains(m.View(), "Reservation #1") {
		t.Errorf("toast 1 should be gone: %q", m.View())
	}
	m.Expire(42)
	if m.Len() != 1 {
		t.Error("expiring an unknown id should be a no-op")
	}
}

func TestStackIsBounded(t *testing.T) {
	m := New()
	for i := 0; i < maxVisible+2; i++ {
		m.Push(toast.New("New Reservation", "x"))
	}
	if m.Len() != maxVisible {
		t.Errorf("Len() = %d, want %d", m.Len(), maxVisible)
	}
}
