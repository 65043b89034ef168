// Package toasts keeps the stack of transient in-app notifications
package toasts

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/toast"
)

// maxVisible bounds the stack; older toasts drop off first
const maxVisible = 3

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("205")).
	Padding(0, 1)

// ExpiredMsg removes a toast once its duration has elapsed
type ExpiredMsg struct {
	ID int
}

type entry struct {
	id    int
	toast toast.Toast
}

type Model struct {
	entries []entry
	nextID  int
}

func New() Model {
	return Model{}
}

// Push shows t and schedules its expiry
func (m *Model) Push(t toast.Toast) tea.Cmd {
	m.nextID++
	id := m.nextID
	m.entries = append(m.entries, entry{id: id, toast: t})
	if len(m.entries) > maxVisible {
		m.entries = m.entries[len(m.entries)-maxVisible:]
	}
	d := t.Duration
	if d <= 0 {
		d = constants.NotificationDuration
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return ExpiredMsg{ID: id} })
}

// Expire drops the toast with the given id
func (m *Model) Expire(id int) {
	for i, e := range m.entries {
		if e.id == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return
		}
	}
}

func (m Model) Len() int {
	return len(m.entries)
}

func (m Model) View() string {
	if len(m.entries) == 0 {
		return ""
	}
	boxes := make([]string, len(m.entries))
	for i, e := range m.entries {
		boxes[i] = boxStyle.Render(lipgloss.NewStyle().Bold(true).Render(e.toast.Title) + "\n" + e.toast.Description)
	}
	return strings.Join(boxes, "\n")
}
