package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/resdesk/internal/dashboard"
	"github.com/julianstephens/resdesk/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	agoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Model lists the most recently created reservations
type Model struct {
	Items []models.Reservation
	Err   error
	now   func() time.Time
}

func New() Model {
	return Model{now: time.Now}
}

func (m *Model) SetItems(items []models.Reservation) {
	m.Items = items
	m.Err = nil
}

func (m *Model) SetError(err error) {
	m.Err = err
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Timeline"))
	b.WriteString("\n")
	if m.Err != nil {
		b.WriteString(errStyle.Render("Failed to load timeline: " + m.Err.Error()))
		return b.String()
	}
	if len(m.Items) == 0 {
		b.WriteString("No activity yet")
		return b.String()
	}
	now := m.now()
	for _, r := range m.Items {
		b.WriteString(Line(r, now))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Line renders one timeline entry
func Line(r models.Reservation, now time.Time) string {
	return fmt.Sprintf("• %s %s booked for %d, %s %s",
		r.Label(),
		r.Name,
		r.GuestCount,
		r.Status,
		agoStyle.Render(dashboard.Ago(r.CreatedAt, now)),
	)
}
