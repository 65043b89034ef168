// Package detail shows a single reservation with its enabled actions
package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/models"
	"github.com/julianstephens/resdesk/internal/transition"
	"github.com/julianstephens/resdesk/internal/tui/components/reservations"
)

var (
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(14)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Strikethrough(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type Model struct {
	keys        reservations.KeyMap
	reservation models.Reservation
	loaded      bool
	busy        bool
	err         error
	loc         *time.Location
}

func New(loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	return Model{keys: reservations.DefaultKeyMap(), loc: loc}
}

// Reset clears the view before a new reservation is fetched
func (m *Model) Reset() {
	m.reservation = models.Reservation{}
	m.loaded = false
	m.busy = false
	m.err = nil
}

func (m *Model) SetReservation(r models.Reservation) {
	m.reservation = r
	m.loaded = true
	m.busy = false
	m.err = nil
}

func (m *Model) SetError(err error) {
	m.busy = false
	m.err = err
}

// SetBusy marks a mutation in flight. Actions are ignored until it clears.
func (m *Model) SetBusy(busy bool) {
	m.busy = busy
}

func (m Model) Busy() bool {
	return m.busy
}

func (m Model) Reservation() (models.Reservation, bool) {
	return m.reservation, m.loaded
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.loaded || m.busy {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Accept):
		return m, m.action(transition.ActionAccept)
	case key.Matches(keyMsg, m.keys.Reject):
		return m, m.action(transition.ActionReject)
	case key.Matches(keyMsg, m.keys.Pending):
		return m, m.action(transition.ActionPending)
	case key.Matches(keyMsg, m.keys.Delete):
		r := m.reservation
		return m, func() tea.Msg { return reservations.DeleteMsg{Reservation: r} }
	case key.Matches(keyMsg, m.keys.Reload):
		id := m.reservation.ID
		return m, func() tea.Msg { return reservations.OpenDetailMsg{ID: id} }
	}
	return m, nil
}

func (m Model) action(a transition.Action) tea.Cmd {
	if !transition.Enabled(a, m.reservation.Status) {
		return nil
	}
	r := m.reservation
	return func() tea.Msg { return reservations.ActionMsg{Reservation: r, Action: a} }
}

func (m Model) View() string {
	if !m.loaded {
		if m.err != nil {
			return errStyle.Render("Failed to load reservation: " + m.err.Error())
		}
		return "Loading reservation..."
	}

	r := m.reservation
	var b strings.Builder
	b.WriteString(titleStyle.Render("Reservation " + r.Label()))
	b.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(label), value)
	}
	field("Name", r.Name)
	field("Phone", r.Phone)
	field("Email", r.Email)
	field("Area", string(r.Area))
	field("Restaurant", r.Restaurant)
	field("Time", r.ReservationTime())
	field("Guests", fmt.Sprintf("%d", r.GuestCount))
	field("Message", r.Message)
	field("Status", string(r.Status))
	field("Created", m.format(r.CreatedAt))
	field("Updated", m.format(r.UpdatedAt))

	b.WriteString("\n")
	actions := make([]string, 0, len(transition.Actions))
	for _, a := range transition.Actions {
		label := m.actionLabel(a)
		if transition.Enabled(a, r.Status) && !m.busy {
			actions = append(actions, enabledStyle.Render(label))
		} else {
			actions = append(actions, disabledStyle.Render(label))
		}
	}
	b.WriteString(strings.Join(actions, "  "))

	switch {
	case m.busy:
		b.WriteString("\n\nSaving...")
	case m.err != nil:
		b.WriteString("\n\n" + errStyle.Render(m.err.Error()))
	}
	return b.String()
}

func (m Model) actionLabel(a transition.Action) string {
	var k key.Binding
	switch a {
	case transition.ActionAccept:
		k = m.keys.Accept
	case transition.ActionReject:
		k = m.keys.Reject
	default:
		k = m.keys.Pending
	}
	return fmt.Sprintf("[%s] %s", k.Help().Key, k.Help().Desc)
}

func (m Model) format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(m.loc).Format(constants.DisplayDateTimeFormat)
}
