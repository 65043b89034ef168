package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/resdesk/internal/constants"
)

var tabTitles = map[constants.SessionState]string{
	constants.StateDashboard:     "Dashboard",
	constants.StateReservations:  "Reservations",
	constants.StateNotifications: "Notifications",
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	switch m.state {
	case constants.StateLogin:
		if m.loggingIn {
			b.WriteString(m.spinner.View() + " Signing in...")
		} else if m.form != nil {
			b.WriteString(m.form.View())
		}
	case constants.StateDashboard:
		top := lipgloss.JoinHorizontal(lipgloss.Top,
			m.chartModel.View(),
			"    ",
			m.timelineModel.View(),
		)
		b.WriteString(top)
		b.WriteString("\n\n")
		b.WriteString(m.recentModel.View())
	case constants.StateReservations:
		b.WriteString(m.listModel.View())
	case constants.StateDetail:
		b.WriteString(m.detailModel.View())
	case constants.StateNotifications:
		b.WriteString(m.feedModel.View())
	case constants.StateConfirmation:
		if m.form != nil {
			b.WriteString(dangerStyle.Render("Confirm") + "\n\n")
			b.WriteString(m.form.View())
		}
	}

	if t := m.toastModel.View(); t != "" {
		b.WriteString("\n\n")
		b.WriteString(t)
	}

	if m.statusMessage != "" {
		b.WriteString("\n\n")
		if m.statusIsError {
			b.WriteString(dangerStyle.Render(m.statusMessage))
		} else {
			b.WriteString(successStyle.Render(m.statusMessage))
		}
	}

	if m.isLoggedIn() && m.state != constants.StateConfirmation {
		b.WriteString("\n\n")
		b.WriteString(m.helpView())
	}
	return docStyle.Render(b.String())
}

func (m Model) header() string {
	title := activeTabStyle.Render(constants.AppName)
	if !m.isLoggedIn() {
		return title
	}

	current := m.activeTab()
	parts := []string{title}
	for _, s := range tabs {
		label := tabTitles[s]
		if s == constants.StateNotifications && m.feedModel.Unread() > 0 {
			label += " (" + strconv.Itoa(m.feedModel.Unread()) + ")"
		}
		if s == current {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, inactiveTabStyle.Render(label))
		}
	}
	parts = append(parts, "  ", m.connectivity(), "  ", mutedStyle.Render(m.username))
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// activeTab is the tab highlighted for the current state
func (m Model) activeTab() constants.SessionState {
	s := m.state
	if s == constants.StateConfirmation {
		s = m.confirmReturn
	}
	if s == constants.StateDetail {
		s = m.previousState
	}
	return s
}

// connectivity renders the real-time socket indicator
func (m Model) connectivity() string {
	switch {
	case !m.hasSocket:
		return mutedStyle.Render("realtime off")
	case m.online:
		return onlineStyle.Render("● live")
	default:
		return offlineStyle.Render("○ reconnecting")
	}
}

func (m Model) helpView() string {
	global := m.help.View(m.keys)
	switch m.state {
	case constants.StateReservations, constants.StateDetail:
		return global + "\n" + m.help.ShortHelpView(m.listModel.Keys().Bindings())
	case constants.StateNotifications:
		k := m.feedModel.Keys()
		return global + "\n" + m.help.ShortHelpView([]key.Binding{k.MarkRead, k.Clear})
	}
	return global
}
