// Package feed shows the notification journal
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/models"
)

var (
	unreadStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	readStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// MarkReadMsg asks the parent to mark every notification read
type MarkReadMsg struct{}

// ClearMsg asks the parent to clear the journal
type ClearMsg struct{}

type KeyMap struct {
	MarkRead key.Binding
	Clear    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		MarkRead: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark all read"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
	}
}

type Model struct {
	viewport viewport.Model
	keys     KeyMap
	items    []models.Notification
	unread   int
	err      error
	loc      *time.Location
}

func New(loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	return Model{viewport: viewport.New(0, 0), keys: DefaultKeyMap(), loc: loc}
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(m.content())
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Unread() int {
	return m.unread
}

func (m *Model) SetItems(items []models.Notification) {
	m.items = items
	m.err = nil
	m.unread = 0
	for _, n := range items {
		if !n.Read {
			m.unread++
		}
	}
	m.viewport.SetContent(m.content())
}

func (m *Model) SetError(err error) {
	m.err = err
	m.viewport.SetContent(m.content())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.MarkRead):
			if m.unread == 0 {
				return m, nil
			}
			return m, func() tea.Msg { return MarkReadMsg{} }
		case key.Matches(keyMsg, m.keys.Clear):
			if len(m.items) == 0 {
				return m, nil
			}
			return m, func() tea.Msg { return ClearMsg{} }
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) content() string {
	if m.err != nil {
		return errStyle.Render("Failed to load notifications: " + m.err.Error())
	}
	if len(m.items) == 0 {
		return "No notifications"
	}
	var b strings.Builder
	for _, n := range m.items {
		line := fmt.Sprintf("%s  %s: %s",
			n.ReceivedAt.In(m.loc).Format(constants.DisplayDateTimeFormat),
			n.Title,
			n.Description,
		)
		if n.Read {
			b.WriteString(readStyle.Render("  " + line))
		} else {
			b.WriteString(unreadStyle.Render("* " + line))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) View() string {
	return fmt.Sprintf("%d unread\n", m.unread) + m.viewport.View()
}
