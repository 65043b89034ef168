package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/models"
	"github.com/julianstephens/resdesk/internal/transition"
)

// notificationLimit bounds the feed to the newest journal entries
const notificationLimit = 100

func (m Model) ctx() context.Context {
	if m.deps.Context == nil {
		return context.Background()
	}
	return m.deps.Context
}

func (m Model) loadAll() tea.Cmd {
	return tea.Batch(
		m.loadRecent(),
		m.loadTimeline(),
		m.loadChart(),
		m.loadList(),
		m.loadNotifications(),
	)
}

func (m Model) loadRecent() tea.Cmd {
	ctx, svc := m.ctx(), m.deps.Reservations
	return func() tea.Msg {
		page, err := svc.Recent(ctx, 1, constants.RecentGridPageSize)
		return recentLoadedMsg{page: page, err: err}
	}
}

func (m Model) loadTimeline() tea.Cmd {
	ctx, svc := m.ctx(), m.deps.Reservations
	return func() tea.Msg {
		page, err := svc.Recent(ctx, 1, constants.TimelinePageSize)
		return timelineLoadedMsg{page: page, err: err}
	}
}

func (m Model) loadChart() tea.Cmd {
	ctx, charts, r := m.ctx(), m.deps.Charts, m.chartModel.Range
	return func() tea.Msg {
		c, err := charts.Load(ctx, r)
		return chartLoadedMsg{chart: c, err: err}
	}
}

// loadList fetches the page the table currently describes. Responses
// carrying an older sequence number are dropped.
func (m Model) loadList() tea.Cmd {
	ctx, svc := m.ctx(), m.deps.Reservations
	seq, q := m.listSeq, m.listModel.Query()
	return func() tea.Msg {
		page, err := svc.List(ctx, q)
		return listLoadedMsg{seq: seq, page: page, err: err}
	}
}

func (m Model) loadDetail(id string) tea.Cmd {
	ctx, svc := m.ctx(), m.deps.Reservations
	return func() tea.Msg {
		r, err := svc.Get(ctx, id)
		return detailLoadedMsg{id: id, reservation: r, err: err}
	}
}

func (m Model) loadNotifications() tea.Cmd {
	journal := m.deps.Journal
	if journal == nil {
		return nil
	}
	return func() tea.Msg {
		items, err := journal.GetRecentNotifications(notificationLimit)
		return notificationsLoadedMsg{items: items, err: err}
	}
}

func (m Model) applyAction(r models.Reservation, a transition.Action) tea.Cmd {
	ctx, svc := m.ctx(), m.deps.Reservations
	return func() tea.Msg {
		updated, err := svc.Apply(ctx, r, a)
		return actionDoneMsg{before: r, after: updated, err: err}
	}
}

func (m Model) deleteReservation(r models.Reservation) tea.Cmd {
	ctx, svc := m.ctx(), m.deps.Reservations
	return func() tea.Msg {
		_, err := svc.Delete(ctx, r.ID)
		return deletedMsg{reservation: r, err: err}
	}
}

func (m Model) login(username, password string) tea.Cmd {
	ctx, session := m.ctx(), m.deps.Session
	return func() tea.Msg {
		identity, err := session.Login(ctx, username, password)
		return loginResultMsg{identity: identity, err: err}
	}
}

func (m Model) logout() tea.Cmd {
	ctx, session := m.ctx(), m.deps.Session
	return func() tea.Msg {
		return logoutDoneMsg{err: session.Logout(ctx)}
	}
}

func (m Model) markRead() tea.Cmd {
	journal := m.deps.Journal
	return func() tea.Msg {
		n, err := journal.MarkAllRead()
		return journalUpdatedMsg{format: "Marked %d notification(s) read", n: n, err: err}
	}
}

func (m Model) clearJournal() tea.Cmd {
	journal := m.deps.Journal
	return func() tea.Msg {
		n, err := journal.ClearNotifications()
		return journalUpdatedMsg{format: "Cleared %d notification(s)", n: n, err: err}
	}
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
