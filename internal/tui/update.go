package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/tui/components/feed"
	"github.com/julianstephens/resdesk/internal/tui/components/reservations"
	"github.com/julianstephens/resdesk/internal/tui/components/toasts"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case inboxMsg:
		next, cmd := m.Update(msg.msg)
		return next, tea.Batch(cmd, m.rt.wait())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case toastMsg:
		return m, tea.Batch(m.toastModel.Push(msg.toast), m.loadNotifications())

	case toasts.ExpiredMsg:
		m.toastModel.Expire(msg.ID)
		return m, nil

	case connectivityMsg:
		m.online = msg.online
		return m, nil

	case forcedLogoutMsg:
		if !m.isLoggedIn() {
			return m, nil
		}
		return m.endSession("Session expired, please sign in again", true)

	case refreshRecentMsg:
		if !m.isLoggedIn() {
			return m, nil
		}
		return m, tea.Batch(m.loadRecent(), m.loadTimeline())

	case refreshChartMsg:
		if !m.isLoggedIn() {
			return m, nil
		}
		return m, m.loadChart()

	case loginResultMsg:
		m.loggingIn = false
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, m.newLoginForm()
		}
		m.username = msg.identity.Name
		if m.username == "" {
			m.username = m.loginForm.Username
		}
		m.form = nil
		m.loginForm = nil
		m.state = constants.StateDashboard
		m.mount()
		m.setStatus("Signed in as "+m.username, false)
		return m, m.loadAll()

	case logoutDoneMsg:
		if msg.err != nil {
			return m.endSession("Signed out locally: "+msg.err.Error(), true)
		}
		return m.endSession("Signed out", false)

	case recentLoadedMsg:
		if msg.err != nil {
			m.recentModel.SetError(msg.err)
		} else {
			m.recentModel.SetItems(msg.page.Items, msg.page.Total)
		}
		return m, nil

	case timelineLoadedMsg:
		if msg.err != nil {
			m.timelineModel.SetError(msg.err)
		} else {
			m.timelineModel.SetItems(msg.page.Items)
		}
		return m, nil

	case chartLoadedMsg:
		if msg.err != nil {
			m.chartModel.SetError(msg.err)
		} else if msg.chart.Range == m.chartModel.Range {
			m.chartModel.SetChart(msg.chart)
		}
		return m, nil

	case listLoadedMsg:
		if msg.seq != m.listSeq {
			return m, nil
		}
		if msg.err != nil {
			m.listModel.SetError(msg.err)
		} else {
			m.listModel.SetItems(msg.page.Items, msg.page.Total)
		}
		return m, nil

	case detailLoadedMsg:
		if msg.id != m.detailID {
			return m, nil
		}
		if msg.err != nil {
			m.detailModel.SetError(msg.err)
		} else {
			m.detailModel.SetReservation(msg.reservation)
		}
		return m, nil

	case actionDoneMsg:
		delete(m.inflight, msg.before.ID)
		showing := m.state == constants.StateDetail && m.detailID == msg.before.ID
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Reservation %s: %v", msg.before.Label(), msg.err), true)
			if showing {
				m.detailModel.SetError(msg.err)
			}
			return m, nil
		}
		m.listModel.Replace(msg.after)
		if showing {
			m.detailModel.SetReservation(msg.after)
		}
		m.setStatus(fmt.Sprintf("Reservation %s: %s -> %s", msg.after.Label(), msg.before.Status, msg.after.Status), false)
		return m, tea.Batch(m.loadRecent(), m.loadTimeline(), m.loadChart())

	case deletedMsg:
		delete(m.inflight, msg.reservation.ID)
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Reservation %s: %v", msg.reservation.Label(), msg.err), true)
			return m, nil
		}
		if m.state == constants.StateDetail && m.detailID == msg.reservation.ID {
			m.state = constants.StateReservations
			m.detailID = ""
		}
		m.setStatus("Deleted reservation "+msg.reservation.Label(), false)
		m.listSeq++
		m.listModel.SetLoading()
		return m, tea.Batch(m.loadList(), m.loadRecent(), m.loadTimeline(), m.loadChart())

	case notificationsLoadedMsg:
		if msg.err != nil {
			m.feedModel.SetError(msg.err)
		} else {
			m.feedModel.SetItems(msg.items)
		}
		return m, nil

	case journalUpdatedMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		} else {
			m.setStatus(fmt.Sprintf(msg.format, msg.n), false)
		}
		return m, m.loadNotifications()

	case reservations.ReloadMsg:
		m.listSeq++
		m.listModel.SetLoading()
		return m, m.loadList()

	case reservations.OpenDetailMsg:
		if m.state != constants.StateDetail {
			m.previousState = m.state
		}
		m.state = constants.StateDetail
		m.detailID = msg.ID
		m.detailModel.Reset()
		return m, m.loadDetail(msg.ID)

	case reservations.ActionMsg:
		id := msg.Reservation.ID
		if m.inflight[id] {
			m.setStatus("Reservation "+msg.Reservation.Label()+" is already being saved", true)
			return m, nil
		}
		m.inflight[id] = true
		if m.state == constants.StateDetail && m.detailID == id {
			m.detailModel.SetBusy(true)
		}
		return m, m.applyAction(msg.Reservation, msg.Action)

	case reservations.DeleteMsg:
		if m.inflight[msg.Reservation.ID] {
			return m, nil
		}
		r := msg.Reservation
		m.pendingDelete = &r
		return m, m.newConfirmForm(fmt.Sprintf("Delete reservation %s?", r.Label()), "Delete")

	case feed.MarkReadMsg:
		return m, m.markRead()

	case feed.ClearMsg:
		m.pendingClear = true
		return m, m.newConfirmForm("Clear all notifications?", "Clear")
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}
	if m.state == constants.StateLogin || m.state == constants.StateConfirmation {
		return m.updateForm(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		return m, m.logout()
	case key.Matches(msg, m.keys.Back):
		if m.state == constants.StateDetail {
			m.state = m.previousState
			m.detailID = ""
		}
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		m.state = m.stepTab(1)
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.state = m.stepTab(-1)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateDashboard:
		switch {
		case key.Matches(msg, m.keys.Refresh):
			return m, tea.Batch(m.loadRecent(), m.loadTimeline(), m.loadChart())
		case key.Matches(msg, m.keys.Range):
			m.chartModel.ToggleRange()
			return m, m.loadChart()
		}
	case constants.StateReservations:
		m.listModel, cmd = m.listModel.Update(msg)
	case constants.StateDetail:
		m.detailModel, cmd = m.detailModel.Update(msg)
	case constants.StateNotifications:
		m.feedModel, cmd = m.feedModel.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.state == constants.StateLogin {
			if m.loggingIn {
				return m, cmd
			}
			m.loggingIn = true
			m.setStatus("Signing in...", false)
			return m, tea.Batch(cmd, m.login(m.loginForm.Username, m.loginForm.Password))
		}
		return m.resolveConfirmation(*m.confirmed)
	case huh.StateAborted:
		if m.state == constants.StateLogin {
			m.quitting = true
			return m, tea.Quit
		}
		return m.resolveConfirmation(false)
	}
	return m, cmd
}

func (m Model) resolveConfirmation(ok bool) (tea.Model, tea.Cmd) {
	m.state = m.confirmReturn
	m.form = nil
	m.confirmed = nil

	if m.pendingDelete != nil {
		r := *m.pendingDelete
		m.pendingDelete = nil
		if !ok {
			return m, nil
		}
		m.inflight[r.ID] = true
		return m, m.deleteReservation(r)
	}
	if m.pendingClear {
		m.pendingClear = false
		if ok {
			return m, m.clearJournal()
		}
	}
	return m, nil
}

// endSession tears down the authenticated surfaces and shows the login form
func (m Model) endSession(status string, isError bool) (tea.Model, tea.Cmd) {
	m.unmount()
	m.state = constants.StateLogin
	m.detailID = ""
	m.inflight = make(map[string]bool)
	m.pendingDelete = nil
	m.pendingClear = false
	m.loggingIn = false
	m.setStatus(status, isError)
	return m, m.newLoginForm()
}

// stepTab moves between the top-level tabs. The detail view keeps its tab.
func (m Model) stepTab(delta int) constants.SessionState {
	current := m.activeTab()
	for i, s := range tabs {
		if s == current {
			return tabs[(i+delta+len(tabs))%len(tabs)]
		}
	}
	return tabs[0]
}

func (m *Model) resize() {
	w := m.width - 4
	h := m.height - 10
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	m.chartModel.SetSize(w / 2)
	m.recentModel.SetSize(w, h)
	m.listModel.SetSize(w, h)
	m.feedModel.SetSize(w, h)
	m.help.Width = w
}
