package tui

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/debounce"
	"github.com/julianstephens/resdesk/internal/logger"
	"github.com/julianstephens/resdesk/internal/models"
	"github.com/julianstephens/resdesk/internal/realtime"
	"github.com/julianstephens/resdesk/internal/toast"
	"github.com/julianstephens/resdesk/internal/tui/components/chart"
	"github.com/julianstephens/resdesk/internal/tui/components/detail"
	"github.com/julianstephens/resdesk/internal/tui/components/feed"
	"github.com/julianstephens/resdesk/internal/tui/components/recent"
	"github.com/julianstephens/resdesk/internal/tui/components/reservations"
	"github.com/julianstephens/resdesk/internal/tui/components/timeline"
	"github.com/julianstephens/resdesk/internal/tui/components/toasts"
)

const inboxSize = 64

// tabs in display order
var tabs = []constants.SessionState{
	constants.StateDashboard,
	constants.StateReservations,
	constants.StateNotifications,
}

type LoginFormModel struct {
	Username string
	Password string
}

// runtime holds what outlives a single Model value: the inbox fed by bus
// handlers and timers, and the subscriptions of the mounted surfaces.
type runtime struct {
	inbox chan any

	mu       sync.Mutex
	recent   *debounce.Coordinator
	chart    *debounce.Coordinator
	notifier *realtime.Notifier
	offs     []func()
}

// send enqueues msg without ever blocking the caller
func (r *runtime) send(msg any) {
	select {
	case r.inbox <- msg:
	default:
		logger.Warn("Console inbox full, dropping message", "type", typeName(msg))
	}
}

func (r *runtime) wait() tea.Cmd {
	return func() tea.Msg {
		return inboxMsg{msg: <-r.inbox}
	}
}

type Model struct {
	deps          Deps
	rt            *runtime
	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	spinner       spinner.Model
	width         int
	height        int
	quitting      bool

	username  string
	form      *huh.Form
	loginForm *LoginFormModel
	loggingIn bool

	chartModel    chart.Model
	timelineModel timeline.Model
	recentModel   recent.Model
	listModel     reservations.Model
	detailModel   detail.Model
	feedModel     feed.Model
	toastModel    toasts.Model

	listSeq   int
	detailID  string
	inflight  map[string]bool
	hasSocket bool
	online    bool

	confirmReturn constants.SessionState
	confirmed     *bool
	pendingDelete *models.Reservation
	pendingClear  bool
	statusMessage string
	statusIsError bool
}

func NewModel(deps Deps) Model {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Clock == nil {
		deps.Clock = debounce.RealClock
	}

	m := Model{
		deps:          deps,
		rt:            &runtime{inbox: make(chan any, inboxSize)},
		state:         constants.StateLogin,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		chartModel:    chart.New(),
		timelineModel: timeline.New(),
		recentModel:   recent.New(deps.Location),
		listModel:     reservations.New(deps.Location),
		detailModel:   detail.New(deps.Location),
		feedModel:     feed.New(deps.Location),
		toastModel:    toasts.New(),
		inflight:      make(map[string]bool),
		hasSocket:     deps.Transport != nil,
	}

	rt := m.rt
	rt.offs = append(rt.offs, deps.Session.OnForcedLogout(func() {
		rt.send(forcedLogoutMsg{})
	}))
	rt.offs = append(rt.offs, deps.Bus.Subscribe(constants.TopicConnectivityChanged, func(payload any) {
		if online, ok := payload.(bool); ok {
			rt.send(connectivityMsg{online: online})
		}
	}))
	if deps.Transport != nil {
		m.online = deps.Transport.Connected()
		rt.offs = append(rt.offs, realtime.BridgeConnectivity(deps.Transport, deps.Bus))
	}

	restored, err := deps.Session.Restore()
	if err != nil {
		logger.Warn("Could not restore session", "error", err)
	}
	if restored {
		m.username = deps.Session.Username()
		m.state = constants.StateDashboard
		m.mount()
	} else {
		m.newLoginForm()
	}
	return m
}

// mount subscribes the dashboard surfaces and starts the notifier. It runs
// once per authenticated session.
func (m *Model) mount() {
	rt := m.rt
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.recent != nil {
		return
	}
	rt.recent = debounce.NewCoordinator(m.deps.Bus, constants.TopicReservationCreated, constants.RecentGridDebounce,
		func() { rt.send(refreshRecentMsg{}) },
		debounce.WithClock(m.deps.Clock), debounce.WithName("recent-grid"),
	)
	rt.chart = debounce.NewCoordinator(m.deps.Bus, constants.TopicReservationCreated, constants.DashboardChartDebounce,
		func() { rt.send(refreshChartMsg{}) },
		debounce.WithClock(m.deps.Clock), debounce.WithName("dashboard-chart"),
	)
	if m.deps.Transport != nil {
		rt.notifier = realtime.NewNotifier(m.deps.Transport, m.deps.Bus, toast.Multi{
			m.deps.Toaster,
			toast.Func(func(t toast.Toast) error {
				rt.send(toastMsg{toast: t})
				return nil
			}),
		})
		rt.notifier.Start()
	}
}

// unmount stops every coordinator and the notifier. No refetch runs after
// it returns.
func (m *Model) unmount() {
	rt := m.rt
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.recent != nil {
		rt.recent.Stop()
		rt.recent = nil
	}
	if rt.chart != nil {
		rt.chart.Stop()
		rt.chart = nil
	}
	if rt.notifier != nil {
		rt.notifier.Stop()
		rt.notifier = nil
	}
}

// Close releases every subscription the model holds
func (m Model) Close() {
	m.unmount()
	rt := m.rt
	rt.mu.Lock()
	offs := rt.offs
	rt.offs = nil
	rt.mu.Unlock()
	for _, off := range offs {
		off()
	}
}

func (m *Model) newLoginForm() tea.Cmd {
	m.loginForm = &LoginFormModel{Username: m.username}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&m.loginForm.Username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.loginForm.Password).
				Validate(required("password")),
		).Title("Sign in to " + constants.AppName),
	)
	return m.form.Init()
}

func (m *Model) newConfirmForm(title, affirmative string) tea.Cmd {
	confirmed := false
	m.confirmed = &confirmed
	m.confirmReturn = m.state
	m.state = constants.StateConfirmation
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative(affirmative).
				Negative("Cancel").
				Value(m.confirmed),
		),
	)
	return m.form.Init()
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.rt.wait(), m.spinner.Tick}
	if m.state == constants.StateLogin {
		cmds = append(cmds, m.form.Init())
	} else {
		cmds = append(cmds, m.loadAll())
	}
	return tea.Batch(cmds...)
}

func (m Model) isLoggedIn() bool {
	return m.state != constants.StateLogin
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMessage = msg
	m.statusIsError = isError
}
