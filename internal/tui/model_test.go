package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/dashboard"
	"github.com/julianstephens/resdesk/internal/debounce"
	"github.com/julianstephens/resdesk/internal/eventbus"
	"github.com/julianstephens/resdesk/internal/models"
	"github.com/julianstephens/resdesk/internal/realtime"
	"github.com/julianstephens/resdesk/internal/reservations"
	"github.com/julianstephens/resdesk/internal/toast"
	"github.com/julianstephens/resdesk/internal/transition"
	resview "github.com/julianstephens/resdesk/internal/tui/components/reservations"
)

type fakeSession struct {
	restored  bool
	listeners []func()
}

func (s *fakeSession) Restore() (bool, error) { return s.restored, nil }
func (s *fakeSession) Username() string       { return "admin" }
func (s *fakeSession) Logout(context.Context) error {
	return nil
}

func (s *fakeSession) Login(_ context.Context, username, _ string) (models.Identity, error) {
	return models.Identity{ID: "1", Name: username}, nil
}

func (s *fakeSession) OnForcedLogout(fn func()) func() {
	s.listeners = append(s.listeners, fn)
	return func() {}
}

func (s *fakeSession) force() {
	for _, fn := range s.listeners {
		fn()
	}
}

type fakeReservations struct {
	mu       sync.Mutex
	applyErr error
	lists    int
}

func (f *fakeReservations) List(context.Context, reservations.Query) (reservations.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	return reservations.Page{}, nil
}

func (f *fakeReservations) Recent(context.Context, int, int) (reservations.Page, error) {
	return reservations.Page{}, nil
}

func (f *fakeReservations) Get(_ context.Context, id string) (models.Reservation, error) {
	return models.Reservation{ID: id, Status: models.StatusPending}, nil
}

func (f *fakeReservations) Apply(_ context.Context, r models.Reservation, a transition.Action) (models.Reservation, error) {
	if f.applyErr != nil {
		return r, f.applyErr
	}
	to, _ := transition.Target(a)
	r.Status = to
	return r, nil
}

func (f *fakeReservations) Delete(_ context.Context, id string) (models.Reservation, error) {
	return models.Reservation{ID: id}, nil
}

type fakeCharts struct{}

func (fakeCharts) Load(_ context.Context, r dashboard.Range) (dashboard.Chart, error) {
	return dashboard.Chart{Range: r}, nil
}

type fakeJournal struct{}

func (fakeJournal) GetRecentNotifications(int) ([]models.Notification, error) { return nil, nil }
func (fakeJournal) MarkAllRead() (int, error)                                 { return 0, nil }
func (fakeJournal) ClearNotifications() (int, error)                          { return 0, nil }

type fakeTransport struct {
	mu       sync.Mutex
	handlers map[string]realtime.Handler
}

func (t *fakeTransport) On(event string, h realtime.Handler) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handlers == nil {
		t.handlers = make(map[string]realtime.Handler)
	}
	t.handlers[event] = h
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.handlers, event)
	}
}

func (t *fakeTransport) OnConnectivity(realtime.ConnectivityHandler) func() { return func() {} }
func (t *fakeTransport) Connected() bool                                    { return true }
func (t *fakeTransport) Close() error                                       { return nil }

func (t *fakeTransport) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (t *fakeTransport) emit(event string, data []byte) {
	t.mu.Lock()
	h := t.handlers[event]
	t.mu.Unlock()
	if h != nil {
		h(data)
	}
}

type harness struct {
	model     Model
	session   *fakeSession
	resv      *fakeReservations
	bus       *eventbus.Bus
	clock     *debounce.ManualClock
	transport *fakeTransport
	shown     []toast.Toast
}

func newHarness(t *testing.T, restored bool) *harness {
	t.Helper()
	h := &harness{
		session:   &fakeSession{restored: restored},
		resv:      &fakeReservations{},
		bus:       eventbus.New(),
		clock:     debounce.NewManualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		transport: &fakeTransport{},
	}
	h.model = NewModel(Deps{
		Session:      h.session,
		Reservations: h.resv,
		Charts:       fakeCharts{},
		Journal:      fakeJournal{},
		Bus:          h.bus,
		Transport:    h.transport,
		Toaster: toast.Func(func(t toast.Toast) error {
			h.shown = append(h.shown, t)
			return nil
		}),
		Location: time.UTC,
		Clock:    h.clock,
	})
	t.Cleanup(h.model.Close)
	return h
}

// drain returns every message queued on the inbox
func (h *harness) drain() []any {
	var out []any
	for {
		select {
		case msg := <-h.model.rt.inbox:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

func count[T any](msgs []any) int {
	n := 0
	for _, m := range msgs {
		if _, ok := m.(T); ok {
			n++
		}
	}
	return n
}

func TestStartsAtLoginWithoutSession(t *testing.T) {
	h := newHarness(t, false)
	if h.model.state != constants.StateLogin {
		t.Fatalf("expected login state, got %d", h.model.state)
	}
	h.bus.Publish(constants.TopicReservationCreated, nil)
	h.clock.Advance(time.Second)
	if msgs := h.drain(); len(msgs) != 0 {
		t.Errorf("no surface should refetch before login, got %v", msgs)
	}
}

func TestBurstCollapsesToOneRefetchPerSurface(t *testing.T) {
	h := newHarness(t, true)
	if h.model.state != constants.StateDashboard {
		t.Fatalf("restored session should open the dashboard, got %d", h.model.state)
	}

	for i := 0; i < 3; i++ {
		h.bus.Publish(constants.TopicReservationCreated, nil)
		h.clock.Advance(100 * time.Millisecond)
	}
	if msgs := h.drain(); len(msgs) != 0 {
		t.Fatalf("nothing should fire inside the debounce window, got %v", msgs)
	}

	h.clock.Advance(200 * time.Millisecond)
	msgs := h.drain()
	if got := count[refreshRecentMsg](msgs); got != 1 {
		t.Errorf("recent grid refetches = %d, want 1", got)
	}
	if got := count[refreshChartMsg](msgs); got != 0 {
		t.Errorf("chart should still be waiting, got %d refetches", got)
	}

	h.clock.Advance(200 * time.Millisecond)
	if got := count[refreshChartMsg](h.drain()); got != 1 {
		t.Errorf("chart refetches = %d, want 1", got)
	}
}

func TestForcedLogoutStopsSurfaces(t *testing.T) {
	h := newHarness(t, true)

	h.session.force()
	msgs := h.drain()
	if count[forcedLogoutMsg](msgs) != 1 {
		t.Fatalf("expected a forced logout message, got %v", msgs)
	}
	h.update(forcedLogoutMsg{})
	if h.model.state != constants.StateLogin {
		t.Fatalf("forced logout should return to login, got %d", h.model.state)
	}
	if !h.model.statusIsError {
		t.Error("forced logout should be reported as an error")
	}

	h.bus.Publish(constants.TopicReservationCreated, nil)
	h.clock.Advance(time.Second)
	if msgs := h.drain(); len(msgs) != 0 {
		t.Errorf("unmounted surfaces must not refetch, got %v", msgs)
	}
	h.transport.emit(constants.EventNewReservation, []byte(`{"orderNumber":"1"}`))
	if len(h.shown) != 0 {
		t.Error("notifier should be stopped after logout")
	}
}

func TestNewReservationEventToastsAndRefreshes(t *testing.T) {
	h := newHarness(t, true)

	h.transport.emit(constants.EventNewReservation, []byte(`{"_id":"r9","orderNumber":1042}`))

	if len(h.shown) != 1 {
		t.Fatalf("expected 1 toast, got %d", len(h.shown))
	}
	if h.shown[0].Description != "Reservation #1042" || h.shown[0].ReservationID != "r9" {
		t.Errorf("unexpected toast %+v", h.shown[0])
	}

	msgs := h.drain()
	if count[toastMsg](msgs) != 1 {
		t.Fatalf("expected the toast on the inbox, got %v", msgs)
	}
	h.update(msgs[0])
	if h.model.toastModel.Len() != 1 {
		t.Error("toast should be visible in the console")
	}

	h.clock.Advance(constants.DashboardChartDebounce)
	msgs = h.drain()
	if count[refreshRecentMsg](msgs) != 1 || count[refreshChartMsg](msgs) != 1 {
		t.Errorf("expected one refetch per surface, got %v", msgs)
	}
}

func TestActionInFlightGuard(t *testing.T) {
	h := newHarness(t, true)
	r := models.Reservation{ID: "r1", OrderNumber: "5", Status: models.StatusPending}

	h.update(resview.OpenDetailMsg{ID: "r1"})
	h.update(detailLoadedMsg{id: "r1", reservation: r})

	cmd := h.update(resview.ActionMsg{Reservation: r, Action: transition.ActionAccept})
	if cmd == nil {
		t.Fatal("first action should start a request")
	}
	if !h.model.detailModel.Busy() {
		t.Error("detail should be busy while saving")
	}
	if again := h.update(resview.ActionMsg{Reservation: r, Action: transition.ActionReject}); again != nil {
		t.Error("a second action on the same reservation must be ignored while in flight")
	}

	h.update(cmd())
	got, _ := h.model.detailModel.Reservation()
	if got.Status != models.StatusReady {
		t.Errorf("status = %s, want Ready", got.Status)
	}
	if h.model.inflight["r1"] {
		t.Error("in-flight flag should clear when the request finishes")
	}
}

func TestFailedActionLeavesRecord(t *testing.T) {
	h := newHarness(t, true)
	h.resv.applyErr = errors.New("Error updating record")
	r := models.Reservation{ID: "r1", Status: models.StatusPending}

	h.update(resview.OpenDetailMsg{ID: "r1"})
	h.update(detailLoadedMsg{id: "r1", reservation: r})
	cmd := h.update(resview.ActionMsg{Reservation: r, Action: transition.ActionAccept})
	h.update(cmd())

	got, _ := h.model.detailModel.Reservation()
	if got.Status != models.StatusPending {
		t.Errorf("status = %s, want Pending after a failed update", got.Status)
	}
	if !h.model.statusIsError {
		t.Error("failure should surface as an error status")
	}
}

func TestStaleListResponseDropped(t *testing.T) {
	h := newHarness(t, true)

	h.update(resview.ReloadMsg{})
	stale := h.model.listSeq - 1
	h.update(listLoadedMsg{seq: stale, page: reservations.Page{
		Items: []models.Reservation{{ID: "old"}},
		Total: 1,
	}})
	if _, ok := h.model.listModel.Selected(); ok {
		t.Error("a response for an older request must not replace the table")
	}

	h.update(listLoadedMsg{seq: h.model.listSeq, page: reservations.Page{
		Items: []models.Reservation{{ID: "new"}},
		Total: 1,
	}})
	if r, ok := h.model.listModel.Selected(); !ok || r.ID != "new" {
		t.Errorf("current response should populate the table, got %+v", r)
	}
}

func TestTabsCycle(t *testing.T) {
	h := newHarness(t, true)

	h.update(tea.KeyMsg{Type: tea.KeyTab})
	if h.model.state != constants.StateReservations {
		t.Errorf("tab should open reservations, got %d", h.model.state)
	}
	h.update(tea.KeyMsg{Type: tea.KeyTab})
	h.update(tea.KeyMsg{Type: tea.KeyTab})
	if h.model.state != constants.StateDashboard {
		t.Errorf("tabs should wrap to the dashboard, got %d", h.model.state)
	}
	h.update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if h.model.state != constants.StateNotifications {
		t.Errorf("shift+tab should wrap to notifications, got %d", h.model.state)
	}
}

func TestConnectivityIndicator(t *testing.T) {
	h := newHarness(t, true)
	if !h.model.online {
		t.Fatal("indicator should start from the transport state")
	}
	h.bus.Publish(constants.TopicConnectivityChanged, false)
	for _, msg := range h.drain() {
		h.update(msg)
	}
	if h.model.online {
		t.Error("indicator should follow connectivity changes")
	}
}
