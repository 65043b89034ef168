// Package tui is the interactive operator console
package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/resdesk/internal/dashboard"
	"github.com/julianstephens/resdesk/internal/debounce"
	"github.com/julianstephens/resdesk/internal/eventbus"
	"github.com/julianstephens/resdesk/internal/models"
	"github.com/julianstephens/resdesk/internal/realtime"
	"github.com/julianstephens/resdesk/internal/reservations"
	"github.com/julianstephens/resdesk/internal/toast"
	"github.com/julianstephens/resdesk/internal/transition"
)

// Session is the part of the auth service the console drives
type Session interface {
	Restore() (bool, error)
	Username() string
	Login(ctx context.Context, username, password string) (models.Identity, error)
	Logout(ctx context.Context) error
	OnForcedLogout(fn func()) (remove func())
}

// Reservations is the typed reservation API
type Reservations interface {
	List(ctx context.Context, q reservations.Query) (reservations.Page, error)
	Recent(ctx context.Context, page, size int) (reservations.Page, error)
	Get(ctx context.Context, id string) (models.Reservation, error)
	Apply(ctx context.Context, current models.Reservation, action transition.Action) (models.Reservation, error)
	Delete(ctx context.Context, id string) (models.Reservation, error)
}

// Charts builds dashboard charts
type Charts interface {
	Load(ctx context.Context, r dashboard.Range) (dashboard.Chart, error)
}

// Journal is the local notification history
type Journal interface {
	GetRecentNotifications(limit int) ([]models.Notification, error)
	MarkAllRead() (int, error)
	ClearNotifications() (int, error)
}

// Deps are the collaborators the console runs against
type Deps struct {
	Context      context.Context
	Session      Session
	Reservations Reservations
	Charts       Charts
	Journal      Journal
	Bus          *eventbus.Bus
	// Transport is nil when no real-time socket is configured
	Transport realtime.Transport
	// Toaster receives every toast in addition to the in-app stack
	Toaster  toast.Toaster
	Location *time.Location
	Clock    debounce.Clock
}

// Run starts the console and blocks until the operator quits or ctx ends
func Run(ctx context.Context, deps Deps) error {
	deps.Context = ctx
	m := NewModel(deps)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
