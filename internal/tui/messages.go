package tui

import (
	"github.com/julianstephens/resdesk/internal/dashboard"
	"github.com/julianstephens/resdesk/internal/models"
	"github.com/julianstephens/resdesk/internal/reservations"
	"github.com/julianstephens/resdesk/internal/toast"
)

// inboxMsg wraps a message that arrived from outside the program loop
type inboxMsg struct {
	msg any
}

type (
	refreshRecentMsg struct{}
	refreshChartMsg  struct{}
	forcedLogoutMsg  struct{}
)

type connectivityMsg struct {
	online bool
}

type toastMsg struct {
	toast toast.Toast
}

type loginResultMsg struct {
	identity models.Identity
	err      error
}

type logoutDoneMsg struct {
	err error
}

type recentLoadedMsg struct {
	page reservations.Page
	err  error
}

type timelineLoadedMsg struct {
	page reservations.Page
	err  error
}

type chartLoadedMsg struct {
	chart dashboard.Chart
	err   error
}

type listLoadedMsg struct {
	seq  int
	page reservations.Page
	err  error
}

type detailLoadedMsg struct {
	id          string
	reservation models.Reservation
	err         error
}

type actionDoneMsg struct {
	before models.Reservation
	after  models.Reservation
	err    error
}

type deletedMsg struct {
	reservation models.Reservation
	err         error
}

type notificationsLoadedMsg struct {
	items []models.Notification
	err   error
}

type journalUpdatedMsg struct {
	format string
	n      int
	err    error
}
