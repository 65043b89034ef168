// Package toast delivers the transient "new reservation" notifications to
// wherever the operator is looking: the TUI, a terminal, a webhook, a
// desktop tray helper, and the local journal.
package toast

import (
	"errors"
	"time"

	"github.com/julianstephens/resdesk/internal/constants"
)

// Toast is one transient notification
type Toast struct {
	Title         string
	Description   string
	Duration      time.Duration
	ReservationID string
	OrderNumber   string
	At            time.Time
}

// New builds a toast with the default display duration
func New(title, description string) Toast {
	return Toast{
		Title:       title,
		Description: description,
		Duration:    constants.NotificationDuration,
		At:          time.Now(),
	}
}

// Toaster shows a toast
type Toaster interface {
	Show(t Toast) error
}

// Func adapts a function to a Toaster
type Func func(t Toast) error

func (f Func) Show(t Toast) error { return f(t) }

// Multi fans a toast out to every sink. Every sink is tried; the errors
// are joined.
type Multi []Toaster

func (m Multi) Show(t Toast) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Show(t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
