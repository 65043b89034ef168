// Package transition holds the single reservation status policy shared by
// the list view, the detail view and the CLI.
package transition

import (
	reserrors "github.com/julianstephens/resdesk/internal/errors"
	"github.com/julianstephens/resdesk/internal/models"
)

// Action is an operator action on a reservation
type Action string

const (
	ActionAccept  Action = "accept"
	ActionReject  Action = "reject"
	ActionPending Action = "pending"
)

// Actions lists the operator actions in menu order
var Actions = []Action{ActionAccept, ActionReject, ActionPending}

var targets = map[Action]models.Status{
	ActionAccept:  models.StatusReady,
	ActionReject:  models.StatusCancelled,
	ActionPending: models.StatusPending,
}

var table = map[models.Status][]models.Status{
	models.StatusPending:   {models.StatusReady, models.StatusCancelled},
	models.StatusReady:     {models.StatusCancelled, models.StatusPending},
	models.StatusCancelled: {models.StatusReady, models.StatusPending},
}

// AllowedTransitions returns the statuses reachable from current. Unknown
// statuses have no outgoing transitions.
func AllowedTransitions(current models.Status) []models.Status {
	allowed := table[current]
	out := make([]models.Status, len(allowed))
	copy(out, allowed)
	return out
}

// CanTransition reports whether from → to is permitted
func CanTransition(from, to models.Status) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Check returns a ValidationError when from → to is not permitted.
// Same-state moves are rejected rather than sent as identity updates.
func Check(from, to models.Status) error {
	if !to.Valid() {
		return reserrors.NewValidationError("status", "unknown target status %q", to)
	}
	if !from.Valid() {
		return reserrors.NewValidationError("status", "unknown current status %q", from)
	}
	if from == to {
		return reserrors.NewValidationError("status", "reservation is already %s", to)
	}
	if !CanTransition(from, to) {
		return reserrors.NewValidationError("status", "cannot move a %s reservation to %s", from, to)
	}
	return nil
}

// Target returns the status an action moves a reservation to
func Target(a Action) (models.Status, bool) {
	s, ok := targets[a]
	return s, ok
}

// Enabled reports whether the action's control should be enabled for a
// reservation in the given status
func Enabled(a Action, current models.Status) bool {
	to, ok := targets[a]
	if !ok {
		return false
	}
	return CanTransition(current, to)
}
