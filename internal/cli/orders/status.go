package orders

import (
	"fmt"

	"github.com/julianstephens/resdesk/internal/cli"
	"github.com/julianstephens/resdesk/internal/transition"
)

type AcceptCmd struct {
	ID string `arg:"" help:"Reservation ID."`
}

func (c *AcceptCmd) Run(ctx *cli.Context) error {
	return apply(ctx, c.ID, transition.ActionAccept)
}

type RejectCmd struct {
	ID string `arg:"" help:"Reservation ID."`
}

func (c *RejectCmd) Run(ctx *cli.Context) error {
	return apply(ctx, c.ID, transition.ActionReject)
}

type PendingCmd struct {
	ID string `arg:"" help:"Reservation ID."`
}

func (c *PendingCmd) Run(ctx *cli.Context) error {
	return apply(ctx, c.ID, transition.ActionPending)
}

// apply loads the current record so the policy is checked against the
// server's status, not a stale one
func apply(ctx *cli.Context, id string, action transition.Action) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	current, err := ctx.Reservations.Get(ctx.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load reservation %s: %w", id, err)
	}

	updated, err := ctx.Reservations.Apply(ctx.Context(), current, action)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout(), "Reservation %s: %s -> %s\n", updated.Label(), current.Status, updated.Status)
	return nil
}
