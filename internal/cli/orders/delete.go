package orders

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/resdesk/internal/cli"
)

type DeleteCmd struct {
	ID  string `arg:"" help:"Reservation ID."`
	Yes bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	r, err := ctx.Reservations.Get(ctx.Context(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to find reservation with ID %s: %w", c.ID, err)
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete reservation %s for %s?", r.Label(), r.Name)).
			Description("This cannot be undone.").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return err
		}
		if !confirmed {
			fmt.Fprintln(ctx.Stdout(), "Cancelled")
			return nil
		}
	}

	if _, err := ctx.Reservations.Delete(ctx.Context(), c.ID); err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	fmt.Fprintf(ctx.Stdout(), "Deleted reservation %s (ID: %s)\n", r.Label(), c.ID)
	return nil
}
