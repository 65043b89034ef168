package orders

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/julianstephens/resdesk/internal/cli"
	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/models"
	"github.com/julianstephens/resdesk/internal/transition"
)

type ShowCmd struct {
	ID string `arg:"" help:"Reservation ID."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	r, err := ctx.Reservations.Get(ctx.Context(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to load reservation %s: %w", c.ID, err)
	}
	printDetail(ctx.Stdout(), r, ctx.Location())
	return nil
}

func printDetail(out io.Writer, r models.Reservation, loc *time.Location) {
	stamp := func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.In(loc).Format(constants.DisplayDateTimeFormat)
	}

	fmt.Fprintf(out, "Reservation %s (ID: %s)\n", r.Label(), r.ID)
	fmt.Fprintf(out, "  Status:      %s\n", r.Status)
	fmt.Fprintln(out, "Customer")
	fmt.Fprintf(out, "  Name:        %s\n", r.Name)
	fmt.Fprintf(out, "  Phone:       %s\n", r.Phone)
	fmt.Fprintf(out, "  Email:       %s\n", valueOr(r.Email, "-"))
	fmt.Fprintln(out, "Reservation")
	fmt.Fprintf(out, "  Area:        %s\n", valueOr(string(r.Area), "-"))
	fmt.Fprintf(out, "  Restaurant:  %s\n", valueOr(r.Restaurant, "-"))
	fmt.Fprintf(out, "  Date:        %s\n", valueOr(r.Date, "-"))
	fmt.Fprintf(out, "  Time:        %s\n", valueOr(r.TimeOfDay(), "-"))
	fmt.Fprintf(out, "  Guests:      %d\n", r.GuestCount)
	if r.Message != "" {
		fmt.Fprintf(out, "  Message:     %s\n", r.Message)
	}
	fmt.Fprintf(out, "  Created:     %s\n", stamp(r.CreatedAt))
	fmt.Fprintf(out, "  Updated:     %s\n", stamp(r.UpdatedAt))

	var actions []string
	for _, a := range transition.Actions {
		if transition.Enabled(a, r.Status) {
			actions = append(actions, string(a))
		}
	}
	if len(actions) > 0 {
		fmt.Fprintf(out, "  Actions:     %s\n", strings.Join(actions, ", "))
	}
}
