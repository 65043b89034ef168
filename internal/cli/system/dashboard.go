package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/resdesk/internal/cli"
	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/dashboard"
	"github.com/julianstephens/resdesk/internal/tui/components/chart"
	"github.com/julianstephens/resdesk/internal/tui/components/timeline"
)

type DashboardCmd struct {
	Range string `help:"Chart window (lastWeek or lastMonth)." enum:"lastWeek,lastMonth" default:"lastWeek"`
	Width int    `help:"Chart width in columns." default:"60"`
}

func (c *DashboardCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}
	r, err := dashboard.ParseRange(c.Range)
	if err != nil {
		return err
	}
	out := ctx.Stdout()

	ch, err := dashboard.NewLoader(ctx.Reservations, ctx.Location()).Load(ctx.Context(), r)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Reservations, %s\n", r.Label())
	fmt.Fprintln(out, chart.Render(ch, c.Width))
	fmt.Fprintln(out)

	page, err := ctx.Reservations.Recent(ctx.Context(), 1, constants.TimelinePageSize)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Timeline")
	if len(page.Items) == 0 {
		fmt.Fprintln(out, "No activity yet")
	}
	now := time.Now()
	for _, item := range page.Items {
		fmt.Fprintln(out, timeline.Line(item, now))
	}

	return printRecent(ctx.Context(), ctx, out)
}
