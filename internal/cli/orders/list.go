package orders

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/julianstephens/resdesk/internal/adapter"
	"github.com/julianstephens/resdesk/internal/cli"
	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/models"
	"github.com/julianstephens/resdesk/internal/reservations"
)

type ListCmd struct {
	Page     int    `help:"Page number." default:"1"`
	PageSize int    `help:"Page size." default:"10" enum:"10,20,50,100"`
	Status   string `help:"Only show reservations with this status (Pending, Ready, Cancelled)."`
	Sort     string `help:"Sort field; prefix with - for descending (default -updatedAt)."`
	ShowIDs  bool   `help:"Show reservation IDs." name:"show-ids"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	q := reservations.Query{Page: c.Page, PageSize: c.PageSize, Sorters: ParseSort(c.Sort)}
	if c.Status != "" {
		st, err := models.ParseStatus(c.Status)
		if err != nil {
			return err
		}
		q.Status = st
	}

	page, err := ctx.Reservations.List(ctx.Context(), q)
	if err != nil {
		return fmt.Errorf("failed to list reservations: %w", err)
	}

	out := ctx.Stdout()
	if len(page.Items) == 0 {
		fmt.Fprintln(out, "No reservations found")
		return nil
	}

	pages := (page.Total + c.PageSize - 1) / c.PageSize
	fmt.Fprintf(out, "Reservations (page %d of %d, %d total):\n", c.Page, max(pages, 1), page.Total)
	for _, r := range page.Items {
		printRow(out, r, c.ShowIDs, ctx.Location())
	}
	return nil
}

func printRow(out io.Writer, r models.Reservation, showID bool, loc *time.Location) {
	idStr := ""
	if showID {
		idStr = fmt.Sprintf(" (ID: %s)", r.ID)
	}
	fmt.Fprintf(out, "  %-8s [%s] %s%s - %d guests, %s\n",
		r.Label(), r.Status, r.Name, idStr, r.GuestCount, valueOr(r.ReservationTime(), "no time"))
	if r.Restaurant != "" || r.Area != "" {
		fmt.Fprintf(out, "      %s\n", strings.Trim(r.Restaurant+", "+string(r.Area), ", "))
	}
	if !r.UpdatedAt.IsZero() {
		fmt.Fprintf(out, "      Updated: %s\n", r.UpdatedAt.In(loc).Format(constants.DisplayDateTimeFormat))
	}
}

// ParseSort turns "field" or "-field" into a sorter list
func ParseSort(s string) []adapter.Sorter {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if field, ok := strings.CutPrefix(s, "-"); ok {
		return []adapter.Sorter{{Field: field, Order: adapter.Desc}}
	}
	return []adapter.Sorter{{Field: s, Order: adapter.Asc}}
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
