package orders

import (
	"fmt"
	"os"

	"github.com/julianstephens/resdesk/internal/cli"
	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/export"
	"github.com/julianstephens/resdesk/internal/models"
	"github.com/julianstephens/resdesk/internal/reservations"
)

type ExportCmd struct {
	Format string `help:"Output format (csv or json)." default:"csv" enum:"csv,json"`
	Output string `help:"Output file. Writes to stdout when omitted." short:"o" type:"path"`
	Status string `help:"Only export reservations with this status."`
	Sort   string `help:"Sort field; prefix with - for descending (default -updatedAt)."`
	Max    int    `help:"Maximum number of reservations." default:"500"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	if c.Max <= 0 || c.Max > constants.ExportMaxItems {
		return fmt.Errorf("--max must be between 1 and %d", constants.ExportMaxItems)
	}

	q := reservations.Query{PageSize: constants.ExportPageSize, Sorters: ParseSort(c.Sort)}
	if c.Status != "" {
		st, err := models.ParseStatus(c.Status)
		if err != nil {
			return err
		}
		q.Status = st
	}

	items, err := ctx.Reservations.Collect(ctx.Context(), q, c.Max)
	if err != nil {
		return fmt.Errorf("failed to fetch reservations: %w", err)
	}

	if c.Output == "" {
		return export.Write(ctx.Stdout(), format, items)
	}

	f, err := os.Create(c.Output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", c.Output, err)
	}
	if err := export.Write(f, format, items); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Exported %d reservations to %s\n", len(items), c.Output)
	return nil
}
