// Package resources exposes the generic resource adapter on the command
// line, for any resource the API serves
package resources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/resdesk/internal/adapter"
	"github.com/julianstephens/resdesk/internal/cli"
	"github.com/julianstephens/resdesk/internal/cli/orders"
)

type ListCmd struct {
	Resource string   `arg:"" help:"Resource name, e.g. reservations."`
	Page     int      `help:"Page number (omitted when 0)."`
	PageSize int      `help:"Page size (omitted when 0)."`
	Sort     string   `help:"Sort field; prefix with - for descending (default -updatedAt)."`
	Filter   []string `help:"Equality filter as field=value. Repeatable." short:"f"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	filters, err := ParseFilters(c.Filter)
	if err != nil {
		return err
	}

	res, err := ctx.Client.List(ctx.Context(), c.Resource, adapter.ListParams{
		Pagination: adapter.Pagination{Page: c.Page, PageSize: c.PageSize},
		Filters:    filters,
		Sorters:    orders.ParseSort(c.Sort),
	})
	if err != nil {
		return err
	}

	return printJSON(ctx.Stdout(), map[string]any{"data": res.Records, "total": res.Total})
}

type GetCmd struct {
	Resource string `arg:"" help:"Resource name."`
	ID       string `arg:"" help:"Record ID."`
}

func (c *GetCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}
	rec, err := ctx.Client.GetOne(ctx.Context(), c.Resource, c.ID)
	if err != nil {
		return err
	}
	return printJSON(ctx.Stdout(), rec)
}

type CreateCmd struct {
	Resource string `arg:"" help:"Resource name."`
	Data     string `arg:"" optional:"" help:"JSON payload. Read from --file or stdin when omitted."`
	File     string `help:"Read the JSON payload from a file." type:"existingfile"`
}

func (c *CreateCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}
	payload, err := readPayload(c.Data, c.File, os.Stdin)
	if err != nil {
		return err
	}
	rec, err := ctx.Client.Create(ctx.Context(), c.Resource, payload)
	if err != nil {
		return err
	}
	return printJSON(ctx.Stdout(), rec)
}

type UpdateCmd struct {
	Resource string `arg:"" help:"Resource name."`
	ID       string `arg:"" help:"Record ID."`
	Data     string `arg:"" optional:"" help:"JSON payload. Read from --file or stdin when omitted."`
	File     string `help:"Read the JSON payload from a file." type:"existingfile"`
}

func (c *UpdateCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}
	payload, err := readPayload(c.Data, c.File, os.Stdin)
	if err != nil {
		return err
	}
	rec, err := ctx.Client.Update(ctx.Context(), c.Resource, c.ID, payload)
	if err != nil {
		return err
	}
	return printJSON(ctx.Stdout(), rec)
}

type DeleteCmd struct {
	Resource string `arg:"" help:"Resource name."`
	ID       string `arg:"" help:"Record ID."`
	Yes      bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s %s?", c.Resource, c.ID)).
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

	rec, err := ctx.Client.Delete(ctx.Context(), c.Resource, c.ID)
	if err != nil {
		return err
	}
	return printJSON(ctx.Stdout(), rec)
}

// ParseFilters turns field=value pairs into equality filters
func ParseFilters(raw []string) ([]adapter.Filter, error) {
	filters := make([]adapter.Filter, 0, len(raw))
	for _, f := range raw {
		field, value, ok := strings.Cut(f, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid filter %q (expected field=value)", f)
		}
		filters = append(filters, adapter.Eq(field, value))
	}
	return filters, nil
}

func readPayload(data, file string, stdin io.Reader) (map[string]any, error) {
	var raw []byte
	switch {
	case data != "":
		raw = []byte(data)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		raw = b
	default:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		raw = b
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	return payload, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
