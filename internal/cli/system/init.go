package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/resdesk/internal/cli"
	"github.com/julianstephens/resdesk/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Delete the existing journal before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()

	if c.Force {
		if storage.IsPostgres(ctx.Config.Journal) {
			return fmt.Errorf("--force is only supported for SQLite journals")
		}
		path := ctx.Store.GetConfigPath()
		if _, err := os.Stat(path); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing journal: %w", err)
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete existing journal: %w", err)
			}
			fmt.Fprintf(out, "Deleted existing journal at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing journal: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Initialized resdesk journal at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
