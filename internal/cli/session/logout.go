package session

import (
	"fmt"

	"github.com/julianstephens/resdesk/internal/cli"
)

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	ok, err := ctx.Auth.Restore()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(ctx.Stdout(), "Not logged in")
		return nil
	}

	if err := ctx.Auth.Logout(ctx.Context()); err != nil {
		return fmt.Errorf("logged out locally, but the API call failed: %w", err)
	}
	fmt.Fprintln(ctx.Stdout(), "Logged out")
	return nil
}
