package session

import (
	"fmt"

	"github.com/julianstephens/resdesk/internal/cli"
)

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	identity, err := ctx.Auth.Me(ctx.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout(), "%s (ID: %s)\n", identity.Name, identity.ID)
	fmt.Fprintf(ctx.Stdout(), "API: %s\n", ctx.Config.APIURL)
	return nil
}
