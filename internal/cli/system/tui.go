package system

import (
	"context"
	"errors"

	"github.com/julianstephens/resdesk/internal/cli"
	"github.com/julianstephens/resdesk/internal/dashboard"
	"github.com/julianstephens/resdesk/internal/logger"
	"github.com/julianstephens/resdesk/internal/realtime"
	"github.com/julianstephens/resdesk/internal/tui"
)

type TuiCmd struct {
	NoSocket bool `help:"Do not connect to the real-time channel."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	runCtx, cancel := context.WithCancel(ctx.Context())
	defer cancel()

	var transport realtime.Transport
	if !c.NoSocket && ctx.Config.SocketURL != "" {
		t, err := ctx.DialTransport()
		if err != nil {
			logger.Warn("Real-time channel disabled", "error", err)
		} else {
			transport = t
			defer t.Close()
			go runTransport(runCtx, t)
		}
	}

	return tui.Run(runCtx, tui.Deps{
		Session:      ctx.Auth,
		Reservations: ctx.Reservations,
		Charts:       dashboard.NewLoader(ctx.Reservations, ctx.Location()),
		Journal:      ctx.Store,
		Bus:          ctx.Bus,
		Transport:    transport,
		Toaster:      ctx.Toaster(),
		Location:     ctx.Location(),
	})
}

// runTransport keeps the transport connected until ctx ends
func runTransport(ctx context.Context, t realtime.Transport) {
	if err := t.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, realtime.ErrClosed) {
		logger.Warn("Real-time channel stopped", "error", err)
	}
}
