package system

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/julianstephens/resdesk/internal/cli"
	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/debounce"
	"github.com/julianstephens/resdesk/internal/realtime"
	"github.com/julianstephens/resdesk/internal/toast"
	"github.com/julianstephens/resdesk/internal/tui/components/recent"
)

// errSessionExpired ends a watch when the API rejects the session
var errSessionExpired = errors.New("session expired (run 'resdesk login')")

// lockedWriter serializes writes from transport callbacks and the watch loop
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

type WatchCmd struct {
	Recent bool `help:"Print the newest reservations after each burst of new ones."`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}
	if ctx.Config.SocketURL == "" {
		return fmt.Errorf("no socket URL configured (set --socket-url or RESDESK_SOCKET_URL)")
	}
	out := &lockedWriter{w: ctx.Stdout()}

	transport, err := ctx.DialTransport()
	if err != nil {
		return err
	}
	defer transport.Close()

	runCtx, cancel := context.WithCancelCause(ctx.Context())
	defer cancel(nil)

	removeLogout := ctx.Auth.OnForcedLogout(func() { cancel(errSessionExpired) })
	defer removeLogout()

	offBridge := realtime.BridgeConnectivity(transport, ctx.Bus)
	defer offBridge()
	offStatus := ctx.Bus.Subscribe(constants.TopicConnectivityChanged, func(payload any) {
		if up, _ := payload.(bool); up {
			fmt.Fprintln(out, "Connected, waiting for reservations...")
		} else {
			fmt.Fprintln(out, "Disconnected, reconnecting...")
		}
	})
	defer offStatus()

	notifier := realtime.NewNotifier(transport, ctx.Bus, ctx.Toaster(toast.NewWriter(out)))
	notifier.Start()
	defer notifier.Stop()

	refresh := make(chan struct{}, 1)
	if c.Recent {
		coordinator := debounce.NewCoordinator(ctx.Bus, constants.TopicReservationCreated, constants.RecentGridDebounce,
			func() {
				select {
				case refresh <- struct{}{}:
				default:
				}
			},
			debounce.WithName("watch-recent"),
		)
		defer coordinator.Stop()
	}

	go runTransport(runCtx, transport)
	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", ctx.Config.SocketURL)

	for {
		select {
		case <-runCtx.Done():
			if cause := context.Cause(runCtx); errors.Is(cause, errSessionExpired) {
				return cause
			}
			return nil
		case <-refresh:
			if err := printRecent(runCtx, ctx, out); err != nil {
				fmt.Fprintf(out, "Failed to refresh reservations: %v\n", err)
			}
		}
	}
}

func printRecent(c context.Context, ctx *cli.Context, out io.Writer) error {
	page, err := ctx.Reservations.Recent(c, 1, constants.RecentGridPageSize)
	if err != nil {
		return err
	}
	// The grid is written in one call
	var b strings.Builder
	fmt.Fprintf(&b, "\nRecent reservations (%d total)\n", page.Total)
	for _, row := range recent.Rows(page.Items, ctx.Location()) {
		b.WriteString(strings.Join(row, "  ") + "\n")
	}
	b.WriteString("\n")
	_, err = io.WriteString(out, b.String())
	return err
}
