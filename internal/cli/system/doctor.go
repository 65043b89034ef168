package system

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/julianstephens/resdesk/internal/backup"
	"github.com/julianstephens/resdesk/internal/cli"
	"github.com/julianstephens/resdesk/internal/keyring"
	"github.com/julianstephens/resdesk/internal/storage"
)

// probeTimeout bounds each network check
var probeTimeout = 5 * time.Second

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	out := ctx.Stdout()
	fmt.Fprintln(out, "Running diagnostics...")
	fmt.Fprintln(out)

	hasError := false
	fail := func(name string, err error) {
		fmt.Fprintf(out, "❌ %s: FAIL\n", name)
		fmt.Fprintf(out, "   Error: %v\n", err)
		hasError = true
	}

	// API
	apiReachable := false
	if err := checkAPIReachable(ctx); err != nil {
		fail("API reachable", err)
	} else {
		fmt.Fprintf(out, "✓ API reachable: OK\n")
		apiReachable = true
	}

	// Keyring and session
	if !keyring.IsAvailable() {
		warn(out, "Keyring available", fmt.Errorf("the OS keyring is not reachable, sessions cannot be stored"))
	} else {
		fmt.Fprintf(out, "✓ Keyring available: OK\n")
	}
	if apiReachable {
		if err := checkSession(ctx); err != nil {
			warn(out, "Session", err)
		} else {
			fmt.Fprintf(out, "✓ Session: OK (%s)\n", ctx.Auth.Username())
		}
	} else {
		skip(out, "Session", "API not reachable")
	}

	// Journal
	journalReachable := false
	if err := ctx.Store.Load(); err != nil {
		fail("Journal reachable", err)
	} else {
		fmt.Fprintf(out, "✓ Journal reachable: OK\n")
		journalReachable = true
	}
	if journalReachable {
		if err := checkSchema(ctx); err != nil {
			fail("Journal schema", err)
		} else {
			fmt.Fprintf(out, "✓ Journal schema: OK\n")
		}
	} else {
		skip(out, "Journal schema", "journal not reachable")
	}

	// Backups are a warning only
	if storage.IsPostgres(ctx.Config.Journal) {
		skip(out, "Backups present", "PostgreSQL journal")
	} else if err := checkBackupsPresent(ctx); err != nil {
		warn(out, "Backups present", err)
	} else {
		fmt.Fprintf(out, "✓ Backups present: OK\n")
	}

	// Real-time channel
	if ctx.Config.SocketURL == "" {
		skip(out, "Real-time channel", "no socket URL configured")
	} else if err := checkSocket(ctx); err != nil {
		fail("Real-time channel", err)
	} else {
		fmt.Fprintf(out, "✓ Real-time channel: OK\n")
	}

	if err := checkClockTimezone(ctx); err != nil {
		fail("Clock/timezone", err)
	} else {
		fmt.Fprintf(out, "✓ Clock/timezone: OK (%s)\n", ctx.Location())
	}

	fmt.Fprintln(out)
	if hasError {
		fmt.Fprintln(out, "Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Fprintln(out, "All diagnostics passed!")
	return nil
}

func warn(out io.Writer, name string, err error) {
	fmt.Fprintf(out, "⚠ %s: WARNING\n", name)
	fmt.Fprintf(out, "   %v\n", err)
}

func skip(out io.Writer, name, reason string) {
	fmt.Fprintf(out, "⊘ %s: SKIPPED (%s)\n", name, reason)
}

func checkAPIReachable(ctx *cli.Context) error {
	c, cancel := context.WithTimeout(ctx.Context(), probeTimeout)
	defer cancel()
	status, err := ctx.Client.Ping(c)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", ctx.Client.BaseURL(), err)
	}
	if status >= 500 {
		return fmt.Errorf("%s answered with status %d", ctx.Client.BaseURL(), status)
	}
	return nil
}

func checkSession(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx.Context(), probeTimeout)
	defer cancel()
	if _, err := ctx.Auth.Me(c); err != nil {
		return fmt.Errorf("stored session was rejected: %w", err)
	}
	return nil
}

func checkSchema(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("journal schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'resdesk backup create'")
	}
	return nil
}

// checkSocket connects the configured transport and waits for it to
// report connected
func checkSocket(ctx *cli.Context) error {
	transport, err := ctx.DialTransport()
	if err != nil {
		return err
	}
	defer transport.Close()

	connected := make(chan struct{}, 1)
	off := transport.OnConnectivity(func(up bool) {
		if up {
			select {
			case connected <- struct{}{}:
			default:
			}
		}
	})
	defer off()

	c, cancel := context.WithTimeout(ctx.Context(), probeTimeout)
	defer cancel()
	go func() { _ = transport.Run(c) }()

	select {
	case <-connected:
		return nil
	case <-c.Done():
		return fmt.Errorf("no connection to %s within %s", ctx.Config.SocketURL, probeTimeout)
	}
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now().In(ctx.Location())
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
