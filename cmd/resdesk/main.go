package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/resdesk/internal/adapter"
	"github.com/julianstephens/resdesk/internal/auth"
	"github.com/julianstephens/resdesk/internal/cli"
	"github.com/julianstephens/resdesk/internal/cli/backups"
	"github.com/julianstephens/resdesk/internal/cli/notifications"
	"github.com/julianstephens/resdesk/internal/cli/orders"
	"github.com/julianstephens/resdesk/internal/cli/resources"
	"github.com/julianstephens/resdesk/internal/cli/session"
	"github.com/julianstephens/resdesk/internal/cli/system"
	"github.com/julianstephens/resdesk/internal/constants"
	reserrors "github.com/julianstephens/resdesk/internal/errors"
	"github.com/julianstephens/resdesk/internal/eventbus"
	"github.com/julianstephens/resdesk/internal/keyring"
	"github.com/julianstephens/resdesk/internal/logger"
	"github.com/julianstephens/resdesk/internal/reservations"
	"github.com/julianstephens/resdesk/internal/storage"
)

var version = "v0.1.0"

var CLI struct {
	Version      kong.VersionFlag
	APIURL       string  `name:"api-url" help:"Reservation API base URL." env:"RESDESK_API_URL" default:"${api_url}"`
	SocketURL    string  `name:"socket-url" help:"Real-time channel URL (ws://, wss://, redis://, amqp://). Empty disables it." env:"RESDESK_SOCKET_URL" default:"${socket_url}"`
	Journal      string  `help:"Notification journal path or PostgreSQL connection string. Credentials must NOT be embedded in the connection string." env:"RESDESK_JOURNAL" default:"${journal}"`
	ConfigDir    string  `name:"config-dir" help:"Directory for logs, backups and the tray lockfile." env:"RESDESK_CONFIG_DIR" default:"${config_dir}"`
	Timezone     string  `help:"IANA timezone used for dates and chart days." env:"RESDESK_TIMEZONE" default:"Local"`
	RateLimit    float64 `name:"rate-limit" help:"Maximum API requests per second (0 disables the limit)." env:"RESDESK_RATE_LIMIT" default:"10"`
	ToastWebhook string  `name:"toast-webhook" help:"URL that receives every toast as JSON." env:"RESDESK_TOAST_WEBHOOK"`
	ToastSecret  string  `name:"toast-secret" help:"Shared secret sent with webhook toasts." env:"RESDESK_TOAST_SECRET"`
	Debug        bool    `help:"Enable debug logging." env:"RESDESK_DEBUG"`

	Init      system.InitCmd      `cmd:"" help:"Initialize the notification journal."`
	Doctor    system.DoctorCmd    `cmd:"" help:"Run health checks and diagnostics."`
	Tui       system.TuiCmd       `cmd:"" help:"Launch the interactive console." default:"1"`
	Watch     system.WatchCmd     `cmd:"" help:"Print new reservations as they arrive."`
	Dashboard system.DashboardCmd `cmd:"" help:"Show the reservations chart, timeline and recent grid."`
	Login     session.LoginCmd    `cmd:"" help:"Sign in and store the session."`
	Logout    session.LogoutCmd   `cmd:"" help:"Sign out and forget the session."`
	Whoami    session.WhoamiCmd   `cmd:"" help:"Show the signed in operator."`

	Reservations struct {
		List    orders.ListCmd    `cmd:"" help:"List reservations." default:"1"`
		Show    orders.ShowCmd    `cmd:"" help:"Show a reservation."`
		Accept  orders.AcceptCmd  `cmd:"" help:"Accept a reservation (Ready)."`
		Reject  orders.RejectCmd  `cmd:"" help:"Reject a reservation (Cancelled)."`
		Pending orders.PendingCmd `cmd:"" help:"Move a reservation back to Pending."`
		Delete  orders.DeleteCmd  `cmd:"" help:"Delete a reservation."`
		Export  orders.ExportCmd  `cmd:"" help:"Export reservations as CSV or JSON."`
	} `cmd:"" help:"Manage reservations."`
	Resource struct {
		List   resources.ListCmd   `cmd:"" help:"List records of a resource."`
		Get    resources.GetCmd    `cmd:"" help:"Fetch one record."`
		Create resources.CreateCmd `cmd:"" help:"Create a record from JSON."`
		Update resources.UpdateCmd `cmd:"" help:"Update a record from JSON."`
		Delete resources.DeleteCmd `cmd:"" help:"Delete a record."`
	} `cmd:"" help:"Generic access to any API resource."`
	Notifications struct {
		List  notifications.ListCmd  `cmd:"" help:"List journaled notifications." default:"1"`
		Read  notifications.ReadCmd  `cmd:"" help:"Mark every notification read."`
		Clear notifications.ClearCmd `cmd:"" help:"Delete every notification."`
	} `cmd:"" help:"Browse the notification journal."`
	Backup struct {
		Create  backups.CreateCmd  `cmd:"" help:"Create a journal backup." default:"1"`
		List    backups.ListCmd    `cmd:"" help:"List journal backups."`
		Restore backups.RestoreCmd `cmd:"" help:"Restore the journal from a backup."`
	} `cmd:"" help:"Manage journal backups."`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to read .env: %v\n", err)
	}

	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Back-office console for restaurant reservations"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, constants.DefaultConfigFile),
		kong.Vars{
			"version":    version,
			"api_url":    constants.DefaultAPIURL,
			"socket_url": constants.DefaultSocketURL,
			"journal":    constants.DefaultJournalPath,
			"config_dir": constants.DefaultConfigDir,
		},
	)
	command := kctx.Command()

	configDir := storage.ExpandHome(CLI.ConfigDir)
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: configDir,
		Console:   !strings.HasPrefix(command, "tui"),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	loc, err := loadLocation(CLI.Timezone)
	if err != nil {
		reserrors.Fatal(err)
	}

	store, err := storage.Open(CLI.Journal)
	if err != nil {
		reserrors.Fatal(err)
	}
	defer store.Close()

	var authSvc *auth.Service
	client, err := adapter.New(CLI.APIURL,
		adapter.WithRateLimit(CLI.RateLimit, int(CLI.RateLimit)+1),
		adapter.WithUnauthorizedHandler(func() {
			if authSvc != nil {
				authSvc.ForceLogout()
			}
		}),
	)
	if err != nil {
		reserrors.Fatal(err)
	}
	authSvc = auth.NewService(client, keyring.Store{})

	bus := eventbus.New()
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := &cli.Context{
		Ctx: ctx,
		Config: cli.Config{
			APIURL:       CLI.APIURL,
			SocketURL:    CLI.SocketURL,
			Journal:      CLI.Journal,
			ConfigDir:    configDir,
			ToastWebhook: CLI.ToastWebhook,
			ToastSecret:  CLI.ToastSecret,
			Location:     loc,
		},
		Client:       client,
		Auth:         authSvc,
		Reservations: reservations.NewService(client),
		Store:        store,
		Bus:          bus,
	}

	if err := openJournal(command, store); err != nil {
		reserrors.Fatal(err)
	}

	if err := kctx.Run(appCtx); err != nil {
		store.Close()
		reserrors.Fatal(err)
	}
}

// openJournal prepares the journal for the commands that write to it. The
// console and watch create it on first use; init and doctor handle it
// themselves.
func openJournal(command string, store storage.Provider) error {
	switch {
	case strings.HasPrefix(command, "tui"), strings.HasPrefix(command, "watch"):
		return store.Init()
	case strings.HasPrefix(command, "notifications"), strings.HasPrefix(command, "backup"):
		return store.Load()
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
