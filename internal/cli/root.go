package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/resdesk/internal/adapter"
	"github.com/julianstephens/resdesk/internal/auth"
	"github.com/julianstephens/resdesk/internal/backup"
	"github.com/julianstephens/resdesk/internal/eventbus"
	"github.com/julianstephens/resdesk/internal/logger"
	"github.com/julianstephens/resdesk/internal/realtime"
	"github.com/julianstephens/resdesk/internal/reservations"
	"github.com/julianstephens/resdesk/internal/storage"
	"github.com/julianstephens/resdesk/internal/toast"
)

// ErrNotLoggedIn is returned by commands that need a session when none is stored
var ErrNotLoggedIn = errors.New("not logged in (run 'resdesk login')")

// Config is the resolved configuration shared by every command
type Config struct {
	APIURL       string
	SocketURL    string
	Journal      string
	ConfigDir    string
	ToastWebhook string
	ToastSecret  string
	Location     *time.Location
}

// Context is bound into every kong command
type Context struct {
	Ctx          context.Context
	Config       Config
	Client       *adapter.Client
	Auth         *auth.Service
	Reservations *reservations.Service
	Store        storage.Provider
	Bus          *eventbus.Bus
	Out          io.Writer
}

func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *Context) Location() *time.Location {
	if c.Config.Location == nil {
		return time.Local
	}
	return c.Config.Location
}

// RequireSession restores the stored session cookie into the client
func (c *Context) RequireSession() error {
	ok, err := c.Auth.Restore()
	if err != nil {
		return fmt.Errorf("failed to read stored session: %w", err)
	}
	if !ok {
		return ErrNotLoggedIn
	}
	return nil
}

// Toaster fans toasts out to the journal, the configured webhook, the
// desktop tray helper and any extra sinks
func (c *Context) Toaster(extra ...toast.Toaster) toast.Toaster {
	sinks := toast.Multi{toast.NewJournal(c.Store)}
	if c.Config.ToastWebhook != "" {
		sinks = append(sinks, toast.NewWebhook(c.Config.ToastWebhook, c.Config.ToastSecret))
	}
	if tray := toast.NewTray(c.TrayLockfile()); tray.Available() {
		sinks = append(sinks, tray)
	}
	return append(sinks, extra...)
}

func (c *Context) TrayLockfile() string {
	return filepath.Join(storage.ExpandHome(c.Config.ConfigDir), toast.TrayLockfileName)
}

// DialTransport opens the real-time transport. The caller owns it and
// must Close it.
func (c *Context) DialTransport() (realtime.Transport, error) {
	return realtime.Dial(c.Config.SocketURL, realtime.WithCookieJar(c.Client.Jar()))
}

// PerformAutomaticBackup snapshots a SQLite journal and only logs failures
func (c *Context) PerformAutomaticBackup() {
	if storage.IsPostgres(c.Config.Journal) {
		return
	}
	if _, err := backup.NewManager(c.Store.GetConfigPath()).CreateBackup(); err != nil {
		logger.Warn("Automatic journal backup failed", "error", err)
	}
}
