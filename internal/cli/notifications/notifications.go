package notifications

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/resdesk/internal/cli"
	"github.com/julianstephens/resdesk/internal/constants"
)

type ListCmd struct {
	Limit int `help:"Number of notifications to show." default:"50"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	items, err := ctx.Store.GetRecentNotifications(c.Limit)
	if err != nil {
		return fmt.Errorf("failed to read notifications: %w", err)
	}
	out := ctx.Stdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No notifications")
		return nil
	}

	unread, err := ctx.Store.CountUnread()
	if err != nil {
		return fmt.Errorf("failed to count unread notifications: %w", err)
	}

	fmt.Fprintf(out, "Notifications (%d unread):\n", unread)
	for _, n := range items {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s %s  %s - %s\n",
			marker,
			n.ReceivedAt.In(ctx.Location()).Format(constants.DisplayDateTimeFormat),
			n.Title,
			n.Description,
		)
	}
	return nil
}

type ReadCmd struct{}

func (c *ReadCmd) Run(ctx *cli.Context) error {
	n, err := ctx.Store.MarkAllRead()
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	fmt.Fprintf(ctx.Stdout(), "Marked %d notifications as read\n", n)
	return nil
}

type ClearCmd struct {
	Yes bool `help:"Skip the confirmation prompt." short:"y"`
}

func (c *ClearCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title("Clear the notification history?").
			Affirmative("Clear").
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

	ctx.PerformAutomaticBackup()
	n, err := ctx.Store.ClearNotifications()
	if err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	fmt.Fprintf(ctx.Stdout(), "Removed %d notifications\n", n)
	return nil
}
