package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/resdesk/internal/cli"
)

type LoginCmd struct {
	Username string `help:"Admin username." short:"u" env:"RESDESK_USERNAME"`
	Password string `help:"Admin password. Prompted when omitted." env:"RESDESK_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	username, password := c.Username, c.Password
	if username == "" || password == "" {
		if err := prompt(&username, &password); err != nil {
			return err
		}
	}

	identity, err := ctx.Auth.Login(ctx.Context(), strings.TrimSpace(username), password)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout(), "Logged in as %s (ID: %s)\n", identity.Name, identity.ID)
	return nil
}

func prompt(username, password *string) error {
	notEmpty := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", field)
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(username).
				Validate(notEmpty("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password).
				Validate(notEmpty("password")),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("login cancelled")
		}
		return err
	}
	return nil
}
