package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/idilsaglam/todo/internal/session"
)

// ErrAborted is returned when the user cancels a form.
var ErrAborted = errors.New("cancelled")

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

// LoginForm builds the username/password form writing into creds.
func LoginForm(creds *session.Credentials) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Login").
				Description("Any username and password will do."),
			huh.NewInput().
				Title("Username").
				Placeholder("ada").
				Value(&creds.Username).
				Validate(required("Username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(required("Password")),
		),
	)
}

// RunLogin shows the login form and returns what was entered.
func RunLogin() (session.Credentials, error) {
	var creds session.Credentials
	if err := LoginForm(&creds).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return creds, ErrAborted
		}
		return creds, fmt.Errorf("login form: %w", err)
	}
	return creds, nil
}

// ConfirmLogout asks before the session and the saved list are dropped.
func ConfirmLogout(username string) (bool, error) {
	confirmed := false
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Log out %s?", username)).
		Description("Your saved todos will be removed.").
		Affirmative("Log out").
		Negative("Cancel").
		Value(&confirmed).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirm: %w", err)
	}
	return confirmed, nil
}
