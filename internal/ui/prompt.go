package ui

import (
	stderrors "errors"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/procdash/internal/errors"
	"github.com/rileyhilliard/procdash/pkg/sshutil"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New(errors.ErrConfig, "Cancelled", "")

// NoSSHHost is the picker value meaning "connect directly".
const NoSSHHost = ""

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// sshHostOptions builds picker options, direct connection first.
func sshHostOptions(hosts []sshutil.HostEntry) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(hosts)+1)
	opts = append(opts, huh.NewOption("none (connect directly)", NoSSHHost))
	for _, h := range hosts {
		opts = append(opts, huh.NewOption(h.Label(), h.Alias))
	}
	return opts
}

// PickSSHHost lets the user choose an alias from ~/.ssh/config to tunnel
// through. It returns NoSSHHost when there is nothing to pick or the user
// picks the direct connection.
func PickSSHHost(hosts []sshutil.HostEntry) (string, error) {
	if len(hosts) == 0 {
		return NoSSHHost, nil
	}

	choice := NoSSHHost
	err := huh.NewSelect[string]().
		Title("Reach the backend through an SSH host?").
		Options(sshHostOptions(hosts)...).
		Value(&choice).
		Run()
	if err != nil {
		return NoSSHHost, promptErr(err)
	}
	return choice, nil
}

// Confirm asks a yes/no question, defaulting to no.
func Confirm(title, description string) (bool, error) {
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, promptErr(err)
	}
	return ok, nil
}

// PromptSecret reads a secret without echoing it.
func PromptSecret(title string) (string, error) {
	var secret string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&secret).
		Run()
	if err != nil {
		return "", promptErr(err)
	}
	return secret, nil
}

// PromptText reads a line of text, prefilled with value.
func PromptText(title string, value string, validate func(string) error) (string, error) {
	input := huh.NewInput().Title(title).Value(&value)
	if validate != nil {
		input = input.Validate(validate)
	}
	if err := input.Run(); err != nil {
		return "", promptErr(err)
	}
	return value, nil
}

func promptErr(err error) error {
	if stderrors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return errors.WrapWithCode(err, errors.ErrConfig,
		"Interactive prompt failed",
		"Run from a terminal, or pass the value with a flag")
}
