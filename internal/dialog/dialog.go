// Package dialog provides the user prompts used around naming and
// destructive operations.
package dialog

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrCancelled is returned when the user dismisses a dialog. It is a
	// normal outcome, not a failure.
	ErrCancelled = errors.New("dialog: cancelled")
	// ErrUnavailable is returned when no dialog surface exists.
	ErrUnavailable = errors.New("dialog: unavailable")
)

// Service shows modal dialogs.
type Service interface {
	Prompt(ctx context.Context, message, def string) (string, error)
	Confirm(ctx context.Context, message string) (bool, error)
	Alert(ctx context.Context, message string) error
}

// None is the Service of a headless process: every call fails with
// ErrUnavailable.
type None struct{}

func (None) Prompt(context.Context, string, string) (string, error) { return "", ErrUnavailable }
func (None) Confirm(context.Context, string) (bool, error)          { return false, ErrUnavailable }
func (None) Alert(context.Context, string) error                    { return ErrUnavailable }

// IsYes reports whether an answer means yes.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

var (
	_ Service = None{}
	_ Service = (*Terminal)(nil)
	_ Service = (*Scripted)(nil)
)
