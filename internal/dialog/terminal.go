package dialog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
)

// Terminal shows dialogs on an interactive terminal. Ctrl-C and Ctrl-D
// cancel.
type Terminal struct {
	mu sync.Mutex
	rl *readline.Instance
}

// NewTerminal opens a readline instance on stdin and stdout.
func NewTerminal() (*Terminal, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "^D",
	})
	if err != nil {
		return nil, fmt.Errorf("dialog: terminal: %w", err)
	}

	return &Terminal{rl: rl}, nil
}

// Close releases the terminal.
func (t *Terminal) Close() error {
	return t.rl.Close()
}

// Prompt asks for a line of text. An empty answer selects def.
func (t *Terminal) Prompt(ctx context.Context, message, def string) (string, error) {
	prompt := message + ": "
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]: ", message, def)
	}

	line, err := t.readLine(ctx, prompt)
	if err != nil {
		return "", err
	}

	if line == "" {
		return def, nil
	}

	return line, nil
}

// Confirm asks a yes/no question; anything but y or yes is no.
func (t *Terminal) Confirm(ctx context.Context, message string) (bool, error) {
	line, err := t.readLine(ctx, message+" [y/N]: ")
	if err != nil {
		return false, err
	}

	return IsYes(line), nil
}

// Alert prints message.
func (t *Terminal) Alert(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := fmt.Fprintln(t.rl.Stdout(), message)

	return err
}

func (t *Terminal) readLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.rl.SetPrompt(prompt)

	line, err := t.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", ErrCancelled
	}

	if err != nil {
		return "", fmt.Errorf("dialog: read: %w", err)
	}

	return strings.TrimSpace(line), nil
}
