package dialog

import (
	"context"
	"sync"
)

// Scripted answers dialogs from a fixed list, for tests and unattended
// runs. When the answers run out every dialog is cancelled.
type Scripted struct {
	mu      sync.Mutex
	answers []string
	alerts  []string
	asked   []string
}

// NewScripted returns a Scripted that replies with answers in order.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

// Prompt returns the next answer, or def when that answer is empty.
func (s *Scripted) Prompt(ctx context.Context, message, def string) (string, error) {
	answer, err := s.next(ctx, message)
	if err != nil {
		return "", err
	}

	if answer == "" {
		return def, nil
	}

	return answer, nil
}

// Confirm returns whether the next answer is yes.
func (s *Scripted) Confirm(ctx context.Context, message string) (bool, error) {
	answer, err := s.next(ctx, message)
	if err != nil {
		return false, err
	}

	return IsYes(answer), nil
}

// Alert records message.
func (s *Scripted) Alert(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = append(s.alerts, message)

	return nil
}

// Alerts returns the messages shown so far.
func (s *Scripted) Alerts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.alerts...)
}

// Asked returns the prompt and confirm messages shown so far.
func (s *Scripted) Asked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.asked...)
}

func (s *Scripted) next(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.asked = append(s.asked, message)

	if len(s.answers) == 0 {
		return "", ErrCancelled
	}

	answer := s.answers[0]
	s.answers = s.answers[1:]

	return answer, nil
}
