package bank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service caches banks and sample records in front of a Store. Every
// mutation updates the cache first and undoes it if the store fails.
type Service struct {
	mu    sync.Mutex
	store Store
	log   logrus.FieldLogger
	now   func() time.Time

	banks   []Bank
	samples map[string][]Record
}

// NewService loads the cache from store.
func NewService(ctx context.Context, store Store, opts ...Option) (*Service, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Service{
		store:   store,
		log:     discard,
		now:     time.Now,
		samples: map[string][]Record{},
	}

	for _, opt := range opts {
		opt(s)
	}

	banks, err := store.ListBanks(ctx)
	if err != nil {
		return nil, err
	}

	for _, b := range banks {
		recs, err := store.ListSamples(ctx, b.ID)
		if err != nil {
			return nil, err
		}

		s.samples[b.ID] = recs
	}

	s.banks = banks

	return s, nil
}

// Close closes the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}

// Banks returns the cached banks in creation order.
func (s *Service) Banks() []Bank {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.banks)
}

// FindBank resolves a bank by ID or, failing that, by case-insensitive name.
func (s *Service) FindBank(ref string) (Bank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.banks {
		if b.ID == ref {
			return b, nil
		}
	}

	for _, b := range s.banks {
		if strings.EqualFold(b.Name, ref) {
			return b, nil
		}
	}

	return Bank{}, fmt.Errorf("%w: bank %s", ErrNotFound, ref)
}

// CreateBank adds an empty bank.
func (s *Service) CreateBank(ctx context.Context, name string) (Bank, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Bank{}, errors.New("bank: name must not be empty")
	}

	b := Bank{ID: uuid.NewString(), Name: name, Created: s.now()}

	s.mu.Lock()
	s.banks = append(s.banks, b)
	s.samples[b.ID] = nil
	s.mu.Unlock()

	if err := s.store.CreateBank(ctx, b); err != nil {
		s.mu.Lock()
		s.banks = slices.DeleteFunc(s.banks, func(x Bank) bool { return x.ID == b.ID })
		delete(s.samples, b.ID)
		s.mu.Unlock()

		s.failed(err, b.Name, "").Error("create bank failed")

		return Bank{}, err
	}

	return b, nil
}

// DeleteBank removes a bank and its samples.
func (s *Service) DeleteBank(ctx context.Context, id string) error {
	s.mu.Lock()

	i := slices.IndexFunc(s.banks, func(b Bank) bool { return b.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: bank %s", ErrNotFound, id)
	}

	removed := s.banks[i]
	recs := s.samples[id]
	s.banks = slices.Delete(s.banks, i, i+1)
	delete(s.samples, id)
	s.mu.Unlock()

	if err := s.store.DeleteBank(ctx, id); err != nil {
		s.mu.Lock()
		s.banks = slices.Insert(s.banks, min(i, len(s.banks)), removed)
		s.samples[id] = recs
		s.mu.Unlock()

		s.failed(err, removed.Name, "").Error("delete bank failed")

		return err
	}

	return nil
}

// Samples returns the cached records of a bank.
func (s *Service) Samples(bankID string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, ok := s.samples[bankID]
	if !ok {
		return nil, fmt.Errorf("%w: bank %s", ErrNotFound, bankID)
	}

	return slices.Clone(recs), nil
}

// AddSample stores a WAV blob in a bank.
func (s *Service) AddSample(ctx context.Context, bankID, name string, wav []byte, color string) (Record, error) {
	if strings.TrimSpace(color) == "" {
		color = DefaultColor
	}

	rec := Record{
		ID:      uuid.NewString(),
		BankID:  bankID,
		Name:    strings.TrimSpace(name),
		Color:   color,
		Size:    int64(len(wav)),
		Created: s.now(),
	}

	s.mu.Lock()
	if _, ok := s.samples[bankID]; !ok {
		s.mu.Unlock()
		return Record{}, fmt.Errorf("%w: bank %s", ErrNotFound, bankID)
	}

	s.samples[bankID] = append(s.samples[bankID], rec)
	s.mu.Unlock()

	if err := s.store.AddSample(ctx, rec, wav); err != nil {
		s.mu.Lock()
		if cur, ok := s.samples[bankID]; ok {
			s.samples[bankID] = slices.DeleteFunc(cur, func(r Record) bool { return r.ID == rec.ID })
		}
		s.mu.Unlock()

		s.failed(err, bankID, rec.Name).Error("add sample failed")

		return Record{}, err
	}

	return rec, nil
}

// DeleteSample removes a sample from a bank.
func (s *Service) DeleteSample(ctx context.Context, bankID, id string) error {
	s.mu.Lock()

	recs := s.samples[bankID]

	i := slices.IndexFunc(recs, func(r Record) bool { return r.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: sample %s", ErrNotFound, id)
	}

	removed := recs[i]
	s.samples[bankID] = slices.Delete(slices.Clone(recs), i, i+1)
	s.mu.Unlock()

	if err := s.store.DeleteSample(ctx, bankID, id); err != nil {
		s.mu.Lock()
		if cur, ok := s.samples[bankID]; ok {
			s.samples[bankID] = slices.Insert(cur, min(i, len(cur)), removed)
		}
		s.mu.Unlock()

		s.failed(err, bankID, removed.Name).Error("delete sample failed")

		return err
	}

	return nil
}

// SampleData loads the WAV blob of a sample.
func (s *Service) SampleData(ctx context.Context, id string) ([]byte, error) {
	return s.store.SampleData(ctx, id)
}

func (s *Service) failed(err error, bank, sample string) *logrus.Entry {
	fields := logrus.Fields{"bank": bank, "error": err}
	if sample != "" {
		fields["sample"] = sample
	}

	return s.log.WithFields(fields)
}
