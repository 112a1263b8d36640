// Package bank stores named collections of exported samples.
//
// A Store persists banks and WAV blobs. Service keeps an in-memory cache
// in front of a Store and rolls cache changes back when the store rejects
// them, so the two never diverge.
package bank

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for unknown bank or sample IDs.
	ErrNotFound = errors.New("bank: not found")
	// ErrPersist wraps storage failures.
	ErrPersist = errors.New("bank: persistence failed")
)

// DefaultColor tags samples saved without a color.
const DefaultColor = "gray"

// Bank is a named sample collection.
type Bank struct {
	ID      string
	Name    string
	Created time.Time
}

// Record describes a stored sample.
type Record struct {
	ID      string
	BankID  string
	Name    string
	Color   string
	Size    int64
	Created time.Time
}

// Store persists banks and sample data.
type Store interface {
	CreateBank(ctx context.Context, b Bank) error
	DeleteBank(ctx context.Context, id string) error
	ListBanks(ctx context.Context) ([]Bank, error)
	AddSample(ctx context.Context, rec Record, data []byte) error
	DeleteSample(ctx context.Context, bankID, id string) error
	ListSamples(ctx context.Context, bankID string) ([]Record, error)
	SampleData(ctx context.Context, id string) ([]byte, error)
	Close() error
}
