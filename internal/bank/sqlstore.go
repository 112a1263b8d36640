package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS banks (
	id      TEXT PRIMARY KEY,
	name    TEXT NOT NULL,
	created INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS samples (
	id      TEXT PRIMARY KEY,
	bank_id TEXT NOT NULL REFERENCES banks(id) ON DELETE CASCADE,
	name    TEXT NOT NULL,
	color   TEXT NOT NULL,
	size    INTEGER NOT NULL,
	created INTEGER NOT NULL,
	data    BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_samples_bank ON samples(bank_id);
`

// SQLStore is a Store on a sqlite database file.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore opens or creates the database at path.
func OpenSQLStore(path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("bank: create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("bank: open database: %w", err)
	}

	// sqlite serializes writers; one connection keeps pragmas in effect.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON;" + schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bank: create schema: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) CreateBank(ctx context.Context, b Bank) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO banks (id, name, created) VALUES (?, ?, ?)`,
		b.ID, b.Name, b.Created.UnixNano())
	if err != nil {
		return fmt.Errorf("%w: create bank %q: %w", ErrPersist, b.Name, err)
	}

	return nil
}

func (s *SQLStore) DeleteBank(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM banks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete bank %s: %w", ErrPersist, id, err)
	}

	return affected(res, "bank", id)
}

func (s *SQLStore) ListBanks(ctx context.Context) ([]Bank, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created FROM banks ORDER BY created, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list banks: %w", ErrPersist, err)
	}
	defer rows.Close()

	var out []Bank

	for rows.Next() {
		var (
			b       Bank
			created int64
		)

		if err := rows.Scan(&b.ID, &b.Name, &created); err != nil {
			return nil, fmt.Errorf("%w: scan bank: %w", ErrPersist, err)
		}

		b.Created = time.Unix(0, created)
		out = append(out, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list banks: %w", ErrPersist, err)
	}

	return out, nil
}

func (s *SQLStore) AddSample(ctx context.Context, rec Record, data []byte) error {
	if data == nil {
		data = []byte{}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO samples (id, bank_id, name, color, size, created, data) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.BankID, rec.Name, rec.Color, rec.Size, rec.Created.UnixNano(), data)
	if err != nil {
		return fmt.Errorf("%w: add sample %q: %w", ErrPersist, rec.Name, err)
	}

	return nil
}

func (s *SQLStore) DeleteSample(ctx context.Context, bankID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM samples WHERE id = ? AND bank_id = ?`, id, bankID)
	if err != nil {
		return fmt.Errorf("%w: delete sample %s: %w", ErrPersist, id, err)
	}

	return affected(res, "sample", id)
}

func (s *SQLStore) ListSamples(ctx context.Context, bankID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, bank_id, name, color, size, created FROM samples WHERE bank_id = ? ORDER BY created, id`, bankID)
	if err != nil {
		return nil, fmt.Errorf("%w: list samples: %w", ErrPersist, err)
	}
	defer rows.Close()

	var out []Record

	for rows.Next() {
		var (
			r       Record
			created int64
		)

		if err := rows.Scan(&r.ID, &r.BankID, &r.Name, &r.Color, &r.Size, &created); err != nil {
			return nil, fmt.Errorf("%w: scan sample: %w", ErrPersist, err)
		}

		r.Created = time.Unix(0, created)
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list samples: %w", ErrPersist, err)
	}

	return out, nil
}

func (s *SQLStore) SampleData(ctx context.Context, id string) ([]byte, error) {
	var data []byte

	err := s.db.QueryRowContext(ctx, `SELECT data FROM samples WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: sample %s", ErrNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: read sample %s: %w", ErrPersist, id, err)
	}

	return data, nil
}

func affected(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrPersist, what, id, err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}

	return nil
}
