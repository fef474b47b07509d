// Package file persists the trade ledger as a JSON file.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/ivoros/chainarb/business/ledger/app"
	"github.com/ivoros/chainarb/business/ledger/domain"
	"github.com/ivoros/chainarb/internal/apperror"
)

// Store keeps every record in memory and rewrites the whole file on
// each append through a temp-file rename, so a crash mid-write leaves
// the previous ledger intact rather than a truncated one.
type Store struct {
	path string

	mu      sync.Mutex
	records []domain.TradeRecord
}

// NewStore opens (or prepares to create) the ledger file at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("ledger file path is empty"))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeLedgerStoreFailed)
		}
	}
	return &Store{path: path}, nil
}

// Load reads the ledger file. A missing file is an empty ledger.
func (s *Store) Load(ctx context.Context) ([]domain.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.records = nil
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeLedgerStoreFailed)
	}

	var records []domain.TradeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeLedgerStoreFailed,
			apperror.WithMessagef("ledger file %s is corrupt", s.path))
	}
	s.records = records

	out := make([]domain.TradeRecord, len(records))
	copy(out, records)
	return out, nil
}

// Append adds a record and persists the full ledger.
func (s *Store) Append(ctx context.Context, record domain.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
	if err := s.flush(); err != nil {
		s.records = s.records[:len(s.records)-1]
		return err
	}
	return nil
}

// Reset wipes the ledger file.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return s.flush()
}

// Close is a no-op for the file store.
func (s *Store) Close() {}

func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return apperror.Wrap(err, apperror.CodeLedgerStoreFailed)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperror.Wrap(err, apperror.CodeLedgerStoreFailed)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return apperror.Wrap(err, apperror.CodeLedgerStoreFailed)
	}
	return nil
}

var _ app.Store = (*Store)(nil)
