// Package badger provides BadgerHold-based storage implementations.
package badger

import (
	"errors"
	"fmt"
	"os"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"

	"github.com/daniele21/portfolio-pilot/internal/common"
)

const (
	writeRetryAttempts  = 5
	writeRetryBaseDelay = 200 * time.Millisecond
)

// Store wraps a BadgerHold database connection.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new BadgerHold store at the given directory path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create badger directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("BadgerHold store opened")

	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

// DB returns the underlying badgerhold store.
func (s *Store) DB() *badgerhold.Store {
	return s.db
}

// Close closes the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// withRetry runs a write, retrying transaction conflicts with exponential
// backoff. Exhausting the attempts surfaces the last error.
func (s *Store) withRetry(op string, fn func() error) error {
	delay := writeRetryBaseDelay
	var err error
	for attempt := 0; attempt < writeRetryAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, badgerdb.ErrConflict) {
			return err
		}
		s.logger.Warn().
			Str("op", op).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Write conflict, retrying")
		time.Sleep(delay)
		delay *= 2
	}
	return fmt.Errorf("%s: retries exhausted: %w", op, err)
}
