// Package store is the entity store over users, roles, permissions, menus
// and their join tables.
//
// Every call runs under a bounded timeout. A timeout surfaces as an
// apperror.Unavailable error, a missing row as ErrNotFound. Committed
// mutations advance a global generation counter which cached readers use
// to detect stale data.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/diveerp/diveerp/internal/apperror"
)

// DefaultTimeout bounds a storage call when no timeout is configured.
const DefaultTimeout = 5 * time.Second

var (
	// ErrNotFound is returned when a looked up row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// Store provides data access. A Store handed to a Transaction callback is
// bound to that transaction.
type Store struct {
	db         *gorm.DB
	timeout    time.Duration
	generation *atomic.Uint64
	inTx       bool
}

// New creates a Store on db.
func New(db *gorm.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Store{
		db:         db,
		timeout:    timeout,
		generation: new(atomic.Uint64),
	}
}

// DB returns the underlying gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Generation returns the number of committed mutations so far.
func (s *Store) Generation() uint64 {
	return s.generation.Load()
}

// Migrate creates or updates the schema of the given models.
func (s *Store) Migrate(ctx context.Context, models ...any) error {
	return s.call(ctx, func(db *gorm.DB) error {
		return db.AutoMigrate(models...)
	})
}

// Transaction runs fn atomically. Any error rolls everything back.
// The generation advances only after a successful commit.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, timeout: s.timeout, generation: s.generation, inTx: true})
	})
	if err != nil {
		return classify(ctx, err)
	}

	s.generation.Add(1)

	return nil
}

// call runs fn with the per-call timeout and classifies its error.
func (s *Store) call(ctx context.Context, fn func(db *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return classify(ctx, fn(s.db.WithContext(ctx)))
}

// mutate is call for writes outside of a transaction scope.
func (s *Store) mutate(ctx context.Context, fn func(db *gorm.DB) error) error {
	if err := s.call(ctx, fn); err != nil {
		return err
	}

	if !s.inTx {
		s.generation.Add(1)
	}

	return nil
}

func classify(ctx context.Context, err error) error {
	var appErr *apperror.Error

	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr), errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicate):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperror.Wrap(apperror.Unavailable, err, "storage unavailable")
	case errors.Is(err, context.Canceled):
		return apperror.Wrap(apperror.Unavailable, err, "request canceled")
	case errors.Is(ctx.Err(), context.Canceled):
		return apperror.Wrap(apperror.Unavailable, fmt.Errorf("%w: %w", ctx.Err(), err), "request canceled")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	default:
		return fmt.Errorf("store: %w", err)
	}
}

// Ping checks that the database answers within the per-call timeout.
func (s *Store) Ping(ctx context.Context) error {
	return s.call(ctx, func(db *gorm.DB) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err //nolint:wrapcheck
		}

		return sqlDB.PingContext(db.Statement.Context) //nolint:wrapcheck
	})
}
