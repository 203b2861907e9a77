// Package boltdb implements the cardvault store contract on top of a
// single BoltDB file with one bucket per table.
package boltdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/cardvault/internal/storage"
)

var (
	// BoltDB bucket names, one per logical table
	bucketAssets      = []byte("assets")
	bucketCards       = []byte("cards")
	bucketCollections = []byte("collections")
)

// Storage represents the BoltDB storage implementation.
//
// The underlying handle is opened lazily by Open (or the first store
// operation) and memoized: concurrent opens converge on the same live
// connection. Close tears the handle down; the storage may be re-opened.
type Storage struct {
	path string
	now  func() time.Time

	mu     sync.Mutex
	db     *bbolt.DB
	closed bool
}

// New creates a storage bound to the BoltDB file at dbPath.
// No I/O happens until Open or the first operation.
func New(dbPath string) *Storage {
	return NewWithClock(dbPath, time.Now)
}

// NewWithClock is New with an injected clock, for deterministic tests.
func NewWithClock(dbPath string, now func() time.Time) *Storage {
	return &Storage{path: dbPath, now: now}
}

// Open idempotently opens the database and provisions the buckets.
// It also clears a previous Close, re-enabling the storage.
func (s *Storage) Open(ctx context.Context) error {
	s.mu.Lock()
	s.closed = false
	s.mu.Unlock()

	_, err := s.handle(ctx)
	return err
}

// Close closes the database connection. Subsequent operations return
// ErrStorageClosed until Open is called again.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.db == nil {
		return nil
	}
	db := s.db
	s.db = nil
	return db.Close()
}

// handle returns the live connection, opening and provisioning lazily.
func (s *Storage) handle(ctx context.Context) (*bbolt.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}
	if s.closed {
		return nil, storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(s.path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	// Инициализируем buckets
	if err := initBuckets(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	s.db = db
	return s.db, nil
}

// initBuckets создает необходимые buckets если они не существуют
func initBuckets(db *bbolt.DB) error {
	return db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAssets, bucketCards, bucketCollections} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// view runs op inside a read-only transaction scoped to one bucket.
// The returned error resolves only after the transaction completed.
func (s *Storage) view(ctx context.Context, bucket []byte, op func(b *bbolt.Bucket) error) error {
	db, err := s.handle(ctx)
	if err != nil {
		return err
	}
	return db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("%s: %w", bucket, storage.ErrStoreUnavailable)
		}
		return op(b)
	})
}

// update runs op inside a read-write transaction scoped to one bucket.
// Any error from op rolls the whole transaction back; the write is
// durable before update returns.
func (s *Storage) update(ctx context.Context, bucket []byte, op func(b *bbolt.Bucket) error) error {
	db, err := s.handle(ctx)
	if err != nil {
		return err
	}
	return db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("%s: %w", bucket, storage.ErrStoreUnavailable)
		}
		return op(b)
	})
}
