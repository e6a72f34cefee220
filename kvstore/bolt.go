package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DefaultBucket holds every set when BoltConfig.Bucket is empty.
const DefaultBucket = "sets"

// BoltConfig configures a BoltStore.
type BoltConfig struct {
	Path   string
	Bucket string
	// Timeout bounds how long Open waits for the file lock. Zero waits 1s.
	Timeout time.Duration
}

// BoltStore keeps sets in a single bbolt file, each set encoded as a JSON
// array under its key.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	closed atomic.Bool
}

// OpenBolt opens (creating if needed) the database at cfg.Path.
func OpenBolt(cfg BoltConfig) (*BoltStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("kvstore: bolt path is required")
	}
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}

	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrUnavailable, cfg.Path, err)
	}
	bucket := []byte(cfg.Bucket)
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create bucket %s: %w", ErrUnavailable, cfg.Bucket, err)
	}
	return &BoltStore{db: db, bucket: bucket}, nil
}

// GetSet decodes the set stored under key.
func (s *BoltStore) GetSet(ctx context.Context, key string) ([]string, error) {
	if err := s.check(ctx, key); err != nil {
		return nil, err
	}
	var members []string
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		// raw is only valid inside the transaction; Unmarshal copies.
		return json.Unmarshal(raw, &members)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrUnavailable, key, err)
	}
	return members, nil
}

// PutSet replaces the set stored under key. The write is fsynced before
// PutSet returns.
func (s *BoltStore) PutSet(ctx context.Context, key string, members []string) error {
	if err := s.check(ctx, key); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if len(members) == 0 {
			return b.Delete([]byte(key))
		}
		raw, err := json.Marshal(dedupe(members))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %w", ErrUnavailable, key, err)
	}
	return nil
}

// Path returns the database file path.
func (s *BoltStore) Path() string { return s.db.Path() }

// Close closes the database file.
func (s *BoltStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) check(ctx context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	return ctx.Err()
}

var _ Store = (*BoltStore)(nil)
