package storage

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	bucketScans     = "scans"
	bucketScanIndex = "scan_index"
	bucketReports   = "reports"
)

// Store wraps a bbolt database for scan metadata and report persistence
type Store struct {
	db *bbolt.DB
}

// NewStore opens a bbolt database at the given path and initializes required buckets
func NewStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	// Create required buckets
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{bucketScans, bucketScanIndex, bucketReports} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the bbolt database
func (s *Store) Close() error {
	return s.db.Close()
}
