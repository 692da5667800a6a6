package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hakim/sahin/internal/models"
	"go.etcd.io/bbolt"
)

var (
	// ErrScanNotFound is returned when no scan record matches an ID.
	ErrScanNotFound = errors.New("scan not found")
	// ErrAmbiguousScanID is returned when an ID prefix matches several scans.
	ErrAmbiguousScanID = errors.New("ambiguous scan ID prefix")
)

// SaveScan upserts a scan record and indexes it under its normalised target.
func (s *Store) SaveScan(meta *models.ScanMeta) error {
	target := models.NormalizeHost(meta.Target)
	if meta.ID == "" || target == "" {
		return fmt.Errorf("scan record needs an ID and a target")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := putScan(tx.Bucket([]byte(bucketScans)), meta); err != nil {
			return err
		}
		return indexScan(tx.Bucket([]byte(bucketScanIndex)), target, meta.ID)
	})
}

// GetScan looks a scan up by full ID or by a unique ID prefix, so the
// truncated IDs printed by `sahin history` ("1a2b3c4d...") can be passed
// back. It returns nil when nothing matches.
func (s *Store) GetScan(id string) (*models.ScanMeta, error) {
	var meta *models.ScanMeta

	err := s.db.View(func(tx *bbolt.Tx) error {
		scans := tx.Bucket([]byte(bucketScans))
		key, err := resolveScanKey(scans, id)
		if err != nil || key == nil {
			return err
		}
		meta, err = decodeScan(scans.Get(key))
		return err
	})

	return meta, err
}

// ListScans returns every scan recorded for target, newest first.
func (s *Store) ListScans(target string) ([]*models.ScanMeta, error) {
	var scans []*models.ScanMeta

	err := s.db.View(func(tx *bbolt.Tx) error {
		ids, err := indexedIDs(tx.Bucket([]byte(bucketScanIndex)), models.NormalizeHost(target))
		if err != nil {
			return err
		}

		bucket := tx.Bucket([]byte(bucketScans))
		for _, id := range ids {
			data := bucket.Get([]byte(id))
			if data == nil {
				continue
			}
			meta, err := decodeScan(data)
			if err != nil {
				return fmt.Errorf("decoding scan %s: %w", id, err)
			}
			scans = append(scans, meta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(scans, func(i, j int) bool {
		return scans[i].StartedAt.After(scans[j].StartedAt)
	})
	return scans, nil
}

// GetLatestScan returns the newest scan of target that finished with a
// report (complete or partial). Running and cancelled scans are passed
// over. It returns nil when there is none.
func (s *Store) GetLatestScan(target string) (*models.ScanMeta, error) {
	scans, err := s.ListScans(target)
	if err != nil {
		return nil, err
	}
	for _, scan := range scans {
		if scan.Status.HasReport() {
			return scan, nil
		}
	}
	return nil, nil
}

// UpdateScanStatus moves a scan to status and stamps CompletedAt on the
// first terminal transition. A finished scan cannot be moved back to
// pending or running.
func (s *Store) UpdateScanStatus(id string, status models.ScanStatus) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		scans := tx.Bucket([]byte(bucketScans))

		data := scans.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%s: %w", id, ErrScanNotFound)
		}
		meta, err := decodeScan(data)
		if err != nil {
			return err
		}

		if meta.Status.Terminal() && !status.Terminal() {
			return fmt.Errorf("scan %s already %s, cannot move to %s", id, meta.Status, status)
		}

		meta.Status = status
		if status.Terminal() && meta.CompletedAt == nil {
			now := time.Now()
			meta.CompletedAt = &now
		}
		return putScan(scans, meta)
	})
}

func putScan(b *bbolt.Bucket, meta *models.ScanMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding scan %s: %w", meta.ID, err)
	}
	return b.Put([]byte(meta.ID), data)
}

func decodeScan(data []byte) (*models.ScanMeta, error) {
	meta := &models.ScanMeta{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// indexScan appends id to target's entry in the target -> []scan ID index.
func indexScan(b *bbolt.Bucket, target, id string) error {
	ids, err := indexedIDs(b, target)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}

	data, err := json.Marshal(append(ids, id))
	if err != nil {
		return err
	}
	return b.Put([]byte(target), data)
}

func indexedIDs(b *bbolt.Bucket, target string) ([]string, error) {
	data := b.Get([]byte(target))
	if data == nil {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decoding scan index for %s: %w", target, err)
	}
	return ids, nil
}

// resolveScanKey matches id exactly, else as the prefix of exactly one
// key. Keys come back copied since bbolt memory is only valid inside the
// transaction.
func resolveScanKey(b *bbolt.Bucket, id string) ([]byte, error) {
	prefix := []byte(strings.TrimSuffix(strings.TrimSpace(id), "..."))
	if len(prefix) == 0 {
		return nil, nil
	}
	if b.Get(prefix) != nil {
		return prefix, nil
	}

	c := b.Cursor()
	k, _ := c.Seek(prefix)
	if k == nil || !bytes.HasPrefix(k, prefix) {
		return nil, nil
	}
	match := append([]byte(nil), k...)
	if next, _ := c.Next(); next != nil && bytes.HasPrefix(next, prefix) {
		return nil, fmt.Errorf("%q: %w", id, ErrAmbiguousScanID)
	}
	return match, nil
}
