package storage

import (
	"encoding/json"
	"fmt"

	"github.com/hakim/sahin/internal/models"
	"go.etcd.io/bbolt"
)

// SaveReport stores a report snapshot keyed by its scan ID
func (s *Store) SaveReport(report *models.Report) error {
	if report.ScanID == "" {
		return fmt.Errorf("report for %s has no scan ID", report.Domain)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(report)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketReports)).Put([]byte(report.ScanID), data)
	})
}

// GetReport retrieves the report for a scan ID, or nil when none was saved
func (s *Store) GetReport(scanID string) (*models.Report, error) {
	var report *models.Report

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketReports)).Get([]byte(scanID))
		if data == nil {
			return nil // Not found
		}

		report = &models.Report{}
		return json.Unmarshal(data, report)
	})

	return report, err
}

// LatestReports returns up to n stored reports for target, newest first.
// Only finished scans are considered; cancelled and still-running ones
// never saved a report.
func (s *Store) LatestReports(target string, n int) ([]*models.Report, error) {
	scans, err := s.ListScans(target)
	if err != nil {
		return nil, fmt.Errorf("listing scans for %q: %w", target, err)
	}

	var reports []*models.Report
	for _, scan := range scans {
		if len(reports) == n {
			break
		}
		if !scan.Status.HasReport() {
			continue
		}
		report, err := s.GetReport(scan.ID)
		if err != nil {
			return nil, fmt.Errorf("loading report %s: %w", scan.ID, err)
		}
		if report != nil {
			reports = append(reports, report)
		}
	}

	return reports, nil
}
