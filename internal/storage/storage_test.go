package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hakim/sahin/internal/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "sahin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndListScans(t *testing.T) {
	store := openTestStore(t)

	older := models.NewScan("example.com")
	older.StartedAt = time.Now().Add(-time.Hour)
	newer := models.NewScan("Example.com.")
	other := models.NewScan("other.net")

	for _, m := range []*models.ScanMeta{older, newer, other} {
		require.NoError(t, store.SaveScan(m))
	}
	// Saving twice must not duplicate the index entry.
	require.NoError(t, store.SaveScan(newer))

	scans, err := store.ListScans("EXAMPLE.com")
	require.NoError(t, err)
	require.Len(t, scans, 2)
	assert.Equal(t, newer.ID, scans[0].ID)
	assert.Equal(t, older.ID, scans[1].ID)

	none, err := store.ListScans("missing.org")
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.Error(t, store.SaveScan(&models.ScanMeta{ID: "x"}))
}

func TestGetLatestScanSkipsUnfinished(t *testing.T) {
	store := openTestStore(t)

	partial := models.NewScan("example.com")
	partial.StartedAt = time.Now().Add(-2 * time.Hour)
	partial.Status = models.StatusPartial
	cancelled := models.NewScan("example.com")
	cancelled.StartedAt = time.Now().Add(-time.Hour)
	cancelled.Status = models.StatusCancelled
	running := models.NewScan("example.com")
	running.Status = models.StatusRunning

	for _, m := range []*models.ScanMeta{partial, cancelled, running} {
		require.NoError(t, store.SaveScan(m))
	}

	latest, err := store.GetLatestScan("example.com")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, partial.ID, latest.ID)

	none, err := store.GetLatestScan("other.net")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestGetScanByPrefix(t *testing.T) {
	store := openTestStore(t)

	for _, id := range []string{"aaaa1111-0000", "aaaa2222-0000", "bbbb0000-0000"} {
		meta := models.NewScan("example.com")
		meta.ID = id
		require.NoError(t, store.SaveScan(meta))
	}

	tests := []struct {
		name    string
		id      string
		want    string
		wantErr error
	}{
		{"full id", "aaaa1111-0000", "aaaa1111-0000", nil},
		{"unique prefix", "bbbb", "bbbb0000-0000", nil},
		{"truncated history id", "aaaa2222...", "aaaa2222-0000", nil},
		{"ambiguous prefix", "aaaa", "", ErrAmbiguousScanID},
		{"no match", "cccc", "", nil},
		{"blank", " ", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.GetScan(tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestUpdateScanStatus(t *testing.T) {
	store := openTestStore(t)
	meta := models.NewScan("example.com")
	require.NoError(t, store.SaveScan(meta))

	require.NoError(t, store.UpdateScanStatus(meta.ID, models.StatusRunning))
	got, err := store.GetScan(meta.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRunning, got.Status)
	assert.Nil(t, got.CompletedAt)

	require.NoError(t, store.UpdateScanStatus(meta.ID, models.StatusCancelled))
	got, err = store.GetScan(meta.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.NotNil(t, got.CompletedAt)

	// A finished scan stays finished.
	assert.Error(t, store.UpdateScanStatus(meta.ID, models.StatusRunning))

	assert.ErrorIs(t, store.UpdateScanStatus("unknown", models.StatusComplete), ErrScanNotFound)
}

func TestReports(t *testing.T) {
	store := openTestStore(t)

	first := models.NewScan("example.com")
	first.StartedAt = time.Now().Add(-2 * time.Hour)
	first.Status = models.StatusComplete
	cancelled := models.NewScan("example.com")
	cancelled.StartedAt = time.Now().Add(-time.Hour)
	cancelled.Status = models.StatusCancelled
	second := models.NewScan("example.com")
	second.Status = models.StatusPartial
	for _, m := range []*models.ScanMeta{first, cancelled, second} {
		require.NoError(t, store.SaveScan(m))
	}

	require.NoError(t, store.SaveReport(&models.Report{
		ScanID:     first.ID,
		Domain:     "example.com",
		Ports:      models.PortTable{"example.com": {80: "http"}},
		Subdomains: []string{"example.com"},
		Risk:       models.RiskLow,
	}))
	require.NoError(t, store.SaveReport(&models.Report{
		ScanID:     second.ID,
		Domain:     "example.com",
		Ports:      models.PortTable{"example.com": {80: "http", 3306: "MySQL"}},
		Subdomains: []string{"api.example.com", "example.com"},
		Paths:      []models.PathFinding{{Path: "/admin", Status: 200}},
		Risk:       models.RiskInfo,
	}))

	got, err := store.GetReport(second.ID)
	require.NoError(t, err)
	assert.Equal(t, "MySQL", got.Ports["example.com"][3306])
	assert.Equal(t, []models.PathFinding{{Path: "/admin", Status: 200}}, got.Paths)

	latest, err := store.LatestReports("example.com", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, second.ID, latest[0].ScanID)
	assert.Equal(t, first.ID, latest[1].ScanID)

	assert.Error(t, store.SaveReport(&models.Report{Domain: "example.com"}))
}

func TestReportPath(t *testing.T) {
	ts := time.Date(2026, 10, 19, 14, 5, 9, 0, time.UTC)

	assert.Equal(t, filepath.Join("reports", "example.com_20261019_140509.txt"), ReportPath("reports", "example.com", ts, "txt"))
	assert.Equal(t, "a_b.example.com", SanitizeTarget("a/b.example.com"))
}

func TestWriteReportFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, WriteReportFile(fs, "/out/nested/report.txt", []byte("hello")))

	data, err := afero.ReadFile(fs, "/out/nested/report.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
