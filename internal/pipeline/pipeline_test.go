package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hakim/sahin/internal/events"
	"github.com/hakim/sahin/internal/models"
	"github.com/hakim/sahin/internal/paths"
	"github.com/hakim/sahin/internal/tools"
	"github.com/hakim/sahin/internal/tools/toolstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePorts struct {
	table models.PortTable
	err   error
	hosts []string
}

func (f *fakePorts) ScanPorts(ctx context.Context, hosts []string) (models.PortTable, error) {
	f.hosts = hosts
	return f.table, f.err
}

type fakeSubs struct {
	subs, live models.HostSet
	err        error
	checkLive  bool
	panicMsg   string
	cancel     context.CancelFunc
}

func (f *fakeSubs) Discover(ctx context.Context, domain string, checkLive bool) (models.HostSet, models.HostSet, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.checkLive = checkLive
	return f.subs, f.live, f.err
}

type fakePaths struct {
	mu       sync.Mutex
	results  map[string][]models.PathFinding
	err      error
	visited  []string
	wordlist string
}

func (f *fakePaths) DiscoverPaths(ctx context.Context, baseURL, wordlist string) ([]models.PathFinding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visited = append(f.visited, baseURL)
	f.wordlist = wordlist
	return f.results[baseURL], f.err
}

type fakeHints struct {
	fetched []string
}

func (f *fakeHints) Fetch(ctx context.Context, baseURL string) models.PathHint {
	f.fetched = append(f.fetched, baseURL)
	return models.PathHint{URL: baseURL, Robots: []string{"/private"}}
}

type memStore struct {
	mu       sync.Mutex
	scans    map[string]models.ScanMeta
	reports  []*models.Report
	statuses []models.ScanStatus
}

func newMemStore() *memStore {
	return &memStore{scans: map[string]models.ScanMeta{}}
}

func (m *memStore) SaveScan(meta *models.ScanMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans[meta.ID] = *meta
	m.statuses = append(m.statuses, meta.Status)
	return nil
}

func (m *memStore) UpdateScanStatus(id string, status models.ScanStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta := m.scans[id]
	meta.Status = status
	m.scans[id] = meta
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *memStore) SaveReport(report *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
	return nil
}

func TestRunFullPipeline(t *testing.T) {
	ports := &fakePorts{table: models.PortTable{"example.com": {80: "http", 443: "https", 3306: "MySQL"}}}
	subs := &fakeSubs{
		subs: models.NewHostSet("example.com", "www.example.com", "api.example.com"),
		live: models.NewHostSet("example.com", "www.example.com"),
	}
	pathsFake := &fakePaths{results: map[string][]models.PathFinding{
		"https://example.com": {{Path: "/admin", Status: 200}, {Path: "/css", Status: 200}},
	}}
	hints := &fakeHints{}
	store := newMemStore()
	rec := &toolstest.Recorder{}

	var started, done []string
	o := &Orchestrator{Ports: ports, Subdomains: subs, Paths: pathsFake, Hints: hints, Store: store, Events: rec.Sink()}

	report, err := o.Run(context.Background(), PipelineConfig{
		Domain:    "Example.com",
		Profile:   "normal",
		CheckLive: true,
		Hints:     true,
		Wordlist:  "/tmp/wl.txt",
		OnStageStart: func(name string, index, total int) {
			started = append(started, name)
		},
		OnStageDone: func(name string, index, total int, err error, elapsed time.Duration) {
			done = append(done, name)
		},
	})
	require.NoError(t, err)

	order := []string{models.StagePorts, models.StageSubdomains, models.StagePaths}
	assert.Equal(t, order, started)
	assert.Equal(t, order, done)
	assert.Equal(t, order, report.StagesRun)

	assert.Equal(t, []string{"example.com"}, ports.hosts)
	assert.True(t, subs.checkLive)
	assert.Equal(t, []string{"api.example.com", "example.com", "www.example.com"}, report.Subdomains)
	assert.Equal(t, []string{"example.com", "www.example.com"}, report.Live)

	assert.Equal(t, []string{"https://example.com", "http://example.com"}, report.PathURLs)
	assert.Equal(t, []string{"https://example.com", "http://example.com"}, pathsFake.visited)
	assert.Equal(t, "/tmp/wl.txt", pathsFake.wordlist)
	assert.Equal(t, []string{"http://example.com"}, hints.fetched)
	require.Len(t, report.Hints, 1)

	assert.Len(t, report.Paths, 2)
	assert.Equal(t, 1, report.InterestingCount)
	assert.Equal(t, 1, report.RiskyPortCount)
	assert.Equal(t, models.RiskInfo, report.Risk)
	assert.Equal(t, NoteInfo, report.RiskNote)
	assert.Empty(t, report.StageErrors)

	require.Len(t, store.reports, 1)
	saved := store.scans[report.ScanID]
	assert.Equal(t, models.StatusComplete, saved.Status)
	assert.Equal(t, models.RiskInfo, saved.Risk)
	assert.NotNil(t, saved.CompletedAt)

	assert.Len(t, rec.Of(events.StageStarted), 3)
	assert.Len(t, rec.Of(events.TargetsDerived), 1)
}

func TestRunSkippedStages(t *testing.T) {
	rec := &toolstest.Recorder{}
	o := &Orchestrator{
		Ports:      &fakePorts{},
		Subdomains: &fakeSubs{},
		Paths:      &fakePaths{},
		Events:     rec.Sink(),
	}

	report, err := o.Run(context.Background(), PipelineConfig{
		Domain:         "example.com",
		SkipPorts:      true,
		SkipSubdomains: true,
		SkipPaths:      true,
	})
	require.NoError(t, err)

	assert.Empty(t, report.Ports)
	assert.Equal(t, []string{"example.com"}, report.Subdomains)
	assert.Equal(t, []string{"example.com"}, report.Live)
	assert.Empty(t, report.Paths)
	assert.Empty(t, report.StagesRun)
	assert.Equal(t, models.RiskLow, report.Risk)
	assert.Equal(t, NoteLow, report.RiskNote)
	assert.Len(t, rec.Of(events.StageSkipped), 3)
}

func TestRunReportDoesNotShareScannerTable(t *testing.T) {
	table := models.PortTable{"example.com": {80: "http"}}
	o := &Orchestrator{Ports: &fakePorts{table: table}}

	report, err := o.Run(context.Background(), PipelineConfig{
		Domain:         "example.com",
		SkipSubdomains: true,
		SkipPaths:      true,
	})
	require.NoError(t, err)

	table.Set("example.com", 3389, "ms-wbt-server")
	table.Set("other.example.com", 22, "ssh")

	assert.Equal(t, models.PortTable{"example.com": {80: "http"}}, report.Ports)
}

func TestRunStageFailuresAreNotFatal(t *testing.T) {
	store := newMemStore()
	o := &Orchestrator{
		Ports:      &fakePorts{table: models.PortTable{}, err: errors.New("nmap: tool not found")},
		Subdomains: &fakeSubs{panicMsg: "boom"},
		Paths:      &fakePaths{err: tools.ErrToolUnavailable},
		Store:      store,
	}

	report, err := o.Run(context.Background(), PipelineConfig{Domain: "example.com"})
	require.NoError(t, err)

	assert.Len(t, report.StageErrors, 3)
	assert.Contains(t, report.StageErrors[models.StageSubdomains], "panicked")
	assert.Equal(t, []string{"example.com"}, report.Subdomains)
	assert.NotEmpty(t, report.Warnings)
	assert.Equal(t, models.StatusPartial, store.scans[report.ScanID].Status)
}

func TestRunPathStageStopsAfterUnavailableTool(t *testing.T) {
	pathsFake := &fakePaths{err: paths.ErrNoWordlist}
	o := &Orchestrator{Paths: pathsFake}

	report, err := o.Run(context.Background(), PipelineConfig{Domain: "example.com", SkipPorts: true, SkipSubdomains: true})
	require.NoError(t, err)

	assert.Len(t, pathsFake.visited, 1)
	assert.Contains(t, report.StageErrors[models.StagePaths], paths.ErrNoWordlist.Error())
}

func TestRunCancelledReturnsNoReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := newMemStore()
	pathsFake := &fakePaths{}
	o := &Orchestrator{
		Ports:      &fakePorts{table: models.PortTable{}},
		Subdomains: &fakeSubs{subs: models.NewHostSet("example.com"), live: models.NewHostSet(), cancel: cancel},
		Paths:      pathsFake,
		Store:      store,
	}

	report, err := o.Run(ctx, PipelineConfig{Domain: "example.com"})

	require.ErrorIs(t, err, ErrCancelled)
	assert.Nil(t, report)
	assert.Empty(t, pathsFake.visited)
	assert.Empty(t, store.reports)
	assert.Equal(t, models.StatusCancelled, store.statuses[len(store.statuses)-1])
}

func TestRunRejectsOutOfScopeDomain(t *testing.T) {
	o := &Orchestrator{}

	_, err := o.Run(context.Background(), PipelineConfig{Domain: "evil.com", Scope: NewScope("*.example.com,example.com")})
	require.Error(t, err)

	_, err = o.Run(context.Background(), PipelineConfig{Domain: ""})
	require.Error(t, err)
}

func TestRunFiltersOutOfScopeSubdomains(t *testing.T) {
	o := &Orchestrator{Subdomains: &fakeSubs{
		subs: models.NewHostSet("example.com", "a.example.com", "cdn.other.net"),
		live: models.NewHostSet("a.example.com", "cdn.other.net"),
	}}

	report, err := o.Run(context.Background(), PipelineConfig{
		Domain:    "example.com",
		SkipPorts: true,
		SkipPaths: true,
		Scope:     NewScope("*.example.com", "example.com"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.example.com", "example.com"}, report.Subdomains)
	assert.Equal(t, []string{"a.example.com"}, report.Live)
}

func TestScoreRisk(t *testing.T) {
	tests := []struct {
		name      string
		findings  []models.PathFinding
		ports     models.PortTable
		want      models.RiskLevel
		note      string
		interest  int
		riskyPort int
	}{
		{name: "nothing", want: models.RiskLow, note: NoteLow},
		{
			name:     "one boring path",
			findings: []models.PathFinding{{Path: "/css", Status: 200}},
			want:     models.RiskInfo, note: NoteInfo,
		},
		{
			name:     "one interesting path",
			findings: []models.PathFinding{{Path: "/admin", Status: 200}},
			want:     models.RiskInfo, note: NoteInfo, interest: 1,
		},
		{
			name:     "two interesting paths",
			findings: []models.PathFinding{{Path: "/admin"}, {Path: "/backup"}},
			want:     models.RiskMedium, note: NoteMedium, interest: 2,
		},
		{
			name:  "one risky port",
			ports: models.PortTable{"example.com": {3389: "RDP", 22: "SSH"}},
			want:  models.RiskInfo, note: NoteInfo, riskyPort: 1,
		},
		{
			name:  "risky ports across hosts",
			ports: models.PortTable{"a": {3306: "MySQL"}, "b": {5432: "PostgreSQL"}},
			want:  models.RiskMedium, note: NoteMedium, riskyPort: 2,
		},
		{
			name:  "only benign ports",
			ports: models.PortTable{"a": {80: "HTTP", 443: "HTTPS"}},
			want:  models.RiskLow, note: NoteLow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreRisk(tt.findings, tt.ports)
			assert.Equal(t, tt.want, got.Level)
			assert.Equal(t, tt.note, got.Note)
			assert.Equal(t, tt.interest, got.InterestingCount)
			assert.Equal(t, tt.riskyPort, got.RiskyPortCount)
		})
	}
}

func TestDeriveTargets(t *testing.T) {
	limits := DefaultTargetLimits()

	tests := []struct {
		name  string
		subs  models.HostSet
		live  models.HostSet
		ports models.PortTable
		want  []string
	}{
		{
			name:  "only http open",
			live:  models.NewHostSet("example.com"),
			ports: models.PortTable{"example.com": {80: "http"}},
			want:  []string{"http://example.com"},
		},
		{
			name:  "https before http",
			live:  models.NewHostSet("example.com"),
			ports: models.PortTable{"example.com": {80: "http", 443: "https"}},
			want:  []string{"https://example.com", "http://example.com"},
		},
		{
			name: "host without port data gets both schemes",
			live: models.NewHostSet("www.example.com"),
			want: []string{"https://www.example.com", "http://www.example.com"},
		},
		{
			name:  "domain leads and url cap applies",
			live:  models.NewHostSet("a.example.com", "example.com"),
			ports: models.PortTable{"example.com": {443: "https"}},
			want:  []string{"https://example.com", "https://a.example.com"},
		},
		{
			name:  "no web ports falls back to domain",
			live:  models.NewHostSet("example.com"),
			ports: models.PortTable{"example.com": {22: "ssh"}},
			want:  []string{"https://example.com", "http://example.com"},
		},
		{
			name: "no live hosts uses subdomains",
			subs: models.NewHostSet("b.example.com", "a.example.com"),
			live: models.NewHostSet(),
			want: []string{"https://a.example.com", "http://a.example.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ports := tt.ports
			if ports == nil {
				ports = models.PortTable{}
			}
			assert.Equal(t, tt.want, DeriveTargets("example.com", tt.subs, tt.live, ports, limits))
		})
	}
}

func TestDeriveTargetsRespectsLimits(t *testing.T) {
	live := models.NewHostSet("a.example.com", "b.example.com", "c.example.com", "d.example.com")
	ports := models.PortTable{
		"a.example.com": {443: "https"},
		"b.example.com": {443: "https"},
		"c.example.com": {443: "https"},
		"d.example.com": {443: "https"},
	}

	got := DeriveTargets("example.com", nil, live, ports, TargetLimits{MaxHosts: 3, MaxURLs: 10})
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"}, got)

	got = DeriveTargets("example.com", nil, live, ports, TargetLimits{})
	assert.Len(t, got, 2)
}

func TestScope(t *testing.T) {
	s := NewScope(" *.example.com , example.com", "")

	assert.Equal(t, []string{"*.example.com", "example.com"}, s.AllowedDomains)
	assert.True(t, s.InScope("example.com"))
	assert.True(t, s.InScope("WWW.Example.com."))
	assert.True(t, s.InScope("a.b.example.com"))
	assert.False(t, s.InScope("notexample.com"))
	assert.False(t, s.InScope("example.com.evil.net"))
	assert.NoError(t, s.ValidateTarget("example.com"))
	assert.Error(t, s.ValidateTarget("evil.net"))

	var empty *ScopeConfig
	assert.True(t, empty.InScope("anything.net"))
	assert.NoError(t, empty.ValidateTarget("anything.net"))
}

func TestSendCompletion(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	start := time.Now()
	report := &models.Report{
		ScanID:           "abc",
		Domain:           "example.com",
		StartedAt:        start,
		CompletedAt:      start.Add(3 * time.Second),
		Ports:            models.PortTable{"example.com": {80: "http"}},
		Subdomains:       []string{"example.com"},
		Live:             []string{"example.com"},
		Risk:             models.RiskLow,
		InterestingCount: 0,
	}

	n := &NotifyConfig{WebhookURL: srv.URL}
	require.NoError(t, n.SendCompletion(context.Background(), report))

	assert.Equal(t, "example.com", got["domain"])
	assert.Equal(t, "abc", got["scan_id"])
	assert.Equal(t, "Low", got["risk"])
	assert.EqualValues(t, 1, got["open_ports"])
	assert.EqualValues(t, 3, got["elapsed_seconds"])
}

func TestSendCompletionErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	report := &models.Report{Domain: "example.com"}

	assert.NoError(t, (&NotifyConfig{}).SendCompletion(context.Background(), report))
	assert.Error(t, (&NotifyConfig{WebhookURL: srv.URL}).SendCompletion(context.Background(), report))
}
