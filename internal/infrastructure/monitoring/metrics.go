package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Tab metrics
	TabsActive    prometheus.Gauge
	TabsTotal     *prometheus.CounterVec
	TabsRendered  *prometheus.CounterVec
	CompileErrors *prometheus.CounterVec

	// Refinement metrics
	RefinementRounds   *prometheus.CounterVec
	RefinementDuration prometheus.Histogram

	// Surface metrics
	SurfaceHeights  prometheus.Histogram
	SurfaceIgnored  prometheus.Counter
	SurfaceReloads  prometheus.Counter
	NavigationDrops prometheus.Counter

	// Collaborator metrics
	CollaboratorCalls    *prometheus.CounterVec
	CollaboratorDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds current metric values for the JSON status API
type Snapshot struct {
	TotalRequests int64
	TotalErrors   int64
	ActiveTabs    int64
	TotalDuration float64 // sum of all request durations
	RequestCount  int64   // count for averaging
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabforge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tabforge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tabforge_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tabforge_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Tab metrics
		TabsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tabforge_tabs_active",
				Help: "Number of open tabs",
			},
		),
		TabsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabforge_tabs_total",
				Help: "Total number of tabs opened",
			},
			[]string{"encoding"},
		),
		TabsRendered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabforge_tabs_rendered_total",
				Help: "Total number of tab render passes",
			},
			[]string{"encoding"},
		),
		CompileErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabforge_compile_errors_total",
				Help: "Total number of dynamic source compile failures",
			},
			[]string{"stage"},
		),

		// Refinement metrics
		RefinementRounds: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabforge_refinement_rounds_total",
				Help: "Total number of refinement rounds",
			},
			[]string{"status"},
		),
		RefinementDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tabforge_refinement_duration_seconds",
				Help:    "Refinement round trip duration in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),

		// Surface metrics
		SurfaceHeights: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tabforge_surface_height_pixels",
				Help:    "Applied surface heights in CSS pixels",
				Buckets: []float64{200, 400, 600, 800, 1200, 1600, 2400, 4000},
			},
		),
		SurfaceIgnored: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tabforge_surface_messages_ignored_total",
				Help: "Total number of ignored surface messages",
			},
		),
		SurfaceReloads: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tabforge_surface_reloads_total",
				Help: "Total number of surface payload reloads",
			},
		),
		NavigationDrops: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tabforge_surface_navigations_cancelled_total",
				Help: "Total number of cancelled surface navigations",
			},
		),

		// Collaborator metrics
		CollaboratorCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabforge_collaborator_calls_total",
				Help: "Total number of AI collaborator calls",
			},
			[]string{"operation", "status"},
		),
		CollaboratorDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tabforge_collaborator_duration_seconds",
				Help:    "AI collaborator call duration in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),

		// WebSocket metrics
		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tabforge_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabforge_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		// System metrics
		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tabforge_uptime_seconds",
				Help: "Engine uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// TabOpened records a tab opening and the new open-tab count
func (m *Metrics) TabOpened(encoding string, count int) {
	m.TabsTotal.WithLabelValues(encoding).Inc()
	m.setTabsActive(count)
}

// TabClosed records a tab disposal and the new open-tab count
func (m *Metrics) TabClosed(count int) {
	m.setTabsActive(count)
}

// TabRendered records one render pass
func (m *Metrics) TabRendered(encoding string) {
	m.TabsRendered.WithLabelValues(encoding).Inc()
}

// CompileFailed records a dynamic source compile failure by stage
func (m *Metrics) CompileFailed(stage string) {
	m.CompileErrors.WithLabelValues(stage).Inc()
}

// RecordRefinement records a refinement round trip
func (m *Metrics) RecordRefinement(status string, duration time.Duration) {
	m.RefinementRounds.WithLabelValues(status).Inc()
	m.RefinementDuration.Observe(duration.Seconds())
}

// SurfaceHeightApplied records an applied surface height
func (m *Metrics) SurfaceHeightApplied(height float64) {
	m.SurfaceHeights.Observe(height)
}

// SurfaceMessageIgnored records a dropped surface message
func (m *Metrics) SurfaceMessageIgnored() {
	m.SurfaceIgnored.Inc()
}

// SurfaceReloaded records a surface payload reload
func (m *Metrics) SurfaceReloaded() {
	m.SurfaceReloads.Inc()
}

// NavigationCancelled records a cancelled surface navigation
func (m *Metrics) NavigationCancelled() {
	m.NavigationDrops.Inc()
}

// RecordCollaboratorCall records an AI collaborator round trip
func (m *Metrics) RecordCollaboratorCall(operation, status string, duration time.Duration) {
	m.CollaboratorCalls.WithLabelValues(operation, status).Inc()
	m.CollaboratorDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// GetSnapshot returns current values for the JSON status API
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

func (m *Metrics) setTabsActive(count int) {
	m.TabsActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveTabs = int64(count)
	m.mu.Unlock()
}
