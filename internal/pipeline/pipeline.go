package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tripgrid/taxi-hotspots/internal/domain"
	"github.com/tripgrid/taxi-hotspots/internal/observability"
)

// Result is one complete recomputation for a set of filter criteria:
// the filtered rows, the hotspot clusters over their pickup points (with
// Noise holding the unclustered indices), and the KPI summary.
type Result struct {
	Criteria    domain.FilterCriteria `json:"criteria"`
	Rows        []domain.Trip         `json:"rows"`
	Clusters    []domain.Cluster      `json:"clusters"`
	Noise       []int                 `json:"noise,omitempty"`
	KPIs        domain.KPISet         `json:"kpis"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// SnapshotPublisher receives each computed result for downstream consumers.
// Publishing is best-effort: errors are logged and counted, never surfaced
// to the caller of Process.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, result Result) error
}

// Pipeline runs the filter-cluster-aggregate cycle against the immutable
// loaded trip table. Each Process call is an independent, synchronous
// recomputation; nothing derived is cached across criteria changes, so a
// result can never mix clusters from one filter with rows from another.
type Pipeline struct {
	trips     []domain.Trip
	clusterer domain.Clusterer
	publisher SnapshotPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Pipeline over a loaded trip table. Pass a nil publisher to
// disable snapshot publishing.
func New(trips []domain.Trip, clusterer domain.Clusterer, publisher SnapshotPublisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	p := &Pipeline{
		trips:     trips,
		clusterer: clusterer,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
	p.ready.Store(true)
	metrics.DatasetLoaded.Set(1)
	metrics.DatasetRows.Set(float64(len(trips)))
	return p
}

// CheckReadiness returns nil once the trip table is loaded and queryable.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("trip dataset not loaded yet")
	}
	return nil
}

// DatasetBoroughs lists the distinct boroughs in the loaded table, used to
// resolve an unrestricted borough selection.
func (p *Pipeline) DatasetBoroughs() []string {
	return domain.Boroughs(p.trips)
}

// DatasetSize returns the number of loaded trip rows.
func (p *Pipeline) DatasetSize() int {
	return len(p.trips)
}

// Process recomputes the full pipeline for the given criteria. It is
// deterministic: identical criteria against the same table yield an
// identical result, timestamp aside.
func (p *Pipeline) Process(ctx context.Context, criteria domain.FilterCriteria) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	p.metrics.Queries.Inc()

	indices := domain.FilterTrips(p.trips, criteria)
	rows := domain.SelectTrips(p.trips, indices)
	p.metrics.FilterMatchedRows.Observe(float64(len(rows)))

	points := domain.PickupPoints(rows)
	clusterStart := time.Now()
	labels := p.clusterer.Fit(points)
	p.metrics.ClusteringDuration.Observe(time.Since(clusterStart).Seconds())

	clusters, noise := domain.BuildClusters(points, labels)
	p.metrics.ClustersFound.Observe(float64(len(clusters)))

	kpis := domain.ComputeKPIs(rows)
	kpis.ClusterCount = len(clusters)

	result := Result{
		Criteria:    criteria,
		Rows:        rows,
		Clusters:    clusters,
		Noise:       noise,
		KPIs:        kpis,
		GeneratedAt: domain.Now(),
	}

	p.metrics.QueryDuration.Observe(time.Since(start).Seconds())
	p.logger.Debug("query processed",
		"hour_from", criteria.HourFrom,
		"hour_to", criteria.HourTo,
		"boroughs", len(criteria.Boroughs),
		"matched_rows", len(rows),
		"clusters", len(clusters),
	)

	p.publishSnapshot(ctx, result)
	return result, nil
}

// publishSnapshot forwards the result to the configured publisher.
// Publish failures must not fail the query.
func (p *Pipeline) publishSnapshot(ctx context.Context, result Result) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishSnapshot(ctx, result); err != nil {
		p.logger.Warn("snapshot publish failed", "error", err)
		p.metrics.SnapshotErrors.Inc()
		return
	}
	p.metrics.SnapshotsPublished.Inc()
}
