package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"solardash/internal/models"
	"solardash/internal/serp"
	"solardash/internal/tracking"
)

var (
	competitorVisibilityDesc = prometheus.NewDesc(
		"solardash_competitor_visibility_score",
		"Visibility score of a tracked competitor from its current rankings",
		[]string{"domain", "business_type"},
		nil,
	)
	competitorTrafficDesc = prometheus.NewDesc(
		"solardash_competitor_estimated_traffic",
		"Estimated monthly clicks of a tracked competitor",
		[]string{"domain"},
		nil,
	)
	competitorsDesc = prometheus.NewDesc(
		"solardash_competitors",
		"Number of tracked competitors by business type",
		[]string{"business_type"},
		nil,
	)
	keywordPositionDesc = prometheus.NewDesc(
		"solardash_keyword_average_position",
		"Average position of the business for a keyword over the recency window",
		[]string{"area", "keyword"},
		nil,
	)
)

var (
	serpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solardash_serp_requests_total",
		Help: "SERP lookups by source mode and outcome",
	}, []string{"mode", "outcome"})

	serpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solardash_serp_request_duration_seconds",
		Help:    "SERP lookup latency by source mode",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	trackingRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solardash_tracking_runs_total",
		Help: "Competitor tracking runs by final state",
	}, []string{"state"})

	trackingFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solardash_tracking_fallback_positions_total",
		Help: "Positions substituted after a failed SERP lookup",
	})
)

// Reader is the read side of the database used on each scrape.
type Reader interface {
	ListCompetitors(ctx context.Context) ([]models.Competitor, error)
	CountCompetitorsByType(ctx context.Context) (map[string]int, error)
	ListCompetitorRankings(ctx context.Context) ([]models.CompetitorRanking, error)
	GetCurrentKeywordRankings(ctx context.Context, windowDays int) ([]models.CurrentKeywordRanking, error)
}

// Collector is a custom Prometheus collector that reads competitor and keyword
// state from the database on each scrape.
type Collector struct {
	db         Reader
	windowDays int
}

// NewCollector creates a collector over db.
func NewCollector(db Reader, windowDays int) *Collector {
	return &Collector{db: db, windowDays: windowDays}
}

// Describe sends the metric descriptors to the channel.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- competitorVisibilityDesc
	ch <- competitorTrafficDesc
	ch <- competitorsDesc
	ch <- keywordPositionDesc
}

// Collect emits competitor visibility and keyword position gauges.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c.collectCompetitors(ctx, ch)
	c.collectCounts(ctx, ch)

	current, err := c.db.GetCurrentKeywordRankings(ctx, c.windowDays)
	if err != nil {
		slog.Error("failed to collect keyword ranking metrics", "error", err)
		return
	}
	for _, r := range current {
		if r.AveragePosition == nil {
			continue
		}
		ch <- prometheus.MustNewConstMetric(
			keywordPositionDesc,
			prometheus.GaugeValue,
			*r.AveragePosition,
			r.Area,
			r.Keyword,
		)
	}
}

func (c *Collector) collectCompetitors(ctx context.Context, ch chan<- prometheus.Metric) {
	competitors, err := c.db.ListCompetitors(ctx)
	if err != nil {
		slog.Error("failed to collect competitor metrics", "error", err)
		return
	}
	rankings, err := c.db.ListCompetitorRankings(ctx)
	if err != nil {
		slog.Error("failed to collect competitor ranking metrics", "error", err)
		return
	}
	for _, s := range tracking.Summarize(competitors, rankings, nil) {
		ch <- prometheus.MustNewConstMetric(
			competitorVisibilityDesc,
			prometheus.GaugeValue,
			float64(s.Visibility),
			s.Domain,
			s.BusinessType,
		)
		ch <- prometheus.MustNewConstMetric(
			competitorTrafficDesc,
			prometheus.GaugeValue,
			float64(s.EstimatedTraffic),
			s.Domain,
		)
	}
}

func (c *Collector) collectCounts(ctx context.Context, ch chan<- prometheus.Metric) {
	counts, err := c.db.CountCompetitorsByType(ctx)
	if err != nil {
		slog.Error("failed to collect competitor counts", "error", err)
		return
	}
	for businessType, n := range counts {
		ch <- prometheus.MustNewConstMetric(competitorsDesc, prometheus.GaugeValue, float64(n), businessType)
	}
}

var initOnce sync.Once

// Init registers the collector and the SERP and tracking counters with the
// default registry. Must be called once at startup.
func Init(db Reader, windowDays int) {
	initOnce.Do(func() {
		prometheus.MustRegister(
			NewCollector(db, windowDays),
			serpRequests,
			serpDuration,
			trackingRuns,
			trackingFallbacks,
		)
	})
}

// RecordRun counts a finished tracking run.
func RecordRun(run *tracking.Run) {
	if run == nil {
		return
	}
	trackingRuns.WithLabelValues(string(run.State)).Inc()
	trackingFallbacks.Add(float64(run.Fallbacks))
}

// InstrumentSource wraps src so every lookup is counted and timed.
func InstrumentSource(src serp.Source) serp.Source {
	return &instrumentedSource{Source: src}
}

type instrumentedSource struct {
	serp.Source
}

func (s *instrumentedSource) Search(ctx context.Context, query, location string) ([]serp.Result, error) {
	mode := s.Mode()
	start := time.Now()
	results, err := s.Source.Search(ctx, query, location)
	serpDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case len(results) == 0:
		outcome = "empty"
	}
	serpRequests.WithLabelValues(mode, outcome).Inc()
	return results, err
}
