package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"golists/internal/db"
)

var (
	pendingSuggestionsDesc = prometheus.NewDesc(
		"golists_pending_suggestions",
		"Suggestions awaiting review",
		nil, nil,
	)
	openReportsDesc = prometheus.NewDesc(
		"golists_open_reports",
		"Reports awaiting resolution",
		nil, nil,
	)
	flaggedCommentsDesc = prometheus.NewDesc(
		"golists_flagged_comments",
		"Comments that are filtered or reported",
		nil, nil,
	)
)

// StatsSource reports the moderation queue depths. *db.DB implements it.
type StatsSource interface {
	GetModerationStats(ctx context.Context) (db.ModerationStats, error)
}

// QueueCollector is a custom Prometheus collector that reads the moderation
// queue depths from the database on each scrape.
type QueueCollector struct {
	src     StatsSource
	log     zerolog.Logger
	timeout time.Duration
}

// NewQueueCollector creates a collector over src.
func NewQueueCollector(src StatsSource, log zerolog.Logger) *QueueCollector {
	return &QueueCollector{src: src, log: log, timeout: 5 * time.Second}
}

// Describe sends the metric descriptors to the channel.
func (c *QueueCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- pendingSuggestionsDesc
	ch <- openReportsDesc
	ch <- flaggedCommentsDesc
}

// Collect queries the queue depths and emits them as gauges. A failed query
// emits nothing for this scrape.
func (c *QueueCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	stats, err := c.src.GetModerationStats(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to collect moderation queue metrics")
		return
	}

	ch <- prometheus.MustNewConstMetric(pendingSuggestionsDesc, prometheus.GaugeValue, float64(stats.PendingSuggestions))
	ch <- prometheus.MustNewConstMetric(openReportsDesc, prometheus.GaugeValue, float64(stats.OpenReports))
	ch <- prometheus.MustNewConstMetric(flaggedCommentsDesc, prometheus.GaugeValue, float64(stats.FlaggedComments))
}

// Recorder counts pipeline outcomes. It implements pipeline.Observer.
type Recorder struct {
	submissions *prometheus.CounterVec
	reviews     *prometheus.CounterVec
	votes       prometheus.Counter
	reports     *prometheus.CounterVec
	penalties   *prometheus.CounterVec
}

// NewRecorder creates the pipeline counters and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "golists_submissions_total",
			Help: "Comment and suggestion submissions by kind and outcome",
		}, []string{"kind", "outcome"}),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "golists_reviews_total",
			Help: "Suggestion reviews by decision and outcome",
		}, []string{"decision", "outcome"}),
		votes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "golists_votes_total",
			Help: "Helpful votes cast",
		}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "golists_reports_total",
			Help: "Comment reports by outcome",
		}, []string{"outcome"}),
		penalties: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "golists_penalties_total",
			Help: "Penalties recorded by action",
		}, []string{"action"}),
	}
	reg.MustRegister(r.submissions, r.reviews, r.votes, r.reports, r.penalties)
	return r
}

func (r *Recorder) Submission(kind, outcome string) {
	r.submissions.WithLabelValues(kind, outcome).Inc()
}

func (r *Recorder) Review(decision, outcome string) {
	r.reviews.WithLabelValues(decision, outcome).Inc()
}

func (r *Recorder) Vote() {
	r.votes.Inc()
}

func (r *Recorder) Report(outcome string) {
	r.reports.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Penalty(action string) {
	r.penalties.WithLabelValues(action).Inc()
}

// Register installs the queue collector and the pipeline counters on reg
// and returns the counters for the pipeline to report into.
func Register(reg prometheus.Registerer, src StatsSource, log zerolog.Logger) *Recorder {
	reg.MustRegister(NewQueueCollector(src, log))
	return NewRecorder(reg)
}
