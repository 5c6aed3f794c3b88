package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/mezonai/starledger/logx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type SubmissionRejectedReason string

var (
	SubmissionMalformedChallenge SubmissionRejectedReason = "malformed_challenge"
	SubmissionExpiredChallenge   SubmissionRejectedReason = "expired_challenge"
	SubmissionFutureChallenge    SubmissionRejectedReason = "future_challenge"
	SubmissionInvalidSignature   SubmissionRejectedReason = "invalid_signature"
	SubmissionInvalidPayload     SubmissionRejectedReason = "invalid_payload"
	SubmissionRateLimited        SubmissionRejectedReason = "rate_limited"
	SubmissionRejectedUnknown    SubmissionRejectedReason = "other"
)

type nodePromMetrics struct {
	nodeUpUnixSeconds  prometheus.Gauge
	blockHeight        prometheus.Gauge
	appendedBlockCount prometheus.Counter
	appendLatency      prometheus.Histogram
	challengeCount     prometheus.Counter
	rejectedCount      *prometheus.CounterVec
	validationCount    prometheus.Counter
	findingCount       *prometheus.CounterVec
	panicCount         prometheus.Counter
}

func newNodePromMetrics() *nodePromMetrics {
	return &nodePromMetrics{
		nodeUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "starledger_node_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the node",
			},
		),
		blockHeight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "starledger_block_height",
				Help: "The current chain height",
			},
		),
		appendedBlockCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "starledger_appended_block_count",
				Help: "The total number of blocks appended since start, genesis included",
			},
		),
		appendLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "starledger_append_latency_seconds",
				Help:    "Time spent inside the serialized append path",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
		challengeCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "starledger_challenge_count",
				Help: "The total number of ownership challenges issued",
			},
		),
		rejectedCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "starledger_rejected_submission_count",
				Help: "The total number of rejected star submissions",
			},
			[]string{"reason"},
		),
		validationCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "starledger_validation_count",
				Help: "The total number of chain validation runs",
			},
		),
		findingCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "starledger_validation_finding_count",
				Help: "The total number of integrity findings reported by chain validation",
			},
			[]string{"kind"},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "starledger_panic_count",
				Help: "The total number of recovered panics in background goroutines",
			},
		),
	}
}

var (
	nodeMetrics *nodePromMetrics
	initOnce    sync.Once
)

// InitMetrics registers the node metrics with the default registry. Calls after the
// first are no-ops; recording before InitMetrics is silently dropped.
func InitMetrics() {
	initOnce.Do(func() {
		nodeMetrics = newNodePromMetrics()
		nodeMetrics.nodeUpUnixSeconds.SetToCurrentTime()
	})
}

func RegisterMetrics(router *mux.Router) {
	logx.Info("MONITORING", "Registering prometheus metrics")
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

func SetBlockHeight(blockHeight int64) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.blockHeight.Set(float64(blockHeight))
}

func RecordAppend(duration time.Duration) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.appendedBlockCount.Inc()
	nodeMetrics.appendLatency.Observe(duration.Seconds())
}

func IncreaseChallengeCount() {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.challengeCount.Inc()
}

func RecordRejectedSubmission(reason SubmissionRejectedReason) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.rejectedCount.With(prometheus.Labels{
		"reason": string(reason),
	}).Inc()
}

func RecordValidation(findingsByKind map[string]int) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.validationCount.Inc()
	for kind, n := range findingsByKind {
		nodeMetrics.findingCount.With(prometheus.Labels{
			"kind": kind,
		}).Add(float64(n))
	}
}

func IncreasePanicCount() {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.panicCount.Inc()
}
