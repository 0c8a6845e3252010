// Package metrics exposes Prometheus counters for chat and check-in activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is implemented by Collector and Nop. Services depend on it.
type Recorder interface {
	RecordMessagePosted(messageType string)
	RecordPublishFailure()
	RecordCheckIn(accepted bool)
	RecordDailyReset(accounts int64)
	RecordAIReply(outcome string)
}

// AI reply outcomes.
const (
	AIOutcomeReplied      = "replied"
	AIOutcomeContextRetry = "context_retry"
	AIOutcomeEmpty        = "empty"
	AIOutcomeFailed       = "failed"
)

// Collector records metrics into a Prometheus registry.
type Collector struct {
	messagesPosted  *prometheus.CounterVec
	publishFailures prometheus.Counter
	checkIns        *prometheus.CounterVec
	resetAccounts   prometheus.Counter
	resetRuns       prometheus.Counter
	aiReplies       *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		messagesPosted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chesslounge_messages_posted_total",
			Help: "Chat messages persisted, by message type.",
		}, []string{"type"}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chesslounge_publish_failures_total",
			Help: "Failed real-time gateway publishes.",
		}),
		checkIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chesslounge_checkins_total",
			Help: "Check-in attempts, by result.",
		}, []string{"result"}),
		resetAccounts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chesslounge_daily_reset_accounts_total",
			Help: "Accounts processed by daily resets.",
		}),
		resetRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chesslounge_daily_reset_runs_total",
			Help: "Completed daily reset passes.",
		}),
		aiReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chesslounge_ai_replies_total",
			Help: "AI responder runs, by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.messagesPosted,
		c.publishFailures,
		c.checkIns,
		c.resetAccounts,
		c.resetRuns,
		c.aiReplies,
	)

	return c
}

func (c *Collector) RecordMessagePosted(messageType string) {
	c.messagesPosted.WithLabelValues(messageType).Inc()
}

func (c *Collector) RecordPublishFailure() {
	c.publishFailures.Inc()
}

func (c *Collector) RecordCheckIn(accepted bool) {
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	c.checkIns.WithLabelValues(result).Inc()
}

func (c *Collector) RecordDailyReset(accounts int64) {
	c.resetRuns.Inc()
	c.resetAccounts.Add(float64(accounts))
}

func (c *Collector) RecordAIReply(outcome string) {
	c.aiReplies.WithLabelValues(outcome).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordMessagePosted(string) {}
func (Nop) RecordPublishFailure()      {}
func (Nop) RecordCheckIn(bool)         {}
func (Nop) RecordDailyReset(int64)     {}
func (Nop) RecordAIReply(string)       {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
