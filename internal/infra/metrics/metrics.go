// Package metrics holds the process wide Prometheus collectors.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wagerledger"

var (
	betTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bets_total",
			Help:      "Bet placements by result and game type",
		},
		[]string{"result", "game_type"},
	)

	betDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bet_duration_ms",
			Help:      "Bet placement duration in milliseconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"result", "game_type"},
	)

	settlementTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Round settlements by result and game type",
		},
		[]string{"result", "game_type"},
	)

	settlementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_duration_ms",
			Help:      "Round settlement duration in milliseconds",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 12),
		},
		[]string{"game_type"},
	)

	payoutTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payouts_total",
			Help:      "Amount credited to winners by currency",
		},
		[]string{"currency"},
	)

	txRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_retries_total",
			Help:      "Retries of contended ledger transactions by operation",
		},
		[]string{"op"},
	)

	publishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_publish_failures_total",
			Help:      "Events that could not be delivered by sink",
		},
		[]string{"sink"},
	)

	eventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Events dropped because the publish queue was full or closed",
		},
	)
)

// Result labels.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
	ResultRepeated = "repeated"
)

// RecordBet records one placement attempt.
func RecordBet(result, gameType string, started time.Time) {
	gt := strings.ToLower(gameType)
	betTotal.WithLabelValues(result, gt).Inc()
	betDuration.WithLabelValues(result, gt).Observe(float64(time.Since(started).Milliseconds()))
}

// RecordSettlement records one settle call.
func RecordSettlement(result, gameType string, started time.Time) {
	gt := strings.ToLower(gameType)
	settlementTotal.WithLabelValues(result, gt).Inc()
	settlementDuration.WithLabelValues(gt).Observe(float64(time.Since(started).Milliseconds()))
}

func AddPayout(currency string, amount int64) {
	if amount <= 0 {
		return
	}

	payoutTotal.WithLabelValues(currency).Add(float64(amount))
}

func IncRetry(op string) {
	txRetries.WithLabelValues(op).Inc()
}

func IncPublishFailure(sink string) {
	publishFailures.WithLabelValues(sink).Inc()
}

func IncEventDropped() {
	eventsDropped.Inc()
}
