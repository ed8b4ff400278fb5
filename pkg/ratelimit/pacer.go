// Package ratelimit implements client-side request pacing for the HH API:
// a fixed courtesy delay between result pages and Retry-After parsing for
// throttled responses.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// DefaultPageDelay is the pause between two successful page fetches.
const DefaultPageDelay = 500 * time.Millisecond

// Prometheus metrics for pacing.
var (
	hhPacerWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hh_pacer_wait_seconds",
		Help:    "Time spent waiting between result pages",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2},
	})

	hhPacerWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hh_pacer_waits_total",
		Help: "Total number of courtesy waits between result pages",
	})
)

// Pacer blocks the single caller for a fixed interval on every Wait.
type Pacer struct {
	interval time.Duration
	logger   zerolog.Logger
}

// NewPacer creates a pacer. A non-positive interval disables waiting.
func NewPacer(interval time.Duration, logger zerolog.Logger) *Pacer {
	return &Pacer{
		interval: interval,
		logger:   logger,
	}
}

// Interval returns the configured delay.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Wait sleeps for the configured interval or until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}

	p.logger.Debug().Dur("delay", p.interval).Msg("Pausing before next page")

	start := time.Now()
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	hhPacerWaitsTotal.Inc()
	hhPacerWaitSeconds.Observe(time.Since(start).Seconds())
	return nil
}

// RetryAfter parses the Retry-After header (delta-seconds or HTTP-date).
// Returns 0 when the header is absent, invalid or already in the past.
func RetryAfter(headers http.Header, now time.Time) time.Duration {
	value := strings.TrimSpace(headers.Get("Retry-After"))
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	at, err := http.ParseTime(value)
	if err != nil {
		return 0
	}
	if wait := at.Sub(now); wait > 0 {
		return wait
	}
	return 0
}
