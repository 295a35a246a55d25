// ABOUTME: Prometheus collector for clock-sync state
// ABOUTME: Reads a Snapshot once per scrape and emits counters/gauges from it
// Package metrics exposes the clock-sync client's statistics and derived
// state as Prometheus metrics, grounded on the pattern of a custom
// prometheus.Collector reading live state under its own lock at scrape
// time rather than pre-registered gauge variables.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	syncpkg "github.com/driftsync-project/driftsync-go/internal/sync"
)

// Core is the subset of *sync.Client's query surface the collector needs.
// Defined as an interface so the collector can be tested against a fake
// without depending on a live UDP client.
type Core interface {
	Snapshot() syncpkg.Snapshot
}

// Collector adapts a Core to prometheus.Collector. A single Snapshot call
// per scrape keeps all emitted values mutually consistent instead of
// reading the client's state field by field.
type Collector struct {
	core Core

	sent     *prometheus.Desc
	received *prometheus.Desc
	rejected *prometheus.Desc
	offset   *prometheus.Desc
	rate     *prometheus.Desc
	rtt      *prometheus.Desc
	accuracy *prometheus.Desc
}

// New returns a Collector reading from core. Register it with a
// prometheus.Registerer.
func New(core Core) *Collector {
	return &Collector{
		core:     core,
		sent:     prometheus.NewDesc("driftsync_requests_sent_total", "Total probe requests sent.", nil, nil),
		received: prometheus.NewDesc("driftsync_replies_received_total", "Total replies received.", nil, nil),
		rejected: prometheus.NewDesc("driftsync_replies_rejected_total", "Total replies rejected by the RTT outlier filter.", nil, nil),
		offset:   prometheus.NewDesc("driftsync_average_offset_microseconds", "Smoothed offset between local and global time.", nil, nil),
		rate:     prometheus.NewDesc("driftsync_clock_rate", "Estimated ratio of remote clock rate to local clock rate.", nil, nil),
		rtt:      prometheus.NewDesc("driftsync_median_round_trip_microseconds", "Median round-trip time over the retained sample window.", nil, nil),
		accuracy: prometheus.NewDesc("driftsync_accuracy_microseconds", "Self-measured global-time projection accuracy.", []string{"stat"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.sent
	ch <- c.received
	ch <- c.rejected
	ch <- c.offset
	ch <- c.rate
	ch <- c.rtt
	ch <- c.accuracy
}

// Collect implements prometheus.Collector, reading a single consistent
// snapshot of the core's current state.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.core.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.sent, prometheus.CounterValue, float64(s.Statistics.Sent))
	ch <- prometheus.MustNewConstMetric(c.received, prometheus.CounterValue, float64(s.Statistics.Received))
	ch <- prometheus.MustNewConstMetric(c.rejected, prometheus.CounterValue, float64(s.Statistics.Rejected))

	ch <- prometheus.MustNewConstMetric(c.offset, prometheus.GaugeValue, s.Offset)
	ch <- prometheus.MustNewConstMetric(c.rate, prometheus.GaugeValue, s.ClockRate)
	ch <- prometheus.MustNewConstMetric(c.rtt, prometheus.GaugeValue, s.MedianRoundTripTime)

	if s.HasAccuracy {
		ch <- prometheus.MustNewConstMetric(c.accuracy, prometheus.GaugeValue, s.Accuracy.Min, "min")
		ch <- prometheus.MustNewConstMetric(c.accuracy, prometheus.GaugeValue, s.Accuracy.Avg, "avg")
		ch <- prometheus.MustNewConstMetric(c.accuracy, prometheus.GaugeValue, s.Accuracy.Max, "max")
	}
}

// pollInterval is a default staleness window for consumers of the
// collector. internal/statusapi's /healthz does not consult it; that
// endpoint always answers "ok".
const pollInterval = 2 * time.Second

// PollInterval returns the default staleness window. Nothing in this
// repository reads it.
func PollInterval() time.Duration { return pollInterval }
