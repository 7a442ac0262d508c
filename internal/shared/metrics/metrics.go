package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	runStartedTotal    atomic.Uint64
	runCompletedTotal  atomic.Uint64
	runFailedTotal     atomic.Uint64
	runSupersededTotal atomic.Uint64

	runDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 90000})
)

// IncRunStarted increments the started counter.
func IncRunStarted() {
	runStartedTotal.Add(1)
}

// IncRunCompleted increments the completed counter.
func IncRunCompleted() {
	runCompletedTotal.Add(1)
}

// IncRunFailed increments the failed counter.
func IncRunFailed() {
	runFailedTotal.Add(1)
}

// IncRunSuperseded increments the superseded counter.
func IncRunSuperseded() {
	runSupersededTotal.Add(1)
}

// ObserveRunDurationMs records an analysis run duration in milliseconds.
func ObserveRunDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	runDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "analysis_run_started_total", "Total analysis runs started", runStartedTotal.Load())
	writeCounter(&buf, "analysis_run_completed_total", "Total analysis runs completed", runCompletedTotal.Load())
	writeCounter(&buf, "analysis_run_failed_total", "Total analysis runs failed", runFailedTotal.Load())
	writeCounter(&buf, "analysis_run_superseded_total", "Total analysis runs superseded by a newer trigger", runSupersededTotal.Load())
	writeHistogram(&buf, "analysis_run_duration_ms", "Analysis run duration in milliseconds", runDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
