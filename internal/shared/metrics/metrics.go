package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	submissionsTotal       atomic.Uint64
	submissionsRejected    = newCounterVec("reason")
	dedupHitsTotal         atomic.Uint64
	recordsCreatedTotal    atomic.Uint64
	candidateFailuresTotal atomic.Uint64
	chainExhaustedTotal    atomic.Uint64

	scoringDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})

	gaugesMu sync.RWMutex
	gauges   []gaugeFunc
)

type gaugeFunc struct {
	name string
	help string
	fn   func() float64
}

// IncSubmission counts a resume submission entering the pipeline.
func IncSubmission() {
	submissionsTotal.Add(1)
}

// IncSubmissionRejected counts a submission that ended in an error, labelled
// with the error code returned to the client.
func IncSubmissionRejected(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	submissionsRejected.Inc(reason)
}

// RegisterGauge adds a gauge sampled on every render. Registering a name twice
// replaces the earlier function.
func RegisterGauge(name, help string, fn func() float64) {
	if fn == nil {
		return
	}
	gaugesMu.Lock()
	defer gaugesMu.Unlock()
	for i := range gauges {
		if gauges[i].name == name {
			gauges[i] = gaugeFunc{name: name, help: help, fn: fn}
			return
		}
	}
	gauges = append(gauges, gaugeFunc{name: name, help: help, fn: fn})
}

// IncDedupHit counts a submission answered from an existing record.
func IncDedupHit() {
	dedupHitsTotal.Add(1)
}

// IncRecordCreated counts a persisted analysis record.
func IncRecordCreated() {
	recordsCreatedTotal.Add(1)
}

// IncCandidateFailure counts a single failed model candidate attempt.
func IncCandidateFailure() {
	candidateFailuresTotal.Add(1)
}

// IncChainExhausted counts a scoring call where every candidate failed.
func IncChainExhausted() {
	chainExhaustedTotal.Add(1)
}

// ObserveScoringDurationMs records a scoring duration in milliseconds.
func ObserveScoringDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	scoringDuration.Observe(value)
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
	writeCounter(&buf, "resume_submissions_total", "Resume submissions received", submissionsTotal.Load())
	writeCounterVec(&buf, "resume_submissions_rejected_total", "Resume submissions that ended in an error", submissionsRejected)
	writeCounter(&buf, "resume_dedup_hits_total", "Submissions answered from an existing record", dedupHitsTotal.Load())
	writeCounter(&buf, "resume_records_created_total", "Analysis records persisted", recordsCreatedTotal.Load())
	writeCounter(&buf, "llm_candidate_failures_total", "Failed model candidate attempts", candidateFailuresTotal.Load())
	writeCounter(&buf, "llm_chain_exhausted_total", "Scoring calls where every candidate failed", chainExhaustedTotal.Load())
	writeHistogram(&buf, "resume_scoring_duration_ms", "Scoring duration in milliseconds", scoringDuration.Snapshot())

	gaugesMu.RLock()
	snapshot := append([]gaugeFunc(nil), gauges...)
	gaugesMu.RUnlock()
	for _, g := range snapshot {
		fmt.Fprintf(&buf, "# HELP %s %s\n", g.name, g.help)
		fmt.Fprintf(&buf, "# TYPE %s gauge\n", g.name)
		fmt.Fprintf(&buf, "%s %s\n", g.name, formatFloat(g.fn()))
	}
	return buf.String()
}

type counterVec struct {
	label  string
	mu     sync.Mutex
	values map[string]uint64
}

func newCounterVec(label string) *counterVec {
	return &counterVec{label: label, values: make(map[string]uint64)}
}

func (v *counterVec) Inc(value string) {
	v.mu.Lock()
	v.values[value]++
	v.mu.Unlock()
}

func (v *counterVec) snapshot() ([]string, map[string]uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]uint64, len(v.values))
	keys := make([]string, 0, len(v.values))
	for k, n := range v.values {
		out[k] = n
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, out
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
			return
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

func writeCounterVec(buf *bytes.Buffer, name, help string, vec *counterVec) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys, values := vec.snapshot()
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, vec.label, k, values[k])
	}
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
