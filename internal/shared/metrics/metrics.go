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

const namespace = "legalassist_"

var (
	analysesStarted   = newCounter("analyses_started_total", "Analyses that claimed a document")
	analysesCompleted = newCounter("analyses_completed_total", "Analyses that stored recommendations")
	analysesFailed    = newCounter("analyses_failed_total", "Analyses that marked their document failed")

	documentsUploaded     = newLabeledCounter("documents_uploaded_total", "Stored uploads", "file_type")
	recommendationsStored = newLabeledCounter("recommendations_created_total", "Stored recommendations", "severity")
	templateExports       = newLabeledCounter("template_exports_total", "Written template exports", "format")

	analysisDuration = newHistogram("analysis_duration_ms", "Analysis duration in milliseconds",
		[]float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000})
)

func IncAnalysisStarted() { analysesStarted.inc(1) }
func IncAnalysisCompleted() { analysesCompleted.inc(1) }
func IncAnalysisFailed() { analysesFailed.inc(1) }

// IncDocumentUploaded counts one stored upload of the given file type.
func IncDocumentUploaded(fileType string) {
	documentsUploaded.inc(fileType, 1)
}

// AddRecommendations counts n stored recommendations of one severity.
func AddRecommendations(severity string, n int) {
	if n > 0 {
		recommendationsStored.inc(severity, uint64(n))
	}
}

// IncTemplateExport counts one written export file.
func IncTemplateExport(format string) {
	templateExports.inc(format, 1)
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.observe(value)
}

// Handler serves Render. Mount it outside the rate-limited /api group.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render writes every metric in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	for _, c := range []*counter{analysesStarted, analysesCompleted, analysesFailed} {
		c.write(&buf)
	}
	for _, c := range []*labeledCounter{documentsUploaded, recommendationsStored, templateExports} {
		c.write(&buf)
	}
	analysisDuration.write(&buf)
	return buf.String()
}

type counter struct {
	name, help string
	v          atomic.Uint64
}

func newCounter(name, help string) *counter {
	return &counter{name: namespace + name, help: help}
}

func (c *counter) inc(n uint64) { c.v.Add(n) }

func (c *counter) write(buf *bytes.Buffer) {
	writeHeader(buf, c.name, c.help, "counter")
	fmt.Fprintf(buf, "%s %d\n", c.name, c.v.Load())
}

// labeledCounter is a counter keyed by the value of a single label.
type labeledCounter struct {
	name, help, label string

	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter(name, help, label string) *labeledCounter {
	return &labeledCounter{name: namespace + name, help: help, label: label, values: map[string]uint64{}}
}

func (c *labeledCounter) inc(value string, n uint64) {
	if value == "" {
		value = "unknown"
	}
	c.mu.Lock()
	c.values[value] += n
	c.mu.Unlock()
}

func (c *labeledCounter) snapshot() map[string]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]uint64, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

func (c *labeledCounter) write(buf *bytes.Buffer) {
	writeHeader(buf, c.name, c.help, "counter")
	values := c.snapshot()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", c.name, c.label, k, values[k])
	}
}

type histogram struct {
	name, help string
	bounds     []float64

	mu    sync.Mutex
	hits  []uint64 // per bucket, not cumulative
	sum   float64
	count uint64
}

func newHistogram(name, help string, bounds []float64) *histogram {
	return &histogram{name: namespace + name, help: help, bounds: bounds, hits: make([]uint64, len(bounds))}
}

func (h *histogram) observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	if i := sort.SearchFloat64s(h.bounds, value); i < len(h.bounds) {
		h.hits[i]++
	}
}

func (h *histogram) write(buf *bytes.Buffer) {
	h.mu.Lock()
	hits := append([]uint64(nil), h.hits...)
	sum, count := h.sum, h.count
	h.mu.Unlock()

	writeHeader(buf, h.name, h.help, "histogram")
	var cumulative uint64
	for i, bound := range h.bounds {
		cumulative += hits[i]
		fmt.Fprintf(buf, "%s_bucket{le=%q} %d\n", h.name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", h.name, count)
	fmt.Fprintf(buf, "%s_sum %s\n", h.name, formatFloat(sum))
	fmt.Fprintf(buf, "%s_count %d\n", h.name, count)
}

func writeHeader(buf *bytes.Buffer, name, help, kind string) {
	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
