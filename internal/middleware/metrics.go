package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Counters holds the process-wide numbers served on /metrics.
type Counters struct {
	started time.Time

	inFlight atomic.Int64
	byClass  [5]atomic.Uint64 // index = status/100 - 1

	analyses         atomic.Uint64
	analysesFailed   atomic.Uint64
	analysesInFlight atomic.Int64
	historyDeletes   atomic.Uint64
}

// Stats is shared by the HTTP shell.
var Stats = &Counters{started: time.Now()}

// AnalysisStarted counts a submission; call the returned func with its outcome.
func (c *Counters) AnalysisStarted() func(err error) {
	c.analyses.Add(1)
	c.analysesInFlight.Add(1)
	return func(err error) {
		c.analysesInFlight.Add(-1)
		if err != nil {
			c.analysesFailed.Add(1)
		}
	}
}

func (c *Counters) HistoryDeleted() {
	c.historyDeletes.Add(1)
}

func (c *Counters) observe(status int) {
	if i := status/100 - 1; i >= 0 && i < len(c.byClass) {
		c.byClass[i].Add(1)
	}
}

// Snapshot returns the current values keyed by metric name.
func (c *Counters) Snapshot() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	responses := make(map[string]uint64, len(c.byClass))
	var total uint64
	for i := range c.byClass {
		n := c.byClass[i].Load()
		responses[fmt.Sprintf("%dxx", i+1)] = n
		total += n
	}
	return map[string]any{
		"requests_total":     total,
		"requests_in_flight": c.inFlight.Load(),
		"responses":          responses,
		"analyses_total":     c.analyses.Load(),
		"analyses_failed":    c.analysesFailed.Load(),
		"analyses_in_flight": c.analysesInFlight.Load(),
		"history_deletes":    c.historyDeletes.Load(),
		"uptime_seconds":     int64(time.Since(c.started).Seconds()),
		"goroutines":         runtime.NumGoroutine(),
		"heap_alloc_bytes":   mem.HeapAlloc,
	}
}

// MetricsMiddleware counts in-flight requests and responses per status class.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Stats.inFlight.Add(1)
		defer Stats.inFlight.Add(-1)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		Stats.observe(rw.statusCode)
	})
}

func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Stats.Snapshot())
}
