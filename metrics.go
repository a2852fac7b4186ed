package main

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// HTTP metrics
var (
	httpRequestsTotal atomic.Int64
	httpErrorsTotal   atomic.Int64
)

// Rendering metrics
var (
	reportsRenderedTotal atomic.Int64
	blocksRenderedTotal  atomic.Int64
)

// Feedback metrics
var (
	feedbackRecordedTotal  atomic.Int64
	feedbackPushOKTotal    atomic.Int64
	feedbackPushFailTotal  atomic.Int64
	feedbackEventsDropped  atomic.Int64
)

// Cache metrics
var (
	cacheHitsTotal   atomic.Int64
	cacheMissesTotal atomic.Int64
)

var serverStartTime = time.Now()

// cacheBackendType is set once at startup, for the build-info metric.
var cacheBackendType = "memory"

// IncrementReportsRendered counts one fully composed report page.
func IncrementReportsRendered() {
	reportsRenderedTotal.Add(1)
}

// IncrementBlocksRendered counts one rendered block card.
func IncrementBlocksRendered() {
	blocksRenderedTotal.Add(1)
}

// IncrementFeedbackRecorded counts one stored verdict.
func IncrementFeedbackRecorded() {
	feedbackRecordedTotal.Add(1)
}

// IncrementFeedbackPushOK counts one accepted backend mirror POST.
func IncrementFeedbackPushOK() {
	feedbackPushOKTotal.Add(1)
}

// IncrementFeedbackPushFailed counts one failed or rejected backend mirror POST.
func IncrementFeedbackPushFailed() {
	feedbackPushFailTotal.Add(1)
}

// IncrementFeedbackEventsDropped counts a stream event dropped on a full buffer.
func IncrementFeedbackEventsDropped() {
	feedbackEventsDropped.Add(1)
}

// IncrementCacheHit increments the cache hit counter
func IncrementCacheHit() {
	cacheHitsTotal.Add(1)
}

// IncrementCacheMiss increments the cache miss counter
func IncrementCacheMiss() {
	cacheMissesTotal.Add(1)
}

// metricsHandler serves Prometheus-compatible metrics
func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	// Build info metric
	fmt.Fprintf(w, "# HELP prose_build_info Build and configuration information\n")
	fmt.Fprintf(w, "# TYPE prose_build_info gauge\n")
	fmt.Fprintf(w, "prose_build_info{cache_backend=%q,go_version=%q} 1\n\n", cacheBackendType, runtime.Version())

	// Process metrics
	fmt.Fprintf(w, "# HELP process_start_time_seconds Unix timestamp of process start\n")
	fmt.Fprintf(w, "# TYPE process_start_time_seconds gauge\n")
	fmt.Fprintf(w, "process_start_time_seconds %d\n\n", serverStartTime.Unix())

	fmt.Fprintf(w, "# HELP process_uptime_seconds Time since process started\n")
	fmt.Fprintf(w, "# TYPE process_uptime_seconds gauge\n")
	fmt.Fprintf(w, "process_uptime_seconds %.0f\n\n", time.Since(serverStartTime).Seconds())

	// Go runtime metrics
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	fmt.Fprintf(w, "# HELP go_goroutines Number of active goroutines\n")
	fmt.Fprintf(w, "# TYPE go_goroutines gauge\n")
	fmt.Fprintf(w, "go_goroutines %d\n\n", runtime.NumGoroutine())

	fmt.Fprintf(w, "# HELP go_memstats_alloc_bytes Currently allocated memory in bytes\n")
	fmt.Fprintf(w, "# TYPE go_memstats_alloc_bytes gauge\n")
	fmt.Fprintf(w, "go_memstats_alloc_bytes %d\n\n", memStats.Alloc)

	fmt.Fprintf(w, "# HELP go_memstats_sys_bytes Total memory obtained from the OS\n")
	fmt.Fprintf(w, "# TYPE go_memstats_sys_bytes gauge\n")
	fmt.Fprintf(w, "go_memstats_sys_bytes %d\n\n", memStats.Sys)

	fmt.Fprintf(w, "# HELP go_gc_cycles_total Number of completed GC cycles\n")
	fmt.Fprintf(w, "# TYPE go_gc_cycles_total counter\n")
	fmt.Fprintf(w, "go_gc_cycles_total %d\n\n", memStats.NumGC)

	// HTTP metrics
	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", httpRequestsTotal.Load())

	fmt.Fprintf(w, "# HELP http_errors_total Total number of HTTP 5xx errors\n")
	fmt.Fprintf(w, "# TYPE http_errors_total counter\n")
	fmt.Fprintf(w, "http_errors_total %d\n\n", httpErrorsTotal.Load())

	// Rendering metrics
	fmt.Fprintf(w, "# HELP prose_reports_rendered_total Report pages composed\n")
	fmt.Fprintf(w, "# TYPE prose_reports_rendered_total counter\n")
	fmt.Fprintf(w, "prose_reports_rendered_total %d\n\n", reportsRenderedTotal.Load())

	fmt.Fprintf(w, "# HELP prose_blocks_rendered_total Block cards rendered\n")
	fmt.Fprintf(w, "# TYPE prose_blocks_rendered_total counter\n")
	fmt.Fprintf(w, "prose_blocks_rendered_total %d\n\n", blocksRenderedTotal.Load())

	// Feedback metrics
	fmt.Fprintf(w, "# HELP prose_feedback_recorded_total Feedback verdicts stored\n")
	fmt.Fprintf(w, "# TYPE prose_feedback_recorded_total counter\n")
	fmt.Fprintf(w, "prose_feedback_recorded_total %d\n\n", feedbackRecordedTotal.Load())

	fmt.Fprintf(w, "# HELP prose_feedback_push_ok_total Backend feedback pushes accepted\n")
	fmt.Fprintf(w, "# TYPE prose_feedback_push_ok_total counter\n")
	fmt.Fprintf(w, "prose_feedback_push_ok_total %d\n\n", feedbackPushOKTotal.Load())

	fmt.Fprintf(w, "# HELP prose_feedback_push_failed_total Backend feedback pushes failed or rejected\n")
	fmt.Fprintf(w, "# TYPE prose_feedback_push_failed_total counter\n")
	fmt.Fprintf(w, "prose_feedback_push_failed_total %d\n\n", feedbackPushFailTotal.Load())

	fmt.Fprintf(w, "# HELP prose_feedback_events_dropped_total Stream events dropped due to full buffer\n")
	fmt.Fprintf(w, "# TYPE prose_feedback_events_dropped_total counter\n")
	fmt.Fprintf(w, "prose_feedback_events_dropped_total %d\n\n", feedbackEventsDropped.Load())

	// Cache metrics
	cacheHits := cacheHitsTotal.Load()
	cacheMisses := cacheMissesTotal.Load()

	fmt.Fprintf(w, "# HELP cache_hits_total Total cache hits\n")
	fmt.Fprintf(w, "# TYPE cache_hits_total counter\n")
	fmt.Fprintf(w, "cache_hits_total %d\n\n", cacheHits)

	fmt.Fprintf(w, "# HELP cache_misses_total Total cache misses\n")
	fmt.Fprintf(w, "# TYPE cache_misses_total counter\n")
	fmt.Fprintf(w, "cache_misses_total %d\n\n", cacheMisses)

	// Cache hit ratio (useful for alerting)
	var hitRatio float64
	if total := cacheHits + cacheMisses; total > 0 {
		hitRatio = float64(cacheHits) / float64(total)
	}
	fmt.Fprintf(w, "# HELP cache_hit_ratio Cache hit ratio (0-1)\n")
	fmt.Fprintf(w, "# TYPE cache_hit_ratio gauge\n")
	fmt.Fprintf(w, "cache_hit_ratio %.4f\n", hitRatio)
}
