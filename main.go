package main

import (
	"log/slog"
	"net/http"
	"os"
)

// Request body size limits
const (
	maxAnalysisBodySize = 4 * 1024 * 1024 // analysis payloads can carry a full document tree
	maxFormBodySize     = 32 * 1024       // feedback and metadata forms
)

// limitBody wraps an HTTP handler to limit request body size
func limitBody(next http.HandlerFunc, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next(w, r)
	}
}

// securityHeaders wraps an HTTP handler to add security headers
func securityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Content Security Policy - defense in depth against XSS.
		// img-src allows data: for the inline share QR.
		csp := "default-src 'self'; " +
			"img-src 'self' data:; " +
			"style-src 'self' 'unsafe-inline'; " +
			"script-src 'self'"
		w.Header().Set("Content-Security-Policy", csp)

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")

		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Referrer policy - don't leak full URLs to external sites
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next(w, r)
	}
}

func main() {
	InitLogger()

	backend, backendType, err := newCacheBackend()
	if err != nil {
		slog.Error("cache backend init failed", "error", err)
		os.Exit(1)
	}
	defer backend.Close()
	cacheBackendType = backendType
	cacheConfig = DefaultCacheConfig()
	reportStore = NewReportStore(backend, cacheConfig)

	forwarder := NewFeedbackForwarder(os.Getenv("FEEDBACK_STREAM_URL"))
	if forwarder != nil {
		defer forwarder.Close()
	}
	feedbackPublisher = NewFeedbackPublisher(os.Getenv("ANALYSIS_BACKEND_URL"), forwarder)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()

	// Serve static files
	fs := http.FileServer(http.Dir("./static"))
	mux.Handle("/static/", http.StripPrefix("/static/", fs))

	// Submission and JSON API
	mux.HandleFunc("/analyses", limitBody(submitAnalysisHandler, maxAnalysisBodySize))
	mux.HandleFunc("/api/feedback", limitBody(apiFeedbackHandler, maxFormBodySize))

	// HTML pages wrapped with security headers
	mux.HandleFunc("/html/report/", securityHeaders(limitBody(reportRouter, maxFormBodySize)))
	mux.HandleFunc("/html/feedback", securityHeaders(limitBody(feedbackFormHandler, maxFormBodySize)))
	mux.HandleFunc("/html/help", securityHeaders(helpHandler))

	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/metrics", metricsHandler)

	// Root path redirects to the guide, everything else 404
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/html/help", http.StatusFound)
		} else {
			http.NotFound(w, r)
		}
	})

	handler := RequestLoggingMiddleware(mux)

	slog.Info("starting server", "port", port, "cache_backend", backendType)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
