package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"prose-server/internal/cache"
	"prose-server/internal/types"
)

// ReportStore persists submitted reports under content-derived IDs and caches
// rendered report pages. Concurrent renders of the same page are deduplicated
// with singleflight: one goroutine composes, the rest share the result.
type ReportStore struct {
	backend cache.CacheBackend
	config  CacheConfig

	renderGroup singleflight.Group
}

// NewReportStore wraps a cache backend with report semantics.
func NewReportStore(backend cache.CacheBackend, config CacheConfig) *ReportStore {
	return &ReportStore{backend: backend, config: config}
}

// NewReportID derives the report ID from the canonical payload bytes. The
// same submission always maps to the same ID, so duplicate POSTs are free.
func NewReportID(payload []byte) string {
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:12])
}

func reportKey(id string) string {
	return "report:" + id
}

// renderKey derives the render-cache key for one report variant. The session
// enters the key because feedback widget states are session-specific. The
// export body carries no per-session state, so all sessions share one cached
// copy and a metadata save from any session invalidates it for everyone.
func renderKey(reportID, sessionID, variant string) string {
	if variant == "export" {
		sessionID = ""
	}
	sum := blake2b.Sum256([]byte(reportID + "|" + sessionID + "|" + variant))
	return "render:" + hex.EncodeToString(sum[:12])
}

// SaveReport stores a report. Write failures surface to the caller; a report
// that was never stored cannot be linked to.
func (s *ReportStore) SaveReport(ctx context.Context, report *types.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return s.backend.Set(ctx, reportKey(report.ID), data, s.config.ReportTTL)
}

// GetReport loads a report by ID. A missing report returns (nil, nil).
func (s *ReportStore) GetReport(ctx context.Context, id string) (*types.Report, error) {
	data, found, err := s.backend.Get(ctx, reportKey(id))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	var report types.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", id, err)
	}
	return &report, nil
}

// InvalidateRender drops the session's cached render variants of a report,
// plus the shared export copy. Called after a feedback or metadata write
// changes what the pages should show.
func (s *ReportStore) InvalidateRender(ctx context.Context, reportID, sessionID string) {
	for _, variant := range []string{"report", "metadata", "compliance", "export"} {
		if err := s.backend.Delete(ctx, renderKey(reportID, sessionID, variant)); err != nil {
			slog.Warn("render cache invalidation failed", "report_id", reportID, "variant", variant, "error", err)
		}
	}
}

// GetOrRender returns the cached page body for (report, session, variant) or
// composes it once via render. Cache errors degrade to a direct render.
func (s *ReportStore) GetOrRender(ctx context.Context, reportID, sessionID, variant string, render func() (string, error)) (string, error) {
	key := renderKey(reportID, sessionID, variant)

	if data, found, err := s.backend.Get(ctx, key); err == nil && found {
		IncrementCacheHit()
		return string(data), nil
	}
	IncrementCacheMiss()

	result, err, shared := s.renderGroup.Do(key, func() (interface{}, error) {
		body, err := render()
		if err != nil {
			return "", err
		}
		cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.backend.Set(cacheCtx, key, []byte(body), s.config.RenderTTL); err != nil {
			slog.Warn("render cache write failed", "report_id", reportID, "variant", variant, "error", err)
		}
		return body, nil
	})
	if shared {
		slog.Debug("singleflight: shared render", "report_id", reportID, "variant", variant)
	}
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
