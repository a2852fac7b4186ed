package cache

import "time"

// CacheConfig holds cache TTL configuration
type CacheConfig struct {
	ReportTTL         time.Duration
	RenderTTL         time.Duration
	FeedbackTTL       time.Duration
	MetadataTTL       time.Duration
	ComplianceTTL     time.Duration
	SessionTTL        time.Duration
	ExportTTL         time.Duration
}

// DefaultCacheConfig returns sensible defaults
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ReportTTL:     24 * time.Hour,   // Stored analyses live a full day
		RenderTTL:     10 * time.Minute, // Rendered HTML is cheap to rebuild
		FeedbackTTL:   24 * time.Hour,   // Session-scoped verdicts
		MetadataTTL:   24 * time.Hour,
		ComplianceTTL: 24 * time.Hour,
		SessionTTL:    24 * time.Hour,
		ExportTTL:     1 * time.Hour, // Exports regenerate from the stored report
	}
}
