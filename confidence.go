package main

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"

	"prose-server/internal/types"
)

// Confidence levels.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// ExtractConfidence pulls a confidence in [0,1] out of an error, falling
// through confidence_score, confidence, validation_result.confidence_score
// and finally the 0.5 default. The result is clamped to [0,1].
func ExtractConfidence(e *types.AnalysisError) float64 {
	score := 0.5
	switch {
	case e.ConfidenceScore != nil:
		score = *e.ConfidenceScore
	case e.Confidence != nil:
		score = *e.Confidence
	case e.ValidationResult != nil && e.ValidationResult.ConfidenceScore != nil:
		score = *e.ValidationResult.ConfidenceScore
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// ClassifyConfidence buckets a confidence score: >= 0.7 HIGH, >= 0.5 MEDIUM,
// below that LOW.
func ClassifyConfidence(score float64) string {
	switch {
	case score >= 0.7:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// confidenceIcon maps a confidence level to its badge icon token.
func confidenceIcon(level string) string {
	switch level {
	case ConfidenceHigh:
		return "icon-confidence-high"
	case ConfidenceMedium:
		return "icon-confidence-medium"
	default:
		return "icon-confidence-low"
	}
}

// EncodeErrorBlob serialises an error as base64 JSON for the look-aside
// registry. The base64 pass keeps the blob safe regardless of the Unicode
// content of messages and segments. On marshal failure a minimal stub is
// encoded instead; this function never fails.
func EncodeErrorBlob(e *types.AnalysisError) string {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Warn("error blob encode failed", "kind", e.Kind, "error", err)
		data, _ = json.Marshal(&types.AnalysisError{Kind: "encoding_error"})
	}
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeErrorBlob reverses EncodeErrorBlob. Any decode failure produces the
// stub record {kind: "decoding_error"}; it never returns nil and never panics.
func DecodeErrorBlob(blob string) *types.AnalysisError {
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		slog.Warn("error blob base64 decode failed", "error", err)
		return &types.AnalysisError{Kind: "decoding_error"}
	}
	var e types.AnalysisError
	if err := json.Unmarshal(data, &e); err != nil {
		slog.Warn("error blob unmarshal failed", "error", err)
		return &types.AnalysisError{Kind: "decoding_error"}
	}
	return &e
}
