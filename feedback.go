package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"prose-server/internal/cache"
	"prose-server/internal/types"
	"prose-server/internal/util"
)

// Session-store keys. The feedback map and the error look-aside registry are
// each serialised whole under a single per-session key.
const (
	feedbackStoreKey  = "error_feedback"
	errorRegistryKey  = "error_registry"
	fingerprintLength = 10
)

var flaggedWordRegex = regexp.MustCompile(`'([^']+)'`)

// FingerprintError derives the stable, position-independent identity of an
// error. The fingerprint survives re-analysis as long as the triple
// (kind, message, text_segment) is stable; line numbers and sentence indexes
// deliberately do not participate. Any change to this rule must be versioned.
func FingerprintError(e *types.AnalysisError) string {
	kind := e.Kind
	if kind == "" {
		kind = "unknown"
	}
	message := e.Message
	if message == "" {
		message = "nomessage"
	}

	textID := "notext"
	switch {
	case e.TextSegment != "":
		textID = util.TruncateString(util.CollapseWhitespace(e.TextSegment), 100)
	case e.Sentence != "":
		textID = util.TruncateString(util.CollapseWhitespace(e.Sentence), 100)
	case len(e.AllSuggestions()) > 0:
		textID = util.TruncateString(util.CollapseWhitespace(e.AllSuggestions()[0]), 50)
	}

	parts := []string{kind, message, textID}
	differentiated := e.Message != "" || textID != "notext"

	for _, extra := range []string{e.Subtype, e.AmbiguityType, e.RuleSubtype} {
		if extra != "" {
			parts = append(parts, extra)
			differentiated = true
		}
	}

	if strings.Contains(kind, "word_usage") {
		if m := flaggedWordRegex.FindStringSubmatch(e.Message); m != nil {
			parts = append(parts, "flagged_word:"+m[1])
			differentiated = true
		}
	}

	if e.ErrorPosition != nil {
		bucket := int(math.Floor(*e.ErrorPosition/10)) * 10
		parts = append(parts, fmt.Sprintf("pos:%d", bucket))
		differentiated = true
	}

	if !differentiated {
		parts = append(parts, util.TruncateString(stableStringProjection(e), 100))
	}

	return hashFingerprint(strings.Join(parts, "|"))
}

// stableStringProjection serialises the non-empty string properties of an
// error in key order, for fingerprinting errors that carry nothing but a kind.
func stableStringProjection(e *types.AnalysisError) string {
	props := map[string]string{
		"kind":               e.Kind,
		"message":            e.Message,
		"text_segment":       e.TextSegment,
		"sentence":           e.Sentence,
		"text_span":          e.TextSpan,
		"consolidation_type": e.ConsolidationType,
		"subtype":            e.Subtype,
	}
	keys := make([]string, 0, len(props))
	for k, v := range props {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	ordered := make(map[string]string, len(keys))
	for _, k := range keys {
		ordered[k] = props[k]
	}
	data, err := json.Marshal(ordered)
	if err != nil {
		return e.Kind
	}
	return string(data)
}

// hashFingerprint hashes a fingerprint source string with DJB2 under 32-bit
// signed wraparound, takes the absolute value and renders it base-36
// left-padded to 10 characters.
func hashFingerprint(s string) string {
	var h int32 = 5381
	for i := 0; i < len(s); i++ {
		h = h*33 + int32(s[i])
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	encoded := strconv.FormatInt(v, 36)
	if len(encoded) < fingerprintLength {
		encoded = strings.Repeat("0", fingerprintLength-len(encoded)) + encoded
	}
	return encoded
}

// FeedbackTracker owns a session's feedback store: at most one verdict per
// fingerprint, last write wins. It also keeps the look-aside registry that
// maps a fingerprint back to the error blob, so form posts carry only the
// errorId and no user data is re-parsed at click time.
//
// All operations are synchronous; persistence failures are logged and
// swallowed so the UI keeps working for the current request.
type FeedbackTracker struct {
	store     cache.CacheBackend
	ttl       time.Duration
	sessionID string

	mu       sync.Mutex
	records  map[string]*types.FeedbackRecord
	registry map[string]string
	dirtyReg bool
}

// NewFeedbackTracker loads the session's stored feedback map and registry.
// Load failures start the session empty.
func NewFeedbackTracker(ctx context.Context, store cache.CacheBackend, ttl time.Duration, sessionID string) *FeedbackTracker {
	t := &FeedbackTracker{
		store:     store,
		ttl:       ttl,
		sessionID: sessionID,
		records:   make(map[string]*types.FeedbackRecord),
		registry:  make(map[string]string),
	}
	t.load(ctx)
	return t
}

func (t *FeedbackTracker) recordsKey() string {
	return feedbackStoreKey + ":" + t.sessionID
}

func (t *FeedbackTracker) registryKey() string {
	return errorRegistryKey + ":" + t.sessionID
}

func (t *FeedbackTracker) load(ctx context.Context) {
	values, err := t.store.GetMultiple(ctx, []string{t.recordsKey(), t.registryKey()})
	if err != nil {
		slog.Warn("feedback session read failed", "session", t.sessionID, "error", err)
		return
	}
	if data, ok := values[t.recordsKey()]; ok {
		if err := json.Unmarshal(data, &t.records); err != nil {
			slog.Warn("feedback store corrupt, starting empty", "session", t.sessionID, "error", err)
			t.records = make(map[string]*types.FeedbackRecord)
		}
	}
	if data, ok := values[t.registryKey()]; ok {
		if err := json.Unmarshal(data, &t.registry); err != nil {
			t.registry = make(map[string]string)
		}
	}
}

// RegisterError adds an error to the look-aside registry and returns its
// errorId. Called by the renderer for every error that gets a feedback widget;
// the registry is flushed once per render via SaveRegistry.
func (t *FeedbackTracker) RegisterError(e *types.AnalysisError) string {
	id := FingerprintError(e)
	t.mu.Lock()
	if _, ok := t.registry[id]; !ok {
		t.registry[id] = EncodeErrorBlob(e)
		t.dirtyReg = true
	}
	t.mu.Unlock()
	return id
}

// LookupError resolves an errorId back to its error record. Unknown ids
// return nil; corrupt blobs return the decoding_error stub.
func (t *FeedbackTracker) LookupError(id string) *types.AnalysisError {
	t.mu.Lock()
	blob, ok := t.registry[id]
	t.mu.Unlock()
	if !ok {
		return nil
	}
	return DecodeErrorBlob(blob)
}

// SaveRegistry persists the look-aside registry if it changed this request.
func (t *FeedbackTracker) SaveRegistry(ctx context.Context) {
	t.mu.Lock()
	if !t.dirtyReg {
		t.mu.Unlock()
		return
	}
	data, err := json.Marshal(t.registry)
	t.dirtyReg = false
	t.mu.Unlock()
	if err != nil {
		slog.Error("error registry marshal failed", "error", err)
		return
	}
	if err := t.store.Set(ctx, t.registryKey(), data, t.ttl); err != nil {
		slog.Warn("error registry write failed", "session", t.sessionID, "error", err)
	}
}

// Record stores a verdict for an error, overwriting any prior entry, and
// persists the whole feedback map. Returns the errorId and the stored record.
func (t *FeedbackTracker) Record(ctx context.Context, e *types.AnalysisError, verdict string, reason *types.FeedbackReason) (string, *types.FeedbackRecord) {
	id := FingerprintError(e)
	kind := e.Kind
	if kind == "" {
		kind = "style"
	}
	record := &types.FeedbackRecord{
		Verdict:            verdict,
		Reason:             reason,
		Timestamp:          time.Now().UnixMilli(),
		KindAtRecord:       kind,
		ConfidenceAtRecord: ExtractConfidence(e),
		OriginalError: &types.ErrorSnapshot{
			Kind:        e.Kind,
			Message:     e.Message,
			TextSegment: e.TextSegment,
		},
	}
	t.mu.Lock()
	t.records[id] = record
	t.mu.Unlock()
	t.save(ctx)
	IncrementFeedbackRecorded()
	return id, record
}

// Get returns the stored record for an error, or nil.
func (t *FeedbackTracker) Get(e *types.AnalysisError) *types.FeedbackRecord {
	return t.GetByID(FingerprintError(e))
}

// GetByID returns the stored record for an errorId, or nil.
func (t *FeedbackTracker) GetByID(id string) *types.FeedbackRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.records[id]
}

// Clear removes a stored verdict (the "Change" affordance) and persists.
func (t *FeedbackTracker) Clear(ctx context.Context, id string) {
	t.mu.Lock()
	delete(t.records, id)
	t.mu.Unlock()
	t.save(ctx)
}

// Stats summarises the session's verdicts.
func (t *FeedbackTracker) Stats() types.FeedbackStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := types.FeedbackStats{ByKind: make(map[string]int)}
	for _, record := range t.records {
		stats.Total++
		switch record.Verdict {
		case types.VerdictHelpful:
			stats.Helpful++
		case types.VerdictNotHelpful:
			stats.NotHelpful++
		}
		stats.ByKind[record.KindAtRecord]++
	}
	return stats
}

// save persists the feedback map together with the registry it points into,
// under one TTL, so a stored verdict never outlives its registry entry.
func (t *FeedbackTracker) save(ctx context.Context) {
	t.mu.Lock()
	records, err := json.Marshal(t.records)
	var registry []byte
	if err == nil {
		registry, err = json.Marshal(t.registry)
		t.dirtyReg = false
	}
	t.mu.Unlock()
	if err != nil {
		slog.Error("feedback session marshal failed", "error", err)
		return
	}
	items := map[string][]byte{
		t.recordsKey():  records,
		t.registryKey(): registry,
	}
	if err := t.store.SetMultiple(ctx, items, t.ttl); err != nil {
		slog.Warn("feedback store write failed", "session", t.sessionID, "error", err)
	}
}

// =============================================================================
// Backend mirroring
// =============================================================================

// FeedbackPublisher mirrors confirmed verdicts to the analysis backend and,
// when configured, to the reliability tuner's event stream. Both paths are
// fire-and-forget: failures are logged, never surfaced.
type FeedbackPublisher struct {
	backendURL string
	client     *http.Client
	forwarder  *FeedbackForwarder
}

// NewFeedbackPublisher builds a publisher. backendURL may be empty, in which
// case only the stream forwarder (if any) receives events.
func NewFeedbackPublisher(backendURL string, forwarder *FeedbackForwarder) *FeedbackPublisher {
	return &FeedbackPublisher{
		backendURL: backendURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		forwarder:  forwarder,
	}
}

// BuildSubmission maps a stored record onto the backend wire shape:
// helpful -> correct, not_helpful -> incorrect; the reason object is
// JSON-stringified when present.
func BuildSubmission(sessionID, errorID string, e *types.AnalysisError, record *types.FeedbackRecord) types.FeedbackSubmission {
	feedbackType := "correct"
	if record.Verdict == types.VerdictNotHelpful {
		feedbackType = "incorrect"
	}
	var userReason *string
	if record.Reason != nil {
		if data, err := json.Marshal(record.Reason); err == nil {
			s := string(data)
			userReason = &s
		}
	}
	kind := "style"
	message := "Style issue detected"
	if e != nil {
		if e.Kind != "" {
			kind = e.Kind
		}
		if e.Message != "" {
			message = e.Message
		}
	}
	return types.FeedbackSubmission{
		SessionID:       sessionID,
		ErrorID:         errorID,
		ErrorType:       kind,
		ErrorMessage:    message,
		FeedbackType:    feedbackType,
		ConfidenceScore: record.ConfidenceAtRecord,
		UserReason:      userReason,
	}
}

// Publish mirrors one submission asynchronously. The response body is not
// consumed beyond logging; network errors do not affect UI state.
func (p *FeedbackPublisher) Publish(sub types.FeedbackSubmission) {
	if p.forwarder != nil {
		p.forwarder.Send(sub)
	}
	if p.backendURL == "" {
		return
	}
	go func() {
		body, err := json.Marshal(sub)
		if err != nil {
			slog.Error("feedback submission marshal failed", "error_id", sub.ErrorID, "error", err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.backendURL+"/api/feedback", bytes.NewReader(body))
		if err != nil {
			slog.Error("feedback request build failed", "error", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := p.client.Do(req)
		if err != nil {
			IncrementFeedbackPushFailed()
			slog.Warn("feedback push failed", "error_id", sub.ErrorID, "error", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			IncrementFeedbackPushFailed()
			slog.Warn("feedback push rejected", "error_id", sub.ErrorID, "status", resp.StatusCode)
			return
		}
		IncrementFeedbackPushOK()
		slog.Debug("feedback pushed", "error_id", sub.ErrorID, "status", resp.StatusCode)
	}()
}
