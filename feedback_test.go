package main

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"prose-server/internal/cache"
	"prose-server/internal/types"
)

func intPtr(v int) *int { return &v }

func newTestTracker(t *testing.T) (*FeedbackTracker, cache.CacheBackend) {
	t.Helper()
	backend := cache.NewMemoryCache(100, time.Minute)
	t.Cleanup(func() { backend.Close() })
	return NewFeedbackTracker(context.Background(), backend, time.Hour, "test-session"), backend
}

func TestFingerprintIgnoresPosition(t *testing.T) {
	base := types.AnalysisError{
		Kind:        "grammar",
		Message:     "Subject and verb disagree",
		TextSegment: "the dogs barks",
	}
	moved := base
	moved.LineNumber = intPtr(42)
	moved.SentenceIndex = intPtr(7)

	if FingerprintError(&base) != FingerprintError(&moved) {
		t.Error("fingerprint changed when only line number and sentence index changed")
	}
}

func TestFingerprintDistinguishesIdentity(t *testing.T) {
	base := types.AnalysisError{
		Kind:        "grammar",
		Message:     "Subject and verb disagree",
		TextSegment: "the dogs barks",
	}
	testCases := []struct {
		name   string
		mutate func(e *types.AnalysisError)
	}{
		{"kind", func(e *types.AnalysisError) { e.Kind = "style" }},
		{"message", func(e *types.AnalysisError) { e.Message = "Different message" }},
		{"text_segment", func(e *types.AnalysisError) { e.TextSegment = "the cats meows" }},
		{"subtype", func(e *types.AnalysisError) { e.Subtype = "agreement" }},
	}

	baseID := FingerprintError(&base)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mutated := base
			tc.mutate(&mutated)
			if FingerprintError(&mutated) == baseID {
				t.Errorf("fingerprint did not change when %s changed", tc.name)
			}
		})
	}
}

func TestFingerprintShape(t *testing.T) {
	errs := []types.AnalysisError{
		{Kind: "grammar", Message: "msg", TextSegment: "seg"},
		{},
		{Kind: "word_usage", Message: "Avoid 'utilize' here"},
	}
	for i := range errs {
		id := FingerprintError(&errs[i])
		if len(id) != 10 {
			t.Errorf("fingerprint %q has length %d, want 10", id, len(id))
		}
		for _, c := range id {
			if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'z') {
				t.Errorf("fingerprint %q contains non base-36 character %q", id, c)
			}
		}
	}
}

func TestFingerprintWhitespaceNormalised(t *testing.T) {
	a := types.AnalysisError{Kind: "style", Message: "m", TextSegment: "some   flagged\n text"}
	b := types.AnalysisError{Kind: "style", Message: "m", TextSegment: "some flagged text"}
	if FingerprintError(&a) != FingerprintError(&b) {
		t.Error("whitespace runs in the text segment changed the fingerprint")
	}
}

// randomAnalysisError builds an error from a small word pool. The generator
// is seeded by the caller, so a run always sees the same sample.
func randomAnalysisError(r *rand.Rand) types.AnalysisError {
	kinds := []string{"grammar", "style", "passive_voice", "clarity", "word_usage"}
	words := []string{"draft", "clause", "verb", "tone", "phrase", "actor", "comma", "tense"}
	pick := func(n int) string {
		parts := make([]string, n)
		for i := range parts {
			parts[i] = words[r.Intn(len(words))]
		}
		return strings.Join(parts, " ")
	}

	e := types.AnalysisError{
		Kind:        kinds[r.Intn(len(kinds))],
		Message:     "Avoid " + pick(2),
		TextSegment: pick(4),
	}
	if r.Intn(2) == 0 {
		pos := float64(r.Intn(100))
		e.ErrorPosition = &pos
	}
	return e
}

// Fingerprints must be stable under positional churn and must separate
// errors whose identity slots differ, across a large random sample.
func TestFingerprintRandomSample(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 10000; i++ {
		base := randomAnalysisError(r)
		id := FingerprintError(&base)

		moved := base
		moved.LineNumber = intPtr(r.Intn(500))
		moved.SentenceIndex = intPtr(r.Intn(200))
		if got := FingerprintError(&moved); got != id {
			t.Fatalf("sample %d: line/sentence churn changed the id %s -> %s (%+v)", i, id, got, base)
		}

		mutated := base
		mutated.Kind = base.Kind + "_variant"
		if FingerprintError(&mutated) == id {
			t.Fatalf("sample %d: kind change kept the id %s (%+v)", i, id, base)
		}

		mutated = base
		mutated.Message = base.Message + " rephrased"
		if FingerprintError(&mutated) == id {
			t.Fatalf("sample %d: message change kept the id %s (%+v)", i, id, base)
		}

		mutated = base
		mutated.TextSegment = base.TextSegment + " tail"
		if FingerprintError(&mutated) == id {
			t.Fatalf("sample %d: text segment change kept the id %s (%+v)", i, id, base)
		}
	}
}

func TestTrackerRecordAndReload(t *testing.T) {
	ctx := context.Background()
	tracker, backend := newTestTracker(t)

	err := &types.AnalysisError{Kind: "grammar", Message: "msg", TextSegment: "seg", ConfidenceScore: floatPtr(0.8)}
	id, record := tracker.Record(ctx, err, types.VerdictHelpful, nil)
	if record.Verdict != types.VerdictHelpful {
		t.Fatalf("Verdict = %q", record.Verdict)
	}
	if record.ConfidenceAtRecord != 0.8 {
		t.Errorf("ConfidenceAtRecord = %v, want 0.8", record.ConfidenceAtRecord)
	}

	// A fresh tracker over the same backend simulates a page reload.
	reloaded := NewFeedbackTracker(ctx, backend, time.Hour, "test-session")
	got := reloaded.GetByID(id)
	if got == nil {
		t.Fatal("record not visible after reload")
	}
	if got.Verdict != types.VerdictHelpful || got.KindAtRecord != "grammar" {
		t.Errorf("reloaded record = %+v", got)
	}
	if got.OriginalError == nil || got.OriginalError.TextSegment != "seg" {
		t.Errorf("original error snapshot = %+v", got.OriginalError)
	}
}

func TestTrackerLastWriteWins(t *testing.T) {
	ctx := context.Background()
	tracker, _ := newTestTracker(t)

	err := &types.AnalysisError{Kind: "style", Message: "msg"}
	tracker.Record(ctx, err, types.VerdictHelpful, nil)
	reason := &types.FeedbackReason{Category: "incorrect", Comment: "false positive"}
	id, _ := tracker.Record(ctx, err, types.VerdictNotHelpful, reason)

	got := tracker.GetByID(id)
	if got.Verdict != types.VerdictNotHelpful {
		t.Errorf("Verdict = %q, want not_helpful", got.Verdict)
	}
	if got.Reason == nil || got.Reason.Category != "incorrect" {
		t.Errorf("Reason = %+v", got.Reason)
	}

	stats := tracker.Stats()
	if stats.Total != 1 || stats.NotHelpful != 1 || stats.Helpful != 0 {
		t.Errorf("Stats = %+v, want exactly one not_helpful", stats)
	}
}

func TestTrackerClear(t *testing.T) {
	ctx := context.Background()
	tracker, backend := newTestTracker(t)

	err := &types.AnalysisError{Kind: "style", Message: "msg"}
	id, _ := tracker.Record(ctx, err, types.VerdictHelpful, nil)
	tracker.Clear(ctx, id)

	if tracker.GetByID(id) != nil {
		t.Error("record survived Clear")
	}
	reloaded := NewFeedbackTracker(ctx, backend, time.Hour, "test-session")
	if reloaded.GetByID(id) != nil {
		t.Error("cleared record came back after reload")
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	ctx := context.Background()
	tracker, backend := newTestTracker(t)

	err := &types.AnalysisError{Kind: "spelling", Message: "Possible typo", TextSegment: "teh"}
	id := tracker.RegisterError(err)
	tracker.SaveRegistry(ctx)

	reloaded := NewFeedbackTracker(ctx, backend, time.Hour, "test-session")
	got := reloaded.LookupError(id)
	if got == nil {
		t.Fatal("registered error not found after reload")
	}
	if got.Kind != "spelling" || got.TextSegment != "teh" {
		t.Errorf("LookupError = %+v", got)
	}
	if reloaded.LookupError("zzzzzzzzzz") != nil {
		t.Error("unknown id resolved to a record")
	}
}

func TestRegistryIsolatedPerSession(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemoryCache(100, time.Minute)
	defer backend.Close()

	a := NewFeedbackTracker(ctx, backend, time.Hour, "session-a")
	err := &types.AnalysisError{Kind: "style", Message: "msg"}
	id := a.RegisterError(err)
	a.SaveRegistry(ctx)

	b := NewFeedbackTracker(ctx, backend, time.Hour, "session-b")
	if b.LookupError(id) != nil {
		t.Error("session-b resolved an error registered by session-a")
	}
}

// Record persists the registry alongside the verdict map; a reload resolves
// the errorId even when SaveRegistry was never called.
func TestRecordPersistsRegistry(t *testing.T) {
	ctx := context.Background()
	tracker, backend := newTestTracker(t)

	e := &types.AnalysisError{Kind: "grammar", Message: "msg", TextSegment: "seg"}
	tracker.RegisterError(e)
	id, _ := tracker.Record(ctx, e, types.VerdictHelpful, nil)

	reloaded := NewFeedbackTracker(ctx, backend, time.Hour, "test-session")
	if reloaded.LookupError(id) == nil {
		t.Error("registry entry lost on reload")
	}
	if reloaded.GetByID(id) == nil {
		t.Error("record lost on reload")
	}
}

func TestBuildSubmission(t *testing.T) {
	err := &types.AnalysisError{Kind: "passive_voice", Message: "Passive construction"}
	reason := &types.FeedbackReason{Category: "context"}

	testCases := []struct {
		name       string
		record     *types.FeedbackRecord
		wantType   string
		wantReason bool
	}{
		{"helpful_maps_to_correct", &types.FeedbackRecord{Verdict: types.VerdictHelpful, ConfidenceAtRecord: 0.8}, "correct", false},
		{"not_helpful_maps_to_incorrect", &types.FeedbackRecord{Verdict: types.VerdictNotHelpful, Reason: reason, ConfidenceAtRecord: 0.4}, "incorrect", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sub := BuildSubmission("sess", "abc123", err, tc.record)
			if sub.FeedbackType != tc.wantType {
				t.Errorf("FeedbackType = %q, want %q", sub.FeedbackType, tc.wantType)
			}
			if sub.ErrorType != "passive_voice" || sub.ErrorMessage != "Passive construction" {
				t.Errorf("error identity = %q / %q", sub.ErrorType, sub.ErrorMessage)
			}
			if (sub.UserReason != nil) != tc.wantReason {
				t.Errorf("UserReason presence = %v, want %v", sub.UserReason != nil, tc.wantReason)
			}
			if tc.wantReason {
				var parsed types.FeedbackReason
				if jsonErr := json.Unmarshal([]byte(*sub.UserReason), &parsed); jsonErr != nil || parsed.Category != "context" {
					t.Errorf("UserReason = %q", *sub.UserReason)
				}
			}
		})
	}
}

func TestBuildSubmissionDefaults(t *testing.T) {
	record := &types.FeedbackRecord{Verdict: types.VerdictHelpful}
	sub := BuildSubmission("sess", "id", &types.AnalysisError{}, record)
	if sub.ErrorType != "style" {
		t.Errorf("ErrorType = %q, want style fallback", sub.ErrorType)
	}
	if sub.ErrorMessage != "Style issue detected" {
		t.Errorf("ErrorMessage = %q", sub.ErrorMessage)
	}
}

func TestPublisherPostsOnce(t *testing.T) {
	received := make(chan types.FeedbackSubmission, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/feedback" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var sub types.FeedbackSubmission
		if err := json.Unmarshal(body, &sub); err != nil {
			t.Errorf("bad submission body: %v", err)
		}
		received <- sub
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	publisher := NewFeedbackPublisher(server.URL, nil)
	publisher.Publish(types.FeedbackSubmission{
		SessionID:    "sess",
		ErrorID:      "abc123",
		ErrorType:    "grammar",
		FeedbackType: "correct",
	})

	select {
	case sub := <-received:
		if sub.ErrorID != "abc123" || sub.FeedbackType != "correct" {
			t.Errorf("submission = %+v", sub)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("backend never received the submission")
	}

	select {
	case <-received:
		t.Fatal("submission was posted more than once")
	case <-time.After(200 * time.Millisecond):
	}
}
