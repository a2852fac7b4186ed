package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"prose-server/internal/cache"
	"prose-server/internal/types"
)

func newTestStore(t *testing.T) *ReportStore {
	t.Helper()
	backend := cache.NewMemoryCache(100, time.Minute)
	t.Cleanup(func() { backend.Close() })
	return NewReportStore(backend, cache.DefaultCacheConfig())
}

func TestNewReportID(t *testing.T) {
	a := NewReportID([]byte(`{"analysis":{}}`))
	b := NewReportID([]byte(`{"analysis":{}}`))
	c := NewReportID([]byte(`{"analysis":{"overall_score":1}}`))

	if a != b {
		t.Error("identical payloads produced different IDs")
	}
	if a == c {
		t.Error("different payloads produced the same ID")
	}
	if len(a) != 24 {
		t.Errorf("ID length = %d, want 24 hex chars", len(a))
	}
}

func TestReportRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	report := &types.Report{
		ID:      "r1",
		Content: "some text",
		Analysis: &types.Analysis{
			OverallScore: 77,
			Errors:       []types.AnalysisError{{Kind: "style", Message: "m"}},
		},
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := store.SaveReport(ctx, report); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	got, err := store.GetReport(ctx, "r1")
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got == nil || got.Content != "some text" || got.Analysis.OverallScore != 77 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestGetReportMissing(t *testing.T) {
	store := newTestStore(t)
	got, err := store.GetReport(context.Background(), "nope")
	if err != nil {
		t.Fatalf("missing report returned error: %v", err)
	}
	if got != nil {
		t.Errorf("missing report returned %+v", got)
	}
}

func TestGetOrRenderCaches(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	calls := 0
	render := func() (string, error) {
		calls++
		return "<div>rendered</div>", nil
	}

	first, err := store.GetOrRender(ctx, "r1", "sess", "export", render)
	if err != nil || first != "<div>rendered</div>" {
		t.Fatalf("first render: %q, %v", first, err)
	}
	second, err := store.GetOrRender(ctx, "r1", "sess", "export", render)
	if err != nil || second != first {
		t.Fatalf("second render: %q, %v", second, err)
	}
	if calls != 1 {
		t.Errorf("render ran %d times, want 1", calls)
	}
}

func TestGetOrRenderKeyedBySessionAndVariant(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	calls := 0
	render := func() (string, error) {
		calls++
		return "body", nil
	}

	store.GetOrRender(ctx, "r1", "sess-a", "report", render)
	store.GetOrRender(ctx, "r1", "sess-b", "report", render)
	store.GetOrRender(ctx, "r1", "sess-a", "metadata", render)
	if calls != 3 {
		t.Errorf("render ran %d times, want 3 (distinct session / variant keys)", calls)
	}
}

// The export body has no per-session state: sessions share the cached copy,
// and an invalidation from any session drops it for all of them.
func TestExportRenderSharedAcrossSessions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	calls := 0
	render := func() (string, error) {
		calls++
		return "export body", nil
	}

	store.GetOrRender(ctx, "r1", "sess-a", "export", render)
	store.GetOrRender(ctx, "r1", "sess-b", "export", render)
	if calls != 1 {
		t.Errorf("render ran %d times, want 1 (shared export cache)", calls)
	}

	store.InvalidateRender(ctx, "r1", "sess-b")
	store.GetOrRender(ctx, "r1", "sess-a", "export", render)
	if calls != 2 {
		t.Errorf("render ran %d times after cross-session invalidation, want 2", calls)
	}
}

func TestInvalidateRender(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	calls := 0
	render := func() (string, error) {
		calls++
		return "body", nil
	}

	store.GetOrRender(ctx, "r1", "sess", "export", render)
	store.InvalidateRender(ctx, "r1", "sess")
	store.GetOrRender(ctx, "r1", "sess", "export", render)
	if calls != 2 {
		t.Errorf("render ran %d times, want 2 after invalidation", calls)
	}
}

func TestGetOrRenderErrorNotCached(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	boom := errors.New("compose failed")
	if _, err := store.GetOrRender(ctx, "r1", "sess", "export", func() (string, error) {
		return "", boom
	}); !errors.Is(err, boom) {
		t.Fatalf("error not surfaced: %v", err)
	}

	// The failure must not poison the cache.
	got, err := store.GetOrRender(ctx, "r1", "sess", "export", func() (string, error) {
		return "recovered", nil
	})
	if err != nil || got != "recovered" {
		t.Errorf("after failure: %q, %v", got, err)
	}
}
