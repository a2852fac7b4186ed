package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, time.Minute)
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, found, err := c.Get(ctx, "k")
	if err != nil || !found || string(got) != "v" {
		t.Errorf("Get = %q, %v, %v", got, found, err)
	}

	_, found, err = c.Get(ctx, "absent")
	if err != nil || found {
		t.Errorf("absent key: found=%v err=%v", found, err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, time.Hour)
	defer c.Close()

	c.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	// Lazy expiry on read; no sweep has run yet.
	if _, found, _ := c.Get(ctx, "k"); found {
		t.Error("expired entry still readable")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, time.Minute)
	defer c.Close()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := c.Get(ctx, "k"); found {
		t.Error("deleted entry still readable")
	}
}

func TestMemoryCacheMultiple(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, time.Minute)
	defer c.Close()

	items := map[string][]byte{"a": []byte("1"), "b": []byte("2")}
	if err := c.SetMultiple(ctx, items, time.Minute); err != nil {
		t.Fatalf("SetMultiple: %v", err)
	}

	got, err := c.GetMultiple(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("GetMultiple: %v", err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Errorf("GetMultiple = %v", got)
	}
	if _, ok := got["missing"]; ok {
		t.Error("missing key present in result")
	}
}

func TestMemoryCacheSweepEvictsOverflow(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, time.Hour)
	defer c.Close()

	c.Set(ctx, "soon", []byte("1"), time.Minute)
	c.Set(ctx, "mid", []byte("2"), time.Hour)
	c.Set(ctx, "late", []byte("3"), 2*time.Hour)
	c.sweep()

	// The soonest-expiring entry goes first when over capacity.
	if _, found, _ := c.Get(ctx, "soon"); found {
		t.Error("overflow eviction kept the soonest-expiring entry")
	}
	for _, key := range []string{"mid", "late"} {
		if _, found, _ := c.Get(ctx, key); !found {
			t.Errorf("entry %q evicted while under capacity", key)
		}
	}
}
