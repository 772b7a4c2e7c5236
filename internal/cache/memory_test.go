package cache

import (
	"context"
	"testing"
	"time"
)

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryCacheGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	var got cachedValue
	found, err := c.Get(ctx, "missing", &got)
	if err != nil || found {
		t.Fatalf("Get on empty cache = %v, %v", found, err)
	}

	if err := c.Set(ctx, "k", cachedValue{Name: "a", Count: 2}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	found, err = c.Get(ctx, "k", &got)
	if err != nil || !found {
		t.Fatalf("Get = %v, %v", found, err)
	}
	if got.Name != "a" || got.Count != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", 1, time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var v int
	if found, _ := c.Get(ctx, "k", &v); !found {
		t.Fatal("entry should be live before its ttl")
	}

	now = now.Add(time.Second)
	if found, _ := c.Get(ctx, "k", &v); found {
		t.Error("entry should expire at its ttl")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	c.Set(ctx, GroupSummaryKey(1), "one", 0)
	c.Set(ctx, GroupSummaryKey(2), "two", 0)

	if err := c.Delete(ctx, GroupSummaryKey(1)); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var s string
	if found, _ := c.Get(ctx, GroupSummaryKey(1), &s); found {
		t.Error("deleted key still present")
	}
	if found, _ := c.Get(ctx, GroupSummaryKey(2), &s); !found || s != "two" {
		t.Errorf("other key = %q, %v", s, found)
	}
}

func TestGroupSummaryKey(t *testing.T) {
	if got := GroupSummaryKey(42); got != "summary:group:42" {
		t.Errorf("GroupSummaryKey(42) = %q", got)
	}
}
