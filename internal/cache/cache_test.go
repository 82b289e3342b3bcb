package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

func TestLookupKey(t *testing.T) {
	a := model.DefaultQuery()
	b := a
	b.Brand = "  APPLE "
	b.Part = "display"

	if LookupKey(a) != LookupKey(b) {
		t.Error("Expected case and whitespace to be ignored")
	}
	if !strings.HasPrefix(LookupKey(a), "cotizador:v1:") {
		t.Errorf("Unexpected key prefix: %s", LookupKey(a))
	}

	c := a
	c.Variant1 = "LCD"
	if LookupKey(a) == LookupKey(c) {
		t.Error("Expected variants to change the key")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss")
	}

	_ = c.Set("k", []byte("v"), 0)
	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Errorf("Expected v, got %q %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}

	_ = c.Set("short", []byte("x"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("Expected expired entry to miss")
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("Expected deleted entry to miss")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	key := LookupKey(model.DefaultQuery())
	if err := c.Set(key, []byte(`{"a":1}`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := c.Get(key)
	if !ok || string(got) != `{"a":1}` {
		t.Errorf("Unexpected value %q %v", got, ok)
	}

	// a fresh instance over the same dir sees the entry
	if _, ok := NewDiskCache(dir, time.Hour).Get(key); !ok {
		t.Error("Expected entry to persist on disk")
	}

	if err := c.Delete(key); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("Deleting a missing entry should not fail: %v", err)
	}
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	_ = c.Set("k", []byte("v"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("Expected expired entry to miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	NewDiskCache(dir, time.Hour).Set("k", []byte("v"), 0)

	c := NewLayeredCache(time.Minute, dir, time.Hour)
	if _, ok := c.memory.Get("k"); ok {
		t.Fatal("Expected memory layer to start empty")
	}

	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Fatalf("Expected disk hit, got %q %v", got, ok)
	}
	if _, ok := c.memory.Get("k"); !ok {
		t.Error("Expected disk hit to be promoted to memory")
	}
}

func TestNew(t *testing.T) {
	if New(model.CacheConfig{Enabled: false}) != nil {
		t.Error("Expected nil cache when disabled")
	}
	if _, ok := New(model.CacheConfig{Enabled: true}).(*MemoryCache); !ok {
		t.Error("Expected memory cache without dir")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, Dir: t.TempDir()}).(*LayeredCache); !ok {
		t.Error("Expected layered cache with dir")
	}
}

func TestLookupStore(t *testing.T) {
	store := NewLookupStore(NewMemoryCache(time.Minute, time.Minute), 0)
	q := model.DefaultQuery()

	resp := &model.LookupResponse{
		PartResults: []model.PartResult{{ID: "ml1", PriceMXN: 3500, Condition: model.ConditionNew}},
		Provider:    "openai",
		Warnings:    []string{"transient"},
	}
	if err := store.Put(q, resp); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := store.Get(q)
	if !ok {
		t.Fatal("Expected hit")
	}
	if len(got.PartResults) != 1 || got.PartResults[0].ID != "ml1" || got.Provider != "openai" {
		t.Errorf("Unexpected cached response: %+v", got)
	}
	if len(got.Warnings) != 0 {
		t.Errorf("Expected warnings not to be cached, got %v", got.Warnings)
	}
}

func TestLookupStore_SkipsFallback(t *testing.T) {
	store := NewLookupStore(NewMemoryCache(time.Minute, time.Minute), 0)
	q := model.DefaultQuery()

	_ = store.Put(q, &model.LookupResponse{Fallback: true})
	if _, ok := store.Get(q); ok {
		t.Error("Expected fallback responses not to be cached")
	}
}

func TestLookupStore_NilCache(t *testing.T) {
	store := NewLookupStore(nil, 0)
	if err := store.Put(model.DefaultQuery(), &model.LookupResponse{}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if _, ok := store.Get(model.DefaultQuery()); ok {
		t.Error("Expected miss from nil cache")
	}
}
