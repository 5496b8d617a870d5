package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"statescan/internal/source"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := NewDiskCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	file := source.NewVirtual("mem.txt", []byte("x = 42\n"))
	opts := Options{Grammar: "arith", Cache: cache}

	first, err := TokenizeFile(context.Background(), file, opts)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if first.Cached {
		t.Fatalf("first scan must not be a cache hit")
	}

	second, err := TokenizeFile(context.Background(), file, opts)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if !second.Cached {
		t.Fatalf("second scan should come from the cache")
	}
	if len(second.Tokens) != len(first.Tokens) {
		t.Fatalf("expected %d cached tokens, got %d", len(first.Tokens), len(second.Tokens))
	}
	for i := range first.Tokens {
		if first.Tokens[i] != second.Tokens[i] {
			t.Fatalf("token %d: %v != %v", i, first.Tokens[i], second.Tokens[i])
		}
	}

	// другая грамматика — другой ключ
	third, err := TokenizeFile(context.Background(), file, Options{Grammar: "words", Cache: cache})
	if err != nil {
		t.Fatalf("third scan: %v", err)
	}
	if third.Cached {
		t.Fatalf("grammar must be part of the cache key")
	}
}

func TestDiskCacheSkipsFailedScans(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	file := source.NewVirtual("bad.txt", []byte("1 ~ 2"))
	opts := Options{Grammar: "arith", Cache: cache}
	for i := 0; i < 2; i++ {
		res, err := TokenizeFile(context.Background(), file, opts)
		if err != nil {
			t.Fatalf("scan %d: %v", i, err)
		}
		if res.Cached || res.Err == nil {
			t.Fatalf("scan %d: failed scans must not be cached: %+v", i, res)
		}
	}
}

func TestDiskCacheCorruptEntry(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	file := source.NewVirtual("mem.txt", []byte("a b"))
	opts := Options{Grammar: "words", Cache: cache}
	key := cacheKey(file, opts)

	p := cache.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte{0xc1, 0xff, 0x00}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := TokenizeFile(context.Background(), file, opts)
	if err != nil {
		t.Fatalf("TokenizeFile: %v", err)
	}
	if res.Cached || len(res.Tokens) != 3 {
		t.Fatalf("corrupt entry must fall back to scanning: %+v", res)
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	root := filepath.Join(t.TempDir(), "c")
	cache, err := NewDiskCache(root)
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	file := source.NewVirtual("mem.txt", []byte("a"))
	opts := Options{Grammar: "words", Cache: cache}
	if _, err := TokenizeFile(context.Background(), file, opts); err != nil {
		t.Fatalf("TokenizeFile: %v", err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	var payload DiskPayload
	hit, err := cache.Get(cacheKey(file, opts), &payload)
	if err != nil || hit {
		t.Fatalf("expected empty cache after DropAll, got hit=%v err=%v", hit, err)
	}
}

func TestNilDiskCache(t *testing.T) {
	var cache *DiskCache
	if err := cache.Put(Digest{}, &DiskPayload{}); err != nil {
		t.Fatalf("Put on nil cache: %v", err)
	}
	if hit, err := cache.Get(Digest{}, &DiskPayload{}); hit || err != nil {
		t.Fatalf("Get on nil cache: %v, %v", hit, err)
	}
}
