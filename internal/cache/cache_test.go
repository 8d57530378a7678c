package cache

import (
	"errors"
	"testing"
	"time"
)

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache[string](10, time.Millisecond)
	c.Set("k", "v")
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry returned")
	}

	c.Set("x", "y")
	time.Sleep(5 * time.Millisecond)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
}

func TestLRUCacheGetOrLoad(t *testing.T) {
	c := NewLRUCache[string](10, 0)
	loads := 0
	load := func() (string, error) {
		loads++
		return "parsed", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("tpl", load)
		if err != nil || v != "parsed" {
			t.Fatalf("GetOrLoad() = %q, %v", v, err)
		}
	}
	if loads != 1 {
		t.Errorf("load called %d times, want 1", loads)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrLoad("bad", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed loads must not be cached")
	}

	s := c.Stats()
	if s.Hits != 2 || s.Size != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestManagerCleanNowAndStop(t *testing.T) {
	m := NewManager(nil)
	c := NewLRUCache[int](10, time.Millisecond)
	m.Register(c)
	c.Set("a", 1)
	time.Sleep(5 * time.Millisecond)

	if n := m.CleanNow(); n != 1 {
		t.Errorf("CleanNow() = %d, want 1", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
