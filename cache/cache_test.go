package cache

import (
	"strconv"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		capacity int
		want     int
	}{
		{10, 10},
		{0, DefaultCapacity},
		{-1, DefaultCapacity},
	}
	for _, tt := range tests {
		c := New[string, int](tt.capacity)
		if c.Capacity() != tt.want {
			t.Errorf("New(%d).Capacity() = %d, want %d", tt.capacity, c.Capacity(), tt.want)
		}
		if c.Len() != 0 {
			t.Errorf("New(%d).Len() = %d, want 0", tt.capacity, c.Len())
		}
	}
}

func TestGetSet(t *testing.T) {
	c := New[string, int](10)
	c.Set("a", 1)
	c.Set("a", 2)

	if v, ok := c.Get("a"); !ok || v != 2 {
		t.Errorf("Get(a) = %d, %v, want 2, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) ok = true")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestGetOrCreate(t *testing.T) {
	c := New[string, int](10)
	calls := 0
	create := func() int {
		calls++
		return 100
	}
	for i := 0; i < 3; i++ {
		if v := c.GetOrCreate("k", create); v != 100 {
			t.Errorf("GetOrCreate() = %d, want 100", v)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Stats() hits = %d, misses = %d, want 2, 1", s.Hits, s.Misses)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := New[string, int](3, WithEvictCallback(func(k string, _ int) {
		evicted = append(evicted, k)
	}))
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Get("a")
	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("b survived, want it evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("Get(%s) missing", k)
		}
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("evicted = %v, want [b]", evicted)
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Stats().Evictions = %d, want 1", got)
	}
}

func TestDeleteAndClear(t *testing.T) {
	released := 0
	c := New[int, string](4, WithEvictCallback(func(int, string) { released++ }))
	c.Set(1, "one")
	c.Set(2, "two")
	c.Set(3, "three")

	if !c.Delete(1) {
		t.Error("Delete(1) = false, want true")
	}
	if c.Delete(1) {
		t.Error("second Delete(1) = true, want false")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	if released != 3 {
		t.Errorf("released = %d, want 3", released)
	}
	c.Set(5, "five")
	if v, _ := c.Get(5); v != "five" {
		t.Errorf("Get(5) after Clear = %q, want five", v)
	}
}

func TestResetStats(t *testing.T) {
	c := New[int, int](2)
	c.Get(1)
	c.ResetStats()
	if s := c.Stats(); s.Misses != 0 || s.HitRate != 0 {
		t.Errorf("Stats() after reset = %+v", s)
	}
}

func TestConcurrent(t *testing.T) {
	c := New[string, int](16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := strconv.Itoa((g + i) % 32)
				c.GetOrCreate(k, func() int { return i })
				c.Get(k)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Errorf("Len() = %d, want at most 16", c.Len())
	}
}

func TestLRUList(t *testing.T) {
	l := newLRUList[string]()
	a := l.PushFront("a")
	b := l.PushFront("b")
	l.PushFront("c")

	if oldest, ok := l.Oldest(); !ok || oldest != "a" {
		t.Errorf("Oldest() = %q, want a", oldest)
	}
	l.MoveToFront(a)
	if oldest, _ := l.Oldest(); oldest != "b" {
		t.Errorf("Oldest() after MoveToFront = %q, want b", oldest)
	}
	l.Remove(b)
	if removed, ok := l.RemoveOldest(); !ok || removed != "c" {
		t.Errorf("RemoveOldest() = %q, want c", removed)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}

	l.Clear()
	if _, ok := l.RemoveOldest(); ok {
		t.Error("RemoveOldest() on empty list ok = true")
	}
	l.Remove(nil)
	l.MoveToFront(nil)
}
