package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTTLExpiresAtBoundary(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	c := New[string, int](60*time.Second, clk.Now)
	c.Set("k", 1)

	clk.Advance(59*time.Second + 999*time.Millisecond)
	if v, ok := c.Get("k"); !ok || v != 1 {
		t.Fatalf("expected hit before expiry, got %v %v", v, ok)
	}

	clk.Advance(time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss exactly at expiry")
	}
	if c.Len() != 0 {
		t.Fatal("expired entry should be evicted on read")
	}
}

func TestTTLSetReplacesAndResets(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := New[string, string](10*time.Second, clk.Now)
	c.Set("k", "a")
	clk.Advance(8 * time.Second)
	c.Set("k", "b")
	clk.Advance(8 * time.Second)
	if v, ok := c.Get("k"); !ok || v != "b" {
		t.Fatalf("got %q %v", v, ok)
	}
}

func TestTTLDeleteAndClear(t *testing.T) {
	c := New[int, int](time.Minute, nil)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Delete(1)
	if _, ok := c.Get(1); ok {
		t.Fatal("deleted key still present")
	}
	c.Clear()
	if _, ok := c.Get(2); ok || c.Len() != 0 {
		t.Fatal("clear left entries behind")
	}
}
