package clock

import (
	"testing"
	"time"
)

func TestManagedClock(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	c := NewManaged(start)

	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("expected %v, got %v", start, got)
	}

	warped := c.WarpForward(90 * time.Minute)
	want := start.Add(90 * time.Minute)
	if !warped.Equal(want) {
		t.Fatalf("expected %v after warp, got %v", want, warped)
	}
	if got := c.Now(); !got.Equal(want) {
		t.Fatalf("Now should reflect warp: expected %v, got %v", want, got)
	}
}
