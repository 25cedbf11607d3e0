package services

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesBursts(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var runs atomic.Int32

	for i := 0; i < 5; i++ {
		d.Schedule(func() { runs.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Fatalf("runs = %d, want 1", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var runs atomic.Int32

	d.Schedule(func() { runs.Add(1) })
	d.Cancel()

	time.Sleep(60 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Fatalf("runs = %d, want 0 after cancel", got)
	}
}

func TestDebouncerZeroWindowRunsSynchronously(t *testing.T) {
	d := NewDebouncer(0)
	ran := false
	d.Schedule(func() { ran = true })
	if !ran {
		t.Fatal("zero window must run synchronously")
	}
}
