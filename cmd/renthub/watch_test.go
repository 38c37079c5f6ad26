package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition not met in time")
		case <-time.After(time.Millisecond):
		}
	}
}

// The first poll hangs and resolves only after a later poll has already
// rendered; its late result must be discarded, not written over the fresher
// view.
func TestRunWatch_StaleRefreshDiscarded(t *testing.T) {
	buf := &syncBuffer{}
	var calls atomic.Int32
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	load := func(ctx context.Context) (string, error) {
		switch calls.Add(1) {
		case 1:
			close(firstStarted)
			<-releaseFirst
			return "stale view\n", nil
		case 2:
			return "fresh view\n", nil
		default:
			return "fresh view\n", nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, buf, 2*time.Millisecond, load) }()

	<-firstStarted
	waitFor(t, func() bool { return strings.Contains(buf.String(), "fresh view") })

	close(releaseFirst)
	// Give the released first poll time to attempt (and be refused) its
	// commit before asserting.
	waitFor(t, func() bool { return calls.Load() >= 4 })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("runWatch returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "fresh view") {
		t.Fatalf("expected a fresh render, got %q", out)
	}
	if strings.Contains(out, "stale view") {
		t.Errorf("stale poll overwrote fresher view: %q", out)
	}
}

func TestRunWatch_RendersErrors(t *testing.T) {
	buf := &syncBuffer{}
	load := func(ctx context.Context) (string, error) {
		return "", context.DeadlineExceeded
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, buf, time.Millisecond, load) }()

	waitFor(t, func() bool { return strings.Contains(buf.String(), "refresh failed") })
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("runWatch returned error: %v", err)
	}
}

func TestRunWatch_StopsOnContextDone(t *testing.T) {
	buf := &syncBuffer{}
	load := func(ctx context.Context) (string, error) { return "view\n", nil }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, buf, time.Millisecond, load) }()

	waitFor(t, func() bool { return strings.Contains(buf.String(), "view") })
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runWatch returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runWatch did not stop after cancellation")
	}
}
