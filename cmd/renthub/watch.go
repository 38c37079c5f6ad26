package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/renthub/renthub-go/internal/fetch"
)

// runWatch renders load's output once, then re-renders on every tick until
// ctx is done. Refreshes go through a generation gate: a slow poll that
// resolves after a newer one was issued is discarded rather than written
// over the fresher view.
func runWatch(ctx context.Context, w io.Writer, interval time.Duration, load func(context.Context) (string, error)) error {
	gate := &fetch.Gate{}

	refresh := func() {
		gen := gate.Begin()
		go func() {
			out, err := load(ctx)
			if err != nil {
				gate.Commit(gen, func() { fmt.Fprintf(w, "refresh failed: %v\n", err) })
				return
			}
			gate.Commit(gen, func() { fmt.Fprint(w, out) })
		}()
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			gate.Invalidate()
			return nil
		case <-ticker.C:
			refresh()
		}
	}
}
