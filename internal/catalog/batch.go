package catalog

import (
	"context"
	"sync"
	"time"
)

// FetchBatch resolves metadata for a set of refs concurrently and returns an
// id-keyed map so callers can re-associate results regardless of completion
// order. The whole batch is bounded by timeout; refs that fail, time out or
// come back not-found are simply absent from the map.
func FetchBatch(ctx context.Context, c Client, refs []ItemRef, timeout time.Duration) map[int64]*Metadata {
	out := make(map[int64]*Metadata, len(refs))
	if len(refs) == 0 {
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, ref := range refs {
		wg.Add(1)
		go func(ref ItemRef) {
			defer wg.Done()
			meta, err := c.Details(ctx, ref.Kind, ref.ID)
			if err != nil || meta == nil {
				return
			}
			mu.Lock()
			out[ref.ID] = meta
			mu.Unlock()
		}(ref)
	}
	wg.Wait()
	return out
}
