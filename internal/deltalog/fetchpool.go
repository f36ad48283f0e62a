package deltalog

import (
	"context"
	"sync"
)

// defaultFanout bounds parallel commit-file fetch at 16 in flight, per
// spec.md §5 ("up to a bounded fan-out, default 16").
const defaultFanout = 16

type fetchTask struct {
	version int64
	path    string
}

type fetchResult struct {
	version int64
	data    []byte
	err     error
}

// fetchCommits runs get over every task with at most fanout in flight,
// and returns results keyed by version so the caller can reassemble them
// in version order regardless of completion order (spec.md §5).
func fetchCommits(ctx context.Context, get func(context.Context, string) ([]byte, error), tasks []fetchTask, fanout int) (map[int64][]byte, error) {
	if fanout <= 0 {
		fanout = defaultFanout
	}

	sem := make(chan struct{}, fanout)
	results := make([]fetchResult, len(tasks))
	var wg sync.WaitGroup

	for i, t := range tasks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, t fetchTask) {
			defer wg.Done()
			defer func() { <-sem }()

			if ctx.Err() != nil {
				results[i] = fetchResult{version: t.version, err: ctx.Err()}
				return
			}
			data, err := get(ctx, t.path)
			results[i] = fetchResult{version: t.version, data: data, err: err}
		}(i, t)
	}
	wg.Wait()

	out := make(map[int64][]byte, len(tasks))
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		out[r.version] = r.data
	}
	return out, nil
}
