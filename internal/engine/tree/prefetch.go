package tree

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"impactscan/internal/engine/parser"
	"impactscan/internal/shared/observability"
)

type importTarget struct {
	source     string
	path       string
	accessible bool
}

// loadResult is everything the builder needs from disk for one file.
type loadResult struct {
	exists     bool
	nodeType   NodeType
	ignored    bool
	file       *parser.File
	extractErr error
	imports    []importTarget
}

type pendingLoad struct {
	done chan struct{}
	res  *loadResult
	err  error
}

// prefetcher runs file loads on bounded goroutines ahead of the depth-first
// assembly. A finished load schedules its accessible imports unless assembly
// has already visited them. Loads are deduplicated per path: a load may start
// before the path is marked visited, but it runs at most once and assembly
// awaits that same load, so no extraction is repeated.
type prefetcher struct {
	ctx     context.Context
	group   *errgroup.Group
	sem     *semaphore.Weighted
	load    func(path string) *loadResult
	visited *visitedSet

	mu      sync.Mutex
	pending map[string]*pendingLoad
}

func newPrefetcher(ctx context.Context, limit int, visited *visitedSet, load func(string) *loadResult) *prefetcher {
	group, gctx := errgroup.WithContext(ctx)
	return &prefetcher{
		ctx:     gctx,
		group:   group,
		sem:     semaphore.NewWeighted(int64(limit)),
		load:    load,
		visited: visited,
		pending: make(map[string]*pendingLoad),
	}
}

func (p *prefetcher) schedule(path string) *pendingLoad {
	p.mu.Lock()
	if pl, ok := p.pending[path]; ok {
		p.mu.Unlock()
		return pl
	}
	pl := &pendingLoad{done: make(chan struct{})}
	p.pending[path] = pl
	p.mu.Unlock()

	p.group.Go(func() error {
		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			pl.err = err
			close(pl.done)
			return nil
		}
		observability.PrefetchInFlight.Inc()
		res := p.load(path)
		observability.PrefetchInFlight.Dec()
		p.sem.Release(1)

		pl.res = res
		close(pl.done)

		for _, target := range res.imports {
			if target.accessible && !p.visited.Contains(target.path) {
				p.schedule(target.path)
			}
		}
		return nil
	})
	return pl
}

// await returns the load for path, scheduling it if nothing has yet.
func (p *prefetcher) await(ctx context.Context, path string) (*loadResult, error) {
	pl := p.schedule(path)
	select {
	case <-pl.done:
		return pl.res, pl.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *prefetcher) wait() {
	_ = p.group.Wait()
}
