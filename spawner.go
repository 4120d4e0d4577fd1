package csvdiff

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ThreadSpawner is the pluggable thread-spawning facility of spec.md
// §4/§5/§6: a diff engine is configured with one, and each Diff call opens
// a fresh ThreadSession from it, so the same Differ can run multiple diffs
// concurrently without sessions interfering with one another.
type ThreadSpawner interface {
	NewSession(ctx context.Context) ThreadSession
}

// ThreadSession scopes the two hasher goroutines of one Diff call. Spawn
// starts fn on a worker; Wait blocks until every spawned fn has returned,
// propagating the first non-nil error and cancelling the session's
// context so sibling workers can notice and stop (spec.md §5's
// cancellation model, reinterpreted with context.Context in place of the
// original's channel-disconnect signal — the idiomatic Go equivalent).
type ThreadSession interface {
	Spawn(fn func(ctx context.Context) error)
	Wait() error
}

// ErrgroupSpawner is the default ThreadSpawner, backed by
// golang.org/x/sync/errgroup — present across the majority of the
// retrieval pack's manifests (grafana-tempo, moby-moby,
// ns-cchen-fis-migration-tool, and others).
type ErrgroupSpawner struct{}

// NewErrgroupSpawner constructs an ErrgroupSpawner.
func NewErrgroupSpawner() *ErrgroupSpawner {
	return &ErrgroupSpawner{}
}

func (s *ErrgroupSpawner) NewSession(ctx context.Context) ThreadSession {
	g, gctx := errgroup.WithContext(ctx)
	return &errgroupSession{g: g, ctx: gctx}
}

type errgroupSession struct {
	g   *errgroup.Group
	ctx context.Context
}

func (s *errgroupSession) Spawn(fn func(ctx context.Context) error) {
	s.g.Go(func() error { return fn(s.ctx) })
}

func (s *errgroupSession) Wait() error {
	return s.g.Wait()
}

// GoroutineSpawner is a dependency-free ThreadSpawner, grounded in the
// teacher's own sync.WaitGroup fan-out in stage2Streaming and in
// opencoff-go-bbhash/concurrent.go's sharded sync.WaitGroup dispatch. It
// demonstrates that ThreadSpawner is genuinely pluggable: it uses only the
// standard library and can stand in for ErrgroupSpawner (the package
// itself still imports errgroup for the default spawner).
type GoroutineSpawner struct{}

// NewGoroutineSpawner constructs a GoroutineSpawner.
func NewGoroutineSpawner() *GoroutineSpawner {
	return &GoroutineSpawner{}
}

func (s *GoroutineSpawner) NewSession(ctx context.Context) ThreadSession {
	ctx, cancel := context.WithCancel(ctx)
	return &goroutineSession{ctx: ctx, cancel: cancel}
}

type goroutineSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	err    error
}

func (s *goroutineSession) Spawn(fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := fn(s.ctx); err != nil {
			s.mu.Lock()
			if s.err == nil {
				s.err = err
				s.cancel()
			}
			s.mu.Unlock()
		}
	}()
}

func (s *goroutineSession) Wait() error {
	s.wg.Wait()
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
