package csvdiff

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testThreadSpawnerPropagatesFirstError(t *testing.T, spawner ThreadSpawner) {
	wantErr := errors.New("boom")
	session := spawner.NewSession(context.Background())

	session.Spawn(func(ctx context.Context) error { return wantErr })
	session.Spawn(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := session.Wait()
	require.ErrorIs(t, err, wantErr)
}

func testThreadSpawnerWaitsForAllWorkers(t *testing.T, spawner ThreadSpawner) {
	session := spawner.NewSession(context.Background())
	done := make(chan struct{}, 2)
	session.Spawn(func(ctx context.Context) error { done <- struct{}{}; return nil })
	session.Spawn(func(ctx context.Context) error { done <- struct{}{}; return nil })

	require.NoError(t, session.Wait())
	assert.Len(t, done, 2)
}

func TestErrgroupSpawner(t *testing.T) {
	t.Run("propagates first error", func(t *testing.T) {
		testThreadSpawnerPropagatesFirstError(t, NewErrgroupSpawner())
	})
	t.Run("waits for all workers", func(t *testing.T) {
		testThreadSpawnerWaitsForAllWorkers(t, NewErrgroupSpawner())
	})
}

func TestGoroutineSpawner(t *testing.T) {
	t.Run("propagates first error", func(t *testing.T) {
		testThreadSpawnerPropagatesFirstError(t, NewGoroutineSpawner())
	})
	t.Run("waits for all workers", func(t *testing.T) {
		testThreadSpawnerWaitsForAllWorkers(t, NewGoroutineSpawner())
	})
}
