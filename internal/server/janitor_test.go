package server

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/any-hub/resource-hub/internal/cache"
	"github.com/any-hub/resource-hub/internal/logging"
	"github.com/any-hub/resource-hub/internal/resource"
)

func seededRegistry(t *testing.T, mock *clock.Mock) (*resource.Registry, *cache.Store) {
	t.Helper()
	store := cache.NewStore("items", time.Second, cache.WithClock(mock))
	manager, err := resource.NewManager(resource.ManagerOptions{
		Descriptor: resource.Descriptor{Name: "items", URLs: resource.URLs{Base: "/items/"}},
		Store:      store,
		Logger:     logging.NewDiscardLogger(),
	})
	require.NoError(t, err)

	registry := resource.NewRegistry()
	registry.MustRegister(manager)

	_, err = store.GetData(context.Background(), cache.FetchOptions{
		Key: "/items/1/",
		Fetch: func(context.Context, cache.FetchOptions, ...any) (any, error) {
			return map[string]any{"id": 1}, nil
		},
	})
	require.NoError(t, err)
	return registry, store
}

func TestJanitorSweep(t *testing.T) {
	mock := clock.NewMock()
	registry, store := seededRegistry(t, mock)
	janitor := NewJanitor(registry, time.Minute, logging.NewDiscardLogger(), mock)

	assert.Equal(t, 0, janitor.Sweep(), "fresh entries must survive")
	mock.Add(2 * time.Second)
	assert.Equal(t, 1, janitor.Sweep())
	assert.Equal(t, 0, store.Len())
}

func TestJanitorRunsOnTicker(t *testing.T) {
	mock := clock.NewMock()
	registry, store := seededRegistry(t, mock)
	janitor := NewJanitor(registry, time.Minute, logging.NewDiscardLogger(), mock)

	ctx, cancel := context.WithCancel(context.Background())
	done := janitor.Start(ctx)

	mock.Add(time.Minute)
	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("janitor did not stop after cancel")
	}
}

func TestJanitorDisabledInterval(t *testing.T) {
	janitor := NewJanitor(resource.NewRegistry(), 0, nil, nil)
	select {
	case <-janitor.Start(context.Background()):
	default:
		t.Fatalf("zero interval should not start a loop")
	}
}
