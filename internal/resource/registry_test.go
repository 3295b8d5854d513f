package resource

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/any-hub/resource-hub/internal/cache"
)

func mustManager(t *testing.T, name string, store *cache.Store) *Manager {
	t.Helper()
	m, err := NewManager(ManagerOptions{
		Descriptor: Descriptor{Name: name, URLs: URLs{Base: "/" + name + "/"}},
		Store:      store,
	})
	require.NoError(t, err)
	return m
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(mustManager(t, "Items", nil)))
	require.NoError(t, reg.Register(mustManager(t, "comments", nil)))

	m, ok := reg.Resolve(" ITEMS ")
	require.True(t, ok)
	assert.Equal(t, "Items", m.Name())

	_, ok = reg.Resolve("missing")
	assert.False(t, ok)
	_, ok = reg.Resolve("")
	assert.False(t, ok)

	assert.Equal(t, []string{"comments", "items"}, reg.Names())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(mustManager(t, "items", nil)))
	assert.Error(t, reg.Register(mustManager(t, "ITEMS", nil)))
	assert.Error(t, reg.Register(nil))
	assert.Panics(t, func() { reg.MustRegister(mustManager(t, "items", nil)) })
}

func TestRegistryRejectsSharedStore(t *testing.T) {
	shared := cache.NewStore("shared", time.Minute)
	reg := NewRegistry()
	require.NoError(t, reg.Register(mustManager(t, "items", shared)))
	assert.Error(t, reg.Register(mustManager(t, "comments", shared)))
}

func TestRegistryCleanAndClearAll(t *testing.T) {
	mock := clock.NewMock()
	itemsStore := cache.NewStore("items", time.Second, cache.WithClock(mock))
	tagsStore := cache.NewStore("tags", cache.Forever, cache.WithClock(mock))

	reg := NewRegistry()
	reg.MustRegister(mustManager(t, "items", itemsStore))
	reg.MustRegister(mustManager(t, "tags", tagsStore))

	seed := func(store *cache.Store, key string) {
		_, err := store.GetData(t.Context(), cache.FetchOptions{
			Key: key,
			Fetch: func(_ context.Context, _ cache.FetchOptions, _ ...any) (any, error) {
				return key, nil
			},
		})
		require.NoError(t, err)
	}
	seed(itemsStore, "/items/1/")
	seed(itemsStore, "/items/2/")
	seed(tagsStore, "/tags/")

	mock.Add(2 * time.Second)
	assert.Equal(t, 2, reg.CleanAll())
	assert.Equal(t, 0, itemsStore.Len())
	assert.Equal(t, 1, tagsStore.Len())

	reg.ClearAll()
	assert.Equal(t, 0, tagsStore.Len())
}
