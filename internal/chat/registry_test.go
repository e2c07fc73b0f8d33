package chat

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	userID := uuid.New()
	h := &fakeHandle{}

	_, ok := r.Lookup(userID)
	require.False(t, ok)

	r.Register(userID, h)

	got, ok := r.Lookup(userID)
	require.True(t, ok)
	require.Same(t, h, got.(*fakeHandle))
	require.True(t, r.Contains(userID))
	require.Equal(t, 1, r.Count())
}

func TestRegistryLastWriterWins(t *testing.T) {
	r := NewRegistry()
	userID := uuid.New()
	first := &fakeHandle{}
	second := &fakeHandle{}

	r.Register(userID, first)
	r.Register(userID, second)

	got, ok := r.Lookup(userID)
	require.True(t, ok)
	require.Same(t, second, got.(*fakeHandle))
	require.Equal(t, 1, r.Count())
}

func TestRegistryStaleDeregisterIsNoop(t *testing.T) {
	r := NewRegistry()
	userID := uuid.New()
	old := &fakeHandle{}
	replacement := &fakeHandle{}

	// A reconnect replaces the handle before the old connection's
	// disconnect fires.
	r.Register(userID, old)
	r.Register(userID, replacement)

	require.False(t, r.Deregister(userID, old))

	got, ok := r.Lookup(userID)
	require.True(t, ok)
	require.Same(t, replacement, got.(*fakeHandle))

	require.True(t, r.Deregister(userID, replacement))
	require.False(t, r.Contains(userID))
}

func TestRegistryDeregisterUnknownUser(t *testing.T) {
	r := NewRegistry()
	require.False(t, r.Deregister(uuid.New(), &fakeHandle{}))
}

func TestRegistrySnapshotSorted(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 10; i++ {
		r.Register(uuid.New(), &fakeHandle{})
	}

	ids := r.Snapshot()
	require.Len(t, ids, 10)
	for i := 1; i < len(ids); i++ {
		require.Less(t, ids[i-1].String(), ids[i].String())
	}
}

func TestRegistryConcurrentChurn(t *testing.T) {
	r := NewRegistry()
	users := make([]uuid.UUID, 8)
	for i := range users {
		users[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for _, userID := range users {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h := &fakeHandle{}
				r.Register(id, h)
				r.Snapshot()
				r.Contains(id)
				r.Deregister(id, h)
			}
		}(userID)
	}
	wg.Wait()

	require.Equal(t, 0, r.Count())
}
