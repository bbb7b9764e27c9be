package runtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
	id string
}

func (s *Sink) Send(ctx context.Context, event any) error {
	return nil
}

func TestRegistry_Put_One_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identityID := uuid.NewString()
	sink := &Sink{}

	// Given no one is online
	req.False(registry.IsOnline(identityID))
	req.Empty(registry.All())

	// When an identity connects
	previous, replaced := registry.Put(identityID, sink)

	// Then there was nothing to replace
	req.Nil(previous)
	req.False(replaced)

	// And the identity is online with its sink
	req.True(registry.IsOnline(identityID))
	got, ok := registry.Get(identityID)
	req.True(ok)
	req.Same(sink, got.(*Sink))
	req.Len(registry.All(), 1)
}

func TestRegistry_Put_Takeover(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identityID := uuid.NewString()
	first := &Sink{id: "first"}
	second := &Sink{id: "second"}

	// Given a live session
	registry.Put(identityID, first)

	// When the same identity logs in again
	previous, replaced := registry.Put(identityID, second)

	// Then the new sink takes over and the old one is handed back
	req.True(replaced)
	req.Same(first, previous.(*Sink))

	got, _ := registry.Get(identityID)
	req.Same(second, got.(*Sink))
	req.Len(registry.All(), 1)
}

func TestRegistry_Remove(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identityID := uuid.NewString()

	registry.Put(identityID, &Sink{})

	// When removed
	registry.Remove(identityID)

	// Then the identity is offline
	req.False(registry.IsOnline(identityID))

	// And removing again is a no-op
	registry.Remove(identityID)
	req.Empty(registry.All())
}

func TestRegistry_Release_OnlyOwnSink(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identityID := uuid.NewString()
	old := &Sink{id: "old"}
	current := &Sink{id: "current"}

	// Given a session that was taken over
	registry.Put(identityID, old)
	registry.Put(identityID, current)

	// When the superseded connection closes
	registry.Release(identityID, old)

	// Then the live session survives
	req.True(registry.IsOnline(identityID))

	// And when the current connection closes
	registry.Release(identityID, current)
	req.False(registry.IsOnline(identityID))
}

func TestRegistry_All_IsSnapshot(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identityID := uuid.NewString()
	registry.Put(identityID, &Sink{})

	snapshot := registry.All()
	registry.Remove(identityID)

	// The snapshot is unaffected by later mutations
	req.Len(snapshot, 1)
	req.Empty(registry.All())
}
