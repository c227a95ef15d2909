package lifecycle_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Archelyst/jsonapi-datastore/pkg/adapters/lifecycle"
	"github.com/Archelyst/jsonapi-datastore/pkg/core"
)

func TestSource_ForwardsStoreEvents(t *testing.T) {
	events := make(chan core.Event, 8)
	store := core.NewStore(core.WithListener(core.ChannelListener(events)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := lifecycle.NewSource(events)
	require.NoError(t, source.Start(ctx))

	_, err := store.Sync(core.Payload{"data": map[string]any{"type": "articles", "id": "1"}})
	require.NoError(t, err)
	close(events)

	var got []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e, ok := <-source.Events():
			if !ok {
				assert.Equal(t, []string{"CREATE articles/1"}, got)
				return
			}
			got = append(got, fmt.Sprint(e))
		case <-timeout:
			t.Fatalf("timeout waiting for events, got %v", got)
		}
	}
}

func TestSource_StopsOnCancel(t *testing.T) {
	events := make(chan core.Event)
	source := lifecycle.NewSource(events)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, source.Start(ctx))
	cancel()

	select {
	case _, ok := <-source.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("source did not close after cancel")
	}
}

func TestSource_FiltersKinds(t *testing.T) {
	events := make(chan core.Event, 8)
	store := core.NewStore(core.WithListener(core.ChannelListener(events)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := lifecycle.NewSource(events, lifecycle.WithKinds(core.EventPromote, core.EventReset))
	require.NoError(t, source.Start(ctx))

	_, err := store.Sync(core.Payload{"data": map[string]any{
		"type": "articles",
		"id":   "1",
		"relationships": map[string]any{
			"author": map[string]any{"data": map[string]any{"type": "people", "id": "9"}},
		},
	}})
	require.NoError(t, err)
	_, err = store.Sync(core.Payload{"data": map[string]any{"type": "people", "id": "9"}})
	require.NoError(t, err)
	store.Reset()
	close(events)

	var got []string
	for e := range source.Events() {
		got = append(got, fmt.Sprint(e))
	}
	assert.Equal(t, []string{"PROMOTE people/9", "RESET"}, got)
}

func TestSource_StartTwice(t *testing.T) {
	source := lifecycle.NewSource(make(chan core.Event))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, source.Start(ctx))
	assert.ErrorIs(t, source.Start(ctx), lifecycle.ErrAlreadyStarted)
}
