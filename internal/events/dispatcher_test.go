package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherPublishesToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	event := New(EventUserRegistered, UserRegisteredPayload{Username: "bob", Email: "bob@x.com"})
	require.NoError(t, d.Publish(context.Background(), event))
	require.NoError(t, d.Publish(context.Background(), New(EventPermissionChanged, nil)))

	require.Len(t, got, 1, "only subscribed event types are delivered")
	assert.Equal(t, event.ID, got[0].ID)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestDispatcherContinuesPastFailingHandler(t *testing.T) {
	d := NewInMemoryDispatcher()

	reached := false
	d.Subscribe(EventPermissionChanged, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventPermissionChanged, func(context.Context, Event) error {
		reached = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), New(EventPermissionChanged, nil)))
	assert.True(t, reached)
}

type fakeBroadcaster struct {
	events   []string
	payloads []interface{}
}

func (f *fakeBroadcaster) Broadcast(event string, payload interface{}) {
	f.events = append(f.events, event)
	f.payloads = append(f.payloads, payload)
}

func TestHubRelayForwardsAuthEvents(t *testing.T) {
	d := NewInMemoryDispatcher()
	b := &fakeBroadcaster{}
	RegisterHubRelay(d, b)

	payload := PermissionChangedPayload{Email: "a@x.com", Permission: "teacher"}
	require.NoError(t, d.Publish(context.Background(), New(EventPermissionChanged, payload)))
	require.NoError(t, d.Publish(context.Background(), New(EventUserRegistered, UserRegisteredPayload{Username: "bob", Email: "bob@x.com"})))

	require.Len(t, b.events, 2)
	assert.Equal(t, "permission_changed", b.events[0])
	assert.Equal(t, "user_registered", b.events[1])
	assert.Equal(t, payload, b.payloads[0])
}
