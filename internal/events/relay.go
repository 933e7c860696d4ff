package events

import "context"

// Broadcaster fans a named event out to connected realtime clients.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

// RegisterHubRelay forwards auth domain events onto the realtime channel
// so connected clients observe registrations and permission changes live.
func RegisterHubRelay(d Dispatcher, b Broadcaster) {
	relay := func(_ context.Context, event Event) error {
		b.Broadcast(string(event.Type), event.Payload)
		return nil
	}
	d.Subscribe(EventUserRegistered, relay)
	d.Subscribe(EventPermissionChanged, relay)
}
