package domain

import "maps"

// RunIDProperty is the event property carrying the run identifier.
const RunIDProperty = "ehsend-run-id"

// Event is a single unit of data handed to a batch.
// Events are immutable once constructed.
type Event struct {
	body       []byte
	properties map[string]string
}

// NewEvent creates an event carrying payload and optional properties.
// Both are copied so later changes by the caller do not leak into the event.
func NewEvent(payload []byte, properties map[string]string) Event {
	ev := Event{body: append([]byte(nil), payload...)}
	if len(properties) > 0 {
		ev.properties = maps.Clone(properties)
	}
	return ev
}

// Body returns a copy of the event payload.
func (e Event) Body() []byte {
	return append([]byte(nil), e.body...)
}

// Len returns the payload length in bytes.
func (e Event) Len() int {
	return len(e.body)
}

// Properties returns a copy of the application properties.
func (e Event) Properties() map[string]string {
	return maps.Clone(e.properties)
}
