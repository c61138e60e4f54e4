package events

import "github.com/nfidao/nfi-smart-contract/core/types"

// Event represents a structured state change emitted by an engine.
type Event interface {
	EventType() string
}

// Renderable is implemented by events that can be flattened into the generic
// attribute form served to subscribers and the archive.
type Renderable interface {
	Event() *types.Event
}

// Emitter broadcasts events to downstream subscribers (e.g. websocket clients, archive).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Render converts evt to its attribute form. Events without a renderer are
// reported with their type only.
func Render(evt Event) *types.Event {
	if evt == nil {
		return nil
	}
	if r, ok := evt.(Renderable); ok {
		if out := r.Event(); out != nil {
			return out
		}
	}
	return &types.Event{Type: evt.EventType(), Attributes: map[string]string{}}
}
