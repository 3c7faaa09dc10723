// Package events delivers named observability events to the host
// application. Emission is fire-and-forget: a slow or absent consumer can
// never affect the operation that emitted.
package events

import (
	"sync"
	"time"
)

// Event is one named occurrence with free-form attributes.
type Event struct {
	Name      string                 `json:"name"`
	Timestamp time.Time              `json:"timestamp"`
	Attrs     map[string]interface{} `json:"attrs,omitempty"`
}

// Sink receives named events. Implementations must not block and must not
// propagate failures to the emitter.
type Sink interface {
	Emit(name string, attrs map[string]interface{})
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Emit(string, map[string]interface{}) {}

// Emitter is a channel-backed Sink. Events are buffered; when the buffer is
// full they are dropped rather than blocking the emitting operation.
type Emitter struct {
	ch     chan Event
	closed bool
	mu     sync.Mutex
}

// NewEmitter creates an Emitter with the given buffer size.
func NewEmitter(bufferSize int) *Emitter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Emitter{ch: make(chan Event, bufferSize)}
}

// Emit sends an event. Safe after Close; the event is silently dropped.
func (e *Emitter) Emit(name string, attrs map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	event := Event{Name: name, Timestamp: time.Now(), Attrs: attrs}
	select {
	case e.ch <- event:
	default:
		// Buffer full; drop rather than stall the extraction pipeline.
	}
}

// Events returns the read-only event channel.
func (e *Emitter) Events() <-chan Event {
	return e.ch
}

// Close closes the event channel. Safe to call multiple times.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}
