package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventValidated EventType = "validated"
	EventRejected  EventType = "rejected"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ValidationEvent is emitted once a report has been produced.
type ValidationEvent struct {
	EventBase
	Report *Report `json:"report"`
}

// RejectionEvent is emitted when a submission fails a pre-check and is never validated.
type RejectionEvent struct {
	EventBase
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// LifecycleHooks defines callbacks for checker observability.
type LifecycleHooks struct {
	OnValidated func(context.Context, *ValidationEvent)
	OnRejected  func(context.Context, *RejectionEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnValidated: chain(h.OnValidated, other.OnValidated),
		OnRejected:  chain(h.OnRejected, other.OnRejected),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
