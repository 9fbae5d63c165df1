// Package notify delivers lease events to external systems without ever
// blocking or failing the booking that produced them.
package notify

import (
	"context"

	"github.com/pixperk/handset/pkg/types"
)

// Sink receives events after a successful book or return.
// Notify may block up to the dispatcher's delivery timeout; errors are logged and counted.
type Sink interface {
	Name() string
	Notify(ctx context.Context, ev types.Event) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc struct {
	ID string
	Fn func(ctx context.Context, ev types.Event) error
}

func (s SinkFunc) Name() string { return s.ID }

func (s SinkFunc) Notify(ctx context.Context, ev types.Event) error { return s.Fn(ctx, ev) }

// Publisher is what the booking service needs from the notification side.
type Publisher interface {
	Publish(ev types.Event) bool
}

// Discard drops every event. Used when no sink is configured.
type Discard struct{}

func (Discard) Publish(types.Event) bool { return true }
