package notify

import "context"

// Sender performs one delivery attempt. ctx carries the attempt deadline.
type Sender interface {
	Send(ctx context.Context, event Event) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, event Event) error

func (f SenderFunc) Send(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// NopSender discards events. It is used when no sink is configured.
type NopSender struct{}

func (NopSender) Send(context.Context, Event) error { return nil }
