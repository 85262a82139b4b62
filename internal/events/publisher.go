// Package events defines the outbound event surface. Publishing is
// fire-and-forget from the engine's point of view: a failed publish is
// logged, never rolled into the ledger transaction.
package events

// Publisher emits domain events to an external broker.
type Publisher interface {
	Publish(topic string, event any) error
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(string, any) error { return nil }
