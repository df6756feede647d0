// Package bus provides the publish/subscribe capability the event substrate
// runs on. Two backends share one interface: an in-memory fan-out for
// zero-infrastructure test runs and a NATS adapter for production. Delivery
// guarantees come from the outbox and the processed-events ledger, not from
// the bus itself.
package bus

import "context"

// Message is a single delivery from the bus.
type Message struct {
	Subject string
	Data    []byte
	Headers map[string]string
	Reply   string
}

// Bus is the publish/subscribe capability. Publish is fire-and-forget at the
// transport level. Subscribe returns a channel that delivers every message
// whose subject matches the pattern; the channel is closed when the context
// is canceled or the bus shuts down. Patterns use "*" to match exactly one
// token and ">" to match one or more trailing tokens.
type Bus interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Subscribe(ctx context.Context, pattern string) (<-chan Message, error)
	Close() error
}
