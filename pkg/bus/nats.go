package bus

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSConfig holds NATS connection parameters.
type NATSConfig struct {
	URL  string
	Name string
}

// NATSBus is a thin adapter over a NATS connection. Subject wildcards are
// evaluated by the server with the same grammar the in-memory bus implements.
type NATSBus struct {
	conn *nats.Conn
}

// NewNATSBus connects to NATS with the given configuration.
func NewNATSBus(cfg NATSConfig) (*NATSBus, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	opts := []nats.Option{
		nats.MaxReconnects(-1),
	}
	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("bus: nats connect %s: %w", url, err)
	}
	return &NATSBus{conn: conn}, nil
}

// Publish sends data on the subject.
func (b *NATSBus) Publish(_ context.Context, subject string, data []byte) error {
	if err := ValidateSubject(subject); err != nil {
		return err
	}
	if err := b.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("bus: nats publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe creates a NATS subscription for the pattern and bridges its
// messages into the common shape. The channel is closed when ctx is canceled.
func (b *NATSBus) Subscribe(ctx context.Context, pattern string) (<-chan Message, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}

	inbox := make(chan *nats.Msg, DefaultBuffer)
	sub, err := b.conn.ChanSubscribe(pattern, inbox)
	if err != nil {
		return nil, fmt.Errorf("bus: nats subscribe %s: %w", pattern, err)
	}

	out := make(chan Message, DefaultBuffer)
	go func() {
		defer close(out)
		defer sub.Unsubscribe() //nolint:errcheck // best-effort teardown
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-inbox:
				if !ok {
					return
				}
				msg := Message{
					Subject: m.Subject,
					Data:    m.Data,
					Reply:   m.Reply,
				}
				if len(m.Header) > 0 {
					msg.Headers = make(map[string]string, len(m.Header))
					for k := range m.Header {
						msg.Headers[k] = m.Header.Get(k)
					}
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close drains and closes the connection.
func (b *NATSBus) Close() error {
	if b.conn == nil || b.conn.IsClosed() {
		return nil
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
		return fmt.Errorf("bus: nats drain: %w", err)
	}
	return nil
}
