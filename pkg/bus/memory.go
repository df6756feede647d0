package bus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var memoryDropped = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "finbooks",
		Subsystem: "bus",
		Name:      "dropped_total",
		Help:      "Messages dropped because a subscriber buffer was full",
	},
	[]string{"pattern"},
)

// DefaultBuffer is the per-subscriber channel capacity of the in-memory bus.
// The in-process test path relies on this being large enough that a suite
// never drops; slow production-like subscribers are expected to use NATS.
const DefaultBuffer = 256

// MemoryBus is a process-wide fan-out. Each Subscribe registers a new,
// independently buffered receiver; a Publish delivers a copy to every
// receiver whose pattern matches the subject. A publisher is never blocked
// by a slow subscriber: when a receiver's buffer is full the message is
// dropped for that receiver and counted.
type MemoryBus struct {
	mu      sync.Mutex
	subs    map[int]*memorySub
	nextID  int
	buffer  int
	closed  bool
	logger  *slog.Logger
}

type memorySub struct {
	pattern string
	ch      chan Message
	done    chan struct{}
}

// MemoryOption configures a MemoryBus.
type MemoryOption func(*MemoryBus)

// WithBuffer overrides the per-subscriber channel capacity.
func WithBuffer(n int) MemoryOption {
	return func(b *MemoryBus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// NewMemoryBus creates an in-memory bus.
func NewMemoryBus(logger *slog.Logger, opts ...MemoryOption) *MemoryBus {
	if logger == nil {
		logger = slog.Default()
	}
	b := &MemoryBus{
		subs:   make(map[int]*memorySub),
		buffer: DefaultBuffer,
		logger: logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers data to every matching subscriber.
func (b *MemoryBus) Publish(_ context.Context, subject string, data []byte) error {
	if err := ValidateSubject(subject); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if !Match(sub.pattern, subject) {
			continue
		}
		msg := Message{Subject: subject, Data: data}
		select {
		case sub.ch <- msg:
		default:
			memoryDropped.WithLabelValues(sub.pattern).Inc()
			b.logger.Warn("memory bus dropped message",
				"subject", subject,
				"pattern", sub.pattern,
			)
		}
	}
	return nil
}

// Subscribe registers a receiver for the pattern. The returned channel is
// closed when ctx is canceled or the bus is closed.
func (b *MemoryBus) Subscribe(ctx context.Context, pattern string) (<-chan Message, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}

	sub := &memorySub{
		pattern: pattern,
		ch:      make(chan Message, b.buffer),
		done:    make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub.ch, nil
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-sub.done:
		}
		b.mu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub.ch)
		}
		b.mu.Unlock()
	}()

	return sub.ch, nil
}

// Close shuts the bus down and closes all subscriber channels.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.done)
		close(sub.ch)
	}
	return nil
}
