// Package outbox drains the transactional outbox to the event bus. The drain
// loop is the only component that moves events from storage to the wire, so a
// domain change is visible on the bus iff its transaction committed.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/finbooks/finbooks/pkg/bus"
	"github.com/finbooks/finbooks/pkg/events"
)

var (
	published = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "finbooks",
		Subsystem: "outbox",
		Name:      "published_total",
		Help:      "Outbox rows successfully published and marked",
	})
	publishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finbooks",
		Subsystem: "outbox",
		Name:      "publish_failures_total",
		Help:      "Outbox rows that failed to publish or mark",
	}, []string{"stage"})
)

// Config controls the drain loop.
type Config struct {
	// Interval between drain passes.
	Interval time.Duration
	// BatchSize is the maximum rows fetched per pass.
	BatchSize int
}

// DefaultConfig drains once a second, 100 rows at a time.
var DefaultConfig = Config{
	Interval:  time.Second,
	BatchSize: 100,
}

// Publisher repeatedly fetches unpublished outbox rows in occurred_at order,
// publishes each as an envelope, and marks it published. Delivery is
// at-least-once: a crash between publish and mark republishes the row, and
// consumer-side dedupe absorbs it.
type Publisher struct {
	store    events.OutboxRepository
	bus      bus.Bus
	producer string
	cfg      Config
	logger   *slog.Logger
}

func NewPublisher(store events.OutboxRepository, b bus.Bus, producer string, cfg Config, logger *slog.Logger) *Publisher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig.Interval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig.BatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, bus: b, producer: producer, cfg: cfg, logger: logger}
}

// Run drains until ctx is canceled.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.Drain(ctx); err != nil {
				p.logger.Error("outbox drain pass failed", "error", err)
			}
		}
	}
}

// Drain performs one pass. A row that fails to publish is skipped and retried
// on the next pass; rows behind it still go out, so a single poison row cannot
// stall the stream.
func (p *Publisher) Drain(ctx context.Context) error {
	entries, err := p.store.FetchUnpublished(ctx, p.cfg.BatchSize)
	if err != nil {
		publishFailures.WithLabelValues("fetch").Inc()
		return fmt.Errorf("fetch unpublished: %w", err)
	}

	for _, entry := range entries {
		if err := p.publishOne(ctx, entry); err != nil {
			p.logger.Warn("outbox publish failed",
				"event_id", entry.EventID,
				"event_type", entry.EventType,
				"error", err,
			)
			continue
		}
		published.Inc()
	}
	return nil
}

func (p *Publisher) publishOne(ctx context.Context, entry events.OutboxEntry) error {
	subject, err := events.SubjectFor(entry.EventType)
	if err != nil {
		publishFailures.WithLabelValues("subject").Inc()
		return err
	}

	data, err := json.Marshal(entry.Envelope(p.producer))
	if err != nil {
		publishFailures.WithLabelValues("marshal").Inc()
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if err := p.bus.Publish(ctx, subject, data); err != nil {
		publishFailures.WithLabelValues("publish").Inc()
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	if err := p.store.MarkPublished(ctx, entry.Seq); err != nil {
		publishFailures.WithLabelValues("mark").Inc()
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}
