// Package consumer runs idempotent event consumers over the bus. A runner
// owns one subscription: it decodes envelopes, skips duplicates, invokes the
// handler with a retry budget for transient failures, and dead-letters what
// cannot be processed.
package consumer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/finbooks/finbooks/pkg/bus"
	"github.com/finbooks/finbooks/pkg/events"
	"github.com/finbooks/finbooks/pkg/fault"
	"github.com/finbooks/finbooks/pkg/retry"
)

var (
	processed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finbooks",
		Subsystem: "consumer",
		Name:      "events_processed_total",
		Help:      "Events whose handler completed successfully",
	}, []string{"consumer"})
	duplicates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finbooks",
		Subsystem: "consumer",
		Name:      "events_duplicate_total",
		Help:      "Events skipped or absorbed as already processed",
	}, []string{"consumer"})
	deadLettered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finbooks",
		Subsystem: "consumer",
		Name:      "events_dead_lettered_total",
		Help:      "Events routed to the DLQ",
	}, []string{"consumer"})
)

// Handler processes one decoded envelope. It owns its transaction and records
// the processed-events row inside it, so completion and side effects are
// atomically visible.
type Handler func(ctx context.Context, env events.Envelope) error

// Deduper answers whether a consumer already completed an event. It is a
// cheap pre-check; the transactional insert in the handler remains the
// authority under concurrent deliveries.
type Deduper interface {
	Seen(ctx context.Context, eventID uuid.UUID, consumer string) (bool, error)
}

// DeadLetterer records terminal failures.
type DeadLetterer interface {
	Record(ctx context.Context, env events.Envelope, subject string, procErr error, retryCount int) error
	RecordRaw(ctx context.Context, subject string, data []byte, procErr error) error
}

// Runner subscribes one consumer to one subject pattern.
type Runner struct {
	name    string
	pattern string
	bus     bus.Bus
	dedupe  Deduper
	dlq     DeadLetterer
	handler Handler
	retry   retry.Config
	logger  *slog.Logger
}

func NewRunner(name, pattern string, b bus.Bus, dedupe Deduper, dlq DeadLetterer, handler Handler, retryCfg retry.Config, logger *slog.Logger) *Runner {
	if retryCfg.MaxAttempts < 1 {
		retryCfg = retry.DefaultConfig
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		name:    name,
		pattern: pattern,
		bus:     b,
		dedupe:  dedupe,
		dlq:     dlq,
		handler: handler,
		retry:   retryCfg,
		logger:  logger.With("consumer", name),
	}
}

// Run consumes until ctx is canceled or the bus closes the subscription.
func (r *Runner) Run(ctx context.Context) error {
	ch, err := r.bus.Subscribe(ctx, r.pattern)
	if err != nil {
		return err
	}
	r.logger.Info("consumer started", "pattern", r.pattern)

	for msg := range ch {
		r.process(ctx, msg)
	}
	r.logger.Info("consumer stopped", "pattern", r.pattern)
	return nil
}

func (r *Runner) process(ctx context.Context, msg bus.Message) {
	env, err := events.DecodeEnvelope(msg.Data)
	if err != nil {
		r.logger.Warn("malformed envelope", "subject", msg.Subject, "error", err)
		if dlqErr := r.dlq.RecordRaw(ctx, msg.Subject, msg.Data, err); dlqErr != nil {
			r.logger.Error("dlq write failed", "subject", msg.Subject, "error", dlqErr)
			return
		}
		deadLettered.WithLabelValues(r.name).Inc()
		return
	}

	log := r.logger.With(
		"event_id", env.EventID,
		"event_type", env.EventType,
		"tenant_id", env.TenantID,
	)

	// The pre-check is advisory. MarkProcessed inside the handler's
	// transaction remains the authority, so a failed check falls through to
	// the handler rather than dropping the event.
	seen, err := r.dedupe.Seen(ctx, env.EventID, r.name)
	if err != nil {
		log.Warn("dedupe pre-check failed, handling anyway", "error", err)
	}
	if seen {
		duplicates.WithLabelValues(r.name).Inc()
		log.Debug("duplicate delivery skipped")
		return
	}

	attempts := 0
	err = retry.Do(ctx, r.retry, func(ctx context.Context) error {
		attempts++
		herr := r.handler(ctx, env)
		if herr != nil && !fault.Recoverable(herr) {
			return retry.Permanent(herr)
		}
		return herr
	})
	if err == nil {
		processed.WithLabelValues(r.name).Inc()
		log.Info("event processed")
		return
	}

	if fault.IsDuplicate(err) {
		// A concurrent delivery committed first. Normal path.
		duplicates.WithLabelValues(r.name).Inc()
		log.Debug("duplicate delivery absorbed")
		return
	}

	log.Warn("event processing failed", "attempts", attempts, "error", err)
	if dlqErr := r.dlq.Record(ctx, env, msg.Subject, err, attempts-1); dlqErr != nil {
		log.Error("dlq write failed", "error", dlqErr)
		return
	}
	deadLettered.WithLabelValues(r.name).Inc()
}
