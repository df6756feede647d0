package outbox_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/internal/infrastructure/outbox"
	"github.com/finbooks/finbooks/pkg/bus"
	"github.com/finbooks/finbooks/pkg/events"
)

// fakeStore is an in-memory events.OutboxRepository.
type fakeStore struct {
	mu      sync.Mutex
	entries []events.OutboxEntry
	marked  map[int64]bool
}

func newFakeStore(entries ...events.OutboxEntry) *fakeStore {
	return &fakeStore{entries: entries, marked: make(map[int64]bool)}
}

func (s *fakeStore) FetchUnpublished(_ context.Context, batchSize int) ([]events.OutboxEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []events.OutboxEntry
	for _, e := range s.entries {
		if s.marked[e.Seq] {
			continue
		}
		out = append(out, e)
		if len(out) == batchSize {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) MarkPublished(_ context.Context, seq int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked[seq] = true
	return nil
}

func (s *fakeStore) markedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.marked)
}

func outboxEntry(seq int64, eventType string) events.OutboxEntry {
	payload, _ := json.Marshal(map[string]string{"k": "v"})
	return events.OutboxEntry{
		Seq:        seq,
		EventID:    uuid.New(),
		EventType:  eventType,
		TenantID:   uuid.New(),
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

func TestPublisher_DrainPublishesAndMarks(t *testing.T) {
	store := newFakeStore(
		outboxEntry(1, "gl.entry.posted"),
		outboxEntry(2, "gl.entry.reversed"),
	)
	b := bus.NewMemoryBus(slog.Default())
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := b.Subscribe(ctx, "gl.events.>")
	require.NoError(t, err)

	p := outbox.NewPublisher(store, b, "gld", outbox.Config{BatchSize: 10}, slog.Default())
	require.NoError(t, p.Drain(ctx))

	assert.Equal(t, 2, store.markedCount())

	first := <-ch
	assert.Equal(t, "gl.events.entry.posted", first.Subject)

	env, err := events.DecodeEnvelope(first.Data)
	require.NoError(t, err)
	assert.Equal(t, "gl.entry.posted", env.EventType)
	assert.Equal(t, "gld", env.Producer)
	assert.Equal(t, events.SchemaVersion, env.SchemaVersion)

	second := <-ch
	assert.Equal(t, "gl.events.entry.reversed", second.Subject)
}

func TestPublisher_SkipsFailedRowAndContinues(t *testing.T) {
	bad := outboxEntry(1, "notype")
	good := outboxEntry(2, "gl.entry.posted")
	store := newFakeStore(bad, good)

	b := bus.NewMemoryBus(slog.Default())
	defer b.Close()

	p := outbox.NewPublisher(store, b, "gld", outbox.Config{BatchSize: 10}, slog.Default())
	require.NoError(t, p.Drain(context.Background()))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.False(t, store.marked[1], "undeliverable row stays unpublished")
	assert.True(t, store.marked[2], "row behind the failure still goes out")
}

func TestPublisher_SecondDrainIsEmpty(t *testing.T) {
	store := newFakeStore(outboxEntry(1, "gl.entry.posted"))
	b := bus.NewMemoryBus(slog.Default())
	defer b.Close()

	p := outbox.NewPublisher(store, b, "gld", outbox.Config{BatchSize: 10}, slog.Default())
	require.NoError(t, p.Drain(context.Background()))
	require.NoError(t, p.Drain(context.Background()))

	assert.Equal(t, 1, store.markedCount())
}

func TestPublisher_RunStopsOnCancel(t *testing.T) {
	store := newFakeStore(outboxEntry(1, "gl.entry.posted"))
	b := bus.NewMemoryBus(slog.Default())
	defer b.Close()

	p := outbox.NewPublisher(store, b, "gld", outbox.Config{Interval: 5 * time.Millisecond, BatchSize: 10}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return store.markedCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
