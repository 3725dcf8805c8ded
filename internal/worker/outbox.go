package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"yurt/internal/model"
)

type EventStore interface {
	PendingEvents(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkEventPublished(ctx context.Context, id string) error
	RecordEventAttempt(ctx context.Context, id string) error
	AbandonEvent(ctx context.Context, id string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev model.OutboxEvent) error
}

// OutboxWorker drains pending broadcast intents to the broker on a
// ticker. A broker failure never reaches the request path: the event
// just stays pending and is retried on the next tick, until the attempt
// budget runs out and the event is parked as failed.
type OutboxWorker struct {
	store       EventStore
	publisher   EventPublisher
	interval    time.Duration
	batchSize   int
	maxAttempts int
}

func NewOutboxWorker(store EventStore, publisher EventPublisher) *OutboxWorker {
	return &OutboxWorker{
		store:       store,
		publisher:   publisher,
		interval:    2 * time.Second,
		batchSize:   50,
		maxAttempts: 5,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	slog.Info("starting outbox worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if err := w.processBatch(ctx); err != nil {
				slog.Error("outbox batch failed", "error", err)
			}
		}
	}
}

func (w *OutboxWorker) processBatch(ctx context.Context) error {
	events, err := w.store.PendingEvents(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending events: %w", err)
	}

	for _, ev := range events {
		if err := w.publisher.Publish(ctx, ev); err != nil {
			if ev.Attempts+1 >= w.maxAttempts {
				slog.Error("event abandoned after retries",
					"event", ev.ID, "type", ev.Type, "order", ev.OrderID, "error", err)
				if err := w.store.AbandonEvent(ctx, ev.ID); err != nil {
					slog.Error("failed to abandon event", "event", ev.ID, "error", err)
				}
				continue
			}
			slog.Warn("event publish failed, will retry",
				"event", ev.ID, "type", ev.Type, "attempt", ev.Attempts+1, "error", err)
			if err := w.store.RecordEventAttempt(ctx, ev.ID); err != nil {
				slog.Error("failed to record event attempt", "event", ev.ID, "error", err)
			}
			continue
		}

		if err := w.store.MarkEventPublished(ctx, ev.ID); err != nil {
			slog.Error("failed to mark event published", "event", ev.ID, "error", err)
		}
	}

	return nil
}
