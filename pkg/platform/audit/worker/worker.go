package worker

import (
	"context"
	"log/slog"

	audit "rently/pkg/platform/audit"
)

// Worker drains audit events from a channel into a store. Persisting audit
// lines never blocks a domain operation; failures are logged, not propagated.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func New(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to persist audit event",
					"action", string(event.Action),
					"error", err.Error(),
				)
			}
		}
	}
}
