package publisher

import (
	"context"
	"time"

	audit "rently/pkg/platform/audit"
)

// StorePublisher persists audit events straight to a store. It is the default
// sink when no broker is configured and the sink used by tests.
type StorePublisher struct {
	store audit.Store
}

func NewStorePublisher(store audit.Store) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return p.store.Append(ctx, event)
}

// ChannelPublisher hands events to a buffered channel drained by a worker.
// Emission never blocks domain operations; if the buffer is full the event is
// dropped and the caller keeps going (audit is best-effort for the engine,
// the durable record is the ledger itself).
type ChannelPublisher struct {
	inbox chan<- audit.Event
}

func NewChannelPublisher(inbox chan<- audit.Event) *ChannelPublisher {
	return &ChannelPublisher{inbox: inbox}
}

func (p *ChannelPublisher) Emit(_ context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case p.inbox <- event:
	default:
	}
	return nil
}

// FanoutPublisher emits to several publishers, returning the first error
// after all sinks have seen the event.
type FanoutPublisher struct {
	sinks []audit.Publisher
}

func Fanout(sinks ...audit.Publisher) *FanoutPublisher {
	return &FanoutPublisher{sinks: sinks}
}

func (p *FanoutPublisher) Emit(ctx context.Context, event audit.Event) error {
	var firstErr error
	for _, sink := range p.sinks {
		if err := sink.Emit(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
