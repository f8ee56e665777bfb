package notify

import (
	"context"

	"github.com/oshokin/zone-monitor/internal/logger"
)

// defaultQueueSize bounds the number of undelivered events.
const defaultQueueSize = 32

// Async delivers events to a wrapped notifier from a single worker goroutine,
// so slow transports never stretch an alarm pulse.
type Async struct {
	// next receives the events.
	next Notifier
	// queue holds events waiting for delivery.
	queue chan Event
}

// NewAsync wraps next. Call Run to start delivery.
func NewAsync(next Notifier) *Async {
	return &Async{
		next:  next,
		queue: make(chan Event, defaultQueueSize),
	}
}

// Notify enqueues the event. When the queue is full the event is dropped and logged.
func (a *Async) Notify(ctx context.Context, event Event) error {
	select {
	case a.queue <- event:
	default:
		logger.WarnKV(ctx, "Alert queue full, dropping event", "kind", event.Kind, "event_id", event.ID.String())
	}

	return nil
}

// Run delivers queued events until ctx is canceled.
func (a *Async) Run(ctx context.Context) {
	ctx = logger.WithName(ctx, "notifier")

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-a.queue:
			if err := a.next.Notify(ctx, event); err != nil {
				logger.ErrorKV(ctx, "Alert delivery failed", "kind", event.Kind, "error", err)
			}
		}
	}
}
