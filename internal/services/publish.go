package services

import (
	"context"
	"log"
	"time"

	"brotodesk/internal/events"
)

const publishTimeout = 5 * time.Second

// publish hands evt to the publisher after the request's own work has
// committed. Failures are logged and never reach the caller. Publishers that
// talk to a broker are wrapped in events.Async, so this only enqueues.
func publish(ctx context.Context, p events.Publisher, evt events.Event) {
	if p == nil {
		return
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.Publish(ctx, evt); err != nil {
		log.Printf("[events] failed to publish %s for complaint %s: %v", evt.Type, evt.ComplaintID, err)
	}
}
