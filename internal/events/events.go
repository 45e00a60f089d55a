// Package events publishes complaint lifecycle notifications to
// downstream consumers. Publishing is best effort; wrap a broker-backed
// Publisher in Async to keep delivery off the request path.
package events

import (
	"context"
	"time"
)

const (
	ComplaintCreated       = "complaint.created"
	ComplaintStatusUpdated = "complaint.status_updated"
	ComplaintAssigned      = "complaint.assigned"
	ComplaintDeleted       = "complaint.deleted"
)

type Event struct {
	Type        string    `json:"type"`
	ComplaintID string    `json:"complaintId"`
	ActorID     string    `json:"actorId"`
	Status      string    `json:"status,omitempty"`
	AssigneeID  string    `json:"assigneeId,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
