package store

import (
	"context"
	"time"

	"github.com/PratikDhanave/delivery-time-analytics/internal/models"
)

// Record is an event together with its idempotency key.
type Record struct {
	EventID string
	Event   models.Event
}

// EventStore persists delivery events per tenant.
type EventStore interface {
	// InsertEvent returns inserted=false when (tenantID, eventID) already exists.
	InsertEvent(ctx context.Context, tenantID, eventID string, e models.Event) (bool, error)
	// InsertEvents stores records in one round trip and returns how many were new.
	InsertEvents(ctx context.Context, tenantID string, records []Record) (int, error)
	// ListEvents returns the tenant's events with timestamps in [from,to),
	// ascending by timestamp and then by insertion order.
	ListEvents(ctx context.Context, tenantID string, from, to time.Time) ([]models.Event, error)
	Ping(ctx context.Context) error
	Close()
}
