package models

import "time"

// Product event types as they appear on the wire.
const (
	EventProductCreated = "product_created"
	EventProductUpdated = "product_updated"
	EventProductDeleted = "product_deleted"
)

// Bus topics. Every mutation is published to both: the general product
// stream and the stream consumed by the notification service.
const (
	TopicProductEvents = "product_events"
	TopicNotifications = "product_events_for_notifications"
)

// ProductEvent is the immutable message published after a durable mutation.
// Data carries the full denormalized snapshot (for deletes, the snapshot
// taken before the record was removed).
type ProductEvent struct {
	ID        string      `json:"event_id"`
	Type      string      `json:"type"`
	Data      ProductView `json:"data"`
	EmittedAt time.Time   `json:"emitted_at"`
}
