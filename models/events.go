package models

import "time"

// Catalog event types published after a successful commit.
const (
	EventGoodCreated      = "good_created"
	EventGoodUpdated      = "good_updated"
	EventGoodDeleted      = "good_deleted"
	EventVariationCreated = "variation_created"
	EventVariationUpdated = "variation_updated"
	EventVariationDeleted = "variation_deleted"
	EventPhotoUploaded    = "photo_uploaded"
	EventPhotoDeleted     = "photo_deleted"
	EventStockUpdated     = "stock_updated"
)

// CatalogEvent is the JSON envelope sent to SNS/SQS.
type CatalogEvent struct {
	EventType      string    `json:"event_type"`
	GoodID         string    `json:"good_id,omitempty"`
	VariationID    string    `json:"variation_id,omitempty"`
	PhotoID        string    `json:"photo_id,omitempty"`
	RemainingStock *int      `json:"remaining_stock,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
