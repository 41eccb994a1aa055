package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the canonical event envelope published to NATS.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
	Topic         string          `json:"topic"`
	EventType     string          `json:"event_type"`
	Version       string          `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
}

// CompanyRegisteredEvent is raised when a participant joins the registry.
type CompanyRegisteredEvent struct {
	Company Company `json:"company"`
}

// ListingCreatedEvent is raised when a seller posts credits for sale.
type ListingCreatedEvent struct {
	Listing Listing `json:"listing"`
}

// TradeSettledEvent is raised after an atomic settlement completes.
type TradeSettledEvent struct {
	Transaction Transaction `json:"transaction"`
	BlockIndex  int64       `json:"block_index"`
}

// InquiryRecordedEvent carries the data the notification collaborator needs
// to deliver a seller inquiry. Delivery happens outside the core.
type InquiryRecordedEvent struct {
	Contact   InquiryContact `json:"contact"`
	BuyerID   string         `json:"buyer_id"`
	BuyerName string         `json:"buyer_name"`
}
