package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Envelope is the canonical event envelope published to NATS.
type Envelope struct {
	ID            uuid.UUID `json:"id"`
	CorrelationID uuid.UUID `json:"correlation_id"`
	Topic         string    `json:"topic"`
	EventType     string    `json:"event_type"`
	Service       string    `json:"service"`
	Timestamp     time.Time `json:"timestamp"`
	Payload       any       `json:"payload,omitempty"`
}

// ProductLifecycleEvent is the payload for evt.product.* events.
type ProductLifecycleEvent struct {
	ProductID          string          `json:"product_id"`
	SerialNumber       string          `json:"serial_number"`
	Status             string          `json:"status"`
	ManufacturerWallet string          `json:"manufacturer_wallet"`
	CustomerWallet     string          `json:"customer_wallet,omitempty"`
	TotalWithdrawn     decimal.Decimal `json:"total_withdrawn"`
	APYEarned          decimal.Decimal `json:"apy_earned"`
}
