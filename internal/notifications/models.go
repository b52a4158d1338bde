package notifications

import (
	"time"

	"github.com/google/uuid"
)

type Channel string

const (
	ChannelEmail     Channel = "email"
	ChannelWebsocket Channel = "websocket"
)

type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
	DeliverySkipped DeliveryStatus = "skipped"
)

// Delivery logs one attempt to notify a recipient over a channel.
type Delivery struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	AlertID     *uuid.UUID     `json:"alert_id,omitempty" db:"alert_id"`
	Recipient   string         `json:"recipient" db:"recipient"`
	Channel     Channel        `json:"channel" db:"channel"`
	Status      DeliveryStatus `json:"status" db:"status"`
	ProviderID  *string        `json:"provider_id,omitempty" db:"provider_id"`
	Error       *string        `json:"error,omitempty" db:"error"`
	DeliveredAt time.Time      `json:"delivered_at" db:"delivered_at"`
}
