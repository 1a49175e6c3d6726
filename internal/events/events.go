// Package events defines the domain event envelope and topics shared by
// the API and the notifier.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/shophub/ecommerce-api/internal/kafka"
)

const (
	TypeUserRegistered = "UserRegistered"
	TypeOrderCreated   = "OrderCreated"
)

const (
	TopicUserRegistered = "user.registered"
	TopicOrderCreated   = "order.created"
)

// Partition key = correlation id, so all events for one user or order
// keep their ordering.
func PartitionKey(id string) []byte { return []byte(id) }

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type UserRegisteredPayload struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type OrderItem struct {
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}

type OrderCreatedPayload struct {
	OrderID      string      `json:"order_id"`
	ExternalID   string      `json:"external_id"`
	UserID       string      `json:"user_id"`
	Email        string      `json:"email"`
	CustomerName string      `json:"customer_name"`
	Items        []OrderItem `json:"items"`
	TotalCents   int         `json:"total_cents"`
	PaymentMode  string      `json:"payment_mode"`
}

// Publisher is satisfied by *kafka.Producer; Discard stands in when no
// broker is wired (demo mode).
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Discard struct{}

func (Discard) Publish(key, value []byte, headers ...kafkago.Header) {}

// Emit wraps payload in a versioned envelope and publishes it with the
// event-type headers the consumers filter on.
func Emit(p Publisher, producer, eventType, correlationID string, payload any) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(correlationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
