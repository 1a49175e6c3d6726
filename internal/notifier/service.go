// Package notifier consumes domain events and dispatches transactional
// email for them.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/shophub/ecommerce-api/internal/email"
	"github.com/shophub/ecommerce-api/internal/events"
	kafkax "github.com/shophub/ecommerce-api/internal/kafka"
	"github.com/shophub/ecommerce-api/internal/redisx"
)

type Service struct {
	Redis       *redis.Client
	Sender      email.Sender
	ServiceName string
}

// seen dedups by event id so a redelivered message does not mail twice.
func (s *Service) seen(ctx context.Context, eventID string) bool {
	key := fmt.Sprintf(redisx.KeyDedup, "notifier", eventID)
	exists, _ := redisx.Exists(ctx, s.Redis, key)
	if exists {
		return true
	}
	_ = s.Redis.Set(ctx, key, "1", redisx.TTLDedup).Err()
	return false
}

func (s *Service) HandleUserRegistered(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.TypeUserRegistered {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}

	p, err := kafkax.UnwrapPayload[events.UserRegisteredPayload](env.Payload)
	if err != nil {
		return err
	}
	if err := s.Sender.Send(ctx, email.Welcome(p.Email, p.FirstName+" "+p.LastName)); err != nil {
		return err
	}
	log.Printf("welcome mail sent: user=%s", p.UserID)
	return nil
}

func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.TypeOrderCreated {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}

	p, err := kafkax.UnwrapPayload[events.OrderCreatedPayload](env.Payload)
	if err != nil {
		return err
	}
	if err := s.Sender.Send(ctx, email.OrderConfirmation(p.Email, p.CustomerName, p.OrderID, p.TotalCents)); err != nil {
		return err
	}
	log.Printf("order confirmation sent: order=%s", p.OrderID)
	return nil
}
