package mykafka

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type UserEvent struct {
	Type       string    `json:"type"`
	UserID     uint      `json:"user_id"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       uint      `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	UserID        uint      `json:"user_id"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	TotalAmount   string    `json:"total_amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  uint      `json:"product_id"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Message struct {
	Topic string
	Key   string
	Value []byte
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Topic: topic, Key: key, Value: data})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Messages(topic string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, m := range r.messages {
		if topic == "" || m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}
