package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"classcare-chatbot/internal/model"
)

// MessagePublisher hands chat messages to the persist queue so HTTP replies
// do not wait on MySQL writes.
type MessagePublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewMessagePublisher(conn *amqp.Connection, queueName string) *MessagePublisher {
	return &MessagePublisher{
		conn:      conn,
		queueName: queueName,
	}
}

// Envelope is the queue wire format. ChatMessage hides Metadata from API
// JSON, so the queue carries it explicitly. CreatedAt is nanoseconds since
// the epoch: the two turns of one exchange can be written microseconds
// apart, and second precision would collapse their ordering.
type Envelope struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Metadata  string `json:"metadata"`
	CreatedAt int64  `json:"created_at"`
}

func NewEnvelope(msg model.ChatMessage) Envelope {
	return Envelope{
		ID:        msg.ID,
		SessionID: msg.SessionID,
		Role:      msg.Role,
		Content:   msg.Content,
		Metadata:  msg.Metadata,
		CreatedAt: msg.CreatedAt.UnixNano(),
	}
}

func (e Envelope) Message() model.ChatMessage {
	return model.ChatMessage{
		ID:        e.ID,
		SessionID: e.SessionID,
		Role:      e.Role,
		Content:   e.Content,
		Metadata:  e.Metadata,
		CreatedAt: time.Unix(0, e.CreatedAt),
	}
}

func (p *MessagePublisher) Publish(ctx context.Context, msg model.ChatMessage) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(NewEnvelope(msg))
	if err != nil {
		return fmt.Errorf("marshal message payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish message failed: %w", err)
	}
	return nil
}
