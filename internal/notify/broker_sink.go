package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// BrokerSink publishes events as persistent JSON messages on a durable
// RabbitMQ queue. The connection is opened lazily and reopened after it drops.
type BrokerSink struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   publisher
}

func NewBrokerSink(url, queue string) *BrokerSink {
	return &BrokerSink{url: url, queue: queue}
}

func (s *BrokerSink) Name() string { return "broker" }

func (s *BrokerSink) channel() (publisher, error) {
	if s.ch != nil && (s.conn == nil || !s.conn.IsClosed()) {
		return s.ch, nil
	}
	conn, err := amqp.Dial(s.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(
		s.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	s.conn, s.ch = conn, ch
	return ch, nil
}

func (s *BrokerSink) Deliver(ctx context.Context, event domain.NotificationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ch, err := s.channel()
	if err != nil {
		return err
	}

	logger.ExternalServiceCall("RabbitMQ", "Publish", "queue", s.queue, "eventID", event.ID)
	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		s.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Type:         string(event.Kind),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	logger.ExternalServiceResult("RabbitMQ", "Publish", err, "queue", s.queue)
	if err != nil {
		s.ch = nil
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// Close releases the broker connection.
func (s *BrokerSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ch = nil
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
