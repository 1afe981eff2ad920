package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/NasaVasa/partprice/internal/domain"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher mirrors every stored notification onto a durable queue for
// out-of-process consumers (mail, push).
type Publisher struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     channel
	queue  string
	logger *zap.Logger
}

func NewPublisher(url, queue string, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	return &Publisher{conn: conn, ch: ch, queue: queue, logger: logger}, nil
}

func (p *Publisher) Name() string { return "amqp" }

func (p *Publisher) Deliver(_ context.Context, n domain.Notification) error {
	msg, err := publishing(n)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Publish("", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish notification %d: %w", n.ID, err)
	}

	p.logger.Debug("notification published",
		zap.Uint("notification_id", n.ID),
		zap.Uint("user_id", n.UserID),
		zap.String("queue", p.queue),
	)
	return nil
}

func (p *Publisher) Close() error {
	var errs []error
	if err := p.ch.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close rabbitmq channel: %w", err))
	}
	if p.conn == nil {
		return errors.Join(errs...)
	}
	if err := p.conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close rabbitmq connection: %w", err))
	}
	return errors.Join(errs...)
}

func publishing(n domain.Notification) (amqp.Publishing, error) {
	body, err := json.Marshal(n)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    strconv.FormatUint(uint64(n.ID), 10),
		Type:         string(n.Type),
		Timestamp:    n.CreatedAt,
		Body:         body,
	}, nil
}
