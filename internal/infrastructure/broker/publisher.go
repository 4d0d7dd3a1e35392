package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"dorebell/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	SinkName        = "broker"
	DefaultExchange = "dorebell.events"

	confirmTimeout = 10 * time.Second
)

var ErrUnhealthy = errors.New("broker connection is closed")

// Envelope is the message body published for every accepted event.
type Envelope struct {
	ID         string            `json:"id"`
	Kind       domain.EventKind  `json:"kind"`
	OccurredAt time.Time         `json:"occurredAt"`
	Order      *domain.Order     `json:"order,omitempty"`
	Contact    *domain.Contact   `json:"contact,omitempty"`
	Client     domain.ClientInfo `json:"client"`
}

// NewMessage builds a persistent JSON message; the routing key is the
// event kind.
func NewMessage(evt domain.Event, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(Envelope{
		ID:         evt.RecordID(),
		Kind:       evt.Kind,
		OccurredAt: now.UTC(),
		Order:      evt.Order,
		Contact:    evt.Contact,
		Client:     evt.Client,
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("serializing event: %w", err)
	}

	return amqp.Publishing{
		Headers: amqp.Table{
			"correlation_id": evt.RecordID(),
		},
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.RecordID(),
		Timestamp:    now.UTC(),
		Type:         string(evt.Kind),
		Body:         body,
	}, nil
}

// Publisher publishes accepted events to a topic exchange with publisher
// confirms, so downstream consumers can react to orders and inquiries.
type Publisher struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	exchange  string
	logger    *zap.Logger
	healthy   atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

func Dial(url, exchange string, logger *zap.Logger) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("enabling publisher confirms: %w", err)
	}

	p := &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		logger:   logger,
		done:     make(chan struct{}),
	}
	p.healthy.Store(true)

	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
	chanClosed := ch.NotifyClose(make(chan *amqp.Error, 1))

	go func() {
		select {
		case err := <-connClosed:
			p.healthy.Store(false)
			logger.Warn("RabbitMQ connection closed", zap.Error(err))
		case err := <-chanClosed:
			p.healthy.Store(false)
			logger.Warn("RabbitMQ channel closed", zap.Error(err))
		case <-p.done:
		}
	}()

	logger.Info("connected to RabbitMQ", zap.String("exchange", exchange))
	return p, nil
}

func (p *Publisher) Name() string {
	return SinkName
}

func (p *Publisher) IsHealthy() bool {
	return p.healthy.Load()
}

// Deliver publishes the event and waits for the broker's ack.
func (p *Publisher) Deliver(ctx context.Context, evt domain.Event) error {
	if !p.IsHealthy() {
		return ErrUnhealthy
	}

	msg, err := NewMessage(evt, time.Now())
	if err != nil {
		return err
	}

	routingKey := string(evt.Kind)
	deferred, err := p.channel.PublishWithDeferredConfirmWithContext(ctx, p.exchange, routingKey, false, false, msg)
	if err != nil {
		return fmt.Errorf("publishing %s: %w", routingKey, err)
	}

	timer := time.NewTimer(confirmTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-deferred.Done():
		if !deferred.Acked() {
			return fmt.Errorf("RabbitMQ NACK received for %s", evt.RecordID())
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("publisher confirm timeout for %s", evt.RecordID())
	}
}

func (p *Publisher) Close() error {
	p.closeOnce.Do(func() {
		p.logger.Info("closing RabbitMQ publisher")
		close(p.done)
		p.healthy.Store(false)
		if p.channel != nil {
			p.channel.Close()
		}
		if p.conn != nil {
			p.conn.Close()
		}
	})
	return nil
}
