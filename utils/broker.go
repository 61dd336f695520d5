package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const RoutingKeyOrderPlaced = "order.placed"

type OrderEvent struct {
	Event      string    `json:"event"`
	OrderID    uint      `json:"orderId"`
	CustomerID uint      `json:"customerId"`
	Amount     float64   `json:"amount"`
	Discount   float64   `json:"discount"`
	ItemCount  int       `json:"itemCount"`
	PlacedAt   time.Time `json:"placedAt"`
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderEvent) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderPlaced(context.Context, OrderEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }

var ErrPublisherClosed = errors.New("broker: publisher closed")

const reconnectInterval = 5 * time.Second

// RabbitPublisher publishes order events to a durable topic exchange. A lost
// connection or channel is redialled in the background, and a publish that
// finds it closed redials before sending.
type RabbitPublisher struct {
	mu       sync.Mutex
	url      string
	exchange string
	log      logrus.FieldLogger
	conn     *amqp.Connection
	channel  *amqp.Channel
	closed   bool
}

func NewRabbitPublisher(url, exchange string, log logrus.FieldLogger) (*RabbitPublisher, error) {
	p := &RabbitPublisher{
		url:      url,
		exchange: exchange,
		log:      log.WithField("component", "broker"),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *RabbitPublisher) connectLocked() error {
	if p.conn != nil && !p.conn.IsClosed() {
		p.conn.Close()
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		p.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}

	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
	channelClosed := channel.NotifyClose(make(chan *amqp.Error, 1))
	p.conn = conn
	p.channel = channel
	go p.watch(conn, connClosed, channelClosed)
	return nil
}

// watch redials after the broker drops conn. A graceful close, from Close or
// from a redial that replaced conn, ends the watch.
func (p *RabbitPublisher) watch(conn *amqp.Connection, connClosed, channelClosed <-chan *amqp.Error) {
	var reason *amqp.Error
	select {
	case reason = <-connClosed:
	case reason = <-channelClosed:
	}
	if reason == nil {
		return
	}
	p.log.WithError(reason).Warn("Broker connection lost, reconnecting")

	ticker := time.NewTicker(reconnectInterval)
	defer ticker.Stop()
	for range ticker.C {
		p.mu.Lock()
		if p.closed || p.conn != conn {
			p.mu.Unlock()
			return
		}
		err := p.connectLocked()
		p.mu.Unlock()

		if err == nil {
			p.log.Info("Broker reconnected")
			return
		}
		p.log.WithError(err).Warn("Broker reconnect failed")
	}
}

func (p *RabbitPublisher) PublishOrderPlaced(ctx context.Context, event OrderEvent) error {
	event.Event = RoutingKeyOrderPlaced
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPublisherClosed
	}
	if p.conn == nil || p.conn.IsClosed() || p.channel.IsClosed() {
		if err := p.connectLocked(); err != nil {
			return fmt.Errorf("reconnect broker: %w", err)
		}
	}

	return p.channel.PublishWithContext(ctx,
		p.exchange,
		RoutingKeyOrderPlaced,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    event.PlacedAt,
			Body:         body,
		},
	)
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
