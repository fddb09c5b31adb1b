package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"social-service/internal/observability"
)

const publishTimeout = 5 * time.Second

// Publisher sends JSON events to a topic exchange keyed by routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

type publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher dials amqpURL and declares exchange as a durable topic exchange.
func NewPublisher(amqpURL, exchange string) (Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Connect returns a live publisher for exchange, or one that drops events
// when amqpURL is empty or the broker is unreachable.
func Connect(amqpURL, exchange string, logger *zap.Logger) Publisher {
	if amqpURL == "" {
		logger.Warn("AMQP_URL not set; publishing disabled", zap.String("exchange", exchange))
		return NewNoopPublisher(logger)
	}
	pub, err := NewPublisher(amqpURL, exchange)
	if err != nil {
		logger.Warn("broker unavailable; publishing disabled", zap.String("exchange", exchange), zap.Error(err))
		return NewNoopPublisher(logger)
	}
	logger.Info("connected to broker", zap.String("exchange", exchange))
	return pub
}

func (p *publisher) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", routingKey, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		observability.IncAMQPPublishError(p.exchange)
		return amqp.ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		Type:         routingKey,
		Timestamp:    time.Now().UTC(),
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		observability.IncAMQPPublishError(p.exchange)
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	return nil
}

type noopPublisher struct {
	logger *zap.Logger
}

// NewNoopPublisher returns a publisher that drops events.
func NewNoopPublisher(logger *zap.Logger) Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &noopPublisher{logger: logger}
}

func (n *noopPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	n.logger.Debug("publishing disabled; dropping event", zap.String("routing_key", routingKey))
	return nil
}

func (n *noopPublisher) Close() error { return nil }
