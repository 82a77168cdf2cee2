package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/safar/storefront-api/internal/config"
	"github.com/safar/storefront-api/internal/models"
	"go.uber.org/zap"
)

const DefaultOrderCreatedQueue = "order.created"

// Publisher announces committed orders to the outside world.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, o *models.Order) error
	Close() error
}

// channel is the slice of *amqp.Channel the publisher needs.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// dialFunc opens a fresh connection and channel. The closer releases the connection.
type dialFunc func() (channel, io.Closer, error)

// AMQPPublisher publishes to a durable queue on the default exchange. When the
// broker drops the channel it dials again on the next publish.
type AMQPPublisher struct {
	mu     sync.Mutex
	dial   dialFunc
	conn   io.Closer
	ch     channel
	queue  string
	logger *zap.Logger
}

func amqpDialer(url string) dialFunc {
	return func() (channel, io.Closer, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, nil, fmt.Errorf("dial amqp: %w", err)
		}

		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("open channel: %w", err)
		}

		return ch, conn, nil
	}
}

// Connect returns a broker-backed publisher, or NopPublisher when no broker is
// configured or it is unreachable at startup. Orders never wait on the broker.
func Connect(cfg config.EventsConfig, logger *zap.Logger) Publisher {
	if cfg.AMQPURL == "" {
		return NopPublisher{}
	}

	p, err := Dial(cfg.AMQPURL, cfg.OrderQueue, logger)
	if err != nil {
		logger.Warn("order events disabled, broker unreachable", zap.Error(err))
		return NopPublisher{}
	}

	logger.Info("publishing order events", zap.String("queue", cfg.OrderQueue))
	return p
}

// Dial connects to the broker and declares the queue.
func Dial(url, queue string, logger *zap.Logger) (*AMQPPublisher, error) {
	return newPublisher(amqpDialer(url), queue, logger)
}

func newPublisher(dial dialFunc, queue string, logger *zap.Logger) (*AMQPPublisher, error) {
	if queue == "" {
		queue = DefaultOrderCreatedQueue
	}

	p := &AMQPPublisher{dial: dial, queue: queue, logger: logger}
	if err := p.connect(); err != nil {
		return nil, err
	}

	return p, nil
}

// connect replaces the current connection. Callers hold mu, except newPublisher.
func (p *AMQPPublisher) connect() error {
	p.release()

	ch, conn, err := p.dial()
	if err != nil {
		return err
	}

	// Declare up front so a publish never fails on missing infrastructure.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare %s: %w", p.queue, err)
	}

	p.ch, p.conn = ch, conn
	return nil
}

func (p *AMQPPublisher) release() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.release()
	return nil
}

func (p *AMQPPublisher) PublishOrderCreated(ctx context.Context, o *models.Order) error {
	ev := NewOrderCreated(o)

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderCreated: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    ev.OccurredAt,
		Type:         ev.EventType,
		Body:         body,
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := p.publish(pubCtx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", p.queue, err)
	}

	return nil
}

func (p *AMQPPublisher) publish(ctx context.Context, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		p.logger.Info("reconnecting order event publisher", zap.String("queue", p.queue))
		if err := p.connect(); err != nil {
			return err
		}
	}

	err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
	if !errors.Is(err, amqp.ErrClosed) {
		return err
	}

	p.logger.Info("order event channel closed, reconnecting", zap.String("queue", p.queue))
	if err := p.connect(); err != nil {
		return err
	}

	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
}

// NopPublisher is used when no broker is configured or reachable.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, *models.Order) error { return nil }

func (NopPublisher) Close() error { return nil }
