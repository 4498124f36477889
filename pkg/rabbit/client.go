package rabbit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/ordersync-backend/pkg/config"
	"github.com/angelmondragon/ordersync-backend/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	// ErrRetriesExhausted reports that the broker stayed unreachable for
	// the whole bounded retry window. The process cannot proceed without
	// the broker, so callers treat this as fatal.
	ErrRetriesExhausted = errors.New("rabbit: connect retries exhausted")

	errClientClosed = errors.New("rabbit: client closed")
)

// Client owns the connection and channel lifecycle to the broker. It is
// created once per process and injected into the publisher and the
// dispatcher; nothing re-dials per call.
type Client struct {
	cfg  config.RabbitConfig
	logg *logger.Logger

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
}

// New dials the broker, retrying at a fixed interval up to the configured
// attempt bound, and leaves the channel in confirm mode so publishes can
// block until the broker accepts them.
func New(ctx context.Context, cfg config.RabbitConfig, logg *logger.Logger) (*Client, error) {
	c := &Client{cfg: cfg, logg: logg}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "exchange", cfg.Exchange), "rabbit client connected")
	}
	return c, nil
}

// connectLocked runs the bounded fixed-interval dial loop. Callers hold mu.
func (c *Client) connectLocked(ctx context.Context) error {
	attempts := c.cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}
	interval := c.cfg.ConnectInterval
	if interval <= 0 {
		interval = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if c.closed {
			return errClientClosed
		}

		conn, ch, err := c.dial()
		if err == nil {
			c.conn = conn
			c.ch = ch
			c.watchClose(conn)
			return nil
		}
		lastErr = err

		if c.logg != nil {
			logCtx := c.logg.WithFields(ctx, map[string]any{
				"attempt":  attempt,
				"attempts": attempts,
			})
			c.logg.Warn(logCtx, "broker unreachable, retrying at fixed interval")
		}

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, attempts, lastErr)
}

func (c *Client) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(c.cfg.URI)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// watchClose clears the cached connection when the broker drops it, so the
// next operation runs the same bounded reconnect procedure. In-flight
// unacked deliveries are redelivered by the broker after reconnect.
func (c *Client) watchClose(conn *amqp.Connection) {
	notify := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		reason, ok := <-notify
		if !ok {
			return
		}
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
			c.ch = nil
		}
		closed := c.closed
		c.mu.Unlock()
		if c.logg != nil && !closed {
			c.logg.Error(context.Background(), "broker connection lost", reason)
		}
	}()
}

// channel returns a usable channel, reconnecting if the broker dropped us.
func (c *Client) channel(ctx context.Context) (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errClientClosed
	}
	if c.ch != nil && !c.ch.IsClosed() {
		return c.ch, nil
	}
	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}
	return c.ch, nil
}

// DeclareExchange declares a durable topic exchange. Safe to repeat.
func (c *Client) DeclareExchange(ctx context.Context, name string) error {
	ch, err := c.channel(ctx)
	if err != nil {
		return err
	}
	return ch.ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil)
}

// DeclareQueue declares a durable queue that survives broker restarts.
func (c *Client) DeclareQueue(ctx context.Context, name string) (amqp.Queue, error) {
	ch, err := c.channel(ctx)
	if err != nil {
		return amqp.Queue{}, err
	}
	return ch.QueueDeclare(name, true, false, false, false, nil)
}

// Bind binds the queue to the exchange under the routing key.
func (c *Client) Bind(ctx context.Context, queue, exchange, routingKey string) error {
	ch, err := c.channel(ctx)
	if err != nil {
		return err
	}
	return ch.QueueBind(queue, routingKey, exchange, false, nil)
}

// Publish sends one persistent message and blocks until the broker
// confirms it has accepted it.
func (c *Client) Publish(ctx context.Context, exchange, routingKey string, body []byte, headers amqp.Table) error {
	ch, err := c.channel(ctx)
	if err != nil {
		return err
	}

	if c.cfg.PublishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.PublishTimeout)
		defer cancel()
	}

	confirmation, err := ch.PublishWithDeferredConfirmWithContext(
		ctx,
		exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Headers:      headers,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing to %s/%s: %w", exchange, routingKey, err)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("awaiting broker confirm: %w", err)
	}
	if !acked {
		return fmt.Errorf("broker rejected message on %s/%s", exchange, routingKey)
	}
	return nil
}

// Consume yields the queue's deliveries with manual acknowledgement. The
// returned channel closes when the broker connection drops; callers
// re-enter Consume to resume after the reconnect procedure.
func (c *Client) Consume(ctx context.Context, queue string) (<-chan amqp.Delivery, error) {
	ch, err := c.channel(ctx)
	if err != nil {
		return nil, err
	}
	return ch.Consume(queue, "", false, false, false, false, nil)
}

// Ping reports whether the broker connection is currently usable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.channel(ctx)
	return err
}

// Close releases the channel and connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.ch != nil {
		_ = c.ch.Close()
		c.ch = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.conn = nil
			return err
		}
		c.conn = nil
	}
	return nil
}
