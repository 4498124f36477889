package dispatcher

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/angelmondragon/ordersync-backend/pkg/config"
	"github.com/angelmondragon/ordersync-backend/pkg/events"
	"github.com/angelmondragon/ordersync-backend/pkg/logger"
)

// HandlerFunc processes one decoded event.
type HandlerFunc func(ctx context.Context, env events.Envelope) error

// Broker is the slice of the rabbit client the dispatcher consumes through.
type Broker interface {
	DeclareExchange(ctx context.Context, name string) error
	DeclareQueue(ctx context.Context, name string) (amqp.Queue, error)
	Bind(ctx context.Context, queue, exchange, routingKey string) error
	Consume(ctx context.Context, queue string) (<-chan amqp.Delivery, error)
}

// Dispatcher owns the consume loop: it declares the queue topology, pulls
// deliveries, and routes each to the handler registered for its type.
//
// Every delivery is acknowledged exactly once, whatever happened to it.
// Poison messages, unknown types, and handler failures are logged and
// acked rather than redelivered; with a single consumer and no dead
// letter queue, requeueing would only loop the same failure forever.
type Dispatcher struct {
	broker   Broker
	cfg      config.RabbitConfig
	logg     *logger.Logger
	handlers map[string]HandlerFunc
}

func New(broker Broker, cfg config.RabbitConfig, logg *logger.Logger) (*Dispatcher, error) {
	if broker == nil {
		return nil, fmt.Errorf("broker required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{
		broker:   broker,
		cfg:      cfg,
		logg:     logg,
		handlers: make(map[string]HandlerFunc),
	}, nil
}

// Register installs the handler for an event type. Later registrations
// for the same type replace earlier ones.
func (d *Dispatcher) Register(eventType string, fn HandlerFunc) {
	d.handlers[eventType] = fn
}

// Run consumes until the context is canceled. When the broker drops the
// connection the delivery channel closes; Run re-declares the topology
// and resumes, which re-runs the client's bounded reconnect procedure.
// A reconnect that exhausts its retries surfaces here and ends the loop.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		if err := d.bindTopology(ctx); err != nil {
			return fmt.Errorf("binding queue topology: %w", err)
		}

		deliveries, err := d.broker.Consume(ctx, d.cfg.Queue)
		if err != nil {
			return fmt.Errorf("starting consume on %s: %w", d.cfg.Queue, err)
		}
		d.logg.Info(d.logg.WithField(ctx, "queue", d.cfg.Queue), "consuming deliveries")

		if err := d.drain(ctx, deliveries); err != nil {
			return err
		}
		d.logg.Warn(ctx, "delivery channel closed, re-entering consume")
	}
}

func (d *Dispatcher) bindTopology(ctx context.Context) error {
	if err := d.broker.DeclareExchange(ctx, d.cfg.Exchange); err != nil {
		return err
	}
	if _, err := d.broker.DeclareQueue(ctx, d.cfg.Queue); err != nil {
		return err
	}
	return d.broker.Bind(ctx, d.cfg.Queue, d.cfg.Exchange, d.cfg.RoutingKey)
}

// drain processes deliveries until the channel closes (nil error, caller
// resumes) or the context ends (ctx error, caller stops).
func (d *Dispatcher) drain(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			d.process(ctx, delivery)
			if err := delivery.Ack(false); err != nil {
				d.logg.Error(ctx, "acknowledging delivery failed", err)
			}
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, delivery amqp.Delivery) {
	env, err := events.Decode(delivery.Body, delivery.Headers)
	if err != nil {
		d.logg.Error(ctx, "discarding undecodable delivery", err)
		return
	}

	logCtx := d.logg.WithEventType(ctx, env.Type)
	if env.EventID != "" {
		logCtx = d.logg.WithEventID(logCtx, env.EventID)
	}

	if err := env.Validate(); err != nil {
		d.logg.Error(logCtx, "discarding invalid delivery", err)
		return
	}

	handler, ok := d.handlers[env.Type]
	if !ok {
		d.logg.Warn(logCtx, "no handler registered for event type")
		return
	}

	if err := handler(logCtx, env); err != nil {
		d.logg.Error(logCtx, "handler failed, delivery will not be retried", err)
		return
	}
	d.logg.Info(logCtx, "delivery handled")
}
