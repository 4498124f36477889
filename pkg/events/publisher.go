package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/ordersync-backend/pkg/config"
	"github.com/angelmondragon/ordersync-backend/pkg/logger"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ChannelManager is the slice of the broker client the publisher needs.
type ChannelManager interface {
	DeclareExchange(ctx context.Context, name string) error
	Publish(ctx context.Context, exchange, routingKey string, body []byte, headers amqp.Table) error
}

// Publisher turns committed contact mutations into durable fact-of-record
// messages. It shares the process-wide broker client instead of dialing
// per publish.
type Publisher struct {
	client ChannelManager
	cfg    config.RabbitConfig
	logg   *logger.Logger
}

func NewPublisher(client ChannelManager, cfg config.RabbitConfig, logg *logger.Logger) (*Publisher, error) {
	if client == nil {
		return nil, errors.New("events: channel manager is required")
	}
	if cfg.Exchange == "" {
		return nil, errors.New("events: exchange name is required")
	}
	if cfg.RoutingKey == "" {
		return nil, errors.New("events: routing key is required")
	}
	return &Publisher{client: client, cfg: cfg, logg: logg}, nil
}

// Publish validates the envelope, suppresses no-op diffs, and publishes
// persistently, returning once the broker has confirmed acceptance. The
// returned bool reports whether a message actually went out, so callers
// can surface the two-phase outcome (record updated vs event published).
func (p *Publisher) Publish(ctx context.Context, env Envelope) (bool, error) {
	if err := env.Validate(); err != nil {
		return false, err
	}

	if env.Type == TypeUserContactUpdated && !env.ContactChanged() {
		if p.logg != nil {
			p.logg.Debug(p.logg.WithUserID(ctx, env.UserID), "contact values unchanged, suppressing event")
		}
		return false, nil
	}

	if env.EventID == "" {
		env.EventID = uuid.NewString()
	}
	if env.Version == "" {
		env.Version = SchemaVersion
	}

	body, headers, err := Encode(env)
	if err != nil {
		return false, err
	}

	if err := p.client.DeclareExchange(ctx, p.cfg.Exchange); err != nil {
		return false, fmt.Errorf("events: declaring exchange %q: %w", p.cfg.Exchange, err)
	}
	if err := p.client.Publish(ctx, p.cfg.Exchange, p.cfg.RoutingKey, body, headers); err != nil {
		return false, fmt.Errorf("events: publishing %s: %w", env.Type, err)
	}

	if p.logg != nil {
		logCtx := p.logg.WithFields(ctx, map[string]any{
			"event_id":    env.EventID,
			"event_type":  env.Type,
			"routing_key": p.cfg.RoutingKey,
		})
		p.logg.Info(logCtx, "event published")
	}
	return true, nil
}
