package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/ordersync-backend/internal/contactsync"
	"github.com/angelmondragon/ordersync-backend/internal/dispatcher"
	"github.com/angelmondragon/ordersync-backend/pkg/config"
	"github.com/angelmondragon/ordersync-backend/pkg/events"
	"github.com/angelmondragon/ordersync-backend/pkg/logger"
)

type ServiceParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	Broker  dispatcher.Broker
	Handler *contactsync.Handler
}

// Service assembles the consume side of the contact pipeline: one
// dispatcher on the durable queue, with the contact sync handler bound
// to the user contact event.
type Service struct {
	cfg     *config.Config
	logg    *logger.Logger
	broker  dispatcher.Broker
	handler *contactsync.Handler
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Broker == nil {
		return nil, errors.New("broker client is required")
	}
	if params.Handler == nil {
		return nil, errors.New("contact sync handler is required")
	}

	return &Service{
		cfg:     params.Config,
		logg:    params.Logger,
		broker:  params.Broker,
		handler: params.Handler,
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	disp, err := dispatcher.New(s.broker, s.cfg.Rabbit, s.logg)
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}
	disp.Register(events.TypeUserContactUpdated, s.handler.Handle)

	return disp.Run(ctx)
}
