// Package termsherpa composes the shell-session service with the
// assistant backend and the event bus.
package termsherpa

import (
	"context"
	"errors"

	"pkt.systems/pslog"

	"pkt.systems/termsherpa/core"
	"pkt.systems/termsherpa/internal/appconfig"
	"pkt.systems/termsherpa/internal/assistant"
	"pkt.systems/termsherpa/internal/eventbus"
	"pkt.systems/termsherpa/internal/ptysession"
	"pkt.systems/termsherpa/schema"
)

// App wires the core service, the completion backend, and the event
// bus frontends subscribe to.
type App struct {
	Service core.Service
	Bus     *eventbus.Bus

	log      pslog.Logger
	degraded bool
}

// Option adjusts App construction.
type Option func(*appOptions)

type appOptions struct {
	spawner   core.Spawner
	assistant core.Assistant
	extraSink core.EventSink
}

// WithSpawner overrides the pty spawner. Used by tests.
func WithSpawner(spawner core.Spawner) Option {
	return func(o *appOptions) { o.spawner = spawner }
}

// WithAssistant overrides the completion backend. Used by tests.
func WithAssistant(ai core.Assistant) Option {
	return func(o *appOptions) { o.assistant = ai }
}

// WithEventSink registers an extra sink beside the event bus.
func WithEventSink(sink core.EventSink) Option {
	return func(o *appOptions) { o.extraSink = sink }
}

// New builds an App from the loaded configuration. A missing backend
// API key degrades to shell-only operation instead of failing.
func New(ctx context.Context, cfg appconfig.Config, opts ...Option) (*App, error) {
	options := appOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	logger := pslog.Ctx(ctx)

	bus := eventbus.New(logger)
	sinks := []core.EventSink{bus}
	if options.extraSink != nil {
		sinks = append(sinks, options.extraSink)
	}
	var sink core.EventSink = bus
	if len(sinks) > 1 {
		sink = eventFanout{sinks: sinks}
	}

	ai := options.assistant
	degraded := false
	if ai == nil {
		backendCfg := cfg.AssistantConfig()
		client, err := assistant.New(backendCfg, logger)
		switch {
		case err == nil:
			ai = client
		case backendCfg.APIKey == "":
			degraded = true
			logger.Warn("assistant disabled", "reason", "no API key in environment")
		default:
			return nil, err
		}
	}

	spawner := options.spawner
	if spawner == nil {
		spawner = ptysession.Spawner{}
	}

	service, err := core.NewService(cfg.ServiceConfig(), core.ServiceDeps{
		Spawner:   spawner,
		Assistant: ai,
		EventSink: sink,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Service:  service,
		Bus:      bus,
		log:      logger,
		degraded: degraded,
	}, nil
}

// AssistantAvailable reports whether the completion backend is wired.
func (a *App) AssistantAvailable() bool { return !a.degraded }

// Close terminates every live session.
func (a *App) Close(ctx context.Context) error {
	resp, err := a.Service.ListSessions(ctx, schema.ListSessionsRequest{})
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range resp.SessionIDs {
		if _, err := a.Service.CloseSession(ctx, schema.CloseSessionRequest{SessionID: id}); err != nil {
			if !errors.Is(err, schema.ErrSessionNotFound) {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
