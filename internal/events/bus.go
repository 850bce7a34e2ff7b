// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/tomtom215/salesradar/internal/metrics"
)

// ErrClosed is returned when publishing on a closed bus.
var ErrClosed = errors.New("event bus closed")

// Handler processes one DatasetRebuilt event. A returned error is retried.
type Handler func(ctx context.Context, ev DatasetRebuilt) error

// Config tunes the bus router.
type Config struct {
	BufferSize           int64
	CloseTimeout         time.Duration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:           64,
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
	}
}

type subscription struct {
	name    string
	handler Handler
}

// Bus is an in-process publish/subscribe bus on a watermill GoChannel.
// Subscribers are registered before Serve, which runs a watermill router
// until its context is cancelled. Serve may be restarted by a supervisor.
type Bus struct {
	cfg     Config
	pubsub  *gochannel.GoChannel
	logger  zerolog.Logger
	wlogger watermill.LoggerAdapter

	mu     sync.Mutex
	subs   []subscription
	closed bool

	ready     chan struct{}
	readyOnce sync.Once
}

// NewBus creates a bus.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg Config, logger zerolog.Logger) *Bus {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = DefaultConfig().CloseTimeout
	}
	logger = logger.With().Str("component", "events").Logger()
	wlogger := newLoggerAdapter(logger)
	return &Bus{
		cfg:     cfg,
		pubsub:  gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: cfg.BufferSize}, wlogger),
		logger:  logger,
		wlogger: wlogger,
		ready:   make(chan struct{}),
	}
}

// Subscribe registers a named DatasetRebuilt handler. It takes effect the
// next time Serve starts.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{name: name, handler: h})
}

// PublishRebuilt publishes ev on TopicDatasetRebuilt.
func (b *Bus) PublishRebuilt(ctx context.Context, ev DatasetRebuilt) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	payload, err := encode(ev)
	if err != nil {
		metrics.RecordEventPublished(TopicDatasetRebuilt, err)
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("version", fmt.Sprintf("%d", ev.Version))

	err = b.pubsub.Publish(TopicDatasetRebuilt, msg)
	metrics.RecordEventPublished(TopicDatasetRebuilt, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", TopicDatasetRebuilt, err)
	}
	return nil
}

// Serve runs the subscriber router until ctx is cancelled.
func (b *Bus) Serve(ctx context.Context) error {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: b.cfg.CloseTimeout}, b.wlogger)
	if err != nil {
		return fmt.Errorf("create router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)
	retry := middleware.Retry{
		MaxRetries:      b.cfg.RetryMaxRetries,
		InitialInterval: b.cfg.RetryInitialInterval,
		Logger:          b.wlogger,
	}
	router.AddMiddleware(retry.Middleware)

	b.mu.Lock()
	subs := append([]subscription(nil), b.subs...)
	b.mu.Unlock()

	// The router closes its subscribers on shutdown; the shared GoChannel
	// must outlive it so that Serve can be restarted.
	sub := nopCloseSubscriber{b.pubsub}
	for _, s := range subs {
		router.AddConsumerHandler(s.name, TopicDatasetRebuilt, sub, b.dispatch(s))
	}

	go func() {
		select {
		case <-router.Running():
			b.readyOnce.Do(func() { close(b.ready) })
		case <-ctx.Done():
		}
	}()

	b.logger.Debug().Int("handlers", len(subs)).Msg("Event router starting")
	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return ctx.Err()
}

func (b *Bus) dispatch(s subscription) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ev, err := decode(msg.Payload)
		if err != nil {
			// A malformed payload never succeeds on retry.
			b.logger.Error().Err(err).Str("handler", s.name).Msg("Dropping malformed event")
			return nil
		}
		return s.handler(msg.Context(), ev)
	}
}

// Ready is closed once the router has started for the first time.
func (b *Bus) Ready() <-chan struct{} {
	return b.ready
}

// Close shuts down the underlying GoChannel.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()
	return b.pubsub.Close()
}

// String implements fmt.Stringer for supervisor logs.
func (b *Bus) String() string {
	return "event-bus"
}

type nopCloseSubscriber struct {
	message.Subscriber
}

func (nopCloseSubscriber) Close() error { return nil }
