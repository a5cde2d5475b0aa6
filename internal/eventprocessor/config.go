// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package eventprocessor

import (
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/discovery/internal/config"
)

// ServerConfig holds embedded NATS server configuration.
type ServerConfig struct {
	Host              string
	Port              int
	StoreDir          string
	JetStreamMaxMem   int64
	JetStreamMaxStore int64
}

// StreamConfig holds JetStream stream configuration.
type StreamConfig struct {
	Name            string
	Subjects        []string
	MaxAge          time.Duration
	MaxBytes        int64
	MaxMsgs         int64
	DuplicateWindow time.Duration
	Replicas        int
	Storage         jetstream.StorageType
}

// SubscriberConfig holds durable consumer configuration.
type SubscriberConfig struct {
	URL              string
	StreamName       string
	DurableName      string
	QueueGroup       string
	SubscribersCount int
	AckWaitTimeout   time.Duration
	CloseTimeout     time.Duration
	MaxDeliver       int
	MaxAckPending    int
	MaxReconnects    int
	ReconnectWait    time.Duration
}

// PublisherConfig holds publisher configuration.
type PublisherConfig struct {
	URL              string
	MaxReconnects    int
	ReconnectWait    time.Duration
	ReconnectBuffer  int
	EnableTrackMsgID bool
}

// RouterConfig holds configuration for the Watermill Router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration
}

// DefaultStreamConfig returns the CONTENT stream definition.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Name:            "CONTENT",
		Subjects:        []string{"content.>"},
		MaxAge:          7 * 24 * time.Hour,
		MaxBytes:        -1,
		MaxMsgs:         -1,
		DuplicateWindow: 2 * time.Minute,
		Replicas:        1,
		Storage:         jetstream.FileStorage,
	}
}

// DefaultRouterConfig returns production defaults for the Router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{CloseTimeout: 30 * time.Second}
}

// Validate checks the stream definition before it is sent to the server.
func (c StreamConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: stream name required", ErrInvalidConfig)
	}
	if len(c.Subjects) == 0 {
		return fmt.Errorf("%w: stream %s has no subjects", ErrInvalidConfig, c.Name)
	}
	if c.Replicas < 1 {
		return fmt.Errorf("%w: stream %s replicas must be at least 1", ErrInvalidConfig, c.Name)
	}
	return nil
}

// ServerConfigFrom maps the service configuration onto the embedded server.
func ServerConfigFrom(cfg *config.NATSConfig) ServerConfig {
	return ServerConfig{
		Host:              cfg.Host,
		Port:              cfg.Port,
		StoreDir:          cfg.StoreDir,
		JetStreamMaxMem:   cfg.MaxMemory,
		JetStreamMaxStore: cfg.MaxStore,
	}
}

// StreamConfigFrom maps the service configuration onto the content stream.
func StreamConfigFrom(cfg *config.NATSConfig) StreamConfig {
	sc := DefaultStreamConfig()
	if cfg.StreamName != "" {
		sc.Name = cfg.StreamName
	}
	if len(cfg.StreamSubjects) > 0 {
		sc.Subjects = cfg.StreamSubjects
	}
	if cfg.StreamMaxAge > 0 {
		sc.MaxAge = cfg.StreamMaxAge
	}
	return sc
}

// SubscriberConfigFrom maps the service configuration onto the ingest consumer.
// url overrides cfg.URL when the embedded server picked the address.
func SubscriberConfigFrom(cfg *config.NATSConfig, url string) SubscriberConfig {
	if url == "" {
		url = cfg.URL
	}
	return SubscriberConfig{
		URL:              url,
		StreamName:       cfg.StreamName,
		DurableName:      cfg.DurableName,
		QueueGroup:       cfg.QueueGroup,
		SubscribersCount: cfg.Subscribers,
		AckWaitTimeout:   cfg.AckWait,
		CloseTimeout:     cfg.CloseTimeout,
		MaxDeliver:       5,
		MaxAckPending:    1000,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
	}
}

// ForEvent returns a copy consuming only t's subject. Each subject gets its
// own durable consumer.
func (c SubscriberConfig) ForEvent(t EventType) SubscriberConfig {
	if c.DurableName != "" {
		c.DurableName = c.DurableName + "-" + strings.TrimPrefix(t.Subject(), "content.")
	}
	return c
}

// PublisherConfigFrom maps the service configuration onto a publisher.
func PublisherConfigFrom(cfg *config.NATSConfig, url string) PublisherConfig {
	if url == "" {
		url = cfg.URL
	}
	return PublisherConfig{
		URL:              url,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		ReconnectBuffer:  8 * 1024 * 1024,
		EnableTrackMsgID: true,
	}
}
