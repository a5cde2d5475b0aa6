// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package eventprocessor

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go/jetstream"
)

func startEmbedded(t *testing.T) *EmbeddedServer {
	t.Helper()
	if testing.Short() {
		t.Skip("embedded NATS server skipped in short mode")
	}

	srv, err := NewEmbeddedServer(&ServerConfig{
		Host:              "127.0.0.1",
		Port:              -1,
		StoreDir:          t.TempDir(),
		JetStreamMaxMem:   64 << 20,
		JetStreamMaxStore: 256 << 20,
	})
	if err != nil {
		t.Fatalf("NewEmbeddedServer() error: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown() error: %v", err)
		}
	})
	return srv
}

func memoryStream() StreamConfig {
	cfg := DefaultStreamConfig()
	cfg.Storage = jetstream.MemoryStorage
	return cfg
}

func TestEmbeddedServerAndStreamInit(t *testing.T) {
	srv := startEmbedded(t)
	if !srv.IsRunning() || !srv.JetStreamEnabled() {
		t.Fatal("embedded server should be running with JetStream")
	}

	nc, err := Connect(srv.ClientURL(), "stream-init-test")
	if err != nil {
		t.Fatal(err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatal(err)
	}

	cfg := memoryStream()
	si, err := NewStreamInitializer(js, &cfg)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if si.IsHealthy(ctx) {
		t.Error("stream should not exist before EnsureStream")
	}
	for i := 0; i < 2; i++ {
		if _, err := si.EnsureStream(ctx); err != nil {
			t.Fatalf("EnsureStream() call %d error: %v", i+1, err)
		}
	}
	if !si.IsHealthy(ctx) {
		t.Error("stream should be healthy after EnsureStream")
	}

	info, err := si.GetStreamInfo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info.Config.Name != "CONTENT" || len(info.Config.Subjects) != 1 || info.Config.Subjects[0] != "content.>" {
		t.Errorf("stream config = %+v", info.Config)
	}
}

func TestNewStreamInitializerRejectsBadInput(t *testing.T) {
	t.Parallel()

	cfg := DefaultStreamConfig()
	if _, err := NewStreamInitializer(nil, &cfg); err == nil {
		t.Error("nil JetStream should be rejected")
	}
	cfg.Subjects = nil
	if _, err := NewStreamInitializer(stubJS{}, &cfg); err == nil {
		t.Error("stream without subjects should be rejected")
	}
}

type stubJS struct{ JetStreamContext }

func TestPublishAndConsumeOverJetStream(t *testing.T) {
	srv := startEmbedded(t)

	nc, err := Connect(srv.ClientURL(), "e2e-test")
	if err != nil {
		t.Fatal(err)
	}
	defer nc.Close()
	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatal(err)
	}
	streamCfg := memoryStream()
	si, err := NewStreamInitializer(js, &streamCfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := si.EnsureStream(context.Background()); err != nil {
		t.Fatal(err)
	}

	subCfg := SubscriberConfig{
		URL:              srv.ClientURL(),
		StreamName:       streamCfg.Name,
		DurableName:      "e2e",
		QueueGroup:       "e2e",
		SubscribersCount: 1,
		AckWaitTimeout:   5 * time.Second,
		CloseTimeout:     5 * time.Second,
		MaxDeliver:       5,
		MaxAckPending:    100,
		MaxReconnects:    1,
		ReconnectWait:    100 * time.Millisecond,
	}.ForEvent(EventContentUpdated)

	sub, err := NewSubscriber(&subCfg, watermill.NopLogger{})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = sub.Close() }()

	got := make(chan *ContentEvent, 1)
	r := NewRouter(&RouterConfig{CloseTimeout: 5 * time.Second}, watermill.NopLogger{})
	r.AddConsumerHandler("e2e-updated", SubjectContentUpdated, sub, func(msg *message.Message) error {
		event, err := DeserializeEvent(message.SubscribeTopicFromCtx(msg.Context()), msg.Payload)
		if err != nil {
			return err
		}
		got <- event
		return nil
	})
	stop := startRouter(t, r)
	defer stop()

	pub, err := NewPublisher(PublisherConfig{
		URL:              srv.ClientURL(),
		MaxReconnects:    1,
		ReconnectWait:    100 * time.Millisecond,
		ReconnectBuffer:  1 << 20,
		EnableTrackMsgID: true,
	}, watermill.NopLogger{})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = pub.Close() }()

	if err := pub.PublishEvent(context.Background(), NewContentEvent(EventContentUpdated, testRecord())); err != nil {
		t.Fatalf("PublishEvent() error: %v", err)
	}

	select {
	case event := <-got:
		if event.Type != EventContentUpdated || event.Record.ContentID != "c1" {
			t.Errorf("consumed event = %+v", event)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("event was not consumed")
	}

	if err := pub.Close(); err != nil {
		t.Fatal(err)
	}
	if err := pub.PublishEvent(context.Background(), NewContentEvent(EventContentUpdated, testRecord())); err == nil {
		t.Error("publish after Close should fail")
	}
}
