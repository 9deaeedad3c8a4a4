// Package ssebridge carries workflow progress snapshots from the worker
// fleet to the agent fleet over Redis-backed Pulse streams, so the two
// process kinds (cmd/worker minting progress, cmd/agent owning the
// HTTP/SSE subscribers) can scale independently instead of sharing
// in-process channels.
//
// The REST backend's own /sse/broadcast endpoint (posted to by
// internal/curator/notify) remains the primary, durable progress channel
// for the frontend; this package is a secondary, lower-latency path that
// lets an agent process relay progress for a workflow directly into an
// AG-UI run it is already streaming, without polling the REST backend.
//
// Grounded on features/stream/pulse/clients/pulse/client.go: the same
// thin Redis-backed wrapper around goa.design/pulse/streaming, narrowed
// to the Stream/Add/NewSink/Subscribe operations this package actually
// uses.
package ssebridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"goa.design/pulse/streaming"
	streamopts "goa.design/pulse/streaming/options"
)

// Client exposes the Pulse operations ssebridge needs, backed by Redis.
type Client interface {
	Stream(name string) (Stream, error)
	Close(ctx context.Context) error
}

// Stream is a handle to one Pulse stream.
type Stream interface {
	Add(ctx context.Context, event string, payload []byte) (string, error)
	NewSink(ctx context.Context, name string) (Sink, error)
}

// Sink is a consumer group on a Pulse stream.
type Sink interface {
	Subscribe() <-chan *streaming.Event
	Ack(ctx context.Context, ev *streaming.Event) error
	Close(ctx context.Context)
}

// Options configures New.
type Options struct {
	// Redis is the connection backing every Pulse stream. Required.
	Redis *redis.Client
	// StreamMaxLen bounds entries retained per stream. Zero uses Pulse's default.
	StreamMaxLen int
}

type client struct {
	redis  *redis.Client
	maxLen int
}

// New builds a Client from an already-connected Redis client.
func New(opts Options) (Client, error) {
	if opts.Redis == nil {
		return nil, errors.New("ssebridge: redis client is required")
	}
	return &client{redis: opts.Redis, maxLen: opts.StreamMaxLen}, nil
}

// NewFromURL dials Redis directly from a URL/address and optional
// password, the shape cmd/worker and cmd/agent configure from
// config.Config.RedisURL/RedisPassword.
func NewFromURL(addr, password string) (Client, error) {
	if addr == "" {
		return nil, errors.New("ssebridge: redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return New(Options{Redis: rdb})
}

func (c *client) Stream(name string) (Stream, error) {
	if name == "" {
		return nil, errors.New("ssebridge: stream name is required")
	}
	var opts []streamopts.Stream
	if c.maxLen > 0 {
		opts = append(opts, streamopts.WithStreamMaxLen(c.maxLen))
	}
	str, err := streaming.NewStream(name, c.redis, opts...)
	if err != nil {
		return nil, fmt.Errorf("ssebridge: create stream: %w", err)
	}
	return &handle{stream: str}, nil
}

func (c *client) Close(ctx context.Context) error {
	return c.redis.Close()
}

type handle struct {
	stream *streaming.Stream
}

func (h *handle) Add(ctx context.Context, event string, payload []byte) (string, error) {
	id, err := h.stream.Add(ctx, event, payload)
	if err != nil {
		return "", fmt.Errorf("ssebridge: add: %w", err)
	}
	return id, nil
}

func (h *handle) NewSink(ctx context.Context, name string) (Sink, error) {
	sink, err := h.stream.NewSink(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("ssebridge: new sink: %w", err)
	}
	return &sinkAdapter{sink}, nil
}

type sinkAdapter struct {
	*streaming.Sink
}

func (s *sinkAdapter) Close(ctx context.Context) {
	s.Sink.Close(ctx)
}

const defaultTimeout = 5 * time.Second
