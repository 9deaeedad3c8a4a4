package ssebridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

// Subscriber reads a workflow's progress stream. Grounded on
// features/stream/pulse/subscriber.go's Subscriber: a consumer group
// opened per call, decoded into the domain type and forwarded on a
// buffered channel until the caller cancels.
type Subscriber struct {
	client Client
	name   string
	buffer int
}

// SubscriberOptions configures NewSubscriber.
type SubscriberOptions struct {
	// SinkName identifies the Pulse consumer group. Defaults to "agent".
	SinkName string
	// Buffer sizes the returned event channel. Defaults to 32.
	Buffer int
}

// NewSubscriber builds a Subscriber over client.
func NewSubscriber(client Client, opts SubscriberOptions) *Subscriber {
	name := opts.SinkName
	if name == "" {
		name = "agent"
	}
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = 32
	}
	return &Subscriber{client: client, name: name, buffer: buffer}
}

// Subscribe opens a consumer group on workflowID's progress stream and
// returns a channel of decoded snapshots plus an error channel. The
// returned cancel function stops consumption and closes the sink.
func (s *Subscriber) Subscribe(ctx context.Context, workflowID string) (<-chan model.Progress, <-chan error, context.CancelFunc, error) {
	str, err := s.client.Stream(streamName(workflowID))
	if err != nil {
		return nil, nil, nil, err
	}
	sink, err := str.NewSink(ctx, s.name)
	if err != nil {
		return nil, nil, nil, err
	}
	out := make(chan model.Progress, s.buffer)
	errs := make(chan error, 1)
	runCtx, cancel := context.WithCancel(ctx)
	go s.consume(runCtx, sink, out, errs)
	cancelFunc := func() {
		cancel()
		sink.Close(context.Background())
	}
	return out, errs, cancelFunc, nil
}

func (s *Subscriber) consume(ctx context.Context, sink Sink, out chan<- model.Progress, errs chan<- error) {
	defer close(out)
	defer close(errs)
	ch := sink.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal(ev.Payload, &env); err != nil {
				errs <- fmt.Errorf("ssebridge: decode payload: %w", err)
				return
			}
			select {
			case out <- env.Payload:
			case <-ctx.Done():
				return
			}
			if err := sink.Ack(ctx, ev); err != nil {
				errs <- fmt.Errorf("ssebridge: ack: %w", err)
				return
			}
		}
	}
}
