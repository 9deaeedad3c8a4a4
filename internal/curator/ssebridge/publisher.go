package ssebridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

// Publisher writes progress snapshots onto per-workflow Pulse streams.
// Grounded on features/stream/pulse/sink.go's Sink.Send: a JSON envelope
// carrying a type discriminator, the originating id, a timestamp, and the
// event payload.
type Publisher struct {
	client Client
}

// NewPublisher builds a Publisher over client.
func NewPublisher(client Client) *Publisher {
	return &Publisher{client: client}
}

// envelope mirrors pulse.Envelope, narrowed to the one event type this
// package ever publishes.
type envelope struct {
	Type       string         `json:"type"`
	WorkflowID string         `json:"workflow_id"`
	Timestamp  time.Time      `json:"timestamp"`
	Payload    model.Progress `json:"payload"`
}

// streamName derives the Pulse stream id for a workflow's progress
// channel, the ssebridge counterpart to pulse.defaultStreamID.
func streamName(workflowID string) string {
	return fmt.Sprintf("workflow/%s", workflowID)
}

// Publish writes one progress snapshot to the stream for progress.WorkflowID.
func (p *Publisher) Publish(ctx context.Context, progress model.Progress) error {
	if progress.WorkflowID == "" {
		return fmt.Errorf("ssebridge: progress missing workflow id")
	}
	str, err := p.client.Stream(streamName(progress.WorkflowID))
	if err != nil {
		return err
	}
	env := envelope{Type: "progress", WorkflowID: progress.WorkflowID, Timestamp: time.Now().UTC(), Payload: progress}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("ssebridge: marshal envelope: %w", err)
	}
	addCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	_, err = str.Add(addCtx, env.Type, payload)
	return err
}
