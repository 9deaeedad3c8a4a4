package ssebridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

type fakeStream struct {
	added   []byte
	event   string
	addErr  error
}

func (s *fakeStream) Add(ctx context.Context, event string, payload []byte) (string, error) {
	if s.addErr != nil {
		return "", s.addErr
	}
	s.event = event
	s.added = payload
	return "1-0", nil
}

func (s *fakeStream) NewSink(ctx context.Context, name string) (Sink, error) {
	panic("not used by publisher tests")
}

type fakeClient struct {
	streams map[string]*fakeStream
}

func (c *fakeClient) Stream(name string) (Stream, error) {
	if c.streams == nil {
		c.streams = map[string]*fakeStream{}
	}
	s, ok := c.streams[name]
	if !ok {
		s = &fakeStream{}
		c.streams[name] = s
	}
	return s, nil
}

func (c *fakeClient) Close(ctx context.Context) error { return nil }

func TestStreamName(t *testing.T) {
	assert.Equal(t, "workflow/abc-123", streamName("abc-123"))
}

func TestPublisher_Publish(t *testing.T) {
	client := &fakeClient{}
	pub := NewPublisher(client)

	now := time.Now().UTC()
	err := pub.Publish(context.Background(), model.Progress{
		WorkflowID: "wf-1",
		Status:     model.StatusRunning,
		UpdatedAt:  now,
	})
	require.NoError(t, err)

	str := client.streams[streamName("wf-1")]
	require.NotNil(t, str)
	assert.Equal(t, "progress", str.event)

	var env envelope
	require.NoError(t, json.Unmarshal(str.added, &env))
	assert.Equal(t, "progress", env.Type)
	assert.Equal(t, "wf-1", env.WorkflowID)
	assert.Equal(t, model.StatusRunning, env.Payload.Status)
}

func TestPublisher_Publish_RequiresWorkflowID(t *testing.T) {
	pub := NewPublisher(&fakeClient{})
	err := pub.Publish(context.Background(), model.Progress{})
	assert.Error(t, err)
}
