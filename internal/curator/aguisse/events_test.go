package aguisse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventMarshalling(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		want map[string]any
	}{
		{
			"run started",
			RunStartedEvent{ThreadID: "t1", RunID: "r1"},
			map[string]any{"type": "RUN_STARTED", "threadId": "t1", "runId": "r1"},
		},
		{
			"run finished",
			RunFinishedEvent{ThreadID: "t1", RunID: "r1"},
			map[string]any{"type": "RUN_FINISHED", "threadId": "t1", "runId": "r1"},
		},
		{
			"text start",
			TextMessageStartEvent{MessageID: "m1", Role: "assistant"},
			map[string]any{"type": "TEXT_MESSAGE_START", "messageId": "m1", "role": "assistant"},
		},
		{
			"text content",
			TextMessageContentEvent{MessageID: "m1", Delta: "hi"},
			map[string]any{"type": "TEXT_MESSAGE_CONTENT", "messageId": "m1", "delta": "hi"},
		},
		{
			"text end",
			TextMessageEndEvent{MessageID: "m1"},
			map[string]any{"type": "TEXT_MESSAGE_END", "messageId": "m1"},
		},
		{
			"custom",
			CustomEvent{Name: "error", Value: map[string]string{"message": "boom"}},
			map[string]any{"type": "CUSTOM", "name": "error", "value": map[string]any{"message": "boom"}},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data, err := json.Marshal(c.ev)
			require.NoError(t, err)
			var got map[string]any
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, c.want, got)
		})
	}
}
