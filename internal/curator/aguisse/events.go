// Package aguisse implements the AG-UI protocol surface: an SSE event
// stream CopilotKit-style clients consume, plus the plain JSON chat
// endpoints used by non-AG-UI clients.
//
// Grounded on routes/ag_ui.py's run_agent generator for the event
// sequence and routes/chat.py for the JSON/SSE chat endpoints. The event
// type shape (a small Event interface with a Type() discriminator,
// borrowed at a fraction of the scale) follows the pattern in
// runtime/agent/hooks/events.go, whose ~20-event taxonomy serves a
// general multi-agent orchestration surface; AG-UI's own wire protocol
// only ever needs six.
package aguisse

// EventType is the AG-UI wire discriminator, sent as the "type" field of
// every encoded event.
type EventType string

const (
	EventRunStarted         EventType = "RUN_STARTED"
	EventRunFinished        EventType = "RUN_FINISHED"
	EventTextMessageStart   EventType = "TEXT_MESSAGE_START"
	EventTextMessageContent EventType = "TEXT_MESSAGE_CONTENT"
	EventTextMessageEnd     EventType = "TEXT_MESSAGE_END"
	EventCustom             EventType = "CUSTOM"
)

// Event is anything that can be SSE-encoded onto an AG-UI stream.
type Event interface {
	Type() EventType
}

// RunStartedEvent opens a run. Always the first event on the stream.
type RunStartedEvent struct {
	ThreadID string `json:"threadId"`
	RunID    string `json:"runId"`
}

func (RunStartedEvent) Type() EventType { return EventRunStarted }

func (e RunStartedEvent) MarshalJSON() ([]byte, error) {
	return marshalWithType(EventRunStarted, struct {
		ThreadID string `json:"threadId"`
		RunID    string `json:"runId"`
	}{e.ThreadID, e.RunID})
}

// RunFinishedEvent closes a run. Always the last event on the stream,
// emitted unconditionally even when the run failed (the failure itself
// is reported as a preceding CustomEvent).
type RunFinishedEvent struct {
	ThreadID string `json:"threadId"`
	RunID    string `json:"runId"`
}

func (RunFinishedEvent) Type() EventType { return EventRunFinished }

func (e RunFinishedEvent) MarshalJSON() ([]byte, error) {
	return marshalWithType(EventRunFinished, struct {
		ThreadID string `json:"threadId"`
		RunID    string `json:"runId"`
	}{e.ThreadID, e.RunID})
}

// TextMessageStartEvent opens one assistant message.
type TextMessageStartEvent struct {
	MessageID string `json:"messageId"`
	Role      string `json:"role"`
}

func (TextMessageStartEvent) Type() EventType { return EventTextMessageStart }

func (e TextMessageStartEvent) MarshalJSON() ([]byte, error) {
	return marshalWithType(EventTextMessageStart, struct {
		MessageID string `json:"messageId"`
		Role      string `json:"role"`
	}{e.MessageID, e.Role})
}

// TextMessageContentEvent carries one streamed delta of an assistant
// message.
type TextMessageContentEvent struct {
	MessageID string `json:"messageId"`
	Delta     string `json:"delta"`
}

func (TextMessageContentEvent) Type() EventType { return EventTextMessageContent }

func (e TextMessageContentEvent) MarshalJSON() ([]byte, error) {
	return marshalWithType(EventTextMessageContent, struct {
		MessageID string `json:"messageId"`
		Delta     string `json:"delta"`
	}{e.MessageID, e.Delta})
}

// TextMessageEndEvent closes the assistant message opened by the
// matching TextMessageStartEvent.
type TextMessageEndEvent struct {
	MessageID string `json:"messageId"`
}

func (TextMessageEndEvent) Type() EventType { return EventTextMessageEnd }

func (e TextMessageEndEvent) MarshalJSON() ([]byte, error) {
	return marshalWithType(EventTextMessageEnd, struct {
		MessageID string `json:"messageId"`
	}{e.MessageID})
}

// CustomEvent reports an out-of-band occurrence: a run error (matching
// run_agent's except block) or a relayed workflow progress snapshot.
type CustomEvent struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func (CustomEvent) Type() EventType { return EventCustom }

func (e CustomEvent) MarshalJSON() ([]byte, error) {
	return marshalWithType(EventCustom, struct {
		Name  string `json:"name"`
		Value any    `json:"value"`
	}{e.Name, e.Value})
}
