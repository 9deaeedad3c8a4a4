package aguisse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/dialogue"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/research"
)

// nullLogger discards everything; tests don't assert on log output.
type nullLogger struct{}

func (nullLogger) Debug(ctx context.Context, msg string, keyvals ...any) {}
func (nullLogger) Info(ctx context.Context, msg string, keyvals ...any)  {}
func (nullLogger) Warn(ctx context.Context, msg string, keyvals ...any)  {}
func (nullLogger) Error(ctx context.Context, msg string, keyvals ...any) {}

type fakeLLM struct {
	deltas  []string
	content string
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{Content: f.content}, nil
}

func (f *fakeLLM) Stream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, <-chan error) {
	out := make(chan llm.Chunk)
	errCh := make(chan error)
	go func() {
		defer close(out)
		defer close(errCh)
		for i, d := range f.deltas {
			out <- llm.Chunk{Delta: d, Done: i == len(f.deltas)-1}
		}
	}()
	return out, errCh
}

type noopEntries struct{}

func newTestServer(llmClient llm.Client) *Server {
	return &Server{
		Dialogue: dialogue.New(llmClient, "test-model", nil, false),
		Research: research.New(llmClient, nil, "test-model", 1),
		Entries:  dialogue.NewEntries(nil),
		Log:      nullLogger{},
	}
}

func decodeSSEEvents(t *testing.T, body string) []map[string]any {
	t.Helper()
	var events []map[string]any
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			continue
		}
		var ev map[string]any
		require.NoError(t, json.Unmarshal([]byte(payload), &ev))
		events = append(events, ev)
	}
	return events
}

func TestHandleAGUI_Dialogue_EmitsRunAndTextEvents(t *testing.T) {
	s := newTestServer(&fakeLLM{deltas: []string{"Hello", " world"}})

	reqBody := `{"threadId":"th1","messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/ag-ui", strings.NewReader(reqBody))
	rec := httptest.NewRecorder()

	s.handleAGUI(rec, req)

	events := decodeSSEEvents(t, rec.Body.String())
	require.NotEmpty(t, events)
	assert.Equal(t, "RUN_STARTED", events[0]["type"])
	assert.Equal(t, "RUN_FINISHED", events[len(events)-1]["type"])

	var types []string
	for _, e := range events {
		types = append(types, e["type"].(string))
	}
	assert.Contains(t, types, "TEXT_MESSAGE_START")
	assert.Contains(t, types, "TEXT_MESSAGE_CONTENT")
	assert.Contains(t, types, "TEXT_MESSAGE_END")
}

func TestHandleAGUI_NoUserMessage_OnlyRunEvents(t *testing.T) {
	s := newTestServer(&fakeLLM{})

	req := httptest.NewRequest(http.MethodPost, "/ag-ui", strings.NewReader(`{"messages":[]}`))
	rec := httptest.NewRecorder()

	s.handleAGUI(rec, req)

	events := decodeSSEEvents(t, rec.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, "RUN_STARTED", events[0]["type"])
	assert.Equal(t, "RUN_FINISHED", events[1]["type"])
}

func TestHandleAGUI_ResearchMode_EmitsFinalAnswer(t *testing.T) {
	planJSON := `{"subQueries":["q1"],"sources":["keyword"],"rationale":"r"}`
	answerJSON := `{"answer":"the answer","answerType":"summary","sources":[],"confidence":0.9,"needsMoreInfo":false}`

	callCount := 0
	fl := &sequenceLLM{responses: []string{planJSON, answerJSON}, calls: &callCount}
	searcher := &fakeSearcher{}

	s := &Server{
		Dialogue: dialogue.New(fl, "test-model", nil, false),
		Research: research.New(fl, searcher, "test-model", 1),
		Entries:  dialogue.NewEntries(nil),
		Log:      nullLogger{},
	}

	reqBody := `{"messages":[{"role":"user","content":"what happened?"}],"forwardedProps":{"mode":"research"}}`
	req := httptest.NewRequest(http.MethodPost, "/ag-ui", strings.NewReader(reqBody))
	rec := httptest.NewRecorder()

	s.handleAGUI(rec, req)

	events := decodeSSEEvents(t, rec.Body.String())
	var content string
	for _, e := range events {
		if e["type"] == "TEXT_MESSAGE_CONTENT" {
			content = e["delta"].(string)
		}
	}
	assert.Equal(t, "the answer", content)
}

type sequenceLLM struct {
	responses []string
	calls     *int
}

func (f *sequenceLLM) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	i := *f.calls
	*f.calls++
	return llm.Response{Content: f.responses[i%len(f.responses)]}, nil
}

func (f *sequenceLLM) Stream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, <-chan error) {
	out := make(chan llm.Chunk)
	errCh := make(chan error)
	close(out)
	close(errCh)
	return out, errCh
}

type fakeSearcher struct{}

func (f *fakeSearcher) Search(ctx context.Context, source model.Source, queries []string) ([]model.RetrievedDocument, error) {
	return nil, nil
}
