package aguisse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/dialogue"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/research"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/ssebridge"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/telemetry"
)

// chatMode is the closed set run_agent dispatches on; anything else
// falls back to "dialogue", matching ag_ui.py's ChatMode default.
type chatMode string

const (
	modeDialogue chatMode = "dialogue"
	modeResearch chatMode = "research"
)

// inboundMessage is one entry of RunAgentInput.messages.
type inboundMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// runAgentInput is the AG-UI request body. Only the fields run_agent
// actually reads are modeled; CopilotKit sends more (tools, state,
// context) that this surface doesn't use.
type runAgentInput struct {
	ThreadID       string           `json:"threadId"`
	Messages       []inboundMessage `json:"messages"`
	ForwardedProps map[string]any   `json:"forwardedProps"`
}

func (in runAgentInput) stringProp(key string) string {
	if in.ForwardedProps == nil {
		return ""
	}
	v, _ := in.ForwardedProps[key].(string)
	return v
}

// userMessages keeps only role=="user" turns, matching
// build_messages_from_input's HumanMessage-only filter.
func (in runAgentInput) userMessages() []dialogue.Message {
	var out []dialogue.Message
	for _, m := range in.Messages {
		if m.Role == "user" {
			out = append(out, dialogue.Message{Role: "user", Content: m.Content})
		}
	}
	return out
}

// Server wires the AG-UI and plain chat routes to the dialogue/research
// runners. One Server is built per agent process.
type Server struct {
	Dialogue *dialogue.Streamer
	Research *research.Runner
	Entries  *dialogue.Entries
	Log      telemetry.Logger

	// Bridge relays a running workflow's progress snapshots over SSE.
	// Nil disables the /progress/{workflowId} route's data (still
	// registered, but it fails the request with 503).
	Bridge *ssebridge.Subscriber
}

// Routes registers every handler on mux, matching main.py's router
// inclusion (health/chat unprefixed, ag-ui under "/ag-ui").
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /chat/stream", s.handleChatStream)
	mux.HandleFunc("GET /ag-ui/info", s.handleInfo)
	mux.HandleFunc("POST /ag-ui/info", s.handleInfo)
	mux.HandleFunc("POST /ag-ui", s.handleAGUI)
	mux.HandleFunc("GET /progress/{workflowId}", s.handleProgressStream)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agents": map[string]any{
			"default": map[string]string{
				"name":        "default",
				"description": "AI assistant for analyzing feed entries",
			},
		},
		"actions": []any{},
		"version": "1.0",
	})
}

// handleAGUI is the SSE protocol endpoint: run_agent in ag_ui.py.
func (s *Server) handleAGUI(w http.ResponseWriter, r *http.Request) {
	var in runAgentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sw, ok := newStreamWriter(w)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	runID := uuid.New().String()
	threadID := in.ThreadID
	if threadID == "" {
		threadID = uuid.New().String()
	}
	messageID := uuid.New().String()
	traceID := newTraceID()

	mode := chatMode(in.stringProp("mode"))
	if mode != modeResearch {
		mode = modeDialogue
	}
	sessionID := in.stringProp("sessionId")

	ctx := r.Context()
	s.Log.Info(ctx, "agent run started", "runId", runID, "mode", mode, "traceId", traceID, "sessionId", sessionID)

	_ = sw.Send(RunStartedEvent{ThreadID: threadID, RunID: runID})

	entryContext, err := s.Entries.GetEntryContext(ctx, in.stringProp("entryId"))
	if err != nil {
		s.Log.Error(ctx, "failed to fetch entry context", "error", err, "traceId", traceID)
		entryContext = ""
	}

	var runErr error
	if mode == modeResearch {
		runErr = s.runResearch(ctx, sw, in, traceID, sessionID, entryContext)
	} else {
		runErr = s.runDialogue(ctx, sw, in, messageID, traceID, sessionID, entryContext)
	}

	if runErr != nil {
		s.Log.Error(ctx, "agent run failed", "error", runErr, "runId", runID, "traceId", traceID)
		_ = sw.Send(CustomEvent{Name: "error", Value: map[string]string{"message": runErr.Error()}})
	}

	// Always emit run finished, even after a failed run, matching
	// run_agent's try/except with an unconditional final yield.
	_ = sw.Send(RunFinishedEvent{ThreadID: threadID, RunID: runID})
}

// runDialogue streams one dialogue turn as TEXT_MESSAGE_* events. No
// events are emitted at all if there's no user turn, matching
// run_dialogue's bare early return.
func (s *Server) runDialogue(ctx context.Context, sw *streamWriter, in runAgentInput, messageID, traceID, sessionID, entryContext string) error {
	messages := in.userMessages()
	if len(messages) == 0 {
		return nil
	}

	chunks, errCh := s.Dialogue.Run(ctx, dialogue.Input{
		TraceID:      traceID,
		SessionID:    sessionID,
		EntryContext: entryContext,
		Messages:     messages,
	})

	started := false
	for delta := range chunks {
		if !started {
			if err := sw.Send(TextMessageStartEvent{MessageID: messageID, Role: "assistant"}); err != nil {
				return err
			}
			started = true
		}
		if err := sw.Send(TextMessageContentEvent{MessageID: messageID, Delta: delta}); err != nil {
			return err
		}
	}

	if started {
		if err := sw.Send(TextMessageEndEvent{MessageID: messageID}); err != nil {
			return err
		}
	}

	return drainErr(errCh)
}

// runResearch drives the planner/retriever/writer loop to completion and
// emits the final answer as a single TEXT_MESSAGE_CONTENT delta -- the
// writer produces a whole structured answer per iteration rather than
// token-by-token prose, so there's nothing to stream incrementally the
// way dialogue mode does.
func (s *Server) runResearch(ctx context.Context, sw *streamWriter, in runAgentInput, traceID, sessionID, entryContext string) error {
	messages := in.userMessages()
	query := ""
	if len(messages) > 0 {
		query = messages[len(messages)-1].Content
	}
	if query == "" {
		return nil
	}

	state, err := s.Research.Run(ctx, model.ResearchState{
		Query:        query,
		EntryContext: entryContext,
		SearchMode:   model.SearchModePlanner,
		TraceID:      traceID,
		SessionID:    sessionID,
	})
	if err != nil {
		return err
	}

	messageID := uuid.New().String()
	if err := sw.Send(TextMessageStartEvent{MessageID: messageID, Role: "assistant"}); err != nil {
		return err
	}
	answer := ""
	if state.FinalAnswer != nil {
		answer = state.FinalAnswer.Answer
	}
	if err := sw.Send(TextMessageContentEvent{MessageID: messageID, Delta: answer}); err != nil {
		return err
	}
	return sw.Send(TextMessageEndEvent{MessageID: messageID})
}

func drainErr(errCh <-chan error) error {
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newTraceID returns a 32-char hex id, matching uuid.uuid4().hex's
// format (used for Langfuse SDK v3 trace id compatibility).
func newTraceID() string {
	a := uuid.New()
	b := uuid.New()
	return fmt.Sprintf("%x%x", a[:8], b[:8])
}
