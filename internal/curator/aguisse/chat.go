package aguisse

import (
	"encoding/json"
	"net/http"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm"
)

// chatRequest/chatResponse mirror chat.py's ChatRequest/ChatResponse: a
// bare single-shot exchange with no system prompt and no entry context,
// distinct from the AG-UI dialogue mode.
type chatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"threadId"`
}

type chatResponse struct {
	Message  string `json:"message"`
	ThreadID string `json:"threadId"`
}

// handleChat is the non-streaming single-message endpoint.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := s.Dialogue.LLM.Complete(r.Context(), llm.Request{
		Model:    s.Dialogue.Model,
		Messages: []llm.Message{{Role: "user", Content: req.Message}},
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = "default"
	}
	writeJSON(w, http.StatusOK, chatResponse{Message: resp.Content, ThreadID: threadID})
}

// handleChatStream is the streaming single-message endpoint, framing
// each delta as {"type":"text","content":...} and closing with a literal
// "[DONE]" sentinel, matching chat.py's chat_stream.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sw, ok := newStreamWriter(w)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	chunks, errCh := s.Dialogue.LLM.Stream(r.Context(), llm.Request{
		Model:    s.Dialogue.Model,
		Messages: []llm.Message{{Role: "user", Content: body.Message}},
	})

	for chunk := range chunks {
		if chunk.Delta == "" {
			continue
		}
		data, _ := json.Marshal(map[string]string{"type": "text", "content": chunk.Delta})
		sw.sendRaw(string(data))
	}
	if err := drainErr(errCh); err != nil {
		s.Log.Error(r.Context(), "chat stream failed", "error", err)
	}

	sw.sendRaw("[DONE]")
}
