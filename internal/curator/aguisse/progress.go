package aguisse

import (
	"net/http"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/ssebridge"
)

// handleProgressStream relays one workflow's progress snapshots as SSE
// CUSTOM events, sourced from ssebridge rather than the REST backend's
// own /sse/broadcast -- an agent process already holding an open
// connection for a given client can forward progress for a workflow that
// client triggered (e.g. a chat-initiated feed refresh) without that
// client needing a second polling loop against the REST backend.
func (s *Server) handleProgressStream(w http.ResponseWriter, r *http.Request) {
	if s.Bridge == nil {
		http.Error(w, "progress streaming not configured", http.StatusServiceUnavailable)
		return
	}
	workflowID := r.PathValue("workflowId")
	if workflowID == "" {
		http.Error(w, "workflowId is required", http.StatusBadRequest)
		return
	}

	sw, ok := newStreamWriter(w)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	events, errCh, cancel, err := s.Bridge.Subscribe(ctx, workflowID)
	if err != nil {
		s.Log.Error(ctx, "progress subscribe failed", "error", err, "workflowId", workflowID)
		_ = sw.Send(CustomEvent{Name: "error", Value: map[string]string{"message": err.Error()}})
		return
	}
	defer cancel()

	for progress := range events {
		if err := sw.Send(CustomEvent{Name: "progress", Value: progress}); err != nil {
			return
		}
		if progress.Status.Terminal() {
			return
		}
	}
	if err := drainErr(errCh); err != nil {
		s.Log.Error(ctx, "progress stream failed", "error", err, "workflowId", workflowID)
	}
}
