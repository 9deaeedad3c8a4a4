package aguisse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// streamWriter frames Events onto an http.ResponseWriter as
// "data: <json>\n\n", matching ag_ui.encoder.EventEncoder's wire format,
// flushing after every event so clients see each one as it's produced.
type streamWriter struct {
	w http.ResponseWriter
	f http.Flusher
}

// newStreamWriter sets the SSE response headers and returns a writer. ok
// is false if the underlying ResponseWriter can't be flushed incrementally,
// in which case the caller should fall back to a buffered response.
func newStreamWriter(w http.ResponseWriter) (*streamWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	return &streamWriter{w: w, f: flusher}, true
}

func (s *streamWriter) Send(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// sendRaw writes a pre-framed SSE payload, used for chat/stream's
// "[DONE]" sentinel which isn't a JSON event.
func (s *streamWriter) sendRaw(data string) {
	fmt.Fprintf(s.w, "data: %s\n\n", data)
	s.f.Flush()
}
