package notify

import (
	"context"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/errs"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/restapi"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/ssebridge"
)

// Input is the NotifyProgress activity's input.
type Input struct {
	WorkflowID string         `json:"workflowId"`
	Progress   model.Progress `json:"progress"`
}

// Output is the NotifyProgress activity's output. A cooperative
// cancellation mid-send is surfaced here as {Success:false,
// Error:"cancelled"} rather than as a Go error, so the calling workflow's
// local-activity call completes normally and can finish silently.
type Output struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Notifier sends progress snapshots to the REST backend's SSE broadcast
// endpoint, throttled per workflow id. When Bridge is set, every
// broadcast is mirrored onto the Redis-backed ssebridge stream for the
// snapshot's workflow, so an agent process already streaming an AG-UI
// run for that workflow can relay progress without polling the REST
// backend.
type Notifier struct {
	api      *restapi.Client
	throttle *Table
	Bridge   *ssebridge.Publisher
}

// NewNotifier builds a Notifier over the given REST client, with its own
// private throttle table.
func NewNotifier(api *restapi.Client) *Notifier {
	return &Notifier{api: api, throttle: NewTable()}
}

// WithBridge attaches a ssebridge Publisher for Redis-backed mirroring,
// returning n for chaining at construction time.
func (n *Notifier) WithBridge(p *ssebridge.Publisher) *Notifier {
	n.Bridge = p
	return n
}

// Activity is the Temporal-activity-shaped entry point, registered as a
// local activity by every workflow that tracks progress
// (workflow.ExecuteLocalActivity "notify_progress").
func (n *Notifier) Activity(ctx context.Context, in Input) (Output, error) {
	if ctx.Err() == context.Canceled {
		return Output{Success: false, Error: errs.ErrCancelled.Error()}, nil
	}

	if !n.throttle.Allow(in.WorkflowID, in.Progress.Status, in.Progress.UpdatedAt) {
		return Output{Success: true}, nil
	}

	if n.Bridge != nil {
		// Best-effort: a dropped Redis mirror never fails progress
		// reporting, since the REST broadcast below is the durable path.
		_ = n.Bridge.Publish(ctx, in.Progress)
	}

	body := map[string]any{
		"workflowId": in.WorkflowID,
		"progress":   in.Progress,
	}
	if err := n.api.Post(ctx, "/sse/broadcast", body, nil); err != nil {
		if ctx.Err() == context.Canceled {
			return Output{Success: false, Error: errs.ErrCancelled.Error()}, nil
		}
		return Output{}, err
	}
	return Output{Success: true}, nil
}
