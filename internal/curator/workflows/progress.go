package workflows

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/notify"
)

// localActivityOptions bounds the NotifyProgress local activity call:
// short, no retries beyond a couple of attempts since a dropped progress
// update is not worth stalling the workflow over.
var localActivityOptions = workflow.LocalActivityOptions{
	StartToCloseTimeout: 5 * time.Second,
	RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
}

// ProgressTracker owns one workflow's mutable Progress snapshot and the
// getProgress query handler over it. Modeled as a capability interface
// the notifier consumes, not a back-pointer to the workflow: callers
// hold a *ProgressTracker as a local variable and call its methods
// explicitly.
type ProgressTracker struct {
	snapshot model.Progress
}

// NewProgressTracker registers the getProgress query handler and seeds
// an initial pending snapshot.
func NewProgressTracker(ctx workflow.Context, workflowID string, entityIDs []string) (*ProgressTracker, error) {
	now := workflow.Now(ctx)
	t := &ProgressTracker{
		snapshot: model.Progress{
			WorkflowID: workflowID,
			EntityIDs:  entityIDs,
			StartedAt:  now,
			UpdatedAt:  now,
			Status:     model.StatusPending,
			Counters:   map[string]int{},
		},
	}
	err := workflow.SetQueryHandler(ctx, "getProgress", func() (model.Progress, error) {
		return t.snapshot, nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Update mutates the snapshot and fires a throttled NotifyProgress local
// activity. Errors from the local activity are deliberately not
// propagated: a failed progress notification must never fail the
// workflow it is reporting on.
func (t *ProgressTracker) Update(ctx workflow.Context, status model.Status, step, message string) {
	t.snapshot.Status = status
	t.snapshot.CurrentStep = step
	t.snapshot.Message = message
	t.snapshot.UpdatedAt = workflow.Now(ctx)

	lctx := workflow.WithLocalActivityOptions(ctx, localActivityOptions)
	var out notify.Output
	_ = workflow.ExecuteLocalActivity(lctx, notifyProgressLocalActivity, notify.Input{
		WorkflowID: t.snapshot.WorkflowID,
		Progress:   t.snapshot,
	}).Get(ctx, &out)
}

// Fail marks the snapshot as errored and notifies. Workflows call it on
// each stage's error path, right before returning the error, so a failed
// stage surfaces a clean status=error snapshot.
func (t *ProgressTracker) Fail(ctx workflow.Context, err error) {
	t.snapshot.Error = err.Error()
	t.Update(ctx, model.StatusError, t.snapshot.CurrentStep, "failed: "+err.Error())
}

// IncrementCounter bumps a named counter in the snapshot (e.g.
// "processed", "deletedCount") ahead of the next Update call.
func (t *ProgressTracker) IncrementCounter(name string, delta int) {
	if t.snapshot.Counters == nil {
		t.snapshot.Counters = map[string]int{}
	}
	t.snapshot.Counters[name] += delta
}

// Snapshot returns the current progress value (used by workflows that
// need to build their own final result from it).
func (t *ProgressTracker) Snapshot() model.Progress {
	return t.snapshot
}

// notifyProgressLocalActivity is registered as a local-activity function;
// the concrete *notify.Notifier is supplied by the worker at process
// startup via BindNotifier, before any workflow executes.
var notifyProgressLocalActivity = func(ctx context.Context, in notify.Input) (notify.Output, error) {
	panic("notifyProgressLocalActivity must be rebound by cmd/worker before use")
}

// BindNotifier installs the concrete notifier implementation used by
// ProgressTracker.Update. Must be called once during worker startup,
// before any workflow executes.
func BindNotifier(n *notify.Notifier) {
	notifyProgressLocalActivity = n.Activity
}
