package workflows

import (
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/durable"
)

// shortActivityOptions covers ordinary REST-backed activities (§4.2
// "short activities 30s").
func shortActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy:         durable.DefaultRetryPolicy.ToTemporal(),
	}
}

// distillActivityOptions covers LLM-backed distillation calls (§4.2
// "distill 5-10 min").
func distillActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy:         durable.DefaultRetryPolicy.ToTemporal(),
	}
}

// graphActivityOptions covers long-running, heartbeated graph-add calls
// (§4.2 "graph-add up to 2h with heartbeats").
func graphActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Hour,
		HeartbeatTimeout:    1 * time.Minute,
		RetryPolicy:         durable.DefaultRetryPolicy.ToTemporal(),
	}
}

// withShort, withDistill, withGraph install the matching activity
// options onto ctx.
func withShort(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, shortActivityOptions())
}

func withDistill(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, distillActivityOptions())
}

func withGraph(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, graphActivityOptions())
}

// childWorkflowOptions builds options for a child workflow with a
// deterministic, parent-derived id so retries/replays don't mint a new
// id each time.
func childWorkflowOptions(ctx workflow.Context, idSuffix string) workflow.Context {
	info := workflow.GetInfo(ctx)
	return workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
		WorkflowID: info.WorkflowExecution.ID + "-" + idSuffix,
	})
}
