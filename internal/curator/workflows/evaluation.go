package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/activities"
)

// evaluationActivityOptions mirrors workflows/evaluation.py's
// 5-minute/2-attempt policy (RAGAS judging is a single LLM call, not a
// long-running job).
func evaluationActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 2,
			InitialInterval: 5 * time.Second,
		},
	}
}

// EvaluationInput/Result: RAGAS evaluation of an agent/research answer.
// Grounded verbatim on workflows/evaluation.py's EvaluationWorkflow.
type EvaluationInput struct {
	TraceID  string   `json:"traceId"`
	Mode     string   `json:"mode"`
	Question string   `json:"question"`
	Contexts []string `json:"contexts"`
	Answer   string   `json:"answer"`
}

type EvaluationResult struct {
	TraceID string             `json:"traceId"`
	Mode    string             `json:"mode"`
	Scores  map[string]float64 `json:"scores"`
	Success bool               `json:"success"`
	Error   string             `json:"error,omitempty"`
}

func EvaluationWorkflow(ctx workflow.Context, in EvaluationInput) (EvaluationResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("EvaluationWorkflow start", "traceId", in.TraceID, "mode", in.Mode, "questionLen", len(in.Question))

	ctx = workflow.WithActivityOptions(ctx, evaluationActivityOptions())
	var out activities.EvaluateRagasOutput
	err := workflow.ExecuteActivity(ctx, "EvaluateRagas", activities.EvaluateRagasInput{
		TraceID:  in.TraceID,
		Question: in.Question,
		Contexts: in.Contexts,
		Answer:   in.Answer,
	}).Get(ctx, &out)
	if err != nil {
		return EvaluationResult{}, err
	}

	logger.Info("EvaluationWorkflow end", "traceId", in.TraceID, "success", out.Success, "scores", out.Scores)
	return EvaluationResult{
		TraceID: in.TraceID,
		Mode:    in.Mode,
		Scores:  out.Scores,
		Success: out.Success,
		Error:   out.Error,
	}, nil
}

// SummarizationEvaluationInput/Result. Grounded verbatim on
// workflows/evaluation.py's SummarizationEvaluationWorkflow. No workflow
// in this package starts it.
type SummarizationEvaluationItem struct {
	EntryID string `json:"entryId"`
	TraceID string `json:"traceId"`
}

type SummarizationEvaluationInput struct {
	TraceID    string                        `json:"traceId"`
	Items      []SummarizationEvaluationItem `json:"items"`
	MaxSamples int                           `json:"maxSamples,omitempty"`
}

type SummarizationEvaluationResult struct {
	TraceID        string             `json:"traceId"`
	AverageScores  map[string]float64 `json:"averageScores"`
	EvaluatedCount int                `json:"evaluatedCount"`
	Success        bool               `json:"success"`
	Error          string             `json:"error,omitempty"`
}

func SummarizationEvaluationWorkflow(ctx workflow.Context, in SummarizationEvaluationInput) (SummarizationEvaluationResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("SummarizationEvaluationWorkflow start", "traceId", in.TraceID, "items", len(in.Items))

	items := make([]activities.SummarizeItem, len(in.Items))
	for i, item := range in.Items {
		items[i] = activities.SummarizeItem{EntryID: item.EntryID, TraceID: item.TraceID}
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 2,
			InitialInterval: 5 * time.Second,
		},
	})
	var out activities.EvaluateSummarizationOutput
	err := workflow.ExecuteActivity(ctx, "EvaluateSummarization", activities.EvaluateSummarizationInput{
		TraceID:    in.TraceID,
		Items:      items,
		MaxSamples: in.MaxSamples,
	}).Get(ctx, &out)
	if err != nil {
		return SummarizationEvaluationResult{}, err
	}

	logger.Info("SummarizationEvaluationWorkflow end", "traceId", in.TraceID, "success", out.Success, "evaluated", out.EvaluatedCount, "scores", out.AverageScores)
	return SummarizationEvaluationResult{
		TraceID:        in.TraceID,
		AverageScores:  out.AverageScores,
		EvaluatedCount: out.EvaluatedCount,
		Success:        out.Success,
		Error:          out.Error,
	}, nil
}
