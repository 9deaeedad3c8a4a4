package dialogue

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/durable"
)

// TemporalEvaluationTrigger implements EvaluationTrigger by starting
// EvaluationWorkflow fire-and-forget, mirroring temporal.py's
// start_evaluation_workflow (including its "evaluation-{mode}-{hex8}"
// workflow id convention).
type TemporalEvaluationTrigger struct {
	Client *durable.Client
}

func NewTemporalEvaluationTrigger(c *durable.Client) *TemporalEvaluationTrigger {
	return &TemporalEvaluationTrigger{Client: c}
}

func (t *TemporalEvaluationTrigger) TriggerEvaluation(ctx context.Context, traceID, mode, question string, contexts []string, answer string) error {
	workflowID := fmt.Sprintf("evaluation-%s-%s", mode, uuid.New().String()[:8])

	input := map[string]any{
		"traceId":  traceID,
		"mode":     mode,
		"question": question,
		"contexts": contexts,
		"answer":   answer,
	}

	_, err := t.Client.StartWorkflow(ctx, durable.StartWorkflowOptions{ID: workflowID}, "EvaluationWorkflow", input)
	return err
}
