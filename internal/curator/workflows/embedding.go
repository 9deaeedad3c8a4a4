package workflows

import (
	"fmt"

	"go.temporal.io/sdk/workflow"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/activities"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

// defaultEmbeddingBatchSize bounds a single ComputeEmbeddings activity
// call so the embedding runtime's single-worker admission gate (§5)
// isn't held by one oversized call.
const defaultEmbeddingBatchSize = 50

// EmbeddingBackfillInput/Output.
type EmbeddingBackfillInput struct {
	WorkflowID string   `json:"workflowId"`
	EntryIDs   []string `json:"entryIds"`
	BatchSize  int      `json:"batchSize,omitempty"`
}

type EmbeddingBackfillOutput struct {
	Processed int      `json:"processed"`
	Skipped   []string `json:"skipped,omitempty"`
}

// EmbeddingBackfillWorkflow computes embeddings for a set of entries in
// fixed-size batches, run sequentially to respect the single-worker
// embedding admission gate.
func EmbeddingBackfillWorkflow(ctx workflow.Context, in EmbeddingBackfillInput) (EmbeddingBackfillOutput, error) {
	tracker, err := NewProgressTracker(ctx, in.WorkflowID, in.EntryIDs)
	if err != nil {
		return EmbeddingBackfillOutput{}, err
	}

	batchSize := in.BatchSize
	if batchSize <= 0 {
		batchSize = defaultEmbeddingBatchSize
	}

	var processed int
	var skipped []string
	for start := 0; start < len(in.EntryIDs); start += batchSize {
		end := start + batchSize
		if end > len(in.EntryIDs) {
			end = len(in.EntryIDs)
		}
		batch := in.EntryIDs[start:end]

		tracker.Update(ctx, model.StatusRunning, "embedding", fmt.Sprintf("embedding batch %d-%d of %d", start, end, len(in.EntryIDs)))
		var out activities.ComputeEmbeddingsOutput
		if err := workflow.ExecuteActivity(withDistill(ctx), "ComputeEmbeddings", activities.ComputeEmbeddingsInput{EntryIDs: batch}).Get(ctx, &out); err != nil {
			tracker.Fail(ctx, err)
			return EmbeddingBackfillOutput{Processed: processed, Skipped: skipped}, err
		}
		processed += out.Processed
		skipped = append(skipped, out.Skipped...)
		tracker.IncrementCounter("processed", out.Processed)
	}

	tracker.Update(ctx, model.StatusCompleted, "done", fmt.Sprintf("embedded %d entries, skipped %d", processed, len(skipped)))
	return EmbeddingBackfillOutput{Processed: processed, Skipped: skipped}, nil
}
