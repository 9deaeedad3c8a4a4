package workflows

import (
	"fmt"

	"go.temporal.io/sdk/workflow"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/activities"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

const defaultCleanupBatchSize = 1000

// EntriesCleanupInput/Output.
type EntriesCleanupInput struct {
	WorkflowID    string `json:"workflowId"`
	OlderThanDays int    `json:"olderThanDays"`
	DryRun        bool   `json:"dryRun"`
}

type EntriesCleanupOutput struct {
	DeletedCount int `json:"deletedCount"`
}

// EntriesCleanupWorkflow deletes entries matching
// (is_read && !is_starred && !keep && published_at < now - N days), then
// removes their ids from the search index in batches of 1000. DryRun
// reports the count without deleting anything or touching the index.
func EntriesCleanupWorkflow(ctx workflow.Context, in EntriesCleanupInput) (EntriesCleanupOutput, error) {
	tracker, err := NewProgressTracker(ctx, in.WorkflowID, nil)
	if err != nil {
		return EntriesCleanupOutput{}, err
	}
	tracker.Update(ctx, model.StatusRunning, "cleaning", fmt.Sprintf("cleaning entries older than %d days (dryRun=%v)", in.OlderThanDays, in.DryRun))

	var cleanupOut activities.CleanupOldEntriesOutput
	if err := workflow.ExecuteActivity(withShort(ctx), "CleanupOldEntries", activities.CleanupOldEntriesInput{
		OlderThanDays: in.OlderThanDays,
		DryRun:        in.DryRun,
	}).Get(ctx, &cleanupOut); err != nil {
		tracker.Fail(ctx, err)
		return EntriesCleanupOutput{}, err
	}

	if in.DryRun || cleanupOut.DeletedCount == 0 {
		tracker.Update(ctx, model.StatusCompleted, "done", fmt.Sprintf("would delete %d entries", cleanupOut.DeletedCount))
		return EntriesCleanupOutput{DeletedCount: cleanupOut.DeletedCount}, nil
	}

	tracker.Update(ctx, model.StatusRunning, "pruning_index", "removing deleted entries from search index")
	for start := 0; start < len(cleanupOut.DeletedIDs); start += defaultCleanupBatchSize {
		end := start + defaultCleanupBatchSize
		if end > len(cleanupOut.DeletedIDs) {
			end = len(cleanupOut.DeletedIDs)
		}
		batch := cleanupOut.DeletedIDs[start:end]
		var removeOut activities.RemoveDocumentsFromIndexOutput
		if err := workflow.ExecuteActivity(withShort(ctx), "RemoveDocumentsFromIndex", activities.RemoveDocumentsFromIndexInput{EntryIDs: batch}).Get(ctx, &removeOut); err != nil {
			workflow.GetLogger(ctx).Warn("failed to prune index after cleanup", "error", err)
		}
	}

	tracker.Update(ctx, model.StatusCompleted, "done", fmt.Sprintf("deleted %d entries", cleanupOut.DeletedCount))
	return EntriesCleanupOutput{DeletedCount: cleanupOut.DeletedCount}, nil
}
