package workflows

import (
	"fmt"

	"go.temporal.io/sdk/workflow"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/activities"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

// ContentDistillationInput/Output.
type ContentDistillationInput struct {
	WorkflowID string   `json:"workflowId"`
	EntryIDs   []string `json:"entryIds"`
}

type ContentDistillationOutput struct {
	Distilled int `json:"distilled"`
	Failed    int `json:"failed"`
}

// ContentDistillationWorkflow fetches the named entries' fetched
// content, distills it in one batch activity call, and persists the
// filtered content + summary back through SaveEntryContext.
func ContentDistillationWorkflow(ctx workflow.Context, in ContentDistillationInput) (ContentDistillationOutput, error) {
	tracker, err := NewProgressTracker(ctx, in.WorkflowID, in.EntryIDs)
	if err != nil {
		return ContentDistillationOutput{}, err
	}
	tracker.Update(ctx, model.StatusRunning, "fetching_entries", "loading entries to distill")

	var entriesOut activities.GetEntriesOutput
	if err := workflow.ExecuteActivity(withShort(ctx), "GetEntries", activities.GetEntriesInput{EntryIDs: in.EntryIDs}).Get(ctx, &entriesOut); err != nil {
		tracker.Fail(ctx, err)
		return ContentDistillationOutput{}, err
	}

	batch := make([]activities.DistillEntryContentInput, 0, len(entriesOut.Entries))
	for _, e := range entriesOut.Entries {
		if e.FullContent == "" {
			continue
		}
		batch = append(batch, activities.DistillEntryContentInput{EntryID: e.ID, FullContent: e.FullContent, Title: e.Title})
	}

	tracker.Update(ctx, model.StatusRunning, "distilling", fmt.Sprintf("distilling %d entries", len(batch)))
	var distillOut activities.DistillEntriesBatchOutput
	if err := workflow.ExecuteActivity(withDistill(ctx), "DistillEntriesBatch", activities.DistillEntriesBatchInput{Entries: batch}).Get(ctx, &distillOut); err != nil {
		tracker.Fail(ctx, err)
		return ContentDistillationOutput{}, err
	}

	distilled, failed := 0, 0
	for _, r := range distillOut.Results {
		if !r.Success {
			failed++
			continue
		}
		body := map[string]any{"filteredContent": r.FilteredContent, "summary": r.Summary}
		var saveOut activities.SaveEntryContextOutput
		if err := workflow.ExecuteActivity(withShort(ctx), "SaveEntryContext", activities.SaveEntryContextInput{EntryID: r.EntryID, Context: body}).Get(ctx, &saveOut); err != nil || !saveOut.Success {
			failed++
			continue
		}
		distilled++
		tracker.IncrementCounter("distilled", 1)
	}

	tracker.Update(ctx, model.StatusCompleted, "done", fmt.Sprintf("distilled %d, failed %d", distilled, failed))
	return ContentDistillationOutput{Distilled: distilled, Failed: failed}, nil
}
