package workflows

import (
	"go.temporal.io/sdk/workflow"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/activities"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

// ContextCollectionInput/Output: gathers enrichment material (web-page
// summaries for extracted links) for a single entry ahead of dialogue or
// research use.
type ContextCollectionInput struct {
	WorkflowID string   `json:"workflowId"`
	EntryID    string   `json:"entryId"`
	Links      []string `json:"links"`
}

type ContextCollectionOutput struct {
	PagesCollected int `json:"pagesCollected"`
}

func ContextCollectionWorkflow(ctx workflow.Context, in ContextCollectionInput) (ContextCollectionOutput, error) {
	tracker, err := NewProgressTracker(ctx, in.WorkflowID, []string{in.EntryID})
	if err != nil {
		return ContextCollectionOutput{}, err
	}
	tracker.Update(ctx, model.StatusRunning, "collecting", "collecting linked page context")

	collected := 0
	for _, link := range in.Links {
		var fetchOut activities.FetchSingleContentOutput
		if err := workflow.ExecuteActivity(withShort(ctx), "FetchSingleContent", activities.FetchSingleContentInput{URL: link}).Get(ctx, &fetchOut); err != nil {
			workflow.GetLogger(ctx).Warn("failed to fetch linked page", "url", link, "error", err)
			continue
		}
		if !fetchOut.Success || fetchOut.Blocked {
			continue
		}

		var distillOut activities.DistillEntryContentOutput
		if err := workflow.ExecuteActivity(withDistill(ctx), "DistillEntryContent", activities.DistillEntryContentInput{FullContent: fetchOut.FullContent}).Get(ctx, &distillOut); err != nil || !distillOut.Success {
			continue
		}

		var saveOut activities.SaveWebPageEnrichmentOutput
		if err := workflow.ExecuteActivity(withShort(ctx), "SaveWebPageEnrichment", activities.SaveWebPageEnrichmentInput{
			EntryID: in.EntryID,
			URL:     link,
			Summary: distillOut.Summary,
		}).Get(ctx, &saveOut); err != nil {
			continue
		}
		collected++
		tracker.IncrementCounter("pagesCollected", 1)
	}

	tracker.Update(ctx, model.StatusCompleted, "done", "collected linked page context")
	return ContextCollectionOutput{PagesCollected: collected}, nil
}

// FetchEntryLinksInput/Output: thin workflow wrapper around the
// SaveEntryLinks activity with the standard progress/retry envelope,
// invoked standalone; no other workflow starts it.
type FetchEntryLinksInput struct {
	WorkflowID string                 `json:"workflowId"`
	EntryID    string                 `json:"entryId"`
	Links      []activities.EntryLink `json:"links"`
}

type FetchEntryLinksOutput struct {
	Success bool `json:"success"`
}

func FetchEntryLinksWorkflow(ctx workflow.Context, in FetchEntryLinksInput) (FetchEntryLinksOutput, error) {
	tracker, err := NewProgressTracker(ctx, in.WorkflowID, []string{in.EntryID})
	if err != nil {
		return FetchEntryLinksOutput{}, err
	}
	tracker.Update(ctx, model.StatusRunning, "saving_links", "saving entry links")

	var out activities.SaveEntryLinksOutput
	if err := workflow.ExecuteActivity(withShort(ctx), "SaveEntryLinks", activities.SaveEntryLinksInput{
		EntryID: in.EntryID,
		Links:   in.Links,
	}).Get(ctx, &out); err != nil {
		tracker.Fail(ctx, err)
		return FetchEntryLinksOutput{}, err
	}

	tracker.Update(ctx, model.StatusCompleted, "done", "saved entry links")
	return FetchEntryLinksOutput{Success: out.Success}, nil
}
