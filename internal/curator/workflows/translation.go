package workflows

import (
	"fmt"

	"go.temporal.io/sdk/workflow"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/activities"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

// TranslationInput/Output.
type TranslationInput struct {
	WorkflowID     string   `json:"workflowId"`
	EntryIDs       []string `json:"entryIds"`
	TargetLanguage string   `json:"targetLanguage"`
	Provider       string   `json:"provider,omitempty"` // "deepl" (default) or "ms"
}

type TranslationOutput struct {
	Translated int `json:"translated"`
}

// TranslationWorkflow translates a batch of entries' full content into
// TargetLanguage via the configured provider, persisting translated
// content back through SaveEntryContext. TargetLanguage empty is a no-op
// (feature disabled).
func TranslationWorkflow(ctx workflow.Context, in TranslationInput) (TranslationOutput, error) {
	if in.TargetLanguage == "" {
		return TranslationOutput{}, nil
	}

	tracker, err := NewProgressTracker(ctx, in.WorkflowID, in.EntryIDs)
	if err != nil {
		return TranslationOutput{}, err
	}
	tracker.Update(ctx, model.StatusRunning, "fetching_entries", "loading entries to translate")

	var entriesOut activities.GetEntriesOutput
	if err := workflow.ExecuteActivity(withShort(ctx), "GetEntries", activities.GetEntriesInput{EntryIDs: in.EntryIDs}).Get(ctx, &entriesOut); err != nil {
		tracker.Fail(ctx, err)
		return TranslationOutput{}, err
	}

	batch := make([]activities.EntryToTranslate, 0, len(entriesOut.Entries))
	for _, e := range entriesOut.Entries {
		batch = append(batch, activities.EntryToTranslate{EntryID: e.ID, Title: e.Title, URL: e.URL, FullContent: e.FullContent})
	}

	activityName := "DeeplTranslateEntries"
	if in.Provider == "ms" {
		activityName = "MsTranslateEntries"
	}

	tracker.Update(ctx, model.StatusRunning, "translating", fmt.Sprintf("translating %d entries via %s", len(batch), activityName))
	var translateOut activities.TranslateBatchOutput
	if err := workflow.ExecuteActivity(withDistill(ctx), activityName, activities.TranslateBatchInput{
		Entries:        batch,
		TargetLanguage: in.TargetLanguage,
	}).Get(ctx, &translateOut); err != nil {
		tracker.Fail(ctx, err)
		return TranslationOutput{}, err
	}

	for _, t := range translateOut.Translated {
		body := map[string]any{"translatedContent": t.TranslatedContent}
		var saveOut activities.SaveEntryContextOutput
		if err := workflow.ExecuteActivity(withShort(ctx), "SaveEntryContext", activities.SaveEntryContextInput{EntryID: t.EntryID, Context: body}).Get(ctx, &saveOut); err != nil {
			workflow.GetLogger(ctx).Warn("failed to save translation", "entryId", t.EntryID, "error", err)
			continue
		}
		tracker.IncrementCounter("translated", 1)
	}

	tracker.Update(ctx, model.StatusCompleted, "done", fmt.Sprintf("translated %d entries", len(translateOut.Translated)))
	return TranslationOutput{Translated: len(translateOut.Translated)}, nil
}
