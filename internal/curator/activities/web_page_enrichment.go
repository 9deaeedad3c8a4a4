package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
)

// SaveWebPageEnrichmentInput/Output. Grounded on
// activities/web_page_enrichment.py's save_web_page_enrichment, which
// records a type="web_page" enrichment for a single fetched link.
type SaveWebPageEnrichmentInput struct {
	EntryID string `json:"entryId"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type SaveWebPageEnrichmentOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (a *Activities) SaveWebPageEnrichment(ctx context.Context, in SaveWebPageEnrichmentInput) (SaveWebPageEnrichmentOutput, error) {
	body := map[string]any{
		"type":    "web_page",
		"url":     in.URL,
		"title":   in.Title,
		"summary": in.Summary,
	}
	if err := a.API.Post(ctx, "/api/entries/"+in.EntryID+"/enrichments", body, nil); err != nil {
		activity.GetLogger(ctx).Error("failed to save web page enrichment", "entryId", in.EntryID, "url", in.URL, "error", err)
		return SaveWebPageEnrichmentOutput{Success: false, Error: err.Error()}, nil
	}
	activity.GetLogger(ctx).Info("saved web page enrichment", "entryId", in.EntryID, "url", in.URL)
	return SaveWebPageEnrichmentOutput{Success: true}, nil
}
