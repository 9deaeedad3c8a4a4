package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"
)

// GitHubRepoEnrichment mirrors one repo's enrichment record as saved by
// activities/enrichment.py's save_github_enrichment.
type GitHubRepoEnrichment struct {
	RepoFullName string `json:"repoFullName"`
	Description  string `json:"description"`
	Stars        int    `json:"stars"`
	Language     string `json:"language"`
}

// SaveGitHubEnrichmentInput/Output.
type SaveGitHubEnrichmentInput struct {
	EntryID string                 `json:"entryId"`
	Repos   []GitHubRepoEnrichment `json:"repos"`
}

type SaveGitHubEnrichmentOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SaveGitHubEnrichment replaces an entry's GitHub-repo enrichment records.
// Grounded on activities/enrichment.py's delete-then-insert pattern: the
// entire enrichment set for the entry is deleted first so the activity
// is idempotent under Temporal retry (a retried attempt can't duplicate
// rows a prior attempt already inserted).
func (a *Activities) SaveGitHubEnrichment(ctx context.Context, in SaveGitHubEnrichmentInput) (SaveGitHubEnrichmentOutput, error) {
	if err := a.API.Delete(ctx, "/api/entries/"+in.EntryID+"/enrichments?type=github", nil, nil); err != nil {
		activity.GetLogger(ctx).Error("failed to clear github enrichment", "entryId", in.EntryID, "error", err)
		return SaveGitHubEnrichmentOutput{Success: false, Error: err.Error()}, nil
	}
	if len(in.Repos) == 0 {
		return SaveGitHubEnrichmentOutput{Success: true}, nil
	}

	body := map[string]any{"type": "github", "repos": in.Repos}
	if err := a.API.Post(ctx, "/api/entries/"+in.EntryID+"/enrichments", body, nil); err != nil {
		activity.GetLogger(ctx).Error("failed to save github enrichment", "entryId", in.EntryID, "error", err)
		return SaveGitHubEnrichmentOutput{Success: false, Error: err.Error()}, nil
	}
	activity.GetLogger(ctx).Info("saved github enrichment", "entryId", in.EntryID, "repoCount", len(in.Repos))
	return SaveGitHubEnrichmentOutput{Success: true}, nil
}

// DeleteEnrichmentInput/Output. Grounded on activities/enrichment.py's
// delete_enrichment.
type DeleteEnrichmentInput struct {
	EntryID string `json:"entryId"`
	Type    string `json:"type"`
}

type DeleteEnrichmentOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (a *Activities) DeleteEnrichment(ctx context.Context, in DeleteEnrichmentInput) (DeleteEnrichmentOutput, error) {
	path := fmt.Sprintf("/api/entries/%s/enrichments?type=%s", in.EntryID, in.Type)
	if err := a.API.Delete(ctx, path, nil, nil); err != nil {
		activity.GetLogger(ctx).Error("failed to delete enrichment", "entryId", in.EntryID, "type", in.Type, "error", err)
		return DeleteEnrichmentOutput{Success: false, Error: err.Error()}, nil
	}
	activity.GetLogger(ctx).Info("deleted enrichment", "entryId", in.EntryID, "type", in.Type)
	return DeleteEnrichmentOutput{Success: true}, nil
}
