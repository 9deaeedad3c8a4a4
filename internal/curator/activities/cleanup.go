package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
)

// CleanupOldEntriesInput/Output. Grounded on activities/cleanup.py's
// cleanup_old_entries, which posts {olderThanDays, dryRun} to the
// backend and lets it apply the cleanup predicate server-side.
type CleanupOldEntriesInput struct {
	OlderThanDays int  `json:"olderThanDays"`
	DryRun        bool `json:"dryRun"`
}

type CleanupOldEntriesOutput struct {
	DeletedCount int      `json:"deletedCount"`
	DeletedIDs   []string `json:"deletedIds,omitempty"`
}

func (a *Activities) CleanupOldEntries(ctx context.Context, in CleanupOldEntriesInput) (CleanupOldEntriesOutput, error) {
	body := map[string]any{
		"olderThanDays": in.OlderThanDays,
		"dryRun":        in.DryRun,
	}
	var out CleanupOldEntriesOutput
	if err := a.API.Post(ctx, "/api/entries/cleanup", body, &out); err != nil {
		return CleanupOldEntriesOutput{}, err
	}
	activity.GetLogger(ctx).Info("cleaned up old entries", "deletedCount", out.DeletedCount, "dryRun", in.DryRun)
	return out, nil
}
