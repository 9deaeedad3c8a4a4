package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
)

// EntryLink mirrors one outbound link extracted from an entry's content,
// as saved by activities/entry_links.py's save_entry_links.
type EntryLink struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// SaveEntryLinksInput/Output.
type SaveEntryLinksInput struct {
	EntryID string      `json:"entryId"`
	Links   []EntryLink `json:"links"`
}

type SaveEntryLinksOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SaveEntryLinks replaces an entry's extracted outbound links.
func (a *Activities) SaveEntryLinks(ctx context.Context, in SaveEntryLinksInput) (SaveEntryLinksOutput, error) {
	body := map[string]any{"links": in.Links}
	if err := a.API.Post(ctx, "/api/entries/"+in.EntryID+"/links", body, nil); err != nil {
		activity.GetLogger(ctx).Error("failed to save entry links", "entryId", in.EntryID, "error", err)
		return SaveEntryLinksOutput{Success: false, Error: err.Error()}, nil
	}
	activity.GetLogger(ctx).Info("saved entry links", "entryId", in.EntryID, "count", len(in.Links))
	return SaveEntryLinksOutput{Success: true}, nil
}
