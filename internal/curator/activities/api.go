package activities

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/errs"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

// GetEntryInput/Output: fetch one entry. Grounded on activities/api.py's
// get_entry.
type GetEntryInput struct {
	EntryID string `json:"entryId"`
}

type GetEntryOutput struct {
	Entry model.Entry `json:"entry"`
	Found bool        `json:"found"`
}

// GetEntry fetches an entry by id. A REST 404 is not an error: Found is
// false and Entry is the zero value (§7 "Not-found -> silent success").
func (a *Activities) GetEntry(ctx context.Context, in GetEntryInput) (GetEntryOutput, error) {
	var entry model.Entry
	err := a.API.Get(ctx, "/api/entries/"+in.EntryID, &entry)
	if errors.Is(err, errs.ErrNotFound) {
		return GetEntryOutput{Found: false}, nil
	}
	if err != nil {
		return GetEntryOutput{}, err
	}
	return GetEntryOutput{Entry: entry, Found: true}, nil
}

// GetEntriesInput/Output: fetch multiple entries in parallel, skipping
// ones that error. Grounded on activities/api.py's get_entries.
type GetEntriesInput struct {
	EntryIDs []string `json:"entryIds"`
}

type GetEntriesOutput struct {
	Entries []model.Entry `json:"entries"`
}

// GetEntries fetches entries concurrently; a failed fetch for one id is
// logged and skipped rather than failing the whole batch.
func (a *Activities) GetEntries(ctx context.Context, in GetEntriesInput) (GetEntriesOutput, error) {
	type result struct {
		entry model.Entry
		ok    bool
	}
	results := make([]result, len(in.EntryIDs))
	done := make(chan int, len(in.EntryIDs))

	for i, id := range in.EntryIDs {
		go func(i int, id string) {
			defer func() { done <- i }()
			var entry model.Entry
			if err := a.API.Get(ctx, "/api/entries/"+id, &entry); err != nil {
				activity.GetLogger(ctx).Warn("failed to fetch entry", "entryId", id, "error", err)
				return
			}
			results[i] = result{entry: entry, ok: true}
		}(i, id)
	}
	for range in.EntryIDs {
		<-done
	}

	out := make([]model.Entry, 0, len(in.EntryIDs))
	for _, r := range results {
		if r.ok {
			out = append(out, r.entry)
		}
	}
	return GetEntriesOutput{Entries: out}, nil
}

// ListUnsummarizedEntryIdsInput/Output: entries missing a summary.
// Grounded on activities/api.py's list_unsummarized_entry_ids.
type ListUnsummarizedEntryIdsInput struct {
	Limit int `json:"limit"`
}

type ListUnsummarizedEntryIdsOutput struct {
	EntryIDs []string `json:"entryIds"`
}

func (a *Activities) ListUnsummarizedEntryIds(ctx context.Context, in ListUnsummarizedEntryIdsInput) (ListUnsummarizedEntryIdsOutput, error) {
	var entries []model.Entry
	path := fmt.Sprintf("/api/entries?hasSummary=false&limit=%d", in.Limit)
	if err := a.API.GetLong(ctx, path, &entries); err != nil {
		return ListUnsummarizedEntryIdsOutput{}, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.FullContent != "" || e.FilteredContent != "" {
			ids = append(ids, e.ID)
		}
	}
	activity.GetLogger(ctx).Info("found unsummarized entries with content", "count", len(ids))
	return ListUnsummarizedEntryIdsOutput{EntryIDs: ids}, nil
}

// GetAppSettingsInput/Output. Grounded on activities/api.py's
// get_app_settings, merging REST-backed settings with local env config.
type GetAppSettingsInput struct{}

type GetAppSettingsOutput struct {
	TargetLanguage          string `json:"targetLanguage"`
	AutoDistill             bool   `json:"autoDistill"`
	EnableContentFetch      bool   `json:"enableContentFetch"`
	MaxConcurrent           int    `json:"maxConcurrent"`
	EnableThumbnail         bool   `json:"enableThumbnail"`
	DomainFetchDelaySeconds float64 `json:"domainFetchDelaySeconds"`
}

func (a *Activities) GetAppSettings(ctx context.Context, _ GetAppSettingsInput) (GetAppSettingsOutput, error) {
	var settings struct {
		TargetLanguage string `json:"targetLanguage"`
	}
	if err := a.API.Get(ctx, "/api/settings", &settings); err != nil {
		return GetAppSettingsOutput{}, err
	}
	out := GetAppSettingsOutput{
		TargetLanguage:          settings.TargetLanguage,
		AutoDistill:             a.Cfg.EnableSummarization,
		EnableContentFetch:      a.Cfg.EnableContentFetch,
		MaxConcurrent:           a.Cfg.FeedIngestionConcurrency,
		EnableThumbnail:         a.Cfg.EnableThumbnail,
		DomainFetchDelaySeconds: a.Cfg.DomainFetchDelay.Seconds(),
	}
	activity.GetLogger(ctx).Info("got app settings",
		"targetLanguage", out.TargetLanguage,
		"autoDistill", out.AutoDistill,
		"enableContentFetch", out.EnableContentFetch,
		"maxConcurrent", out.MaxConcurrent,
		"enableThumbnail", out.EnableThumbnail,
		"domainFetchDelay", out.DomainFetchDelaySeconds,
	)
	return out, nil
}

// SaveEntryContextInput/Output. Grounded on activities/api.py's
// save_entry_context.
type SaveEntryContextInput struct {
	EntryID string         `json:"entryId"`
	Context map[string]any `json:"context"`
}

type SaveEntryContextOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (a *Activities) SaveEntryContext(ctx context.Context, in SaveEntryContextInput) (SaveEntryContextOutput, error) {
	if err := a.API.Post(ctx, "/api/entries/"+in.EntryID+"/context", in.Context, nil); err != nil {
		activity.GetLogger(ctx).Error("failed to save context", "entryId", in.EntryID, "error", err)
		return SaveEntryContextOutput{Success: false, Error: err.Error()}, nil
	}
	activity.GetLogger(ctx).Info("saved context for entry", "entryId", in.EntryID)
	return SaveEntryContextOutput{Success: true}, nil
}
