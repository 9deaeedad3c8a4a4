// Package dialogue implements the single-shot streaming chat agent's
// "dialogue" mode: given a user message and an optional entry id, stream
// an LLM completion back token by token, then
// fire an evaluation workflow if the feature is enabled. Grounded on
// agents/dialogue.py and services/entry.py. This runs in the agent
// process, not the Temporal worker, the same way the research package
// does; the two packages deliberately don't share a client since the
// original keeps the agent's services/* separate from the worker's
// activities/*.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/errs"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/restapi"
)

// Entries fetches entry data and renders it into the system-prompt
// context block, mirroring services/entry.py's EntryService.
type Entries struct {
	API *restapi.Client
}

func NewEntries(api *restapi.Client) *Entries {
	return &Entries{API: api}
}

type entryResponse struct {
	ID                string `json:"id"`
	FeedName          string `json:"feedName"`
	Title             string `json:"title"`
	URL               string `json:"url"`
	FeedContent       string `json:"feedContent"`
	FullContent       string `json:"fullContent"`
	FilteredContent   string `json:"filteredContent"`
	TranslatedContent string `json:"translatedContent"`
	Summary           string `json:"summary"`
	Author            string `json:"author"`
	PublishedAt       string `json:"publishedAt"`
}

// Fetch returns nil, nil when the entry does not exist (404), matching
// EntryService.get_entry's Entry | None return.
func (e *Entries) Fetch(ctx context.Context, entryID string) (*entryResponse, error) {
	var resp entryResponse
	err := e.API.Get(ctx, "/api/entries/"+entryID, &resp)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// BuildContext renders the entry into the system-prompt context block,
// mirroring EntryService.build_context's field precedence
// (translated > filtered > full > feed content).
func BuildContext(e *entryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", e.Title)
	if e.FeedName != "" {
		fmt.Fprintf(&b, "Source: %s\n", e.FeedName)
	}
	if e.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", e.Author)
	}
	if e.PublishedAt != "" {
		fmt.Fprintf(&b, "Published: %s\n", e.PublishedAt)
	}
	fmt.Fprintf(&b, "URL: %s\n\n", e.URL)

	content := e.TranslatedContent
	if content == "" {
		content = e.FilteredContent
	}
	if content == "" {
		content = e.FullContent
	}
	if content == "" {
		content = e.FeedContent
	}
	if content != "" {
		b.WriteString("## Content\n")
		b.WriteString(content)
		b.WriteString("\n")
	}
	if e.Summary != "" {
		b.WriteString("\n## Summary\n")
		b.WriteString(e.Summary)
	}
	return b.String()
}

// GetEntryContext fetches and formats an entry's context in one call,
// returning "" when entryID is empty or the entry is not found --
// mirroring agents/common.py's get_entry_context's None handling, which
// run_dialogue/run_research simply omit from the prompt.
func (e *Entries) GetEntryContext(ctx context.Context, entryID string) (string, error) {
	if entryID == "" {
		return "", nil
	}
	entry, err := e.Fetch(ctx, entryID)
	if err != nil {
		return "", err
	}
	if entry == nil {
		return "", nil
	}
	return BuildContext(entry), nil
}
