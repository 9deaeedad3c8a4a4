// Package model holds the plain data structures shared across the worker
// and agent processes: entries, feeds, research state, and progress
// snapshots. It has no framework dependency so that activities, workflows,
// and the research graph can all import it without pulling in Temporal or
// HTTP concerns.
package model

import "time"

// Entry is a single ingested article. Id is immutable once assigned.
type Entry struct {
	ID                string     `json:"id"`
	FeedID            string     `json:"feedId"`
	Title             string     `json:"title"`
	URL               string     `json:"url"`
	Author            string     `json:"author"`
	PublishedAt       *time.Time `json:"publishedAt,omitempty"`
	FeedContent       string     `json:"feedContent,omitempty"`
	FullContent       string     `json:"fullContent,omitempty"`
	FilteredContent   string     `json:"filteredContent,omitempty"`
	TranslatedContent string     `json:"translatedContent,omitempty"`
	Summary           string     `json:"summary,omitempty"`
	IsRead            bool       `json:"isRead"`
	IsStarred         bool       `json:"isStarred"`
	Keep              bool       `json:"keep"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	Embedding         []float32  `json:"embedding,omitempty"`
}

// HasEmbeddableContent reports whether the entry has any text an embedding
// could legitimately be computed from.
func (e Entry) HasEmbeddableContent() bool {
	return e.FilteredContent != "" || e.Summary != "" || e.Title != ""
}

// Feed is a subscribed RSS/Atom source.
type Feed struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	SiteURL string      `json:"siteUrl"`
	Options FeedOptions `json:"options"`
}

// FeedOptions carries per-feed fetch customization. ExtractionRules are
// always exclusions (CSS selectors to strip), never inclusions.
type FeedOptions struct {
	ExtractionRules []string `json:"extractionRules,omitempty"`
}

// EntryStatus is the minimal projection of an Entry needed by the cleanup
// predicate (§8 Cleanup predicate invariant) without pulling in full content
// fields.
type EntryStatus struct {
	ID          string
	IsRead      bool
	IsStarred   bool
	Keep        bool
	PublishedAt time.Time
}

// MatchesCleanupPredicate reports whether the entry should be deleted by
// EntriesCleanupWorkflow: read, not starred, not kept, and older than cutoff.
func (s EntryStatus) MatchesCleanupPredicate(cutoff time.Time) bool {
	return s.IsRead && !s.IsStarred && !s.Keep && s.PublishedAt.Before(cutoff)
}
