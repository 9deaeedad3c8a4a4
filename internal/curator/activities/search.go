package activities

import (
	"context"
	"net/url"
	"sort"
	"strconv"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

// RetrievedDocument mirrors model.RetrievedDocument but is defined here
// too so activity inputs/outputs stay free of a direct model import
// cycle concern; the two are kept field-compatible and the research
// package converts between them.
type RetrievedDocument = model.RetrievedDocument

// SearchEntriesKeywordInput/Output. Grounded on
// services/search.py's SearchService.search_entries: a keyword query
// against the REST backend's own search endpoint (Meilisearch-backed
// upstream; here just "the keyword index" behind the REST boundary).
type SearchEntriesKeywordInput struct {
	Query  string `json:"query"`
	Limit  int    `json:"limit,omitempty"`
	FeedID string `json:"feedId,omitempty"`
}

type SearchEntriesKeywordOutput struct {
	Documents []RetrievedDocument `json:"documents"`
}

type searchEntriesResponse struct {
	Entries []struct {
		ID      string   `json:"id"`
		Title   string   `json:"title"`
		Summary string   `json:"summary"`
		URL     string   `json:"url"`
		Score   *float64 `json:"relevanceScore"`
	} `json:"entries"`
}

// SearchEntriesKeyword hits the keyword search endpoint. Every error from
// the REST client is returned as the activity's error; a 503 response
// (search backend not configured) is not turned into an empty result set.
func (a *Activities) SearchEntriesKeyword(ctx context.Context, in SearchEntriesKeywordInput) (SearchEntriesKeywordOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{}
	q.Set("q", in.Query)
	q.Set("limit", strconv.Itoa(limit))
	if in.FeedID != "" {
		q.Set("feedId", in.FeedID)
	}

	var resp searchEntriesResponse
	if err := a.API.Get(ctx, "/api/search?"+q.Encode(), &resp); err != nil {
		return SearchEntriesKeywordOutput{}, err
	}

	docs := make([]RetrievedDocument, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		docs = append(docs, RetrievedDocument{
			Source:    model.SourceKeyword,
			ID:        e.ID,
			Title:     e.Title,
			Content:   e.Summary,
			URL:       e.URL,
			Relevance: e.Score,
		})
	}
	return SearchEntriesKeywordOutput{Documents: docs}, nil
}

// SearchEntriesVectorInput/Output. Grounded on tools/embedding.py's
// search_entries_by_embedding: compute the query's embedding, then ask
// the backend for nearest neighbors within a cosine-distance threshold.
type SearchEntriesVectorInput struct {
	Query     string  `json:"query"`
	Limit     int     `json:"limit,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

type SearchEntriesVectorOutput struct {
	Documents []RetrievedDocument `json:"documents"`
}

type searchByVectorResponse struct {
	Entries []struct {
		ID              string   `json:"id"`
		Title           string   `json:"title"`
		Summary         string   `json:"summary"`
		URL             string   `json:"url"`
		SimilarityScore *float64 `json:"similarityScore"`
	} `json:"entries"`
}

func (a *Activities) SearchEntriesVector(ctx context.Context, in SearchEntriesVectorInput) (SearchEntriesVectorOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = 10
	}
	threshold := in.Threshold
	if threshold <= 0 {
		threshold = 0.8
	}

	vectors, err := a.Embedder.Embed([]string{in.Query})
	if err != nil {
		return SearchEntriesVectorOutput{}, err
	}
	var embedding []float32
	if len(vectors) > 0 {
		embedding = vectors[0]
	}

	var resp searchByVectorResponse
	body := map[string]any{"embedding": embedding, "limit": limit, "threshold": threshold}
	if err := a.API.Post(ctx, "/api/entries/search-by-vector", body, &resp); err != nil {
		return SearchEntriesVectorOutput{}, err
	}

	docs := make([]RetrievedDocument, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		// Lower cosine distance means higher relevance; invert it the
		// same way search_entries_by_embedding does.
		var relevance *float64
		if e.SimilarityScore != nil {
			r := 1.0 - *e.SimilarityScore
			relevance = &r
		}
		docs = append(docs, RetrievedDocument{
			Source:    model.SourceVector,
			ID:        e.ID,
			Title:     e.Title,
			Content:   e.Summary,
			URL:       e.URL,
			Relevance: relevance,
		})
	}
	// Highest relevance first; documents without a score sort last.
	sort.SliceStable(docs, func(i, j int) bool {
		ri, rj := docs[i].Relevance, docs[j].Relevance
		if ri == nil || rj == nil {
			return ri != nil && rj == nil
		}
		return *ri > *rj
	})
	return SearchEntriesVectorOutput{Documents: docs}, nil
}
