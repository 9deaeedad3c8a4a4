package research

import (
	"context"
	"net/url"
	"strconv"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/errs"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/restapi"
)

// Embedder computes a query embedding. Satisfied by the same provider
// used for the ingestion-side embedding backfill (activities.Embedder),
// kept as a separate, narrower interface here since the research runner
// only ever embeds one query string at a time.
type Embedder interface {
	Embed(texts []string) ([][]float32, error)
}

// Searcher fans a set of sub-queries out to one retrieval source.
// Grounded on tools/search.py (keyword) and tools/embedding.py (vector):
// in the original these are separate per-source client modules in the
// agent process, distinct from the worker's own index/search activities,
// since the agent and worker are independently deployed processes
// against the same REST backend.
type Searcher interface {
	Search(ctx context.Context, source model.Source, queries []string) ([]model.RetrievedDocument, error)
}

// APISearcher implements Searcher directly against the REST backend,
// the agent-process counterpart to activities.SearchEntriesKeyword/
// SearchEntriesVector.
type APISearcher struct {
	API             *restapi.Client
	Embedder        Embedder
	LimitPerQuery   int
	VectorThreshold float64
}

func NewAPISearcher(api *restapi.Client, embedder Embedder) *APISearcher {
	return &APISearcher{API: api, Embedder: embedder, LimitPerQuery: 5, VectorThreshold: 0.8}
}

func (s *APISearcher) Search(ctx context.Context, source model.Source, queries []string) ([]model.RetrievedDocument, error) {
	switch source {
	case model.SourceKeyword:
		return s.searchKeyword(ctx, queries)
	case model.SourceVector:
		return s.searchVector(ctx, queries)
	default:
		return nil, nil
	}
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

// searchKeyword runs each sub-query in parallel, matching
// _search_meilisearch's asyncio.gather(..., return_exceptions=True):
// a failing sub-query is skipped rather than failing the whole call.
func (s *APISearcher) searchKeyword(ctx context.Context, queries []string) ([]model.RetrievedDocument, error) {
	limit := s.LimitPerQuery
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		docs []model.RetrievedDocument
	}
	resultCh := make(chan result, len(queries))
	for _, q := range queries {
		q := q
		go func() {
			v := url.Values{}
			v.Set("q", q)
			v.Set("limit", strconv.Itoa(limit))
			var resp searchEntriesResponse
			if err := s.API.Get(ctx, "/api/search?"+v.Encode(), &resp); err != nil {
				resultCh <- result{}
				return
			}
			docs := make([]model.RetrievedDocument, 0, len(resp.Entries))
			for _, e := range resp.Entries {
				docs = append(docs, model.RetrievedDocument{
					Source: model.SourceKeyword, ID: e.ID, Title: e.Title,
					Content: e.Summary, URL: e.URL, Relevance: e.Score,
				})
			}
			resultCh <- result{docs: docs}
		}()
	}

	all := make([]model.RetrievedDocument, 0, len(queries)*limit)
	for range queries {
		res := <-resultCh
		all = append(all, res.docs...)
	}
	return all, nil
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

// searchVector embeds each sub-query and asks the backend for nearest
// neighbors, matching _search_embedding's parallel fan-out.
func (s *APISearcher) searchVector(ctx context.Context, queries []string) ([]model.RetrievedDocument, error) {
	if s.Embedder == nil {
		return nil, errs.ErrFeatureDisabled
	}
	limit := s.LimitPerQuery
	if limit <= 0 {
		limit = 5
	}
	threshold := s.VectorThreshold
	if threshold <= 0 {
		threshold = 0.8
	}

	type result struct {
		docs []model.RetrievedDocument
	}
	resultCh := make(chan result, len(queries))
	for _, q := range queries {
		q := q
		go func() {
			vectors, err := s.Embedder.Embed([]string{q})
			if err != nil || len(vectors) == 0 {
				resultCh <- result{}
				return
			}
			body := map[string]any{"embedding": vectors[0], "limit": limit, "threshold": threshold}
			var resp searchByVectorResponse
			if err := s.API.Post(ctx, "/api/entries/search-by-vector", body, &resp); err != nil {
				resultCh <- result{}
				return
			}
			docs := make([]model.RetrievedDocument, 0, len(resp.Entries))
			for _, e := range resp.Entries {
				var relevance *float64
				if e.SimilarityScore != nil {
					rv := 1.0 - *e.SimilarityScore
					relevance = &rv
				}
				docs = append(docs, model.RetrievedDocument{
					Source: model.SourceVector, ID: e.ID, Title: e.Title,
					Content: e.Summary, URL: e.URL, Relevance: relevance,
				})
			}
			resultCh <- result{docs: docs}
		}()
	}

	all := make([]model.RetrievedDocument, 0, len(queries)*limit)
	for range queries {
		res := <-resultCh
		all = append(all, res.docs...)
	}
	return all, nil
}
