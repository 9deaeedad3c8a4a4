package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
)

// IndexDocument is the search-index representation of one entry,
// derived from its filtered content.
type IndexDocument struct {
	EntryID string `json:"entryId"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// IndexEntriesBatchInput/Output.
type IndexEntriesBatchInput struct {
	Documents []IndexDocument `json:"documents"`
}

type IndexEntriesBatchOutput struct {
	Indexed int `json:"indexed"`
}

// IndexEntriesBatch upserts a batch of documents into the search index
// via the REST backend's search proxy.
func (a *Activities) IndexEntriesBatch(ctx context.Context, in IndexEntriesBatchInput) (IndexEntriesBatchOutput, error) {
	if len(in.Documents) == 0 {
		return IndexEntriesBatchOutput{}, nil
	}
	body := map[string]any{"documents": in.Documents}
	if err := a.API.Post(ctx, "/api/search/index/batch", body, nil); err != nil {
		return IndexEntriesBatchOutput{}, err
	}
	activity.GetLogger(ctx).Info("indexed entries batch", "count", len(in.Documents))
	return IndexEntriesBatchOutput{Indexed: len(in.Documents)}, nil
}

// RemoveDocumentsFromIndexInput/Output.
type RemoveDocumentsFromIndexInput struct {
	EntryIDs []string `json:"entryIds"`
}

type RemoveDocumentsFromIndexOutput struct {
	Removed int `json:"removed"`
}

func (a *Activities) RemoveDocumentsFromIndex(ctx context.Context, in RemoveDocumentsFromIndexInput) (RemoveDocumentsFromIndexOutput, error) {
	if len(in.EntryIDs) == 0 {
		return RemoveDocumentsFromIndexOutput{}, nil
	}
	body := map[string]any{"entryIds": in.EntryIDs}
	if err := a.API.Post(ctx, "/api/search/index/remove", body, nil); err != nil {
		return RemoveDocumentsFromIndexOutput{}, err
	}
	activity.GetLogger(ctx).Info("removed documents from index", "count", len(in.EntryIDs))
	return RemoveDocumentsFromIndexOutput{Removed: len(in.EntryIDs)}, nil
}

// GetOrphanedDocumentIdsInput/Output: documents present in the index but
// absent from the entries table, consumed by SearchPruneWorkflow's
// set(index_ids) - set(db_ids) computation.
type GetOrphanedDocumentIdsInput struct{}

type GetOrphanedDocumentIdsOutput struct {
	IndexIDs []string `json:"indexIds"`
	DBIDs    []string `json:"dbIds"`
}

func (a *Activities) GetOrphanedDocumentIds(ctx context.Context, _ GetOrphanedDocumentIdsInput) (GetOrphanedDocumentIdsOutput, error) {
	var resp struct {
		IndexIDs []string `json:"indexIds"`
		DBIDs    []string `json:"dbIds"`
	}
	if err := a.API.GetLong(ctx, "/api/search/index/ids", &resp); err != nil {
		return GetOrphanedDocumentIdsOutput{}, err
	}
	return GetOrphanedDocumentIdsOutput{IndexIDs: resp.IndexIDs, DBIDs: resp.DBIDs}, nil
}
