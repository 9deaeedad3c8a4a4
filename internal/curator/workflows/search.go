package workflows

import (
	"fmt"

	"go.temporal.io/sdk/workflow"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/activities"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

const defaultSearchBatchSize = 1000

// SearchReindexInput/Output.
type SearchReindexInput struct {
	WorkflowID string   `json:"workflowId"`
	EntryIDs   []string `json:"entryIds,omitempty"` // empty means "all entries with filtered_content"
	BatchSize  int      `json:"batchSize,omitempty"`
}

type SearchReindexOutput struct {
	Indexed int `json:"indexed"`
}

// SearchReindexWorkflow walks the named entries (or, if EntryIDs is
// empty, every entry with filtered_content) and upserts them into the
// search index in batches.
func SearchReindexWorkflow(ctx workflow.Context, in SearchReindexInput) (SearchReindexOutput, error) {
	tracker, err := NewProgressTracker(ctx, in.WorkflowID, in.EntryIDs)
	if err != nil {
		return SearchReindexOutput{}, err
	}

	entryIDs := in.EntryIDs
	if len(entryIDs) == 0 {
		var listOut activities.ListUnsummarizedEntryIdsOutput
		// Reuses the same "has content" listing activity shape; a full
		// reindex walk lists every entry id with filtered_content rather
		// than only unsummarized ones, via limit=0 meaning "no cap".
		if err := workflow.ExecuteActivity(withShort(ctx), "ListUnsummarizedEntryIds", activities.ListUnsummarizedEntryIdsInput{Limit: 0}).Get(ctx, &listOut); err != nil {
			tracker.Fail(ctx, err)
			return SearchReindexOutput{}, err
		}
		entryIDs = listOut.EntryIDs
	}

	batchSize := in.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSearchBatchSize
	}

	indexed := 0
	for start := 0; start < len(entryIDs); start += batchSize {
		end := start + batchSize
		if end > len(entryIDs) {
			end = len(entryIDs)
		}
		batchIDs := entryIDs[start:end]

		var entriesOut activities.GetEntriesOutput
		if err := workflow.ExecuteActivity(withShort(ctx), "GetEntries", activities.GetEntriesInput{EntryIDs: batchIDs}).Get(ctx, &entriesOut); err != nil {
			tracker.Fail(ctx, err)
			return SearchReindexOutput{Indexed: indexed}, err
		}

		docs := make([]activities.IndexDocument, 0, len(entriesOut.Entries))
		for _, e := range entriesOut.Entries {
			if e.FilteredContent == "" {
				continue
			}
			docs = append(docs, activities.IndexDocument{EntryID: e.ID, Title: e.Title, Content: e.FilteredContent})
		}

		tracker.Update(ctx, model.StatusRunning, "indexing", fmt.Sprintf("indexing batch %d-%d of %d", start, end, len(entryIDs)))
		var idxOut activities.IndexEntriesBatchOutput
		if err := workflow.ExecuteActivity(withShort(ctx), "IndexEntriesBatch", activities.IndexEntriesBatchInput{Documents: docs}).Get(ctx, &idxOut); err != nil {
			tracker.Fail(ctx, err)
			return SearchReindexOutput{Indexed: indexed}, err
		}
		indexed += idxOut.Indexed
		tracker.IncrementCounter("indexed", idxOut.Indexed)
	}

	tracker.Update(ctx, model.StatusCompleted, "done", fmt.Sprintf("indexed %d entries", indexed))
	return SearchReindexOutput{Indexed: indexed}, nil
}

// SearchPruneInput/Output.
type SearchPruneInput struct {
	WorkflowID string `json:"workflowId"`
	BatchSize  int    `json:"batchSize,omitempty"`
}

type SearchPruneOutput struct {
	Removed int `json:"removed"`
}

// SearchPruneWorkflow computes set(index_ids) - set(db_ids) and deletes
// the orphans in batches.
func SearchPruneWorkflow(ctx workflow.Context, in SearchPruneInput) (SearchPruneOutput, error) {
	tracker, err := NewProgressTracker(ctx, in.WorkflowID, nil)
	if err != nil {
		return SearchPruneOutput{}, err
	}
	tracker.Update(ctx, model.StatusRunning, "computing_orphans", "computing orphaned search documents")

	var idsOut activities.GetOrphanedDocumentIdsOutput
	if err := workflow.ExecuteActivity(withShort(ctx), "GetOrphanedDocumentIds", activities.GetOrphanedDocumentIdsInput{}).Get(ctx, &idsOut); err != nil {
		tracker.Fail(ctx, err)
		return SearchPruneOutput{}, err
	}

	dbSet := make(map[string]bool, len(idsOut.DBIDs))
	for _, id := range idsOut.DBIDs {
		dbSet[id] = true
	}
	var orphans []string
	for _, id := range idsOut.IndexIDs {
		if !dbSet[id] {
			orphans = append(orphans, id)
		}
	}

	batchSize := in.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSearchBatchSize
	}

	removed := 0
	for start := 0; start < len(orphans); start += batchSize {
		end := start + batchSize
		if end > len(orphans) {
			end = len(orphans)
		}
		batch := orphans[start:end]

		tracker.Update(ctx, model.StatusRunning, "pruning", fmt.Sprintf("removing batch %d-%d of %d orphans", start, end, len(orphans)))
		var out activities.RemoveDocumentsFromIndexOutput
		if err := workflow.ExecuteActivity(withShort(ctx), "RemoveDocumentsFromIndex", activities.RemoveDocumentsFromIndexInput{EntryIDs: batch}).Get(ctx, &out); err != nil {
			tracker.Fail(ctx, err)
			return SearchPruneOutput{Removed: removed}, err
		}
		removed += out.Removed
	}

	tracker.Update(ctx, model.StatusCompleted, "done", fmt.Sprintf("removed %d orphaned documents", removed))
	return SearchPruneOutput{Removed: removed}, nil
}

// UpdateEntryIndexInput/Output: single-entry index refresh, fire-and-
// forget from the frontend (grounded on workflows/update_entry_index.py).
type UpdateEntryIndexInput struct {
	EntryID string `json:"entryId"`
}

type UpdateEntryIndexOutput struct {
	Success bool `json:"success"`
}

func UpdateEntryIndexWorkflow(ctx workflow.Context, in UpdateEntryIndexInput) (UpdateEntryIndexOutput, error) {
	var entryOut activities.GetEntryOutput
	if err := workflow.ExecuteActivity(withShort(ctx), "GetEntry", activities.GetEntryInput{EntryID: in.EntryID}).Get(ctx, &entryOut); err != nil {
		return UpdateEntryIndexOutput{}, err
	}
	if !entryOut.Found || entryOut.Entry.FilteredContent == "" {
		return UpdateEntryIndexOutput{Success: true}, nil
	}

	doc := activities.IndexDocument{EntryID: entryOut.Entry.ID, Title: entryOut.Entry.Title, Content: entryOut.Entry.FilteredContent}
	var out activities.IndexEntriesBatchOutput
	if err := workflow.ExecuteActivity(withShort(ctx), "IndexEntriesBatch", activities.IndexEntriesBatchInput{Documents: []activities.IndexDocument{doc}}).Get(ctx, &out); err != nil {
		return UpdateEntryIndexOutput{}, err
	}
	return UpdateEntryIndexOutput{Success: true}, nil
}
