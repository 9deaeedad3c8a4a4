package workflows

import (
	"fmt"

	"go.temporal.io/sdk/workflow"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/activities"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

const defaultGraphBatchSize = 200

// GlobalGraphUpdateInput/Output: batches entries and calls
// AddToGlobalGraph per batch. Distinct from the per-entry GraphRAG
// session workflow, ExtractEntryContextWorkflow.
type GlobalGraphUpdateInput struct {
	WorkflowID string   `json:"workflowId"`
	EntryIDs   []string `json:"entryIds"`
	BatchSize  int      `json:"batchSize,omitempty"`
}

type GlobalGraphUpdateOutput struct {
	Added int `json:"added"`
}

func GlobalGraphUpdateWorkflow(ctx workflow.Context, in GlobalGraphUpdateInput) (GlobalGraphUpdateOutput, error) {
	tracker, err := NewProgressTracker(ctx, in.WorkflowID, in.EntryIDs)
	if err != nil {
		return GlobalGraphUpdateOutput{}, err
	}

	batchSize := in.BatchSize
	if batchSize <= 0 {
		batchSize = defaultGraphBatchSize
	}

	added := 0
	for start := 0; start < len(in.EntryIDs); start += batchSize {
		end := start + batchSize
		if end > len(in.EntryIDs) {
			end = len(in.EntryIDs)
		}
		batchIDs := in.EntryIDs[start:end]

		var entriesOut activities.GetEntriesOutput
		if err := workflow.ExecuteActivity(withShort(ctx), "GetEntries", activities.GetEntriesInput{EntryIDs: batchIDs}).Get(ctx, &entriesOut); err != nil {
			tracker.Fail(ctx, err)
			return GlobalGraphUpdateOutput{Added: added}, err
		}

		nodes := make([]activities.GraphNode, 0, len(entriesOut.Entries))
		for _, e := range entriesOut.Entries {
			if e.FilteredContent == "" {
				continue
			}
			nodes = append(nodes, activities.GraphNode{EntryID: e.ID, Title: e.Title, Content: e.FilteredContent})
		}

		tracker.Update(ctx, model.StatusRunning, "graph_update", fmt.Sprintf("adding batch %d-%d of %d", start, end, len(in.EntryIDs)))
		var out activities.AddToGlobalGraphOutput
		if err := workflow.ExecuteActivity(withGraph(ctx), "AddToGlobalGraph", activities.AddToGlobalGraphInput{Nodes: nodes}).Get(ctx, &out); err != nil {
			tracker.Fail(ctx, err)
			return GlobalGraphUpdateOutput{Added: added}, err
		}
		added += out.Added
		tracker.IncrementCounter("added", out.Added)
	}

	tracker.Update(ctx, model.StatusCompleted, "done", fmt.Sprintf("added %d nodes to global graph", added))
	return GlobalGraphUpdateOutput{Added: added}, nil
}

// GraphRebuildInput/Output.
type GraphRebuildInput struct {
	WorkflowID string `json:"workflowId"`
	Clean      bool   `json:"clean"`
	BatchSize  int    `json:"batchSize,omitempty"`
}

type GraphRebuildOutput struct {
	Added int `json:"added"`
}

// GraphRebuildWorkflow: if Clean, resets the graph, then streams all
// entries with filtered_content and adds them in bulk batches.
func GraphRebuildWorkflow(ctx workflow.Context, in GraphRebuildInput) (GraphRebuildOutput, error) {
	tracker, err := NewProgressTracker(ctx, in.WorkflowID, nil)
	if err != nil {
		return GraphRebuildOutput{}, err
	}

	if in.Clean {
		tracker.Update(ctx, model.StatusRunning, "resetting", "resetting global graph")
		var resetOut activities.ResetGlobalGraphOutput
		if err := workflow.ExecuteActivity(withShort(ctx), "ResetGlobalGraph", activities.ResetGlobalGraphInput{}).Get(ctx, &resetOut); err != nil {
			tracker.Fail(ctx, err)
			return GraphRebuildOutput{}, err
		}
	}

	tracker.Update(ctx, model.StatusRunning, "listing_entries", "listing entries with content")
	var listOut activities.ListUnsummarizedEntryIdsOutput
	if err := workflow.ExecuteActivity(withShort(ctx), "ListUnsummarizedEntryIds", activities.ListUnsummarizedEntryIdsInput{Limit: 0}).Get(ctx, &listOut); err != nil {
		tracker.Fail(ctx, err)
		return GraphRebuildOutput{}, err
	}

	gctx := childWorkflowOptions(ctx, "rebuild-add")
	var addOut GlobalGraphUpdateOutput
	if err := workflow.ExecuteChildWorkflow(gctx, GlobalGraphUpdateWorkflow, GlobalGraphUpdateInput{
		WorkflowID: in.WorkflowID + "-add",
		EntryIDs:   listOut.EntryIDs,
		BatchSize:  in.BatchSize,
	}).Get(ctx, &addOut); err != nil {
		tracker.Fail(ctx, err)
		return GraphRebuildOutput{}, err
	}

	tracker.Update(ctx, model.StatusCompleted, "done", fmt.Sprintf("rebuilt graph with %d nodes", addOut.Added))
	return GraphRebuildOutput{Added: addOut.Added}, nil
}

// ExtractEntryContextInput/Output: fetch one entry, then reset+add its
// filtered content into the per-entry GraphRAG session. No LLM
// extraction is run and no structured context is saved. The session is
// exclusive per entry id (§9 exclusive resources); ResetGraphRAGSession
// is always called before re-adding so a retried attempt never
// accumulates a duplicate session.
type ExtractEntryContextInput struct {
	WorkflowID string `json:"workflowId"`
	EntryID    string `json:"entryId"`
}

type ExtractEntryContextOutput struct {
	Success bool `json:"success"`
}

func ExtractEntryContextWorkflow(ctx workflow.Context, in ExtractEntryContextInput) (ExtractEntryContextOutput, error) {
	tracker, err := NewProgressTracker(ctx, in.WorkflowID, []string{in.EntryID})
	if err != nil {
		return ExtractEntryContextOutput{}, err
	}
	tracker.Update(ctx, model.StatusRunning, "fetching_entry", "loading entry")

	var entryOut activities.GetEntryOutput
	if err := workflow.ExecuteActivity(withShort(ctx), "GetEntry", activities.GetEntryInput{EntryID: in.EntryID}).Get(ctx, &entryOut); err != nil {
		tracker.Fail(ctx, err)
		return ExtractEntryContextOutput{}, err
	}
	if !entryOut.Found || entryOut.Entry.FilteredContent == "" {
		tracker.Update(ctx, model.StatusCompleted, "done", "no content to extract context from")
		return ExtractEntryContextOutput{Success: true}, nil
	}

	tracker.Update(ctx, model.StatusRunning, "resetting_session", "resetting graphrag session")
	var resetOut activities.ResetGraphRAGSessionOutput
	if err := workflow.ExecuteActivity(withShort(ctx), "ResetGraphRAGSession", activities.ResetGraphRAGSessionInput{EntryID: in.EntryID}).Get(ctx, &resetOut); err != nil {
		tracker.Fail(ctx, err)
		return ExtractEntryContextOutput{}, err
	}

	tracker.Update(ctx, model.StatusRunning, "adding_session", "adding entry to graphrag session")
	var addOut activities.AddToGraphRAGSessionOutput
	if err := workflow.ExecuteActivity(withGraph(ctx), "AddToGraphRAGSession", activities.AddToGraphRAGSessionInput{
		EntryID: in.EntryID,
		Content: entryOut.Entry.FilteredContent,
	}).Get(ctx, &addOut); err != nil {
		tracker.Fail(ctx, err)
		return ExtractEntryContextOutput{}, err
	}

	tracker.Update(ctx, model.StatusCompleted, "done", "extracted entry context")
	return ExtractEntryContextOutput{Success: true}, nil
}

// DeleteEnrichmentInput/Output: deletes a typed enrichment record for an
// entry, used when a user manually removes an enrichment from the UI.
type DeleteEnrichmentWorkflowInput struct {
	EntryID string `json:"entryId"`
	Type    string `json:"type"`
}

type DeleteEnrichmentWorkflowOutput struct {
	Success bool `json:"success"`
}

func DeleteEnrichmentWorkflow(ctx workflow.Context, in DeleteEnrichmentWorkflowInput) (DeleteEnrichmentWorkflowOutput, error) {
	var out activities.DeleteEnrichmentOutput
	if err := workflow.ExecuteActivity(withShort(ctx), "DeleteEnrichment", activities.DeleteEnrichmentInput{
		EntryID: in.EntryID,
		Type:    in.Type,
	}).Get(ctx, &out); err != nil {
		return DeleteEnrichmentWorkflowOutput{}, err
	}
	return DeleteEnrichmentWorkflowOutput{Success: out.Success}, nil
}
