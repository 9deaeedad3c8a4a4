package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"
)

// GraphNode mirrors one entry's knowledge-graph contribution: the
// filtered content is the input text, the derived entity/relation set is
// computed by the graph backend itself, not by this activity.
type GraphNode struct {
	EntryID string `json:"entryId"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AddToGlobalGraphInput/Output. Long-running and heartbeated (up to a
// 2h timeout).
type AddToGlobalGraphInput struct {
	Nodes []GraphNode `json:"nodes"`
}

type AddToGlobalGraphOutput struct {
	Added int `json:"added"`
}

func (a *Activities) AddToGlobalGraph(ctx context.Context, in AddToGlobalGraphInput) (AddToGlobalGraphOutput, error) {
	added := 0
	for i, n := range in.Nodes {
		activity.RecordHeartbeat(ctx, fmt.Sprintf("graph add %d/%d", i+1, len(in.Nodes)))
		body := map[string]any{"entryId": n.EntryID, "title": n.Title, "content": n.Content}
		if err := a.API.Post(ctx, "/api/graph/global/nodes", body, nil); err != nil {
			return AddToGlobalGraphOutput{Added: added}, fmt.Errorf("add node %s to global graph: %w", n.EntryID, err)
		}
		added++
	}
	return AddToGlobalGraphOutput{Added: added}, nil
}

// ResetGlobalGraphInput/Output: used by GraphRebuildWorkflow(clean=true)
// before the bulk re-add pass.
type ResetGlobalGraphInput struct{}

type ResetGlobalGraphOutput struct {
	Success bool `json:"success"`
}

func (a *Activities) ResetGlobalGraph(ctx context.Context, _ ResetGlobalGraphInput) (ResetGlobalGraphOutput, error) {
	if err := a.API.Delete(ctx, "/api/graph/global", nil, nil); err != nil {
		return ResetGlobalGraphOutput{}, err
	}
	activity.GetLogger(ctx).Info("reset global graph")
	return ResetGlobalGraphOutput{Success: true}, nil
}

// AddToGraphRAGSessionInput/Output: per-entry exclusive session, used by
// ExtractEntryContextWorkflow. The session is exclusive per entry id;
// ResetGraphRAGSession is the only legitimate deleter.
type AddToGraphRAGSessionInput struct {
	EntryID string `json:"entryId"`
	Content string `json:"content"`
}

type AddToGraphRAGSessionOutput struct {
	Success bool `json:"success"`
}

func (a *Activities) AddToGraphRAGSession(ctx context.Context, in AddToGraphRAGSessionInput) (AddToGraphRAGSessionOutput, error) {
	body := map[string]any{"content": in.Content}
	if err := a.API.Post(ctx, "/api/graph/sessions/"+in.EntryID, body, nil); err != nil {
		return AddToGraphRAGSessionOutput{}, err
	}
	return AddToGraphRAGSessionOutput{Success: true}, nil
}

// ResetGraphRAGSessionInput/Output.
type ResetGraphRAGSessionInput struct {
	EntryID string `json:"entryId"`
}

type ResetGraphRAGSessionOutput struct {
	Success bool `json:"success"`
}

func (a *Activities) ResetGraphRAGSession(ctx context.Context, in ResetGraphRAGSessionInput) (ResetGraphRAGSessionOutput, error) {
	if err := a.API.Delete(ctx, "/api/graph/sessions/"+in.EntryID, nil, nil); err != nil {
		return ResetGraphRAGSessionOutput{}, err
	}
	return ResetGraphRAGSessionOutput{Success: true}, nil
}
