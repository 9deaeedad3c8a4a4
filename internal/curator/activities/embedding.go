package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

// ComputeEmbeddingsInput/Output. Grounded on activities/embedding.py's
// compute_embeddings.
type ComputeEmbeddingsInput struct {
	EntryIDs []string `json:"entryIds"`
}

type ComputeEmbeddingsOutput struct {
	Processed int      `json:"processed"`
	Skipped   []string `json:"skipped"`
}

// ComputeEmbeddings fetches entries, derives each one's embeddable text
// (filteredContent > summary > title, chosen by embeddableText; entries
// failing Entry.HasEmbeddableContent are skipped), and
// saves the resulting vectors back through the REST client. Entries with
// no embeddable text are skipped rather than failing the batch.
func (a *Activities) ComputeEmbeddings(ctx context.Context, in ComputeEmbeddingsInput) (ComputeEmbeddingsOutput, error) {
	fetched, err := a.GetEntries(ctx, GetEntriesInput{EntryIDs: in.EntryIDs})
	if err != nil {
		return ComputeEmbeddingsOutput{}, err
	}

	texts := make([]string, 0, len(fetched.Entries))
	entries := make([]model.Entry, 0, len(fetched.Entries))
	var skipped []string
	for _, e := range fetched.Entries {
		if !e.HasEmbeddableContent() {
			skipped = append(skipped, e.ID)
			continue
		}
		texts = append(texts, embeddableText(e))
		entries = append(entries, e)
	}

	if len(texts) == 0 {
		return ComputeEmbeddingsOutput{Processed: 0, Skipped: skipped}, nil
	}

	vectors, err := a.Embedder.Embed(texts)
	if err != nil {
		return ComputeEmbeddingsOutput{}, fmt.Errorf("compute embeddings: %w", err)
	}
	if len(vectors) != len(entries) {
		return ComputeEmbeddingsOutput{}, fmt.Errorf("compute embeddings: embedder returned %d vectors for %d texts", len(vectors), len(entries))
	}

	for i, e := range entries {
		activity.RecordHeartbeat(ctx, fmt.Sprintf("embedded %d/%d", i+1, len(entries)))
		body := map[string]any{"embedding": vectors[i]}
		if err := a.API.Post(ctx, "/api/entries/"+e.ID+"/embedding", body, nil); err != nil {
			return ComputeEmbeddingsOutput{}, fmt.Errorf("save embedding for entry %s: %w", e.ID, err)
		}
	}

	activity.GetLogger(ctx).Info("computed embeddings", "processed", len(entries), "skipped", len(skipped))
	return ComputeEmbeddingsOutput{Processed: len(entries), Skipped: skipped}, nil
}

// embeddableText mirrors _get_entries_content's fallback chain:
// filteredContent, then summary, then title.
func embeddableText(e model.Entry) string {
	if e.FilteredContent != "" {
		return e.FilteredContent
	}
	if e.Summary != "" {
		return e.Summary
	}
	return e.Title
}
