// Package workflows implements the durable Temporal workflows, each
// wired to a *ProgressTracker for query/SSE visibility and to the
// activity library in internal/curator/activities by activity-type-name
// string (registered via worker.RegisterActivity on an
// *activities.Activities instance).
//
// Grounded on worker/buun_curator/workflows/*.py for the workflows with
// retrieved original source, and on the sibling workflows' control-flow
// idiom for the ingestion pipeline, which had no retrieved Python source.
package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/activities"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

// AllFeedsIngestionInput/Output: the top-level crawl fan-out.
type AllFeedsIngestionInput struct {
	WorkflowID string `json:"workflowId"`

	// TargetLanguage, when set, is forwarded to each feed's
	// TranslationWorkflow stage; empty disables translation for the run.
	TargetLanguage string `json:"targetLanguage,omitempty"`
	// Provider selects the translator ("deepl" or "ms"); empty defaults
	// to TranslationWorkflow's own default.
	Provider string `json:"provider,omitempty"`
}

type AllFeedsIngestionOutput struct {
	FeedsProcessed int `json:"feedsProcessed"`
	EntriesFound   int `json:"entriesFound"`
}

// AllFeedsIngestionWorkflow lists every subscribed feed and runs
// SingleFeedIngestionWorkflow as a child per feed, in parallel.
func AllFeedsIngestionWorkflow(ctx workflow.Context, in AllFeedsIngestionInput) (AllFeedsIngestionOutput, error) {
	tracker, err := NewProgressTracker(ctx, in.WorkflowID, nil)
	if err != nil {
		return AllFeedsIngestionOutput{}, err
	}
	tracker.Update(ctx, model.StatusRunning, "listing_feeds", "listing subscribed feeds")

	var listOut activities.ListFeedsOutput
	if err := workflow.ExecuteActivity(withShort(ctx), "ListFeeds", activities.ListFeedsInput{}).Get(ctx, &listOut); err != nil {
		tracker.Fail(ctx, err)
		return AllFeedsIngestionOutput{}, err
	}

	tracker.Update(ctx, model.StatusRunning, "ingesting_feeds", fmt.Sprintf("ingesting %d feeds", len(listOut.Feeds)))

	futures := make([]workflow.Future, 0, len(listOut.Feeds))
	for _, feed := range listOut.Feeds {
		cctx := childWorkflowOptions(ctx, "feed-"+feed.ID)
		futures = append(futures, workflow.ExecuteChildWorkflow(cctx, SingleFeedIngestionWorkflow, SingleFeedIngestionInput{
			WorkflowID:     in.WorkflowID + "-" + feed.ID,
			Feed:           feed,
			TargetLanguage: in.TargetLanguage,
			Provider:       in.Provider,
		}))
	}

	totalEntries := 0
	for _, f := range futures {
		var out SingleFeedIngestionOutput
		if err := f.Get(ctx, &out); err != nil {
			// A single feed's failure doesn't fail the whole crawl; it's
			// logged and the others still complete (§7 partial-failure
			// tolerance for fan-out stages).
			workflow.GetLogger(ctx).Warn("feed ingestion failed", "error", err)
			continue
		}
		totalEntries += out.NewEntryCount
	}

	tracker.Update(ctx, model.StatusCompleted, "done", "all feeds ingested")
	return AllFeedsIngestionOutput{FeedsProcessed: len(listOut.Feeds), EntriesFound: totalEntries}, nil
}

// SingleFeedIngestionInput/Output.
type SingleFeedIngestionInput struct {
	WorkflowID     string     `json:"workflowId"`
	Feed           model.Feed `json:"feed"`
	TargetLanguage string     `json:"targetLanguage,omitempty"`
	Provider       string     `json:"provider,omitempty"`
}

type SingleFeedIngestionOutput struct {
	NewEntryCount int `json:"newEntryCount"`
}

// SingleFeedIngestionWorkflow drives the full per-feed pipeline:
// CrawlSingleFeed -> DomainFetchWorkflow -> ContentDistillationWorkflow
// -> TranslationWorkflow -> EmbeddingBackfillWorkflow -> SearchReindexWorkflow
// -> GlobalGraphUpdateWorkflow. No link-enrichment stage is run.
func SingleFeedIngestionWorkflow(ctx workflow.Context, in SingleFeedIngestionInput) (SingleFeedIngestionOutput, error) {
	entryIDs := []string{in.Feed.ID}
	tracker, err := NewProgressTracker(ctx, in.WorkflowID, entryIDs)
	if err != nil {
		return SingleFeedIngestionOutput{}, err
	}
	tracker.Update(ctx, model.StatusRunning, "crawling", "crawling feed "+in.Feed.Name)

	var crawlOut activities.CrawlSingleFeedOutput
	err = workflow.ExecuteActivity(withShort(ctx), "CrawlSingleFeed", activities.CrawlSingleFeedInput{
		FeedID:  in.Feed.ID,
		FeedURL: in.Feed.SiteURL,
	}).Get(ctx, &crawlOut)
	if err != nil {
		tracker.Fail(ctx, err)
		return SingleFeedIngestionOutput{}, err
	}
	if crawlOut.NotModified || len(crawlOut.NewEntries) == 0 {
		tracker.Update(ctx, model.StatusCompleted, "done", "no new entries")
		return SingleFeedIngestionOutput{}, nil
	}

	newEntries := crawlOut.NewEntries
	newIDs := make([]string, len(newEntries))
	for i, e := range newEntries {
		newIDs[i] = e.ID
	}

	tracker.Update(ctx, model.StatusRunning, "fetching_content", fmt.Sprintf("fetching content for %d entries", len(newEntries)))
	var fetchOut DomainFetchOutput
	fctx := childWorkflowOptions(ctx, "fetch")
	if err := workflow.ExecuteChildWorkflow(fctx, DomainFetchWorkflow, DomainFetchInput{
		WorkflowID:      in.WorkflowID + "-fetch",
		Entries:         newEntries,
		ExtractionRules: in.Feed.Options.ExtractionRules,
	}).Get(ctx, &fetchOut); err != nil {
		tracker.Fail(ctx, err)
		return SingleFeedIngestionOutput{}, err
	}

	tracker.Update(ctx, model.StatusRunning, "distilling", "distilling fetched content")
	dctx := childWorkflowOptions(ctx, "distill")
	var distillOut ContentDistillationOutput
	if err := workflow.ExecuteChildWorkflow(dctx, ContentDistillationWorkflow, ContentDistillationInput{
		WorkflowID: in.WorkflowID + "-distill",
		EntryIDs:   newIDs,
	}).Get(ctx, &distillOut); err != nil {
		tracker.Fail(ctx, err)
		return SingleFeedIngestionOutput{}, err
	}

	if in.TargetLanguage != "" {
		tracker.Update(ctx, model.StatusRunning, "translating", "translating fetched content")
		tctx := childWorkflowOptions(ctx, "translate")
		var translateOut TranslationOutput
		if err := workflow.ExecuteChildWorkflow(tctx, TranslationWorkflow, TranslationInput{
			WorkflowID:     in.WorkflowID + "-translate",
			EntryIDs:       newIDs,
			TargetLanguage: in.TargetLanguage,
			Provider:       in.Provider,
		}).Get(ctx, &translateOut); err != nil {
			workflow.GetLogger(ctx).Warn("translation failed", "error", err)
		}
	}

	tracker.Update(ctx, model.StatusRunning, "embedding", "computing embeddings")
	ectx := childWorkflowOptions(ctx, "embed")
	var embedOut EmbeddingBackfillOutput
	if err := workflow.ExecuteChildWorkflow(ectx, EmbeddingBackfillWorkflow, EmbeddingBackfillInput{
		WorkflowID: in.WorkflowID + "-embed",
		EntryIDs:   newIDs,
	}).Get(ctx, &embedOut); err != nil {
		workflow.GetLogger(ctx).Warn("embedding backfill failed", "error", err)
	}

	tracker.Update(ctx, model.StatusRunning, "indexing", "updating search index")
	sctx := childWorkflowOptions(ctx, "index")
	var searchOut SearchReindexOutput
	if err := workflow.ExecuteChildWorkflow(sctx, SearchReindexWorkflow, SearchReindexInput{
		WorkflowID: in.WorkflowID + "-index",
		EntryIDs:   newIDs,
	}).Get(ctx, &searchOut); err != nil {
		workflow.GetLogger(ctx).Warn("search reindex failed", "error", err)
	}

	tracker.Update(ctx, model.StatusRunning, "graph_update", "updating knowledge graph")
	gctx := childWorkflowOptions(ctx, "graph")
	var graphOut GlobalGraphUpdateOutput
	if err := workflow.ExecuteChildWorkflow(gctx, GlobalGraphUpdateWorkflow, GlobalGraphUpdateInput{
		WorkflowID: in.WorkflowID + "-graph",
		EntryIDs:   newIDs,
	}).Get(ctx, &graphOut); err != nil {
		workflow.GetLogger(ctx).Warn("global graph update failed", "error", err)
	}

	tracker.Update(ctx, model.StatusCompleted, "done", fmt.Sprintf("ingested %d entries", len(newEntries)))
	return SingleFeedIngestionOutput{NewEntryCount: len(newEntries)}, nil
}

// DomainFetchInput/Output.
type DomainFetchInput struct {
	WorkflowID      string        `json:"workflowId"`
	Entries         []model.Entry `json:"entries"`
	ExtractionRules []string      `json:"extractionRules,omitempty"`
}

type DomainFetchOutput struct {
	Fetched int `json:"fetched"`
	Failed  int `json:"failed"`
}

// DomainFetchWorkflow groups entries by URL host (activities.GroupByHost,
// pure function, tested directly), serializes fetches within a host with
// a fixed 500ms inter-request delay (not taken from input or config), and
// parallelizes across hosts via
// one workflow.Go goroutine per host.
func DomainFetchWorkflow(ctx workflow.Context, in DomainFetchInput) (DomainFetchOutput, error) {
	tracker, err := NewProgressTracker(ctx, in.WorkflowID, nil)
	if err != nil {
		return DomainFetchOutput{}, err
	}
	tracker.Update(ctx, model.StatusRunning, "fetching", fmt.Sprintf("fetching %d entries", len(in.Entries)))

	groups := activities.GroupByHost(in.Entries)
	fetchDelay := 500 * time.Millisecond

	type result struct {
		ok bool
	}
	resultsCh := workflow.NewChannel(ctx)

	for host, hostEntries := range groups {
		host, hostEntries := host, hostEntries
		workflow.Go(ctx, func(gctx workflow.Context) {
			for i, e := range hostEntries {
				var out activities.FetchSingleContentOutput
				ferr := workflow.ExecuteActivity(withShort(gctx), "FetchSingleContent", activities.FetchSingleContentInput{
					EntryID:         e.ID,
					URL:             e.URL,
					ExtractionRules: in.ExtractionRules,
				}).Get(gctx, &out)
				ok := ferr == nil && out.Success
				resultsCh.Send(gctx, result{ok: ok})
				if i < len(hostEntries)-1 {
					_ = workflow.Sleep(gctx, fetchDelay)
				}
			}
			_ = host
		})
	}

	fetched, failed := 0, 0
	for i := 0; i < len(in.Entries); i++ {
		var r result
		resultsCh.Receive(ctx, &r)
		if r.ok {
			fetched++
		} else {
			failed++
		}
	}

	tracker.Update(ctx, model.StatusCompleted, "done", fmt.Sprintf("fetched %d, failed %d", fetched, failed))
	return DomainFetchOutput{Fetched: fetched, Failed: failed}, nil
}

// ScheduleFetchInput.
type ScheduleFetchInput struct {
	WorkflowID     string        `json:"workflowId"`
	CrawlInterval  time.Duration `json:"crawlInterval"`
	MaxIterations  int           `json:"maxIterations,omitempty"`
}

// ScheduleFetchWorkflow is a long-running cron-style workflow using
// workflow.NewTimer in a loop, starting AllFeedsIngestionWorkflow every
// CrawlInterval. MaxIterations bounds it for testability (0 = run
// forever, continuing as a new run to keep workflow history bounded).
func ScheduleFetchWorkflow(ctx workflow.Context, in ScheduleFetchInput) error {
	iterations := 0
	for in.MaxIterations == 0 || iterations < in.MaxIterations {
		cctx := childWorkflowOptions(ctx, fmt.Sprintf("tick-%d", iterations))
		err := workflow.ExecuteChildWorkflow(cctx, AllFeedsIngestionWorkflow, AllFeedsIngestionInput{
			WorkflowID: in.WorkflowID + fmt.Sprintf("-tick-%d", iterations),
		}).Get(ctx, nil)
		if err != nil {
			workflow.GetLogger(ctx).Warn("scheduled ingestion tick failed", "error", err)
		}
		iterations++

		if err := workflow.NewTimer(ctx, in.CrawlInterval).Get(ctx, nil); err != nil {
			return err
		}

		// Bound workflow history growth: continue-as-new every 1000 ticks.
		if iterations%1000 == 0 {
			return workflow.NewContinueAsNewError(ctx, ScheduleFetchWorkflow, in)
		}
	}
	return nil
}

// PreviewFetchInput/Output: synchronous single-URL fetch+distill preview,
// no persistence, used for UI "preview before subscribing" calls.
type PreviewFetchInput struct {
	URL             string   `json:"url"`
	ExtractionRules []string `json:"extractionRules,omitempty"`
	Title           string   `json:"title,omitempty"`
}

type PreviewFetchOutput struct {
	FullContent     string `json:"fullContent"`
	FilteredContent string `json:"filteredContent"`
	Summary         string `json:"summary"`
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
}

func PreviewFetchWorkflow(ctx workflow.Context, in PreviewFetchInput) (PreviewFetchOutput, error) {
	var fetchOut activities.FetchSingleContentOutput
	if err := workflow.ExecuteActivity(withShort(ctx), "FetchSingleContent", activities.FetchSingleContentInput{
		URL:             in.URL,
		ExtractionRules: in.ExtractionRules,
	}).Get(ctx, &fetchOut); err != nil {
		return PreviewFetchOutput{}, err
	}
	if !fetchOut.Success || fetchOut.Blocked {
		return PreviewFetchOutput{Success: false, Error: fetchOut.Error}, nil
	}

	var distillOut activities.DistillEntryContentOutput
	if err := workflow.ExecuteActivity(withDistill(ctx), "DistillEntryContent", activities.DistillEntryContentInput{
		FullContent: fetchOut.FullContent,
		Title:       in.Title,
	}).Get(ctx, &distillOut); err != nil {
		return PreviewFetchOutput{}, err
	}

	return PreviewFetchOutput{
		FullContent:     fetchOut.FullContent,
		FilteredContent: distillOut.FilteredContent,
		Summary:         distillOut.Summary,
		Success:         distillOut.Success,
		Error:           distillOut.Error,
	}, nil
}

// ReprocessEntriesInput/Output: re-runs distillation + translation +
// embedding + reindex for an already-ingested set of entries, e.g. after
// a prompt, translation target, or embedding model change.
type ReprocessEntriesInput struct {
	WorkflowID     string   `json:"workflowId"`
	EntryIDs       []string `json:"entryIds"`
	TargetLanguage string   `json:"targetLanguage,omitempty"`
	Provider       string   `json:"provider,omitempty"`
}

type ReprocessEntriesOutput struct {
	Processed int `json:"processed"`
}

func ReprocessEntriesWorkflow(ctx workflow.Context, in ReprocessEntriesInput) (ReprocessEntriesOutput, error) {
	tracker, err := NewProgressTracker(ctx, in.WorkflowID, in.EntryIDs)
	if err != nil {
		return ReprocessEntriesOutput{}, err
	}
	tracker.Update(ctx, model.StatusRunning, "distilling", "reprocessing entries")

	dctx := childWorkflowOptions(ctx, "distill")
	var distillOut ContentDistillationOutput
	if err := workflow.ExecuteChildWorkflow(dctx, ContentDistillationWorkflow, ContentDistillationInput{
		WorkflowID: in.WorkflowID + "-distill",
		EntryIDs:   in.EntryIDs,
	}).Get(ctx, &distillOut); err != nil {
		tracker.Fail(ctx, err)
		return ReprocessEntriesOutput{}, err
	}

	if in.TargetLanguage != "" {
		tctx := childWorkflowOptions(ctx, "translate")
		var translateOut TranslationOutput
		if err := workflow.ExecuteChildWorkflow(tctx, TranslationWorkflow, TranslationInput{
			WorkflowID:     in.WorkflowID + "-translate",
			EntryIDs:       in.EntryIDs,
			TargetLanguage: in.TargetLanguage,
			Provider:       in.Provider,
		}).Get(ctx, &translateOut); err != nil {
			workflow.GetLogger(ctx).Warn("translation failed during reprocess", "error", err)
		}
	}

	ectx := childWorkflowOptions(ctx, "embed")
	var embedOut EmbeddingBackfillOutput
	if err := workflow.ExecuteChildWorkflow(ectx, EmbeddingBackfillWorkflow, EmbeddingBackfillInput{
		WorkflowID: in.WorkflowID + "-embed",
		EntryIDs:   in.EntryIDs,
	}).Get(ctx, &embedOut); err != nil {
		workflow.GetLogger(ctx).Warn("embedding backfill failed during reprocess", "error", err)
	}

	sctx := childWorkflowOptions(ctx, "index")
	var searchOut SearchReindexOutput
	if err := workflow.ExecuteChildWorkflow(sctx, SearchReindexWorkflow, SearchReindexInput{
		WorkflowID: in.WorkflowID + "-index",
		EntryIDs:   in.EntryIDs,
	}).Get(ctx, &searchOut); err != nil {
		workflow.GetLogger(ctx).Warn("search reindex failed during reprocess", "error", err)
	}

	tracker.Update(ctx, model.StatusCompleted, "done", fmt.Sprintf("reprocessed %d entries", len(in.EntryIDs)))
	return ReprocessEntriesOutput{Processed: len(in.EntryIDs)}, nil
}
