// Package research implements the Deep Research planner/retriever/writer
// loop. Unlike the ingestion/enrichment pipelines in
// internal/curator/workflows, this runs synchronously inside the agent
// process rather than as a Temporal workflow: it is grounded on
// graphs/research.py's LangGraph state machine, which also runs
// in-process (the FastAPI agent server), not dispatched to a worker.
//
// The four-node loop (planner -> retriever -> writer -> should_continue)
// is expressed as an explicit Go state machine rather than a generic
// graph library: the pack carries no LangGraph-equivalent dependency, and
// a fixed 4-node loop with one conditional edge does not warrant one.
package research

import (
	"context"
	"fmt"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm/schema"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

// Runner holds everything the loop needs: the LLM for structured planner/
// writer calls, and a Searcher for retrieval. One Runner is built per
// agent process and reused across requests.
type Runner struct {
	LLM      llm.Client
	Search   Searcher
	Model    string
	MaxIters int
}

// New builds a Runner. maxIters <= 0 falls back to
// model.MaxResearchIterations.
func New(llmClient llm.Client, search Searcher, modelID string, maxIters int) *Runner {
	if maxIters <= 0 {
		maxIters = model.MaxResearchIterations
	}
	return &Runner{LLM: llmClient, Search: search, Model: modelID, MaxIters: maxIters}
}

// Run drives the full loop to completion and returns the final state.
// It never returns a partial answer silently: if the writer never
// produces one (e.g. the very first LLM call fails), the error is
// returned to the caller, who is responsible for surfacing an AG-UI
// error event.
func (r *Runner) Run(ctx context.Context, initial model.ResearchState) (model.ResearchState, error) {
	state := initial
	if state.SearchMode == "" {
		state.SearchMode = model.SearchModePlanner
	}

	for {
		planned, err := r.planner(ctx, state)
		if err != nil {
			return state, fmt.Errorf("research: planner: %w", err)
		}
		state = planned

		retrieved, err := r.retriever(ctx, state)
		if err != nil {
			return state, fmt.Errorf("research: retriever: %w", err)
		}
		state = retrieved

		written, err := r.writer(ctx, state)
		if err != nil {
			return state, fmt.Errorf("research: writer: %w", err)
		}
		state = written

		if !r.shouldContinue(state) {
			return state, nil
		}
	}
}

// shouldContinue mirrors graphs/research.py's should_continue: stop once
// the writer is satisfied, or once the iteration bound is hit.
func (r *Runner) shouldContinue(state model.ResearchState) bool {
	if !state.NeedsMoreInfo {
		return false
	}
	if state.Iteration >= r.MaxIters {
		return false
	}
	return true
}

// planner asks the LLM for a SearchPlan given the query, entry context,
// and (on later iterations) the answer-so-far's follow-up questions.
func (r *Runner) planner(ctx context.Context, state model.ResearchState) (model.ResearchState, error) {
	entryContext := state.EntryContext
	if entryContext == "" {
		entryContext = "No entry context provided."
	}

	prompt := fmt.Sprintf("Query: %s\n\nEntry context:\n%s", state.Query, entryContext)
	if state.FinalAnswer != nil && len(state.FinalAnswer.FollowUps) > 0 {
		prompt += "\n\nOpen follow-up questions from the previous iteration:\n"
		for _, f := range state.FinalAnswer.FollowUps {
			prompt += "- " + f + "\n"
		}
	}

	req := llm.Request{
		Model:       r.Model,
		Temperature: 0,
		MaxTokens:   1024,
		Messages: []llm.Message{
			{Role: "system", Content: plannerSystemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseSchema: &llm.ResponseSchema{Name: "searchPlan", Schema: schema.SearchPlanSchema},
	}

	resp, err := r.LLM.Complete(ctx, req)
	if err != nil {
		return state, err
	}

	var plan model.SearchPlan
	if err := schema.ValidateAndDecode([]byte(resp.Content), schema.SearchPlanSchema, &plan); err != nil {
		return state, err
	}
	if err := plan.Validate(); err != nil {
		return state, err
	}

	state.Plan = &plan
	state.Iteration++
	return state, nil
}

// retriever executes the plan's sub-queries against the sources the
// search mode selects, deduplicating by document id in first-seen order.
func (r *Runner) retriever(ctx context.Context, state model.ResearchState) (model.ResearchState, error) {
	if state.Plan == nil {
		return state, nil
	}

	sources := determineSources(state.SearchMode, state.Plan.Sources)

	seen := make(map[string]bool, len(state.RetrievedDocs))
	docs := make([]model.RetrievedDocument, 0, len(state.RetrievedDocs))
	for _, d := range state.RetrievedDocs {
		if !seen[d.ID] {
			seen[d.ID] = true
			docs = append(docs, d)
		}
	}

	type result struct {
		docs []model.RetrievedDocument
		err  error
	}
	resultCh := make(chan result, len(sources))
	for _, src := range sources {
		src := src
		go func() {
			fetched, err := r.Search.Search(ctx, src, state.Plan.SubQueries)
			resultCh <- result{docs: fetched, err: err}
		}()
	}
	for range sources {
		res := <-resultCh
		if res.err != nil {
			// One failed source degrades gracefully rather than failing
			// the whole retrieval step, matching _search_meilisearch's/
			// _search_embedding's return_exceptions=True behavior.
			continue
		}
		for _, d := range res.docs {
			if !seen[d.ID] {
				seen[d.ID] = true
				docs = append(docs, d)
			}
		}
	}

	state.RetrievedDocs = docs
	return state, nil
}

// determineSources mirrors retriever.py's _determine_sources.
func determineSources(mode model.SearchMode, planSources []model.Source) []model.Source {
	switch mode {
	case model.SearchModeKeyword:
		return []model.Source{model.SourceKeyword}
	case model.SearchModeVector:
		return []model.Source{model.SourceVector}
	case model.SearchModeHybrid:
		return []model.Source{model.SourceKeyword, model.SourceVector}
	default: // planner
		if len(planSources) > 0 {
			return planSources
		}
		return []model.Source{model.SourceKeyword}
	}
}

// writer asks the LLM for a ResearchAnswer given everything retrieved so
// far.
func (r *Runner) writer(ctx context.Context, state model.ResearchState) (model.ResearchState, error) {
	entryContext := state.EntryContext
	if entryContext == "" {
		entryContext = "No entry context provided."
	}

	req := llm.Request{
		Model:       r.Model,
		Temperature: 0.3,
		MaxTokens:   2048,
		Messages: []llm.Message{
			{Role: "system", Content: writerSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(
				"Query: %s\n\nEntry context:\n%s\n\nRetrieved documents:\n%s",
				state.Query, entryContext, formatRetrievedDocs(state.RetrievedDocs),
			)},
		},
		ResponseSchema: &llm.ResponseSchema{Name: "researchAnswer", Schema: schema.ResearchAnswerSchema},
	}

	resp, err := r.LLM.Complete(ctx, req)
	if err != nil {
		return state, err
	}

	var answer model.ResearchAnswer
	if err := schema.ValidateAndDecode([]byte(resp.Content), schema.ResearchAnswerSchema, &answer); err != nil {
		return state, err
	}
	answer.AnswerType = model.ParseAnswerType(string(answer.AnswerType))

	state.FinalAnswer = &answer
	state.NeedsMoreInfo = answer.NeedsMoreInfo
	return state, nil
}

// formatRetrievedDocs mirrors writer.py's _format_retrieved_docs: numbered
// entries with content truncated to 500 runes.
func formatRetrievedDocs(docs []model.RetrievedDocument) string {
	if len(docs) == 0 {
		return "No documents retrieved."
	}
	out := ""
	for i, d := range docs {
		out += fmt.Sprintf("[%d] %s\n", i+1, d.Title)
		if d.Content != "" {
			content := d.Content
			if r := []rune(content); len(r) > 500 {
				content = string(r[:500]) + "..."
			}
			out += "    " + content + "\n"
		}
		out += "\n"
	}
	return out
}
