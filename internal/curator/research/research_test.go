package research

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

// fakeLLM returns a fixed structured response for every Complete call,
// first the plan then the answer, cycling through scripted responses.
type fakeLLM struct {
	responses []string
	calls     int
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	resp := f.responses[f.calls%len(f.responses)]
	f.calls++
	return llm.Response{Content: resp}, nil
}

func (f *fakeLLM) Stream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, <-chan error) {
	panic("not used in research tests")
}

type fakeSearcher struct {
	docsBySource map[model.Source][]model.RetrievedDocument
}

func (f *fakeSearcher) Search(ctx context.Context, source model.Source, queries []string) ([]model.RetrievedDocument, error) {
	return f.docsBySource[source], nil
}

func planJSON(t *testing.T, sources []string) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"subQueries": []string{"q1", "q2"},
		"sources":    sources,
		"rationale":  "because",
	})
	require.NoError(t, err)
	return string(b)
}

func answerJSON(t *testing.T, needsMoreInfo bool) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"answer":        "the answer",
		"answerType":    "explanation",
		"confidence":    0.9,
		"needsMoreInfo": needsMoreInfo,
		"followUps":     []string{},
	})
	require.NoError(t, err)
	return string(b)
}

func TestRunner_StopsWhenSatisfied(t *testing.T) {
	fl := &fakeLLM{responses: []string{
		planJSON(t, []string{"keyword"}),
		answerJSON(t, false),
	}}
	searcher := &fakeSearcher{docsBySource: map[model.Source][]model.RetrievedDocument{
		model.SourceKeyword: {{ID: "e1", Title: "one"}},
	}}

	r := New(fl, searcher, "gpt-test", 3)
	final, err := r.Run(context.Background(), model.ResearchState{Query: "what is X"})
	require.NoError(t, err)

	assert.Equal(t, 1, final.Iteration)
	assert.False(t, final.NeedsMoreInfo)
	require.NotNil(t, final.FinalAnswer)
	assert.Equal(t, model.AnswerExplanation, final.FinalAnswer.AnswerType)
}

func TestRunner_BoundedByMaxIterations(t *testing.T) {
	fl := &fakeLLM{responses: []string{
		planJSON(t, []string{"keyword"}),
		answerJSON(t, true), // always asks for more info
	}}
	searcher := &fakeSearcher{docsBySource: map[model.Source][]model.RetrievedDocument{
		model.SourceKeyword: {{ID: "e1"}},
	}}

	r := New(fl, searcher, "gpt-test", 2)
	final, err := r.Run(context.Background(), model.ResearchState{Query: "loop forever"})
	require.NoError(t, err)

	assert.Equal(t, 2, final.Iteration)
}

func TestRetriever_DedupsAcrossIterations(t *testing.T) {
	r := New(&fakeLLM{}, nil, "gpt-test", 3)
	state := model.ResearchState{
		RetrievedDocs: []model.RetrievedDocument{{ID: "e1"}, {ID: "e2"}},
		Plan:          &model.SearchPlan{SubQueries: []string{"q"}, Sources: []model.Source{model.SourceKeyword}},
	}
	r.Search = &fakeSearcher{docsBySource: map[model.Source][]model.RetrievedDocument{
		model.SourceKeyword: {{ID: "e1"}, {ID: "e3"}},
	}}

	out, err := r.retriever(context.Background(), state)
	require.NoError(t, err)

	ids := make([]string, len(out.RetrievedDocs))
	for i, d := range out.RetrievedDocs {
		ids[i] = d.ID
	}
	assert.ElementsMatch(t, []string{"e1", "e2", "e3"}, ids)
}

func TestDetermineSources(t *testing.T) {
	assert.Equal(t, []model.Source{model.SourceKeyword}, determineSources(model.SearchModeKeyword, nil))
	assert.Equal(t, []model.Source{model.SourceVector}, determineSources(model.SearchModeVector, nil))
	assert.Equal(t, []model.Source{model.SourceKeyword, model.SourceVector}, determineSources(model.SearchModeHybrid, nil))
	assert.Equal(t, []model.Source{model.SourceKeyword}, determineSources(model.SearchModePlanner, nil))
	assert.Equal(t, []model.Source{model.SourceVector}, determineSources(model.SearchModePlanner, []model.Source{model.SourceVector}))
}
