package activities

import (
	"context"
	"fmt"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm/schema"
)

// evaluationSchema is the structured-output contract for the RAGAS-style
// LLM-as-judge call: faithfulness and response-relevancy, both in [0,1].
var evaluationSchema = map[string]any{
	"type":     "object",
	"required": []string{"faithfulness", "responseRelevancy"},
	"properties": map[string]any{
		"faithfulness":      map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		"responseRelevancy": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
	},
}

// EvaluateRagasInput/Output. Grounded on workflows/evaluation.py's
// EvaluateRagasInput/EvaluateRagasOutput: RAGAS-style faithfulness and
// response-relevancy scoring of an AI answer against its contexts.
type EvaluateRagasInput struct {
	TraceID  string   `json:"traceId"`
	Question string   `json:"question"`
	Contexts []string `json:"contexts"`
	Answer   string   `json:"answer"`
}

type EvaluateRagasOutput struct {
	Scores  map[string]float64 `json:"scores"`
	Success bool               `json:"success"`
	Error   string             `json:"error,omitempty"`
}

// EvaluateRagas scores an answer's faithfulness and relevancy against
// its retrieved contexts using the configured LLM as judge, and records
// the scores to the evaluation backend. AI_EVALUATION_ENABLED=false
// (§9 resolved open question: feature disabled) is not checked here;
// the caller (dialogue streamer) only submits this activity's owning
// workflow when the config flag is on.
func (a *Activities) EvaluateRagas(ctx context.Context, in EvaluateRagasInput) (EvaluateRagasOutput, error) {
	scores, err := a.judgeFaithfulnessAndRelevancy(ctx, in.Question, in.Contexts, in.Answer)
	if err != nil {
		return EvaluateRagasOutput{Success: false, Error: err.Error()}, nil
	}

	body := map[string]any{"traceId": in.TraceID, "scores": scores}
	if err := a.API.Post(ctx, "/api/evaluations", body, nil); err != nil {
		return EvaluateRagasOutput{Success: false, Error: err.Error()}, nil
	}
	return EvaluateRagasOutput{Scores: scores, Success: true}, nil
}

// SummarizeItem names one entry to evaluate; content is fetched by the
// activity itself rather than carried through the workflow input.
type SummarizeItem struct {
	EntryID string `json:"entryId"`
	TraceID string `json:"traceId"`
}

// EvaluateSummarizationInput/Output.
type EvaluateSummarizationInput struct {
	TraceID    string          `json:"traceId"`
	Items      []SummarizeItem `json:"items"`
	MaxSamples int             `json:"maxSamples,omitempty"`
}

type EvaluateSummarizationOutput struct {
	AverageScores  map[string]float64 `json:"averageScores"`
	EvaluatedCount int                `json:"evaluatedCount"`
	Success        bool               `json:"success"`
	Error          string             `json:"error,omitempty"`
}

// EvaluateSummarization fetches each entry's full content and summary,
// scores the summary's faithfulness/relevancy against the content as
// context, and averages the per-item scores across the sampled set.
func (a *Activities) EvaluateSummarization(ctx context.Context, in EvaluateSummarizationInput) (EvaluateSummarizationOutput, error) {
	items := in.Items
	if in.MaxSamples > 0 && len(items) > in.MaxSamples {
		items = items[:in.MaxSamples]
	}

	totals := map[string]float64{}
	evaluated := 0
	for _, item := range items {
		entryOut, err := a.GetEntry(ctx, GetEntryInput{EntryID: item.EntryID})
		if err != nil || !entryOut.Found || entryOut.Entry.Summary == "" {
			continue
		}
		scores, err := a.judgeFaithfulnessAndRelevancy(ctx, "", []string{entryOut.Entry.FullContent}, entryOut.Entry.Summary)
		if err != nil {
			continue
		}
		for k, v := range scores {
			totals[k] += v
		}
		evaluated++
	}

	if evaluated == 0 {
		return EvaluateSummarizationOutput{Success: true, EvaluatedCount: 0}, nil
	}

	averages := make(map[string]float64, len(totals))
	for k, v := range totals {
		averages[k] = v / float64(evaluated)
	}

	body := map[string]any{"traceId": in.TraceID, "averageScores": averages, "evaluatedCount": evaluated}
	if err := a.API.Post(ctx, "/api/evaluations/summarization", body, nil); err != nil {
		return EvaluateSummarizationOutput{Success: false, Error: err.Error()}, nil
	}
	return EvaluateSummarizationOutput{AverageScores: averages, EvaluatedCount: evaluated, Success: true}, nil
}

// judgeFaithfulnessAndRelevancy asks the configured LLM to score an
// answer against its contexts on two RAGAS-style metrics: faithfulness
// (is every claim supported by a context) and response relevancy (does
// the answer address the question/content). Scores are in [0, 1].
func (a *Activities) judgeFaithfulnessAndRelevancy(ctx context.Context, question string, contexts []string, answer string) (map[string]float64, error) {
	joined := ""
	for _, c := range contexts {
		joined += c + "\n\n"
	}

	req := llm.Request{
		Model:       a.Cfg.ResearchModel,
		Temperature: 0,
		MaxTokens:   512,
		Messages: []llm.Message{
			{Role: "system", Content: "You are an evaluation judge. Score faithfulness (every claim in the answer is supported by the given context) and response relevancy (the answer addresses the question) on a 0 to 1 scale."},
			{Role: "user", Content: fmt.Sprintf("Question: %s\n\nContext:\n%s\n\nAnswer:\n%s", question, joined, answer)},
		},
		ResponseSchema: &llm.ResponseSchema{Name: "evaluation", Schema: evaluationSchema},
	}

	resp, err := a.LLM.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("evaluate: llm call: %w", err)
	}

	var parsed struct {
		Faithfulness      float64 `json:"faithfulness"`
		ResponseRelevancy float64 `json:"responseRelevancy"`
	}
	if err := schema.ValidateAndDecode([]byte(resp.Content), evaluationSchema, &parsed); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	return map[string]float64{"faithfulness": parsed.Faithfulness, "responseRelevancy": parsed.ResponseRelevancy}, nil
}
