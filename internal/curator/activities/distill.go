package activities

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.temporal.io/sdk/activity"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm/schema"
)

// contentProcessingLLMOutput mirrors models/entry.py's
// ContentProcessingLLMOutput: the LLM is shown the entry's HTML/text
// content with each line numbered, and asked to bound the main-content
// region and summarize it.
type contentProcessingLLMOutput struct {
	MainContentStartLine int    `json:"mainContentStartLine"`
	MainContentEndLine   int    `json:"mainContentEndLine"`
	Summary              string `json:"summary"`
}

// DistillEntryContentInput/Output. Grounded on models/entry.py's
// ProcessedEntry and the single-entry distillation activity.
type DistillEntryContentInput struct {
	EntryID     string `json:"entryId"`
	FullContent string `json:"fullContent"`
	Title       string `json:"title"`
}

type DistillEntryContentOutput struct {
	FilteredContent string `json:"filteredContent"`
	Summary         string `json:"summary"`
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
}

// DistillEntryContent asks the configured LLM to bound the main-content
// region of an entry's raw content and summarize it, then derives the
// filtered content by slicing the bounded line range. A malformed or
// out-of-schema LLM response is a structured failure, not a Go error, so
// a single bad entry never fails the enclosing batch workflow.
func (a *Activities) DistillEntryContent(ctx context.Context, in DistillEntryContentInput) (DistillEntryContentOutput, error) {
	out, err := a.distillOne(ctx, in.FullContent, in.Title)
	if err != nil {
		activity.GetLogger(ctx).Warn("distill failed", "entryId", in.EntryID, "error", err)
		return DistillEntryContentOutput{Success: false, Error: err.Error()}, nil
	}
	return DistillEntryContentOutput{FilteredContent: out.filtered, Summary: out.summary, Success: true}, nil
}

// DistillEntriesBatchInput/Output. Grounded on models/entry.py's
// BatchEntryResult/BatchContentProcessingOutput.
type DistillEntriesBatchInput struct {
	Entries []DistillEntryContentInput `json:"entries"`
}

type batchEntryResult struct {
	EntryID         string `json:"entryId"`
	FilteredContent string `json:"filteredContent,omitempty"`
	Summary         string `json:"summary,omitempty"`
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
}

type DistillEntriesBatchOutput struct {
	Results []batchEntryResult `json:"results"`
}

// DistillEntriesBatch distills each entry independently, heartbeating
// between entries with a progress string; the heartbeat details are not
// read back, so a retried attempt starts again from the first entry.
func (a *Activities) DistillEntriesBatch(ctx context.Context, in DistillEntriesBatchInput) (DistillEntriesBatchOutput, error) {
	results := make([]batchEntryResult, 0, len(in.Entries))
	for i, e := range in.Entries {
		activity.RecordHeartbeat(ctx, fmt.Sprintf("distilling %d/%d", i+1, len(in.Entries)))
		out, err := a.distillOne(ctx, e.FullContent, e.Title)
		if err != nil {
			results = append(results, batchEntryResult{EntryID: e.EntryID, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, batchEntryResult{EntryID: e.EntryID, FilteredContent: out.filtered, Summary: out.summary, Success: true})
	}
	return DistillEntriesBatchOutput{Results: results}, nil
}

type distillResult struct {
	filtered string
	summary  string
}

func (a *Activities) distillOne(ctx context.Context, fullContent, title string) (distillResult, error) {
	numbered, lineCount := numberLines(fullContent)

	req := llm.Request{
		Model:       a.Cfg.ResearchModel,
		Temperature: 0,
		MaxTokens:   2048,
		Messages: []llm.Message{
			{Role: "system", Content: "You identify the main article content within a numbered-line document and summarize it. Ignore navigation, ads, and boilerplate."},
			{Role: "user", Content: fmt.Sprintf("Title: %s\n\n%s", title, numbered)},
		},
		ResponseSchema: &llm.ResponseSchema{Name: "content_processing", Schema: schema.ContentProcessingSchema},
	}

	resp, err := a.LLM.Complete(ctx, req)
	if err != nil {
		return distillResult{}, fmt.Errorf("distill: llm call: %w", err)
	}

	var parsed contentProcessingLLMOutput
	if err := schema.ValidateAndDecode([]byte(resp.Content), schema.ContentProcessingSchema, &parsed); err != nil {
		return distillResult{}, fmt.Errorf("distill: %w", err)
	}
	if parsed.MainContentStartLine < 1 || parsed.MainContentEndLine < parsed.MainContentStartLine || parsed.MainContentEndLine > lineCount {
		return distillResult{}, fmt.Errorf("distill: line range [%d,%d] out of bounds for %d lines", parsed.MainContentStartLine, parsed.MainContentEndLine, lineCount)
	}

	filtered := sliceLines(fullContent, parsed.MainContentStartLine, parsed.MainContentEndLine)
	return distillResult{filtered: filtered, summary: parsed.Summary}, nil
}

// numberLines prefixes every line with a 1-based line number, the format
// the distillation prompt expects so the model can reference a range.
func numberLines(content string) (string, int) {
	lines := strings.Split(content, "\n")
	var b strings.Builder
	for i, line := range lines {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(": ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String(), len(lines)
}

// sliceLines returns the 1-based inclusive [start, end] line range of
// content, joined back with newlines.
func sliceLines(content string, start, end int) string {
	lines := strings.Split(content, "\n")
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start-1:end], "\n")
}
