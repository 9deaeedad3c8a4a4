package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm"
)

const systemPromptBase = "You are a helpful AI assistant for a feed reader application. " +
	"Help users understand and analyze entries they are reading."

// Message is one turn of conversation history, already flattened to a
// role/content pair -- the Go counterpart of build_messages_from_input,
// which only ever keeps user turns (no assistant-turn replay) from the
// AG-UI RunAgentInput.
type Message struct {
	Role    string
	Content string
}

// Input is one dialogue turn request.
type Input struct {
	TraceID      string
	SessionID    string
	EntryContext string
	Messages     []Message
}

// LastUserMessage mirrors dialogue.py's _get_last_user_message, used by
// the caller to grab the evaluation "question" separately from the full
// message history sent to the LLM.
func LastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

// EvaluationTrigger fires an evaluation workflow fire-and-forget style.
// Implemented by TemporalEvaluationTrigger (evaluation.go), which cmd/agent
// constructs; nil disables
// evaluation regardless of config (used by tests).
type EvaluationTrigger interface {
	TriggerEvaluation(ctx context.Context, traceID, mode, question string, contexts []string, answer string) error
}

// Streamer runs one dialogue turn against the configured LLM.
type Streamer struct {
	LLM               llm.Client
	Model             string
	Eval              EvaluationTrigger
	EvaluationEnabled bool
}

func New(llmClient llm.Client, model string, eval EvaluationTrigger, evaluationEnabled bool) *Streamer {
	return &Streamer{LLM: llmClient, Model: model, Eval: eval, EvaluationEnabled: evaluationEnabled}
}

// Run streams the assistant's reply as a sequence of text deltas on the
// returned channel, closing it when the completion finishes (or the LLM
// call fails, surfaced on the error channel). If in.Messages has no user
// turn, both channels close immediately with no output, matching
// run_dialogue's early return.
//
// Evaluation is triggered in the streaming goroutine after the stream
// completes and before both channels are closed; the trigger's error is
// discarded and never fails the stream itself.
func (s *Streamer) Run(ctx context.Context, in Input) (<-chan string, <-chan error) {
	out := make(chan string)
	errCh := make(chan error, 1)

	hasUser := false
	for _, m := range in.Messages {
		if m.Role == "user" {
			hasUser = true
			break
		}
	}
	if !hasUser {
		close(out)
		close(errCh)
		return out, errCh
	}

	systemPrompt := systemPromptBase
	if in.EntryContext != "" {
		systemPrompt += fmt.Sprintf("\n\nThe user is currently reading the following entry:\n\n%s", in.EntryContext)
	}

	req := llm.Request{
		Model:       s.Model,
		Temperature: 0.7,
		Messages:    append([]llm.Message{{Role: "system", Content: systemPrompt}}, toLLMMessages(in.Messages)...),
	}

	chunks, chunkErrs := s.LLM.Stream(ctx, req)

	go func() {
		defer close(out)
		defer close(errCh)

		var answer strings.Builder
		for {
			select {
			case chunk, ok := <-chunks:
				if !ok {
					chunks = nil
					break
				}
				if chunk.Delta != "" {
					answer.WriteString(chunk.Delta)
					select {
					case out <- chunk.Delta:
					case <-ctx.Done():
						return
					}
				}
				if chunk.Done {
					chunks = nil
				}
			case err, ok := <-chunkErrs:
				if ok && err != nil {
					errCh <- err
					return
				}
				chunkErrs = nil
			case <-ctx.Done():
				return
			}
			if chunks == nil && chunkErrs == nil {
				break
			}
		}

		if s.EvaluationEnabled && s.Eval != nil {
			query := LastUserMessage(in.Messages)
			final := answer.String()
			if query != "" && in.EntryContext != "" && final != "" {
				// Fire-and-forget: a failed trigger never fails the
				// dialogue turn itself, matching dialogue.py's bare
				// except-and-log around start_evaluation_workflow.
				_ = s.Eval.TriggerEvaluation(ctx, in.TraceID, "dialogue", query, []string{in.EntryContext}, final)
			}
		}
	}()

	return out, errCh
}

func toLLMMessages(msgs []Message) []llm.Message {
	out := make([]llm.Message, len(msgs))
	for i, m := range msgs {
		out[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	return out
}
