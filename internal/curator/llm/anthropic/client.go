// Package anthropic implements llm.Client on top of the Anthropic
// Messages API, as an alternate provider for planner/writer/dialogue/
// distillation calls.
//
// Grounded directly on features/model/anthropic/client.go's MessagesClient
// subset interface and Options/New/NewFromAPIKey shape; simplified to this
// domain's needs (no tool-use translation, since curator LLM calls never
// invoke tools -- only plain chat and structured JSON output).
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm"
)

// MessagesClient captures the subset of the Anthropic SDK used here.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Options configures the client.
type Options struct {
	DefaultModel string
	MaxTokens    int
	Temperature  float64
}

// Client implements llm.Client via Anthropic Messages.
type Client struct {
	msg          MessagesClient
	defaultModel string
	maxTokens    int
	temperature  float64
}

// New builds a client from a pre-configured Messages client.
func New(msg MessagesClient, opts Options) (*Client, error) {
	if msg == nil {
		return nil, errors.New("anthropic: messages client is required")
	}
	if opts.DefaultModel == "" {
		return nil, errors.New("anthropic: default model is required")
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Client{msg: msg, defaultModel: opts.DefaultModel, maxTokens: maxTokens, temperature: opts.Temperature}, nil
}

// NewFromAPIKey constructs a client using the default Anthropic transport.
func NewFromAPIKey(apiKey, defaultModel string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	c := sdk.NewClient(option.WithAPIKey(apiKey))
	return New(&c.Messages, Options{DefaultModel: defaultModel})
}

// Complete issues a non-streaming Messages.New request. When
// req.ResponseSchema is set, the schema is appended to the system prompt
// as an explicit instruction, since Anthropic's Messages API does not
// offer a native JSON-schema response-format parameter; the caller
// validates the decoded response against the schema afterward (see
// internal/curator/llm/schema).
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	if len(req.Messages) == 0 {
		return llm.Response{}, errors.New("anthropic: at least one message is required")
	}
	modelID := req.Model
	if modelID == "" {
		modelID = c.defaultModel
	}
	var system []sdk.TextBlockParam
	var conversation []sdk.MessageParam
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			system = append(system, sdk.TextBlockParam{Text: m.Content})
		case "assistant":
			conversation = append(conversation, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
		default:
			conversation = append(conversation, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
		}
	}
	if req.ResponseSchema != nil {
		schemaJSON, err := json.Marshal(req.ResponseSchema.Schema)
		if err != nil {
			return llm.Response{}, fmt.Errorf("anthropic: marshal response schema: %w", err)
		}
		system = append(system, sdk.TextBlockParam{
			Text: fmt.Sprintf("Respond with ONLY a JSON object conforming exactly to this schema named %q, no prose, no markdown fences:\n%s", req.ResponseSchema.Name, schemaJSON),
		})
	}
	if len(conversation) == 0 {
		return llm.Response{}, errors.New("anthropic: at least one user/assistant message is required")
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	params := sdk.MessageNewParams{
		Model:     sdk.Model(modelID),
		MaxTokens: int64(maxTokens),
		Messages:  conversation,
	}
	if len(system) > 0 {
		params.System = system
	}
	temp := req.Temperature
	if temp == 0 {
		temp = c.temperature
	}
	if temp > 0 {
		params.Temperature = sdk.Float(temp)
	}
	msg, err := c.msg.New(ctx, params)
	if err != nil {
		return llm.Response{}, fmt.Errorf("anthropic: messages.new: %w", err)
	}
	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return llm.Response{Content: text}, nil
}

// Stream is not used by any curator component against Anthropic today
// (dialogue defaults to the openai provider); it is implemented in terms
// of Complete so the provider still satisfies llm.Client and can be
// selected via configuration without surprising gaps.
func (c *Client) Stream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, <-chan error) {
	chunks := make(chan llm.Chunk)
	errs := make(chan error, 1)
	go func() {
		defer close(chunks)
		defer close(errs)
		resp, err := c.Complete(ctx, req)
		if err != nil {
			errs <- err
			return
		}
		chunks <- llm.Chunk{Delta: resp.Content, Done: true}
	}()
	return chunks, errs
}
