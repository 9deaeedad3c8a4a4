// Package openai implements llm.Client on top of the OpenAI Chat
// Completions API. It is the default provider for dialogue and research,
// matching the original's use of ChatOpenAI.
//
// Grounded on the pack's features/model/openai and
// features/model/anthropic client adapters: an Options struct carrying a
// default model id, a New constructor validating required fields, and
// Complete/Stream methods translating to/from the provider SDK shapes.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm"
)

// ChatClient captures the subset of the OpenAI SDK used by this adapter,
// so tests can substitute a fake.
type ChatClient interface {
	New(ctx context.Context, body sdk.ChatCompletionNewParams, opts ...option.RequestOption) (*sdk.ChatCompletion, error)
}

// Options configures the client.
type Options struct {
	DefaultModel string
	BaseURL      string
	Temperature  float64
}

// Client implements llm.Client via OpenAI Chat Completions.
type Client struct {
	chat         ChatClient
	defaultModel string
	temperature  float64
}

// New builds a client from a pre-configured chat client.
func New(chat ChatClient, opts Options) (*Client, error) {
	if chat == nil {
		return nil, errors.New("openai: chat client is required")
	}
	if opts.DefaultModel == "" {
		return nil, errors.New("openai: default model is required")
	}
	return &Client{chat: chat, defaultModel: opts.DefaultModel, temperature: opts.Temperature}, nil
}

// NewFromAPIKey constructs a client using the official SDK's default HTTP
// transport, optionally pointed at a custom base URL (for OpenAI-compatible
// gateways).
func NewFromAPIKey(apiKey, baseURL, defaultModel string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	c := sdk.NewClient(reqOpts...)
	return New(&c.Chat.Completions, Options{DefaultModel: defaultModel})
}

// Complete issues a non-streaming chat completion, optionally constrained
// to a JSON schema for structured output.
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return llm.Response{}, err
	}
	resp, err := c.chat.New(ctx, params)
	if err != nil {
		return llm.Response{}, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return llm.Response{}, errors.New("openai: response had no choices")
	}
	return llm.Response{Content: resp.Choices[0].Message.Content}, nil
}

// Stream issues one non-streaming chat completion (via Complete) and
// emits its whole content as a single Done chunk through a channel pair,
// so the dialogue streamer can select over chunks/errors uniformly with
// other providers. Tokens are not delivered incrementally.
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

func (c *Client) buildParams(req llm.Request) (sdk.ChatCompletionNewParams, error) {
	if len(req.Messages) == 0 {
		return sdk.ChatCompletionNewParams{}, errors.New("openai: at least one message is required")
	}
	modelID := req.Model
	if modelID == "" {
		modelID = c.defaultModel
	}
	msgs := make([]sdk.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			msgs = append(msgs, sdk.SystemMessage(m.Content))
		case "assistant":
			msgs = append(msgs, sdk.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, sdk.UserMessage(m.Content))
		}
	}
	params := sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(modelID),
		Messages: msgs,
	}
	temp := req.Temperature
	if temp == 0 {
		temp = c.temperature
	}
	if temp > 0 {
		params.Temperature = sdk.Float(temp)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = sdk.Int(int64(req.MaxTokens))
	}
	if req.ResponseSchema != nil {
		schemaJSON, err := json.Marshal(req.ResponseSchema.Schema)
		if err != nil {
			return sdk.ChatCompletionNewParams{}, fmt.Errorf("openai: marshal response schema: %w", err)
		}
		var schemaMap map[string]any
		if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
			return sdk.ChatCompletionNewParams{}, fmt.Errorf("openai: decode response schema: %w", err)
		}
		params.ResponseFormat = sdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &sdk.ResponseFormatJSONSchemaParam{
				JSONSchema: sdk.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.ResponseSchema.Name,
					Schema: schemaMap,
					Strict: sdk.Bool(true),
				},
			},
		}
	}
	return params, nil
}
