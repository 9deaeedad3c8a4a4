// Package bedrock implements llm.Client on top of AWS Bedrock's Converse
// API, as a third alternate provider (self-hosted model access without a
// direct OpenAI/Anthropic account).
//
// Grounded on the pack's use of github.com/aws/aws-sdk-go-v2 +
// bedrockruntime as a swappable model.Client backend alongside the
// anthropic/openai adapters.
package bedrock

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/llm"
)

// ConverseClient captures the subset of the Bedrock runtime client used
// here.
type ConverseClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Options configures the client.
type Options struct {
	DefaultModelID string
	Temperature    float64
}

// Client implements llm.Client via Bedrock Converse.
type Client struct {
	rt           ConverseClient
	defaultModel string
	temperature  float64
}

// New builds a client from a pre-configured Bedrock runtime client.
func New(rt ConverseClient, opts Options) (*Client, error) {
	if rt == nil {
		return nil, errors.New("bedrock: runtime client is required")
	}
	if opts.DefaultModelID == "" {
		return nil, errors.New("bedrock: default model id is required")
	}
	return &Client{rt: rt, defaultModel: opts.DefaultModelID, temperature: opts.Temperature}, nil
}

// NewFromRegion builds a client using the AWS SDK's default credential
// chain (environment, shared config, instance role), scoped to region.
func NewFromRegion(region, defaultModelID string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("bedrock: load aws config: %w", err)
	}
	rt := bedrockruntime.NewFromConfig(cfg)
	return New(rt, Options{DefaultModelID: defaultModelID})
}

// Complete issues a non-streaming Converse call.
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	if len(req.Messages) == 0 {
		return llm.Response{}, errors.New("bedrock: at least one message is required")
	}
	modelID := req.Model
	if modelID == "" {
		modelID = c.defaultModel
	}
	var system []brtypes.SystemContentBlock
	var messages []brtypes.Message
	for _, m := range req.Messages {
		block := &brtypes.ContentBlockMemberText{Value: m.Content}
		switch m.Role {
		case "system":
			system = append(system, &brtypes.SystemContentBlockMemberText{Value: m.Content})
		case "assistant":
			messages = append(messages, brtypes.Message{Role: brtypes.ConversationRoleAssistant, Content: []brtypes.ContentBlock{block}})
		default:
			messages = append(messages, brtypes.Message{Role: brtypes.ConversationRoleUser, Content: []brtypes.ContentBlock{block}})
		}
	}
	if len(messages) == 0 {
		return llm.Response{}, errors.New("bedrock: at least one user/assistant message is required")
	}
	temp := float32(req.Temperature)
	if temp == 0 {
		temp = float32(c.temperature)
	}
	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(modelID),
		Messages: messages,
		System:   system,
		InferenceConfig: &brtypes.InferenceConfiguration{
			Temperature: aws.Float32(temp),
		},
	}
	if req.MaxTokens > 0 {
		input.InferenceConfig.MaxTokens = aws.Int32(int32(req.MaxTokens))
	}
	out, err := c.rt.Converse(ctx, input)
	if err != nil {
		return llm.Response{}, fmt.Errorf("bedrock: converse: %w", err)
	}
	msgOut, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return llm.Response{}, errors.New("bedrock: unexpected converse output shape")
	}
	var text string
	for _, block := range msgOut.Value.Content {
		if tb, ok := block.(*brtypes.ContentBlockMemberText); ok {
			text += tb.Value
		}
	}
	return llm.Response{Content: text}, nil
}

// Stream is implemented in terms of Complete; Bedrock's ConverseStream
// API is not wired since no curator component streams against this
// provider today (dialogue defaults to openai).
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
