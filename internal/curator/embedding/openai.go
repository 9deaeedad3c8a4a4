// Package embedding implements activities.Embedder and research.Embedder
// against the OpenAI Embeddings API.
//
// The original worker computes embeddings locally via FastEmbed
// (services/embedder.py), a pure-Python/ONNX local model with no Go
// equivalent in the pack. The openai-go SDK is already a pack dependency
// (internal/curator/llm/openai) for chat completions, and its Embeddings
// endpoint is the natural substitute: both produce a deterministic
// float32 vector per input string, which is all activities.Embedder and
// research.Embedder require. Documented in DESIGN.md.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client implements Embed against the OpenAI Embeddings API.
type Client struct {
	embeddings EmbeddingsClient
	model      string
	// mu serializes Embed calls: one embedding request at a time per Client.
	mu sync.Mutex
}

// EmbeddingsClient captures the SDK subset used here so tests can
// substitute a fake, mirroring llm/openai.ChatClient's shape.
type EmbeddingsClient interface {
	New(ctx context.Context, body sdk.EmbeddingNewParams, opts ...option.RequestOption) (*sdk.CreateEmbeddingResponse, error)
}

// New builds a Client from a pre-configured embeddings client.
func New(embeddings EmbeddingsClient, model string) (*Client, error) {
	if embeddings == nil {
		return nil, errors.New("embedding: embeddings client is required")
	}
	if model == "" {
		return nil, errors.New("embedding: model is required")
	}
	return &Client{embeddings: embeddings, model: model}, nil
}

// NewFromAPIKey constructs a Client using the official SDK's default
// transport.
func NewFromAPIKey(apiKey, baseURL, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("embedding: api key is required")
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	c := sdk.NewClient(reqOpts...)
	return New(&c.Embeddings, model)
}

// Embed computes one embedding vector per input text, in order.
func (c *Client) Embed(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	resp, err := c.embeddings.New(context.Background(), sdk.EmbeddingNewParams{
		Model: c.model,
		Input: sdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding: expected %d vectors, got %d", len(texts), len(resp.Data))
	}
	out := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		out[d.Index] = vec
	}
	return out, nil
}
