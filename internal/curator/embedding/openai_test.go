package embedding

import (
	"context"
	"testing"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbeddingsClient returns fixed vectors, one per input string, in
// request order -- sized to exercise the Index-based reordering in Embed.
type fakeEmbeddingsClient struct {
	vectors [][]float64
	err     error
}

func (f *fakeEmbeddingsClient) New(ctx context.Context, body sdk.EmbeddingNewParams, opts ...option.RequestOption) (*sdk.CreateEmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	data := make([]sdk.Embedding, len(f.vectors))
	for i, v := range f.vectors {
		data[i] = sdk.Embedding{Index: int64(i), Embedding: v}
	}
	return &sdk.CreateEmbeddingResponse{Data: data}, nil
}

func TestEmbed_EmptyInput(t *testing.T) {
	c, err := New(&fakeEmbeddingsClient{}, "text-embedding-3-small")
	require.NoError(t, err)

	out, err := c.Embed(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestEmbed_ReturnsOneVectorPerInput(t *testing.T) {
	c, err := New(&fakeEmbeddingsClient{vectors: [][]float64{{0.1, 0.2}, {0.3, 0.4}}}, "text-embedding-3-small")
	require.NoError(t, err)

	out, err := c.Embed([]string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []float32{0.1, 0.2}, out[0])
	assert.Equal(t, []float32{0.3, 0.4}, out[1])
}

func TestEmbed_MismatchedVectorCountErrors(t *testing.T) {
	c, err := New(&fakeEmbeddingsClient{vectors: [][]float64{{0.1}}}, "text-embedding-3-small")
	require.NoError(t, err)

	_, err = c.Embed([]string{"a", "b"})
	assert.Error(t, err)
}

func TestNew_RequiresEmbeddingsClientAndModel(t *testing.T) {
	_, err := New(nil, "model")
	assert.Error(t, err)

	_, err = New(&fakeEmbeddingsClient{}, "")
	assert.Error(t, err)
}

func TestNewFromAPIKey_RequiresAPIKey(t *testing.T) {
	_, err := NewFromAPIKey("", "", "model")
	assert.Error(t, err)
}
