package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEmbeddingAPI struct {
	mock.Mock
}

func (m *mockEmbeddingAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func TestClient_GenerateEmbedding(t *testing.T) {
	api := &mockEmbeddingAPI{}
	api.On("CreateEmbeddings", mock.Anything, "hello").Return([]float32{0.1, 0.2, 0.3}, nil)

	client := &Client{api: api, model: "text-embedding-3-small", dimensions: 3}

	embedding, err := client.GenerateEmbedding(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, embedding)
	api.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_EmptyText(t *testing.T) {
	client := &Client{api: &mockEmbeddingAPI{}, dimensions: 3}

	_, err := client.GenerateEmbedding(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestClient_GenerateEmbedding_DimensionMismatch(t *testing.T) {
	api := &mockEmbeddingAPI{}
	api.On("CreateEmbeddings", mock.Anything, "hello").Return([]float32{0.1, 0.2}, nil)

	client := &Client{api: api, model: "text-embedding-3-small", dimensions: 3}

	_, err := client.GenerateEmbedding(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 dimensions, expected 3")
}

func TestClient_GenerateEmbedding_APIError(t *testing.T) {
	api := &mockEmbeddingAPI{}
	api.On("CreateEmbeddings", mock.Anything, "hello").Return(nil, errors.New("rate limited"))

	client := &Client{api: api, dimensions: 3}

	_, err := client.GenerateEmbedding(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create embedding")
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "test-key"})

	assert.Equal(t, string(DefaultEmbeddingModel), client.Model())
	assert.Equal(t, DefaultEmbeddingDimensions, client.Dimensions())
}

func TestNewClientWithConfig_Overrides(t *testing.T) {
	client := NewClientWithConfig(Config{
		APIKey:              "test-key",
		EmbeddingModel:      "text-embedding-3-large",
		EmbeddingDimensions: 3072,
	})

	assert.Equal(t, "text-embedding-3-large", client.Model())
	assert.Equal(t, 3072, client.Dimensions())
}

func TestNewClientFromEnv_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewClientFromEnv()
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
