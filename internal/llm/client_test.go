package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	name  string
	calls []GenerationRequest
	err   error
}

func (r *recordingExecutor) Execute(_ context.Context, req GenerationRequest, _ KeyConfig) (string, error) {
	r.calls = append(r.calls, req)
	if r.err != nil {
		return "", r.err
	}
	return r.name, nil
}

func TestResolveProvider(t *testing.T) {
	tests := map[string]Provider{
		"gemini-3-pro-preview":   ProviderGemini,
		"gemini-3-flash-preview": ProviderGemini,
		"":                       ProviderGemini,
		"gpt-5.2-thinking":       ProviderOpenAI,
		"GPT-5.2-Pro":            ProviderOpenAI,
		"chatgpt-4o-latest":      ProviderOpenAI,
		"openai/o3":              ProviderOpenAI,
		"o3-mini":                ProviderOpenAI,
		"O1":                     ProviderOpenAI,
		"o4-mini-high":           ProviderOpenAI,
		"o3po-custom":            ProviderGemini,
	}
	for model, want := range tests {
		assert.Equal(t, want, ResolveProvider(model), model)
	}
}

func TestGenerateTextRoutesByModel(t *testing.T) {
	gemini := &recordingExecutor{name: "gemini"}
	openai := &recordingExecutor{name: "openai"}
	client := NewClientWithExecutors(gemini, openai)

	text, err := client.GenerateText(context.Background(), GenerationRequest{Model: "gpt-5.2-instant"}, KeyConfig{})
	require.NoError(t, err)
	assert.Equal(t, "openai", text)

	text, err = client.GenerateText(context.Background(), GenerationRequest{Model: "gemini-3-pro-preview"}, KeyConfig{})
	require.NoError(t, err)
	assert.Equal(t, "gemini", text)

	assert.Len(t, gemini.calls, 1)
	assert.Len(t, openai.calls, 1)
}

func TestGenerateTextDoesNotRetry(t *testing.T) {
	boom := &ProviderError{Provider: "gemini", HTTPStatus: 429, Message: "quota"}
	gemini := &recordingExecutor{err: boom}
	client := NewClientWithExecutors(gemini, &recordingExecutor{})

	_, err := client.GenerateText(context.Background(), GenerationRequest{Model: "gemini-3-pro-preview"}, KeyConfig{})
	assert.True(t, errors.Is(err, boom))
	assert.True(t, IsRetryable(err))
	assert.Len(t, gemini.calls, 1)
}

func TestGenerateTextMissingKeyWithRealExecutors(t *testing.T) {
	client := NewLLMClient(nil, nil)

	_, err := client.GenerateText(context.Background(), GenerationRequest{Model: "gpt-5.2-auto", Prompt: "x"}, KeyConfig{})
	assert.ErrorIs(t, err, ErrMissingKey)

	_, err = client.GenerateText(context.Background(), GenerationRequest{Model: "gemini-3-pro-preview", Prompt: "x"}, KeyConfig{OpenAI: "sk-only"})
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.False(t, IsRetryable(err))
}
