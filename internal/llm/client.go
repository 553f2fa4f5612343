// Package llm is the single entry point content generators use to reach a
// language model. It routes each request to the Gemini or OpenAI-compatible
// executor; key rotation and model remapping live in the providers package.
package llm

import (
	"context"
	"fmt"
	"strings"

	"StoryStudio/internal/config"
	"StoryStudio/internal/logging"
	"StoryStudio/internal/llm/providers"
)

type (
	// GenerationRequest is one text-generation call
	GenerationRequest = providers.GenerationRequest
	// KeyConfig holds the per-provider key blobs
	KeyConfig = providers.KeyConfig
	// Provider identifies a backend family
	Provider = providers.Provider
	// FailureRecorder observes failed key attempts
	FailureRecorder = providers.FailureRecorder
)

const (
	ProviderGemini = providers.ProviderGemini
	ProviderOpenAI = providers.ProviderOpenAI
)

// TextGenerator is implemented by LLMClient and by test doubles
type TextGenerator interface {
	GenerateText(ctx context.Context, req GenerationRequest, keys KeyConfig) (string, error)
}

// Tokens in a model identifier that select the OpenAI-compatible backend
var openAIModelTokens = []string{"gpt", "chatgpt", "openai"}

// Reasoning model families, matched as a name prefix. These are the same
// families the OpenAI tier table sends to its thinking route.
var openAIModelPrefixes = []string{"o1", "o3", "o4"}

// ResolveProvider picks the backend for a logical model identifier.
// Gemini is the default for anything not named like an OpenAI model.
func ResolveProvider(model string) Provider {
	lower := strings.ToLower(strings.TrimSpace(model))
	for _, token := range openAIModelTokens {
		if strings.Contains(lower, token) {
			return ProviderOpenAI
		}
	}
	for _, prefix := range openAIModelPrefixes {
		if lower == prefix || strings.HasPrefix(lower, prefix+"-") {
			return ProviderOpenAI
		}
	}
	return ProviderGemini
}

// LLMClient dispatches generation requests to provider executors
type LLMClient struct {
	gemini providers.Executor
	openai providers.Executor
}

// Client is an alias for LLMClient for convenience
type Client = LLMClient

// NewLLMClient creates a client with both executors built from cfg
func NewLLMClient(cfg *config.Config, recorder FailureRecorder) *LLMClient {
	logging.Debug("Initializing LLM client")
	return NewClientWithExecutors(
		providers.NewGeminiExecutor(cfg, recorder),
		providers.NewOpenAIExecutor(cfg, recorder),
	)
}

// NewClientWithExecutors creates a client over the given executors
func NewClientWithExecutors(gemini, openai providers.Executor) *LLMClient {
	return &LLMClient{gemini: gemini, openai: openai}
}

// GenerateText routes req to one executor and returns its text unchanged.
// It performs no retries of its own.
func (c *LLMClient) GenerateText(ctx context.Context, req GenerationRequest, keys KeyConfig) (string, error) {
	provider := ResolveProvider(req.Model)

	var executor providers.Executor
	switch provider {
	case ProviderOpenAI:
		executor = c.openai
	default:
		executor = c.gemini
	}
	if executor == nil {
		return "", fmt.Errorf("no executor configured for provider %s", provider)
	}
	return executor.Execute(ctx, req, keys)
}
