package providers

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"StoryStudio/internal/config"
	"StoryStudio/internal/logging"
	"StoryStudio/internal/net"
)

// ModelsClient is the subset of the genai models service used for generation
type ModelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClientFactory builds a models client scoped to a single API key
type GeminiClientFactory func(ctx context.Context, apiKey string) (ModelsClient, error)

// GeminiExecutor runs generation requests against the Gemini API
type GeminiExecutor struct {
	newClient GeminiClientFactory
	recorder  FailureRecorder
}

// NewGeminiExecutor creates a Gemini executor using the configured base URL
func NewGeminiExecutor(cfg *config.Config, recorder FailureRecorder) *GeminiExecutor {
	baseURL := ""
	if cfg != nil {
		baseURL = cfg.Gemini.BaseURL
	}
	return NewGeminiExecutorWithFactory(newGenaiFactory(baseURL, net.NewOptimizedClient(0)), recorder)
}

// NewGeminiExecutorWithFactory creates a Gemini executor with a custom client factory
func NewGeminiExecutorWithFactory(factory GeminiClientFactory, recorder FailureRecorder) *GeminiExecutor {
	return &GeminiExecutor{newClient: factory, recorder: recorder}
}

func newGenaiFactory(baseURL string, httpClient *http.Client) GeminiClientFactory {
	return func(ctx context.Context, apiKey string) (ModelsClient, error) {
		cc := &genai.ClientConfig{
			APIKey:     apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: httpClient,
		}
		if baseURL != "" {
			cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
		}
		client, err := genai.NewClient(ctx, cc)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client.Models, nil
	}
}

// Execute tries each Gemini key in order until one succeeds or a
// non-retryable error is returned. The model identifier is sent verbatim.
func (g *GeminiExecutor) Execute(ctx context.Context, req GenerationRequest, keys KeyConfig) (string, error) {
	pool := ParseKeyPool(keys.Google, MatchGeminiKey)
	if len(pool) == 0 {
		return "", ErrMissingKey
	}

	genConfig := buildGeminiConfig(req)
	logging.Debug("Starting Gemini request: model=%s keys=%d structured=%t", req.Model, len(pool), req.WantsJSON())

	var lastErr *ProviderError
	for i, key := range pool {
		text, err := g.attempt(ctx, key, req, genConfig)
		if err == nil {
			return text, nil
		}

		lastErr = normalizeError(ProviderGemini, err)
		recordFailure(ctx, g.recorder, ProviderGemini, key, lastErr)
		if !IsRetryable(lastErr) {
			return "", lastErr
		}
		if i < len(pool)-1 {
			logging.Warn("Gemini key %s failed (attempt %d/%d), trying next key: %v", MaskKey(key), i+1, len(pool), lastErr)
		}
	}
	return "", lastErr
}

func (g *GeminiExecutor) attempt(ctx context.Context, key string, req GenerationRequest, genConfig *genai.GenerateContentConfig) (string, error) {
	client, err := g.newClient(ctx, key)
	if err != nil {
		return "", err
	}
	resp, err := client.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), genConfig)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}

func buildGeminiConfig(req GenerationRequest) *genai.GenerateContentConfig {
	genConfig := &genai.GenerateContentConfig{}
	if req.Temperature != nil {
		t := *req.Temperature
		genConfig.Temperature = &t
	}
	if req.WantsJSON() {
		genConfig.ResponseMIMEType = "application/json"
		genConfig.ResponseSchema = req.Schema
	}
	if req.SystemInstruction != "" {
		genConfig.SystemInstruction = &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{genai.NewPartFromText(req.SystemInstruction)},
		}
	}
	return genConfig
}

// recordFailure reports a failed attempt without affecting the try order
func recordFailure(ctx context.Context, recorder FailureRecorder, provider Provider, key string, pe *ProviderError) {
	if recorder == nil {
		return
	}
	if err := recorder.RecordFailure(ctx, provider.String(), MaskKey(key), pe.HTTPStatus, pe.Message); err != nil {
		logging.Warn("Failed to record key failure: %v", err)
	}
}
