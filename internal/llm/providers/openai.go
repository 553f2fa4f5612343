package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"StoryStudio/internal/config"
	"StoryStudio/internal/logging"
	"StoryStudio/internal/net"
)

const jsonInstruction = "\n\nRespond with valid JSON only, without markdown fences or commentary."

// OpenAIExecutor runs generation requests against an OpenAI-compatible
// chat-completions endpoint, remapping logical models through a tier table.
type OpenAIExecutor struct {
	baseURL    string
	httpClient *http.Client
	table      ModelTable
	recorder   FailureRecorder
}

// NewOpenAIExecutor creates an executor from the openai section of the config
func NewOpenAIExecutor(cfg *config.Config, recorder FailureRecorder) *OpenAIExecutor {
	baseURL := config.DefaultOpenAIBaseURL
	timeout := time.Duration(0)
	var routes []config.ModelRoute
	if cfg != nil {
		if cfg.OpenAI.BaseURL != "" {
			baseURL = cfg.OpenAI.BaseURL
		}
		timeout = time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second
		routes = cfg.OpenAI.Models
	}
	return &OpenAIExecutor{
		baseURL:    baseURL,
		httpClient: net.NewOptimizedClient(timeout),
		table:      ModelTableFromConfig(routes),
		recorder:   recorder,
	}
}

// Table returns the tier table used for model remapping
func (o *OpenAIExecutor) Table() ModelTable {
	return o.table
}

// Execute tries each key in order. Per key, a not-found answer from a route
// with FallbackOnNotFound is retried once against the default route.
func (o *OpenAIExecutor) Execute(ctx context.Context, req GenerationRequest, keys KeyConfig) (string, error) {
	pool := ParseKeyPool(keys.OpenAI, nil)
	if len(pool) == 0 {
		return "", ErrMissingKey
	}

	route, matched := o.table.Lookup(req.Model)
	if !matched {
		logging.Debug("No tier matched %q, using default backend model %s", req.Model, route.Model)
	}
	logging.Debug("Starting OpenAI-compatible request: model=%s backend=%s keys=%d", req.Model, route.Model, len(pool))

	var lastErr *ProviderError
	for i, key := range pool {
		text, err := o.attemptWithFallback(ctx, key, route, req)
		if err == nil {
			return text, nil
		}

		lastErr = normalizeError(ProviderOpenAI, err)
		recordFailure(ctx, o.recorder, ProviderOpenAI, key, lastErr)
		if !isRotatable(lastErr) {
			return "", lastErr
		}
		if i < len(pool)-1 {
			logging.Warn("OpenAI key %s failed (attempt %d/%d), trying next key: %v", MaskKey(key), i+1, len(pool), lastErr)
		}
	}
	return "", lastErr
}

func (o *OpenAIExecutor) attemptWithFallback(ctx context.Context, key string, route ModelRoute, req GenerationRequest) (string, error) {
	text, err := o.attempt(ctx, key, route, req)
	if err == nil || !route.FallbackOnNotFound {
		return text, err
	}
	if pe := normalizeError(ProviderOpenAI, err); pe.HTTPStatus != http.StatusNotFound {
		return "", err
	}

	def := o.table.Default()
	logging.Warn("Backend model %s not found, falling back to %s", route.Model, def.Model)
	return o.attempt(ctx, key, def, req)
}

func (o *OpenAIExecutor) attempt(ctx context.Context, key string, route ModelRoute, req GenerationRequest) (string, error) {
	clientConfig := openai.DefaultConfig(key)
	clientConfig.BaseURL = o.baseURL
	clientConfig.HTTPClient = o.httpClient
	client := openai.NewClientWithConfig(clientConfig)

	resp, err := client.CreateChatCompletion(ctx, buildChatRequest(route, req))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("response from %s contained no choices", route.Model)
	}
	return resp.Choices[0].Message.Content, nil
}

// buildChatRequest shapes the payload for the capabilities of route
func buildChatRequest(route ModelRoute, req GenerationRequest) openai.ChatCompletionRequest {
	prompt := req.Prompt
	if req.WantsJSON() && !strings.Contains(strings.ToLower(prompt), "json") {
		prompt += jsonInstruction
	}

	var messages []openai.ChatCompletionMessage
	switch {
	case req.SystemInstruction == "":
	case route.NoSystemRole:
		prompt = "System instructions:\n" + req.SystemInstruction + "\n\nTask:\n" + prompt
	default:
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:    route.Model,
		Messages: messages,
	}
	if req.WantsJSON() && !route.NoJSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	if req.Temperature != nil && !route.NoTemperature {
		chatReq.Temperature = *req.Temperature
		// go-openai omits a zero temperature, which the backend reads as its default
		if chatReq.Temperature == 0 {
			chatReq.Temperature = math.SmallestNonzeroFloat32
		}
	}
	return chatReq
}

// isRotatable classifies by HTTP status: rate limits, server errors and
// transport failures move on to the next key. Errors raised after a response
// was read (no choices, undecodable body) are returned to the caller.
func isRotatable(pe *ProviderError) bool {
	if errors.Is(pe, context.Canceled) || errors.Is(pe, context.DeadlineExceeded) {
		return false
	}
	if pe.HTTPStatus == 0 {
		var urlErr *url.Error
		return errors.As(pe, &urlErr)
	}
	return pe.HTTPStatus == http.StatusTooManyRequests || pe.HTTPStatus >= 500
}
