package providers

import (
	"context"

	"google.golang.org/genai"
)

// Provider identifies a backend family
type Provider int

const (
	// ProviderGemini is the default backend
	ProviderGemini Provider = iota
	// ProviderOpenAI is any OpenAI-compatible chat-completions backend
	ProviderOpenAI
)

// String returns the provider name used in logs and errors
func (p Provider) String() string {
	switch p {
	case ProviderGemini:
		return "gemini"
	case ProviderOpenAI:
		return "openai"
	default:
		return "unknown"
	}
}

// GenerationRequest is one text-generation call.
// When Schema is set the caller expects JSON conforming to it; conformance is not checked here.
type GenerationRequest struct {
	Model             string
	Prompt            string
	SystemInstruction string
	Schema            *genai.Schema
	// ExpectJSON asks for JSON output without a schema
	ExpectJSON  bool
	Temperature *float32
}

// WantsJSON reports whether the request asks for structured output
func (r GenerationRequest) WantsJSON() bool {
	return r.Schema != nil || r.ExpectJSON
}

// KeyConfig holds the raw key blobs for both providers, one key per line
type KeyConfig struct {
	Google string
	OpenAI string
}

// SingleBlob builds a KeyConfig from a bare key string. The blob serves
// whichever provider the request routes to.
func SingleBlob(blob string) KeyConfig {
	return KeyConfig{Google: blob, OpenAI: blob}
}

// Executor runs a request against one provider, rotating through its key pool
type Executor interface {
	Execute(ctx context.Context, req GenerationRequest, keys KeyConfig) (string, error)
}

// FailureRecorder receives every failed attempt. It is observational only:
// recorded failures never change which key is tried next.
type FailureRecorder interface {
	RecordFailure(ctx context.Context, provider, maskedKey string, httpStatus int, message string) error
}
