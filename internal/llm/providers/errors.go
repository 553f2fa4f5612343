package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// ErrMissingKey is returned when the pool for the routed provider is empty.
// It is a configuration error and is never retried.
var ErrMissingKey = errors.New("missing API key: configure a key for the selected provider")

// ProviderError is the canonical shape of any failure reported by a backend.
// HTTPStatus is zero when no HTTP response was received.
type ProviderError struct {
	Provider   string
	HTTPStatus int
	Status     string
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	b.WriteString(" request failed")
	if e.HTTPStatus != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.HTTPStatus)
	}
	if e.Status != "" {
		b.WriteString(" ")
		b.WriteString(e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// normalizeError converts any error caught from a provider call into a *ProviderError.
// All status probing happens here so the classifier only reads one shape.
func normalizeError(provider Provider, err error) *ProviderError {
	if err == nil {
		return nil
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	out := &ProviderError{Provider: provider.String(), Message: err.Error(), Err: err}

	var gv genai.APIError
	var gp *genai.APIError
	var oa *openai.APIError
	var or *openai.RequestError
	switch {
	case errors.As(err, &gv):
		out.HTTPStatus, out.Status, out.Message = gv.Code, gv.Status, gv.Message
	case errors.As(err, &gp) && gp != nil:
		out.HTTPStatus, out.Status, out.Message = gp.Code, gp.Status, gp.Message
	case errors.As(err, &oa):
		out.HTTPStatus, out.Message = oa.HTTPStatusCode, oa.Message
		if code, ok := oa.Code.(string); ok {
			out.Status = code
		} else if oa.Type != "" {
			out.Status = oa.Type
		}
	case errors.As(err, &or):
		out.HTTPStatus = or.HTTPStatusCode
		if or.Err != nil {
			out.Message = or.Err.Error()
		}
	}
	if out.Message == "" {
		out.Message = err.Error()
	}
	return out
}

var retryablePhrases = []string{"quota", "limit", "resource_exhausted", "overloaded"}

// IsRetryable reports whether err is a transient provider failure that
// warrants trying the next key. It never panics and has no side effects.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrMissingKey) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	pe := normalizeError(ProviderGemini, err)
	switch pe.HTTPStatus {
	case 429, 500, 503:
		return true
	}
	if strings.EqualFold(pe.Status, "RESOURCE_EXHAUSTED") {
		return true
	}

	text := strings.ToLower(pe.Message + " " + err.Error())
	for _, phrase := range retryablePhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
