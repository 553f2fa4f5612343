package llm

import "StoryStudio/internal/llm/providers"

// ErrMissingKey reports an empty key pool for the routed provider
var ErrMissingKey = providers.ErrMissingKey

// ProviderError is the normalized failure returned by both executors
type ProviderError = providers.ProviderError

// IsRetryable reports whether err is a transient failure worth another key
func IsRetryable(err error) bool {
	return providers.IsRetryable(err)
}
