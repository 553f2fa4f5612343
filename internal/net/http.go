// Package net provides the shared HTTP client used for provider calls.
package net

import (
	"net/http"
	"time"

	"StoryStudio/internal/config"
)

var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          config.MaxIdleConns,
	MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
	IdleConnTimeout:       config.IdleConnTimeout * time.Second,
	TLSHandshakeTimeout:   config.TLSHandshakeTimeout * time.Second,
	ExpectContinueTimeout: config.ExpectContinueTimeout * time.Second,
}

// NewOptimizedClient returns a client sharing one pooled transport.
// A zero timeout leaves the request unbounded.
func NewOptimizedClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: defaultTransport,
	}
}
