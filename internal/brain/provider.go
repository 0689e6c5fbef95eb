// Package brain provides the AI summarization providers.
//
// The insight feature consumes a provider as an opaque request/response
// function: one prompt in, one bounded-length text out. No streaming -
// the caller holds a single in-flight request at a time.
package brain

import (
	"context"
)

// Provider is the interface for AI providers
type Provider interface {
	// Name returns the provider name (e.g., "gemini", "claude")
	Name() string

	// Available returns true if the provider is configured and ready
	Available() bool

	// Generate sends a prompt and returns the response
	Generate(ctx context.Context, req Request) (Response, error)
}

// Request is a prompt request to an AI provider
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// Response is the AI provider's response
type Response struct {
	Content     string
	Model       string
	RawResponse string // The raw API response body for logging/debugging
}

// Manager holds multiple AI providers with fallback
type Manager struct {
	providers []Provider
	preferred string // Preferred provider name
}

// NewManager creates an empty provider manager
func NewManager() *Manager {
	return &Manager{
		providers: make([]Provider, 0),
	}
}

// Add registers a provider
func (m *Manager) Add(p Provider) {
	m.providers = append(m.providers, p)
}

// SetPreferred sets the preferred provider by name
func (m *Manager) SetPreferred(name string) {
	m.preferred = name
}

// Available returns the first available provider, preferring the
// preferred one. Returns nil if nothing is configured.
func (m *Manager) Available() Provider {
	if m.preferred != "" {
		for _, p := range m.providers {
			if p.Name() == m.preferred && p.Available() {
				return p
			}
		}
	}

	for _, p := range m.providers {
		if p.Available() {
			return p
		}
	}

	return nil
}

// ListAvailable returns names of all available providers
func (m *Manager) ListAvailable() []string {
	var names []string
	for _, p := range m.providers {
		if p.Available() {
			names = append(names, p.Name())
		}
	}
	return names
}
