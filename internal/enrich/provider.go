// Package enrich recovers structured fields from renewal transcriptions
// that the regex pass could not parse, by asking an LLM provider to read
// the free text.
package enrich

import (
	"context"
	"fmt"
)

// Request is one completion request to an LLM provider.
type Request struct {
	Model       string
	Temperature float64
	Prompt      string
}

// Provider defines the interface for an LLM provider
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// NewProvider returns the provider registered under name.
func NewProvider(name string) (Provider, error) {
	switch name {
	case "gemini":
		return NewGemini(), nil
	case "ollama":
		return NewOllama(), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: gemini, ollama)", name)
	}
}
