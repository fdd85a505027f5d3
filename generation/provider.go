package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/careloop/guardrail/config"
)

// FallbackProviderName - The provider value reported when every configured provider failed and the
// response was synthesized locally. Never attributed to a real provider.
const FallbackProviderName = "fallback"

// Provider - A single external response-generation collaborator. Each provider is independently
// configurable and swappable; the chain decides ordering and timeouts.
type Provider interface {
	// Name - The name of the provider for logging, metrics, and response attribution.
	Name() string

	// Invoke - Generates a completion for the prompt. Returns the raw response text, or an error
	// for any failure mode (timeout, auth, non-2xx, malformed payload).
	Invoke(ctx context.Context, prompt string, systemPrompt string, maxTokens int, temperature float64) (string, error)
}

// Response - The outcome of a Generate call, after postprocessing.
type Response struct {
	Text          string   `json:"text"`
	Provider      string   `json:"provider"`
	HasDisclaimer bool     `json:"has_disclaimer"`
	IsEmergency   bool     `json:"is_emergency"`
	Issues        []string `json:"issues,omitempty"` // advisory validation findings, observability only
}

// BuildProviders - Constructs the configured fallback chain in order. The "openai" name uses the
// official client; any other name is treated as an OpenAI-compatible endpoint.
func BuildProviders(cnf *config.InstanceConfig) ([]Provider, error) {
	if len(cnf.GenerationProviderOrder) == 0 {
		return nil, errors.New("no generation providers configured")
	}

	providers := make([]Provider, 0, len(cnf.GenerationProviderOrder))
	for _, name := range cnf.GenerationProviderOrder {
		if len(name) == 0 {
			continue
		}
		endpoint := cnf.GenerationProviderEndpoints[name]
		apiKey := cnf.GenerationProviderApiKeys[name]
		model := cnf.GenerationProviderModels[name]
		if len(model) == 0 {
			return nil, fmt.Errorf("no model configured for generation provider %q", name)
		}

		if name == "openai" {
			providers = append(providers, NewOpenAIProvider(name, endpoint, apiKey, model))
		} else {
			providers = append(providers, NewCompatProvider(name, endpoint, apiKey, model))
		}
	}
	if len(providers) == 0 {
		return nil, errors.New("no generation providers configured")
	}
	return providers, nil
}
