package generation

import (
	"context"
	"testing"

	"github.com/careloop/guardrail/config"
	"github.com/careloop/guardrail/test"
	"github.com/stretchr/testify/assert"
)

func TestOpenAIProviderInvoke(t *testing.T) {
	server := test.MakeCompletionServer(t, "a generated answer")
	defer server.Close()

	p := NewOpenAIProvider("openai", server.URL, "test_key", "test-model")
	assert.Equal(t, "openai", p.Name())

	text, err := p.Invoke(context.Background(), "prompt", "system prompt", 256, 0.4)
	assert.NoError(t, err)
	assert.Equal(t, "a generated answer", text)
}

func TestCompatProviderInvoke(t *testing.T) {
	server := test.MakeCompletionServer(t, "a compatible answer")
	defer server.Close()

	p := NewCompatProvider("local", server.URL+"/v1", "test_key", "test-model")
	assert.Equal(t, "local", p.Name())

	text, err := p.Invoke(context.Background(), "prompt", "", 256, 0.4)
	assert.NoError(t, err)
	assert.Equal(t, "a compatible answer", text)
}

func TestCompatProviderFailure(t *testing.T) {
	server := test.MakeCompletionServer(t, "unused")
	defer server.Close()

	p := NewCompatProvider("local", server.URL+"/v1", "test_key", "test-model")
	_, err := p.Invoke(context.Background(), test.KeywordClassifierFail, "", 256, 0.4)
	assert.Error(t, err)
}

func TestBuildProviders(t *testing.T) {
	cnf := &config.InstanceConfig{
		GenerationProviderOrder: []string{"openai", "local"},
		GenerationProviderEndpoints: map[string]string{
			"openai": "https://api.openai.example.org",
			"local":  "http://localhost:8080/v1",
		},
		GenerationProviderApiKeys: map[string]string{
			"openai": "key1",
			"local":  "key2",
		},
		GenerationProviderModels: map[string]string{
			"openai": "gpt-test",
			"local":  "local-model",
		},
	}

	providers, err := BuildProviders(cnf)
	assert.NoError(t, err)
	assert.Len(t, providers, 2)
	assert.IsType(t, &OpenAIProvider{}, providers[0])
	assert.IsType(t, &CompatProvider{}, providers[1])

	// A provider without a model is a configuration error
	cnf.GenerationProviderModels = map[string]string{"openai": "gpt-test"}
	_, err = BuildProviders(cnf)
	assert.Error(t, err)

	// An empty order is a configuration error
	_, err = BuildProviders(&config.InstanceConfig{})
	assert.Error(t, err)
}
