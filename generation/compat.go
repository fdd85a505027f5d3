package generation

import (
	"context"
	"errors"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

// CompatProvider - A generation provider speaking the OpenAI-compatible chat completions protocol
// (local inference servers, proxies, and most hosted providers expose this).
type CompatProvider struct {
	// Implements Provider

	name   string
	client *goopenai.Client
	model  string
}

func NewCompatProvider(name string, endpoint string, apiKey string, model string) *CompatProvider {
	cnf := goopenai.DefaultConfig(apiKey)
	if len(endpoint) > 0 {
		cnf.BaseURL = endpoint
	}
	return &CompatProvider{
		name:   name,
		client: goopenai.NewClientWithConfig(cnf),
		model:  model,
	}
}

func (p *CompatProvider) Name() string {
	return p.name
}

func (p *CompatProvider) Invoke(ctx context.Context, prompt string, systemPrompt string, maxTokens int, temperature float64) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if len(systemPrompt) > 0 {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: prompt,
	})

	res, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
	})
	if err != nil {
		return "", err
	}

	for _, c := range res.Choices {
		if text := strings.TrimSpace(c.Message.Content); len(text) > 0 {
			return text, nil
		}
	}
	return "", errors.New("no completion content in response")
}
