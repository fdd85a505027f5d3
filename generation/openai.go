package generation

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type OpenAIProvider struct {
	// Implements Provider

	name   string
	client openai.Client
	model  string
}

func NewOpenAIProvider(name string, endpoint string, apiKey string, model string, additionalClientOptions ...option.RequestOption) *OpenAIProvider {
	options := make([]option.RequestOption, 0)
	if len(endpoint) > 0 {
		options = append(options, option.WithBaseURL(endpoint))
	}
	if len(apiKey) > 0 {
		options = append(options, option.WithAPIKey(apiKey))
	}
	options = append(options, additionalClientOptions...)
	return &OpenAIProvider{
		name:   name,
		client: openai.NewClient(options...),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string {
	return p.name
}

func (p *OpenAIProvider) Invoke(ctx context.Context, prompt string, systemPrompt string, maxTokens int, temperature float64) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if len(systemPrompt) > 0 {
		messages = append(messages, openai.ChatCompletionMessageParamUnion{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Role: "system",
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(systemPrompt),
				},
			},
		})
	}
	messages = append(messages, openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Role: "user",
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfString: openai.String(prompt),
			},
		},
	})

	res, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(temperature),
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
