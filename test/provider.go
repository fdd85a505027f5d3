package test

import (
	"context"
	"sync/atomic"
	"time"
)

// ScriptedProvider - A generation provider for tests: returns a fixed response or error, with an
// optional delay to exercise timeouts.
type ScriptedProvider struct {
	// Implements generation.Provider

	ProviderName string
	Response     string
	Err          error
	Delay        time.Duration

	calls atomic.Int64
}

func (p *ScriptedProvider) Name() string {
	return p.ProviderName
}

func (p *ScriptedProvider) Invoke(ctx context.Context, prompt string, systemPrompt string, maxTokens int, temperature float64) (string, error) {
	p.calls.Add(1)
	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if p.Err != nil {
		return "", p.Err
	}
	return p.Response, nil
}

func (p *ScriptedProvider) Calls() int64 {
	return p.calls.Load()
}
