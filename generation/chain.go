package generation

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/careloop/guardrail/config"
	"github.com/careloop/guardrail/metrics"
	"github.com/careloop/guardrail/safety"
)

// The locally synthesized response when every provider fails. Never attributed to a provider, and
// always carries an emergency contact hint so a crisis question is never answered with silence.
const fallbackText = "I'm sorry, I can't generate a response right now. Please try again in a few minutes. " +
	"If this is an emergency or you're thinking about harming yourself, please contact your local emergency " +
	"number (911/112) or a crisis helpline such as 988 right away."

// Prepended (never substituted) ahead of the model's text when the original user message carries
// emergency language.
const emergencyBlock = "⚠️ If you are in immediate danger, call your local emergency number now (911 in the US, 112 in the EU).\n" +
	"Suicide & Crisis Lifeline: call or text 988 (US) | Samaritans: 116 123 (UK/IE).\n" +
	"You don't have to go through this alone — please reach out to one of the above."

type ChainConfig struct {
	// AttemptTimeout bounds each provider attempt independently.
	AttemptTimeout time.Duration
	// ChainTimeout optionally bounds the whole chain. Zero disables it; attempts are still bounded
	// by the sum of per-attempt timeouts.
	ChainTimeout       time.Duration
	MaxTokens          int
	Temperature        float64
	SystemPrompt       string
	DisclaimerLanguage string
}

// Chain - The ordered provider fallback chain plus the safety postprocessing applied to whatever
// text comes out of it.
type Chain struct {
	providers []Provider
	cnf       *ChainConfig
}

func NewChain(providers []Provider, cnf *ChainConfig) (*Chain, error) {
	if len(providers) == 0 {
		return nil, errors.New("at least one provider is required")
	}
	if cnf.AttemptTimeout <= 0 {
		return nil, errors.New("attempt timeout is required")
	}
	return &Chain{
		providers: providers,
		cnf:       cnf,
	}, nil
}

func ChainConfigFromInstance(cnf *config.InstanceConfig) *ChainConfig {
	return &ChainConfig{
		AttemptTimeout:     time.Duration(cnf.GenerationProviderTimeoutSeconds) * time.Second,
		ChainTimeout:       time.Duration(cnf.GenerationChainTimeoutSeconds) * time.Second,
		MaxTokens:          cnf.GenerationMaxTokens,
		Temperature:        cnf.GenerationTemperature,
		SystemPrompt:       cnf.GenerationSystemPrompt,
		DisclaimerLanguage: cnf.GenerationDefaultDisclaimerLanguage,
	}
}

// Generate - Tries each provider in order and returns the first success, falling back to a locally
// synthesized response when the chain is exhausted. The chosen text is then postprocessed against
// the original user message: emergency escalation is prepended for crisis queries, the health
// disclaimer is appended for health topics, and the advisory validation heuristics run last.
// Never returns an error to the caller.
func (c *Chain) Generate(ctx context.Context, prompt string, originalUserText string) *Response {
	if c.cnf.ChainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cnf.ChainTimeout)
		defer cancel()
	}

	text := ""
	servedBy := FallbackProviderName
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			// Upstream cancelled or the chain deadline passed: don't start more attempts.
			log.Printf("[generate | %s] Not attempting provider, chain context done: %s", p.Name(), err)
			break
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.cnf.AttemptTimeout)
		t := metrics.StartProviderTimer(p.Name())
		out, err := p.Invoke(attemptCtx, prompt, c.cnf.SystemPrompt, c.cnf.MaxTokens, c.cnf.Temperature)
		t.ObserveDuration()
		cancel()

		if err != nil {
			status := metrics.ProviderStatusError
			if errors.Is(err, context.DeadlineExceeded) {
				status = metrics.ProviderStatusTimeout
			}
			metrics.RecordProviderAttempt(p.Name(), status)
			log.Printf("[generate | %s] Provider failed, advancing: %s", p.Name(), err)
			continue
		}

		metrics.RecordProviderAttempt(p.Name(), metrics.ProviderStatusOk)
		text = out
		servedBy = p.Name()
		break
	}

	if servedBy == FallbackProviderName {
		metrics.RecordFallbackResponse()
		text = fallbackText
	}

	res := &Response{
		Text:     text,
		Provider: servedBy,
	}
	c.postprocess(res, originalUserText)

	res.Issues = safety.ValidateResponse(res.Text, originalUserText)
	for _, issue := range res.Issues {
		metrics.RecordValidationIssue(issue)
		log.Printf("[generate | %s] Advisory validation issue: %s", servedBy, issue)
	}

	return res
}

func (c *Chain) postprocess(res *Response, originalUserText string) {
	if safety.CheckEmergency(originalUserText).IsEmergency {
		res.Text = emergencyBlock + "\n\n" + res.Text
		res.IsEmergency = true
		return
	}
	if safety.IsHealthRelated(originalUserText) {
		disclaimer := safety.SelectDisclaimer(originalUserText, c.cnf.DisclaimerLanguage)
		res.Text = res.Text + "\n\n" + disclaimer.Text
		res.HasDisclaimer = true
	}
}
