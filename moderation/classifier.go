package moderation

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/careloop/guardrail/config"
	"github.com/careloop/guardrail/metrics"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/gjson"
)

// Classifier - The remote text-classification collaborator. Implementations must fail soft: the
// returned verdict is always usable, and a returned error only signals a defect the orchestrator
// should fall through on.
type Classifier interface {
	CheckText(ctx context.Context, text string) (*Verdict, error)
}

type RemoteClassifier struct {
	// Implements Classifier

	client    openai.Client
	modelName string
	timeout   time.Duration
}

func NewRemoteClassifier(cnf *config.InstanceConfig, additionalClientOptions ...option.RequestOption) (Classifier, error) {
	options := []option.RequestOption{option.WithBaseURL(cnf.ClassifierApiUrl)}
	if len(cnf.ClassifierApiKey) > 0 {
		options = append(options, option.WithAPIKey(cnf.ClassifierApiKey))
	}
	options = append(options, additionalClientOptions...)
	client := openai.NewClient(options...)
	return &RemoteClassifier{
		client:    client,
		modelName: cnf.ClassifierModelName,
		timeout:   time.Duration(cnf.ClassifierTimeoutSeconds) * time.Second,
	}, nil
}

// unreachableVerdict - The endpoint could not be called at all. Silent infrastructure failure must
// not equal silent full trust, so this defaults to a cautious FLAG rather than ALLOW.
func unreachableVerdict() *Verdict {
	return &Verdict{
		Action:   ActionFlag,
		Severity: 5,
		Reasons:  []string{"classifier unavailable"},
		Method:   MethodMLModel,
	}
}

// unparseableVerdict - The endpoint responded, but not with anything legible. Trust is low but not
// punitive, so this defaults open.
func unparseableVerdict() *Verdict {
	return &Verdict{
		Action:   ActionAllow,
		Severity: 0,
		Reasons:  []string{},
		Method:   MethodMLModel,
	}
}

func (c *RemoteClassifier) CheckText(ctx context.Context, text string) (*Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	t := metrics.StartClassifierTimer()
	res, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Role: "system",
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(strings.TrimSpace(classifierInstructions)),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Role: "user",
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(text),
					},
				},
			},
		},
	})
	t.ObserveDuration()
	if err != nil {
		// Note: we don't want to log message contents in production
		log.Printf("[classifier] Error calling classification endpoint: %s", err)
		metrics.RecordClassifierOutcome(metrics.ClassifierOutcomeUnreachable)
		return unreachableVerdict(), nil
	}

	for _, r := range res.Choices {
		verdict, ok := c.parseVerdict(r.Message.Content)
		if !ok {
			continue
		}
		metrics.RecordClassifierOutcome(metrics.ClassifierOutcomeParsed)
		return verdict, nil
	}

	log.Printf("[classifier] No parseable verdict in classifier response (%d choices)", len(res.Choices))
	metrics.RecordClassifierOutcome(metrics.ClassifierOutcomeUnparseable)
	return unparseableVerdict(), nil
}

// parseVerdict extracts the contract JSON (`{action, reasons, severity}`) from a completion that
// may wrap it in surrounding prose.
func (c *RemoteClassifier) parseVerdict(content string) (*Verdict, bool) {
	span, ok := extractJsonSpan(content)
	if !ok || !gjson.Valid(span) {
		return nil, false
	}

	parsed := gjson.Parse(span)
	action := Action(strings.ToUpper(parsed.Get("action").String()))
	if action != ActionAllow && action != ActionFlag && action != ActionDeny {
		return nil, false
	}

	severity := int(parsed.Get("severity").Int())
	if severity < 0 {
		severity = 0
	}
	if severity > 10 {
		severity = 10
	}

	reasons := make([]string, 0)
	for _, r := range parsed.Get("reasons").Array() {
		if s := strings.TrimSpace(r.String()); len(s) > 0 {
			reasons = append(reasons, s)
		}
	}

	return &Verdict{
		Action:   action,
		Severity: severity,
		Reasons:  reasons,
		Method:   MethodMLModel,
	}, true
}
