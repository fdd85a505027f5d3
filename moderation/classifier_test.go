package moderation

import (
	"context"
	"testing"

	"github.com/careloop/guardrail/config"
	"github.com/careloop/guardrail/test"
	"github.com/stretchr/testify/assert"
)

func makeTestClassifier(t *testing.T, baseUrl string) Classifier {
	classifier, err := NewRemoteClassifier(&config.InstanceConfig{
		ClassifierApiUrl:         baseUrl,
		ClassifierApiKey:         "test_key",
		ClassifierModelName:      "test-model",
		ClassifierTimeoutSeconds: 5,
	})
	assert.NoError(t, err)
	assert.NotNil(t, classifier)
	return classifier
}

func TestRemoteClassifier(t *testing.T) {
	server := test.MakeClassifierServer(t)
	defer server.Close()
	classifier := makeTestClassifier(t, server.URL)

	verdict, err := classifier.CheckText(context.Background(), test.KeywordClassifierDeny)
	assert.NoError(t, err)
	assert.Equal(t, &Verdict{
		Action:   ActionDeny,
		Severity: 9,
		Reasons:  []string{"graphic violence"},
		Method:   MethodMLModel,
	}, verdict)

	verdict, err = classifier.CheckText(context.Background(), test.KeywordClassifierFlag)
	assert.NoError(t, err)
	assert.Equal(t, &Verdict{
		Action:   ActionFlag,
		Severity: 6,
		Reasons:  []string{"borderline content"},
		Method:   MethodMLModel,
	}, verdict)

	verdict, err = classifier.CheckText(context.Background(), test.KeywordClassifierNeutral)
	assert.NoError(t, err)
	assert.Equal(t, &Verdict{
		Action:   ActionAllow,
		Severity: 0,
		Reasons:  []string{},
		Method:   MethodMLModel,
	}, verdict)
}

func TestRemoteClassifierProseWrappedJson(t *testing.T) {
	server := test.MakeClassifierServer(t)
	defer server.Close()
	classifier := makeTestClassifier(t, server.URL)

	verdict, err := classifier.CheckText(context.Background(), test.KeywordClassifierProse)
	assert.NoError(t, err)
	assert.Equal(t, &Verdict{
		Action:   ActionDeny,
		Severity: 8,
		Reasons:  []string{"prose-wrapped verdict"},
		Method:   MethodMLModel,
	}, verdict)
}

func TestRemoteClassifierUnparseableResponse(t *testing.T) {
	server := test.MakeClassifierServer(t)
	defer server.Close()
	classifier := makeTestClassifier(t, server.URL)

	// An illegible response defaults open: ALLOW with zero severity, and no error
	verdict, err := classifier.CheckText(context.Background(), test.KeywordClassifierGarbled)
	assert.NoError(t, err)
	assert.Equal(t, &Verdict{
		Action:   ActionAllow,
		Severity: 0,
		Reasons:  []string{},
		Method:   MethodMLModel,
	}, verdict)
}

func TestRemoteClassifierUnreachableEndpoint(t *testing.T) {
	server := test.MakeClassifierServer(t)
	defer server.Close()
	classifier := makeTestClassifier(t, server.URL)

	// An endpoint failure defaults to a cautious FLAG, and no error
	verdict, err := classifier.CheckText(context.Background(), test.KeywordClassifierFail)
	assert.NoError(t, err)
	assert.Equal(t, &Verdict{
		Action:   ActionFlag,
		Severity: 5,
		Reasons:  []string{"classifier unavailable"},
		Method:   MethodMLModel,
	}, verdict)
}

func TestParseVerdictClamping(t *testing.T) {
	c := &RemoteClassifier{}

	verdict, ok := c.parseVerdict(`{"action": "deny", "severity": 25, "reasons": ["too much", ""]}`)
	assert.True(t, ok)
	assert.Equal(t, ActionDeny, verdict.Action) // action is case-folded
	assert.Equal(t, 10, verdict.Severity)
	assert.Equal(t, []string{"too much"}, verdict.Reasons) // blank reasons are dropped

	verdict, ok = c.parseVerdict(`{"action": "ALLOW", "severity": -3, "reasons": []}`)
	assert.True(t, ok)
	assert.Equal(t, 0, verdict.Severity)

	_, ok = c.parseVerdict(`{"action": "ESCALATE", "severity": 5, "reasons": []}`)
	assert.False(t, ok) // unknown actions are rejected, triggering the unparseable default
}
