package test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Dev note: Usually we'd write a dedicated test for utilities like this, however the entire functionality is covered by
// other tests using it, so it should be fine.

// KeywordClassifierDeny - Used by tests to make the fake classifier answer DENY (severity 9).
const KeywordClassifierDeny = "GR_CLASSIFIER_DENY"

// KeywordClassifierFlag - Used by tests to make the fake classifier answer FLAG (severity 6).
const KeywordClassifierFlag = "GR_CLASSIFIER_FLAG"

// KeywordClassifierNeutral - Used by tests to make the fake classifier answer ALLOW.
const KeywordClassifierNeutral = "GR_CLASSIFIER_NEUTRAL"

// KeywordClassifierProse - Used by tests to make the fake classifier wrap its DENY verdict JSON in
// surrounding prose, exercising the balanced-brace extraction.
const KeywordClassifierProse = "GR_CLASSIFIER_PROSE"

// KeywordClassifierGarbled - Used by tests to make the fake classifier respond with no extractable
// JSON at all.
const KeywordClassifierGarbled = "GR_CLASSIFIER_GARBLED"

// KeywordClassifierFail - Used by tests to always cause a 500 Internal Server Error response.
const KeywordClassifierFail = "GR_CLASSIFIER_FAIL"

// MakeClassifierServer - Creates a mock OpenAI-compatible chat completions server acting as the
// remote classification endpoint.
func MakeClassifierServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), "unexpected path: %s", r.URL.Path)

		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(err) // "should never happen"
		}
		req := string(b)

		if strings.Contains(req, KeywordClassifierFail) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":"X-ERROR","message":"Intentional fail","param":"x","type":"x"}}`))
			return
		}

		content := ""
		if strings.Contains(req, KeywordClassifierDeny) {
			content = `{"action": "DENY", "reasons": ["graphic violence"], "severity": 9}`
		} else if strings.Contains(req, KeywordClassifierFlag) {
			content = `{"action": "FLAG", "reasons": ["borderline content"], "severity": 6}`
		} else if strings.Contains(req, KeywordClassifierNeutral) {
			content = `{"action": "ALLOW", "reasons": [], "severity": 0}`
		} else if strings.Contains(req, KeywordClassifierProse) {
			content = `Sure! Here's my assessment: {"action": "DENY", "reasons": ["prose-wrapped verdict"], "severity": 8} Let me know if you need more.`
		} else if strings.Contains(req, KeywordClassifierGarbled) {
			content = `I am not able to classify this message.`
		} else {
			t.Fatalf("Unexpected request: %s", req)
		}

		writeChatCompletion(t, w, content)
	}))
}

func writeChatCompletion(t *testing.T, w http.ResponseWriter, content string) {
	res := map[string]any{
		"id":      "1",
		"object":  "chat.completion",
		"created": 0,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message": map[string]any{
				"role":    "assistant",
				"content": content,
			},
		}},
	}
	b, err := json.Marshal(res)
	assert.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// MakeCompletionServer - Creates a mock chat completions server for generation provider tests. It
// echoes the supplied content for every request, or fails with a 500 when the request contains
// KeywordClassifierFail.
func MakeCompletionServer(t *testing.T, content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), "unexpected path: %s", r.URL.Path)

		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(err) // "should never happen"
		}
		if strings.Contains(string(b), KeywordClassifierFail) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":"X-ERROR","message":"Intentional fail","param":"x","type":"x"}}`))
			return
		}

		writeChatCompletion(t, w, content)
	}))
}
