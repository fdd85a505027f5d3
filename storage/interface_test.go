package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoredFlagValidate(t *testing.T) {
	flag := &StoredFlag{ContentId: "content1"}
	assert.NoError(t, flag.Validate())

	flag = &StoredFlag{ConversationId: "conv1"}
	assert.NoError(t, flag.Validate())

	flag = &StoredFlag{}
	assert.ErrorIs(t, flag.Validate(), ErrFlagTargetInvalid)

	flag = &StoredFlag{ContentId: "content1", ConversationId: "conv1"}
	assert.ErrorIs(t, flag.Validate(), ErrFlagTargetInvalid)
}

func TestTruncateSnippet(t *testing.T) {
	assert.Equal(t, "short", TruncateSnippet("short"))

	exact := strings.Repeat("a", SnippetMaxLength)
	assert.Equal(t, exact, TruncateSnippet(exact))

	long := strings.Repeat("a", SnippetMaxLength+100)
	assert.Equal(t, exact, TruncateSnippet(long))
}

func TestTruncateSnippetUtf8Boundary(t *testing.T) {
	// Fill so that a multi-byte rune straddles the cut point
	text := strings.Repeat("a", SnippetMaxLength-1) + "日本語"
	truncated := TruncateSnippet(text)
	assert.LessOrEqual(t, len(truncated), SnippetMaxLength)
	for _, r := range truncated {
		assert.NotEqual(t, '�', r) // no mangled runes
	}
}
