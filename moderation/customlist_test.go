package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomListSubstring(t *testing.T) {
	list := NewCustomList("test_list", []string{"Banned Phrase", "  another one  ", ""})
	assert.Equal(t, "test_list", list.Name())

	assert.Equal(t, []string{"banned phrase"}, list.Match("this has a BANNED phrase inside"))
	assert.Equal(t, []string{"another one"}, list.Match("and another one here"))
	assert.Empty(t, list.Match("a clean message"))
}

func TestCustomListGlob(t *testing.T) {
	list := NewCustomList("globs", []string{"free*pills"})

	assert.Equal(t, []string{"free*pills"}, list.Match("get your FREE miracle PILLS today"))
	assert.Empty(t, list.Match("pills that are free")) // wrong order for the pattern
}

func TestCustomListReason(t *testing.T) {
	list := NewCustomList("regional_terms", nil)
	assert.Equal(t, `matched custom keyword list "regional_terms"`, list.Reason())
}
