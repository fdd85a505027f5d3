package moderation

import (
	"fmt"
	"strings"

	"github.com/ryanuber/go-glob"
)

// CustomList - An operator-managed keyword list loaded from storage. Plain entries are matched by
// case-insensitive substring containment like the static lexicon; entries containing `*` are
// treated as glob patterns over the whole text.
type CustomList struct {
	name    string
	entries []string
}

func NewCustomList(name string, entries []string) *CustomList {
	lowered := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.ToLower(strings.TrimSpace(e))
		if len(e) == 0 {
			continue
		}
		lowered = append(lowered, e)
	}
	return &CustomList{
		name:    name,
		entries: lowered,
	}
}

func (l *CustomList) Name() string {
	return l.name
}

// Match - Returns the entries that matched. Pure function.
func (l *CustomList) Match(text string) []string {
	folded := strings.ToLower(text)
	matched := make([]string, 0)
	for _, e := range l.entries {
		if strings.Contains(e, "*") {
			// Containment semantics: the pattern may appear anywhere in the text.
			if glob.Glob("*"+e+"*", folded) {
				matched = append(matched, e)
			}
		} else if strings.Contains(folded, e) {
			matched = append(matched, e)
		}
	}
	return matched
}

func (l *CustomList) Reason() string {
	return fmt.Sprintf("matched custom keyword list %q", l.name)
}
