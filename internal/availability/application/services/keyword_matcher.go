package services

import (
	"errors"
	"sort"
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// ErrNoKeywords is returned when a matcher is built from an empty list.
var ErrNoKeywords = errors.New("keyword matcher needs at least one keyword")

// KeywordMatcher finds which of a fixed set of keywords occur as substrings
// of a text, case-insensitively, in a single pass over the text.
// It is read-only after construction and safe for concurrent use.
type KeywordMatcher struct {
	machine  *goahocorasick.Machine
	keywords []string
}

// NewKeywordMatcher builds an Aho-Corasick automaton over keywords.
// Keywords are lower-cased and de-duplicated; blank ones are dropped.
func NewKeywordMatcher(keywords []string) (*KeywordMatcher, error) {
	normalized := lo.Uniq(lo.FilterMap(keywords, func(k string, _ int) (string, bool) {
		k = strings.ToLower(strings.TrimSpace(k))
		return k, k != ""
	}))
	if len(normalized) == 0 {
		return nil, ErrNoKeywords
	}
	sort.Strings(normalized)

	patterns := lo.Map(normalized, func(k string, _ int) []rune {
		return []rune(k)
	})

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &KeywordMatcher{machine: m, keywords: normalized}, nil
}

// Keywords returns the normalized keyword list in sorted order.
func (m *KeywordMatcher) Keywords() []string {
	return append([]string(nil), m.keywords...)
}

// Contains reports whether any keyword occurs in text.
func (m *KeywordMatcher) Contains(text string) bool {
	if text == "" {
		return false
	}
	return len(m.machine.MultiPatternSearch([]rune(strings.ToLower(text)), true)) > 0
}

// Matches returns the distinct keywords that occur in text.
func (m *KeywordMatcher) Matches(text string) map[string]struct{} {
	found := make(map[string]struct{})
	if text == "" {
		return found
	}
	for _, term := range m.machine.MultiPatternSearch([]rune(strings.ToLower(text)), false) {
		found[string(term.Word)] = struct{}{}
	}
	return found
}
