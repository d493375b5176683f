package services

import (
	"github.com/felixgeelhaar/huddle/internal/availability/domain"
)

// IntentClassifier decides whether a conversation is about meeting up.
type IntentClassifier struct {
	matcher *KeywordMatcher
}

// NewIntentClassifier builds a classifier over the vocabulary's intent keywords.
func NewIntentClassifier(vocab domain.Vocabulary) (*IntentClassifier, error) {
	matcher, err := NewKeywordMatcher(vocab.IntentKeywords())
	if err != nil {
		return nil, err
	}
	return &IntentClassifier{matcher: matcher}, nil
}

// HasIntent reports whether any message mentions an intent keyword.
func (c *IntentClassifier) HasIntent(messages []domain.Message) bool {
	for _, msg := range messages {
		if c.matcher.Contains(msg.Text) {
			return true
		}
	}
	return false
}
