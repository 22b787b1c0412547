package journal

import (
	"fmt"
	"math/rand/v2"

	"github.com/pbaille/moodjournal/internal/domain"
)

// SuggestionBank holds the well-being messages offered for each emotion
type SuggestionBank struct {
	table map[domain.Emotion][]string
}

// NewSuggestionBank checks that every label has at least one message.
// A missing or empty list fails with domain.ErrNoSuggestion.
func NewSuggestionBank(table map[domain.Emotion][]string) (*SuggestionBank, error) {
	b := &SuggestionBank{table: make(map[domain.Emotion][]string, len(domain.Emotions))}
	for _, e := range domain.Emotions {
		msgs := table[e]
		if len(msgs) == 0 {
			return nil, fmt.Errorf("%w: label %q has no messages", domain.ErrNoSuggestion, e)
		}
		b.table[e] = append([]string(nil), msgs...)
	}
	return b, nil
}

// Pick returns a uniformly chosen message for emotion
func (b *SuggestionBank) Pick(emotion domain.Emotion, rng *rand.Rand) (string, error) {
	msgs := b.table[emotion]
	if len(msgs) == 0 {
		return "", fmt.Errorf("%w: %q", domain.ErrNoSuggestion, emotion)
	}
	return msgs[rng.IntN(len(msgs))], nil
}

// Messages returns the messages configured for emotion
func (b *SuggestionBank) Messages(emotion domain.Emotion) []string {
	return append([]string(nil), b.table[emotion]...)
}
