package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pbaille/moodjournal/internal/domain"
)

//go:embed suggestions.yaml
var defaultBank []byte

// Bank is the static label set and suggestion table
type Bank struct {
	Labels      []string            `yaml:"labels"`
	Suggestions map[string][]string `yaml:"suggestions"`
}

// LoadBank parses the suggestion bank at path, or the built-in one when path is empty
func LoadBank(path string) (*Bank, error) {
	data := defaultBank
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read suggestion bank: %w", err)
		}
	}

	var b Bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse suggestion bank: %w", err)
	}
	if err := b.checkLabels(); err != nil {
		return nil, err
	}
	return &b, nil
}

// checkLabels makes sure the configured labels match the corpus index mapping
func (b *Bank) checkLabels() error {
	if len(b.Labels) != len(domain.Emotions) {
		return fmt.Errorf("suggestion bank lists %d labels, want %d", len(b.Labels), len(domain.Emotions))
	}
	for i, l := range b.Labels {
		if domain.Emotion(l) != domain.Emotions[i] {
			return fmt.Errorf("suggestion bank label %d is %q, want %q", i, l, domain.Emotions[i])
		}
	}
	return nil
}

// Table converts the bank into per-emotion suggestion lists
func (b *Bank) Table() map[domain.Emotion][]string {
	out := make(map[domain.Emotion][]string, len(b.Suggestions))
	for label, msgs := range b.Suggestions {
		out[domain.Emotion(label)] = msgs
	}
	return out
}
