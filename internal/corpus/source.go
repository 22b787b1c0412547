package corpus

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pbaille/moodjournal/internal/domain"
)

// Source yields the labeled training corpus
type Source interface {
	Load(ctx context.Context) (domain.Corpus, error)
}

// unavailable wraps err so callers can match it with domain.ErrDataUnavailable
func unavailable(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrDataUnavailable, fmt.Sprintf(format, args...))
}

func validate(c domain.Corpus) error {
	if len(c.Samples) == 0 {
		return unavailable("%s/%s has no samples", c.Name, c.Split)
	}
	for i, s := range c.Samples {
		if _, ok := domain.EmotionFromIndex(s.Label); !ok {
			return unavailable("sample %d: label %d outside 0..%d", i, s.Label, len(domain.Emotions)-1)
		}
	}
	return nil
}

// FileSource reads a JSON Lines file of {"text": ..., "label": ...} objects
type FileSource struct {
	Path string
}

func (f FileSource) Load(ctx context.Context) (domain.Corpus, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return domain.Corpus{}, unavailable("open %s: %v", f.Path, err)
	}
	defer file.Close()

	c := domain.Corpus{Name: f.Path, Split: "file"}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var s domain.Sample
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			return domain.Corpus{}, unavailable("%s:%d: %v", f.Path, line, err)
		}
		c.Samples = append(c.Samples, s)
	}
	if err := scanner.Err(); err != nil {
		return domain.Corpus{}, unavailable("read %s: %v", f.Path, err)
	}

	if err := validate(c); err != nil {
		return domain.Corpus{}, err
	}
	return c, nil
}
