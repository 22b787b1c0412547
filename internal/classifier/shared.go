package classifier

import (
	"context"
	"sync"
	"time"

	"github.com/pbaille/moodjournal/internal/domain"
	"github.com/pbaille/moodjournal/internal/logger"
)

// CorpusLoader fetches the labeled training corpus
type CorpusLoader interface {
	Load(ctx context.Context) (domain.Corpus, error)
}

// Shared builds the Model at most once per process and hands the same
// instance to every caller. Concurrent first callers wait for the single
// training run.
type Shared struct {
	get func() (*Model, error)
}

// NewShared wires a loader and training options into a lazily trained Model
func NewShared(loader CorpusLoader, opts Options, log logger.ILogger) *Shared {
	return &Shared{
		get: sync.OnceValues(func() (*Model, error) {
			start := time.Now()
			corpus, err := loader.Load(context.Background())
			if err != nil {
				log.Error("classifier", "corpus load failed", map[string]interface{}{"error": err})
				return nil, err
			}
			log.Info("classifier", "corpus loaded", map[string]interface{}{
				"dataset": corpus.Name,
				"split":   corpus.Split,
				"samples": len(corpus.Samples),
			})

			m := Train(corpus, opts)
			log.Info("classifier", "model trained", map[string]interface{}{
				"vocabulary": m.Vocabulary(),
				"iterations": m.Iterations(),
				"held_out":   len(m.HeldOut()),
				"elapsed_ms": time.Since(start).Milliseconds(),
			})
			return m, nil
		}),
	}
}

// Model returns the trained classifier, training it on first use.
// A load failure is memoized as well; it wraps domain.ErrDataUnavailable.
func (s *Shared) Model() (*Model, error) {
	return s.get()
}
