package corpus

import (
	"context"

	"github.com/pbaille/moodjournal/internal/domain"
	"github.com/pbaille/moodjournal/internal/logger"
	"github.com/pbaille/moodjournal/internal/store"
)

// CachedSource serves a corpus from the sqlite store, falling back to the
// upstream source on a miss and saving what it fetched.
type CachedSource struct {
	Upstream Source
	Store    *store.Store
	Name     string
	Split    string
	Log      logger.ILogger
	// Refresh skips the cache lookup and always fetches upstream
	Refresh bool
}

func (c *CachedSource) Load(ctx context.Context) (domain.Corpus, error) {
	if !c.Refresh {
		cached, found, err := c.Store.LoadCorpus(c.Name, c.Split)
		switch {
		case err != nil:
			c.Log.Warn("corpus", "cache read failed, fetching upstream", map[string]interface{}{"error": err.Error()})
		case found && validate(cached) == nil:
			c.Log.Debug("corpus", "cache hit", map[string]interface{}{"dataset": c.Name, "split": c.Split})
			return cached, nil
		}
	}

	fetched, err := c.Upstream.Load(ctx)
	if err != nil {
		return domain.Corpus{}, err
	}
	// cache under the configured key even if upstream names it differently
	fetched.Name, fetched.Split = c.Name, c.Split

	if _, err := c.Store.SaveCorpus(fetched); err != nil {
		c.Log.Warn("corpus", "cache write failed", map[string]interface{}{"error": err.Error()})
	} else {
		c.Log.Info("corpus", "corpus cached", map[string]interface{}{
			"dataset": c.Name,
			"split":   c.Split,
			"samples": len(fetched.Samples),
		})
	}
	return fetched, nil
}
