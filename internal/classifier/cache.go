package classifier

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached memoises replies per (prompt, utterance). Errors are not cached.
type Cached struct {
	next  Classifier
	cache *lru.Cache[cacheKey, string]
}

type cacheKey struct {
	prompt    string
	utterance string
}

// NewCached wraps next with an LRU of the given size.
func NewCached(next Classifier, size int) (*Cached, error) {
	cache, err := lru.New[cacheKey, string](size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Classify(ctx context.Context, promptContext, utterance string) (string, error) {
	key := cacheKey{prompt: promptContext, utterance: utterance}
	if reply, ok := c.cache.Get(key); ok {
		return reply, nil
	}
	reply, err := c.next.Classify(ctx, promptContext, utterance)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, reply)
	return reply, nil
}

// Len reports how many replies are cached.
func (c *Cached) Len() int {
	return c.cache.Len()
}
