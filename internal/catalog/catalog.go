// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog resolves the list of deployable models, caching the
// remote catalog with a TTL and falling back to a built-in list so the
// engine stays usable offline.
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/jeranaias/redraft/internal/model"
)

// DefaultTTL bounds how long a fetched catalog is served without a refresh.
const DefaultTTL = 30 * time.Minute

// cacheKey is the single slot the fetched catalog lives under.
const cacheKey = "models"

// Lister fetches the remote model catalog. *provider.Client satisfies it.
type Lister interface {
	ListModels(ctx context.Context) ([]model.ModelConfig, error)
}

// Builtin is the fallback model list used when the remote catalog has
// never been fetched successfully.
func Builtin() []model.ModelConfig {
	return []model.ModelConfig{
		{ID: "gpt-4o-mini", DisplayName: "GPT-4o mini", Default: true},
		{ID: "gpt-4o", DisplayName: "GPT-4o", Premium: true},
		{ID: "claude-3-5-haiku", DisplayName: "Claude 3.5 Haiku"},
		{ID: "claude-3-5-sonnet", DisplayName: "Claude 3.5 Sonnet", Premium: true},
	}
}

// Catalog serves the model list with TTL caching and offline fallback.
type Catalog struct {
	client Lister
	cache  *expirable.LRU[string, []model.ModelConfig]
	log    *logrus.Entry

	mu       sync.Mutex
	lastGood []model.ModelConfig
}

// New creates a Catalog over the given client. A non-positive ttl uses
// DefaultTTL.
func New(client Lister, ttl time.Duration, log *logrus.Entry) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Catalog{
		client: client,
		cache:  expirable.NewLRU[string, []model.ModelConfig](1, nil, ttl),
		log:    log,
	}
}

// Models returns the current model list.
//
// A fresh cached catalog is served without network I/O. On a cache miss
// the remote catalog is fetched; when the fetch fails the last
// successfully fetched list (even if stale) or the built-in fallback is
// returned instead of an error, with the failure logged.
func (c *Catalog) Models(ctx context.Context) ([]model.ModelConfig, error) {
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached, nil
	}

	fetched, err := c.client.ListModels(ctx)
	if err != nil {
		c.log.WithError(err).Warn("catalog fetch failed, serving fallback")
		return c.fallback(), nil
	}
	if len(fetched) == 0 {
		c.log.Warn("catalog fetch returned no models, serving fallback")
		return c.fallback(), nil
	}

	c.cache.Add(cacheKey, fetched)
	c.mu.Lock()
	c.lastGood = fetched
	c.mu.Unlock()
	return fetched, nil
}

// Default returns the preselected model from the given list, falling back
// to the first entry.
func Default(models []model.ModelConfig) (model.ModelConfig, bool) {
	if len(models) == 0 {
		return model.ModelConfig{}, false
	}
	for _, m := range models {
		if m.Default {
			return m, true
		}
	}
	return models[0], true
}

// Invalidate drops the cached catalog so the next Models call refetches.
func (c *Catalog) Invalidate() {
	c.cache.Remove(cacheKey)
}

func (c *Catalog) fallback() []model.ModelConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lastGood) > 0 {
		return c.lastGood
	}
	return Builtin()
}
