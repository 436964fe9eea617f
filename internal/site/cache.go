package site

import (
	"context"
	"html/template"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/prettyirrelevant/eniola.wtf/internal/content"
)

// postCache holds rendered post bodies keyed by slug. An entry is valid only
// for the fingerprint it was rendered from.
type postCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

type cacheEntry struct {
	fingerprint string
	html        template.HTML
}

func newPostCache() *postCache {
	return &postCache{entries: map[string]cacheEntry{}}
}

type renderFunc func(ctx context.Context, post content.Post) (template.HTML, error)

// get returns the cached body for post or renders it. Concurrent misses for
// the same post share one render. The shared render does not observe any
// caller's cancellation; a caller whose ctx ends stops waiting for it.
// Failed renders are not cached.
func (c *postCache) get(ctx context.Context, post content.Post, render renderFunc) (template.HTML, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[post.Slug]
	c.mu.RUnlock()
	if ok && entry.fingerprint == post.Fingerprint {
		return entry.html, true, nil
	}

	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	key := post.Slug + "@" + post.Fingerprint
	flight := c.group.DoChan(key, func() (any, error) {
		html, err := render(context.WithoutCancel(ctx), post)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[post.Slug] = cacheEntry{fingerprint: post.Fingerprint, html: html}
		c.mu.Unlock()
		return html, nil
	})

	select {
	case res := <-flight:
		if res.Err != nil {
			return "", false, res.Err
		}
		return res.Val.(template.HTML), false, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

// prune drops entries for slugs not in keep.
func (c *postCache) prune(keep map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for slug := range c.entries {
		if !keep[slug] {
			delete(c.entries, slug)
		}
	}
}

func (c *postCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
