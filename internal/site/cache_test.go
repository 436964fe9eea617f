package site

import (
	"context"
	"html/template"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prettyirrelevant/eniola.wtf/internal/content"
)

type cacheResult struct {
	html template.HTML
	hit  bool
	err  error
}

func TestPostCache_CanceledCallerDoesNotFailSharedRender(t *testing.T) {
	cache := newPostCache()
	post := content.Post{Slug: "hello", Fingerprint: "abc"}

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	render := func(ctx context.Context, _ content.Post) (template.HTML, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "<p>hello</p>", nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	first := make(chan cacheResult, 1)
	go func() {
		html, hit, err := cache.get(firstCtx, post, render)
		first <- cacheResult{html, hit, err}
	}()
	<-started

	second := make(chan cacheResult, 1)
	go func() {
		html, hit, err := cache.get(context.Background(), post, render)
		second <- cacheResult{html, hit, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case res := <-first:
		require.ErrorIs(t, res.err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("canceled caller kept waiting for the render")
	}

	close(release)
	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Equal(t, template.HTML("<p>hello</p>"), res.html)
		assert.False(t, res.hit)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never got the render")
	}
	assert.Equal(t, int32(1), calls.Load())

	html, hit, err := cache.get(context.Background(), post, render)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, template.HTML("<p>hello</p>"), html)
}

func TestPostCache_CanceledBeforeRender(t *testing.T) {
	cache := newPostCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	_, _, err := cache.get(ctx, content.Post{Slug: "hello", Fingerprint: "abc"}, func(context.Context, content.Post) (template.HTML, error) {
		calls.Add(1)
		return "", nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}
