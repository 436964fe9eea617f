package site

import (
	"bytes"
	"context"
	stderrors "errors"
	"html/template"
	"io/fs"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prettyirrelevant/eniola.wtf/internal/config"
	"github.com/prettyirrelevant/eniola.wtf/internal/content"
	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
	"github.com/prettyirrelevant/eniola.wtf/internal/highlight"
	"github.com/prettyirrelevant/eniola.wtf/internal/mdx"
)

type stubHighlighter struct{ err error }

func (h stubHighlighter) Highlight(_ context.Context, code, language string, _ highlight.Themes) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return `<pre data-language="` + language + `">` + template.HTMLEscapeString(code) + `</pre>`, nil
}

type countingRenderer struct {
	calls atomic.Int32
	err   error
}

func (r *countingRenderer) Render(_ context.Context, source []byte, _ mdx.Components) (template.HTML, error) {
	r.calls.Add(1)
	if r.err != nil {
		return "", r.err
	}
	return template.HTML("<p>" + template.HTMLEscapeString(string(source)) + "</p>"), nil
}

var testPosts = fstest.MapFS{
	"posts/hello-world.mdx": {Data: []byte("---\ntitle: Hello World\npublishedAt: 2024-05-01\nsummary: saying hi\n---\n## Intro\n\n```go\nfmt.Println(1)\n```\n")},
	"posts/older.md":        {Data: []byte("---\ntitle: Older Post\npublishedAt: 2023-01-15\n---\nplain [link](https://example.com)\n")},
}

func newStore(t *testing.T, files fstest.MapFS) *content.Store {
	t.Helper()
	store := content.NewStore(files)
	require.NoError(t, store.Load(context.Background()))
	return store
}

func newTestSite(t *testing.T, r BodyRenderer) *Site {
	t.Helper()
	if r == nil {
		r = mdx.New(mdx.WithHighlighter(stubHighlighter{}))
	}
	s, err := New(config.Default(), newStore(t, testPosts), r)
	require.NoError(t, err)
	return s
}

func renderPage(t *testing.T, s *Site, page Page) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, s.Render(context.Background(), &buf, page))
	return buf.String()
}

func TestRender_Home(t *testing.T) {
	out := renderPage(t, newTestSite(t, nil), Page{Kind: PageHome, Path: "/"})

	assert.Contains(t, out, "<title>Isaac Adewumi</title>")
	assert.Contains(t, out, `data-scramble="isaac adewumi"`)
	assert.Contains(t, out, "lagos, nigeria")
	assert.Contains(t, out, "python backend engineer")
	assert.Contains(t, out, "https://github.com/prettyirrelevant/gistrunner")
	assert.Contains(t, out, `href="/projects" data-link="internal"`)
	assert.Contains(t, out, `href="mailto:hey@eniola.wtf"`)
	assert.Contains(t, out, `<link rel="canonical" href="https://eniola.wtf/">`)
	assert.Less(t, strings.Index(out, "Hello World"), strings.Index(out, "Older Post"))
	assert.NotContains(t, out, "/assets/copy.js")
}

func TestRender_Projects(t *testing.T) {
	out := renderPage(t, newTestSite(t, nil), Page{Kind: PageProjects, Path: "/projects"})

	assert.Contains(t, out, "<title>Projects | Isaac Adewumi</title>")
	for _, name := range []string{"neuron", "wrapped-naira", "gistrunner", "bridgebloc", "decodify", "waakye"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "implemented support for spotify, youtube music and deezer")
	assert.Contains(t, out, "platformio")
}

func TestRender_Blog(t *testing.T) {
	out := renderPage(t, newTestSite(t, nil), Page{Kind: PageBlog, Path: "/blog"})

	assert.Contains(t, out, "<title>Blog | Isaac Adewumi</title>")
	assert.Contains(t, out, `href="/blog/hello-world"`)
	assert.Contains(t, out, "May 1, 2024")
	assert.Less(t, strings.Index(out, "/blog/hello-world"), strings.Index(out, "/blog/older"))
}

func TestRender_Post(t *testing.T) {
	out := renderPage(t, newTestSite(t, nil), PostPage("hello-world"))

	assert.Contains(t, out, "<title>Hello World | Isaac Adewumi</title>")
	assert.Contains(t, out, `<meta name="description" content="saying hi">`)
	assert.Contains(t, out, `<meta property="og:type" content="article">`)
	assert.Contains(t, out, `<h2 id="intro"><a href="#intro" class="anchor">Intro</a></h2>`)
	assert.Contains(t, out, `<div class="relative">`)
	assert.Contains(t, out, "/assets/copy.js")
}

func TestRender_PostNotFound(t *testing.T) {
	var buf bytes.Buffer
	err := newTestSite(t, nil).Render(context.Background(), &buf, PostPage("missing"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	assert.Zero(t, buf.Len())
}

func TestRender_HighlightFailureWritesNothing(t *testing.T) {
	sentinel := stderrors.New("no lexer")
	s := newTestSite(t, mdx.New(mdx.WithHighlighter(stubHighlighter{err: sentinel})))

	var buf bytes.Buffer
	err := s.Render(context.Background(), &buf, PostPage("hello-world"))
	require.ErrorIs(t, err, sentinel)
	assert.Zero(t, buf.Len())
}

func TestRender_NotFound(t *testing.T) {
	out := renderPage(t, newTestSite(t, nil), NotFoundPage)
	assert.Contains(t, out, "<title>Not Found | Isaac Adewumi</title>")
	assert.Contains(t, out, "this page does not exist.")
}

func TestPostHTML_Cached(t *testing.T) {
	r := &countingRenderer{}
	s := newTestSite(t, r)

	post, err := s.posts.Get("older")
	require.NoError(t, err)

	first, err := s.PostHTML(context.Background(), post)
	require.NoError(t, err)
	second, err := s.PostHTML(context.Background(), post)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), r.calls.Load())

	post.Fingerprint = "changed"
	_, err = s.PostHTML(context.Background(), post)
	require.NoError(t, err)
	assert.Equal(t, int32(2), r.calls.Load())
}

func TestPostHTML_ErrorsNotCached(t *testing.T) {
	r := &countingRenderer{err: stderrors.New("boom")}
	s := newTestSite(t, r)
	post, err := s.posts.Get("older")
	require.NoError(t, err)

	_, err = s.PostHTML(context.Background(), post)
	require.Error(t, err)
	_, err = s.PostHTML(context.Background(), post)
	require.Error(t, err)
	assert.Equal(t, int32(2), r.calls.Load())
	assert.Zero(t, s.cache.len())
}

func TestInvalidate_DropsRemovedPosts(t *testing.T) {
	files := fstest.MapFS{
		"posts/a.md": {Data: []byte("a")},
		"posts/b.md": {Data: []byte("b")},
	}
	store := newStore(t, files)
	s, err := New(config.Default(), store, &countingRenderer{})
	require.NoError(t, err)

	for _, slug := range []string{"a", "b"} {
		post, err := store.Get(slug)
		require.NoError(t, err)
		_, err = s.PostHTML(context.Background(), post)
		require.NoError(t, err)
	}
	require.Equal(t, 2, s.cache.len())

	delete(files, "posts/b.md")
	require.NoError(t, store.Load(context.Background()))
	s.Invalidate()
	assert.Equal(t, 1, s.cache.len())
}

func TestPages(t *testing.T) {
	pages := newTestSite(t, nil).Pages()
	var paths []string
	for _, p := range pages {
		paths = append(paths, p.Path)
	}
	assert.Equal(t, []string{"/", "/projects", "/blog", "/blog/hello-world", "/blog/older"}, paths)
}

func TestWriteSitemap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestSite(t, nil).WriteSitemap(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, out, "<loc>https://eniola.wtf/</loc>")
	assert.Contains(t, out, "<loc>https://eniola.wtf/blog/hello-world</loc>")
	assert.Contains(t, out, "<lastmod>2024-05-01</lastmod>")
}

func TestWriteRobots(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestSite(t, nil).WriteRobots(&buf))
	assert.Equal(t, "User-agent: *\nAllow: /\n\nSitemap: https://eniola.wtf/sitemap.xml\n", buf.String())
}

func TestAssets(t *testing.T) {
	for _, name := range []string{"styles.css", "copy.js", "scramble.js", "links.js"} {
		_, err := fs.Stat(Assets(), name)
		assert.NoError(t, err, name)
	}
}
