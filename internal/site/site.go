// Package site composes the pages of the site from configuration, posts and
// rendered post bodies.
//
// Every page is rendered into a buffer first, so a failed render never leaves
// partial output behind; callers decide how to present the error.
package site

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/prettyirrelevant/eniola.wtf/internal/config"
	"github.com/prettyirrelevant/eniola.wtf/internal/content"
	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
	"github.com/prettyirrelevant/eniola.wtf/internal/logfields"
	"github.com/prettyirrelevant/eniola.wtf/internal/mdx"
	"github.com/prettyirrelevant/eniola.wtf/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

// PageKind identifies a page template.
type PageKind string

const (
	PageHome     PageKind = "home"
	PageProjects PageKind = "projects"
	PageBlog     PageKind = "blog"
	PagePost     PageKind = "post"
	PageNotFound PageKind = "not_found"
)

// Page is a renderable page.
type Page struct {
	Kind PageKind
	Path string
	Slug string
}

// PostPage returns the page for the post with slug.
func PostPage(slug string) Page {
	return Page{Kind: PagePost, Path: "/blog/" + slug, Slug: slug}
}

// NotFoundPage is the page rendered for unknown routes.
var NotFoundPage = Page{Kind: PageNotFound, Path: "/404"}

// Posts is the post source pages are built from.
type Posts interface {
	List() []content.Post
	Recent(n int) []content.Post
	Get(slug string) (content.Post, error)
}

// BodyRenderer converts a post body to HTML.
type BodyRenderer interface {
	Render(ctx context.Context, source []byte, overrides mdx.Components) (template.HTML, error)
}

// Site renders pages. It is safe for concurrent use.
type Site struct {
	cfg       *config.Config
	posts     Posts
	renderer  BodyRenderer
	recorder  metrics.Recorder
	logger    *slog.Logger
	templates map[PageKind]*template.Template
	cache     *postCache
}

// Option configures a Site.
type Option func(*Site)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Site) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Site) {
		if l != nil {
			s.logger = l
		}
	}
}

// New parses the page templates and returns a Site.
func New(cfg *config.Config, posts Posts, renderer BodyRenderer, opts ...Option) (*Site, error) {
	s := &Site{
		cfg:       cfg,
		posts:     posts,
		renderer:  renderer,
		recorder:  metrics.NoopRecorder{},
		logger:    slog.Default(),
		templates: map[PageKind]*template.Template{},
		cache:     newPostCache(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, kind := range []PageKind{PageHome, PageProjects, PageBlog, PagePost, PageNotFound} {
		t, err := template.New(string(kind)).ParseFS(templateFS, "templates/base.html", "templates/"+string(kind)+".html")
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryInternal, "failed to parse templates").
				WithContext("page", string(kind)).
				Build()
		}
		s.templates[kind] = t
	}
	return s, nil
}

// Assets returns the static assets served under /assets/.
func Assets() fs.FS {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// Pages lists every page with a stable URL, posts newest first.
func (s *Site) Pages() []Page {
	pages := []Page{
		{Kind: PageHome, Path: "/"},
		{Kind: PageProjects, Path: "/projects"},
		{Kind: PageBlog, Path: "/blog"},
	}
	for _, p := range s.posts.List() {
		pages = append(pages, PostPage(p.Slug))
	}
	return pages
}

// Render writes the page to w. A post page for an unknown slug fails with a
// not_found error; rendering errors from the post body are returned as-is.
func (s *Site) Render(ctx context.Context, w io.Writer, page Page) (err error) {
	start := time.Now()
	defer func() {
		s.recorder.ObservePageRender(string(page.Kind), time.Since(start), metrics.ResultFor(err))
	}()

	data, err := s.pageData(ctx, page)
	if err != nil {
		return err
	}

	t, ok := s.templates[page.Kind]
	if !ok {
		return errors.InternalError("unknown page kind").WithContext("page", string(page.Kind)).Build()
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return errors.WrapError(err, errors.CategoryRender, "failed to execute page template").
			WithContext("page", string(page.Kind)).
			Build()
	}
	_, err = buf.WriteTo(w)
	return err
}

// Post returns the post with slug.
func (s *Site) Post(slug string) (content.Post, error) {
	return s.posts.Get(slug)
}

// PostHTML returns the rendered body of post, from cache when its fingerprint is unchanged.
func (s *Site) PostHTML(ctx context.Context, post content.Post) (template.HTML, error) {
	html, hit, err := s.cache.get(ctx, post, func(ctx context.Context, post content.Post) (template.HTML, error) {
		s.logger.Debug("Rendering post", logfields.Slug(post.Slug))
		return s.renderer.Render(ctx, post.Body, nil)
	})
	s.recorder.IncPostCache(hit)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to render post").
			WithContext("slug", post.Slug).
			Build()
	}
	return html, nil
}

// Invalidate drops cached bodies for posts that no longer exist. Edited posts
// are re-rendered on their next request because their fingerprint changed.
func (s *Site) Invalidate() {
	keep := map[string]bool{}
	for _, p := range s.posts.List() {
		keep[p.Slug] = true
	}
	s.cache.prune(keep)
}

// Meta is the per-page metadata rendered into the document head.
type Meta struct {
	Title       string
	OGTitle     string
	Description string
	URL         string
	Type        string
	PublishedAt time.Time
}

type navItem struct {
	Title  string
	Href   string
	Active bool
}

type postView struct {
	content.Post
	HTML template.HTML
}

type pageData struct {
	Lang      string
	Site      config.SiteConfig
	Profile   config.Profile
	Meta      Meta
	Nav       []navItem
	Posts     []content.Post
	MorePosts bool
	Post      *postView
	HasCode   bool
}

func (s *Site) pageData(ctx context.Context, page Page) (*pageData, error) {
	data := &pageData{
		Lang:    s.lang(),
		Site:    s.cfg.Site,
		Profile: s.cfg.Profile,
		Nav:     s.nav(page),
		Meta: Meta{
			Title:       s.cfg.Site.Title,
			OGTitle:     s.cfg.Site.Title,
			Description: s.cfg.Site.Description,
			URL:         s.absURL(page.Path),
			Type:        "website",
		},
	}

	switch page.Kind {
	case PageHome:
		n := s.cfg.Content.RecentPosts
		all := s.posts.List()
		data.Posts = s.posts.Recent(n)
		data.MorePosts = len(all) > len(data.Posts)
	case PageProjects:
		data.Meta.Title = s.title("Projects")
		data.Meta.OGTitle = "Projects"
		data.Meta.Description = "Some of the projects I've worked on."
	case PageBlog:
		data.Posts = s.posts.List()
		data.Meta.Title = s.title("Blog")
		data.Meta.OGTitle = "Blog"
		data.Meta.Description = "Read my thoughts on software development, design, and more."
	case PagePost:
		post, err := s.posts.Get(page.Slug)
		if err != nil {
			return nil, err
		}
		html, err := s.PostHTML(ctx, post)
		if err != nil {
			return nil, err
		}
		data.Post = &postView{Post: post, HTML: html}
		data.HasCode = strings.Contains(string(html), "data-copy")
		data.Meta.Title = s.title(post.Title)
		data.Meta.OGTitle = post.Title
		if post.Summary != "" {
			data.Meta.Description = post.Summary
		}
		data.Meta.Type = "article"
		data.Meta.PublishedAt = post.PublishedAt
	case PageNotFound:
		data.Meta.Title = s.title("Not Found")
		data.Meta.OGTitle = "Not Found"
	}
	return data, nil
}

func (s *Site) nav(page Page) []navItem {
	active := func(kind PageKind) bool {
		return page.Kind == kind || (kind == PageBlog && page.Kind == PagePost)
	}
	return []navItem{
		{Title: "home", Href: "/", Active: active(PageHome)},
		{Title: "projects", Href: "/projects", Active: active(PageProjects)},
		{Title: "blog", Href: "/blog", Active: active(PageBlog)},
	}
}

func (s *Site) title(page string) string {
	return fmt.Sprintf(s.cfg.Site.TitleTemplate, page)
}

func (s *Site) absURL(path string) string {
	if path == "/" {
		return s.cfg.Site.BaseURL + "/"
	}
	return s.cfg.Site.BaseURL + path
}

// lang derives the document language from the locale, en_US -> en.
func (s *Site) lang() string {
	lang, _, _ := strings.Cut(s.cfg.Site.Locale, "_")
	if lang == "" {
		return "en"
	}
	return lang
}
