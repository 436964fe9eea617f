package content

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/inful/mdfp"

	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
	"github.com/prettyirrelevant/eniola.wtf/internal/frontmatter"
	"github.com/prettyirrelevant/eniola.wtf/internal/logfields"
)

// DefaultPostsDir is the directory, relative to the content root, holding posts.
const DefaultPostsDir = "posts"

// Store holds the posts loaded from a content filesystem.
//
// Load replaces the whole set atomically, so readers never observe a partial reload.
type Store struct {
	fsys     fs.FS
	postsDir string
	logger   *slog.Logger

	mu     sync.RWMutex
	posts  []Post
	bySlug map[string]int
}

// Option configures a Store.
type Option func(*Store)

// WithPostsDir overrides the posts directory.
func WithPostsDir(dir string) Option {
	return func(s *Store) {
		if dir != "" {
			s.postsDir = path.Clean(dir)
		}
	}
}

// WithLogger sets the logger used for content warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty store over fsys. Call Load before reading posts.
func NewStore(fsys fs.FS, opts ...Option) *Store {
	s := &Store{
		fsys:     fsys,
		postsDir: DefaultPostsDir,
		logger:   slog.Default(),
		bySlug:   map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads every post file. On error the previously loaded set is kept.
func (s *Store) Load(ctx context.Context) error {
	entries, err := fs.ReadDir(s.fsys, s.postsDir)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Posts directory does not exist", logfields.Path(s.postsDir))
			s.replace(nil)
			return nil
		}
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to read posts directory").
			WithContext("path", s.postsDir).
			Build()
	}

	posts := make([]Post, 0, len(entries))
	seen := make(map[string]string, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !isPostFile(entry.Name()) {
			continue
		}

		p := path.Join(s.postsDir, entry.Name())
		post, err := s.readPost(p)
		if err != nil {
			return err
		}
		if other, dup := seen[post.Slug]; dup {
			return errors.ValidationError("duplicate post slug").
				WithContext("slug", post.Slug).
				WithContext("files", []string{other, p}).
				Build()
		}
		seen[post.Slug] = p
		posts = append(posts, post)
	}

	sortNewestFirst(posts)
	s.replace(posts)
	s.logger.Debug("Loaded posts", logfields.Count(len(posts)), logfields.Path(s.postsDir))
	return nil
}

func (s *Store) readPost(p string) (Post, error) {
	raw, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		return Post{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to read post").
			WithContext("path", p).
			Build()
	}

	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return Post{}, errors.WrapError(err, errors.CategoryContent, "invalid frontmatter").
			WithContext("path", p).
			Build()
	}

	var m meta
	if err := doc.Decode(&m); err != nil {
		return Post{}, errors.WrapError(err, errors.CategoryContent, "invalid frontmatter").
			WithContext("path", p).
			Build()
	}

	slug := slugFromPath(p)
	post := Post{
		Slug:        slug,
		Title:       strings.TrimSpace(m.Title),
		Summary:     strings.TrimSpace(m.Summary),
		Body:        doc.Body,
		SourcePath:  p,
		Fingerprint: mdfp.CalculateFingerprintFromParts(strings.TrimRight(string(doc.Raw), "\r\n"), string(doc.Body)),
	}
	if post.Title == "" {
		post.Title = titleFromSlug(slug)
	}
	if d := m.date(); d != "" {
		t, ok := parseDate(d)
		if !ok {
			s.logger.Warn("Unrecognised post date", logfields.Path(p), slog.String("date", d))
		}
		post.PublishedAt = t
	}
	return post, nil
}

func (s *Store) replace(posts []Post) {
	bySlug := make(map[string]int, len(posts))
	for i, p := range posts {
		bySlug[p.Slug] = i
	}
	s.mu.Lock()
	s.posts = posts
	s.bySlug = bySlug
	s.mu.Unlock()
}

// List returns all posts, newest first.
func (s *Store) List() []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Recent returns at most n posts, newest first. n <= 0 returns all posts.
func (s *Store) Recent(n int) []Post {
	posts := s.List()
	if n > 0 && len(posts) > n {
		posts = posts[:n]
	}
	return posts
}

// Get returns the post with the given slug.
func (s *Store) Get(slug string) (Post, error) {
	s.mu.RLock()
	i, ok := s.bySlug[slug]
	var post Post
	if ok {
		post = s.posts[i]
	}
	s.mu.RUnlock()

	if !ok {
		return Post{}, errors.NotFoundError("post not found").WithContext("slug", slug).Build()
	}
	return post, nil
}

// Len returns the number of loaded posts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// Dir returns the posts directory relative to the content root.
func (s *Store) Dir() string {
	return s.postsDir
}

// sortNewestFirst orders by publication date descending. Undated posts sort last; ties break on slug.
func sortNewestFirst(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].PublishedAt, posts[j].PublishedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return posts[i].Slug < posts[j].Slug
	})
}
