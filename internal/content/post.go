// Package content loads blog posts from a filesystem of Markdown/MDX files.
package content

import (
	"path"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Post is a single blog post read from a content file.
type Post struct {
	Slug        string
	Title       string
	PublishedAt time.Time
	Summary     string
	Body        []byte
	// Fingerprint identifies the frontmatter and body; it changes whenever either does.
	Fingerprint string
	SourcePath  string
}

// HasDate reports whether the post carries a usable publication date.
func (p Post) HasDate() bool {
	return !p.PublishedAt.IsZero()
}

// DisplayDate formats the publication date the way listings show it.
func (p Post) DisplayDate() string {
	if !p.HasDate() {
		return ""
	}
	return p.PublishedAt.Format("January 2, 2006")
}

// meta is the frontmatter recognised on a post.
type meta struct {
	Title       string `yaml:"title"`
	PublishedAt string `yaml:"publishedAt"`
	Date        string `yaml:"date"`
	Summary     string `yaml:"summary"`
}

func (m meta) date() string {
	if m.PublishedAt != "" {
		return m.PublishedAt
	}
	return m.Date
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// slugFromPath returns the file name without its extension.
func slugFromPath(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// titleFromSlug turns "my-first_post" into "My First Post". A Caser keeps
// state between calls, so each call gets its own.
func titleFromSlug(slug string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return cases.Title(language.English).String(strings.Join(strings.Fields(words), " "))
}

func isPostFile(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return false
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".mdx":
		return true
	default:
		return false
	}
}
