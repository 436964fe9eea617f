package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
	"github.com/prettyirrelevant/eniola.wtf/internal/highlight"
)

// Validate checks the configuration for values the site cannot run with.
func Validate(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	for _, check := range []func() error{
		v.validateSite,
		v.validateProfile,
		v.validatePaths,
		v.validateRender,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validateSite() error {
	s := cv.config.Site
	if strings.TrimSpace(s.Title) == "" {
		return errors.ConfigError("site.title cannot be empty").Build()
	}
	if !validTitleTemplate(s.TitleTemplate) {
		return errors.ConfigError("site.title_template must contain exactly one %s and no other verbs").
			WithContext("title_template", s.TitleTemplate).
			Build()
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.ConfigError("site.base_url must be an absolute http(s) URL").
			WithContext("base_url", s.BaseURL).
			Build()
	}
	return nil
}

func (cv *configurationValidator) validateProfile() error {
	p := cv.config.Profile
	if strings.TrimSpace(p.Name) == "" {
		return errors.ConfigError("profile.name cannot be empty").Build()
	}
	seen := make(map[string]bool, len(p.Projects))
	for _, project := range p.Projects {
		if project.Title == "" {
			return errors.ConfigError("profile.projects entries need a title").Build()
		}
		if seen[project.Title] {
			return errors.ConfigError("duplicate project title").
				WithContext("title", project.Title).
				Build()
		}
		seen[project.Title] = true
	}
	for _, link := range p.Links {
		if link.Title == "" || link.Href == "" {
			return errors.ConfigError("profile.links entries need a title and href").Build()
		}
	}
	return nil
}

func (cv *configurationValidator) validatePaths() error {
	c := cv.config
	if filepath.IsAbs(c.Content.PostsDir) || strings.HasPrefix(filepath.Clean(c.Content.PostsDir), "..") {
		return errors.ConfigError("content.posts_dir must be relative to content.dir").
			WithContext("posts_dir", c.Content.PostsDir).
			Build()
	}
	return ValidateOutputDir(c.Output.Dir, c.Content.Dir)
}

// ValidateOutputDir reports an error when dir is unsafe to export into and
// clean: empty, containing ".." elements, the filesystem root, the working
// directory or one of its parents, or overlapping contentDir in either
// direction. An empty contentDir skips the overlap check.
func ValidateOutputDir(dir, contentDir string) error {
	reject := func(msg string) error {
		return errors.ConfigError(msg).
			WithContext("dir", dir).
			WithContext("content_dir", contentDir).
			Build()
	}

	if strings.TrimSpace(dir) == "" {
		return reject("output.dir cannot be empty")
	}
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return reject("output.dir must not contain '..'")
		}
	}

	out, err := filepath.Abs(dir)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "cannot resolve output.dir").
			WithContext("dir", dir).
			Build()
	}
	if out == filepath.VolumeName(out)+string(filepath.Separator) {
		return reject("output.dir must not be the filesystem root")
	}
	if cwd, err := os.Getwd(); err == nil && within(cwd, out) {
		return reject("output.dir must not be or contain the working directory")
	}
	if contentDir != "" {
		content, err := filepath.Abs(contentDir)
		if err == nil && (within(content, out) || within(out, content)) {
			return reject("output.dir must not overlap content.dir")
		}
	}
	return nil
}

// within reports whether path is base or lies below it.
func within(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// validTitleTemplate renders tmpl once and checks the title landed exactly
// once with no malformed or missing verbs.
func validTitleTemplate(tmpl string) bool {
	const sample = "\x00title\x00"
	if strings.Count(tmpl, "%s") != 1 {
		return false
	}
	out := fmt.Sprintf(tmpl, sample)
	return strings.Count(out, sample) == 1 && !strings.Contains(out, "%!")
}

func (cv *configurationValidator) validateRender() error {
	return highlight.ValidateThemes(cv.config.Render.Highlight)
}
