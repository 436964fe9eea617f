package config

import (
	"strings"
	"time"

	"github.com/prettyirrelevant/eniola.wtf/internal/clipboard"
	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
	"github.com/prettyirrelevant/eniola.wtf/internal/highlight"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

var defaultAppliers = []DefaultApplier{
	siteDefaults{},
	contentDefaults{},
	serverDefaults{},
	renderDefaults{},
	loggingDefaults{},
	outputDefaults{},
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "failed to apply defaults").
				WithContext("domain", a.Domain()).
				Build()
		}
	}
	return nil
}

type siteDefaults struct{}

func (siteDefaults) Domain() string { return "site" }

func (siteDefaults) ApplyDefaults(cfg *Config) error {
	s := &cfg.Site
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.Author == "" {
		s.Author = s.Title
	}
	if s.TitleTemplate == "" && s.Title != "" {
		s.TitleTemplate = "%s | " + s.Title
	}
	if s.Locale == "" {
		s.Locale = "en_US"
	}
	if s.TwitterCard == "" {
		s.TwitterCard = "summary_large_image"
	}
	return nil
}

type contentDefaults struct{}

func (contentDefaults) Domain() string { return "content" }

func (contentDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Content.Dir == "" {
		cfg.Content.Dir = "content"
	}
	if cfg.Content.PostsDir == "" {
		cfg.Content.PostsDir = "posts"
	}
	if cfg.Content.RecentPosts <= 0 {
		cfg.Content.RecentPosts = 5
	}
	return nil
}

type serverDefaults struct{}

func (serverDefaults) Domain() string { return "server" }

func (serverDefaults) ApplyDefaults(cfg *Config) error {
	s := &cfg.Server
	if s.Addr == "" {
		s.Addr = ":8080"
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = 10 * time.Second
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = 30 * time.Second
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = 60 * time.Second
	}
	return nil
}

type renderDefaults struct{}

func (renderDefaults) Domain() string { return "render" }

func (renderDefaults) ApplyDefaults(cfg *Config) error {
	r := &cfg.Render
	if r.Highlight.Dark == "" {
		r.Highlight.Dark = highlight.DefaultDarkTheme
	}
	if r.Highlight.Light == "" {
		r.Highlight.Light = highlight.DefaultLightTheme
	}
	if r.CopyResetDelay <= 0 {
		r.CopyResetDelay = clipboard.DefaultResetDelay
	}
	return nil
}

type loggingDefaults struct{}

func (loggingDefaults) Domain() string { return "logging" }

func (loggingDefaults) ApplyDefaults(cfg *Config) error {
	level, err := NormalizeLogLevel(string(cfg.Logging.Level))
	if err != nil {
		return err
	}
	format, err := NormalizeLogFormat(string(cfg.Logging.Format))
	if err != nil {
		return err
	}
	cfg.Logging.Level = level
	cfg.Logging.Format = format
	return nil
}

type outputDefaults struct{}

func (outputDefaults) Domain() string { return "output" }

func (outputDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "public"
	}
	return nil
}
