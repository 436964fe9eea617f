// Package config loads the site configuration.
//
// Configuration comes from a YAML file layered over the built-in defaults.
// Before parsing, .env and .env.local are loaded into the process environment
// (existing variables win) and ${VAR} references in the file are expanded.
package config

import (
	_ "embed"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
	"github.com/prettyirrelevant/eniola.wtf/internal/highlight"
	"github.com/prettyirrelevant/eniola.wtf/internal/logfields"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "site.yaml"

//go:embed default_site.yaml
var defaultSiteYAML []byte

// Config represents the application configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Profile Profile       `yaml:"profile"`
	Content ContentConfig `yaml:"content"`
	Server  ServerConfig  `yaml:"server"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// SiteConfig holds page metadata shared by every page.
type SiteConfig struct {
	Title          string `yaml:"title"`
	TitleTemplate  string `yaml:"title_template"` // must contain a single %s
	Description    string `yaml:"description"`
	BaseURL        string `yaml:"base_url"`
	Locale         string `yaml:"locale"`
	Author         string `yaml:"author"`
	TwitterCreator string `yaml:"twitter_creator"`
	TwitterCard    string `yaml:"twitter_card"`
	Image          string `yaml:"image,omitempty"`
}

// Profile is the biography data shown on the home and projects pages.
type Profile struct {
	Name          string    `yaml:"name"`
	Location      string    `yaml:"location"`
	Role          string    `yaml:"role"`
	Bio           string    `yaml:"bio"`
	Work          []Item    `yaml:"work"`
	Featured      []Item    `yaml:"featured_projects"`
	Projects      []Project `yaml:"projects"`
	ProjectsIntro string    `yaml:"projects_intro"`
	Links         []Link    `yaml:"links"`
}

// Item is an entry in a home page section.
type Item struct {
	Title       string `yaml:"title"`
	Role        string `yaml:"role"`
	Period      string `yaml:"period,omitempty"`
	Description string `yaml:"description"`
	Href        string `yaml:"href"`
}

// Project is a card on the projects page.
type Project struct {
	Item         `yaml:",inline"`
	Achievements []string `yaml:"achievements"`
	Technologies []string `yaml:"technologies"`
}

// Link is an entry in the links section.
type Link struct {
	Title string `yaml:"title"`
	Href  string `yaml:"href"`
}

// ContentConfig locates the post files.
type ContentConfig struct {
	Dir         string `yaml:"dir"`
	PostsDir    string `yaml:"posts_dir"`
	RecentPosts int    `yaml:"recent_posts"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	Metrics      bool          `yaml:"metrics"`
	Watch        bool          `yaml:"watch"`
}

// RenderConfig configures post rendering.
type RenderConfig struct {
	Highlight      highlight.Themes `yaml:"highlight"`
	CopyResetDelay time.Duration    `yaml:"copy_reset_delay"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// OutputConfig configures static exports.
type OutputConfig struct {
	Dir   string `yaml:"dir"`
	Clean bool   `yaml:"clean"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultSiteYAML, &cfg); err != nil {
		panic("config: invalid embedded defaults: " + err.Error())
	}
	if err := applyDefaults(&cfg); err != nil {
		panic("config: invalid embedded defaults: " + err.Error())
	}
	return &cfg
}

// Load reads the configuration at path over the built-in defaults.
// A missing file is not an error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			slog.Debug("Configuration file not found, using defaults", logfields.Path(path))
			cfg := Default()
			return cfg, Validate(cfg)
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", path).
			Build()
	}
	return Parse(data)
}

// Parse decodes YAML configuration over the built-in defaults, expanding
// ${VAR} references first.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Build()
	}
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
