// Package commands implements the site CLI subcommands.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/prettyirrelevant/eniola.wtf/internal/clipboard"
	"github.com/prettyirrelevant/eniola.wtf/internal/config"
	"github.com/prettyirrelevant/eniola.wtf/internal/content"
	"github.com/prettyirrelevant/eniola.wtf/internal/highlight"
	"github.com/prettyirrelevant/eniola.wtf/internal/logfields"
	"github.com/prettyirrelevant/eniola.wtf/internal/mdx"
	"github.com/prettyirrelevant/eniola.wtf/internal/metrics"
	"github.com/prettyirrelevant/eniola.wtf/internal/site"
)

// Global carries dependencies shared by every subcommand.
type Global struct {
	Logger    *slog.Logger
	Out       io.Writer
	Clipboard clipboard.Writer
}

// NewGlobal returns the production dependencies writing user output to out.
func NewGlobal(out io.Writer) *Global {
	return &Global{Logger: slog.Default(), Out: out, Clipboard: clipboard.SystemWriter{}}
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"site.yaml" env:"SITE_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve       ServeCmd   `cmd:"" default:"withargs" help:"Serve the site over HTTP"`
	Build       BuildCmd   `cmd:"" help:"Export the site as static files"`
	Posts       PostsCmd   `cmd:"" help:"List blog posts"`
	Copy        CopyCmd    `cmd:"" help:"Copy a code block from a post to the clipboard"`
	Init        InitCmd    `cmd:"" help:"Write a starter configuration file"`
	VersionInfo VersionCmd `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply installs a stderr logger honouring --verbose until the
// configuration is loaded.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// app is the wired site shared by serve, build, posts and copy.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
	registry *prom.Registry
	store    *content.Store
	renderer *mdx.Renderer
	site     *site.Site
}

// loadApp reads the configuration, switches logging to its settings and
// wires the content store, renderer and site. Posts are loaded eagerly.
// A Prometheus registry is created only when withMetrics is set and the
// configuration enables metrics.
func loadApp(ctx context.Context, g *Global, root *CLI, withMetrics bool) (*app, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}

	logger := slog.New(cfg.Logging.NewHandler(os.Stderr, root.Verbose))
	slog.SetDefault(logger)
	g.Logger = logger

	var (
		recorder metrics.Recorder = metrics.NoopRecorder{}
		registry *prom.Registry
	)
	if withMetrics && cfg.Server.Metrics {
		registry = prom.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	store := content.NewStore(os.DirFS(cfg.Content.Dir),
		content.WithPostsDir(cfg.Content.PostsDir),
		content.WithLogger(logger))

	renderer := mdx.New(
		mdx.WithHighlighter(highlight.NewChroma()),
		mdx.WithThemes(cfg.Render.Highlight),
		mdx.WithResetDelay(cfg.Render.CopyResetDelay),
		mdx.WithRecorder(recorder),
	)

	s, err := site.New(cfg, store, renderer, site.WithRecorder(recorder), site.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	recorder.SetPostCount(store.Len())

	return &app{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		registry: registry,
		store:    store,
		renderer: renderer,
		site:     s,
	}, nil
}

// reload re-reads the posts and drops rendered pages. A failed load keeps
// the previous posts.
func (a *app) reload(ctx context.Context) error {
	err := a.store.Load(ctx)
	a.recorder.IncContentReload(metrics.ResultFor(err))
	if err != nil {
		return err
	}
	a.site.Invalidate()
	a.recorder.SetPostCount(a.store.Len())
	a.logger.Info("Content reloaded", logfields.Count(a.store.Len()))
	return nil
}
