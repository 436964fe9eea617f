// Package export writes the whole site to a directory as static files.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prettyirrelevant/eniola.wtf/internal/config"
	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
	"github.com/prettyirrelevant/eniola.wtf/internal/logfields"
	"github.com/prettyirrelevant/eniola.wtf/internal/site"
)

// Result summarises an export run.
type Result struct {
	Dir      string
	Pages    int
	Assets   int
	Duration time.Duration
}

// Exporter renders every page of a site to disk.
type Exporter struct {
	site       *site.Site
	cfg        config.OutputConfig
	contentDir string
	logger     *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the exporter's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithContentDir names the source directory the output must never overlap.
func WithContentDir(dir string) Option {
	return func(e *Exporter) { e.contentDir = dir }
}

// New creates an exporter writing to cfg.Dir.
func New(s *site.Site, cfg config.OutputConfig, opts ...Option) *Exporter {
	e := &Exporter{site: s, cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run refuses unsafe output directories, then writes every page as <path>/index.html, the not-found page as
// 404.html, the embedded assets under assets/, and sitemap.xml and
// robots.txt. The first failing page aborts the run.
func (e *Exporter) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{Dir: e.cfg.Dir}

	if err := config.ValidateOutputDir(e.cfg.Dir, e.contentDir); err != nil {
		return res, err
	}
	if e.cfg.Clean {
		if err := os.RemoveAll(e.cfg.Dir); err != nil {
			return res, fsError(err, "failed to clean output directory", e.cfg.Dir)
		}
	}
	if err := os.MkdirAll(e.cfg.Dir, 0o755); err != nil {
		return res, fsError(err, "failed to create output directory", e.cfg.Dir)
	}

	pages := e.site.Pages()
	var written atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, page := range pages {
		g.Go(func() error {
			if err := e.writePage(gctx, page, PagePath(page.Path)); err != nil {
				return err
			}
			written.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	res.Pages = int(written.Load())

	if err := e.writePage(ctx, site.NotFoundPage, "404.html"); err != nil {
		return res, err
	}
	if err := e.writeFile("sitemap.xml", e.site.WriteSitemap); err != nil {
		return res, err
	}
	if err := e.writeFile("robots.txt", e.site.WriteRobots); err != nil {
		return res, err
	}

	n, err := copyFS(site.Assets(), filepath.Join(e.cfg.Dir, "assets"))
	if err != nil {
		return res, err
	}
	res.Assets = n
	res.Duration = time.Since(start)

	e.logger.Info("Site exported",
		logfields.Path(e.cfg.Dir),
		logfields.Count(res.Pages),
		slog.Int("assets", res.Assets),
		logfields.DurationMS(float64(res.Duration.Microseconds())/1000))
	return res, nil
}

func (e *Exporter) writePage(ctx context.Context, page site.Page, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := e.site.Render(ctx, &buf, page); err != nil {
		return fmt.Errorf("export %s: %w", page.Path, err)
	}
	e.logger.Debug("Page exported", logfields.Path(page.Path), logfields.File(rel))
	return writeFile(filepath.Join(e.cfg.Dir, filepath.FromSlash(rel)), buf.Bytes())
}

func (e *Exporter) writeFile(rel string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("export %s: %w", rel, err)
	}
	return writeFile(filepath.Join(e.cfg.Dir, rel), buf.Bytes())
}

// PagePath maps a route to the file that serves it: "/" is index.html and
// "/blog/hello" is blog/hello/index.html.
func PagePath(route string) string {
	route = strings.Trim(route, "/")
	if route == "" {
		return "index.html"
	}
	return path.Join(route, "index.html")
}

func copyFS(src fs.FS, dst string) (int, error) {
	count := 0
	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(src, p)
		if err != nil {
			return err
		}
		count++
		return writeFile(filepath.Join(dst, filepath.FromSlash(p)), data)
	})
	if err != nil {
		return count, fsError(err, "failed to copy assets", dst)
	}
	return count, nil
}

func writeFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fsError(err, "failed to create directory", filepath.Dir(name))
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fsError(err, "failed to write file", name)
	}
	return nil
}

func fsError(err error, msg, target string) error {
	return errors.WrapError(err, errors.CategoryFileSystem, msg).
		WithContext("path", target).
		Build()
}
