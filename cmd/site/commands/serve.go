package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prettyirrelevant/eniola.wtf/internal/logfields"
	"github.com/prettyirrelevant/eniola.wtf/internal/metrics"
	"github.com/prettyirrelevant/eniola.wtf/internal/server"
	"github.com/prettyirrelevant/eniola.wtf/internal/watch"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr    string `short:"a" help:"Listen address (overrides server.addr)"`
	NoWatch bool   `name:"no-watch" help:"Do not reload posts when files change"`
}

func (c *ServeCmd) Run(g *Global, root *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.serve(ctx, g, root)
}

// serve runs until ctx is done, then shuts the server down gracefully.
func (c *ServeCmd) serve(ctx context.Context, g *Global, root *CLI) error {
	a, err := loadApp(ctx, g, root, true)
	if err != nil {
		return err
	}

	cfg := a.cfg.Server
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	var metricsHandler http.Handler
	if a.registry != nil {
		metricsHandler = metrics.HTTPHandler(a.registry, a.logger)
	}

	srv := server.New(cfg, a.site, server.Options{
		Logger:         a.logger,
		Recorder:       a.recorder,
		MetricsHandler: metricsHandler,
	})
	if err := srv.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("Serving site", logfields.Addr(srv.Addr()), logfields.Count(a.store.Len()))

	watchDone := make(chan struct{})
	if cfg.Watch && !c.NoWatch {
		go func() {
			defer close(watchDone)
			c.watch(ctx, a)
		}()
	} else {
		close(watchDone)
	}

	<-ctx.Done()
	a.logger.Info("Shutting down")

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	err = srv.Stop(stopCtx)
	<-watchDone
	return err
}

func (c *ServeCmd) watch(ctx context.Context, a *app) {
	dir := filepath.Join(a.cfg.Content.Dir, a.store.Dir())
	w, err := watch.New(dir, a.reload, watch.WithLogger(a.logger))
	if err != nil {
		a.logger.Warn("Content watching disabled", logfields.Error(err))
		return
	}
	if err := w.Run(ctx); err != nil {
		a.logger.Warn("Content watcher stopped", logfields.Error(err))
	}
}
