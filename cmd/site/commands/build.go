package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/prettyirrelevant/eniola.wtf/internal/export"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output  string `short:"o" help:"Output directory (overrides output.dir)"`
	NoClean bool   `name:"no-clean" help:"Keep existing files in the output directory"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := loadApp(ctx, g, root, false)
	if err != nil {
		return err
	}

	out := a.cfg.Output
	if b.Output != "" {
		out.Dir = b.Output
	}
	if b.NoClean {
		out.Clean = false
	}

	res, err := export.New(a.site, out,
		export.WithContentDir(a.cfg.Content.Dir),
		export.WithLogger(a.logger),
	).Run(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "Exported %d pages and %d assets to %s in %s\n",
		res.Pages, res.Assets, res.Dir, res.Duration.Round(time.Millisecond))
	return nil
}
