package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/prettyirrelevant/eniola.wtf/internal/clipboard"
	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
)

// CopyCmd implements the 'copy' command. It drives the same copy control
// the code block button uses, with the OS clipboard as the target.
type CopyCmd struct {
	Slug  string `arg:"" help:"Post slug"`
	Block int    `arg:"" optional:"" help:"1-based code block index" default:"1"`
	Wait  bool   `help:"Wait for the control to reset before exiting" default:"true" negatable:""`
}

func (c *CopyCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := loadApp(ctx, g, root, false)
	if err != nil {
		return err
	}

	post, err := a.store.Get(c.Slug)
	if err != nil {
		return err
	}
	blocks, err := a.renderer.CodeBlocks(post.Body)
	if err != nil {
		return err
	}
	if c.Block < 1 || c.Block > len(blocks) {
		return errors.ValidationError("code block index out of range").
			WithContext("slug", c.Slug).
			WithContext("block", c.Block).
			WithContext("available", len(blocks)).
			Build()
	}
	block := blocks[c.Block-1]

	states := make(chan clipboard.State, 2)
	control := clipboard.NewControl(block.Source, g.Clipboard,
		clipboard.WithResetDelay(a.cfg.Render.CopyResetDelay),
		clipboard.WithLogger(a.logger),
		clipboard.WithObserver(func(s clipboard.State) {
			select {
			case states <- s:
			default:
			}
		}),
	)
	defer control.Close()

	if control.Activate(ctx) != clipboard.StateCopied {
		return errors.ClipboardError("failed to copy code block").
			WithContext("slug", c.Slug).
			WithContext("block", c.Block).
			Build()
	}
	<-states
	lines := strings.Count(strings.TrimRight(block.Source, "\n"), "\n") + 1
	_, _ = fmt.Fprintf(g.Out, "%s %d lines of %s from %s\n", clipboard.StateCopied.Title(), lines, block.Language, c.Slug)

	if !c.Wait {
		return nil
	}
	select {
	case s := <-states:
		_, _ = fmt.Fprintln(g.Out, s.Title())
	case <-ctx.Done():
	}
	return nil
}
