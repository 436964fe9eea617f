package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/prettyirrelevant/eniola.wtf/internal/content"
)

// PostsCmd implements the 'posts' command.
type PostsCmd struct {
	Recent int `short:"n" help:"Only list the N most recent posts" default:"0"`
}

func (p *PostsCmd) Run(g *Global, root *CLI) error {
	a, err := loadApp(context.Background(), g, root, false)
	if err != nil {
		return err
	}

	var posts []content.Post
	if p.Recent > 0 {
		posts = a.store.Recent(p.Recent)
	} else {
		posts = a.store.List()
	}
	if len(posts) == 0 {
		_, _ = fmt.Fprintln(g.Out, "No posts found")
		return nil
	}

	tw := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DATE\tSLUG\tTITLE")
	for _, post := range posts {
		date := "-"
		if post.HasDate() {
			date = post.PublishedAt.Format("2006-01-02")
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", date, post.Slug, post.Title)
	}
	return tw.Flush()
}
