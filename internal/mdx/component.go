package mdx

import (
	"context"
	"maps"

	"golang.org/x/net/html"
)

// Component replaces a single element.
//
// Render receives the element after its children have been processed. It
// returns the node to put in its place: n itself to keep it, a new detached
// node to replace it, or nil to drop it.
type Component interface {
	Render(ctx context.Context, n *html.Node) (*html.Node, error)
}

// ComponentFunc adapts a function to the Component interface.
type ComponentFunc func(ctx context.Context, n *html.Node) (*html.Node, error)

// Render calls f(ctx, n).
func (f ComponentFunc) Render(ctx context.Context, n *html.Node) (*html.Node, error) {
	return f(ctx, n)
}

// Components maps lower-case element names to their components.
type Components map[string]Component

// Merge returns a new set with overrides applied on top of c. On a name
// collision the override wins.
func (c Components) Merge(overrides Components) Components {
	out := make(Components, len(c)+len(overrides))
	maps.Copy(out, c)
	maps.Copy(out, overrides)
	return out
}

// Names returns the registered element names.
func (c Components) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	return names
}
