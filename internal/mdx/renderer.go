package mdx

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"

	"github.com/prettyirrelevant/eniola.wtf/internal/highlight"
	"github.com/prettyirrelevant/eniola.wtf/internal/metrics"
)

// Renderer converts post bodies to HTML with a set of element components.
// It is safe for concurrent use.
type Renderer struct {
	markdown   goldmark.Markdown
	components Components
}

type config struct {
	highlighter highlight.Highlighter
	themes      highlight.Themes
	resetDelay  time.Duration
	recorder    metrics.Recorder
	extra       Components
}

// Option configures a Renderer.
type Option func(*config)

// WithHighlighter sets the highlighter used by the code block component.
func WithHighlighter(h highlight.Highlighter) Option {
	return func(c *config) { c.highlighter = h }
}

// WithThemes sets the dark and light highlight themes.
func WithThemes(t highlight.Themes) Option {
	return func(c *config) { c.themes = t }
}

// WithResetDelay sets the copy control reset delay rendered into code blocks.
func WithResetDelay(d time.Duration) Option {
	return func(c *config) { c.resetDelay = d }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *config) { c.recorder = r }
}

// WithComponents adds or replaces default components for every render.
func WithComponents(components Components) Option {
	return func(c *config) { c.extra = c.extra.Merge(components) }
}

// New creates a Renderer with the built-in components.
func New(opts ...Option) *Renderer {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Renderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
		),
		components: DefaultComponents(CodeBlockOptions{
			Highlighter: cfg.highlighter,
			Themes:      cfg.themes,
			ResetDelay:  cfg.resetDelay,
			Recorder:    cfg.recorder,
		}).Merge(cfg.extra),
	}
}

// DefaultComponents returns the built-in component set.
func DefaultComponents(code CodeBlockOptions) Components {
	c := Components{
		"a":          LinkComponent(),
		"img":        ImageComponent(),
		"pre":        CodeBlockComponent(code),
		TableElement: TableComponent(),
	}
	for level := 1; level <= 6; level++ {
		c[headingTag(level)] = HeadingComponent(level)
	}
	return c
}

// Components returns the renderer's component set.
func (r *Renderer) Components() Components {
	return r.components.Merge(nil)
}

// Render converts source to HTML. overrides replace built-in components with
// the same element name for this call only. Errors from conversion, parsing
// or any component are returned wrapped.
func (r *Renderer) Render(ctx context.Context, source []byte, overrides Components) (template.HTML, error) {
	root, err := r.parse(source)
	if err != nil {
		return "", err
	}

	components := r.components
	if len(overrides) > 0 {
		components = components.Merge(overrides)
	}
	if err := apply(ctx, root, components); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("serialise html: %w", err)
		}
	}
	return template.HTML(buf.String()), nil //nolint:gosec // components build the tree from escaped nodes
}

// CodeBlocks returns the language-tagged code blocks in source, in document
// order, without highlighting them.
func (r *Renderer) CodeBlocks(source []byte) ([]CodeBlock, error) {
	root, err := r.parse(source)
	if err != nil {
		return nil, err
	}
	var blocks []CodeBlock
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isElement(n, "pre") {
			if block, ok := codeBlockFrom(n); ok {
				blocks = append(blocks, block)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return blocks, nil
}

// parse converts Markdown to HTML and returns a container whose children are
// the parsed nodes.
func (r *Renderer) parse(source []byte) (*html.Node, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert(isolateTables(source), &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	nodes, err := parseFragment(buf.String())
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	root := newElement("div")
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// apply walks n's subtree children-first and replaces elements that have a component.
func apply(ctx context.Context, n *html.Node, components Components) error {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if err := apply(ctx, c, components); err != nil {
			return err
		}
		c = next
	}

	if n.Type != html.ElementNode || n.Parent == nil {
		return nil
	}
	component, ok := components[n.Data]
	if !ok {
		return nil
	}

	out, err := component.Render(ctx, n)
	if err != nil {
		return fmt.Errorf("render <%s>: %w", n.Data, err)
	}
	if out == n {
		return nil
	}

	parent := n.Parent
	if out != nil {
		if out.Parent != nil {
			out.Parent.RemoveChild(out)
		}
		parent.InsertBefore(out, n)
	}
	parent.RemoveChild(n)
	return nil
}
