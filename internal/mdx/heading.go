package mdx

import (
	"context"

	"golang.org/x/net/html"

	"github.com/prettyirrelevant/eniola.wtf/internal/slug"
)

// HeadingComponent renders hN elements with an id derived from their text and
// their content wrapped in a self-link. Duplicate headings get duplicate ids.
func HeadingComponent(level int) Component {
	tag := headingTag(level)
	return ComponentFunc(func(_ context.Context, n *html.Node) (*html.Node, error) {
		s := slug.Make(textContent(n))
		out := newElement(tag, attr("id", s))
		anchor := newElement("a", attr("href", "#"+s), attr("class", "anchor"))
		moveChildren(anchor, n)
		out.AppendChild(anchor)
		return out, nil
	})
}

func headingTag(level int) string {
	if level < 1 || level > 6 {
		level = 1
	}
	return string([]byte{'h', byte('0' + level)})
}
