package mdx

import (
	"context"
	"strings"

	"golang.org/x/net/html"
)

// LinkKind classifies a link by its href.
type LinkKind int

const (
	// LinkExternal opens in a new tab.
	LinkExternal LinkKind = iota
	// LinkInternal is a site-relative path handled by client-side navigation.
	LinkInternal
	// LinkAnchor points into the current page.
	LinkAnchor
)

// ClassifyLink returns the kind of link href is.
func ClassifyLink(href string) LinkKind {
	switch {
	case strings.HasPrefix(href, "/"):
		return LinkInternal
	case strings.HasPrefix(href, "#"):
		return LinkAnchor
	default:
		return LinkExternal
	}
}

// LinkAttrs are the attributes carried over to a rendered link. Anything else
// on the source element is dropped.
type LinkAttrs struct {
	Href      string
	Title     string
	ID        string
	Class     string
	AriaLabel string
}

// LinkAttrsFrom decodes the recognised attributes of an a element.
func LinkAttrsFrom(n *html.Node) LinkAttrs {
	var la LinkAttrs
	for _, a := range n.Attr {
		switch a.Key {
		case "href":
			la.Href = a.Val
		case "title":
			la.Title = a.Val
		case "id":
			la.ID = a.Val
		case "class":
			la.Class = a.Val
		case "aria-label":
			la.AriaLabel = a.Val
		}
	}
	return la
}

func (la LinkAttrs) attributes() []html.Attribute {
	attrs := []html.Attribute{attr("href", la.Href)}
	for _, kv := range [][2]string{
		{"title", la.Title},
		{"id", la.ID},
		{"class", la.Class},
		{"aria-label", la.AriaLabel},
	} {
		if kv[1] != "" {
			attrs = append(attrs, attr(kv[0], kv[1]))
		}
	}
	return attrs
}

// LinkComponent renders a elements. Site paths get a data-link="internal"
// marker for client-side navigation, in-page anchors are left alone and
// everything else opens in a new tab without an opener reference.
func LinkComponent() Component {
	return ComponentFunc(func(_ context.Context, n *html.Node) (*html.Node, error) {
		la := LinkAttrsFrom(n)
		kind := ClassifyLink(la.Href)
		if kind == LinkAnchor {
			return n, nil
		}

		out := newElement("a", la.attributes()...)
		switch kind {
		case LinkInternal:
			out.Attr = append(out.Attr, attr("data-link", "internal"))
		default:
			out.Attr = append(out.Attr, attr("target", "_blank"), attr("rel", "noopener noreferrer"))
		}
		moveChildren(out, n)
		return out, nil
	})
}
