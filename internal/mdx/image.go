package mdx

import (
	"context"

	"golang.org/x/net/html"
)

// DefaultImageClass is applied to images that do not set a class.
const DefaultImageClass = "rounded-lg"

// ImageAttrs are the attributes carried over to a rendered image.
type ImageAttrs struct {
	Src     string
	Alt     string
	Title   string
	Width   string
	Height  string
	Loading string
	Class   string
}

// ImageAttrsFrom decodes the recognised attributes of an img element.
func ImageAttrsFrom(n *html.Node) ImageAttrs {
	var ia ImageAttrs
	for _, a := range n.Attr {
		switch a.Key {
		case "src":
			ia.Src = a.Val
		case "alt":
			ia.Alt = a.Val
		case "title":
			ia.Title = a.Val
		case "width":
			ia.Width = a.Val
		case "height":
			ia.Height = a.Val
		case "loading":
			ia.Loading = a.Val
		case "class":
			ia.Class = a.Val
		}
	}
	return ia
}

// ImageComponent renders img elements with an alt attribute always present
// and the default class unless the author set one.
func ImageComponent() Component {
	return ComponentFunc(func(_ context.Context, n *html.Node) (*html.Node, error) {
		ia := ImageAttrsFrom(n)
		class := ia.Class
		if class == "" {
			class = DefaultImageClass
		}

		attrs := []html.Attribute{attr("src", ia.Src), attr("alt", ia.Alt), attr("class", class)}
		for _, kv := range [][2]string{
			{"title", ia.Title},
			{"width", ia.Width},
			{"height", ia.Height},
			{"loading", ia.Loading},
		} {
			if kv[1] != "" {
				attrs = append(attrs, attr(kv[0], kv[1]))
			}
		}
		return newElement("img", attrs...), nil
	})
}
