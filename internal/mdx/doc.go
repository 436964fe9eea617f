// Package mdx renders post bodies into HTML.
//
// Rendering runs in three steps. The Markdown source (CommonMark plus GFM,
// raw HTML allowed) is converted to HTML by goldmark. The HTML is parsed into
// an element tree, and the tree is walked children-first: every element whose
// tag has a registered Component is replaced by that component's output.
// Finally the tree is serialised back to HTML.
//
// Built-in components cover links, images, headings (anchor slugs), code
// blocks (highlighting plus a copy control) and the data-table element.
// Callers can override any of them per render.
package mdx
