package mdx

import (
	"bytes"
	"context"
	"strings"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
)

// TableElement is the custom element authors use to embed a Table.
// Its body is YAML (or JSON) with headers and rows:
//
//	<data-table>
//	headers: [name, role]
//	rows:
//	  - [rotki, backend]
//	</data-table>
//
// The opening tag must sit on a line of its own. Blank lines inside the body are
// dropped before Markdown conversion, and the element always becomes its own
// block, even directly after a paragraph line.
const TableElement = "data-table"

const cellClass = "p-2 text-left"

// Table is tabular data rendered by TableComponent.
type Table struct {
	Headers []string   `yaml:"headers" json:"headers"`
	Rows    [][]string `yaml:"rows" json:"rows"`
}

// isolateTables rewrites source so each data-table element is a single raw
// HTML block: a blank line before and after, none inside. Fenced code is left
// alone, as are elements with no closing tag.
func isolateTables(source []byte) []byte {
	open, closing := []byte("<"+TableElement), []byte("</"+TableElement+">")
	if !bytes.Contains(source, open) {
		return source
	}

	lines := bytes.SplitAfter(source, []byte("\n"))
	out := make([]byte, 0, len(source)+16)
	blank := func(line []byte) bool { return len(bytes.TrimSpace(line)) == 0 }
	separate := func() {
		if len(out) > 0 && !bytes.HasSuffix(out, []byte("\n\n")) {
			if !bytes.HasSuffix(out, []byte("\n")) {
				out = append(out, '\n')
			}
			out = append(out, '\n')
		}
	}

	var fence []byte
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if marker := fenceMarker(line); marker != nil {
			switch {
			case fence == nil:
				fence = marker
			case bytes.HasPrefix(marker, fence):
				fence = nil
			}
		}
		if fence != nil || !opensTable(line, open) {
			out = append(out, line...)
			continue
		}

		end := i
		for end < len(lines) && !bytes.Contains(lines[end], closing) {
			end++
		}
		if end == len(lines) {
			out = append(out, line...)
			continue
		}

		separate()
		for _, l := range lines[i : end+1] {
			if !blank(l) {
				out = append(out, l...)
			}
		}
		if !bytes.HasSuffix(out, []byte("\n")) {
			out = append(out, '\n')
		}
		if end+1 < len(lines) && !blank(lines[end+1]) {
			out = append(out, '\n')
		}
		i = end
	}
	return out
}

// opensTable reports whether line starts a data-table element as a block.
func opensTable(line, open []byte) bool {
	trimmed := bytes.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || !bytes.HasPrefix(trimmed, open) {
		return false
	}
	rest := trimmed[len(open):]
	return len(rest) > 0 && (rest[0] == '>' || rest[0] == ' ' || rest[0] == '\t')
}

// fenceMarker returns the backtick or tilde run opening a code fence on line.
func fenceMarker(line []byte) []byte {
	trimmed := bytes.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return nil
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return nil
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return nil
	}
	return trimmed[:n]
}

// ParseTable decodes a table body.
func ParseTable(body string) (Table, error) {
	var t Table
	if strings.TrimSpace(body) == "" {
		return t, nil
	}
	if err := yaml.Unmarshal([]byte(body), &t); err != nil {
		return Table{}, errors.WrapError(err, errors.CategoryRender, "invalid table data").Build()
	}
	return t, nil
}

// Node builds the table element. Rows are rendered as given; no sorting,
// filtering or pagination.
func (t Table) Node() *html.Node {
	table := newElement("table", attr("class", "w-full border-collapse"))

	thead := newElement("thead")
	headRow := newElement("tr")
	for _, h := range t.Headers {
		th := newElement("th", attr("class", cellClass))
		th.AppendChild(newText(h))
		headRow.AppendChild(th)
	}
	thead.AppendChild(headRow)
	table.AppendChild(thead)

	tbody := newElement("tbody")
	for _, row := range t.Rows {
		tr := newElement("tr")
		for _, cell := range row {
			td := newElement("td", attr("class", cellClass))
			td.AppendChild(newText(cell))
			tr.AppendChild(td)
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)
	return table
}

// TableComponent renders data-table elements.
func TableComponent() Component {
	return ComponentFunc(func(_ context.Context, n *html.Node) (*html.Node, error) {
		t, err := ParseTable(textContent(n))
		if err != nil {
			return nil, err
		}
		return t.Node(), nil
	})
}
