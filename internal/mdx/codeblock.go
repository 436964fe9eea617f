package mdx

import (
	"bytes"
	"context"
	"html/template"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/prettyirrelevant/eniola.wtf/internal/clipboard"
	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
	"github.com/prettyirrelevant/eniola.wtf/internal/highlight"
	"github.com/prettyirrelevant/eniola.wtf/internal/metrics"
)

const languageClassPrefix = "language-"

// CodeBlock is a fenced code block found in a post.
type CodeBlock struct {
	Source   string
	Language string
	// HTML is the highlighted markup; empty until the block is rendered.
	HTML string
}

// FindCode returns the first direct code child of a pre element.
func FindCode(pre *html.Node) (*html.Node, bool) {
	if pre == nil {
		return nil, false
	}
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, "code") {
			return c, true
		}
	}
	return nil, false
}

// LanguageOf extracts the language from a code element's class attribute.
// The class must start with "language-"; the language is the second
// dash-separated part of the first class token, so "language-objective-c"
// yields "objective". ok is false when no language can be determined.
func LanguageOf(code *html.Node) (lang string, ok bool) {
	class, _ := getAttr(code, "class")
	if !strings.HasPrefix(class, languageClassPrefix) {
		return "", false
	}
	first := strings.Fields(class)[0]
	parts := strings.Split(first, "-")
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// codeBlockFrom extracts a code block from a pre element.
func codeBlockFrom(pre *html.Node) (CodeBlock, bool) {
	code, ok := FindCode(pre)
	if !ok {
		return CodeBlock{}, false
	}
	lang, ok := LanguageOf(code)
	if !ok {
		return CodeBlock{}, false
	}
	return CodeBlock{Source: textContent(code), Language: lang}, true
}

var codeBlockTemplate = template.Must(template.New("codeblock").Parse(
	`<div class="relative">` +
		`{{.Highlighted}}` +
		`<button type="button" class="copy-button absolute top-2 right-2 p-2 rounded-md bg-neutral-800 hover:bg-neutral-700 transition-colors"` +
		` title="{{.Idle.Title}}" aria-label="{{.Idle.AriaLabel}}"` +
		` data-copy data-state="{{.Idle}}" data-code="{{.Source}}" data-reset-delay="{{.ResetDelayMS}}"` +
		` data-title-idle="{{.Idle.Title}}" data-aria-idle="{{.Idle.AriaLabel}}"` +
		` data-title-copied="{{.Copied.Title}}" data-aria-copied="{{.Copied.AriaLabel}}">` +
		`<svg class="icon-idle text-neutral-400" xmlns="http://www.w3.org/2000/svg" width="16" height="16" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round">` +
		`<path stroke="none" d="M0 0h24v24H0z" fill="none"/>` +
		`<path d="M7 7m0 2.667a2.667 2.667 0 0 1 2.667 -2.667h8.666a2.667 2.667 0 0 1 2.667 2.667v8.666a2.667 2.667 0 0 1 -2.667 2.667h-8.666a2.667 2.667 0 0 1 -2.667 -2.667z"/>` +
		`<path d="M4.012 16.737a2.005 2.005 0 0 1 -1.012 -1.737v-10c0 -1.1 .9 -2 2 -2h10c.75 0 1.158 .385 1.5 1"/>` +
		`</svg>` +
		`<svg class="icon-copied hidden text-green-400" xmlns="http://www.w3.org/2000/svg" width="16" height="16" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round">` +
		`<path stroke="none" d="M0 0h24v24H0z" fill="none"/>` +
		`<path d="M7 9.667a2.667 2.667 0 0 1 2.667 -2.667h8.666a2.667 2.667 0 0 1 2.667 2.667v8.666a2.667 2.667 0 0 1 -2.667 2.667h-8.666a2.667 2.667 0 0 1 -2.667 -2.667z"/>` +
		`<path d="M4.012 16.737a2 2 0 0 1 -1.012 -1.737v-10c0 -1.1 .9 -2 2 -2h10c.75 0 1.158 .385 1.5 1"/>` +
		`<path d="M11 14l2 2l4 -4"/>` +
		`</svg>` +
		`</button>` +
		`</div>`))

type codeBlockView struct {
	Highlighted  template.HTML
	Source       string
	ResetDelayMS int64
	Idle         clipboard.State
	Copied       clipboard.State
}

// CodeBlockOptions configures the pre component.
type CodeBlockOptions struct {
	Highlighter highlight.Highlighter
	Themes      highlight.Themes
	ResetDelay  time.Duration
	Recorder    metrics.Recorder
}

// CodeBlockComponent renders pre elements holding a language-tagged code
// block as highlighted markup with a copy control. Other pre elements are
// returned unchanged. Highlighting errors are returned as-is.
func CodeBlockComponent(opts CodeBlockOptions) Component {
	if opts.Highlighter == nil {
		opts.Highlighter = highlight.NewChroma()
	}
	if opts.Themes == (highlight.Themes{}) {
		opts.Themes = highlight.DefaultThemes()
	}
	if opts.ResetDelay <= 0 {
		opts.ResetDelay = clipboard.DefaultResetDelay
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}

	return ComponentFunc(func(ctx context.Context, n *html.Node) (*html.Node, error) {
		block, ok := codeBlockFrom(n)
		if !ok {
			return n, nil
		}

		highlighted, err := opts.Highlighter.Highlight(ctx, block.Source, block.Language, opts.Themes)
		opts.Recorder.IncHighlight(block.Language, metrics.ResultFor(err))
		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		if err := codeBlockTemplate.Execute(&buf, codeBlockView{
			Highlighted:  template.HTML(highlighted), //nolint:gosec // produced by the highlighter
			Source:       block.Source,
			ResetDelayMS: opts.ResetDelay.Milliseconds(),
			Idle:         clipboard.StateIdle,
			Copied:       clipboard.StateCopied,
		}); err != nil {
			return nil, errors.WrapError(err, errors.CategoryRender, "failed to render code block").
				WithContext("language", block.Language).
				Build()
		}

		nodes, err := parseFragment(buf.String())
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryRender, "failed to parse code block").
				WithContext("language", block.Language).
				Build()
		}
		if len(nodes) != 1 {
			return nil, errors.InternalError("code block rendered to unexpected markup").Build()
		}
		return nodes[0], nil
	})
}
