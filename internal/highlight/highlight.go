// Package highlight converts source code into themed HTML.
//
// Each call renders two variants of the same code, one per theme, so pages can
// switch between them with a prefers-color-scheme media query.
package highlight

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
)

// Default theme names. They are chroma style names.
const (
	DefaultDarkTheme  = "github-dark"
	DefaultLightTheme = "github"
)

// Themes names the dark and light styles used for a highlight call.
type Themes struct {
	Dark  string `yaml:"dark"`
	Light string `yaml:"light"`
}

// DefaultThemes returns the themes used when none are configured.
func DefaultThemes() Themes {
	return Themes{Dark: DefaultDarkTheme, Light: DefaultLightTheme}
}

// Highlighter turns code in a given language into themed HTML.
type Highlighter interface {
	Highlight(ctx context.Context, code, language string, themes Themes) (string, error)
}

// Chroma is a Highlighter backed by chroma lexers and styles.
type Chroma struct {
	formatter *chromahtml.Formatter
}

// NewChroma creates a chroma-backed highlighter emitting inline styles.
func NewChroma() *Chroma {
	return &Chroma{
		formatter: chromahtml.New(
			chromahtml.WithClasses(false),
			chromahtml.TabWidth(4),
		),
	}
}

// ValidateThemes reports an error when either theme is not a registered style.
func ValidateThemes(themes Themes) error {
	for _, name := range []string{themes.Dark, themes.Light} {
		if _, ok := styles.Registry[strings.ToLower(name)]; !ok {
			return errors.ConfigError("unknown highlight theme").
				WithContext("theme", name).
				Build()
		}
	}
	return nil
}

// Highlight renders code with both themes. It fails when the language has no
// lexer or a theme is unknown; callers are expected to let that error surface.
func (c *Chroma) Highlight(ctx context.Context, code, language string, themes Themes) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return "", errors.HighlightError("unsupported language").
			WithContext("language", language).
			Build()
	}
	if err := ValidateThemes(themes); err != nil {
		return "", err
	}
	lexer = chroma.Coalesce(lexer)

	var b strings.Builder
	fmt.Fprintf(&b, `<div class="highlight" data-language="%s">`, html.EscapeString(language))
	for _, variant := range []struct{ class, theme string }{
		{"highlight-dark", themes.Dark},
		{"highlight-light", themes.Light},
	} {
		iterator, err := lexer.Tokenise(nil, code)
		if err != nil {
			return "", errors.WrapError(err, errors.CategoryHighlight, "tokenise failed").
				WithContext("language", language).
				Build()
		}
		fmt.Fprintf(&b, `<div class="%s">`, variant.class)
		if err := c.formatter.Format(&b, styles.Get(variant.theme), iterator); err != nil {
			return "", errors.WrapError(err, errors.CategoryHighlight, "format failed").
				WithContext("language", language).
				WithContext("theme", variant.theme).
				Build()
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
	return b.String(), nil
}
