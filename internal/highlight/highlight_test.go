package highlight

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
)

func TestChromaHighlight(t *testing.T) {
	h := NewChroma()

	out, err := h.Highlight(context.Background(), "print(1)", "python", DefaultThemes())
	require.NoError(t, err)

	require.Contains(t, out, `data-language="python"`)
	require.Contains(t, out, `class="highlight-dark"`)
	require.Contains(t, out, `class="highlight-light"`)
	require.Equal(t, 2, strings.Count(out, "<pre"), "one pre per theme")
	require.Contains(t, out, "print")
}

func TestChromaHighlight_UnknownLanguage(t *testing.T) {
	_, err := NewChroma().Highlight(context.Background(), "x", "definitely-not-a-language", DefaultThemes())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryHighlight))
}

func TestChromaHighlight_UnknownTheme(t *testing.T) {
	_, err := NewChroma().Highlight(context.Background(), "x := 1", "go", Themes{Dark: "nope", Light: "github"})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestChromaHighlight_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewChroma().Highlight(ctx, "x := 1", "go", DefaultThemes())
	require.ErrorIs(t, err, context.Canceled)
}

func TestValidateThemes(t *testing.T) {
	require.NoError(t, ValidateThemes(DefaultThemes()))
	require.Error(t, ValidateThemes(Themes{Dark: "github-dark", Light: ""}))
}
