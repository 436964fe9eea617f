package clipboard

import (
	"context"

	"github.com/atotto/clipboard"

	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
)

// Writer writes text to a clipboard.
type Writer interface {
	WriteText(ctx context.Context, text string) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(ctx context.Context, text string) error

// WriteText calls f.
func (f WriterFunc) WriteText(ctx context.Context, text string) error { return f(ctx, text) }

// SystemWriter writes to the operating system clipboard.
type SystemWriter struct{}

// WriteText copies text to the OS clipboard.
func (SystemWriter) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if clipboard.Unsupported {
		return errors.ClipboardError("clipboard is not available on this system").Build()
	}
	if err := clipboard.WriteAll(text); err != nil {
		return errors.WrapError(err, errors.CategoryClipboard, "clipboard write failed").Warning().Build()
	}
	return nil
}
