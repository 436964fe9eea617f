package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "site.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		file, exists := err.Context().GetString("file")
		if !exists || file != "site.yaml" {
			t.Errorf("expected context file=site.yaml, got %v", file)
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := NotFoundError("post not found").WithContext("slug", "hello").Build()
		wrapped := fmt.Errorf("render page: %w", inner)

		if !IsClassified(wrapped) {
			t.Fatal("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryNotFound) {
			t.Error("expected not_found category")
		}
		if !HasSeverity(wrapped, SeverityWarning) {
			t.Error("expected warning severity")
		}
	})

	t.Run("WithContext does not mutate original", func(t *testing.T) {
		base := RenderError("boom").Build()
		derived := base.WithContext("slug", "x")

		if _, ok := base.Context().Get("slug"); ok {
			t.Error("base error context was mutated")
		}
		if v, _ := derived.Context().GetString("slug"); v != "x" {
			t.Errorf("expected derived context slug=x, got %q", v)
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Wraps cause", func(t *testing.T) {
		cause := errors.New("unknown lexer")
		err := WrapError(cause, CategoryHighlight, "highlight failed").
			WithContext("language", "klingon").
			Build()

		if !errors.Is(err, cause) {
			t.Error("expected error to wrap cause")
		}
		if err.Context()["language"] != "klingon" {
			t.Errorf("expected language context, got %v", err.Context())
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal},
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityError},
			{"NotFoundError", NotFoundError("test"), CategoryNotFound, SeverityWarning},
			{"ContentError", ContentError("test"), CategoryContent, SeverityError},
			{"RenderError", RenderError("test"), CategoryRender, SeverityError},
			{"HighlightError", HighlightError("test"), CategoryHighlight, SeverityError},
			{"ClipboardError", ClipboardError("test"), CategoryClipboard, SeverityWarning},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityError},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if err.Severity() != tt.severity {
					t.Errorf("expected severity %s, got %s", tt.severity, err.Severity())
				}
			})
		}
	})
}
