// Package errors provides the classified error primitives used across the site.
//
// A ClassifiedError carries a category, a severity and structured context.
// Errors are created through the fluent ErrorBuilder and presented by the
// HTTP and CLI adapters.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryHighlight, "highlight failed").
//		WithContext("language", lang).
//		Build()
package errors
