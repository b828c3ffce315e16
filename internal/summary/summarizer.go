// Package summary defines the core interfaces and types for generating
// paper synopses from abstracts. Implementations live under
// internal/platform; the digest pipeline depends only on this package.
package summary

import "context"

// Summarizer defines the interface for producing a structured synopsis
// from a paper abstract.
type Summarizer interface {
	// Summarize generates a synopsis for the given abstract text.
	// Implementations must degrade rather than fail where possible:
	// if generation cannot proceed, callers fall back to Fallback.
	Summarize(ctx context.Context, text string) (string, error)
}
