package summary

import "errors"

// Common errors returned by the summary package
var (
	// ErrNoCredentials is returned when no API key is configured for the
	// backing language model
	ErrNoCredentials = errors.New("no language model credentials configured")

	// ErrGenerationFailed is returned when synopsis generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate synopsis from text")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrInvalidConfig is returned when the summarizer configuration is invalid
	ErrInvalidConfig = errors.New("invalid summarizer configuration")
)
