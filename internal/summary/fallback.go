package summary

// fallbackPrefix marks synopses produced without a language model, so
// readers can tell a truncated abstract from a generated summary.
const fallbackPrefix = "[Auto summary unavailable] "

// fallbackLimit is the number of abstract runes kept in a fallback synopsis.
const fallbackLimit = 200

// Fallback produces a deterministic synopsis from the abstract itself:
// a fixed marker followed by the first 200 runes of the text. It is used
// whenever no credentials are configured or generation fails, so digest
// delivery never blocks on the language model.
func Fallback(text string) string {
	runes := []rune(text)
	if len(runes) <= fallbackLimit {
		return fallbackPrefix + text
	}
	return fallbackPrefix + string(runes[:fallbackLimit]) + "..."
}
