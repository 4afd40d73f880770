// Package gemini adapts Google's Gemini API to the generation.Completer
// interface. Requests use JSON output mode with a response schema derived
// from the generation schema, and API failures are mapped onto the
// generation error kinds.
package gemini
