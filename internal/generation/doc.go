// Package generation is the boundary between the application and the
// AI-backed content generator. It turns a topic into flashcards or
// learning-path modules through a provider-neutral Completer, validating
// every model response against a JSON schema before it reaches the core.
//
// Provider adapters live in internal/platform (gemini, openai, anthropic).
package generation
