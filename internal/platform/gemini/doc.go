// Package gemini implements generation.Generator on top of Google's Gemini
// API through the google.golang.org/genai client.
//
// Prompts are rendered from text/template definitions. Calls are retried
// with exponential backoff and jitter while the failure looks transient
// (network errors, HTTP 429 and 5xx); safety blocks and other 4xx answers
// are returned at once.
package gemini
