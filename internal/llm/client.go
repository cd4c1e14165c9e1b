// Package llm is the language-model capability consumed by the generation
// pipeline: submit a prompt, receive generated text. The pipeline never
// talks to a vendor SDK directly; it takes a Client so tests can script
// deterministic responses.
package llm

import "context"

// Options tunes one generation call.
type Options struct {
	// Provider optionally routes to a named provider; empty uses the default.
	Provider string
	// MaxTokens bounds the response. Writing calls need 16k-class budgets,
	// trigger calls ~1k.
	MaxTokens int
	// Temperature in [0,2]; triggers run cold, writings run warm.
	Temperature float64
	// MaxRetries bounds transport-level retries inside the client.
	MaxRetries int
	// SystemPrompt optionally prepends a system message.
	SystemPrompt string
}

// Request is one generation call. Label names the call in logs
// ("trigger:kabbalah", "expansion:3").
type Request struct {
	Prompt  string
	Label   string
	Options Options
}

// Client generates text from a prompt. Implementations retry transient
// transport failures themselves, bounded by Options.MaxRetries.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}
