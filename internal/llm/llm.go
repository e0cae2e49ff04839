package llm

import (
	"context"
	"errors"
)

// ErrUnavailable marks a provider that cannot serve requests at all, as
// opposed to a transient API failure. Callers degrade to the knowledge-base
// only path when they see it.
var ErrUnavailable = errors.New("llm unavailable")

// Request is a single completion request. System carries the assistant
// persona; Prompt is the fully rendered user message including any
// conversation context.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Client is implemented by each provider package.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
