// Package agent provides reasoning step generators: a template-based
// mock and a Gemini-backed implementation that falls back to the mock
// when the API is unavailable.
package agent

import "context"

// Agent generates an ordered sequence of reasoning steps for a query.
type Agent interface {
	GenerateSteps(ctx context.Context, query string, n int) ([]string, error)
}
