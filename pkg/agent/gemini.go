package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/cogmap/pkg/adapter"
	"github.com/m-mizutani/cogmap/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// Gemini asks the Gemini API to break a query into reasoning steps.
// When the API call fails or returns nothing usable, it logs a warning
// and delegates to the fallback generator instead of surfacing the
// error; the demo keeps working without credentials.
type Gemini struct {
	gemini   adapter.Gemini
	fallback Agent
}

// GeminiOption is a functional option for Gemini
type GeminiOption func(*Gemini)

// WithFallback replaces the default mock fallback generator
func WithFallback(fallback Agent) GeminiOption {
	return func(g *Gemini) {
		g.fallback = fallback
	}
}

// NewGemini creates a Gemini-backed reasoning generator
func NewGemini(gemini adapter.Gemini, opts ...GeminiOption) *Gemini {
	g := &Gemini{
		gemini:   gemini,
		fallback: NewMock(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// GenerateSteps prompts the model for n "Step N:" lines and parses the
// response.
func (g *Gemini) GenerateSteps(ctx context.Context, query string, n int) ([]string, error) {
	if n < 1 {
		return nil, goerr.New("step count must be at least 1", goerr.V("n", n))
	}

	prompt := fmt.Sprintf(`Break down your reasoning about this query into %d distinct thinking steps.
Query: %s

Provide each step as a separate line starting with 'Step N:'.
Focus on showing your cognitive process.`, n, query)

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := g.gemini.GenerateContent(ctx, contents, nil)
	if err != nil {
		logging.From(ctx).Warn("gemini generation failed, falling back to mock reasoning",
			"error", err, "query", query)
		return g.fallback.GenerateSteps(ctx, query, n)
	}

	steps := parseSteps(responseText(resp), n)
	if len(steps) == 0 {
		logging.From(ctx).Warn("gemini returned no usable steps, falling back to mock reasoning",
			"query", query)
		return g.fallback.GenerateSteps(ctx, query, n)
	}

	return steps, nil
}

// parseSteps collects up to n step lines from the model output. Lines
// mentioning "step" are always taken; other non-empty lines fill the
// remainder in order.
func parseSteps(text string, n int) []string {
	var steps []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(strings.ToLower(line), "step") || len(steps) < n {
			steps = append(steps, line)
		}
		if len(steps) >= n {
			break
		}
	}
	return steps
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// ParseStepsForTest is a test helper that exposes parseSteps
func ParseStepsForTest(text string, n int) []string {
	return parseSteps(text, n)
}
