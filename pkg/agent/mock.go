package agent

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// defaultTemplates are the built-in reasoning templates. Each must
// contain exactly one %s placeholder for the query.
var defaultTemplates = []string{
	"Analyzing the problem: %s",
	"Breaking down into components: %s",
	"Considering approach: %s",
	"Evaluating options for: %s",
	"Synthesizing solution for: %s",
	"Validating reasoning about: %s",
}

// Mock generates reasoning steps from fixed templates. It needs no
// network access and is the fallback for the Gemini agent.
type Mock struct {
	templates []string
}

// MockOption is a functional option for Mock
type MockOption func(*Mock)

// WithTemplates replaces the built-in reasoning templates
func WithTemplates(templates []string) MockOption {
	return func(m *Mock) {
		if len(templates) > 0 {
			m.templates = templates
		}
	}
}

// NewMock creates a template-based reasoning generator
func NewMock(opts ...MockOption) *Mock {
	m := &Mock{
		templates: defaultTemplates,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// GenerateSteps formats n steps, cycling through the templates.
func (m *Mock) GenerateSteps(_ context.Context, query string, n int) ([]string, error) {
	if n < 1 {
		return nil, goerr.New("step count must be at least 1", goerr.V("n", n))
	}

	steps := make([]string, 0, n)
	for i := 0; i < n; i++ {
		tmpl := m.templates[i%len(m.templates)]
		steps = append(steps, fmt.Sprintf(tmpl, fmt.Sprintf("'%s' - step %d", query, i+1)))
	}
	return steps, nil
}
