package session

import (
	"context"
	"fmt"

	"github.com/m-mizutani/cogmap/pkg/model"
	"github.com/m-mizutani/cogmap/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// ReasonResult holds the outcome of one reasoning run: the steps added
// by this call and the mind map as of its completion.
type ReasonResult struct {
	Query string                 `json:"query"`
	Steps []*model.ReasoningStep `json:"steps"`
	Graph *model.GraphPayload    `json:"graph"`
}

// Reason generates n reasoning steps for query, stores each step in
// the vector memory, and chains them into the mind map under a fresh
// query node.
func (s *Session) Reason(ctx context.Context, query string, n int) (*ReasonResult, error) {
	if query == "" {
		return nil, goerr.New("query is required")
	}

	logging.From(ctx).Info("generating reasoning steps", "query", query, "steps", n)

	// The agent may call out to an LLM; keep it outside the lock.
	generated, err := s.agent.GenerateSteps(ctx, query, n)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate reasoning steps", goerr.V("query", query))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rootID := s.graph.AddNode("Query: "+query, model.NodeTypeQuery, model.NoParent)

	parentID := rootID
	steps := make([]*model.ReasoningStep, 0, len(generated))
	for i, text := range generated {
		recordID, err := s.store.Insert(text)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to store reasoning step", goerr.V("step", i+1))
		}

		parentID = s.graph.AddNode(fmt.Sprintf("Step %d: %s", i+1, text), model.NodeTypeReasoning, parentID)

		step := &model.ReasoningStep{
			Step:     i + 1,
			Text:     text,
			RecordID: recordID,
		}
		steps = append(steps, step)
		s.steps = append(s.steps, step)
	}

	return &ReasonResult{
		Query: query,
		Steps: steps,
		Graph: s.graph.Payload(),
	}, nil
}
