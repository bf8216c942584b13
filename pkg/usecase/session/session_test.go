package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/cogmap/pkg/agent"
	"github.com/m-mizutani/cogmap/pkg/memory"
	"github.com/m-mizutani/cogmap/pkg/model"
	"github.com/m-mizutani/cogmap/pkg/usecase/session"
	"github.com/m-mizutani/gt"
)

// failingAgent is a mock implementation of agent.Agent for testing
type failingAgent struct{}

func (a *failingAgent) GenerateSteps(_ context.Context, _ string, _ int) ([]string, error) {
	return nil, errors.New("agent broke")
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	store, err := memory.New(memory.NewHashEmbedder(8))
	gt.NoError(t, err)
	return session.New(agent.NewMock(), store)
}

func TestReason(t *testing.T) {
	s := newTestSession(t)

	result, err := s.Reason(context.Background(), "what is consciousness", 5)
	gt.NoError(t, err)
	gt.Equal(t, result.Query, "what is consciousness")
	gt.A(t, result.Steps).Length(5)

	// One query node plus one node per step, chained with edges
	gt.A(t, result.Graph.Nodes).Length(6)
	gt.A(t, result.Graph.Edges).Length(5)
	gt.Equal(t, result.Graph.Nodes[0].Type, model.NodeTypeQuery)
	gt.S(t, result.Graph.Nodes[0].Label).Contains("Query: what is consciousness")
	gt.Equal(t, result.Graph.Nodes[1].Type, model.NodeTypeReasoning)

	// First step node hangs off the query node, the rest chain
	gt.Equal(t, result.Graph.Edges[0].Source, result.Graph.Nodes[0].ID)
	gt.Equal(t, result.Graph.Edges[1].Source, result.Graph.Nodes[1].ID)

	// Every step landed in the vector memory
	stats := s.Stats()
	gt.Equal(t, stats.Count, 5)
	gt.Equal(t, stats.Dimension, 8)

	for i, step := range result.Steps {
		gt.Equal(t, step.Step, i+1)
		gt.Equal(t, step.RecordID, model.RecordID(i))
	}
}

func TestReasonAccumulates(t *testing.T) {
	s := newTestSession(t)

	_, err := s.Reason(context.Background(), "first", 3)
	gt.NoError(t, err)
	second, err := s.Reason(context.Background(), "second", 2)
	gt.NoError(t, err)

	// The second run returns only its own steps
	gt.A(t, second.Steps).Length(2)
	gt.Equal(t, second.Steps[0].RecordID, model.RecordID(3))

	// But the session accumulates everything
	gt.A(t, s.Steps()).Length(5)
	gt.Equal(t, s.Stats().Count, 5)

	graph := s.Graph()
	gt.A(t, graph.Nodes).Length(7) // 2 query nodes + 5 step nodes
	gt.A(t, graph.Edges).Length(5)
}

func TestReasonEmptyQuery(t *testing.T) {
	s := newTestSession(t)

	_, err := s.Reason(context.Background(), "", 3)
	gt.Error(t, err)
	gt.Equal(t, s.Stats().Count, 0)
}

func TestReasonAgentFailure(t *testing.T) {
	store, err := memory.New(memory.NewHashEmbedder(8))
	gt.NoError(t, err)
	s := session.New(&failingAgent{}, store)

	_, err = s.Reason(context.Background(), "query", 3)
	gt.Error(t, err)
	gt.Equal(t, s.Stats().Count, 0)
	gt.A(t, s.Graph().Nodes).Length(0)
}

func TestSearch(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	result, err := s.Reason(ctx, "origins of language", 4)
	gt.NoError(t, err)

	hits, err := s.Search(ctx, result.Steps[1].Text, 2)
	gt.NoError(t, err)
	gt.A(t, hits).Length(2)
	gt.Equal(t, hits[0].ID, result.Steps[1].RecordID)
}

func TestSearchEmptySession(t *testing.T) {
	s := newTestSession(t)

	hits, err := s.Search(context.Background(), "anything", 3)
	gt.NoError(t, err)
	gt.A(t, hits).Length(0)
}

func TestClear(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	_, err := s.Reason(ctx, "to be cleared", 3)
	gt.NoError(t, err)

	s.Clear()
	gt.Equal(t, s.Stats().Count, 0)
	gt.A(t, s.Steps()).Length(0)
	gt.A(t, s.Graph().Nodes).Length(0)
	gt.A(t, s.Graph().Edges).Length(0)

	hits, err := s.Search(ctx, "to be cleared", 1)
	gt.NoError(t, err)
	gt.A(t, hits).Length(0)

	// Record ids keep counting after a clear
	result, err := s.Reason(ctx, "fresh start", 1)
	gt.NoError(t, err)
	gt.Equal(t, result.Steps[0].RecordID, model.RecordID(3))
}
