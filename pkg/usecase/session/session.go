// Package session ties one reasoning agent, one vector memory, and one
// mind map together for a single interactive session.
package session

import (
	"sync"

	"github.com/m-mizutani/cogmap/pkg/agent"
	"github.com/m-mizutani/cogmap/pkg/memory"
	"github.com/m-mizutani/cogmap/pkg/model"
)

// Session owns the per-session state. The store carries its own lock;
// the session mutex guards the graph and the step log.
type Session struct {
	mu    sync.Mutex
	agent agent.Agent
	store *memory.Store
	graph *model.MindMap
	steps []*model.ReasoningStep
}

// New creates a session around the given agent and store.
func New(a agent.Agent, store *memory.Store) *Session {
	return &Session{
		agent: a,
		store: store,
		graph: model.NewMindMap(),
	}
}

// Steps returns the accumulated reasoning steps in generation order.
func (s *Session) Steps() []*model.ReasoningStep {
	s.mu.Lock()
	defer s.mu.Unlock()

	steps := make([]*model.ReasoningStep, len(s.steps))
	copy(steps, s.steps)
	return steps
}

// Graph returns the current mind map payload.
func (s *Session) Graph() *model.GraphPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Payload()
}

// Stats returns the vector memory statistics.
func (s *Session) Stats() *model.MemoryStats {
	return s.store.Stats()
}

// Clear resets the memory, the mind map, and the step log. Record and
// node id counters are preserved.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Clear()
	s.graph.Clear()
	s.steps = nil
}
