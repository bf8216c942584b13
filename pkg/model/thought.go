package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionID string

// NewSessionID generates a new unique SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// RecordID identifies one stored thought in the vector memory. IDs are
// assigned monotonically from 0 and never reused within a session.
type RecordID int64

// Thought is one stored thought: the source text plus its embedding
// vector. The embedding dimension is fixed by the owning store.
type Thought struct {
	ID        RecordID  `json:"id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchResult is one ranked hit from a similarity search.
type SearchResult struct {
	ID    RecordID `json:"id"`
	Text  string   `json:"text"`
	Score float64  `json:"score"`
}

// ReasoningStep cross-references a generated reasoning step with the
// vector memory record that stores it.
type ReasoningStep struct {
	Step     int      `json:"step"`
	Text     string   `json:"text"`
	RecordID RecordID `json:"vector_id"`
}

// MemoryStats describes the state of a vector memory for display.
// MemoryBytes is derived from count and dimension, not measured.
type MemoryStats struct {
	Count       int   `json:"count"`
	Dimension   int   `json:"dimension"`
	MemoryBytes int64 `json:"memory_bytes"`
}
