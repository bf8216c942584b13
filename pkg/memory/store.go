// Package memory provides the in-memory vector similarity store that
// backs the reasoning session: append-only insertion of thoughts and
// exact brute-force top-k cosine search over their embeddings.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/cogmap/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrInvalidArgument is returned for caller mistakes such as k < 1.
	ErrInvalidArgument = goerr.New("invalid argument")

	// ErrDimensionMismatch signals an embedder returning a vector of
	// the wrong length. This is a programming defect, not a runtime
	// condition; the operation halts without touching the store.
	ErrDimensionMismatch = goerr.New("embedding dimension mismatch")
)

// bytesPerFloat is the size of one float32 embedding component.
const bytesPerFloat = 4

// Store holds (id, embedding, text) records and answers top-k cosine
// similarity queries with an exact O(n*D) scan. The dimension D is
// fixed at construction from the injected embedder. All operations are
// guarded by a single lock; record counts stay small enough that no
// finer-grained coordination pays off.
type Store struct {
	mu        sync.RWMutex
	embedder  Embedder
	dimension int
	records   []*model.Thought
	nextID    model.RecordID
}

// New creates an empty store with the dimension of the given embedder.
func New(embedder Embedder) (*Store, error) {
	if embedder == nil {
		return nil, goerr.Wrap(ErrInvalidArgument, "embedder is required")
	}
	dim := embedder.Dimension()
	if dim <= 0 {
		return nil, goerr.Wrap(ErrInvalidArgument, "dimension must be positive", goerr.V("dimension", dim))
	}

	return &Store{
		embedder:  embedder,
		dimension: dim,
	}, nil
}

// Insert embeds text and appends it as a new record. The returned id
// is assigned monotonically from 0 and never reused, even after Clear.
func (s *Store) Insert(text string) (model.RecordID, error) {
	vec, err := s.embedder.Embed(text)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to embed text")
	}
	if len(vec) != s.dimension {
		return 0, goerr.Wrap(ErrDimensionMismatch, "embedder violated its dimension contract",
			goerr.V("got", len(vec)), goerr.V("want", s.dimension))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.records = append(s.records, &model.Thought{
		ID:        id,
		Text:      text,
		Embedding: vec,
		CreatedAt: time.Now(),
	})

	return id, nil
}

// Search returns up to k records ranked by descending cosine
// similarity to the query. Embeddings are unit vectors, so the score
// is a plain dot product in [-1, 1] and is never clamped or rescaled.
// Ties keep insertion order. An empty store yields an empty result.
func (s *Store) Search(query string, k int) ([]*model.SearchResult, error) {
	if k < 1 {
		return nil, goerr.Wrap(ErrInvalidArgument, "k must be at least 1", goerr.V("k", k))
	}

	vec, err := s.embedder.Embed(query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}
	if len(vec) != s.dimension {
		return nil, goerr.Wrap(ErrDimensionMismatch, "embedder violated its dimension contract",
			goerr.V("got", len(vec)), goerr.V("want", s.dimension))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*model.SearchResult, 0, len(s.records))
	for _, rec := range s.records {
		results = append(results, &model.SearchResult{
			ID:    rec.ID,
			Text:  rec.Text,
			Score: dot(vec, rec.Embedding),
		})
	}

	// Stable sort keeps insertion order for equal scores, making equal
	// queries reproducible.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Dimension returns the fixed embedding dimension of this store.
func (s *Store) Dimension() int {
	return s.dimension
}

// EstimatedMemoryBytes derives the embedding footprint from the record
// count; no real memory introspection is involved.
func (s *Store) EstimatedMemoryBytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)) * int64(s.dimension) * bytesPerFloat
}

// Stats returns the display statistics in one call.
func (s *Store) Stats() *model.MemoryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &model.MemoryStats{
		Count:       len(s.records),
		Dimension:   s.dimension,
		MemoryBytes: int64(len(s.records)) * int64(s.dimension) * bytesPerFloat,
	}
}

// Clear discards all records. The dimension and the id counter are
// kept, so ids are never reused across a clear.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
