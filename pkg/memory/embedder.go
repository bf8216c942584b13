package memory

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sync"
)

// DefaultDimension matches the dimension of common sentence-embedding
// models and is used when no explicit dimension is configured.
const DefaultDimension = 384

// Embedder maps arbitrary text to a fixed-length unit vector. It is a
// stand-in for a real embedding model: vectors are suitable for
// similarity comparison but carry no semantics. Implementations must
// always return vectors of exactly Dimension() elements with L2 norm 1.
type Embedder interface {
	Embed(text string) ([]float32, error)
	Dimension() int
}

// HashEmbedder derives a deterministic embedding from a hash of the
// text, so identical input always yields an identical vector and a
// query matches its own stored text with similarity 1.0.
type HashEmbedder struct {
	dimension int
}

// NewHashEmbedder returns a deterministic embedder of the given
// dimension. Non-positive dimensions fall back to DefaultDimension.
func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &HashEmbedder{dimension: dimension}
}

// Embed returns a unit vector with sinusoidal components seeded by the
// FNV-1a hash of text. The empty string is valid input and maps to the
// vector derived from the hash offset basis.
func (e *HashEmbedder) Embed(text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, e.dimension)
	for i := range vec {
		// uint64 multiplication wraps, which is fine: the value only
		// needs to be deterministic per (text, i).
		vec[i] = float32(math.Sin(float64(seed*(uint64(i)+1)))*0.1 + 0.01)
	}
	return normalize(vec), nil
}

// Dimension returns the fixed embedding dimension.
func (e *HashEmbedder) Dimension() int {
	return e.dimension
}

// RandomEmbedder draws a fresh Gaussian vector for every call, like
// the original demo's mock embedding. Searches against it are
// essentially random; it exists to exercise the store without any
// determinism assumptions.
type RandomEmbedder struct {
	dimension int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomEmbedder returns a seeded random embedder of the given
// dimension. Non-positive dimensions fall back to DefaultDimension.
func NewRandomEmbedder(dimension int, seed uint64) *RandomEmbedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &RandomEmbedder{
		dimension: dimension,
		rng:       rand.New(rand.NewPCG(seed, seed)),
	}
}

// Embed returns a freshly drawn unit vector. The input text is ignored
// apart from satisfying the Embedder contract.
func (e *RandomEmbedder) Embed(_ string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	vec := make([]float32, e.dimension)
	for i := range vec {
		vec[i] = float32(e.rng.NormFloat64())
	}
	return normalize(vec), nil
}

// Dimension returns the fixed embedding dimension.
func (e *RandomEmbedder) Dimension() int {
	return e.dimension
}

// normalize scales vec to unit L2 norm in place. A zero vector cannot
// be normalized; it maps to the first basis vector so every embedding
// has norm 1.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		vec[0] = 1
		return vec
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
