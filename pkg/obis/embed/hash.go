package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// DefaultDimensions is the vector size of the hashing embedder.
const DefaultDimensions = 256

// Hash is a deterministic, offline embedder. It hashes word tokens and
// character trigrams into a fixed number of buckets and L2-normalises the
// result, so names that share words or spelling land close together.
type Hash struct {
	Dimensions int
}

// NewHash returns a hashing embedder with dims buckets (DefaultDimensions
// when dims <= 0).
func NewHash(dims int) *Hash {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Hash{Dimensions: dims}
}

// ModelID implements Embedder.
func (h *Hash) ModelID() string { return "hash-trigram-" + strconv.Itoa(h.dims()) }

// Embed implements Embedder.
func (h *Hash) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.vector(t)
	}
	return out, nil
}

func (h *Hash) dims() int {
	if h.Dimensions <= 0 {
		return DefaultDimensions
	}
	return h.Dimensions
}

func (h *Hash) vector(text string) []float32 {
	dims := h.dims()
	vec := make([]float32, dims)

	words := strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		add(vec, "w:"+w, 1.0)
		padded := []rune(" " + w + " ")
		for i := 0; i+3 <= len(padded); i++ {
			add(vec, "t:"+string(padded[i:i+3]), 0.5)
		}
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}

func add(vec []float32, feature string, weight float32) {
	f := fnv.New64a()
	f.Write([]byte(feature))
	sum := f.Sum64()
	idx := int(sum % uint64(len(vec)))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}
