package report

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// DataSource is recorded in every artifact's metadata.
const DataSource = "OBIS"

// Artifact describes a retrievable query result.
type Artifact struct {
	ID          string
	MimeType    string
	Description string
	URIs        []string
	Metadata    Metadata
	Explain     []Resolution
	CreatedAt   time.Time
}

// Metadata is the descriptive part of an artifact.
type Metadata struct {
	DataSource           string `json:"data_source"`
	Endpoint             string `json:"endpoint"`
	RetrievedRecordCount int    `json:"retrieved_record_count"`
	TotalMatchingCount   int    `json:"total_matching_count"`
}

// Resolution explains how one free-text parameter became a canonical value.
type Resolution struct {
	Field        string
	Query        string
	Destination  string
	Value        string
	Score        float64
	Alternatives []string
}

// Builder constructs artifacts with unique, time-ordered ids.
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewBuilder creates a new artifact builder.
func NewBuilder() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewID returns a fresh ULID.
func (b *Builder) NewID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ulid.MustNew(ulid.Now(), b.entropy).String()
}

// Build creates a JSON artifact for a query result.
func (b *Builder) Build(endpoint, description, url string, retrieved, total int, explain []Resolution) Artifact {
	return Artifact{
		ID:          b.NewID(),
		MimeType:    "application/json",
		Description: description,
		URIs:        []string{url},
		Metadata: Metadata{
			DataSource:           DataSource,
			Endpoint:             endpoint,
			RetrievedRecordCount: retrieved,
			TotalMatchingCount:   total,
		},
		Explain:   explain,
		CreatedAt: time.Now().UTC(),
	}
}
