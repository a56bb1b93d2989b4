package report

import (
	"context"
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	r.Log(ctx, "Generating search parameters", nil)
	r.Log(ctx, "Initial params generated", map[string]any{"institute": "VLIZ"})
	r.Artifact(ctx, Artifact{ID: "x"})

	assert.Equal(t, []string{"Generating search parameters", "Initial params generated"}, r.Messages())
	assert.Equal(t, map[string]any{"institute": "VLIZ"}, r.Entries()[1].Data)
	require.Len(t, r.Artifacts(), 1)
}

func TestRecorderConcurrent(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Log(context.Background(), "m", nil)
		}()
	}
	wg.Wait()
	assert.Len(t, r.Messages(), 50)
}

func TestZapReporter(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	z := NewZap(zap.New(core).Sugar())
	ctx := context.Background()

	z.Log(ctx, "Querying OBIS", nil)
	z.Artifact(ctx, Artifact{ID: "a1", Metadata: Metadata{RetrievedRecordCount: 10, TotalMatchingCount: 200}})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Querying OBIS", entries[0].Message)
	assert.Equal(t, "artifact", entries[1].Message)
	assert.Equal(t, int64(200), entries[1].ContextMap()["total"])
}

func TestTee(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	tee := Tee{a, b}
	tee.Log(context.Background(), "hello", nil)
	tee.Artifact(context.Background(), Artifact{})
	assert.Len(t, a.Messages(), 1)
	assert.Len(t, b.Artifacts(), 1)
}

func TestBuilderIDsAreUniqueAndOrdered(t *testing.T) {
	b := NewBuilder()
	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 1000; i++ {
		id := b.NewID()
		_, err := ulid.Parse(id)
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		assert.Greater(t, id, prev)
		seen[id] = true
		prev = id
	}
}

func TestBuild(t *testing.T) {
	a := NewBuilder().Build("occurrence", "Occurrence records", "https://api.obis.org/occurrence?areaid=5", 100, 2500,
		[]Resolution{{Field: "area", Query: "atlantic", Destination: "areaid", Value: "5"}})

	assert.Equal(t, "application/json", a.MimeType)
	assert.Equal(t, []string{"https://api.obis.org/occurrence?areaid=5"}, a.URIs)
	assert.Equal(t, Metadata{DataSource: "OBIS", Endpoint: "occurrence", RetrievedRecordCount: 100, TotalMatchingCount: 2500}, a.Metadata)
	assert.Len(t, a.Explain, 1)
	assert.False(t, a.CreatedAt.IsZero())
}
