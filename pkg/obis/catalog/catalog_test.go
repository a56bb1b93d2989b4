package catalog_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/obisquery/pkg/obis/catalog"
	"github.com/cognicore/obisquery/pkg/obis/catalog/memstore"
	"github.com/cognicore/obisquery/pkg/obis/internalerr"
)

type fakeSource struct {
	calls atomic.Int32
	delay time.Duration
	sets  map[catalog.Kind][]catalog.Entity
	err   error
}

func (f *fakeSource) Fetch(ctx context.Context, kind catalog.Kind) ([]catalog.Entity, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.sets[kind], nil
}

func institutes() []catalog.Entity {
	return []catalog.Entity{
		{ID: "19482", Name: "Flanders Marine Institute", Extra: "Belgium"},
		{ID: "", Name: "Unregistered Lab", Extra: "Nowhere"},
		{ID: "42", Name: "Marine Institute"},
	}
}

func TestGetPreparesInstitutes(t *testing.T) {
	src := &fakeSource{sets: map[catalog.Kind][]catalog.Entity{catalog.KindInstitute: institutes()}}
	c := catalog.New(src, catalog.Options{})

	got, err := c.Get(context.Background(), catalog.KindInstitute)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Flanders Marine Institute - Belgium", got[0].Name)
	assert.Equal(t, "Marine Institute", got[1].Name)
	assert.Equal(t, catalog.KindInstitute, got[0].Kind)
}

func TestGetCachesAfterFirstLoad(t *testing.T) {
	src := &fakeSource{sets: map[catalog.Kind][]catalog.Entity{
		catalog.KindArea: {{ID: "5", Name: "Atlantic Ocean", Type: "ocean"}},
	}}
	st := memstore.New()
	c := catalog.New(src, catalog.Options{Store: st})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.Get(ctx, catalog.KindArea)
		require.NoError(t, err)
		assert.Equal(t, "ocean", got[0].Type)
	}
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, 1, st.Saves())

	// A fresh catalog over the same store reads the artifact instead of upstream.
	c2 := catalog.New(src, catalog.Options{Store: st})
	_, err := c2.Get(ctx, catalog.KindArea)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestGetSingleFlight(t *testing.T) {
	src := &fakeSource{
		delay: 50 * time.Millisecond,
		sets:  map[catalog.Kind][]catalog.Entity{catalog.KindArea: {{ID: "1", Name: "Baltic Sea"}}},
	}
	c := catalog.New(src, catalog.Options{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Get(context.Background(), catalog.KindArea)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestGetEmptyIsNotCached(t *testing.T) {
	src := &fakeSource{sets: map[catalog.Kind][]catalog.Entity{}}
	st := memstore.New()
	c := catalog.New(src, catalog.Options{Store: st})
	ctx := context.Background()

	_, err := c.Get(ctx, catalog.KindArea)
	assert.True(t, errors.Is(err, internalerr.ErrEmptyCatalog))
	_, err = c.Get(ctx, catalog.KindArea)
	assert.True(t, errors.Is(err, internalerr.ErrEmptyCatalog))

	assert.Equal(t, int32(2), src.calls.Load(), "each call re-attempts the fetch")
	assert.Equal(t, 0, st.Saves())
}

func TestGetPropagatesUpstreamError(t *testing.T) {
	src := &fakeSource{err: internalerr.Upstream(errors.New("connection refused"), "obis area list")}
	c := catalog.New(src, catalog.Options{})

	_, err := c.Get(context.Background(), catalog.KindArea)
	require.Error(t, err)
	assert.True(t, internalerr.IsUpstream(err))
}

func TestRefreshRefetches(t *testing.T) {
	src := &fakeSource{sets: map[catalog.Kind][]catalog.Entity{catalog.KindArea: {{ID: "1", Name: "A"}}}}
	c := catalog.New(src, catalog.Options{Store: memstore.New()})
	ctx := context.Background()

	_, err := c.Get(ctx, catalog.KindArea)
	require.NoError(t, err)

	src.sets[catalog.KindArea] = []catalog.Entity{{ID: "2", Name: "B"}}
	got, err := c.Refresh(ctx, catalog.KindArea)
	require.NoError(t, err)
	assert.Equal(t, "2", got[0].ID)

	got, err = c.Get(ctx, catalog.KindArea)
	require.NoError(t, err)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestRefreshKeepsPreviousSetOnFailure(t *testing.T) {
	src := &fakeSource{sets: map[catalog.Kind][]catalog.Entity{catalog.KindArea: {{ID: "1", Name: "A"}}}}
	st := memstore.New()
	c := catalog.New(src, catalog.Options{Store: st})
	ctx := context.Background()

	_, err := c.Get(ctx, catalog.KindArea)
	require.NoError(t, err)

	src.sets[catalog.KindArea] = nil
	_, err = c.Refresh(ctx, catalog.KindArea)
	assert.ErrorIs(t, err, internalerr.ErrEmptyCatalog)

	src.err = internalerr.Upstream(errors.New("timeout"), "obis area list")
	_, err = c.Refresh(ctx, catalog.KindArea)
	assert.True(t, internalerr.IsUpstream(err))

	got, err := c.Get(ctx, catalog.KindArea)
	require.NoError(t, err)
	assert.Equal(t, "1", got[0].ID)
	stored, ok, err := st.Load(ctx, catalog.KindArea)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", stored[0].ID)
	assert.Equal(t, 1, st.Saves())
}

func TestWarmAndTeardown(t *testing.T) {
	src := &fakeSource{sets: map[catalog.Kind][]catalog.Entity{
		catalog.KindArea:      {{ID: "1", Name: "A"}},
		catalog.KindInstitute: {{ID: "2", Name: "B"}},
	}}
	st := memstore.New()
	c := catalog.New(src, catalog.Options{Store: st})
	ctx := context.Background()

	require.NoError(t, c.Warm(ctx))
	assert.Equal(t, int32(2), src.calls.Load())

	require.NoError(t, c.Teardown(ctx))
	_, ok, _ := st.Load(ctx, catalog.KindArea)
	assert.False(t, ok)

	_, err := c.Get(ctx, catalog.KindArea)
	require.NoError(t, err)
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestGetHonoursCancellation(t *testing.T) {
	src := &fakeSource{
		delay: 200 * time.Millisecond,
		sets:  map[catalog.Kind][]catalog.Entity{catalog.KindArea: {{ID: "1", Name: "A"}}},
	}
	c := catalog.New(src, catalog.Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Get(ctx, catalog.KindArea)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
