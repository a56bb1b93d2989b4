package params

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
)

func endpoint(t *testing.T, name string) *Endpoint {
	t.Helper()
	e, ok := DefaultRegistry().Lookup(name)
	require.True(t, ok, "endpoint %s", name)
	return e
}

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"2021-03-04": "2021-03-04",
		"2021/03/04": "2021-03-04",
		"04-03-2021": "2021-03-04",
		"04/03/2021": "2021-03-04",
	}
	for in, want := range cases {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDate("March 4th")
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}

func TestNormalizeCoercesAndDrops(t *testing.T) {
	in := MapOf(
		Pair{"scientificname", "Delphinus delphis"},
		Pair{"startdate", "01/02/2010"},
		Pair{"size", "20000"},
		Pair{"redlist", "true"},
		Pair{"colour", "blue"},
		Pair{"geometry", nil},
		Pair{"institute", "VLIZ"},
	)

	out, warnings, err := Normalize(endpoint(t, Occurrence), in)
	require.NoError(t, err)

	assert.Equal(t, []string{"scientificname", "startdate", "size", "redlist", "institute"}, out.Keys())
	date, _ := out.Get("startdate")
	assert.Equal(t, "2010-02-01", date)
	size, _ := out.Get("size")
	assert.Equal(t, int64(MaxSize), size)
	redlist, _ := out.Get("redlist")
	assert.Equal(t, true, redlist)
	assert.Len(t, warnings, 2)
}

func TestNormalizeDepthOrder(t *testing.T) {
	in := MapOf(Pair{"startdepth", 100}, Pair{"enddepth", 50})
	_, _, err := Normalize(endpoint(t, Facet), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
	assert.Contains(t, errors.FlattenHints(err), "enddepth must be greater than or equal to startdepth")

	in = MapOf(Pair{"startdepth", 50}, Pair{"enddepth", 50})
	_, _, err = Normalize(endpoint(t, Facet), in)
	assert.NoError(t, err)
}

func TestNormalizeUUID(t *testing.T) {
	e := endpoint(t, Occurrence)

	_, _, err := Normalize(e, MapOf(Pair{"datasetid", "not-a-uuid"}))
	assert.Error(t, err)

	out, _, err := Normalize(e, MapOf(Pair{"datasetid", "00000002-3CEF-4BC1-8540-2C20B4798855"}))
	require.NoError(t, err)
	id, _ := out.Get("datasetid")
	assert.Equal(t, "00000002-3cef-4bc1-8540-2c20b4798855", id)
}

func TestNormalizeFacetList(t *testing.T) {
	in := NewMap()
	require.NoError(t, in.Set("facets", []any{"originalScientificName", "flags"}))

	out, _, err := Normalize(endpoint(t, Facet), in)
	require.NoError(t, err)
	facets, _ := out.String("facets")
	assert.Equal(t, "originalScientificName,flags", facets)
}
