package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealRejectsTriggerKeys(t *testing.T) {
	e := endpoint(t, Occurrence)

	_, err := Seal(e, MapOf(Pair{"institute", "VLIZ"}, Pair{"size", 10}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "institute")

	c, err := Seal(e, MapOf(Pair{"instituteid", "1"}, Pair{"size", 10}))
	require.NoError(t, err)
	assert.False(t, c.IsZero())
	assert.Equal(t, "https://api.obis.org/occurrence?instituteid=1&size=10", c.URL(""))
}

func TestSealScientificNameOnlyTriggersOnLookupEndpoints(t *testing.T) {
	_, err := Seal(endpoint(t, Occurrence), MapOf(Pair{"scientificname", "Brachyura"}))
	assert.NoError(t, err)

	_, err = Seal(endpoint(t, Taxon), MapOf(Pair{"scientificname", "Brachyura"}, Pair{"id", "106673"}))
	assert.Error(t, err)
}

func TestCanonicalExtensionURL(t *testing.T) {
	c, err := Seal(endpoint(t, Taxon), MapOf(Pair{"id", "137094"}))
	require.NoError(t, err)
	assert.Equal(t, "https://api.obis.org/taxon/137094", c.URL(""))

	c, err = Seal(endpoint(t, DatasetSearch), MapOf(Pair{"q", "coral reef"}))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/dataset/search2?q=coral+reef", c.URL("http://localhost:8080"))
}

func TestSealRequiresPathParam(t *testing.T) {
	_, err := Seal(endpoint(t, InstituteLookup), NewMap())
	assert.Error(t, err)
}

func TestSealCopiesParams(t *testing.T) {
	m := MapOf(Pair{"areaid", "5"})
	c, err := Seal(endpoint(t, Checklist), m)
	require.NoError(t, err)

	require.NoError(t, m.Set("areaid", "6"))
	v, _ := c.Params().Get("areaid")
	assert.Equal(t, "5", v)
}

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry()
	e, ok := r.Lookup(" Occurrence ")
	require.True(t, ok)
	assert.Equal(t, []string{"institute", "area", "datasetname", "commonname"}, e.Triggers())

	_, ok = r.Lookup("mapper")
	assert.False(t, ok)
	assert.Contains(t, r.Names(), TaxonAnnotations)
}
