package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/obisquery/pkg/obis"
	"github.com/cognicore/obisquery/pkg/obis/internalerr"
	"github.com/cognicore/obisquery/pkg/obis/params"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("OBISQUERY_CATALOG_BACKEND", "memory")
	t.Setenv("OBISQUERY_LOG_LEVEL", "error")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParsePairs(t *testing.T) {
	m, err := parsePairs([]string{"Area=Baltic Sea", "size=10", "geometry=POINT(1 2)=x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"area", "size", "geometry"}, m.Keys())
	g, _ := m.String("geometry")
	assert.Equal(t, "POINT(1 2)=x", g)

	_, err = parsePairs([]string{"novalue"})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
	_, err = parsePairs([]string{"=x"})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestEndpointsCommand(t *testing.T) {
	out, err := run(t, "endpoints")
	require.NoError(t, err)
	assert.Contains(t, out, "occurrence")
	assert.Contains(t, out, "/dataset/search2")

	out, err = run(t, "endpoints", "taxon")
	require.NoError(t, err)
	assert.Contains(t, out, "commonname")
	assert.Contains(t, out, "-> id")

	_, err = run(t, "endpoints", "weather")
	assert.Error(t, err)
}

func TestURLCommand(t *testing.T) {
	out, err := run(t, "url", "-e", "taxon", "id=126436")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "https://api.obis.org/taxon/126436\n"), out)

	out, err = run(t, "url", "startdate=2010/01/31", "size=20000", "areaid=5")
	require.NoError(t, err)
	assert.Contains(t, out, "https://api.obis.org/occurrence?startdate=2010-01-31&size=10000&areaid=5")
}

func TestURLCommandErrors(t *testing.T) {
	_, err := run(t, "url", "-e", "weather", "id=1")
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	_, err = run(t, "url", "-e", "taxon")
	assert.Error(t, err, "taxon needs an id")

	_, err = run(t, "resolve", "oops")
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

type clarifyingExtractor struct{}

func (clarifyingExtractor) Extract(context.Context, *params.Endpoint, string) (*params.Extraction, error) {
	return &params.Extraction{ClarificationNeeded: true, Reason: "Which species?"}, nil
}

func TestInteractive(t *testing.T) {
	agent := obis.New(obis.Options{Extractor: clarifyingExtractor{}})
	var out bytes.Buffer

	err := interactive(context.Background(), strings.NewReader("\nthat fish\n"), &out, agent, params.Occurrence)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "endpoint: occurrence")
	assert.Contains(t, out.String(), "Error: extract parameters: clarification needed")
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestParseKinds(t *testing.T) {
	kinds, err := parseKinds(nil)
	require.NoError(t, err)
	assert.Len(t, kinds, 2)

	kinds, err = parseKinds([]string{"Institutes"})
	require.NoError(t, err)
	assert.Equal(t, "institute", string(kinds[0]))

	_, err = parseKinds([]string{"ships"})
	assert.Error(t, err)
}
