package pointcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFlatPoints(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
[leuven.tiensestraat]
url = "https://maps.example.com/tiensestraat"
points = [[10, 20], [30, 40], [50, 60]]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	street, err := cfg.Lookup("leuven", "tiensestraat")
	require.NoError(t, err)
	assert.Equal(t, "https://maps.example.com/tiensestraat", street.URL)
	assert.False(t, street.Points.IsNamed())

	points, err := street.Points.List("")
	require.NoError(t, err)
	assert.Equal(t, []Point{{X: 10, Y: 20}, {X: 30, Y: 40}, {X: 50, Y: 60}}, points)
}

func TestLoadNamedPoints(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
[leuven.bondgenotenlaan]
url = "https://maps.example.com/bondgenotenlaan"

[leuven.bondgenotenlaan.points]
to = [[1, 2], [3, 4]]
from = [[5, 6]]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	street, err := cfg.Lookup("leuven", "bondgenotenlaan")
	require.NoError(t, err)
	assert.True(t, street.Points.IsNamed())
	assert.Equal(t, []string{"from", "to"}, street.Points.ListNames())

	to, err := street.Points.List("to")
	require.NoError(t, err)
	assert.Equal(t, []Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, to)

	_, err = street.Points.List("sideways")
	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
}

func TestLoadLegacyPointKeys(t *testing.T) {
	t.Parallel()
	// Инструмент выбора точек исторически писал ключи points_to / points_from
	path := writeConfig(t, `
[brussels.wetstraat]
url = "https://maps.example.com/wetstraat"
points_to = [[7, 8]]
points_from = [[9, 10], [11, 12]]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	street, err := cfg.Lookup("brussels", "wetstraat")
	require.NoError(t, err)
	assert.True(t, street.Points.IsNamed())
	assert.Equal(t, []string{"from", "to"}, street.Points.ListNames())
	assert.Equal(t, 2, street.Points.MaxLen())
}

func TestLoadMixedSchemasRejected(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
[leuven.naamsestraat]
points = [[1, 1]]
points_to = [[2, 2]]
`)

	_, err := Load(path)
	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
}

func TestLoadNegativeCoordinatesRejected(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
[leuven.tiensestraat]
points = [[-1, 5]]
`)

	_, err := Load(path)
	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLookupErrors(t *testing.T) {
	t.Parallel()
	cfg := Config{
		"leuven": {
			"tiensestraat": Street{Points: FlatPoints([]Point{{X: 1, Y: 2}})},
		},
	}

	var configErr *ConfigError

	_, err := cfg.Lookup("gent", "tiensestraat")
	require.ErrorAs(t, err, &configErr)

	_, err = cfg.Lookup("leuven", "veldstraat")
	require.ErrorAs(t, err, &configErr)

	_, err = cfg.PointList("leuven", "tiensestraat", "to")
	require.ErrorAs(t, err, &configErr)

	points, err := cfg.PointList("leuven", "tiensestraat", "")
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestPointListEmptyPoints(t *testing.T) {
	t.Parallel()
	cfg := Config{
		"leuven": {
			"tiensestraat": Street{URL: "https://example.com"},
		},
	}

	var configErr *ConfigError
	_, err := cfg.PointList("leuven", "tiensestraat", "")
	require.ErrorAs(t, err, &configErr)
}

func TestMaxPoints(t *testing.T) {
	t.Parallel()
	cfg := Config{
		"leuven": {
			"tiensestraat": Street{Points: FlatPoints([]Point{{X: 1, Y: 1}, {X: 2, Y: 2}})},
			"bondgenotenlaan": Street{Points: NamedPointSets(map[string][]Point{
				"to":   {{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}},
				"from": {{X: 4, Y: 4}},
			})},
		},
		"brussels": {
			"wetstraat": Street{},
		},
	}

	maxPoints, location, street := cfg.MaxPoints()
	assert.Equal(t, 3, maxPoints)
	assert.Equal(t, "leuven", location)
	assert.Equal(t, "bondgenotenlaan", street)
}

func TestLocationsAndStreetsSorted(t *testing.T) {
	t.Parallel()
	cfg := Config{
		"leuven":   {"b": Street{}, "a": Street{}},
		"brussels": {"x": Street{}},
	}

	assert.Equal(t, []string{"brussels", "leuven"}, cfg.Locations())

	streets, err := cfg.Streets("leuven")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, streets)

	_, err = cfg.Streets("gent")
	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
}
