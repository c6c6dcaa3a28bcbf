package sampler

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traffic-monitor-go/internal/colorlab"
	"traffic-monitor-go/internal/pointcfg"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// writeShot создает синтетический PNG скриншот с заданными пикселями
func writeShot(t *testing.T, dir, name string, width, height int, pixels map[image.Point]color.NRGBA) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	for p, c := range pixels {
		img.SetNRGBA(p.X, p.Y, c)
	}

	file, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
}

func TestSampleStreet(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg := pointcfg.Config{
		"leuven": {
			"tiensestraat": pointcfg.Street{
				Points: pointcfg.FlatPoints([]pointcfg.Point{{X: 10, Y: 10}, {X: 20, Y: 20}}),
			},
		},
	}

	writeShot(t, dir, "leuven_tiensestraat_20240101-120000.png", 30, 30, map[image.Point]color.NRGBA{
		{X: 10, Y: 10}: {R: 255, G: 0, B: 0, A: 255},
		{X: 20, Y: 20}: {R: 2, G: 128, B: 8, A: 255},
	})
	writeShot(t, dir, "leuven_tiensestraat_20240101-121500.png", 30, 30, map[image.Point]color.NRGBA{
		{X: 10, Y: 10}: {R: 99, G: 214, B: 104, A: 255},
		{X: 20, Y: 20}: {R: 129, G: 31, B: 31, A: 255},
	})
	// Файл с неразбираемой временной меткой игнорируется молча
	writeShot(t, dir, "leuven_tiensestraat_banana.png", 30, 30, nil)
	// Скриншот другой улицы не попадает в выборку
	writeShot(t, dir, "leuven_veldstraat_20240101-120000.png", 30, 30, nil)

	shots, failures, err := New(cfg, dir, testLogger()).SampleStreet("leuven", "tiensestraat", "")
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, shots, 2)

	byTimestamp := map[time.Time]Shot{}
	for _, shot := range shots {
		assert.Equal(t, "leuven", shot.Location)
		assert.Equal(t, "tiensestraat", shot.Street)
		assert.Equal(t, "", shot.PointList)
		byTimestamp[shot.Timestamp] = shot
	}

	first, ok := byTimestamp[time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)]
	require.True(t, ok)
	assert.Equal(t, []colorlab.RGB{{R: 255, G: 0, B: 0}, {R: 2, G: 128, B: 8}}, first.Colors)

	second, ok := byTimestamp[time.Date(2024, 1, 1, 12, 15, 0, 0, time.UTC)]
	require.True(t, ok)
	assert.Equal(t, []colorlab.RGB{{R: 99, G: 214, B: 104}, {R: 129, G: 31, B: 31}}, second.Colors)
}

func TestSampleStreetBoundary(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeShot(t, dir, "leuven_tiensestraat_20240101-120000.png", 30, 30, map[image.Point]color.NRGBA{
		{X: 0, Y: 0}:   {R: 242, G: 60, B: 50, A: 255},
		{X: 29, Y: 29}: {R: 255, G: 151, B: 77, A: 255},
	})

	t.Run("corner points sample successfully", func(t *testing.T) {
		t.Parallel()
		cfg := pointcfg.Config{
			"leuven": {
				"tiensestraat": pointcfg.Street{
					Points: pointcfg.FlatPoints([]pointcfg.Point{{X: 0, Y: 0}, {X: 29, Y: 29}}),
				},
			},
		}

		shots, failures, err := New(cfg, dir, testLogger()).SampleStreet("leuven", "tiensestraat", "")
		require.NoError(t, err)
		assert.Empty(t, failures)
		require.Len(t, shots, 1)
		assert.Equal(t, []colorlab.RGB{{R: 242, G: 60, B: 50}, {R: 255, G: 151, B: 77}}, shots[0].Colors)
	})

	t.Run("point past the edge rejects the file", func(t *testing.T) {
		t.Parallel()
		cfg := pointcfg.Config{
			"leuven": {
				"tiensestraat": pointcfg.Street{
					Points: pointcfg.FlatPoints([]pointcfg.Point{{X: 30, Y: 0}}),
				},
			},
		}

		shots, failures, err := New(cfg, dir, testLogger()).SampleStreet("leuven", "tiensestraat", "")
		require.NoError(t, err)
		assert.Empty(t, shots)
		require.Len(t, failures, 1)

		var oob *OutOfBoundsError
		require.ErrorAs(t, &failures[0], &oob)
		assert.Equal(t, 0, oob.Index)
		assert.Equal(t, 30, oob.Width)
		assert.Equal(t, 30, oob.Height)
	})
}

func TestSampleStreetConfigError(t *testing.T) {
	t.Parallel()
	cfg := pointcfg.Config{}

	_, _, err := New(cfg, t.TempDir(), testLogger()).SampleStreet("leuven", "tiensestraat", "")
	var configErr *pointcfg.ConfigError
	require.ErrorAs(t, err, &configErr)
}

func TestSampleStreetEmptyDirectory(t *testing.T) {
	t.Parallel()
	cfg := pointcfg.Config{
		"leuven": {
			"tiensestraat": pointcfg.Street{
				Points: pointcfg.FlatPoints([]pointcfg.Point{{X: 1, Y: 1}}),
			},
		},
	}

	shots, failures, err := New(cfg, t.TempDir(), testLogger()).SampleStreet("leuven", "tiensestraat", "")
	require.NoError(t, err)
	assert.Empty(t, shots)
	assert.Empty(t, failures)
}

func TestSampleAll(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg := pointcfg.Config{
		"leuven": {
			"tiensestraat": pointcfg.Street{
				Points: pointcfg.FlatPoints([]pointcfg.Point{{X: 1, Y: 1}}),
			},
			"bondgenotenlaan": pointcfg.Street{
				Points: pointcfg.NamedPointSets(map[string][]pointcfg.Point{
					"to":   {{X: 2, Y: 2}},
					"from": {{X: 3, Y: 3}},
				}),
			},
			// Улица без точек измерения не участвует в анализе
			"veldstraat": pointcfg.Street{URL: "https://example.com"},
		},
	}

	writeShot(t, dir, "leuven_tiensestraat_20240101-120000.png", 10, 10, nil)
	writeShot(t, dir, "leuven_bondgenotenlaan_20240101-120000.png", 10, 10, nil)

	shots, failures, err := New(cfg, dir, testLogger()).SampleAll()
	require.NoError(t, err)
	assert.Empty(t, failures)

	// Улица с именованными списками дает по записи на каждый список
	require.Len(t, shots, 3)

	lists := map[string]int{}
	for _, shot := range shots {
		lists[shot.Street+"/"+shot.PointList]++
	}
	assert.Equal(t, map[string]int{
		"tiensestraat/":        1,
		"bondgenotenlaan/to":   1,
		"bondgenotenlaan/from": 1,
	}, lists)
}
