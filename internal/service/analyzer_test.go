package service

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

func TestAnalyzeStreetEndToEnd(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg := pointcfg.Config{
		"Leuven": {
			"MainSt": pointcfg.Street{
				Points: pointcfg.FlatPoints([]pointcfg.Point{{X: 10, Y: 10}, {X: 20, Y: 20}}),
			},
		},
	}

	writeShot(t, dir, "Leuven_MainSt_20240101-120000.png", 30, 30, map[image.Point]color.NRGBA{
		{X: 10, Y: 10}: {R: 255, G: 0, B: 0, A: 255},
		{X: 20, Y: 20}: {R: 2, G: 128, B: 8, A: 255},
	})

	analyzer := NewAnalyzerService(cfg, dir, testLogger())

	result, err := analyzer.AnalyzeStreet("Leuven", "MainSt", "")
	require.NoError(t, err)
	assert.Equal(t, "Leuven", result.Location)
	assert.Equal(t, "MainSt", result.Street)
	assert.Empty(t, result.Skipped)

	require.Len(t, result.Table.Rows, 1)
	row := result.Table.Rows[0]
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), row.Timestamp)
	require.Len(t, row.Points, 2)

	assert.Equal(t, colorlab.RGB{R: 255, G: 0, B: 0}, row.Points[0].Color)
	assert.Equal(t, colorlab.ColorRed, row.Points[0].TrafficColor)

	assert.Equal(t, colorlab.RGB{R: 2, G: 128, B: 8}, row.Points[1].Color)
	assert.Equal(t, colorlab.ColorGreen, row.Points[1].TrafficColor)

	assert.Equal(t, 1, result.Summary.TotalRows)
	assert.Equal(t, 2, result.Summary.SampledCells)
	assert.InDelta(t, 0.5, result.Summary.CongestedShare, 1e-9)
}

func TestAnalyzeStreetUnknownStreet(t *testing.T) {
	t.Parallel()
	analyzer := NewAnalyzerService(pointcfg.Config{}, t.TempDir(), testLogger())

	_, err := analyzer.AnalyzeStreet("Leuven", "MainSt", "")
	var configErr *pointcfg.ConfigError
	require.ErrorAs(t, err, &configErr)
}

func TestAnalyzeAllSharedColumnWidth(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg := pointcfg.Config{
		"Leuven": {
			// Широкая улица задает общую схему колонок
			"MainSt": pointcfg.Street{
				Points: pointcfg.FlatPoints([]pointcfg.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}),
			},
			"SideSt": pointcfg.Street{
				Points: pointcfg.FlatPoints([]pointcfg.Point{{X: 4, Y: 4}}),
			},
		},
	}

	writeShot(t, dir, "Leuven_MainSt_20240101-120000.png", 10, 10, nil)
	writeShot(t, dir, "Leuven_SideSt_20240101-115500.png", 10, 10, nil)

	analyzer := NewAnalyzerService(cfg, dir, testLogger())

	result, err := analyzer.AnalyzeAll()
	require.NoError(t, err)

	assert.Equal(t, 3, result.Table.MaxPoints)
	require.Len(t, result.Table.Rows, 2)

	// Строки отсортированы по возрастанию временной метки
	assert.Equal(t, "SideSt", result.Table.Rows[0].Street)
	assert.Equal(t, "MainSt", result.Table.Rows[1].Street)

	// Узкая улица дополнена заглушками до общей ширины
	narrow := result.Table.Rows[0]
	require.Len(t, narrow.Points, 3)
	assert.False(t, narrow.Points[0].Padded)
	assert.True(t, narrow.Points[1].Padded)
	assert.True(t, narrow.Points[2].Padded)
	assert.Equal(t, colorlab.GreySentinel, narrow.Points[1].Color)
	assert.Equal(t, colorlab.ColorGrey, narrow.Points[1].TrafficColor)
}

func TestAnalyzeStreetEmptyDirectory(t *testing.T) {
	t.Parallel()
	cfg := pointcfg.Config{
		"Leuven": {
			"MainSt": pointcfg.Street{
				Points: pointcfg.FlatPoints([]pointcfg.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}),
			},
		},
	}

	analyzer := NewAnalyzerService(cfg, t.TempDir(), testLogger())

	result, err := analyzer.AnalyzeStreet("Leuven", "MainSt", "")
	require.NoError(t, err)

	// Пустой каталог дает пустую таблицу с полной схемой колонок
	assert.Empty(t, result.Table.Rows)
	assert.Len(t, result.Table.Columns(), 4+5*2)
}

func TestCheckHealth(t *testing.T) {
	t.Parallel()

	cfg := pointcfg.Config{
		"Leuven": {"MainSt": pointcfg.Street{}},
	}

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()
		analyzer := NewAnalyzerService(cfg, t.TempDir(), testLogger())
		assert.NoError(t, analyzer.CheckHealth())
	})

	t.Run("empty config", func(t *testing.T) {
		t.Parallel()
		analyzer := NewAnalyzerService(pointcfg.Config{}, t.TempDir(), testLogger())
		assert.Error(t, analyzer.CheckHealth())
	})

	t.Run("missing shots dir", func(t *testing.T) {
		t.Parallel()
		analyzer := NewAnalyzerService(cfg, filepath.Join(t.TempDir(), "nope"), testLogger())
		assert.Error(t, analyzer.CheckHealth())
	})
}
