package sampler

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"traffic-monitor-go/internal/colorlab"
	"traffic-monitor-go/internal/pointcfg"
)

// timestampLayout формат временной метки в имени файла скриншота
const timestampLayout = "20060102-150405"

// Shot результат выборки цветов из одного скриншота
type Shot struct {
	Location  string
	Street    string
	PointList string
	Path      string
	Timestamp time.Time
	Colors    []colorlab.RGB
}

// OutOfBoundsError точка измерения лежит за пределами скриншота.
// Сигнализирует об ошибке конфигурации, поэтому координата
// не обрезается молча, а строка скриншота отбрасывается целиком.
type OutOfBoundsError struct {
	Index  int
	Point  pointcfg.Point
	Width  int
	Height int
}

// Error возвращает текст ошибки
func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("точка %d (%d, %d) за пределами скриншота %dx%d",
		e.Index, e.Point.X, e.Point.Y, e.Width, e.Height)
}

// FileError ошибка обработки одного файла скриншота.
// Ошибки файлов изолированы: один битый скриншот не прерывает пакет.
type FileError struct {
	Path string
	Err  error
}

// Error возвращает текст ошибки
func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap возвращает вложенную ошибку
func (e *FileError) Unwrap() error {
	return e.Err
}

// Sampler выборка цветов пикселей из скриншотов карты трафика
type Sampler struct {
	cfg      pointcfg.Config
	shotsDir string
	logger   *logrus.Logger
}

// New создает новый сэмплер для каталога скриншотов
func New(cfg pointcfg.Config, shotsDir string, logger *logrus.Logger) *Sampler {
	return &Sampler{
		cfg:      cfg,
		shotsDir: shotsDir,
		logger:   logger,
	}
}

// SampleStreet выбирает цвета точек измерения улицы из всех её скриншотов.
// Возвращает записи по валидным скриншотам и список файлов, отброшенных
// из-за ошибок; ошибка конфигурации прерывает операцию целиком.
func (s *Sampler) SampleStreet(location, street, list string) ([]Shot, []FileError, error) {
	points, err := s.cfg.PointList(location, street, list)
	if err != nil {
		return nil, nil, err
	}

	pattern := filepath.Join(s.shotsDir, fmt.Sprintf("%s_%s_*.png", location, street))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list screenshots: %w", err)
	}

	prefix := fmt.Sprintf("%s_%s_", location, street)

	var shots []Shot
	var failures []FileError
	for _, path := range matches {
		timestamp, ok := parseTimestamp(filepath.Base(path), prefix)
		if !ok {
			// Файл с неразбираемым именем не относится к пайплайну
			s.logger.Debugf("Пропускаем файл %s: имя не соответствует формату", path)
			continue
		}

		colors, err := samplePoints(path, points)
		if err != nil {
			s.logger.Warnf("Скриншот %s отброшен: %v", path, err)
			failures = append(failures, FileError{Path: path, Err: err})
			continue
		}

		shots = append(shots, Shot{
			Location:  location,
			Street:    street,
			PointList: list,
			Path:      path,
			Timestamp: timestamp,
			Colors:    colors,
		})
	}

	return shots, failures, nil
}

// SampleAll выбирает цвета по всем улицам конфигурации.
// Для улиц с именованными списками каждый список обрабатывается отдельно.
func (s *Sampler) SampleAll() ([]Shot, []FileError, error) {
	var shots []Shot
	var failures []FileError

	for _, location := range s.cfg.Locations() {
		streets, err := s.cfg.Streets(location)
		if err != nil {
			return nil, nil, err
		}
		for _, street := range streets {
			st, err := s.cfg.Lookup(location, street)
			if err != nil {
				return nil, nil, err
			}
			if st.Points.IsEmpty() {
				// Улица без точек измерения не участвует в анализе
				continue
			}
			for _, list := range st.Points.ListNames() {
				streetShots, streetFailures, err := s.SampleStreet(location, street, list)
				if err != nil {
					return nil, nil, err
				}
				shots = append(shots, streetShots...)
				failures = append(failures, streetFailures...)
			}
		}
	}

	return shots, failures, nil
}

// parseTimestamp извлекает временную метку из имени файла скриншота.
// Имя должно иметь вид {location}_{street}_{YYYYMMDD-HHMMSS}.png
func parseTimestamp(base, prefix string) (time.Time, bool) {
	stem := strings.TrimSuffix(base, ".png")
	if !strings.HasPrefix(stem, prefix) {
		return time.Time{}, false
	}
	timestamp, err := time.Parse(timestampLayout, strings.TrimPrefix(stem, prefix))
	if err != nil {
		return time.Time{}, false
	}
	return timestamp, true
}

// samplePoints читает скриншот и возвращает цвета в порядке точек измерения.
// Альфа-канал игнорируется.
func samplePoints(path string, points []pointcfg.Point) ([]colorlab.RGB, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open screenshot: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	bounds := img.Bounds()
	colors := make([]colorlab.RGB, 0, len(points))
	for i, p := range points {
		if p.X >= bounds.Dx() || p.Y >= bounds.Dy() {
			return nil, &OutOfBoundsError{
				Index:  i,
				Point:  p,
				Width:  bounds.Dx(),
				Height: bounds.Dy(),
			}
		}
		c := color.NRGBAModel.Convert(img.At(bounds.Min.X+p.X, bounds.Min.Y+p.Y)).(color.NRGBA)
		colors = append(colors, colorlab.RGB{R: c.R, G: c.G, B: c.B})
	}

	return colors, nil
}
