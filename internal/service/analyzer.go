package service

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"traffic-monitor-go/internal/colorlab"
	"traffic-monitor-go/internal/dataset"
	"traffic-monitor-go/internal/pointcfg"
	"traffic-monitor-go/internal/sampler"
)

// AnalyzerService сервис анализа загруженности трафика по скриншотам
type AnalyzerService struct {
	cfg        pointcfg.Config
	smp        *sampler.Sampler
	classifier *colorlab.Classifier
	shotsDir   string
	logger     *logrus.Logger
}

// NewAnalyzerService создает новый сервис анализатора.
// Палитра эталонных цветов строится один раз и далее не меняется.
func NewAnalyzerService(cfg pointcfg.Config, shotsDir string, logger *logrus.Logger) *AnalyzerService {
	converter := colorlab.NewConverter()
	palette := colorlab.NewPalette(converter)

	return &AnalyzerService{
		cfg:        cfg,
		smp:        sampler.New(cfg, shotsDir, logger),
		classifier: colorlab.NewClassifier(converter, palette),
		shotsDir:   shotsDir,
		logger:     logger,
	}
}

// ShotsDir возвращает каталог скриншотов
func (s *AnalyzerService) ShotsDir() string {
	return s.shotsDir
}

// Config возвращает конфигурацию точек измерения
func (s *AnalyzerService) Config() pointcfg.Config {
	return s.cfg
}

// AnalyzeStreet анализирует скриншоты одной улицы
func (s *AnalyzerService) AnalyzeStreet(location, street, list string) (*AnalysisResult, error) {
	s.logger.Infof("Начинаем анализ трафика для улицы %s/%s (список %q)", location, street, list)
	startTime := time.Now()

	shots, failures, err := s.smp.SampleStreet(location, street, list)
	if err != nil {
		s.logger.Errorf("Ошибка выборки цветов: %v", err)
		return nil, err
	}

	result := s.assemble(shots, failures, startTime)
	result.Location = location
	result.Street = street
	result.PointList = list
	return result, nil
}

// AnalyzeAll анализирует скриншоты всех улиц конфигурации
func (s *AnalyzerService) AnalyzeAll() (*AnalysisResult, error) {
	s.logger.Info("Начинаем анализ трафика по всей конфигурации")
	startTime := time.Now()

	shots, failures, err := s.smp.SampleAll()
	if err != nil {
		s.logger.Errorf("Ошибка выборки цветов: %v", err)
		return nil, err
	}

	return s.assemble(shots, failures, startTime), nil
}

// assemble собирает записи сэмплера в таблицу и сводную статистику.
// Ширина таблицы общая для всех улиц и определяется максимумом
// точек измерения по конфигурации.
func (s *AnalyzerService) assemble(shots []sampler.Shot, failures []sampler.FileError, startTime time.Time) *AnalysisResult {
	maxPoints, maxLocation, maxStreet := s.cfg.MaxPoints()
	s.logger.Infof("Максимум точек измерения: %d (улица %s/%s)", maxPoints, maxLocation, maxStreet)

	assembler := dataset.NewAssembler(maxPoints, s.classifier)
	table := assembler.Assemble(shots)
	summary := dataset.Summarize(table)

	skipped := make([]SkippedFile, 0, len(failures))
	for _, failure := range failures {
		skipped = append(skipped, SkippedFile{
			Path:   failure.Path,
			Reason: failure.Err.Error(),
		})
	}

	duration := time.Since(startTime)
	s.logger.Infof("Анализ завершен за %v: %d строк, %d файлов отброшено, доля затора %.3f",
		duration, len(table.Rows), len(skipped), summary.CongestedShare)

	return &AnalysisResult{
		Table:    table,
		Skipped:  skipped,
		Summary:  summary,
		Duration: duration,
	}
}

// CheckHealth проверяет готовность сервиса к анализу
func (s *AnalyzerService) CheckHealth() error {
	s.logger.Debug("Проверяем состояние сервиса анализатора")

	if len(s.cfg) == 0 {
		return fmt.Errorf("конфигурация точек измерения пуста")
	}

	info, err := os.Stat(s.shotsDir)
	if err != nil {
		return fmt.Errorf("каталог скриншотов недоступен: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("путь %s не является каталогом", s.shotsDir)
	}

	return nil
}
