package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"traffic-monitor-go/internal/colorlab"
	"traffic-monitor-go/internal/model"
	"traffic-monitor-go/internal/repository"
)

// RunService сервис для работы с сохраненными запусками анализа
type RunService struct {
	runRepo repository.RunRepository
	logger  *logrus.Logger
}

// NewRunService создает новый сервис для работы с запусками
func NewRunService(runRepo repository.RunRepository, logger *logrus.Logger) *RunService {
	return &RunService{
		runRepo: runRepo,
		logger:  logger,
	}
}

// SaveRun сохраняет результат анализа в базе данных и возвращает ID запуска
func (s *RunService) SaveRun(result *AnalysisResult, shotsDir string) (string, error) {
	runID := uuid.New().String()
	s.logger.Infof("Сохраняем запуск анализа %s в базе данных", runID)

	run := &model.Run{
		ID:             runID,
		Location:       result.Location,
		Street:         result.Street,
		PointList:      result.PointList,
		ShotsDir:       shotsDir,
		TotalShots:     len(result.Table.Rows),
		SkippedFiles:   len(result.Skipped),
		MaxPoints:      result.Table.MaxPoints,
		SampledCells:   result.Summary.SampledCells,
		CongestedShare: result.Summary.CongestedShare,
	}

	// Преобразуем строки таблицы в измерения
	for _, row := range result.Table.Rows {
		for i, cell := range row.Points {
			run.Measurements = append(run.Measurements, model.Measurement{
				ShotPath:     row.Path,
				Timestamp:    row.Timestamp,
				PointIndex:   i,
				Red:          int(cell.Color.R),
				Green:        int(cell.Color.G),
				Blue:         int(cell.Color.B),
				TrafficColor: cell.TrafficColor,
				Distance:     cell.Distance,
				Padded:       cell.Padded,
			})
		}
	}

	s.logger.Infof("Сохраняем запуск в БД. Количество измерений: %d", len(run.Measurements))
	if err := s.runRepo.Create(run); err != nil {
		s.logger.Errorf("Ошибка сохранения запуска в БД: %v", err)
		return "", fmt.Errorf("failed to save run to database: %w", err)
	}

	s.logger.Infof("Запуск %s успешно сохранен с %d измерениями", runID, len(run.Measurements))
	return runID, nil
}

// GetRunByID получает запуск анализа по ID
func (s *RunService) GetRunByID(runID string) (*RunResponse, error) {
	s.logger.Infof("Получаем запуск %s из базы данных", runID)

	run, err := s.runRepo.GetByID(runID)
	if err != nil {
		s.logger.Errorf("Ошибка получения запуска: %v", err)
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return s.modelToResponse(run, true), nil
}

// GetRunsByStreet получает запуски анализа для конкретной улицы
func (s *RunService) GetRunsByStreet(location, street string) ([]RunResponse, error) {
	s.logger.Infof("Получаем запуски для улицы %s/%s", location, street)

	runs, err := s.runRepo.GetByStreet(location, street)
	if err != nil {
		s.logger.Errorf("Ошибка получения запусков по улице: %v", err)
		return nil, fmt.Errorf("failed to get runs by street: %w", err)
	}

	responses := make([]RunResponse, len(runs))
	for i, run := range runs {
		responses[i] = *s.modelToResponse(run, false)
	}

	s.logger.Infof("Найдено %d запусков для улицы", len(responses))
	return responses, nil
}

// ListRuns получает список запусков с пагинацией
func (s *RunService) ListRuns(page, pageSize int) ([]RunResponse, int64, error) {
	s.logger.Infof("Получаем список запусков: страница %d, размер %d", page, pageSize)

	runs, total, err := s.runRepo.List(page, pageSize)
	if err != nil {
		s.logger.Errorf("Ошибка получения списка запусков: %v", err)
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}

	responses := make([]RunResponse, len(runs))
	for i, run := range runs {
		responses[i] = *s.modelToResponse(run, false)
	}

	s.logger.Infof("Получено %d запусков из %d общих", len(responses), total)
	return responses, total, nil
}

// DeleteRun удаляет запуск анализа по ID
func (s *RunService) DeleteRun(runID string) error {
	s.logger.Infof("Удаляем запуск %s", runID)

	if err := s.runRepo.Delete(runID); err != nil {
		s.logger.Errorf("Ошибка удаления запуска из БД: %v", err)
		return fmt.Errorf("failed to delete run from database: %w", err)
	}

	s.logger.Infof("Запуск %s успешно удален", runID)
	return nil
}

// modelToResponse преобразует модель базы данных в ответ API
func (s *RunService) modelToResponse(run *model.Run, withMeasurements bool) *RunResponse {
	response := &RunResponse{
		ID:             run.ID,
		Location:       run.Location,
		Street:         run.Street,
		PointList:      run.PointList,
		ShotsDir:       run.ShotsDir,
		TotalShots:     run.TotalShots,
		SkippedFiles:   run.SkippedFiles,
		MaxPoints:      run.MaxPoints,
		SampledCells:   run.SampledCells,
		CongestedShare: run.CongestedShare,
		CreatedAt:      run.CreatedAt,
	}

	if withMeasurements {
		for _, m := range run.Measurements {
			response.Measurements = append(response.Measurements, MeasurementResponse{
				ShotPath:   m.ShotPath,
				Timestamp:  m.Timestamp,
				PointIndex: m.PointIndex,
				Color: colorlab.RGB{
					R: uint8(m.Red),
					G: uint8(m.Green),
					B: uint8(m.Blue),
				},
				TrafficColor: m.TrafficColor,
				Distance:     m.Distance,
				Padded:       m.Padded,
			})
		}
	}

	return response
}
