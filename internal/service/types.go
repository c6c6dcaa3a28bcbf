package service

import (
	"time"

	"traffic-monitor-go/internal/colorlab"
	"traffic-monitor-go/internal/dataset"
)

// AnalysisResult результат одного прогона пайплайна анализа
type AnalysisResult struct {
	Location  string          `json:"location,omitempty"`
	Street    string          `json:"street,omitempty"`
	PointList string          `json:"point_list,omitempty"`
	Table     *dataset.Table  `json:"table"`
	Skipped   []SkippedFile   `json:"skipped"`
	Summary   dataset.Summary `json:"summary"`
	Duration  time.Duration   `json:"-"`
}

// SkippedFile скриншот, отброшенный из-за ошибки обработки
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// AnalyzeResponse ответ API на запрос анализа
type AnalyzeResponse struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Location   string          `json:"location,omitempty"`
	Street     string          `json:"street,omitempty"`
	PointList  string          `json:"point_list,omitempty"`
	RunID      string          `json:"run_id,omitempty"`
	MaxPoints  int             `json:"max_points"`
	TotalShots int             `json:"total_shots"`
	Skipped    []SkippedFile   `json:"skipped,omitempty"`
	Summary    dataset.Summary `json:"summary"`
	Rows       []dataset.Row   `json:"rows"`
	DurationMS int64           `json:"duration_ms"`
}

// MeasurementResponse одно измерение цвета в ответе API
type MeasurementResponse struct {
	ShotPath     string       `json:"shot_path"`
	Timestamp    time.Time    `json:"timestamp"`
	PointIndex   int          `json:"point_index"`
	Color        colorlab.RGB `json:"color"`
	TrafficColor string       `json:"traffic_color"`
	Distance     float64      `json:"distance"`
	Padded       bool         `json:"padded"`
}

// RunResponse ответ с информацией о сохраненном запуске анализа
type RunResponse struct {
	ID             string                `json:"id"`
	Location       string                `json:"location"`
	Street         string                `json:"street"`
	PointList      string                `json:"point_list,omitempty"`
	ShotsDir       string                `json:"shots_dir"`
	TotalShots     int                   `json:"total_shots"`
	SkippedFiles   int                   `json:"skipped_files"`
	MaxPoints      int                   `json:"max_points"`
	SampledCells   int                   `json:"sampled_cells"`
	CongestedShare float64               `json:"congested_share"`
	CreatedAt      time.Time             `json:"created_at"`
	Measurements   []MeasurementResponse `json:"measurements,omitempty"`
}

// ListRunsResponse ответ со списком запусков анализа
type ListRunsResponse struct {
	Runs  []RunResponse `json:"runs"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}

// HealthResponse ответ проверки здоровья сервиса
type HealthResponse struct {
	Status    string `json:"status"`
	ShotsDir  string `json:"shots_dir"`
	Locations int    `json:"locations"`
	Version   string `json:"version"`
}
