package model

import (
	"time"

	"gorm.io/gorm"
)

// Run представляет сохраненный запуск анализа в базе данных
type Run struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Location  string `gorm:"type:varchar(255);not null;index:idx_runs_street" json:"location"`
	Street    string `gorm:"type:varchar(255);not null;index:idx_runs_street" json:"street"`
	PointList string `gorm:"type:varchar(64)" json:"point_list"`
	ShotsDir  string `gorm:"type:varchar(500)" json:"shots_dir"`

	// Сводная статистика запуска
	TotalShots     int     `gorm:"not null;default:0" json:"total_shots"`
	SkippedFiles   int     `gorm:"not null;default:0" json:"skipped_files"`
	MaxPoints      int     `gorm:"not null;default:0" json:"max_points"`
	SampledCells   int     `gorm:"not null;default:0" json:"sampled_cells"`
	CongestedShare float64 `gorm:"not null;default:0" json:"congested_share"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Связь с измерениями
	Measurements []Measurement `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"measurements"`
}

// Measurement представляет одно измерение цвета в базе данных:
// одна точка одного скриншота
type Measurement struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID      string    `gorm:"type:varchar(36);not null;index" json:"run_id"`
	ShotPath   string    `gorm:"type:varchar(500);not null" json:"shot_path"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
	PointIndex int       `gorm:"not null" json:"point_index"`

	Red   int `gorm:"not null" json:"red"`
	Green int `gorm:"not null" json:"green"`
	Blue  int `gorm:"not null" json:"blue"`

	TrafficColor string  `gorm:"type:varchar(16);not null" json:"traffic_color"`
	Distance     float64 `gorm:"not null" json:"distance"`
	Padded       bool    `gorm:"not null" json:"padded"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Обратная связь с запуском
	Run Run `gorm:"foreignKey:RunID;references:ID" json:"-"`
}

// TableName указывает имя таблицы для Run
func (Run) TableName() string {
	return "runs"
}

// TableName указывает имя таблицы для Measurement
func (Measurement) TableName() string {
	return "measurements"
}
