package repository

import (
	"fmt"

	"gorm.io/gorm"

	"traffic-monitor-go/internal/model"
)

// measurementBatchSize размер пачки при вставке измерений
const measurementBatchSize = 500

// RunRepository интерфейс для работы с запусками анализа
type RunRepository interface {
	Create(run *model.Run) error
	GetByID(id string) (*model.Run, error)
	GetByStreet(location, street string) ([]*model.Run, error)
	List(page, pageSize int) ([]*model.Run, int64, error)
	Delete(id string) error
}

// runRepository реализация RunRepository
type runRepository struct {
	db *gorm.DB
}

// NewRunRepository создает новый instance RunRepository
func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{
		db: db,
	}
}

// Create создает новый запуск анализа вместе с измерениями
func (r *runRepository) Create(run *model.Run) error {
	tx := r.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	// Сначала создаем запуск без измерений
	measurements := run.Measurements
	run.Measurements = nil
	if err := tx.Create(run).Error; err != nil {
		tx.Rollback()
		run.Measurements = measurements
		return fmt.Errorf("failed to create run: %w", err)
	}
	run.Measurements = measurements

	// Затем вставляем измерения пачками
	for i := range run.Measurements {
		run.Measurements[i].ID = 0 // Обнуляем ID для auto-increment
		run.Measurements[i].RunID = run.ID
	}
	if len(run.Measurements) > 0 {
		if err := tx.CreateInBatches(run.Measurements, measurementBatchSize).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to create measurements: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID получает запуск анализа по ID
func (r *runRepository) GetByID(id string) (*model.Run, error) {
	var run model.Run
	err := r.db.Preload("Measurements").Where("id = ?", id).First(&run).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("run with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// GetByStreet получает запуски анализа для конкретной улицы
func (r *runRepository) GetByStreet(location, street string) ([]*model.Run, error) {
	var runs []*model.Run

	err := r.db.Preload("Measurements").
		Where("location = ? AND street = ?", location, street).
		Order("created_at DESC").
		Find(&runs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get runs by street: %w", err)
	}

	return runs, nil
}

// List получает список запусков с пагинацией, без измерений
func (r *runRepository) List(page, pageSize int) ([]*model.Run, int64, error) {
	var runs []*model.Run
	var total int64

	// Подсчитываем общее количество
	if err := r.db.Model(&model.Run{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}

	// Получаем запуски с пагинацией
	offset := (page - 1) * pageSize
	err := r.db.
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&runs).Error

	if err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, total, nil
}

// Delete удаляет запуск анализа по ID
func (r *runRepository) Delete(id string) error {
	tx := r.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	// Сначала удаляем измерения
	if err := tx.Where("run_id = ?", id).Delete(&model.Measurement{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete measurements: %w", err)
	}

	// Затем удаляем запуск
	result := tx.Where("id = ?", id).Delete(&model.Run{})
	if result.Error != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete run: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		tx.Rollback()
		return fmt.Errorf("run with id %s not found", id)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
