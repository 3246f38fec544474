package repo

import (
	"gorm.io/gorm"

	"mirage/backend/app/models"
)

// HistoryRepository persists the per-report derived row collections. Each
// Add* call is one transaction over its whole batch.
type HistoryRepository struct{ db *gorm.DB }

func NewHistoryRepository(db *gorm.DB) *HistoryRepository { return &HistoryRepository{db: db} }

func (r *HistoryRepository) AddMachineHistory(rows []models.MachineHistory) error {
	return r.db.Create(&rows).Error
}

func (r *HistoryRepository) AddTimelines(rows []models.HistoryTimeline) error {
	return r.db.Create(&rows).Error
}

func (r *HistoryRepository) AddHealth(rows []models.HistoryHealth) error {
	return r.db.Create(&rows).Error
}

func (r *HistoryRepository) AddTrackables(rows []models.HistoryTrackable) error {
	return r.db.Create(&rows).Error
}

func (r *HistoryRepository) MachineHistoryFor(machineID string, limit int) ([]models.MachineHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.MachineHistory
	err := r.db.Where("machine_id = ?", machineID).Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *HistoryRepository) TimelinesFor(machineID string, limit int) ([]models.HistoryTimeline, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.HistoryTimeline
	err := r.db.Where("machine_id = ?", machineID).Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *HistoryRepository) TimelineByID(id uint) (*models.HistoryTimeline, error) {
	var row models.HistoryTimeline
	if err := r.db.First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *HistoryRepository) HealthFor(machineID string, limit int) ([]models.HistoryHealth, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.HistoryHealth
	err := r.db.Where("machine_id = ?", machineID).Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
