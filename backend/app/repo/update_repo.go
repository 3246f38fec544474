package repo

import (
	"time"

	"gorm.io/gorm"

	"mirage/backend/app/models"
)

type UpdateRepository struct{ db *gorm.DB }

func NewUpdateRepository(db *gorm.DB) *UpdateRepository { return &UpdateRepository{db: db} }

func (r *UpdateRepository) Create(u *models.MachineUpdate) error { return r.db.Create(u).Error }

// NextForMachine returns the oldest active update whose activation time has
// passed, or gorm.ErrRecordNotFound.
func (r *UpdateRepository) NextForMachine(machineID string, now time.Time) (*models.MachineUpdate, error) {
	var u models.MachineUpdate
	err := r.db.Where("machine_id = ? AND status = ? AND active_utc <= ?", machineID, models.StatusActive, now).
		Order("id ASC").First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UpdateRepository) Delete(id uint) error {
	return r.db.Delete(&models.MachineUpdate{}, id).Error
}

func (r *UpdateRepository) ListForMachine(machineID string) ([]models.MachineUpdate, error) {
	var updates []models.MachineUpdate
	err := r.db.Where("machine_id = ?", machineID).Order("id ASC").Find(&updates).Error
	return updates, err
}
