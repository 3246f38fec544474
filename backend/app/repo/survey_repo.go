package repo

import (
	"gorm.io/gorm"

	"mirage/backend/app/models"
)

type SurveyRepository struct{ db *gorm.DB }

func NewSurveyRepository(db *gorm.DB) *SurveyRepository { return &SurveyRepository{db: db} }

// Create persists the survey and its nested collections in one transaction.
func (r *SurveyRepository) Create(s *models.Survey) error { return r.db.Create(s).Error }

func (r *SurveyRepository) LatestForMachine(machineID string) (*models.Survey, error) {
	var s models.Survey
	err := r.db.Where("machine_id = ?", machineID).Order("id DESC").
		Preload("Interfaces").Preload("LocalUsers").Preload("Drives").
		Preload("Processes").Preload("Ports").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
