package repo

import (
	"gorm.io/gorm"

	"mirage/backend/app/models"
)

type WebhookRepository struct{ db *gorm.DB }

func NewWebhookRepository(db *gorm.DB) *WebhookRepository { return &WebhookRepository{db: db} }

func (r *WebhookRepository) Active() ([]models.Webhook, error) {
	var hooks []models.Webhook
	err := r.db.Where("status = ?", models.StatusActive).Find(&hooks).Error
	return hooks, err
}

func (r *WebhookRepository) ListAll() ([]models.Webhook, error) {
	var hooks []models.Webhook
	err := r.db.Find(&hooks).Error
	return hooks, err
}

func (r *WebhookRepository) FindByID(id string) (*models.Webhook, error) {
	var hook models.Webhook
	if err := r.db.Where("id = ?", id).First(&hook).Error; err != nil {
		return nil, err
	}
	return &hook, nil
}

func (r *WebhookRepository) Create(hook *models.Webhook) error { return r.db.Create(hook).Error }

func (r *WebhookRepository) CreateAll(hooks []models.Webhook) error {
	return r.db.Create(&hooks).Error
}

func (r *WebhookRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Webhook{}).Error
}
