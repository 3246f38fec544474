package repo

import (
	"strings"

	"gorm.io/gorm"

	"mirage/backend/app/models"
)

type MachineRepository struct{ db *gorm.DB }

func NewMachineRepository(db *gorm.DB) *MachineRepository { return &MachineRepository{db: db} }

func (r *MachineRepository) FindByID(id string) (*models.Machine, error) {
	var m models.Machine
	if err := r.db.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByValue matches a machine that reported without an id. strategy picks
// the matched column; empty strategy matches any of the identity columns.
func (r *MachineRepository) FindByValue(strategy string, reported models.Machine) (*models.Machine, error) {
	var m models.Machine
	q := r.db
	switch strings.ToLower(strategy) {
	case "fqdn":
		q = q.Where("LOWER(fqdn) = ?", strings.ToLower(reported.FQDN))
	case "host":
		q = q.Where("LOWER(host) = ?", strings.ToLower(reported.Host))
	case "resolvedhost":
		q = q.Where("LOWER(resolved_host) = ?", strings.ToLower(reported.ResolvedHost))
	case "name":
		q = q.Where("LOWER(name) = ?", strings.ToLower(reported.Name))
	default:
		q = q.Where(
			"LOWER(name) = ? OR LOWER(fqdn) = ? OR LOWER(host) = ? OR LOWER(resolved_host) = ?",
			strings.ToLower(reported.Name),
			strings.ToLower(reported.FQDN),
			strings.ToLower(reported.Host),
			strings.ToLower(reported.ResolvedHost),
		)
	}
	if err := q.First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MachineRepository) Create(m *models.Machine) error { return r.db.Create(m).Error }

func (r *MachineRepository) SaveAll(machines []models.Machine) error {
	for i := range machines {
		if err := r.db.Save(&machines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *MachineRepository) ListAll() ([]models.Machine, error) {
	var machines []models.Machine
	err := r.db.Order("name").Find(&machines).Error
	return machines, err
}
