package services

import (
	"time"

	"mirage/backend/app/models"
	"mirage/backend/app/repo"
)

// UpdateService manages pending instruction payloads scheduled for machines.
type UpdateService struct {
	updates *repo.UpdateRepository
}

func NewUpdateService(updates *repo.UpdateRepository) *UpdateService {
	return &UpdateService{updates: updates}
}

func (s *UpdateService) Schedule(machineID, updateType, payload string, activeUtc time.Time) (*models.MachineUpdate, error) {
	if updateType == "" {
		updateType = models.UpdateTypeTimeline
	}
	if activeUtc.IsZero() {
		activeUtc = time.Now().UTC()
	}
	u := &models.MachineUpdate{
		MachineID:  machineID,
		Type:       updateType,
		Status:     models.StatusActive,
		ActiveUtc:  activeUtc,
		Update:     payload,
		CreatedUtc: time.Now().UTC(),
	}
	if err := s.updates.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Next returns the oldest deliverable update for a machine, or nil.
func (s *UpdateService) Next(machineID string) (*models.MachineUpdate, error) {
	u, err := s.updates.NextForMachine(machineID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return u, nil
}

// MarkDelivered removes a delivered update; updates are single-shot.
func (s *UpdateService) MarkDelivered(id uint) error {
	return s.updates.Delete(id)
}

func (s *UpdateService) ListForMachine(machineID string) ([]models.MachineUpdate, error) {
	return s.updates.ListForMachine(machineID)
}
