package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mirage/backend/app/models"
	"mirage/backend/app/repo"
)

// MachineService resolves reported machine identities to records, creating
// new machines for agents that have not yet been assigned an id.
type MachineService struct {
	machines *repo.MachineRepository
	history  *repo.HistoryRepository
	// matchBy is the fallback matching strategy for id-less reports
	matchBy string
	log     zerolog.Logger
}

func NewMachineService(machines *repo.MachineRepository, history *repo.HistoryRepository, matchBy string, log zerolog.Logger) *MachineService {
	return &MachineService{machines: machines, history: history, matchBy: matchBy, log: log}
}

// Resolve finds the record for a reported machine: by id when present, by the
// configured match strategy otherwise. Unresolved machines are created
// immediately with a synthesized id, status Up, and a Created history row, so
// every derived row written afterwards has a valid machine reference.
func (s *MachineService) Resolve(reported models.Machine) (*models.Machine, error) {
	if reported.ID != "" {
		if m, err := s.machines.FindByID(reported.ID); err == nil {
			return m, nil
		}
	}
	if reported.Name != "" {
		if m, err := s.machines.FindByValue(s.matchBy, reported); err == nil {
			return m, nil
		}
	}
	return s.createFromReport(reported)
}

func (s *MachineService) createFromReport(reported models.Machine) (*models.Machine, error) {
	now := time.Now().UTC()
	m := reported
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Status = models.StatusActive
	m.StatusUp = models.UpDownUp
	m.LastReportedUtc = now
	m.CreatedUtc = now

	if err := s.machines.Create(&m); err != nil {
		return nil, err
	}
	if err := s.history.AddMachineHistory([]models.MachineHistory{{
		MachineID:  m.ID,
		Type:       models.HistoryCreated,
		CreatedUtc: now,
	}}); err != nil {
		s.log.Error().Err(err).Str("machine", m.ID).Msg("recording machine creation history")
	}
	s.log.Info().Str("machine", m.ID).Str("name", m.Name).Msg("new machine registered")
	return &m, nil
}

func (s *MachineService) GetByID(id string) (*models.Machine, error) {
	return s.machines.FindByID(id)
}

func (s *MachineService) ListAll() ([]models.Machine, error) {
	return s.machines.ListAll()
}
