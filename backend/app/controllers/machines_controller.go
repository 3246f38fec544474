package controllers

import (
	"encoding/json"
	"net/http"

	"mirage/backend/app/models"
	"mirage/backend/app/repo"
	"mirage/backend/app/services"
)

type MachinesController struct {
	Machines *services.MachineService
	History  *repo.HistoryRepository
	Presence *services.PresenceService
}

func NewMachinesController(machines *services.MachineService, history *repo.HistoryRepository, presence *services.PresenceService) *MachinesController {
	return &MachinesController{Machines: machines, History: history, Presence: presence}
}

func (c *MachinesController) List(w http.ResponseWriter, r *http.Request) {
	machines, err := c.Machines.ListAll()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(machines)
}

type machineDetail struct {
	Machine  *models.Machine          `json:"machine"`
	History  []models.MachineHistory  `json:"history"`
	Timeline []models.HistoryTimeline `json:"timeline"`
	Health   []models.HistoryHealth   `json:"health"`
}

func (c *MachinesController) Get(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	m, err := c.Machines.GetByID(id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	detail := machineDetail{Machine: m}
	detail.History, _ = c.History.MachineHistoryFor(id, 50)
	detail.Timeline, _ = c.History.TimelinesFor(id, 50)
	detail.Health, _ = c.History.HealthFor(id, 50)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(detail)
}

func (c *MachinesController) Online(w http.ResponseWriter, r *http.Request) {
	ids, err := c.Presence.Online(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ids)
}
