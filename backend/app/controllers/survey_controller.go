package controllers

import (
	"encoding/json"
	"net/http"

	"mirage/backend/app/models"
	"mirage/backend/app/queue"
	"mirage/backend/app/repo"
)

type SurveyController struct {
	Queue   *queue.Queue
	Surveys *repo.SurveyRepository
}

func NewSurveyController(q *queue.Queue, surveys *repo.SurveyRepository) *SurveyController {
	return &SurveyController{Queue: q, Surveys: surveys}
}

func (c *SurveyController) Post(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	m := readMachine(r)
	if m.ID == "" && !m.IsValid() {
		http.Error(w, "invalid machine request", http.StatusUnauthorized)
		return
	}

	var survey models.Survey
	if err := json.NewDecoder(r.Body).Decode(&survey); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if survey.MachineID == "" {
		survey.MachineID = m.ID
	}

	_ = c.Queue.Enqueue(queue.SurveyEntry{Survey: survey})
	w.WriteHeader(http.StatusNoContent)
}

func (c *SurveyController) Latest(w http.ResponseWriter, r *http.Request) {
	machineID := r.URL.Query().Get("machine_id")
	if machineID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	survey, err := c.Surveys.LatestForMachine(machineID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(survey)
}
