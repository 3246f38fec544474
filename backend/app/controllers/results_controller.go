package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"mirage/backend/app/models"
	"mirage/backend/app/queue"
)

// ResultsController accepts agent activity reports. The report is enqueued
// and the request acknowledged immediately; the agent never waits on (or
// learns about) downstream parsing and persistence.
type ResultsController struct {
	Queue *queue.Queue
	Log   zerolog.Logger
}

func NewResultsController(q *queue.Queue, log zerolog.Logger) *ResultsController {
	return &ResultsController{Queue: q, Log: log}
}

type resultsRequest struct {
	Log string `json:"log"`
}

func (c *ResultsController) Post(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req resultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m := readMachine(r)
	if m.ID == "" && !m.IsValid() {
		http.Error(w, "invalid machine request", http.StatusUnauthorized)
		return
	}

	if req.Log != "" {
		c.Log.Trace().Str("machine", m.ID).Str("name", m.Name).Msg("results payload received")
		_ = c.Queue.Enqueue(queue.MachineEntry{
			Machine:     m,
			HistoryType: models.HistoryPostedResults,
			Log:         req.Log,
		})
	}

	w.WriteHeader(http.StatusNoContent)
}
