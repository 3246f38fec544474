package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"mirage/backend/app/models"
	"mirage/backend/app/queue"
	"mirage/backend/app/services"
)

// UpdatesController serves two sides of timeline distribution: agents poll
// Fetch for their next pending update, and operators schedule updates via
// Schedule.
type UpdatesController struct {
	Queue   *queue.Queue
	Updates *services.UpdateService
	Log     zerolog.Logger
}

func NewUpdatesController(q *queue.Queue, updates *services.UpdateService, log zerolog.Logger) *UpdatesController {
	return &UpdatesController{Queue: q, Updates: updates, Log: log}
}

type updateClientConfig struct {
	Type   string `json:"type"`
	Update string `json:"update"`
}

// Fetch returns-and-removes the oldest pending update for the calling
// machine. Delivery raises a TimelineDelivered notification so integrators
// can observe that a timeline actually reached its agent.
func (c *UpdatesController) Fetch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	m := readMachine(r)
	if m.ID == "" && !m.IsValid() {
		http.Error(w, "invalid machine request", http.StatusUnauthorized)
		return
	}

	// the poll itself is a history event
	_ = c.Queue.Enqueue(queue.MachineEntry{
		Machine:     m,
		HistoryType: models.HistoryRequestedUpdates,
	})

	if m.ID == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	u, err := c.Updates.Next(m.ID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	update := updateClientConfig{Type: u.Type, Update: u.Update}

	if err := c.Updates.MarkDelivered(u.ID); err != nil {
		c.Log.Error().Err(err).Uint("update", u.ID).Msg("marking update delivered")
	}

	if body, err := json.Marshal(update); err == nil {
		_ = c.Queue.Enqueue(queue.NotificationEntry{
			Type:    queue.NotificationTimelineDelivered,
			Payload: body,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(update)
}

// Handle routes /api/machineupdates: GET lists pending updates for one
// machine, POST schedules an update for one machine or a list of machines.
func (c *UpdatesController) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		c.list(w, r)
	case http.MethodPost:
		c.Schedule(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (c *UpdatesController) list(w http.ResponseWriter, r *http.Request) {
	machineID := r.URL.Query().Get("machine_id")
	if machineID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	updates, err := c.Updates.ListForMachine(machineID)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if updates == nil {
		updates = []models.MachineUpdate{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(updates)
}

type scheduleUpdateRequest struct {
	MachineID  string    `json:"machine_id"`
	MachineIDs []string  `json:"machine_ids"`
	Type       string    `json:"type"`
	Update     string    `json:"update"`
	ActiveUtc  time.Time `json:"active_utc"`
}

func (c *UpdatesController) Schedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req scheduleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	targets := req.MachineIDs
	if req.MachineID != "" {
		targets = append(targets, req.MachineID)
	}
	if len(targets) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	scheduled := make([]models.MachineUpdate, 0, len(targets))
	for _, id := range targets {
		u, err := c.Updates.Schedule(id, req.Type, req.Update, req.ActiveUtc)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		scheduled = append(scheduled, *u)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(scheduled)
}
