package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mirage/backend/app/models"
	"mirage/backend/app/queue"
	"mirage/backend/app/repo"
	"mirage/backend/app/services"
)

type WebhooksController struct {
	Webhooks   *repo.WebhookRepository
	History    *repo.HistoryRepository
	Queue      *queue.Queue
	Dispatcher *services.Dispatcher
}

func NewWebhooksController(webhooks *repo.WebhookRepository, history *repo.HistoryRepository, q *queue.Queue, dispatcher *services.Dispatcher) *WebhooksController {
	return &WebhooksController{Webhooks: webhooks, History: history, Queue: q, Dispatcher: dispatcher}
}

func (c *WebhooksController) List(w http.ResponseWriter, r *http.Request) {
	hooks, err := c.Webhooks.ListAll()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(hooks)
}

// Handle routes /api/webhooks by method: GET lists or fetches by id, POST
// creates, DELETE removes.
func (c *WebhooksController) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if id := r.URL.Query().Get("id"); id != "" {
			c.get(w, id)
			return
		}
		c.List(w, r)
	case http.MethodPost:
		c.create(w, r)
	case http.MethodDelete:
		c.delete(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (c *WebhooksController) get(w http.ResponseWriter, id string) {
	hook, err := c.Webhooks.FindByID(id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(hook)
}

func (c *WebhooksController) create(w http.ResponseWriter, r *http.Request) {
	var hook models.Webhook
	if err := json.NewDecoder(r.Body).Decode(&hook); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if hook.PostbackMethod != models.WebhookMethodGET && hook.PostbackMethod != models.WebhookMethodPOST {
		http.Error(w, "postback_method must be GET or POST", http.StatusBadRequest)
		return
	}
	if hook.ID == "" {
		hook.ID = uuid.NewString()
	}
	if hook.Status == "" {
		hook.Status = models.StatusActive
	}
	hook.CreatedUtc = time.Now().UTC()
	if err := c.Webhooks.Create(&hook); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(hook)
}

func (c *WebhooksController) delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if _, err := c.Webhooks.FindByID(id); err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err := c.Webhooks.Delete(id); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Test fires a synthetic timeline through one webhook so operators can
// verify their endpoint without waiting for agent traffic.
func (c *WebhooksController) Test(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	hook, err := c.Webhooks.FindByID(id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	timeline := models.HistoryTimeline{
		MachineID:  "test",
		Command:    "test",
		Handler:    "test",
		Result:     "test fire",
		CreatedUtc: time.Now().UTC(),
	}
	body, _ := json.Marshal(timeline)
	c.Dispatcher.Dispatch(*hook, queue.NotificationEntry{Type: queue.NotificationTimeline, Payload: body})
	w.WriteHeader(http.StatusNoContent)
}

// TestTimeline re-enqueues an existing timeline row as a notification,
// pushing it through the regular fan-out path.
func (c *WebhooksController) TestTimeline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TimelineID uint `json:"timeline_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TimelineID == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	timeline, err := c.History.TimelineByID(req.TimelineID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	body, _ := json.Marshal(timeline)
	_ = c.Queue.Enqueue(queue.NotificationEntry{Type: queue.NotificationTimeline, Payload: body})
	w.WriteHeader(http.StatusNoContent)
}
