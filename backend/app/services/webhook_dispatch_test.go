package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirage/backend/app/models"
	"mirage/backend/app/queue"
)

func timelinePayload(t *testing.T, tl models.HistoryTimeline) json.RawMessage {
	t.Helper()
	body, err := json.Marshal(tl)
	require.NoError(t, err)
	return body
}

func TestRenderSubstitutesAllPlaceholders(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())
	hook := models.Webhook{
		PostbackFormat: `{"machine":"[MachineName]","at":"[DateTime.UtcNow]","kind":"[MessageType]","payload":[MessagePayload]}`,
	}
	payload := timelinePayload(t, models.HistoryTimeline{
		MachineID:  "abc",
		Result:     "clicked",
		CreatedUtc: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	out, ok := d.Render(hook, queue.NotificationEntry{Type: queue.NotificationTimeline, Payload: payload})
	require.True(t, ok)
	assert.JSONEq(t, `{"machine":"abc","at":"2024-01-01T00:00:00","kind":"Binary","payload":"clicked"}`, out)
	assert.NotContains(t, out, "[")
}

func TestRenderCaseInsensitiveTokens(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())
	hook := models.Webhook{PostbackFormat: `[machinename] did [MESSAGEPAYLOAD]`}
	payload := timelinePayload(t, models.HistoryTimeline{MachineID: "abc", Result: "clicked"})

	out, ok := d.Render(hook, queue.NotificationEntry{Type: queue.NotificationTimeline, Payload: payload})
	require.True(t, ok)
	assert.Equal(t, `abc did "clicked"`, out)
}

func TestRenderAbortsWithoutResult(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())
	hook := models.Webhook{PostbackFormat: `[MachineName] did [MessagePayload]`}
	payload := timelinePayload(t, models.HistoryTimeline{MachineID: "abc"})

	_, ok := d.Render(hook, queue.NotificationEntry{Type: queue.NotificationTimeline, Payload: payload})
	assert.False(t, ok, "dispatch must abort entirely when the payload token cannot be filled")
}

func TestRenderEscapesResult(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())
	hook := models.Webhook{PostbackFormat: `[MessagePayload]`}
	payload := timelinePayload(t, models.HistoryTimeline{Result: `typed "hello"` + "\n"})

	out, ok := d.Render(hook, queue.NotificationEntry{Type: queue.NotificationTimeline, Payload: payload})
	require.True(t, ok)
	assert.True(t, json.Valid([]byte(out)), "rendered payload must stay well-formed json: %s", out)
}

func TestRenderTimelineDeliveredPassthrough(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())
	hook := models.Webhook{PostbackFormat: `[MachineName]`}
	raw := json.RawMessage(`{"type":"Timeline","update":"{}"}`)

	out, ok := d.Render(hook, queue.NotificationEntry{Type: queue.NotificationTimelineDelivered, Payload: raw})
	require.True(t, ok)
	assert.Equal(t, string(raw), out)
}

func TestDeliverPost(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
	}))
	defer srv.Close()

	d := NewDispatcher(zerolog.Nop())
	hook := models.Webhook{
		PostbackURL:    srv.URL,
		PostbackMethod: models.WebhookMethodPOST,
		PostbackFormat: `[MachineName] did [MessagePayload]`,
	}
	payload := timelinePayload(t, models.HistoryTimeline{MachineID: "abc", Result: "clicked"})

	d.Dispatch(hook, queue.NotificationEntry{Type: queue.NotificationTimeline, Payload: payload})
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 1)
	assert.Equal(t, `abc did "clicked"`, bodies[0])
}

func TestDeliverGet(t *testing.T) {
	var mu sync.Mutex
	var messages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		messages = append(messages, r.URL.Query().Get("message"))
		mu.Unlock()
		assert.Equal(t, http.MethodGet, r.Method)
	}))
	defer srv.Close()

	d := NewDispatcher(zerolog.Nop())
	hook := models.Webhook{
		PostbackURL:    srv.URL,
		PostbackMethod: models.WebhookMethodGET,
		PostbackFormat: `[MessagePayload]`,
	}
	payload := timelinePayload(t, models.HistoryTimeline{Result: "opened"})

	d.Deliver(hook, queue.NotificationEntry{Type: queue.NotificationTimeline, Payload: payload})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, messages, 1)
	assert.Equal(t, `"opened"`, messages[0])
}

func TestDeliverUnknownMethodMakesNoCall(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer srv.Close()

	d := NewDispatcher(zerolog.Nop())
	hook := models.Webhook{
		PostbackURL:    srv.URL,
		PostbackMethod: "PATCH",
		PostbackFormat: `[MessagePayload]`,
	}
	payload := timelinePayload(t, models.HistoryTimeline{Result: "x"})

	d.Deliver(hook, queue.NotificationEntry{Type: queue.NotificationTimeline, Payload: payload})
	assert.Equal(t, 0, calls)
}

func TestDeliverNetworkFailureDoesNotPanic(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())
	hook := models.Webhook{
		PostbackURL:    "http://127.0.0.1:1", // nothing listens here
		PostbackMethod: models.WebhookMethodPOST,
		PostbackFormat: `[MessagePayload]`,
	}
	payload := timelinePayload(t, models.HistoryTimeline{Result: "x"})

	assert.NotPanics(t, func() {
		d.Deliver(hook, queue.NotificationEntry{Type: queue.NotificationTimeline, Payload: payload})
	})
}
