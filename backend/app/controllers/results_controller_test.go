package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirage/backend/app/models"
	"mirage/backend/app/queue"
)

func TestResultsPostEnqueuesReport(t *testing.T) {
	q := queue.New()
	c := NewResultsController(q, zerolog.Nop())

	body := `{"log":"TIMELINE|2024-01-01T00:00:00Z|{\"Command\":\"open\"}"}`
	req := httptest.NewRequest(http.MethodPost, "/api/client/results", strings.NewReader(body))
	identify(req)
	rec := httptest.NewRecorder()

	c.Post(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 1, q.Len())

	entry, ok := q.Snapshot()[0].(queue.MachineEntry)
	require.True(t, ok)
	assert.Equal(t, models.HistoryPostedResults, entry.HistoryType)
	assert.Equal(t, "ws-1", entry.Machine.Name)
	assert.Contains(t, entry.Log, "TIMELINE|")
}

func TestResultsPostRejectsAnonymousAgent(t *testing.T) {
	q := queue.New()
	c := NewResultsController(q, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/client/results", strings.NewReader(`{"log":"x"}`))
	rec := httptest.NewRecorder()

	c.Post(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, q.Len())
}

func TestResultsPostAcceptsIDOnlyAgent(t *testing.T) {
	q := queue.New()
	c := NewResultsController(q, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/client/results", strings.NewReader(`{"log":"x"}`))
	req.Header.Set(HeaderMachineID, "m-1")
	rec := httptest.NewRecorder()

	c.Post(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, q.Len())
}

func TestResultsPostEmptyLogNotEnqueued(t *testing.T) {
	q := queue.New()
	c := NewResultsController(q, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/client/results", strings.NewReader(`{"log":""}`))
	identify(req)
	rec := httptest.NewRecorder()

	c.Post(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, q.Len())
}

func TestResultsPostBadJSON(t *testing.T) {
	q := queue.New()
	c := NewResultsController(q, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/client/results", strings.NewReader(`{not json`))
	identify(req)
	rec := httptest.NewRecorder()

	c.Post(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResultsMethodNotAllowed(t *testing.T) {
	c := NewResultsController(queue.New(), zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/client/results", nil)
	rec := httptest.NewRecorder()

	c.Post(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
