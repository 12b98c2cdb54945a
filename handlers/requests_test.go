package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Bitwaves/config"
	"Bitwaves/models"
	"Bitwaves/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	tracks []services.Track
	err    error
}

func (f fakeCatalog) GetRequestableTracks(ctx context.Context) ([]services.Track, error) {
	return f.tracks, f.err
}

func handlerTestConfig() *config.Config {
	return &config.Config{
		AutoProcessDelay: 5 * time.Minute,
		HoldMaxDuration:  6 * time.Hour,
		PerTrackCooldown: time.Hour,
		MaxPerHour:       4,
		MaxPerDay:        10,
		MaxMessageLength: 150,
	}
}

func newTestHandlers(t *testing.T, cfg *config.Config) (*Handlers, *services.RequestStore, *services.Blocklist) {
	t.Helper()
	store := services.NewRequestStore(cfg)
	blocklist := services.NewBlocklist()
	h := New(cfg, store, blocklist, fakeCatalog{})
	return h, store, blocklist
}

func submitBody(trackGuid, requestedBy, message string) *strings.Reader {
	b, _ := json.Marshal(map[string]string{
		"trackGuid":   trackGuid,
		"requestedBy": requestedBy,
		"message":     message,
	})
	return strings.NewReader(string(b))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestTrackHandler(t *testing.T) {
	h, store, _ := newTestHandlers(t, handlerTestConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/requestTrack", submitBody("track-a", "Sam", "hello"))
	req.RemoteAddr = "10.0.0.1:51234"
	rec := httptest.NewRecorder()
	h.RequestTrackHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	request := body["request"].(map[string]any)
	assert.Equal(t, "track-a", request["trackGuid"])
	assert.Equal(t, "pending", request["status"])
	assert.Equal(t, "10.0.0.1", request["ipAddress"])

	stored, ok := store.Get(request["id"].(string))
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestRequestTrackHandlerValidation(t *testing.T) {
	h, _, _ := newTestHandlers(t, handlerTestConfig())

	cases := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"invalid json", http.MethodPost, "{not json", http.StatusBadRequest},
		{"missing track", http.MethodPost, `{"requestedBy":"Sam"}`, http.StatusBadRequest},
		{"missing name", http.MethodPost, `{"trackGuid":"track-a"}`, http.StatusBadRequest},
		{"blank name", http.MethodPost, `{"trackGuid":"track-a","requestedBy":"   "}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/requestTrack", strings.NewReader(tc.body))
			req.RemoteAddr = "10.0.0.1:51234"
			rec := httptest.NewRecorder()
			h.RequestTrackHandler(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRequestTrackHandlerTruncatesMessage(t *testing.T) {
	cfg := handlerTestConfig()
	cfg.MaxMessageLength = 10
	h, _, _ := newTestHandlers(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/requestTrack", submitBody("track-a", "Sam", "this message is far too long"))
	req.RemoteAddr = "10.0.0.1:51234"
	rec := httptest.NewRecorder()
	h.RequestTrackHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	request := body["request"].(map[string]any)
	assert.Equal(t, "this messa", request["message"])
}

func TestRequestTrackHandlerBlockedAddress(t *testing.T) {
	h, store, blocklist := newTestHandlers(t, handlerTestConfig())
	blocklist.Add("203.0.113.9", "spam", "admin")

	req := httptest.NewRequest(http.MethodPost, "/api/requestTrack", submitBody("track-a", "Sam", ""))
	req.RemoteAddr = "10.0.0.1:51234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.254")
	rec := httptest.NewRecorder()
	h.RequestTrackHandler(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, store.ListByStatusBucket().Pending)
}

func TestRequestTrackHandlerRateLimited(t *testing.T) {
	h, store, _ := newTestHandlers(t, handlerTestConfig())

	for i := 0; i < 4; i++ {
		_, err := store.AddRequest(fmt.Sprintf("track-%d", i), "Sam", "", "10.0.0.1")
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/requestTrack", submitBody("track-new", "Sam", ""))
	req.RemoteAddr = "10.0.0.1:51234"
	rec := httptest.NewRecorder()
	h.RequestTrackHandler(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "TOO_MANY_REQUESTS", body["reason"])
	assert.Equal(t, "hour", body["window"])
	assert.Equal(t, float64(4), body["limit"])
	assert.NotEmpty(t, body["nextAllowedAt"])
}

func TestRequestTrackHandlerCooldown(t *testing.T) {
	h, store, _ := newTestHandlers(t, handlerTestConfig())

	_, err := store.AddRequest("track-a", "Sam", "", "10.0.0.1")
	require.NoError(t, err)

	// Different submitter, same track, inside the cooldown window
	req := httptest.NewRequest(http.MethodPost, "/api/requestTrack", submitBody("track-a", "Alex", ""))
	req.RemoteAddr = "10.0.0.9:51234"
	rec := httptest.NewRecorder()
	h.RequestTrackHandler(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "COOLDOWN_ACTIVE", body["reason"])
	assert.NotEmpty(t, body["nextAllowedAt"])
}

func TestRequestsHandlerList(t *testing.T) {
	h, store, _ := newTestHandlers(t, handlerTestConfig())

	r, err := store.AddRequest("track-a", "Sam", "", "10.0.0.1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/requests", nil)
	rec := httptest.NewRecorder()
	h.RequestsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	pending := data["pending"].([]any)
	require.Len(t, pending, 1)
	assert.Equal(t, r.ID, pending[0].(map[string]any)["id"])
}

func TestRequestsHandlerDelete(t *testing.T) {
	h, store, _ := newTestHandlers(t, handlerTestConfig())

	r, err := store.AddRequest("track-a", "Sam", "", "10.0.0.1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/requests?id="+r.ID, nil)
	rec := httptest.NewRecorder()
	h.RequestsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	got, _ := store.Get(r.ID)
	assert.Equal(t, models.StatusDeleted, got.Status)
}

func TestAdminActionLifecycle(t *testing.T) {
	h, store, _ := newTestHandlers(t, handlerTestConfig())

	r, err := store.AddRequest("track-a", "Sam", "", "10.0.0.1")
	require.NoError(t, err)

	hold := httptest.NewRequest(http.MethodPost, "/api/requests/hold?id="+r.ID, nil)
	rec := httptest.NewRecorder()
	h.HoldRequestHandler(rec, hold)
	require.Equal(t, http.StatusOK, rec.Code)
	got, _ := store.Get(r.ID)
	assert.Equal(t, models.StatusHeld, got.Status)

	unhold := httptest.NewRequest(http.MethodPost, "/api/requests/unhold?id="+r.ID, nil)
	rec = httptest.NewRecorder()
	h.UnholdRequestHandler(rec, unhold)
	require.Equal(t, http.StatusOK, rec.Code)
	got, _ = store.Get(r.ID)
	assert.Equal(t, models.StatusPending, got.Status)

	process := httptest.NewRequest(http.MethodPost, "/api/requests/process?id="+r.ID, nil)
	rec = httptest.NewRecorder()
	h.ProcessRequestHandler(rec, process)
	require.Equal(t, http.StatusOK, rec.Code)
	eligible := store.EligibleForAutoProcess(time.Now())
	require.Len(t, eligible, 1)
	assert.Equal(t, r.ID, eligible[0].ID)
}

func TestAdminActionErrors(t *testing.T) {
	h, store, _ := newTestHandlers(t, handlerTestConfig())

	// Unknown id
	req := httptest.NewRequest(http.MethodPost, "/api/requests/hold?id=no-such-id", nil)
	rec := httptest.NewRecorder()
	h.HoldRequestHandler(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Missing id
	req = httptest.NewRequest(http.MethodPost, "/api/requests/hold", nil)
	rec = httptest.NewRecorder()
	h.HoldRequestHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Wrong method
	req = httptest.NewRequest(http.MethodGet, "/api/requests/hold?id=x", nil)
	rec = httptest.NewRecorder()
	h.HoldRequestHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	// Hold on a request in the wrong state reports not found
	r, err := store.AddRequest("track-a", "Sam", "", "10.0.0.1")
	require.NoError(t, err)
	require.True(t, store.DeleteRequest(r.ID))
	req = httptest.NewRequest(http.MethodPost, "/api/requests/hold?id="+r.ID, nil)
	rec = httptest.NewRecorder()
	h.HoldRequestHandler(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteRequestHandler(t *testing.T) {
	h, store, _ := newTestHandlers(t, handlerTestConfig())

	r, err := store.AddRequest("track-a", "Sam", "", "10.0.0.1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/requests/delete?id="+r.ID, nil)
	rec := httptest.NewRecorder()
	h.DeleteRequestHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Deleting again reports not found
	req = httptest.NewRequest(http.MethodPost, "/api/requests/delete?id="+r.ID, nil)
	rec = httptest.NewRecorder()
	h.DeleteRequestHandler(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
