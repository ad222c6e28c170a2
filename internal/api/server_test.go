package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/companion/internal/clock"
	"github.com/talgya/companion/internal/emotion"
	"github.com/talgya/companion/internal/engine"
	"github.com/talgya/companion/internal/entropy"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	clk := clock.NewManual(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	eng := engine.New(nil, clk, entropy.NewSeeded(1))
	eng.Start()
	t.Cleanup(eng.Stop)
	require.Eventually(t, func() bool { return eng.Commits() >= 1 },
		2*time.Second, time.Millisecond)

	return &Server{Engine: eng, AdminKey: "secret", startedAt: time.Now()}
}

func TestHandleState(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleState(rec, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		emotion.State
		Mood       string  `json:"mood"`
		Engagement float64 `json:"engagement"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, s.Engine.Snapshot(), got.State)
	assert.Equal(t, string(s.Engine.Snapshot().DominantMood()), got.Mood)
}

func TestHandleBehavior(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleBehavior(rec, httptest.NewRequest(http.MethodGet, "/api/v1/behavior", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Behavior     string               `json:"behavior"`
		Presentation emotion.Presentation `json:"presentation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEmpty(t, got.Behavior)
	assert.Greater(t, got.Presentation.BlinkRate, 0.0)
}

func TestStateRejectsPost(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleState(rec, httptest.NewRequest(http.MethodPost, "/api/v1/state", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAdminOnlyRequiresBearerToken(t *testing.T) {
	s := newTestServer(t)
	h := s.adminOnly(s.handleReset)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reset", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reset", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	h(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/reset", nil)
	req.Header.Set("Authorization", "Bearer secret")
	h(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminDisabledWithoutKey(t *testing.T) {
	s := newTestServer(t)
	s.AdminKey = ""
	h := s.adminOnly(s.handleReset)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reset", nil)
	req.Header.Set("Authorization", "Bearer anything")
	h(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleEventInjectsPlayMode(t *testing.T) {
	s := newTestServer(t)
	before := s.Engine.Commits()

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"type":"play","mode":"dance_mode"}`)
	s.handleEvent(rec, httptest.NewRequest(http.MethodPost, "/api/v1/event", body))
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool { return s.Engine.Commits() > before },
		2*time.Second, time.Millisecond)
}

func TestHandleEventRejectsUnknownKinds(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleEvent(rec, httptest.NewRequest(http.MethodPost, "/api/v1/event",
		strings.NewReader(`{"type":"play","mode":"tax_audit"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	s.handleEvent(rec, httptest.NewRequest(http.MethodPost, "/api/v1/event",
		strings.NewReader(`{"type":"mystery"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
