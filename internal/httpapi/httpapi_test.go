package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/store"
)

func testHandler(t *testing.T, history model.History) *Handler {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "typetest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Save(context.Background(), history))
	return New(st)
}

func sampleHistory() model.History {
	base := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	return model.History{
		{ID: "one", Timestamp: base, WPM: 30, Accuracy: 90, DurationSeconds: 60},
		{ID: "two", Timestamp: base.Add(24 * time.Hour), WPM: 40, Accuracy: 95, DurationSeconds: 60},
		{ID: "three", Timestamp: base.Add(48 * time.Hour), WPM: 50, Accuracy: 100, DurationSeconds: 30},
	}
}

func get(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	w := get(t, testHandler(t, nil), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestListAttempts(t *testing.T) {
	w := get(t, testHandler(t, sampleHistory()), "/api/attempts")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got []model.Attempt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "one", got[0].ID)
	assert.Equal(t, 100.0, got[2].Accuracy)
}

func TestListAttemptsEmptyIsArray(t *testing.T) {
	w := get(t, testHandler(t, nil), "/api/attempts")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestListAttemptsLast(t *testing.T) {
	w := get(t, testHandler(t, sampleHistory()), "/api/attempts?last=2")
	require.Equal(t, http.StatusOK, w.Code)

	var got []model.Attempt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].ID)
}

func TestListAttemptsBadQuery(t *testing.T) {
	h := testHandler(t, nil)
	for _, target := range []string{
		"/api/attempts?since=yesterday",
		"/api/attempts?last=-2",
		"/api/summary?window=0",
	} {
		w := get(t, h, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestSummary(t *testing.T) {
	w := get(t, testHandler(t, sampleHistory()), "/api/summary?window=2")
	require.Equal(t, http.StatusOK, w.Code)

	var got summaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Attempts)
	assert.Equal(t, 3, got.TotalStored)
	assert.Equal(t, 40.0, got.AvgWPM)
	assert.Equal(t, 50, got.BestWPM)
	assert.Equal(t, 95.0, got.AvgAccuracy)
	assert.Equal(t, 150, got.TotalSeconds)
	assert.Equal(t, 2, got.Window)
	assert.Len(t, got.WPMTrend, 3)
}

type failingLister struct{}

func (failingLister) ListAttempts(context.Context, model.HistoryConfig) ([]model.Attempt, error) {
	return nil, errors.New("boom")
}

func TestListAttemptsStoreError(t *testing.T) {
	w := get(t, New(failingLister{}), "/api/attempts")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to list attempts")
}
