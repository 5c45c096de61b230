package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buildingclash/internal/service/clash"
	"buildingclash/internal/service/task"
	"buildingclash/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioBody = `{"type": "FeatureCollection", "features": [
	{"id": "building_0", "properties": {"elevation": 0, "height": 4},
	 "geometry": {"type": "Polygon", "coordinates": [[[20, 0], [20, 60], [0, 60], [0, 0], [20, 0]]]}},
	{"id": "building_1", "properties": {"elevation": 2, "height": 4},
	 "geometry": {"type": "Polygon", "coordinates": [[[60, 60], [0, 60], [0, 40], [60, 40], [60, 60]]]}}
]}`

const scenarioResult = `{"type": "FeatureCollection", "features": [{
	"type": "Feature",
	"properties": {"elevation": 2, "height": 2, "buildings": ["building_0", "building_1"]},
	"geometry": {"type": "Polygon", "coordinates": [[[0, 40], [20, 40], [20, 60], [0, 60], [0, 40]]]}
}]}`

func TestEndToEndWithEmbeddedWorker(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cache := task.NewMemoryCache(0)
	queue := task.NewMemoryQueue(8)
	service := clash.NewService(2)
	dispatcher := task.NewDispatcher(cache, queue, service, task.Options{
		PollInterval: 5 * time.Millisecond,
		PollTimeout:  2 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	wg := worker.StartAllWorkers(ctx, 1, func() *worker.ClashWorker {
		return worker.NewClashWorker(queue, cache, service)
	})
	defer func() {
		cancel()
		wg.Wait()
	}()

	r := gin.New()
	SetupRouter(r, dispatcher, nil)

	submit := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/clashes", bytes.NewBufferString(scenarioBody)))
		return w
	}

	first := submit()
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.JSONEq(t, scenarioResult, first.Body.String())

	// Served from the cache; nothing new is queued
	second := submit()
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, scenarioResult, second.Body.String())
	assert.Equal(t, 0, queue.Len())
	assert.Equal(t, 1, cache.Len())

	taskID, err := task.TaskID([]byte(scenarioBody))
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clashes/"+taskID, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, scenarioResult, w.Body.String())
}

func TestMalformedBodyIsNotQueued(t *testing.T) {
	gin.SetMode(gin.TestMode)

	queue := task.NewMemoryQueue(8)
	dispatcher := task.NewDispatcher(task.NewMemoryCache(0), queue, clash.NewService(1), task.Options{})

	r := gin.New()
	SetupRouter(r, dispatcher, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/clashes", bytes.NewBufferString(`{"features": [`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "Invalid JSON input"}`, w.Body.String())
	assert.Equal(t, 0, queue.Len())
}
