package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/finleymurray/scarepark-queue-sub000/internal/board"
	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
	"github.com/finleymurray/scarepark-queue-sub000/internal/store"
)

func setupAnalyticsRouter(t *testing.T) (*gin.Engine, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Attraction{},
		&model.AttractionState{},
		&model.StatusSample{},
		&model.ThroughputRecord{},
		&model.StatusChangeEvent{},
	))

	s := store.NewGormStore(db)
	b := board.NewService(s, time.Minute)
	handler := NewHandler(s, b, nil, nil, nil)

	r := gin.New()
	r.GET("/api/analytics/board", handler.GetBoardSnapshot)
	return r, s
}

func TestGetBoardSnapshot(t *testing.T) {
	router, s := setupAnalyticsRouter(t)

	require.NoError(t, s.DB().Create(&model.Attraction{ID: 1, Name: "Terror Mine"}).Error)
	ctx := context.Background()

	day := time.Date(2024, 10, 31, 0, 0, 0, 0, time.UTC)
	_, err := s.RecordStatusChange(ctx, store.StatusChange{
		AttractionID: 1,
		Status:       model.StatusOperating,
		WaitMinutes:  10,
		ChangedBy:    "ops",
		ChangedAt:    day.Add(10 * time.Hour),
	})
	require.NoError(t, err)
	_, err = s.RecordStatusChange(ctx, store.StatusChange{
		AttractionID: 1,
		Status:       model.StatusClosed,
		Reason:       "weather",
		ChangedBy:    "ops",
		ChangedAt:    day.Add(10*time.Hour + 30*time.Minute),
	})
	require.NoError(t, err)
	require.NoError(t, s.UpsertThroughput(ctx, &model.ThroughputRecord{
		AttractionID: 1,
		LogDate:      "2024-10-31",
		SlotStart:    "10:00",
		SlotEnd:      "10:30",
		GuestCount:   25,
	}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/analytics/board?date=2024-10-31", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot board.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))

	assert.Equal(t, "2024-10-31", snapshot.Date)
	assert.Equal(t, []string{"Terror Mine"}, snapshot.Series.Attractions)
	assert.Len(t, snapshot.Series.Rows, 2)

	require.Contains(t, snapshot.Intervals, int64(1))
	intervals := snapshot.Intervals[1]
	require.Len(t, intervals, 1)
	assert.Equal(t, model.StatusClosed, intervals[0].Status)

	assert.Equal(t, 25, snapshot.Throughput.GrandTotal)

	require.Contains(t, snapshot.Downtime, int64(1))
	// Closed at 10:30 with no later event: downtime runs to the end of the day.
	assert.Equal(t, 810, snapshot.Downtime[1].DowntimeMinutes)
}

func TestGetBoardSnapshot_WindowNarrowsTheViews(t *testing.T) {
	router, s := setupAnalyticsRouter(t)

	require.NoError(t, s.DB().Create(&model.Attraction{ID: 1, Name: "Grave Robber"}).Error)
	day := time.Date(2024, 10, 31, 0, 0, 0, 0, time.UTC)
	for _, change := range []store.StatusChange{
		{AttractionID: 1, Status: model.StatusOperating, ChangedBy: "ops", ChangedAt: day.Add(9 * time.Hour)},
		{AttractionID: 1, Status: model.StatusClosed, ChangedBy: "ops", ChangedAt: day.Add(20 * time.Hour)},
	} {
		_, err := s.RecordStatusChange(context.Background(), change)
		require.NoError(t, err)
	}

	// 10:00-12:00 window excludes both the 09:00 and 20:00 samples' complement:
	// only rows inside the window survive.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/analytics/board?date=2024-10-31&from=600&to=720", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot board.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Empty(t, snapshot.Series.Rows)
}

func TestGetBoardSnapshot_RejectsInvalidInput(t *testing.T) {
	router, _ := setupAnalyticsRouter(t)

	cases := []struct {
		name string
		url  string
	}{
		{"inverted window", "/api/analytics/board?date=2024-10-31&from=720&to=600"},
		{"non-numeric bound", "/api/analytics/board?date=2024-10-31&from=noon"},
		{"bad date", "/api/analytics/board?date=halloween"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", tc.url, nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
