package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/huger6/filseries/internal/microservices/http-api/repository"
	"github.com/huger6/filseries/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMarkService struct {
	mock.Mock
}

func (m *MockMarkService) AddSeen(ctx context.Context, userID, itemKind string, itemID int64, fields service.MarkFields) error {
	return m.Called(ctx, userID, itemKind, itemID, fields).Error(0)
}

func (m *MockMarkService) RemoveSeen(ctx context.Context, userID, itemKind string, itemID int64) error {
	return m.Called(ctx, userID, itemKind, itemID).Error(0)
}

func (m *MockMarkService) UpdateSeen(ctx context.Context, userID, itemKind string, itemID int64, fields service.MarkFields) error {
	return m.Called(ctx, userID, itemKind, itemID, fields).Error(0)
}

func (m *MockMarkService) AddWatchlist(ctx context.Context, userID, itemKind string, itemID int64) error {
	return m.Called(ctx, userID, itemKind, itemID).Error(0)
}

func (m *MockMarkService) RemoveWatchlist(ctx context.Context, userID, itemKind string, itemID int64) error {
	return m.Called(ctx, userID, itemKind, itemID).Error(0)
}

func (m *MockMarkService) Page(ctx context.Context, userID, itemKind, relation string, cursor *repository.Cursor, limit int) ([]service.EnrichedItem, bool, error) {
	args := m.Called(ctx, userID, itemKind, relation, cursor, limit)
	var items []service.EnrichedItem
	if args.Get(0) != nil {
		items = args.Get(0).([]service.EnrichedItem)
	}
	return items, args.Bool(1), args.Error(2)
}

func (m *MockMarkService) Overlay(ctx context.Context, userID string, itemIDs []int64) (map[int64]service.MarkFlags, error) {
	args := m.Called(ctx, userID, itemIDs)
	var flags map[int64]service.MarkFlags
	if args.Get(0) != nil {
		flags = args.Get(0).(map[int64]service.MarkFlags)
	}
	return flags, args.Error(1)
}

func (m *MockMarkService) Detail(ctx context.Context, userID, itemKind string, itemID int64) (service.MarkDetail, error) {
	args := m.Called(ctx, userID, itemKind, itemID)
	return args.Get(0).(service.MarkDetail), args.Error(1)
}

const testUserID = "7d1e2f30-9c8b-4a5d-b6e7-0123456789ab"

// newTestRouter wires the mark routes behind a stub auth middleware that
// injects authed into the context when set.
func newTestRouter(svc service.MarkService, authed bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	marks := r.Group("/api/marks")
	marks.Use(func(c *gin.Context) {
		if authed {
			c.Set("userID", testUserID)
		}
		c.Next()
	})
	h := NewMarkHandler(svc)
	h.RegisterRoutes(marks)
	h.RegisterTitleRoutes(r.Group("/api/titles"))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddSeen_Success(t *testing.T) {
	svc := new(MockMarkService)
	svc.On("AddSeen", mock.Anything, testUserID, "movie", int64(550), service.MarkFields{}).Return(nil)

	w := doJSON(t, newTestRouter(svc, true), http.MethodPost, "/api/marks/movie/seen/add", gin.H{"id": 550})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestAddSeen_Unauthenticated(t *testing.T) {
	svc := new(MockMarkService)

	w := doJSON(t, newTestRouter(svc, false), http.MethodPost, "/api/marks/movie/seen/add", gin.H{"id": 550})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "AddSeen")
}

func TestAddWatchlist_ConflictMapsTo409(t *testing.T) {
	svc := new(MockMarkService)
	svc.On("AddWatchlist", mock.Anything, testUserID, "tv", int64(1399)).
		Return(service.ErrRelationConflict)

	w := doJSON(t, newTestRouter(svc, true), http.MethodPost, "/api/marks/tv/watchlist/add", gin.H{"id": 1399})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRemoveSeen_NotFoundMapsTo404(t *testing.T) {
	svc := new(MockMarkService)
	svc.On("RemoveSeen", mock.Anything, testUserID, "movie", int64(99)).
		Return(service.ErrMarkNotFound)

	w := doJSON(t, newTestRouter(svc, true), http.MethodPost, "/api/marks/movie/seen/remove", gin.H{"id": 99})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSeenPage_ReturnsResultsAndHasMore(t *testing.T) {
	svc := new(MockMarkService)
	svc.On("Page", mock.Anything, testUserID, "movie", "seen", (*repository.Cursor)(nil), 30).
		Return([]service.EnrichedItem{{ID: 550, ItemKind: "movie", Title: "Fight Club"}}, true, nil)

	w := doJSON(t, newTestRouter(svc, true), http.MethodPost, "/api/marks/movie/seen/page", gin.H{})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Results []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"results"`
		HasMore bool `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.HasMore)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Fight Club", resp.Results[0].Title)
}

func TestSeenPage_HalfCursorRejected(t *testing.T) {
	svc := new(MockMarkService)

	w := doJSON(t, newTestRouter(svc, true), http.MethodPost, "/api/marks/movie/seen/page",
		gin.H{"last_id": 550})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Page")
}

func TestWatchlistPage_PassesCursorThrough(t *testing.T) {
	svc := new(MockMarkService)
	svc.On("Page", mock.Anything, testUserID, "tv", "watchlist",
		mock.MatchedBy(func(c *repository.Cursor) bool {
			return c != nil && c.LastID == 42
		}), 10).
		Return([]service.EnrichedItem{}, false, nil)

	w := doJSON(t, newTestRouter(svc, true), http.MethodPost, "/api/marks/tv/watchlist/page",
		gin.H{"last_id": 42, "last_date": "2026-01-15T10:30:00Z", "limit": 10})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestOverlay_AnonymousAllowed(t *testing.T) {
	svc := new(MockMarkService)
	svc.On("Overlay", mock.Anything, "", []int64{550, 1399}).
		Return(map[int64]service.MarkFlags{550: {}, 1399: {}}, nil)

	w := doJSON(t, newTestRouter(svc, false), http.MethodPost, "/api/titles/overlay",
		gin.H{"ids": []int64{550, 1399}})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestDetail_InvalidIDRejected(t *testing.T) {
	svc := new(MockMarkService)
	gin.SetMode(gin.TestMode)
	r := newTestRouter(svc, false)

	req := httptest.NewRequest(http.MethodGet, "/api/titles/movie/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Detail")
}
