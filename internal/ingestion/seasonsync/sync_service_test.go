package seasonsync

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/huger6/filseries/internal/catalog"
	"github.com/huger6/filseries/internal/microservices/http-api/models"
	"github.com/huger6/filseries/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMarkRepository struct {
	mock.Mock
}

func (m *MockMarkRepository) Add(ctx context.Context, mark *models.UserMark) error {
	return m.Called(ctx, mark).Error(0)
}

func (m *MockMarkRepository) Remove(ctx context.Context, key repository.MarkKey) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockMarkRepository) UpdateFields(ctx context.Context, key repository.MarkKey, update repository.MarkUpdate) error {
	return m.Called(ctx, key, update).Error(0)
}

func (m *MockMarkRepository) Exists(ctx context.Context, key repository.MarkKey) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockMarkRepository) Get(ctx context.Context, key repository.MarkKey) (*models.UserMark, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserMark), args.Error(1)
}

func (m *MockMarkRepository) Promote(ctx context.Context, mark *models.UserMark) error {
	return m.Called(ctx, mark).Error(0)
}

func (m *MockMarkRepository) FetchPage(ctx context.Context, userID, itemKind, relation string, cursor *repository.Cursor, limit int) ([]models.UserMark, error) {
	args := m.Called(ctx, userID, itemKind, relation, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserMark), args.Error(1)
}

func (m *MockMarkRepository) MarkedIDs(ctx context.Context, userID string) (repository.MarkedIDSet, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(repository.MarkedIDSet), args.Error(1)
}

func (m *MockMarkRepository) SeriesInProgress(ctx context.Context) ([]models.UserMark, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserMark), args.Error(1)
}

type stubCatalog struct {
	byID map[int64]*catalog.Metadata
}

func (s *stubCatalog) Details(ctx context.Context, kind string, id int64) (*catalog.Metadata, error) {
	return s.byID[id], nil
}

// recordingNotifier captures Notify calls; the other notification
// operations are unused by the sync job.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []models.Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, userID, nType, message string, targetURL *string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, models.Notification{UserID: userID, Type: nType, Message: message, TargetURL: targetURL})
	return nil
}

func (n *recordingNotifier) List(ctx context.Context, userID string, onlyUnread bool) ([]models.Notification, error) {
	return nil, nil
}
func (n *recordingNotifier) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}
func (n *recordingNotifier) MarkAsRead(ctx context.Context, userID string, notificationID int64) error {
	return nil
}
func (n *recordingNotifier) MarkAllAsRead(ctx context.Context, userID string) error { return nil }
func (n *recordingNotifier) Delete(ctx context.Context, userID string, notificationID int64) error {
	return nil
}
func (n *recordingNotifier) DeleteAllRead(ctx context.Context, userID string) error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

const userA = "3b4f7c9a-4b53-4e3b-8c3e-1f2a3b4c5d6e"

func TestRun_FlagsNewSeasonAndNotifies(t *testing.T) {
	status := models.StatusWatching
	marks := []models.UserMark{
		{UserID: userA, ItemID: 1399, ItemKind: models.KindSeries, Relation: models.RelationSeen,
			ProgressStatus: &status, LastSeasonSeen: intPtr(7)},
		{UserID: userA, ItemID: 100, ItemKind: models.KindSeries, Relation: models.RelationSeen,
			ProgressStatus: &status, LastSeasonSeen: intPtr(3)},
	}

	repo := new(MockMarkRepository)
	repo.On("SeriesInProgress", mock.Anything).Return(marks, nil)
	repo.On("UpdateFields", mock.Anything,
		repository.MarkKey{UserID: userA, ItemID: 1399, ItemKind: models.KindSeries, Relation: models.RelationSeen},
		mock.MatchedBy(func(u repository.MarkUpdate) bool {
			return u.ProgressStatus != nil && *u.ProgressStatus == models.StatusNewSeason
		})).Return(nil)

	cat := &stubCatalog{byID: map[int64]*catalog.Metadata{
		1399: {ID: 1399, Kind: models.KindSeries, Title: "Game of Thrones", NumberOfSeasons: 8},
		100:  {ID: 100, Kind: models.KindSeries, Title: "Stalled Show", NumberOfSeasons: 3},
	}}
	notifier := &recordingNotifier{}

	sync := NewSyncService(repo, cat, notifier, 2, testLogger())
	err := sync.Run(context.Background())

	require.NoError(t, err)
	repo.AssertExpectations(t)

	// Only the series with an unseen season produces a notification.
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, userA, notifier.calls[0].UserID)
	assert.Equal(t, models.NotificationNewSeason, notifier.calls[0].Type)
	assert.Contains(t, notifier.calls[0].Message, "Game of Thrones")
}

func TestRun_MissingCatalogRecordSkipped(t *testing.T) {
	status := models.StatusCompletedSeason
	marks := []models.UserMark{
		{UserID: userA, ItemID: 42, ItemKind: models.KindSeries, Relation: models.RelationSeen,
			ProgressStatus: &status, LastSeasonSeen: intPtr(1)},
	}

	repo := new(MockMarkRepository)
	repo.On("SeriesInProgress", mock.Anything).Return(marks, nil)

	notifier := &recordingNotifier{}
	sync := NewSyncService(repo, &stubCatalog{byID: map[int64]*catalog.Metadata{}}, notifier, 1, testLogger())

	require.NoError(t, sync.Run(context.Background()))
	assert.Empty(t, notifier.calls)
}
