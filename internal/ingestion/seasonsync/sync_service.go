package seasonsync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/huger6/filseries/internal/catalog"
	"github.com/huger6/filseries/internal/microservices/http-api/models"
	"github.com/huger6/filseries/internal/microservices/http-api/repository"
	"github.com/huger6/filseries/internal/microservices/http-api/service"
)

// SyncService walks every tracked series and flags marks whose catalog
// record shows a season past the user's last seen one. Per-item failures
// are logged and skipped; one bad series never aborts the run.
type SyncService struct {
	marks         repository.MarkRepository
	catalog       catalog.Client
	notifications service.NotificationService
	workerCount   int
	logger        *slog.Logger
}

func NewSyncService(marks repository.MarkRepository, cat catalog.Client, notifications service.NotificationService, workerCount int, logger *slog.Logger) *SyncService {
	if workerCount < 1 {
		workerCount = 1
	}
	return &SyncService{
		marks:         marks,
		catalog:       cat,
		notifications: notifications,
		workerCount:   workerCount,
		logger:        logger,
	}
}

// Run performs one full pass over all series in progress.
func (s *SyncService) Run(ctx context.Context) error {
	marks, err := s.marks.SeriesInProgress(ctx)
	if err != nil {
		return fmt.Errorf("load series in progress: %w", err)
	}
	s.logger.Info("season sync pass started", "series_marks", len(marks))

	pool := NewWorkerPool(s.workerCount, s.logger)
	pool.Start()
	for _, mark := range marks {
		mark := mark
		pool.Submit(func(ctx context.Context) error {
			return s.checkSeries(ctx, mark)
		})
	}
	pool.Wait()

	s.logger.Info("season sync pass finished")
	return nil
}

func (s *SyncService) checkSeries(ctx context.Context, mark models.UserMark) error {
	meta, err := s.catalog.Details(ctx, models.KindSeries, mark.ItemID)
	if err != nil {
		return fmt.Errorf("series %d: %w", mark.ItemID, err)
	}
	if meta == nil {
		// Gone from the catalog; nothing to flag.
		return nil
	}

	lastSeen := 0
	if mark.LastSeasonSeen != nil {
		lastSeen = *mark.LastSeasonSeen
	}
	if meta.NumberOfSeasons <= lastSeen {
		return nil
	}

	status := models.StatusNewSeason
	if err := s.marks.UpdateFields(ctx, repository.MarkKey{
		UserID:   mark.UserID,
		ItemID:   mark.ItemID,
		ItemKind: models.KindSeries,
		Relation: models.RelationSeen,
	}, repository.MarkUpdate{ProgressStatus: &status}); err != nil {
		return fmt.Errorf("flag new season for series %d: %w", mark.ItemID, err)
	}

	targetURL := fmt.Sprintf("/title?id=%d&type=%s", mark.ItemID, models.KindSeries)
	message := fmt.Sprintf("Season %d of %s is available", meta.NumberOfSeasons, meta.Title)
	if err := s.notifications.Notify(ctx, mark.UserID, models.NotificationNewSeason, message, &targetURL); err != nil {
		return fmt.Errorf("notify user %s about series %d: %w", mark.UserID, mark.ItemID, err)
	}

	s.logger.Info("new season flagged",
		"user_id", mark.UserID, "series_id", mark.ItemID, "seasons", meta.NumberOfSeasons)
	return nil
}
