package repository

import (
	"context"
	"fmt"

	"github.com/huger6/filseries/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// UserStats are the aggregate counters shown on a user's profile.
type UserStats struct {
	MoviesSeen     int64 `json:"movies_seen"`
	SeriesTracked  int64 `json:"series_tracked"`
	WatchlistCount int64 `json:"watchlist_count"`
}

type StatsRepository interface {
	UserStats(ctx context.Context, userID string) (UserStats, error)
	RecentActivity(ctx context.Context, userID string, limit int) ([]models.UserMark, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) UserStats(ctx context.Context, userID string) (UserStats, error) {
	var stats UserStats
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.UserMark{}).Where("user_id = ?", userID)
	}

	if err := base().
		Where("item_kind = ? AND relation = ?", models.KindMovie, models.RelationSeen).
		Count(&stats.MoviesSeen).Error; err != nil {
		return UserStats{}, fmt.Errorf("count movies seen: %w", err)
	}
	if err := base().
		Where("item_kind = ? AND relation = ?", models.KindSeries, models.RelationSeen).
		Count(&stats.SeriesTracked).Error; err != nil {
		return UserStats{}, fmt.Errorf("count series tracked: %w", err)
	}
	if err := base().
		Where("relation = ?", models.RelationWatchlist).
		Count(&stats.WatchlistCount).Error; err != nil {
		return UserStats{}, fmt.Errorf("count watchlist: %w", err)
	}
	return stats, nil
}

// RecentActivity returns the user's most recently touched marks across all
// kinds and relations, newest first.
func (r *statsRepository) RecentActivity(ctx context.Context, userID string, limit int) ([]models.UserMark, error) {
	var marks []models.UserMark
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, item_id DESC").
		Limit(limit).
		Find(&marks).Error; err != nil {
		return nil, fmt.Errorf("fetch recent activity: %w", err)
	}
	return marks, nil
}
