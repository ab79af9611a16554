package service

import (
	"context"

	"github.com/huger6/filseries/internal/microservices/http-api/models"
	"github.com/huger6/filseries/internal/microservices/http-api/repository"
)

const defaultActivityLimit = 10

type StatsService interface {
	UserStats(ctx context.Context, userID string) (repository.UserStats, error)
	RecentActivity(ctx context.Context, userID string, limit int) ([]models.UserMark, error)
}

type statsService struct {
	repo repository.StatsRepository
}

func NewStatsService(repo repository.StatsRepository) StatsService {
	return &statsService{repo: repo}
}

func (s *statsService) UserStats(ctx context.Context, userID string) (repository.UserStats, error) {
	return s.repo.UserStats(ctx, userID)
}

func (s *statsService) RecentActivity(ctx context.Context, userID string, limit int) ([]models.UserMark, error) {
	if limit < 1 {
		limit = defaultActivityLimit
	}
	return s.repo.RecentActivity(ctx, userID, limit)
}
