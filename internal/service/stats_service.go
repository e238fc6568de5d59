package service

import (
	"context"

	"knowbase/internal/domain"
	"knowbase/internal/port"
)

// StatsService provides dashboard counters.
type StatsService interface {
	GetStats(ctx context.Context, actor Actor) (*domain.Stats, error)
}

type statsService struct {
	statsRepo port.StatsRepository
}

// NewStatsService creates a new StatsService implementation.
func NewStatsService(statsRepo port.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

// GetStats returns tenant-wide counters for managers and personal ones otherwise.
func (s *statsService) GetStats(ctx context.Context, actor Actor) (*domain.Stats, error) {
	if actor.IsManager() {
		return s.statsRepo.GetTenantStats(ctx, actor.TenantID)
	}
	return s.statsRepo.GetUserStats(ctx, actor.TenantID, actor.UserID)
}
