package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const statsCacheKey = "support-desk:stats:overview"

// StatsService serves aggregate ticket counts for the admin dashboard,
// cached in redis for a short window.
type StatsService struct {
	stats  repository.StatsRepository
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsService constructs the service. A nil cache disables caching.
func NewStatsService(stats repository.StatsRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *StatsService {
	return &StatsService{stats: stats, cache: cache, ttl: ttl, logger: logger}
}

// Overview returns ticket totals grouped by status, priority and category.
// Admin only.
func (s *StatsService) Overview(ctx context.Context, actor domain.Actor) (*domain.TicketStats, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("administrator role required")
	}

	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	stats, err := s.stats.CollectTicketStats(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.toCache(ctx, stats)
	return stats, nil
}

func (s *StatsService) fromCache(ctx context.Context) *domain.TicketStats {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var stats domain.TicketStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

// toCache is best effort; a cache write failure never fails the request.
func (s *StatsService) toCache(ctx context.Context, stats *domain.TicketStats) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statsCacheKey, raw, s.ttl).Err(); err != nil && s.logger != nil {
		s.logger.Warn("stats cache write failed", zap.Error(err))
	}
}
