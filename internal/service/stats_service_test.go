package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

type stubStatsRepo struct {
	stats *domain.TicketStats
	calls int
}

func (s *stubStatsRepo) CollectTicketStats(ctx context.Context) (*domain.TicketStats, error) {
	s.calls++
	return s.stats, nil
}

func TestStatsOverviewAdminOnly(t *testing.T) {
	repo := &stubStatsRepo{stats: &domain.TicketStats{Total: 3}}
	svc := service.NewStatsService(repo, nil, 0, zap.NewNop())

	_, err := svc.Overview(context.Background(), requester)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
	assert.Zero(t, repo.calls)

	stats, err := svc.Overview(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, 1, repo.calls)
}
