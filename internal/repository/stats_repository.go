package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// StatsRepository aggregates ticket counts for the admin overview.
type StatsRepository interface {
	CollectTicketStats(ctx context.Context) (*domain.TicketStats, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository instantiates the repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) CollectTicketStats(ctx context.Context) (*domain.TicketStats, error) {
	stats := &domain.TicketStats{
		ByStatus:   make(map[domain.TicketStatus]int64),
		ByPriority: make(map[domain.TicketPriority]int64),
		ByCategory: make(map[string]int64),
	}

	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&stats.Total); err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`, func(key string, count int64) {
		stats.ByStatus[domain.TicketStatus(key)] = count
	}); err != nil {
		return nil, err
	}
	if err := r.groupCount(ctx, `SELECT priority, COUNT(*) FROM tickets GROUP BY priority`, func(key string, count int64) {
		stats.ByPriority[domain.TicketPriority(key)] = count
	}); err != nil {
		return nil, err
	}
	if err := r.groupCount(ctx, `SELECT category, COUNT(*) FROM tickets GROUP BY category`, func(key string, count int64) {
		stats.ByCategory[key] = count
	}); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *statsRepository) groupCount(ctx context.Context, query string, record func(key string, count int64)) error {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			count int64
		)
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		record(key, count)
	}
	return rows.Err()
}
