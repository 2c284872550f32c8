package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MonitorRepository provides aggregate counts for the live session monitor.
type MonitorRepository struct {
	pool *pgxpool.Pool
}

// NewMonitorRepository creates a new MonitorRepository.
func NewMonitorRepository(pool *pgxpool.Pool) *MonitorRepository {
	return &MonitorRepository{pool: pool}
}

// CountByStatus returns the number of sessions in each status.
func (r *MonitorRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM exam_sessions GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// GetAnsweredCounts returns the durable answer count for every in-progress session.
func (r *MonitorRepository) GetAnsweredCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	return r.countPerSession(ctx,
		`SELECT er.exam_session_id, COUNT(*)
		 FROM exam_responses er
		 JOIN exam_sessions es ON es.id = er.exam_session_id
		 WHERE es.status = 'in_progress' AND er.answer_text <> ''
		 GROUP BY er.exam_session_id`)
}

// GetViolationCounts returns the number of proctoring events per in-progress session.
func (r *MonitorRepository) GetViolationCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	return r.countPerSession(ctx,
		`SELECT v.exam_session_id, COUNT(*)
		 FROM exam_security_violations v
		 JOIN exam_sessions es ON es.id = v.exam_session_id
		 WHERE es.status = 'in_progress'
		 GROUP BY v.exam_session_id`)
}

func (r *MonitorRepository) countPerSession(ctx context.Context, query string) (map[uuid.UUID]int64, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var id uuid.UUID
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
