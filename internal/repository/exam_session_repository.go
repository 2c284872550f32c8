package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExamSessionRepository handles exam session data access.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

const sessionColumns = `id, candidate_id, job_description_id, exam_token, duration_minutes, total_questions,
	status, started_at, completed_at, expires_at, created_at`

func scanSession(row pgx.Row) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := row.Scan(
		&s.ID, &s.CandidateID, &s.JobDescriptionID, &s.ExamToken, &s.DurationMinutes, &s.TotalQuestions,
		&s.Status, &s.StartedAt, &s.CompletedAt, &s.ExpiresAt, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a session together with its fixed question order in one transaction.
func (r *ExamSessionRepository) Create(ctx context.Context, s *model.ExamSession, questionIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO exam_sessions (candidate_id, job_description_id, exam_token, duration_minutes, total_questions, status, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		s.CandidateID, s.JobDescriptionID, s.ExamToken, s.DurationMinutes, len(questionIDs), model.SessionStatusPending, s.ExpiresAt,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	s.TotalQuestions = len(questionIDs)
	s.Status = model.SessionStatusPending

	rows := make([][]any, len(questionIDs))
	for i, qid := range questionIDs {
		rows[i] = []any{s.ID, qid, i}
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"exam_session_questions"},
		[]string{"exam_session_id", "question_id", "position"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("insert session questions: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a session by ID.
func (r *ExamSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, id))
}

// GetByToken retrieves a session by its exam link token.
func (r *ExamSessionRepository) GetByToken(ctx context.Context, token string) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE exam_token = $1`, token))
}

// ListQuestions returns the session's questions in their fixed order.
func (r *ExamSessionRepository) ListQuestions(ctx context.Context, sessionID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.job_description_id, q.question_type, q.question_text, q.mcq_options, q.correct_answer,
			q.answer_explanation, q.points, q.time_limit_seconds, q.difficulty_level, q.topic, q.created_at
		 FROM exam_session_questions sq
		 JOIN exam_questions q ON q.id = sq.question_id
		 WHERE sq.exam_session_id = $1
		 ORDER BY sq.position`, sessionID)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

// MarkStarted stamps started_at on the first start and moves the session into progress.
// A session that is already started keeps its original started_at.
func (r *ExamSessionRepository) MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`UPDATE exam_sessions
		 SET status = $2, started_at = COALESCE(started_at, $3)
		 WHERE id = $1 AND status IN ('pending', 'in_progress')
		 RETURNING `+sessionColumns,
		id, model.SessionStatusInProgress, at))
}

// UpdateStatus sets a session's status.
func (r *ExamSessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SessionStatus) error {
	_, err := r.pool.Exec(ctx, `UPDATE exam_sessions SET status = $2 WHERE id = $1`, id, status)
	return err
}

// ExpireStale marks pending sessions whose link has passed its expiry and
// returns how many rows changed.
func (r *ExamSessionRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions SET status = 'expired'
		 WHERE status = 'pending' AND expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListInProgress returns every session currently being taken.
func (r *ExamSessionRepository) ListInProgress(ctx context.Context) ([]model.ExamSession, error) {
	return r.list(ctx, `SELECT `+sessionColumns+` FROM exam_sessions WHERE status = 'in_progress' ORDER BY started_at`)
}

// List returns a page of sessions, optionally filtered by status, and the total count.
func (r *ExamSessionRepository) List(ctx context.Context, status string, page, perPage int) ([]model.ExamSession, int, error) {
	where := ` WHERE ($1 = '' OR status = $1)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exam_sessions`+where, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	sessions, err := r.list(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions`+where+` ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		status, perPage, (page-1)*perPage)
	return sessions, total, err
}

func (r *ExamSessionRepository) list(ctx context.Context, query string, args ...any) ([]model.ExamSession, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.ExamSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
