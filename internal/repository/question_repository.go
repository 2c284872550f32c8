package repository

import (
	"context"
	"fmt"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// QuestionFilter narrows a question bank listing.
type QuestionFilter struct {
	JobDescriptionID *uuid.UUID
	QuestionType     string
	Difficulty       string
}

const questionColumns = `id, job_description_id, question_type, question_text, mcq_options, correct_answer,
	answer_explanation, points, time_limit_seconds, difficulty_level, topic, created_at`

func scanQuestion(row pgx.Row) (model.Question, error) {
	var q model.Question
	err := row.Scan(
		&q.ID, &q.JobDescriptionID, &q.QuestionType, &q.QuestionText, &q.Options, &q.CorrectAnswer,
		&q.AnswerExplanation, &q.Points, &q.TimeLimitSeconds, &q.Difficulty, &q.Topic, &q.CreatedAt,
	)
	return q, err
}

func collectQuestions(rows pgx.Rows) ([]model.Question, error) {
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_questions (job_description_id, question_type, question_text, mcq_options, correct_answer,
			answer_explanation, points, time_limit_seconds, difficulty_level, topic)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		q.JobDescriptionID, q.QuestionType, q.QuestionText, q.Options, q.CorrectAnswer,
		q.AnswerExplanation, q.Points, q.TimeLimitSeconds, q.Difficulty, q.Topic,
	).Scan(&q.ID, &q.CreatedAt)
}

// GetByID retrieves a question by ID.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, err := scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM exam_questions WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// GetByIDs retrieves the given questions in the order of ids. Unknown IDs are skipped.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM exam_questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	found, err := collectQuestions(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]model.Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}
	ordered := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// ListPool returns every question attached to a job description, or the
// general pool (no job description) when jobID is nil.
func (r *QuestionRepository) ListPool(ctx context.Context, jobID *uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM exam_questions
		 WHERE job_description_id IS NOT DISTINCT FROM $1`, jobID)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

// List returns a filtered page of the question bank and the total match count.
func (r *QuestionRepository) List(ctx context.Context, f QuestionFilter, page, perPage int) ([]model.Question, int, error) {
	where := ` WHERE 1=1`
	var args []any

	if f.JobDescriptionID != nil {
		args = append(args, *f.JobDescriptionID)
		where += fmt.Sprintf(" AND job_description_id = $%d", len(args))
	}
	if f.QuestionType != "" {
		args = append(args, f.QuestionType)
		where += fmt.Sprintf(" AND question_type = $%d", len(args))
	}
	if f.Difficulty != "" {
		args = append(args, f.Difficulty)
		where += fmt.Sprintf(" AND difficulty_level = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exam_questions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, perPage, (page-1)*perPage)
	query := `SELECT ` + questionColumns + ` FROM exam_questions` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	questions, err := collectQuestions(rows)
	return questions, total, err
}
