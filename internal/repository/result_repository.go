package repository

import (
	"context"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultRepository reads graded results, responses and proctoring violations.
// Writes happen in the persistence workers.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// GetBySession retrieves the aggregate result of a finished session.
func (r *ResultRepository) GetBySession(ctx context.Context, sessionID uuid.UUID) (*model.ExamResult, error) {
	res := &model.ExamResult{}
	err := r.pool.QueryRow(ctx,
		`SELECT exam_session_id, candidate_id, total_score, max_score, percentage, correct_answers,
			wrong_answers, skipped_questions, pending_manual_review, time_taken_seconds, final_status, submitted_at
		 FROM exam_results WHERE exam_session_id = $1`, sessionID,
	).Scan(
		&res.ExamSessionID, &res.CandidateID, &res.TotalScore, &res.MaxScore, &res.Percentage, &res.CorrectAnswers,
		&res.WrongAnswers, &res.SkippedQuestions, &res.PendingManualReview, &res.TimeTakenSeconds, &res.FinalStatus, &res.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListResponses returns every stored answer of a session in question order.
func (r *ResultRepository) ListResponses(ctx context.Context, sessionID uuid.UUID) ([]model.ExamResponse, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT er.exam_session_id, er.question_id, er.answer_text, er.is_correct, er.points_earned,
			er.evaluation_details, er.answered_at
		 FROM exam_responses er
		 LEFT JOIN exam_session_questions sq
			ON sq.exam_session_id = er.exam_session_id AND sq.question_id = er.question_id
		 WHERE er.exam_session_id = $1
		 ORDER BY sq.position`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ExamResponse
	for rows.Next() {
		var er model.ExamResponse
		if err := rows.Scan(&er.ExamSessionID, &er.QuestionID, &er.AnswerText, &er.IsCorrect, &er.PointsEarned,
			&er.EvaluationDetails, &er.AnsweredAt); err != nil {
			return nil, err
		}
		out = append(out, er)
	}
	return out, rows.Err()
}

// ListViolations returns the proctoring events of a session, oldest first.
func (r *ResultRepository) ListViolations(ctx context.Context, sessionID uuid.UUID) ([]model.SecurityViolation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT exam_session_id, violation_type, severity, details, recorded_at
		 FROM exam_security_violations
		 WHERE exam_session_id = $1
		 ORDER BY recorded_at`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SecurityViolation
	for rows.Next() {
		var v model.SecurityViolation
		if err := rows.Scan(&v.ExamSessionID, &v.ViolationType, &v.Severity, &v.Details, &v.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListSince returns results submitted at or after since, newest first, with
// the number of proctoring violations recorded for each session.
func (r *ResultRepository) ListSince(ctx context.Context, since time.Time, limit int) ([]model.ResultExportRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT res.exam_session_id, res.candidate_id, res.total_score, res.max_score, res.percentage,
			res.correct_answers, res.wrong_answers, res.skipped_questions, res.pending_manual_review,
			res.time_taken_seconds, res.final_status, res.submitted_at,
			(SELECT COUNT(*) FROM exam_security_violations v WHERE v.exam_session_id = res.exam_session_id)
		 FROM exam_results res
		 WHERE res.submitted_at >= $1
		 ORDER BY res.submitted_at DESC
		 LIMIT $2`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ResultExportRow
	for rows.Next() {
		var row model.ResultExportRow
		res := &row.Result
		if err := rows.Scan(
			&res.ExamSessionID, &res.CandidateID, &res.TotalScore, &res.MaxScore, &res.Percentage,
			&res.CorrectAnswers, &res.WrongAnswers, &res.SkippedQuestions, &res.PendingManualReview,
			&res.TimeTakenSeconds, &res.FinalStatus, &res.SubmittedAt,
			&row.Violations,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
