package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/config"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	SubmissionBatchSize    = 20
	SubmissionBatchTimeout = 2 * time.Second
	SubmissionPollTimeout  = 1 * time.Second
)

// SubmissionWorker consumes graded submissions and writes responses, the
// aggregate result and the final session status in one transaction each.
type SubmissionWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewSubmissionWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *SubmissionWorker {
	return &SubmissionWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "submission_worker").Logger(),
	}
}

func (w *SubmissionWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SubmissionWorker started")

	batch := make([]*model.SubmissionJob, 0, SubmissionBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= SubmissionBatchSize || time.Since(lastFlush) >= SubmissionBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			w.flushSafe(shutdownCtx, batch)
			cancel()
			return

		default:
			item, err := w.rdb.BLPop(ctx, SubmissionPollTimeout, config.WorkerKey.PersistSubmissionsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var job model.SubmissionJob
			if err := json.Unmarshal([]byte(item[1]), &job); err != nil {
				w.log.Error().Err(err).Str("data", item[1]).Msg("Discarding malformed submission")
				continue
			}

			batch = append(batch, &job)
		}
	}
}

// flushSafe writes the whole batch in one transaction, falls back to one
// transaction per submission, and requeues whatever still fails.
func (w *SubmissionWorker) flushSafe(ctx context.Context, batch []*model.SubmissionJob) {
	if len(batch) == 0 {
		return
	}

	if err := w.persist(ctx, batch...); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk submission write failed, using fallback")

		done := make([]*model.SubmissionJob, 0, len(batch))
		for _, job := range batch {
			if err := w.persist(ctx, job); err != nil {
				if errors.Is(err, errBadSubmission) {
					w.log.Error().Err(err).Str("session_id", job.Submission.SessionID).Msg("Dropping invalid submission")
					continue
				}
				w.log.Error().Err(err).Str("session_id", job.Submission.SessionID).Msg("Submission write failed, requeueing")
				raw, _ := json.Marshal(job)
				w.rdb.RPush(ctx, config.WorkerKey.PersistSubmissionsQueue, raw)
				continue
			}
			done = append(done, job)
		}
		w.clearAutosave(ctx, done)
		return
	}

	w.log.Info().Int("count", len(batch)).Msg("Persisted submissions")
	w.clearAutosave(ctx, batch)
}

func (w *SubmissionWorker) persist(ctx context.Context, jobs ...*model.SubmissionJob) error {
	b := &pgx.Batch{}
	for _, job := range jobs {
		if err := queueSubmission(b, job); err != nil {
			return err
		}
	}

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var errBadSubmission = errors.New("invalid submission payload")

// queueSubmission appends every statement needed to persist one submission.
// Earlier autosaved rows for answers that were later cleared are removed, the
// final answers are upserted with their grading, the result row is written
// once, and the session leaves the running states.
func queueSubmission(b *pgx.Batch, job *model.SubmissionJob) error {
	result, err := model.NewExamResult(job.CandidateID, job.Submission)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadSubmission, err)
	}
	sub := job.Submission

	evals := make(map[int]int, len(sub.Evaluations))
	for i, e := range sub.Evaluations {
		evals[e.Index] = i
	}

	answered := make([]uuid.UUID, 0, len(sub.Answers))
	type row struct {
		qid     uuid.UUID
		text    string
		correct *bool
		points  int
		details []byte
	}
	rows := make([]row, 0, len(sub.Answers))
	for _, a := range sub.Answers {
		qid, err := uuid.Parse(a.QuestionID)
		if err != nil {
			return fmt.Errorf("%w: question %q", errBadSubmission, a.QuestionID)
		}
		r := row{qid: qid, text: a.Value}
		if i, ok := evals[a.Index]; ok {
			e := sub.Evaluations[i]
			correct := e.IsCorrect
			r.correct = &correct
			r.points = e.PointsEarned
			r.details, err = json.Marshal(e.Evaluation)
			if err != nil {
				return err
			}
		}
		answered = append(answered, qid)
		rows = append(rows, r)
	}

	b.Queue(
		`DELETE FROM exam_responses
		 WHERE exam_session_id = $1 AND NOT (question_id = ANY($2))`,
		result.ExamSessionID, answered,
	)
	for _, r := range rows {
		b.Queue(
			`INSERT INTO exam_responses (exam_session_id, question_id, answer_text, is_correct, points_earned, evaluation_details, answered_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (exam_session_id, question_id) DO UPDATE
			 SET answer_text = EXCLUDED.answer_text,
			     is_correct = EXCLUDED.is_correct,
			     points_earned = EXCLUDED.points_earned,
			     evaluation_details = EXCLUDED.evaluation_details`,
			result.ExamSessionID, r.qid, r.text, r.correct, r.points, r.details, sub.SubmittedAt,
		)
	}
	b.Queue(
		`INSERT INTO exam_results (exam_session_id, candidate_id, total_score, max_score, percentage,
			correct_answers, wrong_answers, skipped_questions, pending_manual_review, time_taken_seconds,
			final_status, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (exam_session_id) DO NOTHING`,
		result.ExamSessionID, result.CandidateID, result.TotalScore, result.MaxScore, result.Percentage,
		result.CorrectAnswers, result.WrongAnswers, result.SkippedQuestions, result.PendingManualReview, result.TimeTakenSeconds,
		result.FinalStatus, result.SubmittedAt,
	)
	b.Queue(
		`UPDATE exam_sessions
		 SET status = $2, completed_at = $3
		 WHERE id = $1 AND status IN ('pending', 'in_progress')`,
		result.ExamSessionID, result.FinalStatus, result.SubmittedAt,
	)
	return nil
}

// clearAutosave drops the Redis autosave buffers of persisted sessions.
// The submitted marker stays until it expires so no instance restarts them.
func (w *SubmissionWorker) clearAutosave(ctx context.Context, jobs []*model.SubmissionJob) {
	if len(jobs) == 0 {
		return
	}
	pipe := w.rdb.Pipeline()
	for _, job := range jobs {
		pipe.Del(ctx,
			config.CacheKey.SessionAnswersKey(job.Submission.SessionID),
			config.CacheKey.SessionTimerKey(job.Submission.SessionID),
		)
	}
	_, _ = pipe.Exec(ctx)
}
