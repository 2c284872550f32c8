package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/config"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/repository"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/response"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// candidateTokenGrace is added to a candidate token's lifetime beyond the exam window.
const candidateTokenGrace = 15 * time.Minute

// ExamSessionService handles exam session issuing, joining and result lookup.
type ExamSessionService struct {
	sessionRepo  *repository.ExamSessionRepository
	questionRepo *repository.QuestionRepository
	resultRepo   *repository.ResultRepository
	auth         *AuthService
	selector     *QuestionSelector
	cfg          *config.Config
	log          zerolog.Logger
}

// NewExamSessionService creates a new ExamSessionService.
func NewExamSessionService(
	sessionRepo *repository.ExamSessionRepository,
	questionRepo *repository.QuestionRepository,
	resultRepo *repository.ResultRepository,
	auth *AuthService,
	cfg *config.Config,
	log zerolog.Logger,
) *ExamSessionService {
	return &ExamSessionService{
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
		auth:         auth,
		selector:     NewQuestionSelector(),
		cfg:          cfg,
		log:          log.With().Str("component", "exam_session_service").Logger(),
	}
}

// Create issues an exam to a candidate. Explicit question IDs keep their
// order; otherwise questions are drawn from the job description's pool.
func (s *ExamSessionService) Create(ctx context.Context, req *model.CreateExamSessionRequest) (*model.ExamSession, error) {
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = s.cfg.DefaultExamDuration
	}
	expiry := s.cfg.DefaultLinkExpiry
	if req.ExpiresInHours > 0 {
		expiry = time.Duration(req.ExpiresInHours) * time.Hour
	}

	var questionIDs []uuid.UUID
	if len(req.QuestionIDs) > 0 {
		found, err := s.questionRepo.GetByIDs(ctx, req.QuestionIDs)
		if err != nil {
			return nil, fmt.Errorf("load questions: %w", err)
		}
		if len(found) != len(req.QuestionIDs) {
			return nil, ErrQuestionNotFound
		}
		questionIDs = req.QuestionIDs
	} else {
		count := req.TotalQuestions
		if count <= 0 {
			count = s.cfg.DefaultQuestionCount
		}
		pool, err := s.questionRepo.ListPool(ctx, req.JobDescriptionID)
		if err != nil {
			return nil, fmt.Errorf("load question pool: %w", err)
		}
		questionIDs, err = s.selector.Select(pool, count)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	session := &model.ExamSession{
		CandidateID:      req.CandidateID,
		JobDescriptionID: req.JobDescriptionID,
		ExamToken:        GenerateExamToken(now),
		DurationMinutes:  duration,
		ExpiresAt:        now.Add(expiry),
	}
	if err := s.sessionRepo.Create(ctx, session, questionIDs); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("candidate_id", session.CandidateID.String()).
		Int("questions", session.TotalQuestions).
		Int("duration_minutes", duration).
		Msg("Exam session created")
	return session, nil
}

// Join validates an exam link token and returns a candidate token bound to
// the session. Joining again from another tab invalidates the earlier token.
func (s *ExamSessionService) Join(ctx context.Context, examToken string) (*model.JoinExamResponse, error) {
	session, err := s.sessionRepo.GetByToken(ctx, strings.TrimSpace(examToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidExamToken
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	now := time.Now()
	switch {
	case session.Status == model.SessionStatusExpired:
		return nil, ErrExamLinkExpired
	case session.Status.Finished():
		return nil, ErrSessionFinished
	case session.LinkExpired(now):
		if err := s.sessionRepo.UpdateStatus(ctx, session.ID, model.SessionStatusExpired); err != nil {
			s.log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("Failed to expire stale session")
		}
		return nil, ErrExamLinkExpired
	}

	token, err := s.auth.IssueCandidateToken(ctx, session.ID, session.CandidateID, candidateTokenTTL(session, now))
	if err != nil {
		return nil, err
	}
	return &model.JoinExamResponse{Token: token, Session: *session}, nil
}

// Get retrieves a session by ID.
func (s *ExamSessionService) Get(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// List retrieves sessions with pagination, optionally filtered by status.
func (s *ExamSessionService) List(ctx context.Context, status string, page, perPage int) ([]model.ExamSession, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	sessions, total, err := s.sessionRepo.List(ctx, status, page, perPage)
	if err != nil {
		return nil, nil, err
	}
	return sessions, response.NewPagination(page, perPage, total), nil
}

// GetResult returns the graded result of a finished session with its
// responses and proctoring events.
func (s *ExamSessionService) GetResult(ctx context.Context, id uuid.UUID) (*model.ExamResultDetail, error) {
	result, err := s.resultRepo.GetBySession(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := s.Get(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrResultPending
		}
		return nil, fmt.Errorf("get result: %w", err)
	}

	responses, err := s.resultRepo.ListResponses(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	violations, err := s.resultRepo.ListViolations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}

	return &model.ExamResultDetail{
		Result:     *result,
		Responses:  responses,
		Violations: violations,
	}, nil
}

// RunExpirySweeper marks unused exam links as expired on every interval until ctx is done.
func (s *ExamSessionService) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := s.sessionRepo.ExpireStale(ctx, now)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Error().Err(err).Msg("Expiry sweep failed")
				}
				continue
			}
			if n > 0 {
				s.log.Info().Int64("expired", n).Msg("Expired unused exam links")
			}
		}
	}
}

// GenerateExamToken returns a unique, unguessable exam link token.
func GenerateExamToken(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "exam_" + strconv.FormatInt(now.UnixMilli(), 36) + "_" + random[:16]
}

// candidateTokenTTL covers the rest of the link window plus the exam itself.
func candidateTokenTTL(s *model.ExamSession, now time.Time) time.Duration {
	exam := time.Duration(s.DurationMinutes)*time.Minute + candidateTokenGrace
	if s.StartedAt != nil {
		left := s.StartedAt.Add(exam).Sub(now)
		if left < time.Minute {
			return time.Minute
		}
		return left
	}
	window := s.ExpiresAt.Sub(now)
	if window < 0 {
		window = 0
	}
	return window + exam
}
