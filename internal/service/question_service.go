package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/engine"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/repository"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/response"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const defaultTimeLimitSeconds = 60

// QuestionService handles question bank business logic.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo}
}

// Create validates and stores a new question.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	q, err := BuildQuestion(req)
	if err != nil {
		return nil, err
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// Get retrieves a question by ID.
func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

// List retrieves a filtered page of the question bank.
func (s *QuestionService) List(ctx context.Context, query *model.ListQuestionsQuery) ([]model.Question, *response.Pagination, error) {
	page, perPage := query.Page, query.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	filter := repository.QuestionFilter{
		QuestionType: query.QuestionType,
		Difficulty:   query.Difficulty,
	}
	if query.JobDescriptionID != "" {
		id, err := uuid.Parse(query.JobDescriptionID)
		if err != nil {
			return nil, nil, &ValidationError{Fields: map[string]string{"job_description_id": "must be a valid UUID"}}
		}
		filter.JobDescriptionID = &id
	}

	questions, total, err := s.questionRepo.List(ctx, filter, page, perPage)
	if err != nil {
		return nil, nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, response.NewPagination(page, perPage, total), nil
}

// BuildQuestion checks the cross-field rules of a create request that tag
// validation cannot express and returns the row to insert.
// MCQ questions need at least two options with unique labels and a correct
// answer naming one of them. Text questions carry no options.
func BuildQuestion(req *model.CreateQuestionRequest) (*model.Question, error) {
	fields := make(map[string]string)

	q := &model.Question{
		JobDescriptionID:  req.JobDescriptionID,
		QuestionType:      engine.QuestionType(req.QuestionType),
		QuestionText:      strings.TrimSpace(req.QuestionText),
		CorrectAnswer:     strings.TrimSpace(req.CorrectAnswer),
		AnswerExplanation: req.AnswerExplanation,
		Points:            req.Points,
		TimeLimitSeconds:  req.TimeLimitSeconds,
		Difficulty:        engine.Difficulty(req.Difficulty),
		Topic:             req.Topic,
	}
	if q.TimeLimitSeconds <= 0 {
		q.TimeLimitSeconds = defaultTimeLimitSeconds
	}
	if q.Difficulty == "" {
		q.Difficulty = engine.DifficultyMedium
	}

	switch q.QuestionType {
	case engine.QuestionTypeMCQ:
		if len(req.Options) < 2 {
			fields["mcq_options"] = "at least 2 options are required"
			break
		}
		seen := make(map[string]bool, len(req.Options))
		q.Options = make([]engine.Option, 0, len(req.Options))
		for _, o := range req.Options {
			label := strings.TrimSpace(o.Label)
			key := strings.ToUpper(label)
			if seen[key] {
				fields["mcq_options"] = fmt.Sprintf("duplicate option label %q", label)
				break
			}
			seen[key] = true
			q.Options = append(q.Options, engine.Option{Label: label, Text: strings.TrimSpace(o.Text)})
		}
		if q.CorrectAnswer == "" {
			fields["correct_answer"] = "is required for mcq questions"
		} else if !seen[strings.ToUpper(q.CorrectAnswer)] {
			fields["correct_answer"] = "must be one of the option labels"
		}
	case engine.QuestionTypeText:
		if len(req.Options) > 0 {
			fields["mcq_options"] = "must be empty for text questions"
		}
	default:
		fields["question_type"] = "must be one of [mcq text]"
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return q, nil
}
