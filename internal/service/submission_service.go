package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/codearena-labs/arena-go-api/internal/dto"
	"github.com/codearena-labs/arena-go-api/internal/events"
	"github.com/codearena-labs/arena-go-api/internal/repository"
)

// ErrProblemNotFound indicates the problem cannot be located.
var ErrProblemNotFound = errors.New("problem not found")

// ErrSubmissionNotFound indicates the submission cannot be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrInternalIO indicates the grading pipeline failed for server-side
// reasons (workspace create/write/cleanup), not because of the submission.
var ErrInternalIO = errors.New("internal grading failure")

// SubmissionService grades practice (non-contest) submissions and exposes
// submission reads.
type SubmissionService interface {
	Submit(ctx context.Context, userID, problemID uint, payload dto.SubmissionRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint, viewerID uint) (dto.SubmissionResponse, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]dto.SubmissionResponse, int64, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	problems    repository.ProblemRepository
	pipeline    gradingPipeline
	streaks     StreakService
	sink        events.Sink
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewSubmissionService constructs the practice submission service.
func NewSubmissionService(submissionRepo repository.SubmissionRepository, problemRepo repository.ProblemRepository, grader Grader, streaks StreakService, sink events.Sink, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	logger = logger.With().Str("component", "submission_service").Logger()

	return &submissionService{
		submissions: submissionRepo,
		problems:    problemRepo,
		pipeline:    gradingPipeline{grader: grader, submissions: submissionRepo, logger: logger},
		streaks:     streaks,
		sink:        sink,
		validator:   validate,
		logger:      logger,
	}
}

func (s *submissionService) Submit(ctx context.Context, userID, problemID uint, payload dto.SubmissionRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	problem, err := s.problems.GetByID(ctx, problemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrProblemNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	submission, result, err := s.pipeline.run(ctx, userID, problem, nil, payload)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if submission.IsAccepted() {
		if _, err := s.streaks.RecordSolve(ctx, userID, problem.Points, problem.TopicsSlice()); err != nil {
			s.logger.Error().Err(err).Uint("user_id", userID).Msg("failed to record streak progress")
		}
	}

	response := dto.NewSubmissionResponse(submission, true)
	response.TestOutcomes = result.Outcomes
	s.sink.Emit(ctx, events.TopicVerdictReady, response)
	return response, nil
}

func (s *submissionService) Get(ctx context.Context, id uint, viewerID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	includeSource := viewerID != 0 && viewerID == submission.UserID
	return dto.NewSubmissionResponse(submission, includeSource), nil
}

func (s *submissionService) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]dto.SubmissionResponse, int64, error) {
	submissions, total, err := s.submissions.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]dto.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.NewSubmissionResponse(submission, true))
	}
	return responses, total, nil
}
