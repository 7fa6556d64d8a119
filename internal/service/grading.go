package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/codearena-labs/arena-go-api/internal/dto"
	"github.com/codearena-labs/arena-go-api/internal/judge"
	"github.com/codearena-labs/arena-go-api/internal/judge/language"
	"github.com/codearena-labs/arena-go-api/internal/models"
	"github.com/codearena-labs/arena-go-api/internal/observability"
	"github.com/codearena-labs/arena-go-api/internal/repository"
)

// Grader is the grading pipeline contract. *judge.Judge satisfies it; tests
// substitute a stub.
type Grader interface {
	Grade(ctx context.Context, languageTag, source string, cases []judge.TestCase, timeout time.Duration) (judge.Result, error)
}

// gradingPipeline is the grade-and-persist step shared by the practice and
// contest submission paths.
type gradingPipeline struct {
	grader      Grader
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
}

// run grades the payload against the problem's test cases and persists the
// resulting submission. A workspace failure is still recorded (as a runtime
// error, unscored) and surfaced as ErrInternalIO; an unknown language is
// rejected before anything is persisted.
func (p gradingPipeline) run(ctx context.Context, userID uint, problem models.Problem, contestID *uint, payload dto.SubmissionRequest) (models.Submission, judge.Result, error) {
	cases := make([]judge.TestCase, 0, len(problem.TestCases))
	for _, tc := range problem.TestCases {
		cases = append(cases, judge.TestCase{Input: tc.Input, ExpectedOutput: tc.ExpectedOutput})
	}

	timeout := time.Duration(problem.TimeLimitMs) * time.Millisecond
	started := time.Now()

	result, gradeErr := p.grader.Grade(ctx, payload.Language, payload.Source, cases, timeout)
	if gradeErr != nil && errors.Is(gradeErr, language.ErrUnsupportedLanguage) {
		return models.Submission{}, judge.Result{}, gradeErr
	}

	submission := models.Submission{
		UserID:      userID,
		ProblemID:   problem.ID,
		ContestID:   contestID,
		Language:    strings.ToLower(strings.TrimSpace(payload.Language)),
		Source:      payload.Source,
		SubmittedAt: started,
	}

	if gradeErr != nil {
		submission.Status = models.SubmissionStatusRuntimeError
		submission.TimeTakenMs = time.Since(started).Milliseconds()
		if err := p.submissions.Create(ctx, &submission); err != nil {
			p.logger.Error().Err(err).Msg("failed to persist failed submission")
		}
		p.logger.Error().Err(gradeErr).Uint("problem_id", problem.ID).Msg("grading pipeline failure")
		return models.Submission{}, judge.Result{}, errors.Join(ErrInternalIO, gradeErr)
	}

	submission.Status = result.Status
	submission.TotalTests = result.Metrics.TotalTests
	submission.PassedTests = result.Metrics.PassedTests
	submission.ExecutionTimeMs = result.Metrics.ExecutionTimeMs
	submission.TimeTakenMs = time.Since(started).Milliseconds()

	if encoded, err := json.Marshal(result.Outcomes); err == nil {
		submission.TestOutcomes = datatypes.JSON(encoded)
	}

	if err := p.submissions.Create(ctx, &submission); err != nil {
		return models.Submission{}, judge.Result{}, err
	}

	observability.SubmissionsGraded().WithLabelValues(submission.Language, submission.Status).Inc()
	observability.GradingDuration().WithLabelValues(submission.Language).Observe(time.Since(started).Seconds())
	return submission, result, nil
}
