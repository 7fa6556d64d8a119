package dto

import (
	"encoding/json"
	"time"

	"github.com/codearena-labs/arena-go-api/internal/judge"
	"github.com/codearena-labs/arena-go-api/internal/models"
)

// SubmissionRequest is the payload for grading a solution attempt.
type SubmissionRequest struct {
	Language string `json:"language" validate:"required"`
	Source   string `json:"source" validate:"required"`
}

// SubmissionMetrics summarises a graded submission for API consumers.
type SubmissionMetrics struct {
	TotalTests      int   `json:"total_tests"`
	PassedTests     int   `json:"passed_tests"`
	ExecutionTimeMs int64 `json:"execution_time_ms"`
	Score           int   `json:"score"`
	TimeTakenMs     int64 `json:"time_taken_ms"`
}

// SubmissionResponse describes a submission and its verdict.
type SubmissionResponse struct {
	ID           uint                `json:"id"`
	UserID       uint                `json:"user_id"`
	ProblemID    uint                `json:"problem_id"`
	ContestID    *uint               `json:"contest_id,omitempty"`
	Language     string              `json:"language"`
	Source       string              `json:"source,omitempty"`
	Status       string              `json:"status"`
	TestOutcomes []judge.TestOutcome `json:"test_outcomes,omitempty"`
	Metrics      SubmissionMetrics   `json:"metrics"`
	SubmittedAt  time.Time           `json:"submitted_at"`
}

// NewSubmissionResponse maps a submission model into its API shape. The
// source is included only when the viewer is allowed to see it.
func NewSubmissionResponse(submission models.Submission, includeSource bool) SubmissionResponse {
	response := SubmissionResponse{
		ID:        submission.ID,
		UserID:    submission.UserID,
		ProblemID: submission.ProblemID,
		ContestID: submission.ContestID,
		Language:  submission.Language,
		Status:    submission.Status,
		Metrics: SubmissionMetrics{
			TotalTests:      submission.TotalTests,
			PassedTests:     submission.PassedTests,
			ExecutionTimeMs: submission.ExecutionTimeMs,
			Score:           submission.Score,
			TimeTakenMs:     submission.TimeTakenMs,
		},
		SubmittedAt: submission.SubmittedAt,
	}

	if includeSource {
		response.Source = submission.Source
	}

	if len(submission.TestOutcomes) > 0 {
		var outcomes []judge.TestOutcome
		if err := json.Unmarshal(submission.TestOutcomes, &outcomes); err == nil {
			response.TestOutcomes = outcomes
		}
	}

	return response
}
