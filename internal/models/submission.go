package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionStatus enumerates the possible verdicts for a submission.
const (
	SubmissionStatusPending      = "pending"
	SubmissionStatusAccepted     = "accepted"
	SubmissionStatusWrongAnswer  = "wrong_answer"
	SubmissionStatusRuntimeError = "runtime_error"
	SubmissionStatusTimeout      = "timeout"
	SubmissionStatusCompileError = "compile_error"
)

// Submission records a graded attempt at a problem. Once the verdict is
// finalised the row is never mutated.
type Submission struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	ProblemID       uint           `gorm:"not null;index" json:"problem_id"`
	ContestID       *uint          `gorm:"index" json:"contest_id,omitempty"`
	Language        string         `gorm:"size:32;not null" json:"language"`
	Source          string         `gorm:"type:text" json:"source"`
	Status          string         `gorm:"size:32;not null" json:"status"`
	TestOutcomes    datatypes.JSON `gorm:"type:json" json:"test_outcomes"`
	TotalTests      int            `gorm:"default:0" json:"total_tests"`
	PassedTests     int            `gorm:"default:0" json:"passed_tests"`
	ExecutionTimeMs int64          `gorm:"default:0" json:"execution_time_ms"`
	Score           int            `gorm:"default:0" json:"score"`
	TimeTakenMs     int64          `gorm:"default:0" json:"time_taken_ms"`
	SubmittedAt     time.Time      `json:"submitted_at"`
	CreatedAt       time.Time      `json:"created_at"`
	Problem         Problem        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsAccepted reports whether every test case passed.
func (s Submission) IsAccepted() bool {
	return s.Status == SubmissionStatusAccepted
}
