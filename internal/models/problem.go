package models

import (
	"strings"
	"time"
)

// Problem is a gradeable exercise with an ordered set of test cases.
type Problem struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Slug        string     `gorm:"size:128;uniqueIndex;not null" json:"slug"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Statement   string     `gorm:"type:text" json:"statement"`
	Difficulty  string     `gorm:"size:32;not null" json:"difficulty"`
	Topics      string     `gorm:"type:text" json:"topics"`
	Points      int        `gorm:"default:100" json:"points"`
	TimeLimitMs int        `gorm:"default:5000" json:"time_limit_ms"`
	TestCases   []TestCase `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"test_cases,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TestCase holds one input/expected-output pair owned by a problem.
type TestCase struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	ProblemID      uint   `gorm:"not null;index" json:"problem_id"`
	Ordinal        int    `gorm:"not null" json:"ordinal"`
	Input          string `gorm:"type:text" json:"input"`
	ExpectedOutput string `gorm:"type:text" json:"expected_output"`
}

// TopicsSlice returns the topics as a slice of strings.
func (p Problem) TopicsSlice() []string {
	if p.Topics == "" {
		return nil
	}

	parts := strings.Split(p.Topics, ",")
	topics := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			topics = append(topics, trimmed)
		}
	}
	return topics
}
