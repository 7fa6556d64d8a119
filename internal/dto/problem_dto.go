package dto

import "github.com/codearena-labs/arena-go-api/internal/models"

// ProblemListRequest filters the problem catalogue.
type ProblemListRequest struct {
	Difficulty string `json:"difficulty"`
	Topic      string `json:"topic"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// ProblemResponse describes a problem without its hidden test cases.
type ProblemResponse struct {
	ID          uint     `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Statement   string   `json:"statement,omitempty"`
	Difficulty  string   `json:"difficulty"`
	Topics      []string `json:"topics,omitempty"`
	Points      int      `json:"points"`
	TimeLimitMs int      `json:"time_limit_ms"`
}

// NewProblemResponse maps a problem model into its API shape. Test cases are
// never exposed.
func NewProblemResponse(problem models.Problem) ProblemResponse {
	return ProblemResponse{
		ID:          problem.ID,
		Slug:        problem.Slug,
		Title:       problem.Title,
		Statement:   problem.Statement,
		Difficulty:  problem.Difficulty,
		Topics:      problem.TopicsSlice(),
		Points:      problem.Points,
		TimeLimitMs: problem.TimeLimitMs,
	}
}

// ProblemListResponse is a paginated problem listing.
type ProblemListResponse struct {
	Items      []ProblemResponse `json:"items"`
	TotalItems int64             `json:"total_items"`
}
