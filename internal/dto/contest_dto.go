package dto

import (
	"time"

	"github.com/codearena-labs/arena-go-api/internal/models"
)

// ContestProblemResponse describes one problem inside a contest.
type ContestProblemResponse struct {
	ProblemID uint   `json:"problem_id"`
	Title     string `json:"title"`
	Points    int    `json:"points"`
}

// ContestResponse describes a contest and its derived status.
type ContestResponse struct {
	ID        uint                     `json:"id"`
	Slug      string                   `json:"slug"`
	Title     string                   `json:"title"`
	StartTime time.Time                `json:"start_time"`
	EndTime   time.Time                `json:"end_time"`
	Status    string                   `json:"status"`
	Problems  []ContestProblemResponse `json:"problems,omitempty"`
}

// NewContestResponse maps a contest model into its API shape.
func NewContestResponse(contest models.Contest) ContestResponse {
	response := ContestResponse{
		ID:        contest.ID,
		Slug:      contest.Slug,
		Title:     contest.Title,
		StartTime: contest.StartTime,
		EndTime:   contest.EndTime,
		Status:    contest.Status,
	}

	for _, cp := range contest.Problems {
		response.Problems = append(response.Problems, ContestProblemResponse{
			ProblemID: cp.ProblemID,
			Title:     cp.Problem.Title,
			Points:    cp.Points,
		})
	}

	return response
}

// ParticipantResponse describes a contest participant.
type ParticipantResponse struct {
	UserID           uint      `json:"user_id"`
	JoinedAt         time.Time `json:"joined_at"`
	Score            int       `json:"score"`
	SolvedProblemIDs []uint    `json:"solved_problem_ids"`
	Rank             int       `json:"rank"`
}

// NewParticipantResponse maps a participant model into its API shape.
func NewParticipantResponse(participant models.Participant) ParticipantResponse {
	return ParticipantResponse{
		UserID:           participant.UserID,
		JoinedAt:         participant.JoinedAt,
		Score:            participant.Score,
		SolvedProblemIDs: participant.SolvedProblemIDs(),
		Rank:             participant.Rank,
	}
}

// LeaderboardResponse is the ranked standings for a contest.
type LeaderboardResponse struct {
	ContestID uint                  `json:"contest_id"`
	Entries   []ParticipantResponse `json:"entries"`
}
