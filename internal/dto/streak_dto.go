package dto

import (
	"encoding/json"
	"time"

	"github.com/codearena-labs/arena-go-api/internal/models"
)

// DailyProgressResponse summarises one calendar day of solve activity.
type DailyProgressResponse struct {
	Date           string   `json:"date"`
	ProblemsSolved int      `json:"problems_solved"`
	PointsEarned   int      `json:"points_earned"`
	Topics         []string `json:"topics,omitempty"`
	Solved         bool     `json:"solved"`
}

// StreakResponse describes a user's streak state and badge tier.
type StreakResponse struct {
	UserID          uint                    `json:"user_id"`
	CurrentStreak   int                     `json:"current_streak"`
	LongestStreak   int                     `json:"longest_streak"`
	LastSolvedDate  *string                 `json:"last_solved_date,omitempty"`
	StreakFreezes   int                     `json:"streak_freezes"`
	FreezeUsedDate  *string                 `json:"freeze_used_date,omitempty"`
	Badge           string                  `json:"badge"`
	Days            []DailyProgressResponse `json:"days,omitempty"`
}

// NewStreakResponse maps streak state into its API shape.
func NewStreakResponse(state models.StreakState) StreakResponse {
	response := StreakResponse{
		UserID:        state.UserID,
		CurrentStreak: state.CurrentStreak,
		LongestStreak: state.LongestStreak,
		StreakFreezes: state.StreakFreezes,
		Badge:         state.Badge,
	}

	if state.LastSolvedDate != nil {
		formatted := state.LastSolvedDate.Format(time.DateOnly)
		response.LastSolvedDate = &formatted
	}

	if state.FreezeUsedDate != nil {
		formatted := state.FreezeUsedDate.Format(time.DateOnly)
		response.FreezeUsedDate = &formatted
	}

	for _, day := range state.Days {
		entry := DailyProgressResponse{
			Date:           day.Date.Format(time.DateOnly),
			ProblemsSolved: day.ProblemsSolved,
			PointsEarned:   day.PointsEarned,
			Solved:         day.Solved,
		}
		if len(day.Topics) > 0 {
			var topics []string
			if err := json.Unmarshal(day.Topics, &topics); err == nil {
				entry.Topics = topics
			}
		}
		response.Days = append(response.Days, entry)
	}

	return response
}
