package models

import (
	"time"

	"gorm.io/datatypes"
)

// Badge tiers awarded for consecutive solve days.
const (
	BadgeNone   = "none"
	BadgeBronze = "bronze"
	BadgeSilver = "silver"
	BadgeGold   = "gold"
)

// StreakState tracks a user's daily solve streak and badge tier.
type StreakState struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;uniqueIndex" json:"user_id"`
	CurrentStreak   int             `gorm:"default:0" json:"current_streak"`
	LongestStreak   int             `gorm:"default:0" json:"longest_streak"`
	LastSolvedDate  *time.Time      `json:"last_solved_date,omitempty"`
	StreakFreezes   int             `gorm:"default:0" json:"streak_freezes"`
	FreezeUsedDate  *time.Time      `json:"freeze_used_date,omitempty"`
	Badge           string          `gorm:"size:32;default:'none'" json:"badge"`
	Days            []DailyProgress `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"days,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DailyProgress summarises one calendar day of activity. At most one row
// exists per (streak, date) pair.
type DailyProgress struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	StreakStateID  uint           `gorm:"not null;uniqueIndex:idx_streak_date" json:"streak_state_id"`
	Date           time.Time      `gorm:"not null;uniqueIndex:idx_streak_date" json:"date"`
	ProblemsSolved int            `gorm:"default:0" json:"problems_solved"`
	PointsEarned   int            `gorm:"default:0" json:"points_earned"`
	Topics         datatypes.JSON `gorm:"type:json" json:"topics"`
	Solved         bool           `gorm:"default:false" json:"solved"`
}
