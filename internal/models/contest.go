package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ContestStatus enumerates contest lifecycle states.
const (
	ContestStatusUpcoming  = "upcoming"
	ContestStatusOngoing   = "ongoing"
	ContestStatusCompleted = "completed"
)

// Contest is a timed competition over a set of problems. Status is derived
// from the clock on every read rather than advanced by a background timer.
type Contest struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	Slug         string           `gorm:"size:128;uniqueIndex;not null" json:"slug"`
	Title        string           `gorm:"size:255;not null" json:"title"`
	StartTime    time.Time        `gorm:"not null" json:"start_time"`
	EndTime      time.Time        `gorm:"not null" json:"end_time"`
	Status       string           `gorm:"size:32;not null" json:"status"`
	Problems     []ContestProblem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"problems,omitempty"`
	Participants []Participant    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"participants,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ComputeStatus derives the lifecycle state from the given instant.
func (c Contest) ComputeStatus(now time.Time) string {
	switch {
	case now.Before(c.StartTime):
		return ContestStatusUpcoming
	case now.After(c.EndTime):
		return ContestStatusCompleted
	default:
		return ContestStatusOngoing
	}
}

// RefreshStatus recomputes the status and reports whether it changed.
func (c *Contest) RefreshStatus(now time.Time) bool {
	next := c.ComputeStatus(now)
	if next == c.Status {
		return false
	}
	c.Status = next
	return true
}

// ProblemByID returns the contest problem entry for the given problem id.
func (c Contest) ProblemByID(problemID uint) (ContestProblem, bool) {
	for _, cp := range c.Problems {
		if cp.ProblemID == problemID {
			return cp, true
		}
	}
	return ContestProblem{}, false
}

// ContestProblem links a problem into a contest with its point value.
type ContestProblem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ContestID uint    `gorm:"not null;index" json:"contest_id"`
	ProblemID uint    `gorm:"not null;index" json:"problem_id"`
	Points    int     `gorm:"default:100" json:"points"`
	Problem   Problem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"problem,omitempty"`
}

// Participant is a user's contest-scoped scoring record. Score only moves on
// the first accepted submission per problem; later accepts append submissions
// without touching the score.
type Participant struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ContestID     uint           `gorm:"not null;uniqueIndex:idx_contest_user" json:"contest_id"`
	UserID        uint           `gorm:"not null;uniqueIndex:idx_contest_user" json:"user_id"`
	JoinedAt      time.Time      `gorm:"not null" json:"joined_at"`
	Score         int            `gorm:"default:0" json:"score"`
	SolvedIDs     datatypes.JSON `gorm:"type:json" json:"solved_problem_ids"`
	SubmissionIDs datatypes.JSON `gorm:"type:json" json:"submission_ids"`
	Rank          int            `gorm:"default:0" json:"rank"`
}

// SolvedProblemIDs decodes the solved-problem set.
func (p Participant) SolvedProblemIDs() []uint {
	return decodeIDList(p.SolvedIDs)
}

// HasSolved reports whether the participant already solved the problem.
func (p Participant) HasSolved(problemID uint) bool {
	for _, id := range p.SolvedProblemIDs() {
		if id == problemID {
			return true
		}
	}
	return false
}

// MarkSolved adds the problem to the solved set if absent.
func (p *Participant) MarkSolved(problemID uint) {
	if p.HasSolved(problemID) {
		return
	}
	p.SolvedIDs = encodeIDList(append(p.SolvedProblemIDs(), problemID))
}

// AppendSubmission records a submission id in arrival order.
func (p *Participant) AppendSubmission(submissionID uint) {
	p.SubmissionIDs = encodeIDList(append(decodeIDList(p.SubmissionIDs), submissionID))
}

func decodeIDList(raw datatypes.JSON) []uint {
	if len(raw) == 0 {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil
	}
	return ids
}

func encodeIDList(ids []uint) datatypes.JSON {
	encoded, err := json.Marshal(ids)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(encoded)
}
