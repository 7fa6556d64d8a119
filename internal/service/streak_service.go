package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/codearena-labs/arena-go-api/internal/dto"
	"github.com/codearena-labs/arena-go-api/internal/events"
	"github.com/codearena-labs/arena-go-api/internal/models"
	"github.com/codearena-labs/arena-go-api/internal/repository"
)

// ErrNoFreezeAvailable indicates the user has no streak freezes left.
var ErrNoFreezeAvailable = errors.New("no streak freeze available")

// ErrFreezeAlreadyUsedToday indicates a freeze was already consumed today.
var ErrFreezeAlreadyUsedToday = errors.New("streak freeze already used today")

// badgeTiers maps streak lengths onto badge tiers, ascending. Crossing a
// tier upward grants that tier's freeze bonus.
var badgeTiers = []struct {
	Threshold int
	Badge     string
	Freezes   int
}{
	{Threshold: 3, Badge: models.BadgeBronze, Freezes: 1},
	{Threshold: 7, Badge: models.BadgeSilver, Freezes: 2},
	{Threshold: 30, Badge: models.BadgeGold, Freezes: 3},
}

// StreakService maintains the per-user daily activity ledger, streak
// counters, freezes, and badge tier.
type StreakService interface {
	RecordSolve(ctx context.Context, userID uint, pointsEarned int, topics []string) (dto.StreakResponse, error)
	UseFreeze(ctx context.Context, userID uint) (dto.StreakResponse, error)
	Get(ctx context.Context, userID uint) (dto.StreakResponse, error)
}

type streakService struct {
	repo   repository.StreakRepository
	sink   events.Sink
	logger zerolog.Logger
	now    func() time.Time
}

// NewStreakService constructs the streak service.
func NewStreakService(repo repository.StreakRepository, sink events.Sink, logger zerolog.Logger) StreakService {
	return &streakService{
		repo:   repo,
		sink:   sink,
		logger: logger.With().Str("component", "streak_service").Logger(),
		now:    time.Now,
	}
}

// calendarDay truncates an instant to its UTC calendar date. All streak
// comparisons happen at day granularity, never on raw timestamps.
func calendarDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// freezeCovers reports whether an already-consumed freeze pays for the missed
// day: one used on the missed day itself, or on the return day before solving.
// The consumption date persists across day rolls, so a freeze spent on the
// missed day is still honoured when the user comes back.
func freezeCovers(state *models.StreakState, missedDay time.Time) bool {
	if state.FreezeUsedDate == nil {
		return false
	}
	return !calendarDay(*state.FreezeUsedDate).Before(missedDay)
}

// RecordSolve registers one accepted verdict for the user. Only the first
// solve of a calendar day moves the streak counters; later solves the same
// day only enrich that day's progress entry.
func (s *streakService) RecordSolve(ctx context.Context, userID uint, pointsEarned int, topics []string) (dto.StreakResponse, error) {
	today := calendarDay(s.now())

	var snapshot models.StreakState
	err := s.repo.UpdateLocked(ctx, userID, func(state *models.StreakState) error {
		if day := findDay(state, today); day != nil {
			day.ProblemsSolved++
			day.PointsEarned += pointsEarned
			day.Topics = mergeTopics(day.Topics, topics)
			day.Solved = true
		} else {
			s.advanceStreak(state, today)
			state.Days = append(state.Days, models.DailyProgress{
				StreakStateID:  state.ID,
				Date:           today,
				ProblemsSolved: 1,
				PointsEarned:   pointsEarned,
				Topics:         mergeTopics(nil, topics),
				Solved:         true,
			})
			last := today
			state.LastSolvedDate = &last
		}

		if state.CurrentStreak > state.LongestStreak {
			state.LongestStreak = state.CurrentStreak
		}
		s.updateBadge(state)

		snapshot = *state
		return nil
	})
	if err != nil {
		return dto.StreakResponse{}, err
	}

	response := dto.NewStreakResponse(snapshot)
	s.sink.Emit(ctx, events.TopicStreakUpdated, response)
	return response, nil
}

// advanceStreak applies the continuation rule for the first solve of a day.
// A one-day gap continues the streak; a two-day gap continues it when a
// freeze covers the missed day, consuming one automatically only if none was
// already spent on the gap; anything longer resets to one.
func (s *streakService) advanceStreak(state *models.StreakState, today time.Time) {
	if state.LastSolvedDate == nil {
		state.CurrentStreak = 1
		return
	}

	gap := daysBetween(calendarDay(*state.LastSolvedDate), today)
	switch {
	case gap == 0:
		// Same day; counters were already moved by that day's first solve.
	case gap == 1:
		state.CurrentStreak++
	case gap == 2 && freezeCovers(state, today.AddDate(0, 0, -1)):
		state.CurrentStreak++
	case gap == 2 && state.StreakFreezes > 0:
		state.StreakFreezes--
		used := today
		state.FreezeUsedDate = &used
		state.CurrentStreak++
	default:
		state.CurrentStreak = 1
	}
}

func (s *streakService) updateBadge(state *models.StreakState) {
	badge := models.BadgeNone
	grant := 0
	for _, tier := range badgeTiers {
		if state.CurrentStreak >= tier.Threshold {
			badge = tier.Badge
			grant = tier.Freezes
		}
	}

	if badge != state.Badge && badgeRank(badge) > badgeRank(state.Badge) {
		state.StreakFreezes += grant
	}
	state.Badge = badge
}

func badgeRank(badge string) int {
	switch badge {
	case models.BadgeBronze:
		return 1
	case models.BadgeSilver:
		return 2
	case models.BadgeGold:
		return 3
	default:
		return 0
	}
}

// UseFreeze explicitly consumes one streak freeze for today. At most one
// freeze can be spent per calendar day.
func (s *streakService) UseFreeze(ctx context.Context, userID uint) (dto.StreakResponse, error) {
	today := calendarDay(s.now())

	var snapshot models.StreakState
	err := s.repo.UpdateLocked(ctx, userID, func(state *models.StreakState) error {
		if state.FreezeUsedDate != nil && calendarDay(*state.FreezeUsedDate).Equal(today) {
			return ErrFreezeAlreadyUsedToday
		}
		if state.StreakFreezes <= 0 {
			return ErrNoFreezeAvailable
		}

		state.StreakFreezes--
		used := today
		state.FreezeUsedDate = &used
		snapshot = *state
		return nil
	})
	if err != nil {
		return dto.StreakResponse{}, err
	}

	return dto.NewStreakResponse(snapshot), nil
}

// Get returns the user's streak state; a user with no activity yet gets a
// zeroed response rather than an error.
func (s *streakService) Get(ctx context.Context, userID uint) (dto.StreakResponse, error) {
	state, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StreakResponse{UserID: userID, Badge: models.BadgeNone}, nil
		}
		return dto.StreakResponse{}, err
	}
	return dto.NewStreakResponse(state), nil
}

func findDay(state *models.StreakState, date time.Time) *models.DailyProgress {
	for i := range state.Days {
		if calendarDay(state.Days[i].Date).Equal(date) {
			return &state.Days[i]
		}
	}
	return nil
}

func mergeTopics(existing datatypes.JSON, incoming []string) datatypes.JSON {
	seen := map[string]struct{}{}
	var merged []string

	if len(existing) > 0 {
		var current []string
		if err := json.Unmarshal(existing, &current); err == nil {
			for _, topic := range current {
				if _, ok := seen[topic]; !ok {
					seen[topic] = struct{}{}
					merged = append(merged, topic)
				}
			}
		}
	}

	for _, topic := range incoming {
		if _, ok := seen[topic]; !ok {
			seen[topic] = struct{}{}
			merged = append(merged, topic)
		}
	}

	sort.Strings(merged)
	encoded, err := json.Marshal(merged)
	if err != nil {
		return existing
	}
	return datatypes.JSON(encoded)
}
