package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/codearena-labs/arena-go-api/internal/dto"
	"github.com/codearena-labs/arena-go-api/internal/events"
	"github.com/codearena-labs/arena-go-api/internal/models"
	"github.com/codearena-labs/arena-go-api/internal/repository"
)

// ErrContestNotFound indicates the contest cannot be located.
var ErrContestNotFound = errors.New("contest not found")

// ErrAlreadyRegistered indicates the user is already a participant.
var ErrAlreadyRegistered = errors.New("already registered")

// ErrContestNotActive indicates the contest is not currently running.
var ErrContestNotActive = errors.New("contest not active")

// ErrProblemNotInContest indicates the problem is not part of the contest.
var ErrProblemNotInContest = errors.New("problem not in contest")

// ErrNotRegistered indicates the user never registered for the contest.
var ErrNotRegistered = errors.New("not registered for contest")

// ContestService runs the contest lifecycle: registration, submission
// intake, idempotent score crediting, and leaderboard ranking.
type ContestService interface {
	Get(ctx context.Context, contestID uint) (dto.ContestResponse, error)
	Register(ctx context.Context, contestID, userID uint) (dto.ParticipantResponse, error)
	Submit(ctx context.Context, contestID, problemID, userID uint, payload dto.SubmissionRequest) (dto.SubmissionResponse, error)
	Leaderboard(ctx context.Context, contestID uint) (dto.LeaderboardResponse, error)
}

// ContestConfig groups contest service knobs.
type ContestConfig struct {
	LeaderboardCacheTTL time.Duration
}

type contestService struct {
	contests  repository.ContestRepository
	problems  repository.ProblemRepository
	pipeline  gradingPipeline
	streaks   StreakService
	sink      events.Sink
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewContestService constructs the contest scoring service.
func NewContestService(contestRepo repository.ContestRepository, problemRepo repository.ProblemRepository, submissionRepo repository.SubmissionRepository, grader Grader, streaks StreakService, sink events.Sink, cache *redis.Client, validate *validator.Validate, logger zerolog.Logger, cfg ContestConfig) ContestService {
	if cfg.LeaderboardCacheTTL <= 0 {
		cfg.LeaderboardCacheTTL = 30 * time.Second
	}

	logger = logger.With().Str("component", "contest_service").Logger()

	return &contestService{
		contests:  contestRepo,
		problems:  problemRepo,
		pipeline:  gradingPipeline{grader: grader, submissions: submissionRepo, logger: logger},
		streaks:   streaks,
		sink:      sink,
		cache:     cache,
		cacheTTL:  cfg.LeaderboardCacheTTL,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// loadContest fetches the contest and lazily recomputes its status from the
// clock, persisting the transition when one happened.
func (s *contestService) loadContest(ctx context.Context, contestID uint) (models.Contest, error) {
	contest, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Contest{}, ErrContestNotFound
		}
		return models.Contest{}, err
	}

	if contest.RefreshStatus(s.now()) {
		if err := s.contests.Save(ctx, &contest); err != nil {
			s.logger.Error().Err(err).Uint("contest_id", contest.ID).Msg("failed to persist contest status")
		}
	}

	return contest, nil
}

func (s *contestService) Get(ctx context.Context, contestID uint) (dto.ContestResponse, error) {
	contest, err := s.loadContest(ctx, contestID)
	if err != nil {
		return dto.ContestResponse{}, err
	}
	return dto.NewContestResponse(contest), nil
}

// Register enrols the user. Registration stays open from announcement until
// the contest ends; a completed contest accepts no new participants.
func (s *contestService) Register(ctx context.Context, contestID, userID uint) (dto.ParticipantResponse, error) {
	contest, err := s.loadContest(ctx, contestID)
	if err != nil {
		return dto.ParticipantResponse{}, err
	}

	if contest.Status == models.ContestStatusCompleted {
		return dto.ParticipantResponse{}, ErrContestNotActive
	}

	if _, err := s.contests.GetParticipant(ctx, contest.ID, userID); err == nil {
		return dto.ParticipantResponse{}, ErrAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ParticipantResponse{}, err
	}

	participant := models.Participant{
		ContestID: contest.ID,
		UserID:    userID,
		JoinedAt:  s.now(),
	}
	if err := s.contests.CreateParticipant(ctx, &participant); err != nil {
		// Two registrations racing past the existence check both reach the
		// insert; the unique index rejects the loser.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ParticipantResponse{}, ErrAlreadyRegistered
		}
		return dto.ParticipantResponse{}, err
	}

	return dto.NewParticipantResponse(participant), nil
}

func (s *contestService) Submit(ctx context.Context, contestID, problemID, userID uint, payload dto.SubmissionRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	contest, err := s.loadContest(ctx, contestID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if contest.Status != models.ContestStatusOngoing {
		return dto.SubmissionResponse{}, ErrContestNotActive
	}

	contestProblem, ok := contest.ProblemByID(problemID)
	if !ok {
		return dto.SubmissionResponse{}, ErrProblemNotInContest
	}

	if _, err := s.contests.GetParticipant(ctx, contest.ID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrNotRegistered
		}
		return dto.SubmissionResponse{}, err
	}

	problem, err := s.problems.GetByID(ctx, problemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrProblemNotInContest
		}
		return dto.SubmissionResponse{}, err
	}

	submission, result, err := s.pipeline.run(ctx, userID, problem, &contest.ID, payload)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	credited := false
	err = s.contests.UpdateParticipantLocked(ctx, contest.ID, userID, func(participant *models.Participant) error {
		participant.AppendSubmission(submission.ID)
		if submission.IsAccepted() && !participant.HasSolved(problemID) {
			participant.Score += contestProblem.Points
			participant.MarkSolved(problemID)
			credited = true
		}
		return nil
	})
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if submission.IsAccepted() {
		points := 0
		if credited {
			points = contestProblem.Points
		}
		if _, err := s.streaks.RecordSolve(ctx, userID, points, problem.TopicsSlice()); err != nil {
			s.logger.Error().Err(err).Uint("user_id", userID).Msg("failed to record streak progress")
		}
	}

	if credited {
		s.invalidateLeaderboard(ctx, contest.ID)
		s.sink.Emit(ctx, events.TopicScoreUpdated, map[string]interface{}{
			"contest_id": contest.ID,
			"user_id":    userID,
			"problem_id": problemID,
			"points":     contestProblem.Points,
		})
	}

	response := dto.NewSubmissionResponse(submission, true)
	response.TestOutcomes = result.Outcomes
	s.sink.Emit(ctx, events.TopicVerdictReady, response)
	return response, nil
}

// Leaderboard sorts participants by score descending (ties broken by
// earliest registration) and assigns sequential 1-based ranks; ties do not
// share a rank. Recomputed ranks are persisted and the result is cached.
func (s *contestService) Leaderboard(ctx context.Context, contestID uint) (dto.LeaderboardResponse, error) {
	cacheKey := leaderboardCacheKey(contestID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.LeaderboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read leaderboard cache")
		}
	}

	contest, err := s.loadContest(ctx, contestID)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}

	participants, err := s.contests.ListParticipants(ctx, contest.ID)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}

	sort.SliceStable(participants, func(i, j int) bool {
		if participants[i].Score != participants[j].Score {
			return participants[i].Score > participants[j].Score
		}
		return participants[i].JoinedAt.Before(participants[j].JoinedAt)
	})

	for i := range participants {
		participants[i].Rank = i + 1
	}

	if err := s.contests.SaveRanks(ctx, participants); err != nil {
		s.logger.Error().Err(err).Uint("contest_id", contest.ID).Msg("failed to persist ranks")
	}

	response := dto.LeaderboardResponse{ContestID: contest.ID}
	for _, participant := range participants {
		response.Entries = append(response.Entries, dto.NewParticipantResponse(participant))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store leaderboard cache")
			}
		}
	}

	return response, nil
}

func (s *contestService) invalidateLeaderboard(ctx context.Context, contestID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, leaderboardCacheKey(contestID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
	}
}

func leaderboardCacheKey(contestID uint) string {
	return fmt.Sprintf("leaderboard:contest:%d", contestID)
}
