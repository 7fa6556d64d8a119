package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codearena-labs/arena-go-api/internal/dto"
	"github.com/codearena-labs/arena-go-api/internal/events"
	"github.com/codearena-labs/arena-go-api/internal/judge"
	"github.com/codearena-labs/arena-go-api/internal/models"
	"github.com/codearena-labs/arena-go-api/internal/repository"
)

type stubContestRepo struct {
	contest      models.Contest
	participants map[uint]*models.Participant
	savedRanks   []models.Participant
	nextID       uint
	// duplicateOnCreate simulates losing a registration race: the existence
	// check sees nothing, but the insert hits the unique index.
	duplicateOnCreate bool
}

func newStubContestRepo(contest models.Contest) *stubContestRepo {
	return &stubContestRepo{contest: contest, participants: map[uint]*models.Participant{}}
}

func (r *stubContestRepo) GetByID(ctx context.Context, id uint) (models.Contest, error) {
	if id != r.contest.ID {
		return models.Contest{}, gorm.ErrRecordNotFound
	}
	return r.contest, nil
}

func (r *stubContestRepo) Save(ctx context.Context, contest *models.Contest) error {
	r.contest = *contest
	return nil
}

func (r *stubContestRepo) GetParticipant(ctx context.Context, contestID, userID uint) (models.Participant, error) {
	participant, ok := r.participants[userID]
	if !ok || participant.ContestID != contestID {
		return models.Participant{}, gorm.ErrRecordNotFound
	}
	return *participant, nil
}

func (r *stubContestRepo) CreateParticipant(ctx context.Context, participant *models.Participant) error {
	if r.duplicateOnCreate {
		return gorm.ErrDuplicatedKey
	}
	r.nextID++
	participant.ID = r.nextID
	r.participants[participant.UserID] = participant
	return nil
}

func (r *stubContestRepo) UpdateParticipantLocked(ctx context.Context, contestID, userID uint, fn func(participant *models.Participant) error) error {
	participant, ok := r.participants[userID]
	if !ok || participant.ContestID != contestID {
		return gorm.ErrRecordNotFound
	}
	return fn(participant)
}

func (r *stubContestRepo) ListParticipants(ctx context.Context, contestID uint) ([]models.Participant, error) {
	var participants []models.Participant
	for _, participant := range r.participants {
		if participant.ContestID == contestID {
			participants = append(participants, *participant)
		}
	}
	return participants, nil
}

func (r *stubContestRepo) SaveRanks(ctx context.Context, participants []models.Participant) error {
	r.savedRanks = participants
	return nil
}

type stubProblemRepo struct {
	problems map[uint]models.Problem
}

func (r *stubProblemRepo) List(ctx context.Context, query repository.ProblemQuery) ([]models.Problem, int64, error) {
	var problems []models.Problem
	for _, problem := range r.problems {
		problems = append(problems, problem)
	}
	return problems, int64(len(problems)), nil
}

func (r *stubProblemRepo) GetByID(ctx context.Context, id uint) (models.Problem, error) {
	problem, ok := r.problems[id]
	if !ok {
		return models.Problem{}, gorm.ErrRecordNotFound
	}
	return problem, nil
}

type memorySubmissionRepo struct {
	submissions []models.Submission
}

func (r *memorySubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	submission.ID = uint(len(r.submissions) + 1)
	r.submissions = append(r.submissions, *submission)
	return nil
}

func (r *memorySubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	for _, submission := range r.submissions {
		if submission.ID == id {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (r *memorySubmissionRepo) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Submission, int64, error) {
	var matched []models.Submission
	for _, submission := range r.submissions {
		if submission.UserID == userID {
			matched = append(matched, submission)
		}
	}
	return matched, int64(len(matched)), nil
}

type stubGrader struct {
	result judge.Result
	err    error
	calls  int
}

func (g *stubGrader) Grade(ctx context.Context, languageTag, source string, cases []judge.TestCase, timeout time.Duration) (judge.Result, error) {
	g.calls++
	if g.err != nil {
		return judge.Result{}, g.err
	}
	return g.result, nil
}

type recordingSink struct {
	topics []string
}

func (s *recordingSink) Emit(ctx context.Context, topic string, payload interface{}) {
	s.topics = append(s.topics, topic)
}

func (s *recordingSink) has(topic string) bool {
	for _, t := range s.topics {
		if t == topic {
			return true
		}
	}
	return false
}

func acceptedResult() judge.Result {
	return judge.Result{
		Status: models.SubmissionStatusAccepted,
		Outcomes: []judge.TestOutcome{
			{Passed: true, Category: judge.CategoryPass, ActualOutput: "3", DurationMs: 10},
		},
		Metrics: judge.Metrics{TotalTests: 1, PassedTests: 1, ExecutionTimeMs: 10},
	}
}

func withID(problem models.Problem, id uint) models.Problem {
	problem.ID = id
	return problem
}

func ongoingContest() models.Contest {
	now := time.Now()
	return models.Contest{
		ID:        1,
		Slug:      "weekly-1",
		Title:     "Weekly Contest 1",
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
		Status:    models.ContestStatusOngoing,
		Problems: []models.ContestProblem{
			{ContestID: 1, ProblemID: 7, Points: 100},
		},
	}
}

type contestFixture struct {
	service     ContestService
	contests    *stubContestRepo
	submissions *memorySubmissionRepo
	sink        *recordingSink
	cache       *redis.Client
}

func newContestFixture(t *testing.T, contest models.Contest, grader Grader) *contestFixture {
	t.Helper()

	mini := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	contests := newStubContestRepo(contest)
	submissions := &memorySubmissionRepo{}
	sink := &recordingSink{}
	problems := &stubProblemRepo{problems: map[uint]models.Problem{
		7: withID(models.Problem{Title: "Two Sum", Points: 100, TimeLimitMs: 2000}, 7),
	}}
	streaks := NewStreakService(newStubStreakRepo(&time.Time{}), events.NopSink{}, zerolog.Nop())

	service := NewContestService(contests, problems, submissions, grader, streaks, sink, cache, validator.New(), zerolog.Nop(), ContestConfig{LeaderboardCacheTTL: time.Minute})

	return &contestFixture{
		service:     service,
		contests:    contests,
		submissions: submissions,
		sink:        sink,
		cache:       cache,
	}
}

func TestRegisterAndDuplicate(t *testing.T) {
	fixture := newContestFixture(t, ongoingContest(), &stubGrader{result: acceptedResult()})

	participant, err := fixture.service.Register(context.Background(), 1, 42)
	require.NoError(t, err)
	require.Equal(t, uint(42), participant.UserID)

	_, err = fixture.service.Register(context.Background(), 1, 42)
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterDuplicateRaceMapsToAlreadyRegistered(t *testing.T) {
	fixture := newContestFixture(t, ongoingContest(), &stubGrader{result: acceptedResult()})
	fixture.contests.duplicateOnCreate = true

	_, err := fixture.service.Register(context.Background(), 1, 42)
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterUnknownContest(t *testing.T) {
	fixture := newContestFixture(t, ongoingContest(), &stubGrader{result: acceptedResult()})

	_, err := fixture.service.Register(context.Background(), 99, 42)
	require.ErrorIs(t, err, ErrContestNotFound)
}

func TestSubmitRequiresRegistration(t *testing.T) {
	fixture := newContestFixture(t, ongoingContest(), &stubGrader{result: acceptedResult()})

	_, err := fixture.service.Submit(context.Background(), 1, 7, 42, dto.SubmissionRequest{Language: "python", Source: "print(3)"})
	require.ErrorIs(t, err, ErrNotRegistered)
}

func TestSubmitOutsideWindow(t *testing.T) {
	contest := ongoingContest()
	contest.EndTime = time.Now().Add(-time.Minute)
	fixture := newContestFixture(t, contest, &stubGrader{result: acceptedResult()})

	_, err := fixture.service.Register(context.Background(), 1, 42)
	require.ErrorIs(t, err, ErrContestNotActive)
	require.Equal(t, models.ContestStatusCompleted, fixture.contests.contest.Status, "the status transition is persisted on read")

	_, err = fixture.service.Submit(context.Background(), 1, 7, 42, dto.SubmissionRequest{Language: "python", Source: "print(3)"})
	require.ErrorIs(t, err, ErrContestNotActive)
}

func TestSubmitUnknownProblem(t *testing.T) {
	fixture := newContestFixture(t, ongoingContest(), &stubGrader{result: acceptedResult()})

	_, err := fixture.service.Register(context.Background(), 1, 42)
	require.NoError(t, err)

	_, err = fixture.service.Submit(context.Background(), 1, 999, 42, dto.SubmissionRequest{Language: "python", Source: "print(3)"})
	require.ErrorIs(t, err, ErrProblemNotInContest)
}

func TestSubmitCreditsScoreOnce(t *testing.T) {
	fixture := newContestFixture(t, ongoingContest(), &stubGrader{result: acceptedResult()})

	_, err := fixture.service.Register(context.Background(), 1, 42)
	require.NoError(t, err)

	response, err := fixture.service.Submit(context.Background(), 1, 7, 42, dto.SubmissionRequest{Language: "python", Source: "print(3)"})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusAccepted, response.Status)

	participant := fixture.contests.participants[42]
	require.Equal(t, 100, participant.Score)
	require.True(t, participant.HasSolved(7))
	require.True(t, fixture.sink.has(events.TopicScoreUpdated))
	require.True(t, fixture.sink.has(events.TopicVerdictReady))

	// A second accepted submission to the same problem is recorded but does
	// not move the score.
	_, err = fixture.service.Submit(context.Background(), 1, 7, 42, dto.SubmissionRequest{Language: "python", Source: "print(3)"})
	require.NoError(t, err)
	require.Equal(t, 100, participant.Score)
	require.Len(t, participant.SolvedProblemIDs(), 1)
	require.Len(t, fixture.submissions.submissions, 2)
}

func TestSubmitRejectedVerdictDoesNotScore(t *testing.T) {
	rejected := judge.Result{
		Status: models.SubmissionStatusWrongAnswer,
		Outcomes: []judge.TestOutcome{
			{Passed: false, Category: judge.CategoryWrongAnswer, ActualOutput: "4", DurationMs: 10},
		},
		Metrics: judge.Metrics{TotalTests: 1, PassedTests: 0, ExecutionTimeMs: 10},
	}
	fixture := newContestFixture(t, ongoingContest(), &stubGrader{result: rejected})

	_, err := fixture.service.Register(context.Background(), 1, 42)
	require.NoError(t, err)

	response, err := fixture.service.Submit(context.Background(), 1, 7, 42, dto.SubmissionRequest{Language: "python", Source: "print(4)"})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusWrongAnswer, response.Status)

	participant := fixture.contests.participants[42]
	require.Zero(t, participant.Score)
	require.False(t, participant.HasSolved(7))
	require.False(t, fixture.sink.has(events.TopicScoreUpdated))
}

func TestLeaderboardOrderingAndRanks(t *testing.T) {
	fixture := newContestFixture(t, ongoingContest(), &stubGrader{result: acceptedResult()})

	base := time.Now().Add(-30 * time.Minute)
	scores := []int{50, 80, 80, 30}
	for i, score := range scores {
		userID := uint(i + 1)
		participant := &models.Participant{
			ContestID: 1,
			UserID:    userID,
			JoinedAt:  base.Add(time.Duration(i) * time.Minute),
			Score:     score,
		}
		require.NoError(t, fixture.contests.CreateParticipant(context.Background(), participant))
	}

	leaderboard, err := fixture.service.Leaderboard(context.Background(), 1)
	require.NoError(t, err)

	// Ties are broken by earliest registration and ranks are strictly
	// sequential, never shared.
	require.Equal(t, []uint{2, 3, 1, 4}, entryUserIDs(leaderboard))
	require.Equal(t, []int{1, 2, 3, 4}, entryRanks(leaderboard))
	require.Len(t, fixture.contests.savedRanks, 4)
}

func TestLeaderboardServedFromCacheUntilInvalidated(t *testing.T) {
	fixture := newContestFixture(t, ongoingContest(), &stubGrader{result: acceptedResult()})

	_, err := fixture.service.Register(context.Background(), 1, 1)
	require.NoError(t, err)

	first, err := fixture.service.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, first.Entries, 1)

	// A new registration is invisible while the cached copy is fresh.
	_, err = fixture.service.Register(context.Background(), 1, 42)
	require.NoError(t, err)

	cached, err := fixture.service.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, cached.Entries, 1)

	// An accepted submission invalidates the cache.
	_, err = fixture.service.Submit(context.Background(), 1, 7, 42, dto.SubmissionRequest{Language: "python", Source: "print(3)"})
	require.NoError(t, err)

	refreshed, err := fixture.service.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, refreshed.Entries, 2)
	require.Equal(t, uint(42), refreshed.Entries[0].UserID)
	require.Equal(t, 100, refreshed.Entries[0].Score)
}

func entryUserIDs(leaderboard dto.LeaderboardResponse) []uint {
	ids := make([]uint, 0, len(leaderboard.Entries))
	for _, entry := range leaderboard.Entries {
		ids = append(ids, entry.UserID)
	}
	return ids
}

func entryRanks(leaderboard dto.LeaderboardResponse) []int {
	ranks := make([]int, 0, len(leaderboard.Entries))
	for _, entry := range leaderboard.Entries {
		ranks = append(ranks, entry.Rank)
	}
	return ranks
}
