package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codearena-labs/arena-go-api/internal/models"
)

func seedProblems(t *testing.T, db *gorm.DB) {
	t.Helper()
	problems := []models.Problem{
		{Slug: "two-sum", Title: "Two Sum", Difficulty: "easy", Topics: "arrays,hashing", Points: 100, TimeLimitMs: 2000,
			TestCases: []models.TestCase{
				{Ordinal: 2, Input: "b", ExpectedOutput: "B"},
				{Ordinal: 1, Input: "a", ExpectedOutput: "A"},
			}},
		{Slug: "reverse-list", Title: "Reverse List", Difficulty: "medium", Topics: "linked-lists", Points: 200, TimeLimitMs: 3000},
		{Slug: "max-flow", Title: "Max Flow", Difficulty: "hard", Topics: "graphs", Points: 500, TimeLimitMs: 5000},
	}
	for i := range problems {
		require.NoError(t, db.Create(&problems[i]).Error)
	}
}

func TestProblemRepositoryListFilters(t *testing.T) {
	db := setupArenaTestDB(t, &models.Problem{}, &models.TestCase{})
	repo := NewProblemRepository(db)
	seedProblems(t, db)

	all, total, err := repo.List(context.Background(), ProblemQuery{})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, all, 3)

	easy, total, err := repo.List(context.Background(), ProblemQuery{Difficulty: "easy"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "two-sum", easy[0].Slug)

	graphs, _, err := repo.List(context.Background(), ProblemQuery{Topic: "graphs"})
	require.NoError(t, err)
	require.Len(t, graphs, 1)
	require.Equal(t, "max-flow", graphs[0].Slug)

	paged, total, err := repo.List(context.Background(), ProblemQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, paged, 1)
}

func TestProblemRepositoryGetByIDOrdersTestCases(t *testing.T) {
	db := setupArenaTestDB(t, &models.Problem{}, &models.TestCase{})
	repo := NewProblemRepository(db)
	seedProblems(t, db)

	var seeded models.Problem
	require.NoError(t, db.Where("slug = ?", "two-sum").First(&seeded).Error)

	problem, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.Len(t, problem.TestCases, 2)
	require.Equal(t, 1, problem.TestCases[0].Ordinal, "test cases come back in ordinal order")
	require.Equal(t, "a", problem.TestCases[0].Input)

	_, err = repo.GetByID(context.Background(), 999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
