package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/codearena-labs/arena-go-api/internal/config"
	"github.com/codearena-labs/arena-go-api/internal/events"
	"github.com/codearena-labs/arena-go-api/internal/handler"
	"github.com/codearena-labs/arena-go-api/internal/judge"
	"github.com/codearena-labs/arena-go-api/internal/judge/language"
	"github.com/codearena-labs/arena-go-api/internal/models"
	"github.com/codearena-labs/arena-go-api/internal/repository"
	"github.com/codearena-labs/arena-go-api/internal/router"
	"github.com/codearena-labs/arena-go-api/internal/service"
)

// verdictGrader resolves the language for parity with the real judge, then
// returns a fixed verdict.
type verdictGrader struct {
	result judge.Result
}

func (g *verdictGrader) Grade(ctx context.Context, languageTag, source string, cases []judge.TestCase, timeout time.Duration) (judge.Result, error) {
	if _, err := language.Resolve(languageTag); err != nil {
		return judge.Result{}, err
	}
	return g.result, nil
}

var handlerTestDBCounter int

func setupSubmissionApp(t *testing.T, result judge.Result) (*fiber.App, *gorm.DB) {
	t.Helper()

	handlerTestDBCounter++
	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", handlerTestDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Problem{}, &models.TestCase{}, &models.Submission{}, &models.StreakState{}, &models.DailyProgress{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	problemRepo := repository.NewProblemRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	streakRepo := repository.NewStreakRepository(db)

	streakService := service.NewStreakService(streakRepo, events.NopSink{}, logger)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, &verdictGrader{result: result}, streakService, events.NopSink{}, validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		StreakHandler:     handler.NewStreakHandler(streakService, logger),
		ProblemHandler:    handler.NewProblemHandler(service.NewProblemService(problemRepo, logger), logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			return c.Next()
		},
	})

	return app, db
}

func acceptedVerdict() judge.Result {
	return judge.Result{
		Status:   judge.StatusAccepted,
		Outcomes: []judge.TestOutcome{{Passed: true, Category: judge.CategoryPass, DurationMs: 10}},
		Metrics:  judge.Metrics{TotalTests: 1, PassedTests: 1, ExecutionTimeMs: 10},
	}
}

func seedProblem(t *testing.T, db *gorm.DB) models.Problem {
	t.Helper()
	problem := models.Problem{
		Slug: "two-sum", Title: "Two Sum", Difficulty: "easy", Topics: "arrays", Points: 100, TimeLimitMs: 2000,
		TestCases: []models.TestCase{{Ordinal: 1, Input: "1 2", ExpectedOutput: "3"}},
	}
	require.NoError(t, db.Create(&problem).Error)
	return problem
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) (int, []byte) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	request := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	response, err := app.Test(request, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return response.StatusCode, raw
}

func TestSubmitEndpointGradesAndReturnsVerdict(t *testing.T) {
	app, db := setupSubmissionApp(t, acceptedVerdict())
	problem := seedProblem(t, db)

	status, body := postJSON(t, app, fmt.Sprintf("/api/v1/problems/%d/submissions", problem.ID), fiber.Map{
		"language": "python",
		"source":   "print(sum(map(int, input().split())))",
	})
	require.Equal(t, fiber.StatusCreated, status)

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.True(t, envelope.Success)

	var submission struct {
		Status  string `json:"status"`
		Metrics struct {
			PassedTests int `json:"passed_tests"`
			TotalTests  int `json:"total_tests"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &submission))
	require.Equal(t, models.SubmissionStatusAccepted, submission.Status)
	require.Equal(t, 1, submission.Metrics.PassedTests)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSubmitEndpointUnknownProblem(t *testing.T) {
	app, _ := setupSubmissionApp(t, acceptedVerdict())

	status, _ := postJSON(t, app, "/api/v1/problems/999/submissions", fiber.Map{
		"language": "python",
		"source":   "print(1)",
	})
	require.Equal(t, fiber.StatusNotFound, status)
}

func TestSubmitEndpointUnsupportedLanguage(t *testing.T) {
	app, db := setupSubmissionApp(t, acceptedVerdict())
	problem := seedProblem(t, db)

	status, _ := postJSON(t, app, fmt.Sprintf("/api/v1/problems/%d/submissions", problem.ID), fiber.Map{
		"language": "cobol",
		"source":   "DISPLAY '1'",
	})
	require.Equal(t, fiber.StatusBadRequest, status)
}

func TestSubmitEndpointValidatesBody(t *testing.T) {
	app, db := setupSubmissionApp(t, acceptedVerdict())
	problem := seedProblem(t, db)

	status, _ := postJSON(t, app, fmt.Sprintf("/api/v1/problems/%d/submissions", problem.ID), fiber.Map{
		"language": "python",
	})
	require.Equal(t, fiber.StatusBadRequest, status)
}

func TestStreakEndpointReflectsAcceptedSolve(t *testing.T) {
	app, db := setupSubmissionApp(t, acceptedVerdict())
	problem := seedProblem(t, db)

	status, _ := postJSON(t, app, fmt.Sprintf("/api/v1/problems/%d/submissions", problem.ID), fiber.Map{
		"language": "python",
		"source":   "print(3)",
	})
	require.Equal(t, fiber.StatusCreated, status)

	request := httptest.NewRequest(fiber.MethodGet, "/api/v1/streak", nil)
	streakResponse, err := app.Test(request, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, streakResponse.StatusCode)

	var envelope struct {
		Data struct {
			CurrentStreak int    `json:"current_streak"`
			Badge         string `json:"badge"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(streakResponse.Body).Decode(&envelope))
	require.Equal(t, 1, envelope.Data.CurrentStreak)
	require.Equal(t, models.BadgeNone, envelope.Data.Badge)
}

func TestProblemEndpointsHideTestCases(t *testing.T) {
	app, db := setupSubmissionApp(t, acceptedVerdict())
	problem := seedProblem(t, db)

	request := httptest.NewRequest(fiber.MethodGet, fmt.Sprintf("/api/v1/problems/%d", problem.ID), nil)
	response, err := app.Test(request, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, response.StatusCode)

	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "expected_output", "hidden test cases must never leave the API")
	require.Contains(t, string(raw), "two-sum")
}
