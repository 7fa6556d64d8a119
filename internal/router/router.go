package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/codearena-labs/arena-go-api/internal/config"
	"github.com/codearena-labs/arena-go-api/internal/handler"
	"github.com/codearena-labs/arena-go-api/internal/middleware"
	"github.com/codearena-labs/arena-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProblemHandler    *handler.ProblemHandler
	SubmissionHandler *handler.SubmissionHandler
	ContestHandler    *handler.ContestHandler
	StreakHandler     *handler.StreakHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Grading endpoints are rate limited per user: running untrusted code is
	// the most expensive thing this service does.
	submitLimiter := middleware.RateLimit("submit", 10, time.Minute)

	if deps.ProblemHandler != nil {
		problems := api.Group("/problems", jwtMiddleware)
		deps.ProblemHandler.Register(problems)

		if deps.SubmissionHandler != nil {
			problems.Use("/:id/submissions", submitLimiter)
			deps.SubmissionHandler.RegisterProblemRoutes(problems)
		}
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.ContestHandler != nil {
		contests := api.Group("/contests", jwtMiddleware)
		contests.Use("/:id/problems/:problemID/submissions", submitLimiter)
		deps.ContestHandler.Register(contests)
	}

	if deps.StreakHandler != nil {
		streak := api.Group("/streak", jwtMiddleware)
		deps.StreakHandler.Register(streak)
	}
}
