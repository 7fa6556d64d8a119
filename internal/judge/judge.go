package judge

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/codearena-labs/arena-go-api/internal/judge/language"
	"github.com/codearena-labs/arena-go-api/pkg/sandbox"
)

// Judge grades submissions: resolve the language recipe, drive the sandbox
// over every test case, and aggregate the outcomes into a verdict.
type Judge struct {
	sandbox        *sandbox.Sandbox
	defaultTimeout time.Duration
	logger         zerolog.Logger
	tracer         trace.Tracer
}

// Config adjusts judge behaviour.
type Config struct {
	// DefaultTimeout bounds a single test case when the problem carries no
	// time limit of its own.
	DefaultTimeout time.Duration
}

// New constructs a judge over the given sandbox.
func New(sb *sandbox.Sandbox, logger zerolog.Logger, cfg Config) *Judge {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = sandbox.DefaultTimeout
	}

	return &Judge{
		sandbox:        sb,
		defaultTimeout: cfg.DefaultTimeout,
		logger:         logger.With().Str("component", "judge").Logger(),
		tracer:         otel.Tracer("github.com/codearena-labs/arena-go-api/internal/judge"),
	}
}

// Grade compiles (if required) and runs the submission against every test
// case. The timeout bounds each case; the whole run is additionally capped at
// timeout x cases plus a grace second. A compile failure short-circuits the
// run; every other failure category still executes the remaining cases so
// passed/total analytics stay complete.
//
// Returned errors are server-side failures (unknown language, workspace IO),
// never verdicts.
func (j *Judge) Grade(ctx context.Context, languageTag, source string, cases []TestCase, timeout time.Duration) (Result, error) {
	recipe, err := language.Resolve(languageTag)
	if err != nil {
		return Result{}, err
	}

	if timeout <= 0 {
		timeout = j.defaultTimeout
	}

	ctx, span := j.tracer.Start(ctx, "judge.grade", trace.WithAttributes(
		attribute.String("judge.language", recipe.Tag),
		attribute.Int("judge.cases", len(cases)),
	))
	defer span.End()

	// Submission-level budget on top of the per-case bound. Compiled
	// languages get the full compile allowance as well, so a slow but valid
	// build on a small suite is not cut short.
	budget := timeout*time.Duration(len(cases)+1) + time.Second
	if recipe.Compiled() {
		budget += sandbox.CompileTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	session, err := j.sandbox.Open(runCtx, sandbox.Recipe{
		FileName:    recipe.FileName,
		Image:       recipe.Image,
		CompileArgs: recipe.CompileArgs,
		RunArgs:     recipe.RunArgs,
	}, source)
	if err != nil {
		var compileErr *sandbox.CompileError
		if errors.As(err, &compileErr) {
			return compileResult(compileErr, len(cases)), nil
		}
		return Result{}, err
	}
	defer session.Close()

	outcomes := make([]TestOutcome, 0, len(cases))
	for i, testCase := range cases {
		execResult, err := session.Run(runCtx, testCase.Input, timeout)
		if err != nil {
			j.logger.Error().Err(err).Int("case", i).Msg("sandbox run failed")
			return Result{}, err
		}
		outcomes = append(outcomes, classify(execResult, testCase.ExpectedOutput))
	}

	status, metrics := Aggregate(outcomes)
	span.SetAttributes(attribute.String("judge.status", status))

	return Result{Status: status, Outcomes: outcomes, Metrics: metrics}, nil
}

func compileResult(compileErr *sandbox.CompileError, totalCases int) Result {
	return Result{
		Status: StatusCompileError,
		Outcomes: []TestOutcome{{
			Category: CategoryCompileError,
			Error:    compileErr.Output,
		}},
		Metrics: Metrics{TotalTests: totalCases},
	}
}
