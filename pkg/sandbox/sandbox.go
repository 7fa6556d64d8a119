package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrWorkspace indicates the workspace could not be created or written.
// Callers treat it as a server-side failure, never as a verdict.
var ErrWorkspace = errors.New("workspace io failure")

// DefaultTimeout bounds a single execution when the caller provides none.
const DefaultTimeout = 5 * time.Second

// CompileTimeout bounds the compile phase of a session. Callers budgeting a
// whole grading run must account for it on top of the per-case bound.
const CompileTimeout = 30 * time.Second

// CompileError carries the compiler output for a submission that failed to
// build. The run phase is never entered.
type CompileError struct {
	Output string
}

func (e *CompileError) Error() string {
	return "compilation failed"
}

// Recipe describes what the sandbox needs to build and run one submission.
type Recipe struct {
	FileName    string
	Image       string
	CompileArgs []string
	RunArgs     []string
}

// Config groups sandbox configuration values.
type Config struct {
	// Root is the directory under which per-attempt workspaces are created.
	// Defaults to the OS temp directory.
	Root   string
	Logger zerolog.Logger
}

// Sandbox owns workspace lifecycle around an Executor backend. Every
// invocation gets its own uniquely-named directory, and that directory is
// removed on every exit path.
type Sandbox struct {
	executor Executor
	root     string
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// New constructs a sandbox over the given executor backend.
func New(executor Executor, cfg Config) *Sandbox {
	root := cfg.Root
	if root == "" {
		root = os.TempDir()
	}

	return &Sandbox{
		executor: executor,
		root:     root,
		logger:   cfg.Logger.With().Str("component", "sandbox").Logger(),
		tracer:   otel.Tracer("github.com/codearena-labs/arena-go-api/pkg/sandbox"),
	}
}

// Session is one compiled (or interpreter-ready) submission bound to a
// workspace. It must be closed exactly once; Close releases the workspace.
type Session struct {
	sandbox *Sandbox
	recipe  Recipe
	id      string
	dir     string
	closed  bool
}

// Open acquires a workspace, writes the source file, and runs the compile
// phase when the recipe has one. A compile failure returns *CompileError and
// releases the workspace before returning.
func (s *Sandbox) Open(ctx context.Context, recipe Recipe, source string) (*Session, error) {
	id := uuid.NewString()
	dir := filepath.Join(s.root, "arena-"+id)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: create workspace: %v", ErrWorkspace, err)
	}

	session := &Session{sandbox: s, recipe: recipe, id: id, dir: dir}

	if err := os.WriteFile(filepath.Join(dir, recipe.FileName), []byte(source), 0o600); err != nil {
		session.Close()
		return nil, fmt.Errorf("%w: write source: %v", ErrWorkspace, err)
	}

	if len(recipe.CompileArgs) > 0 {
		if err := s.compile(ctx, session); err != nil {
			session.Close()
			return nil, err
		}
	}

	return session, nil
}

func (s *Sandbox) compile(ctx context.Context, session *Session) error {
	ctx, span := s.tracer.Start(ctx, "sandbox.compile", trace.WithAttributes(
		attribute.String("sandbox.workspace", session.id),
	))
	defer span.End()

	result, err := s.executor.Execute(ctx, ExecutionRequest{
		Args:    session.recipe.CompileArgs,
		Dir:     session.dir,
		Timeout: CompileTimeout,
		Image:   session.recipe.Image,
	})
	if err != nil {
		return fmt.Errorf("%w: compile: %v", ErrWorkspace, err)
	}

	if result.ExitCode != 0 || strings.TrimSpace(result.Stderr) != "" {
		return &CompileError{Output: result.Stderr}
	}
	return nil
}

// Run executes the recipe's run command with the given stdin. The timeout is
// a hard wall-clock bound; zero falls back to DefaultTimeout.
func (se *Session) Run(ctx context.Context, stdin string, timeout time.Duration) (ExecutionResult, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, span := se.sandbox.tracer.Start(ctx, "sandbox.run", trace.WithAttributes(
		attribute.String("sandbox.workspace", se.id),
	))
	defer span.End()

	result, err := se.sandbox.executor.Execute(ctx, ExecutionRequest{
		Args:    se.recipe.RunArgs,
		Dir:     se.dir,
		Stdin:   stdin,
		Timeout: timeout,
		Image:   se.recipe.Image,
	})
	if err != nil {
		return result, fmt.Errorf("%w: run: %v", ErrWorkspace, err)
	}
	return result, nil
}

// Dir exposes the workspace path, mainly for tests.
func (se *Session) Dir() string {
	return se.dir
}

// Close removes the workspace and everything it owns. Removal failures are
// retried once, then logged and counted; Close never returns an error.
func (se *Session) Close() {
	if se.closed {
		return
	}
	se.closed = true

	if err := os.RemoveAll(se.dir); err != nil {
		// Best effort second pass for transient failures (e.g. a straggler
		// process still holding a file open right after the kill).
		time.Sleep(50 * time.Millisecond)
		if err := os.RemoveAll(se.dir); err != nil {
			cleanupFailures.Inc()
			se.sandbox.logger.Error().Err(err).Str("workspace", se.dir).Msg("failed to remove workspace")
		}
	}
}

// Run is the one-shot convenience path: acquire a workspace, compile if
// needed, execute once with the given stdin, and release the workspace.
func (s *Sandbox) Run(ctx context.Context, recipe Recipe, source, stdin string, timeout time.Duration) (ExecutionResult, error) {
	session, err := s.Open(ctx, recipe, source)
	if err != nil {
		return ExecutionResult{}, err
	}
	defer session.Close()

	return session.Run(ctx, stdin, timeout)
}
