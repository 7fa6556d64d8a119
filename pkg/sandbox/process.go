package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// ProcessExecutor runs commands as host processes. It offers no isolation
// beyond the wall-clock bound and the per-attempt workspace; production
// deployments should prefer the Docker backend and keep this one for
// development and tests.
type ProcessExecutor struct {
	logger zerolog.Logger
}

// NewProcessExecutor constructs a host-process executor.
func NewProcessExecutor(logger zerolog.Logger) *ProcessExecutor {
	return &ProcessExecutor{
		logger: logger.With().Str("component", "process_executor").Logger(),
	}
}

// Execute runs the request's argv in the workspace directory, piping stdin
// and enforcing the timeout by killing the whole process group.
func (e *ProcessExecutor) Execute(ctx context.Context, req ExecutionRequest) (ExecutionResult, error) {
	if len(req.Args) == 0 {
		return ExecutionResult{}, errors.New("args are required")
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.Command(req.Args[0], req.Args[1:]...)
	cmd.Dir = req.Dir
	cmd.Env = req.Env
	cmd.Stdin = strings.NewReader(req.Stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Own process group so a timeout kill reaches children too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		execFailures.WithLabelValues("process").Inc()
		return ExecutionResult{}, fmt.Errorf("start process: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	result := ExecutionResult{}
	select {
	case waitErr := <-done:
		result.ExitCode = exitCode(waitErr)
	case <-ctx.Done():
		result.TimedOut = true
		execTimeouts.WithLabelValues("process").Inc()
		e.kill(cmd)
		waitErr := <-done
		result.ExitCode = exitCode(waitErr)
	}

	result.Duration = time.Since(start)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	execDuration.WithLabelValues("process").Observe(result.Duration.Seconds())

	return result, nil
}

func (e *ProcessExecutor) kill(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}

	pgid := cmd.Process.Pid
	if err := syscall.Kill(-pgid, syscall.SIGKILL); err != nil {
		e.logger.Error().Err(err).Int("pid", pgid).Msg("failed to kill process group")
		if err := cmd.Process.Kill(); err != nil {
			e.logger.Error().Err(err).Int("pid", pgid).Msg("failed to kill process")
		}
	}
}

func exitCode(waitErr error) int {
	if waitErr == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
