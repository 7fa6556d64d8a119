// Package sandbox runs untrusted submissions inside isolated, ephemeral
// workspaces with a hard wall-clock bound per execution.
package sandbox

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	execDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "arena",
		Subsystem: "sandbox",
		Name:      "execution_duration_seconds",
		Help:      "Duration of sandbox executions",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend"})

	execTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "sandbox",
		Name:      "execution_timeouts_total",
		Help:      "Number of executions that hit the timeout",
	}, []string{"backend"})

	execFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "sandbox",
		Name:      "execution_failures_total",
		Help:      "Number of executions that resulted in an internal error",
	}, []string{"backend"})

	cleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "sandbox",
		Name:      "workspace_cleanup_failures_total",
		Help:      "Number of workspaces that could not be removed",
	})
)

// Executor defines the behaviour for running one command inside a workspace.
type Executor interface {
	Execute(ctx context.Context, req ExecutionRequest) (ExecutionResult, error)
}

// ExecutionRequest describes a single command execution against a workspace
// directory on the host.
type ExecutionRequest struct {
	// Args is the argv to run, resolved relative to Dir.
	Args []string
	// Dir is the host workspace directory owning all files for this attempt.
	Dir string
	// Stdin is piped to the process's standard input.
	Stdin string
	// Timeout bounds wall-clock time; exceeding it kills the process tree.
	Timeout time.Duration
	// Image selects the container image for backends that use one.
	Image string
	Env   []string
}

// ExecutionResult summarises the outcome of one execution.
type ExecutionResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	TimedOut bool
}

// DurationMs returns the wall-clock duration in milliseconds.
func (r ExecutionResult) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
