package judge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codearena-labs/arena-go-api/pkg/sandbox"
)

func TestOutputsMatchTrimsTrailingWhitespace(t *testing.T) {
	require.True(t, outputsMatch("42\n", "42"))
	require.True(t, outputsMatch("42", "42 \t\r\n"))
	require.True(t, outputsMatch("a\nb\n", "a\nb"))
}

func TestOutputsMatchIsExactOtherwise(t *testing.T) {
	require.False(t, outputsMatch("42", "43"))
	require.False(t, outputsMatch(" 42", "42"), "leading whitespace is significant")
	require.False(t, outputsMatch("a\n\nb", "a\nb"), "interior blank lines are significant")
	require.False(t, outputsMatch("4.20", "4.2"), "no numeric tolerance")
}

func TestClassifyPass(t *testing.T) {
	outcome := classify(sandbox.ExecutionResult{Stdout: "42\n", Duration: 12 * time.Millisecond}, "42")
	require.True(t, outcome.Passed)
	require.Equal(t, CategoryPass, outcome.Category)
	require.Equal(t, int64(12), outcome.DurationMs)
}

func TestClassifyWrongAnswer(t *testing.T) {
	outcome := classify(sandbox.ExecutionResult{Stdout: "41"}, "42")
	require.False(t, outcome.Passed)
	require.Equal(t, CategoryWrongAnswer, outcome.Category)
	require.Equal(t, "41", outcome.ActualOutput)
}

func TestClassifyRuntimeErrorOnNonZeroExit(t *testing.T) {
	outcome := classify(sandbox.ExecutionResult{Stdout: "42", ExitCode: 1}, "42")
	require.Equal(t, CategoryRuntimeError, outcome.Category)
}

func TestClassifyRuntimeErrorOnStderr(t *testing.T) {
	outcome := classify(sandbox.ExecutionResult{Stdout: "42", Stderr: "panic: boom\n"}, "42")
	require.Equal(t, CategoryRuntimeError, outcome.Category)
	require.Equal(t, "panic: boom", outcome.Error)
}

func TestClassifyTimeoutWinsOverEverything(t *testing.T) {
	outcome := classify(sandbox.ExecutionResult{Stdout: "42", Stderr: "killed", ExitCode: -1, TimedOut: true}, "42")
	require.Equal(t, CategoryTimeout, outcome.Category)
	require.Equal(t, "time limit exceeded", outcome.Error)
}
