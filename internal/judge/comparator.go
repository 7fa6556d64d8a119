package judge

import (
	"strings"

	"github.com/codearena-labs/arena-go-api/pkg/sandbox"
)

// normalizeOutput strips trailing whitespace and newlines before comparison.
// No semantic or numeric tolerance is applied.
func normalizeOutput(s string) string {
	return strings.TrimRight(s, " \t\r\n")
}

// outputsMatch applies the comparison policy: trim trailing whitespace from
// both sides, then require an exact match.
func outputsMatch(actual, expected string) bool {
	return normalizeOutput(actual) == normalizeOutput(expected)
}

// classify turns one execution result into a test outcome. Precedence:
// timeout, then runtime error (non-zero exit or stderr output), then output
// mismatch, then pass.
func classify(result sandbox.ExecutionResult, expected string) TestOutcome {
	outcome := TestOutcome{
		ActualOutput: result.Stdout,
		DurationMs:   result.DurationMs(),
	}

	switch {
	case result.TimedOut:
		outcome.Category = CategoryTimeout
		outcome.Error = "time limit exceeded"
	case result.ExitCode != 0 || strings.TrimSpace(result.Stderr) != "":
		outcome.Category = CategoryRuntimeError
		outcome.Error = strings.TrimSpace(result.Stderr)
	case !outputsMatch(result.Stdout, expected):
		outcome.Category = CategoryWrongAnswer
	default:
		outcome.Passed = true
		outcome.Category = CategoryPass
	}

	return outcome
}
