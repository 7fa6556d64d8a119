// Package judge drives the execution sandbox over a problem's test cases and
// reduces the per-case outcomes into a single verdict.
package judge

// Outcome categories for a single test case.
const (
	CategoryPass         = "pass"
	CategoryWrongAnswer  = "wrong_answer"
	CategoryRuntimeError = "runtime_error"
	CategoryTimeout      = "timeout"
	CategoryCompileError = "compile_error"
)

// Submission-level verdicts. The values line up with the persisted
// submission status column so services can assign them directly.
const (
	StatusAccepted     = "accepted"
	StatusWrongAnswer  = "wrong_answer"
	StatusRuntimeError = "runtime_error"
	StatusTimeout      = "timeout"
	StatusCompileError = "compile_error"
)

// TestCase is one input/expected-output pair to grade against.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// TestOutcome classifies a submission's behaviour on one test case.
type TestOutcome struct {
	Passed       bool   `json:"passed"`
	Category     string `json:"category"`
	ActualOutput string `json:"actual_output,omitempty"`
	Error        string `json:"error,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
}

// Metrics summarises a graded submission.
type Metrics struct {
	TotalTests      int   `json:"total_tests"`
	PassedTests     int   `json:"passed_tests"`
	ExecutionTimeMs int64 `json:"execution_time_ms"`
}

// Result is the final product of grading one submission.
type Result struct {
	Status   string        `json:"status"`
	Outcomes []TestOutcome `json:"outcomes"`
	Metrics  Metrics       `json:"metrics"`
}

func statusForCategory(category string) string {
	switch category {
	case CategoryPass:
		return StatusAccepted
	case CategoryTimeout:
		return StatusTimeout
	case CategoryRuntimeError:
		return StatusRuntimeError
	case CategoryCompileError:
		return StatusCompileError
	default:
		return StatusWrongAnswer
	}
}
