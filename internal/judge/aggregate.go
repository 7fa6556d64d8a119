package judge

// Aggregate reduces per-case outcomes into a submission verdict and summary
// metrics. The status is accepted only when every outcome passed; otherwise
// it takes the category of the first non-passing outcome in test-case order.
// ExecutionTimeMs is the sum of per-case durations.
func Aggregate(outcomes []TestOutcome) (string, Metrics) {
	metrics := Metrics{TotalTests: len(outcomes)}

	status := StatusAccepted
	for _, outcome := range outcomes {
		metrics.ExecutionTimeMs += outcome.DurationMs
		if outcome.Passed {
			metrics.PassedTests++
			continue
		}
		if status == StatusAccepted {
			status = statusForCategory(outcome.Category)
		}
	}

	return status, metrics
}
