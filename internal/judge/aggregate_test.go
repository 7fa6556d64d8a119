package judge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateAllPassed(t *testing.T) {
	status, metrics := Aggregate([]TestOutcome{
		{Passed: true, Category: CategoryPass, DurationMs: 10},
		{Passed: true, Category: CategoryPass, DurationMs: 15},
	})

	require.Equal(t, StatusAccepted, status)
	require.Equal(t, 2, metrics.TotalTests)
	require.Equal(t, 2, metrics.PassedTests)
	require.Equal(t, int64(25), metrics.ExecutionTimeMs)
}

func TestAggregateTakesFirstFailureCategory(t *testing.T) {
	status, metrics := Aggregate([]TestOutcome{
		{Passed: true, Category: CategoryPass, DurationMs: 5},
		{Category: CategoryTimeout, DurationMs: 5000},
		{Category: CategoryWrongAnswer, DurationMs: 7},
	})

	require.Equal(t, StatusTimeout, status)
	require.Equal(t, 3, metrics.TotalTests)
	require.Equal(t, 1, metrics.PassedTests)
	require.Equal(t, int64(5012), metrics.ExecutionTimeMs)
}

func TestAggregateEmpty(t *testing.T) {
	status, metrics := Aggregate(nil)

	require.Equal(t, StatusAccepted, status)
	require.Zero(t, metrics.TotalTests)
	require.Zero(t, metrics.PassedTests)
	require.Zero(t, metrics.ExecutionTimeMs)
}
