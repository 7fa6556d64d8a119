package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestSandbox(t *testing.T) *Sandbox {
	t.Helper()
	return New(NewProcessExecutor(zerolog.Nop()), Config{Root: t.TempDir(), Logger: zerolog.Nop()})
}

// catRecipe echoes stdin back, which makes outputs fully deterministic
// without any language toolchain installed.
var catRecipe = Recipe{
	FileName: "main.txt",
	RunArgs:  []string{"cat"},
}

func TestRunEchoesStdin(t *testing.T) {
	sb := newTestSandbox(t)

	result, err := sb.Run(context.Background(), catRecipe, "source", "hello\n", time.Second)
	require.NoError(t, err)
	require.Equal(t, "hello\n", result.Stdout)
	require.Empty(t, result.Stderr)
	require.Zero(t, result.ExitCode)
	require.False(t, result.TimedOut)
}

func TestSessionWritesSourceAndCleansUp(t *testing.T) {
	sb := newTestSandbox(t)

	session, err := sb.Open(context.Background(), catRecipe, "print(42)")
	require.NoError(t, err)

	sourcePath := filepath.Join(session.Dir(), "main.txt")
	content, err := os.ReadFile(sourcePath)
	require.NoError(t, err)
	require.Equal(t, "print(42)", string(content))

	_, err = session.Run(context.Background(), "a", time.Second)
	require.NoError(t, err)
	_, err = session.Run(context.Background(), "b", time.Second)
	require.NoError(t, err, "a session must support repeated runs")

	session.Close()
	_, err = os.Stat(session.Dir())
	require.True(t, os.IsNotExist(err), "workspace must be removed on close")

	session.Close() // closing twice is a no-op
}

func TestRunTimeoutKillsProcess(t *testing.T) {
	sb := newTestSandbox(t)

	recipe := Recipe{
		FileName: "main.txt",
		RunArgs:  []string{"sleep", "10"},
	}

	start := time.Now()
	result, err := sb.Run(context.Background(), recipe, "", "", 200*time.Millisecond)
	require.NoError(t, err)
	require.True(t, result.TimedOut)
	require.Less(t, time.Since(start), 5*time.Second, "the process group kill must be prompt")
}

func TestCompileFailureReturnsCompileError(t *testing.T) {
	sb := newTestSandbox(t)

	recipe := Recipe{
		FileName:    "main.txt",
		CompileArgs: []string{"sh", "-c", "echo 'syntax error' >&2; exit 1"},
		RunArgs:     []string{"cat"},
	}

	_, err := sb.Open(context.Background(), recipe, "broken")
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	require.Contains(t, compileErr.Output, "syntax error")

	entries, readErr := os.ReadDir(sb.root)
	require.NoError(t, readErr)
	require.Empty(t, entries, "a failed compile must not leak its workspace")
}

func TestCompileSuccessProceedsToRun(t *testing.T) {
	sb := newTestSandbox(t)

	recipe := Recipe{
		FileName:    "main.txt",
		CompileArgs: []string{"true"},
		RunArgs:     []string{"cat", "main.txt"},
	}

	result, err := sb.Run(context.Background(), recipe, "compiled source", "", time.Second)
	require.NoError(t, err)
	require.Equal(t, "compiled source", result.Stdout)
}

func TestRunReportsExitCodeAndStderr(t *testing.T) {
	sb := newTestSandbox(t)

	recipe := Recipe{
		FileName: "main.txt",
		RunArgs:  []string{"sh", "-c", "echo boom >&2; exit 3"},
	}

	result, err := sb.Run(context.Background(), recipe, "", "", time.Second)
	require.NoError(t, err)
	require.Equal(t, 3, result.ExitCode)
	require.Contains(t, result.Stderr, "boom")
}
