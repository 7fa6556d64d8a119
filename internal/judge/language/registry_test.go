package language

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveKnownLanguages(t *testing.T) {
	python, err := Resolve("python")
	require.NoError(t, err)
	require.Equal(t, "main.py", python.FileName)
	require.False(t, python.Compiled())

	cpp, err := Resolve("cpp")
	require.NoError(t, err)
	require.Equal(t, "main.cpp", cpp.FileName)
	require.True(t, cpp.Compiled())

	java, err := Resolve("java")
	require.NoError(t, err)
	require.Equal(t, "Main.java", java.FileName)
	require.True(t, java.Compiled())
}

func TestResolveNormalisesCaseAndAliases(t *testing.T) {
	upper, err := Resolve("  PYTHON ")
	require.NoError(t, err)
	require.Equal(t, "python", upper.Tag)

	alias, err := Resolve("C++")
	require.NoError(t, err)
	require.Equal(t, "cpp", alias.Tag)
}

func TestResolveUnknownLanguage(t *testing.T) {
	_, err := Resolve("brainfuck")
	require.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestTagsAreSortedAndComplete(t *testing.T) {
	tags := Tags()
	require.Contains(t, tags, "python")
	require.Contains(t, tags, "javascript")
	require.Contains(t, tags, "java")
	require.Contains(t, tags, "cpp")
	require.IsIncreasing(t, tags)
}
