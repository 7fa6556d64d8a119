// Package language maps language tags onto execution recipes.
package language

import (
	"errors"
	"sort"
	"strings"
)

// ErrUnsupportedLanguage indicates the requested language tag is unknown.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Recipe describes how to compile and run a submission for one language.
// Recipes are immutable and registered at startup; CompileArgs is nil for
// interpreted languages.
type Recipe struct {
	Tag         string
	FileName    string
	Image       string
	CompileArgs []string
	RunArgs     []string
}

// Compiled reports whether the recipe has a compile phase.
func (r Recipe) Compiled() bool {
	return len(r.CompileArgs) > 0
}

var recipes = map[string]Recipe{
	"python": {
		Tag:      "python",
		FileName: "main.py",
		Image:    "python:3.11-alpine",
		RunArgs:  []string{"python3", "main.py"},
	},
	"javascript": {
		Tag:      "javascript",
		FileName: "main.js",
		Image:    "node:20-alpine",
		RunArgs:  []string{"node", "main.js"},
	},
	"java": {
		Tag:         "java",
		FileName:    "Main.java",
		Image:       "eclipse-temurin:21-jdk-alpine",
		CompileArgs: []string{"javac", "Main.java"},
		RunArgs:     []string{"java", "Main"},
	},
	"cpp": {
		Tag:         "cpp",
		FileName:    "main.cpp",
		Image:       "gcc:13",
		CompileArgs: []string{"g++", "-O2", "-o", "main", "main.cpp"},
		RunArgs:     []string{"./main"},
	},
}

var aliases = map[string]string{
	"c++": "cpp",
}

// Resolve returns the recipe bound to the given tag, case-insensitively.
func Resolve(tag string) (Recipe, error) {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	if canonical, ok := aliases[normalized]; ok {
		normalized = canonical
	}

	recipe, ok := recipes[normalized]
	if !ok {
		return Recipe{}, ErrUnsupportedLanguage
	}
	return recipe, nil
}

// Tags lists the canonical supported language tags, sorted.
func Tags() []string {
	tags := make([]string, 0, len(recipes))
	for tag := range recipes {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
