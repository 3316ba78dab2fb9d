// Package pattern evaluates wildcard ignore rules against entry names.
//
// A pattern is a shell-style wildcard: "*" matches any run of characters, "?"
// matches exactly one character and "[...]" matches one character of a class.
// Braces and backslashes are ordinary characters. The match must cover the
// whole name and is case-sensitive on every platform. Patterns are compiled
// with github.com/gobwas/glob; a pattern that does not compile is compared
// literally.
package pattern

import (
	"strings"
	"sync"

	"github.com/gobwas/glob"
)

var compiledCache sync.Map

type compiledPattern struct {
	source string
	glob   glob.Glob
}

func (compiled compiledPattern) match(name string) bool {
	if compiled.glob == nil {
		return name == compiled.source
	}
	return compiled.glob.Match(name)
}

func compile(patternValue string) compiledPattern {
	if cached, ok := compiledCache.Load(patternValue); ok {
		return cached.(compiledPattern)
	}
	compiled := compiledPattern{source: patternValue}
	if compiledGlob, compileError := glob.Compile(quoteLiterals(patternValue)); compileError == nil {
		compiled.glob = compiledGlob
	}
	compiledCache.Store(patternValue, compiled)
	return compiled
}

// quoteLiterals escapes the glob syntax that wildcard patterns treat as
// literal text. Characters inside a class are left alone.
func quoteLiterals(patternValue string) string {
	var builder strings.Builder
	insideClass := false
	for _, character := range patternValue {
		switch {
		case insideClass:
			insideClass = character != ']'
		case character == '[':
			insideClass = true
		case character == '{', character == '}', character == '\\':
			builder.WriteRune('\\')
		}
		builder.WriteRune(character)
	}
	return builder.String()
}

// Match reports whether name matches patternValue as a whole.
func Match(name string, patternValue string) bool {
	return compile(patternValue).match(name)
}

// ShouldIgnore reports whether any pattern matches name.
func ShouldIgnore(name string, patterns []string) bool {
	for _, patternValue := range patterns {
		if Match(name, patternValue) {
			return true
		}
	}
	return false
}

// Matcher holds a compiled, ordered set of ignore patterns.
type Matcher struct {
	patterns []compiledPattern
}

// NewMatcher compiles patterns, dropping blanks and duplicates.
func NewMatcher(patterns []string) *Matcher {
	matcher := &Matcher{}
	seen := make(map[string]struct{}, len(patterns))
	for _, patternValue := range patterns {
		trimmed := strings.TrimSpace(patternValue)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		matcher.patterns = append(matcher.patterns, compile(trimmed))
	}
	return matcher
}

// ShouldIgnore reports whether name matches any compiled pattern.
func (matcher *Matcher) ShouldIgnore(name string) bool {
	if matcher == nil {
		return false
	}
	for _, compiled := range matcher.patterns {
		if compiled.match(name) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (matcher *Matcher) Len() int {
	if matcher == nil {
		return 0
	}
	return len(matcher.patterns)
}

// IsHidden reports whether name follows the dot-file hidden convention.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
