package treestore

import (
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/temirov/dirtree/internal/pattern"
	"github.com/temirov/dirtree/internal/types"
)

// Find returns every node below the root whose name matches text under mode,
// in pre-order. Empty text matches nothing.
func (store *Store) Find(text string, mode types.MatchMode) []*Node {
	if text == "" || store.root == nil {
		return nil
	}
	var candidates []*Node
	store.root.visit(func(node *Node) {
		if node != store.root {
			candidates = append(candidates, node)
		}
	})

	if mode == types.MatchFuzzy {
		return fuzzyMatches(text, candidates)
	}

	match := nameMatcher(text, mode)
	var matches []*Node
	for _, candidate := range candidates {
		if match(candidate.name) {
			matches = append(matches, candidate)
		}
	}
	return matches
}

func nameMatcher(text string, mode types.MatchMode) func(string) bool {
	loweredText := strings.ToLower(text)
	switch mode {
	case types.MatchCaseSensitive:
		return func(name string) bool { return strings.Contains(name, text) }
	case types.MatchExact:
		return func(name string) bool { return strings.EqualFold(name, text) }
	case types.MatchWildcard:
		return func(name string) bool { return pattern.Match(strings.ToLower(name), loweredText) }
	default:
		return func(name string) bool { return strings.Contains(strings.ToLower(name), loweredText) }
	}
}

// fuzzyMatches keeps every candidate the fuzzy matcher accepts but reports them
// in tree order rather than by score.
func fuzzyMatches(text string, candidates []*Node) []*Node {
	names := make([]string, len(candidates))
	for index, candidate := range candidates {
		names[index] = candidate.name
	}
	found := fuzzy.Find(text, names)
	indexes := make([]int, 0, len(found))
	for _, match := range found {
		indexes = append(indexes, match.Index)
	}
	slices.Sort(indexes)
	matches := make([]*Node, 0, len(indexes))
	for _, index := range indexes {
		matches = append(matches, candidates[index])
	}
	return matches
}
