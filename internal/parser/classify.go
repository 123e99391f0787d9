// Package parser provides the text heuristics of the scan pipeline.
// It classifies file content into layers, extracts and resolves imports,
// and assembles the final dependency graph.
package parser

import (
	"strings"

	"github.com/archbrain/core/internal/models"
)

// Token tables for the layer heuristic. Matching is done on lowercased
// content, so every token here must be lowercase.
var (
	infrastructureTokens = []string{
		"axios",
		"fetch",
		"localstorage",
		"sessionstorage",
		" mongoose",
		`from "fs"`,
		"indexeddb",
	}

	presentationTokens = []string{
		"react",
		"jsx",
		"styled-components",
		"framer-motion",
		"lucide-react",
	}

	structureTokens = []string{
		"interface ",
		"type ",
		"enum ",
	}

	// A file declaring types but pulling in any of these is not pure domain.
	frameworkTokens = []string{
		"react",
		"axios",
		"express",
	}
)

// Classify assigns a layer to file content. Rules are evaluated in order and
// the first match wins: infrastructure, presentation, domain, then the
// application fallback. Infrastructure beats presentation so that data access
// inside a component is still surfaced.
func Classify(content string) models.Category {
	lower := strings.ToLower(content)

	if containsAny(lower, infrastructureTokens) {
		return models.CategoryInfrastructure
	}

	if containsAny(lower, presentationTokens) && !strings.Contains(lower, "localstorage") {
		return models.CategoryPresentation
	}

	if containsAny(lower, structureTokens) && !containsAny(lower, frameworkTokens) {
		return models.CategoryDomain
	}

	return models.CategoryApplication
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
