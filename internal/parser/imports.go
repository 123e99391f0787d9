// Package parser provides the text heuristics of the scan pipeline.
// It classifies file content into layers, extracts and resolves imports,
// and assembles the final dependency graph.
package parser

import (
	"path"
	"regexp"
	"strings"

	"github.com/archbrain/core/internal/models"
)

var (
	// import x from './y', export * from "./y"
	staticImportPattern = regexp.MustCompile(`from\s+['"]([^'"]+)['"]`)

	// import('./y'), require("./y"); covers lazy-loaded modules.
	dynamicImportPattern = regexp.MustCompile(`(?:import|require)\s*\(\s*['"]([^'"]+)['"]\s*\)`)
)

// resolveSuffixes are tried in order against a relative specifier.
var resolveSuffixes = []string{
	"",
	".ts", ".tsx", ".js", ".jsx",
	"/index.ts", "/index.tsx", "/index.js", "/index.jsx",
}

// Index is the id lookup used while resolving specifiers for one scan.
// It is not safe for concurrent use.
type Index struct {
	ids  []string
	byID map[string]struct{}

	prefixMemo   map[string]string
	containsMemo map[string]string
}

// NewIndex builds an index over ids in collection order. The order decides
// which node wins when a heuristic lookup matches more than one.
func NewIndex(ids []string) *Index {
	ix := &Index{
		ids:          ids,
		byID:         make(map[string]struct{}, len(ids)),
		prefixMemo:   make(map[string]string),
		containsMemo: make(map[string]string),
	}
	for _, id := range ids {
		ix.byID[id] = struct{}{}
	}
	return ix
}

func (ix *Index) Has(id string) bool {
	_, ok := ix.byID[id]
	return ok
}

// Resolve maps an import specifier found in file fromID to a node id.
//
// Relative specifiers are joined onto the importer's directory and tried
// with each of resolveSuffixes for an exact id; failing that, the first id
// starting with the joined path is used. Any other specifier is treated as a
// package-style reference and matches the first id containing it.
func (ix *Index) Resolve(fromID, specifier string) (string, bool) {
	if specifier == "" {
		return "", false
	}

	if strings.HasPrefix(specifier, ".") {
		base := path.Join(path.Dir(fromID), specifier)
		for _, suffix := range resolveSuffixes {
			if candidate := base + suffix; ix.Has(candidate) {
				return candidate, true
			}
		}
		return ix.firstMatch(ix.prefixMemo, base, strings.HasPrefix)
	}

	return ix.firstMatch(ix.containsMemo, specifier, strings.Contains)
}

func (ix *Index) firstMatch(memo map[string]string, key string, match func(id, key string) bool) (string, bool) {
	if id, ok := memo[key]; ok {
		return id, id != ""
	}

	for _, id := range ix.ids {
		if match(id, key) {
			memo[key] = id
			return id, true
		}
	}

	memo[key] = ""
	return "", false
}

// Specifiers returns every import specifier in content: the static pass
// first, then the dynamic pass, each in source order.
func Specifiers(content string) []string {
	var specs []string
	for _, re := range []*regexp.Regexp{staticImportPattern, dynamicImportPattern} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			specs = append(specs, m[1])
		}
	}
	return specs
}

// ExtractEdges resolves the imports of node against the index. Edges come back
// without a violation verdict; unresolved specifiers and self references are
// dropped.
func ExtractEdges(node models.Node, ix *Index) []models.Edge {
	var edges []models.Edge
	for _, spec := range Specifiers(node.Content) {
		target, ok := ix.Resolve(node.ID, spec)
		if !ok || target == node.ID {
			continue
		}
		edges = append(edges, models.Edge{Source: node.ID, Target: target})
	}
	return edges
}
