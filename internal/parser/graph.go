// Package parser provides the text heuristics of the scan pipeline.
// It classifies file content into layers, extracts and resolves imports,
// and assembles the final dependency graph.
package parser

import (
	"github.com/archbrain/core/internal/models"
)

// BuildGraph finalizes nodes and raw edges into a snapshot: every edge gets
// its layer verdict and every node its degree metrics. Inputs are copied, so
// callers may keep using their slices. Collection order is preserved and
// nothing is deduplicated.
func BuildGraph(nodes []models.Node, edges []models.Edge, meta models.Metadata) *models.Snapshot {
	snapshot := &models.Snapshot{
		Nodes:    make([]models.Node, len(nodes)),
		Edges:    make([]models.Edge, 0, len(edges)),
		Metadata: meta,
	}
	copy(snapshot.Nodes, nodes)

	position := make(map[string]int, len(nodes))
	for i := range snapshot.Nodes {
		n := &snapshot.Nodes[i]
		n.InDegree, n.OutDegree = 0, 0
		position[n.ID] = i
	}

	for _, e := range edges {
		si, ok := position[e.Source]
		if !ok {
			continue
		}
		ti, ok := position[e.Target]
		if !ok {
			continue
		}

		source, target := &snapshot.Nodes[si], &snapshot.Nodes[ti]
		source.OutDegree++
		target.InDegree++

		snapshot.Edges = append(snapshot.Edges, models.Edge{
			Source:    e.Source,
			Target:    e.Target,
			Violation: models.IsViolation(source.Category, target.Category),
		})
	}

	byCategory := make(map[models.Category]int)
	orphans := 0
	for i := range snapshot.Nodes {
		n := &snapshot.Nodes[i]
		n.Criticality = n.InDegree + n.OutDegree
		n.IsOrphan = n.Criticality == 0
		if n.IsOrphan {
			orphans++
		}
		byCategory[n.Category]++
	}

	violations := 0
	for _, e := range snapshot.Edges {
		if e.Violation {
			violations++
		}
	}

	snapshot.Metadata.TotalNodes = len(snapshot.Nodes)
	snapshot.Metadata.TotalEdges = len(snapshot.Edges)
	snapshot.Metadata.TotalViolations = violations
	snapshot.Metadata.TotalOrphans = orphans
	snapshot.Metadata.NodesByCategory = byCategory

	return snapshot
}
