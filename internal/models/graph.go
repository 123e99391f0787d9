// Package models defines the core data structures shared by the scan engine
// and its collaborators. It includes the snapshot entities and the layer rule.
package models

// Snapshot is one complete result of a single scan. It is built wholesale by
// the scanner and must be treated as read-only by every consumer.
type Snapshot struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Metadata Metadata `json:"metadata"`
}

// Node is a collected source file.
type Node struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Category    Category `json:"category"`
	Content     string   `json:"content"`
	Size        int64    `json:"size"`
	InDegree    int      `json:"inDegree"`
	OutDegree   int      `json:"outDegree"`
	Criticality int      `json:"criticality"`
	IsOrphan    bool     `json:"isOrphan"`
}

// Edge is one import relationship. Repeated imports of the same target yield
// repeated edges.
type Edge struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Violation bool   `json:"violation"`
}

type Metadata struct {
	ScanID          string           `json:"scanId"`
	ProjectPath     string           `json:"projectPath"`
	ScanTime        string           `json:"scanTime"`
	TotalNodes      int              `json:"totalNodes"`
	TotalEdges      int              `json:"totalEdges"`
	TotalViolations int              `json:"totalViolations"`
	TotalOrphans    int              `json:"totalOrphans"`
	NodesByCategory map[Category]int `json:"nodesByCategory,omitempty"`
}

// ReportGraph is the projection consumed by the standalone HTML report.
type ReportGraph struct {
	Nodes []ReportNode `json:"nodes"`
	Links []ReportLink `json:"links"`
}

type ReportNode struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
	Size     int64    `json:"size"`
}

type ReportLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Report projects the snapshot onto the report shape, dropping content and
// violation flags.
func (s *Snapshot) Report() ReportGraph {
	g := ReportGraph{
		Nodes: make([]ReportNode, 0, len(s.Nodes)),
		Links: make([]ReportLink, 0, len(s.Edges)),
	}

	for _, n := range s.Nodes {
		g.Nodes = append(g.Nodes, ReportNode{
			ID:       n.ID,
			Label:    n.Label,
			Category: n.Category,
			Size:     n.Size,
		})
	}

	for _, e := range s.Edges {
		g.Links = append(g.Links, ReportLink{Source: e.Source, Target: e.Target})
	}

	return g
}

func (s *Snapshot) Violations() []Edge {
	var out []Edge
	for _, e := range s.Edges {
		if e.Violation {
			out = append(out, e)
		}
	}
	return out
}

func (s *Snapshot) Orphans() []Node {
	var out []Node
	for _, n := range s.Nodes {
		if n.IsOrphan {
			out = append(out, n)
		}
	}
	return out
}

// ScanSummary is the compact view of a snapshot reported alongside service
// status.
type ScanSummary struct {
	ScanID      string   `json:"scanId"`
	ScanTime    string   `json:"scanTime"`
	CompletedAt string   `json:"completedAt,omitempty"`
	Nodes       int      `json:"nodes"`
	Edges       int      `json:"edges"`
	Violations  int      `json:"violations"`
	Orphans     []string `json:"orphans"`
}

func (s *Snapshot) Summary() ScanSummary {
	orphans := make([]string, 0)
	for _, n := range s.Orphans() {
		orphans = append(orphans, n.ID)
	}
	return ScanSummary{
		ScanID:     s.Metadata.ScanID,
		ScanTime:   s.Metadata.ScanTime,
		Nodes:      len(s.Nodes),
		Edges:      len(s.Edges),
		Violations: len(s.Violations()),
		Orphans:    orphans,
	}
}
