// Package report renders a dependency snapshot as a standalone interactive
// HTML page.
package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/archbrain/core/internal/models"
)

// DefaultFileName is the report file written by the CLI.
const DefaultFileName = "arch-brain-report.html"

// Colors maps each category to its node colour.
var Colors = map[models.Category]string{
	models.CategoryDomain:         "#ef4444",
	models.CategoryApplication:    "#f59e0b",
	models.CategoryInfrastructure: "#10b981",
	models.CategoryPresentation:   "#3b82f6",
	models.CategoryOther:          "#64748b",
}

type page struct {
	Title  string
	Nodes  int
	Links  int
	Graph  models.ReportGraph
	Colors map[models.Category]string
}

var tmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <style>
        body { margin: 0; background: #020617; color: white; font-family: sans-serif; overflow: hidden; }
        #info { position: absolute; top: 25px; left: 25px; z-index: 100; pointer-events: none; }
        .badge { background: #3b82f6; padding: 4px 12px; border-radius: 4px; font-size: 10px; font-weight: 800; text-transform: uppercase; }
        h1 { margin: 10px 0 0 0; font-size: 28px; }
        #stats { opacity: 0.7; font-size: 14px; margin-top: 5px; }
    </style>
    <script src="https://unpkg.com/3d-force-graph"></script>
</head>
<body>
    <div id="info">
        <span class="badge">ArchBrain</span>
        <h1>{{.Title}}</h1>
        <div id="stats">{{.Nodes}} modules, {{.Links}} dependencies</div>
    </div>
    <div id="3d-graph"></div>
    <script>
        const colorMap = {{.Colors}};
        const gData = {{.Graph}};

        const Graph = ForceGraph3D()
            (document.getElementById('3d-graph'))
            .graphData(gData)
            .nodeLabel(node => node.label + ' (' + node.category + ')')
            .nodeColor(node => colorMap[node.category] || '#ffffff')
            .nodeRelSize(7)
            .nodeVal(node => Math.sqrt(node.size) * 0.05 + 1)
            .linkWidth(1.5)
            .linkOpacity(0.5)
            .linkDirectionalParticles(2)
            .backgroundColor('#020617');

        Graph.d3Force('charge').strength(-200);
        Graph.d3Force('link').distance(120);
    </script>
</body>
</html>
`))

// Render writes the report page for g to w.
func Render(w io.Writer, g models.ReportGraph) error {
	if g.Nodes == nil {
		g.Nodes = []models.ReportNode{}
	}
	if g.Links == nil {
		g.Links = []models.ReportLink{}
	}

	p := page{
		Title:  "ArchBrain Neural Report",
		Nodes:  len(g.Nodes),
		Links:  len(g.Links),
		Graph:  g,
		Colors: Colors,
	}
	if err := tmpl.Execute(w, p); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
