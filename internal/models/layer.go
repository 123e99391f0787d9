// Package models defines the core data structures shared by the scan engine
// and its collaborators. It includes the snapshot entities and the layer rule.
package models

// Category is the architectural layer a file is classified into.
type Category string

const (
	CategoryDomain         Category = "Domain"
	CategoryApplication    Category = "Application"
	CategoryInfrastructure Category = "Infrastructure"
	CategoryPresentation   Category = "Presentation"
	CategoryOther          Category = "Other"
)

// layerRank orders categories from innermost to outermost. Other has no rank.
var layerRank = map[Category]int{
	CategoryDomain:         0,
	CategoryApplication:    1,
	CategoryInfrastructure: 2,
	CategoryPresentation:   3,
}

// Categories lists every category in rank order, Other last.
func Categories() []Category {
	return []Category{
		CategoryDomain,
		CategoryApplication,
		CategoryInfrastructure,
		CategoryPresentation,
		CategoryOther,
	}
}

// Rank returns the layer rank and whether the category takes part in the
// ordering at all.
func (c Category) Rank() (int, bool) {
	r, ok := layerRank[c]
	return r, ok
}

// IsViolation reports whether a dependency from source to target points
// outwards. Dependencies may only stay within a layer or point to a lower
// rank; unranked endpoints are never flagged.
func IsViolation(source, target Category) bool {
	sr, ok := source.Rank()
	if !ok {
		return false
	}
	tr, ok := target.Rank()
	if !ok {
		return false
	}
	return sr < tr
}
