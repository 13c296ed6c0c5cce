// Package playbook holds formations and plays: reusable alignment templates
// and the tactical schemes built from them.
package playbook

import (
	"fmt"

	"github.com/Dtheapp/lockerroomlink/internal/diagram"
)

// Store collections.
const (
	CollectionFormations = "formations"
	CollectionPlays      = "plays"
)

// Category groups formations and plays by unit.
type Category string

const (
	CategoryOffense      Category = "Offense"
	CategoryDefense      Category = "Defense"
	CategorySpecialTeams Category = "Special Teams"
)

// ParseCategory validates a stored category string.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryOffense, CategoryDefense, CategorySpecialTeams:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// OffenseType is the sub-type of an offensive play.
type OffenseType string

const (
	OffenseRun  OffenseType = "Run"
	OffensePass OffenseType = "Pass"
)

// DefenseType is the sub-type of a defensive play.
type DefenseType string

const (
	DefenseNormal DefenseType = "Normal"
	DefenseBlitz  DefenseType = "Blitz"
)

// Formation is a reusable named template of player positions for one
// category. Formations never reference plays; the dependency runs one way.
type Formation struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Category Category              `json:"category"`
	Elements []diagram.PlayElement `json:"elements"`
}

// Play is a formation instantiated with routes, lines and shapes added. It
// owns a full copy of its elements, seeded from the formation at creation
// and freely edited afterward.
type Play struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Notes         string                `json:"notes,omitempty"`
	Category      Category              `json:"category"`
	OffenseType   OffenseType           `json:"offenseType,omitempty"`
	DefenseType   DefenseType           `json:"defenseType,omitempty"`
	FormationID   string                `json:"formationId"`
	FormationName string                `json:"formationName"`
	Elements      []diagram.PlayElement `json:"elements"`
	Routes        []diagram.PlayRoute   `json:"routes"`
	Lines         []diagram.DrawingLine `json:"lines"`
	Shapes        []diagram.PlayShape   `json:"shapes"`
}

// Scene builds the editable scene for the play's visual content.
func (p *Play) Scene() *diagram.Scene {
	return diagram.SceneFrom(p.Elements, p.Routes, p.Lines, p.Shapes)
}

// SetScene writes a scene's content back onto the play.
func (p *Play) SetScene(s *diagram.Scene) {
	p.Elements = s.Elements
	p.Routes = s.Routes
	p.Lines = s.Lines
	p.Shapes = s.Shapes
}
