package playbook

import (
	"github.com/google/uuid"

	"github.com/Dtheapp/lockerroomlink/internal/diagram"
)

// Instantiate deep-copies a formation's elements for a new play, minting a
// fresh id for every element. The formation's element ids are never reused,
// so edits to the play can never reach back into the formation.
func Instantiate(f Formation) []diagram.PlayElement {
	elements := make([]diagram.PlayElement, len(f.Elements))
	for i, e := range f.Elements {
		e.ID = uuid.NewString()
		elements[i] = e
	}
	return elements
}

// Compose seeds a new play from a formation. Name, notes and sub-type are
// filled in by the editor afterward.
func Compose(f Formation) Play {
	return Play{
		ID:            uuid.NewString(),
		Category:      f.Category,
		FormationID:   f.ID,
		FormationName: f.Name,
		Elements:      Instantiate(f),
	}
}

// ApplyFormation switches an existing play onto a formation. Selecting a
// different formation replaces elements, routes, lines and shapes
// wholesale; re-selecting the play's current formation is a no-op so
// in-progress edits survive. Reports whether the play changed.
func ApplyFormation(p *Play, f Formation) bool {
	if p.FormationID == f.ID {
		return false
	}
	p.FormationID = f.ID
	p.FormationName = f.Name
	p.Category = f.Category
	p.Elements = Instantiate(f)
	p.Routes = nil
	p.Lines = nil
	p.Shapes = nil
	return true
}
