package assignments

import (
	"errors"
	"testing"

	"github.com/Dtheapp/lockerroomlink/internal/diagram"
	"github.com/Dtheapp/lockerroomlink/internal/roster"
)

func testRoster() roster.Snapshot {
	return roster.Snapshot{
		"p1": {ID: "p1", TeamID: "team-1", Name: "Alex Moore", Number: "7"},
		"p2": {ID: "p2", TeamID: "team-1", Name: "Sam Diaz", Number: "22"},
		"p3": {ID: "p3", TeamID: "team-1", Name: "Riley Chen", Number: "80"},
	}
}

func TestAssign_ResolvesRosterFields(t *testing.T) {
	pa, err := Assign(AssignRequest{ElementID: "e1", PrimaryID: "p1", SecondaryID: "p2"}, testRoster(), nil)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if pa.Primary == nil || pa.Primary.Name != "Alex Moore" || pa.Primary.Number != "7" {
		t.Errorf("primary not denormalized: %+v", pa.Primary)
	}
	if pa.Secondary == nil || pa.Secondary.ID != "p2" {
		t.Errorf("secondary not resolved: %+v", pa.Secondary)
	}
}

func TestAssign_EmptyIDsMeanUnset(t *testing.T) {
	pa, err := Assign(AssignRequest{ElementID: "e1", PrimaryID: "", SecondaryID: "  "}, testRoster(), nil)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if pa.Primary != nil || pa.Secondary != nil {
		t.Errorf("expected unset primary and secondary, got %+v", pa)
	}
}

func TestAssign_UnknownPlayer(t *testing.T) {
	if _, err := Assign(AssignRequest{ElementID: "e1", PrimaryID: "ghost"}, testRoster(), nil); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("expected ErrUnknownPlayer for primary, got %v", err)
	}
	if _, err := Assign(AssignRequest{ElementID: "e1", SecondaryID: "ghost"}, testRoster(), nil); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("expected ErrUnknownPlayer for secondary, got %v", err)
	}
}

func TestAssign_PrimaryUniqueness(t *testing.T) {
	existing := []PositionAssignment{
		{ElementID: "e1", Primary: &PlayerRef{ID: "p1", Name: "Alex Moore", Number: "7"}},
	}

	// p1 is claimed on e1, so e2 cannot take them.
	if _, err := Assign(AssignRequest{ElementID: "e2", PrimaryID: "p1"}, testRoster(), existing); !errors.Is(err, ErrPrimaryTaken) {
		t.Errorf("expected ErrPrimaryTaken, got %v", err)
	}

	// Re-assigning the same element is an overwrite, not a conflict.
	if _, err := Assign(AssignRequest{ElementID: "e1", PrimaryID: "p1"}, testRoster(), existing); err != nil {
		t.Errorf("overwriting own element should be allowed, got %v", err)
	}

	// Force preserves last-write-wins.
	pa, err := Assign(AssignRequest{ElementID: "e2", PrimaryID: "p1", Force: true}, testRoster(), existing)
	if err != nil {
		t.Fatalf("forced assign: %v", err)
	}
	if pa.Primary == nil || pa.Primary.ID != "p1" {
		t.Errorf("forced assign did not take: %+v", pa)
	}
}

func TestAssign_SecondaryUnconstrained(t *testing.T) {
	existing := []PositionAssignment{
		{ElementID: "e1", Primary: &PlayerRef{ID: "p1"}, Secondary: &PlayerRef{ID: "p3"}},
	}
	// p3 may back up any number of positions, and a claimed primary may
	// still be a secondary elsewhere.
	pa, err := Assign(AssignRequest{ElementID: "e2", PrimaryID: "p2", SecondaryID: "p3"}, testRoster(), existing)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if pa.Secondary == nil || pa.Secondary.ID != "p3" {
		t.Errorf("secondary rejected: %+v", pa)
	}
	if _, err := Assign(AssignRequest{ElementID: "e2", PrimaryID: "p2", SecondaryID: "p1"}, testRoster(), existing); err != nil {
		t.Errorf("claimed primary as secondary elsewhere should be allowed, got %v", err)
	}
}

func TestAssign_Deterministic(t *testing.T) {
	req := AssignRequest{ElementID: "e1", PrimaryID: "p1", SecondaryID: "p2"}
	a, err := Assign(req, testRoster(), nil)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	b, err := Assign(req, testRoster(), nil)
	if err != nil {
		t.Fatalf("assign again: %v", err)
	}
	if *a.Primary != *b.Primary || *a.Secondary != *b.Secondary {
		t.Errorf("same inputs produced different results: %+v vs %+v", a, b)
	}
}

func TestFullyStaffed(t *testing.T) {
	elements := []diagram.PlayElement{{ID: "e1"}, {ID: "e2"}}

	if FullyStaffed(elements, nil) {
		t.Error("no positions should not be fully staffed")
	}
	partial := []PositionAssignment{{ElementID: "e1", Primary: &PlayerRef{ID: "p1"}}}
	if FullyStaffed(elements, partial) {
		t.Error("one unstaffed element should not be fully staffed")
	}
	secondaryOnly := append(partial, PositionAssignment{ElementID: "e2", Secondary: &PlayerRef{ID: "p2"}})
	if FullyStaffed(elements, secondaryOnly) {
		t.Error("a secondary without a primary does not staff a position")
	}
	full := append(partial, PositionAssignment{ElementID: "e2", Primary: &PlayerRef{ID: "p2"}})
	if !FullyStaffed(elements, full) {
		t.Error("every element has a primary; expected fully staffed")
	}
}

func TestClaimedPrimaries(t *testing.T) {
	positions := []PositionAssignment{
		{ElementID: "e1", Primary: &PlayerRef{ID: "p1"}},
		{ElementID: "e2", Primary: &PlayerRef{ID: "p2"}},
		{ElementID: "e3", Secondary: &PlayerRef{ID: "p3"}},
	}
	claimed := ClaimedPrimaries(positions, "e2")
	if len(claimed) != 1 {
		t.Fatalf("expected 1 claimed primary, got %d", len(claimed))
	}
	if claimed["p1"] != "e1" {
		t.Errorf("expected p1 claimed by e1, got %+v", claimed)
	}
}
