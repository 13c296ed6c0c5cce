package assignments

import (
	"context"
	"errors"
	"testing"

	"github.com/Dtheapp/lockerroomlink/internal/roster"
	"github.com/Dtheapp/lockerroomlink/internal/store"
	"github.com/Dtheapp/lockerroomlink/internal/testutil"
)

func seedRoster(t *testing.T, st *store.Store, teamID string, players ...roster.Player) {
	t.Helper()
	ctx := context.Background()
	for _, p := range players {
		p.TeamID = teamID
		if err := st.Create(ctx, roster.Collection, p.ID, p); err != nil {
			t.Fatalf("seed roster %s: %v", p.ID, err)
		}
	}
}

func TestAssignPlayOncePerTeam(t *testing.T) {
	st := testutil.NewTestStore(t)
	svc := NewService(st)
	ctx := context.Background()

	tpa, err := svc.AssignPlay(ctx, "team-1", "play-1", "Offense", "coach-1")
	if err != nil {
		t.Fatalf("assign play: %v", err)
	}
	if tpa.TeamID != "team-1" || tpa.PlayID != "play-1" || tpa.AssignedBy != "coach-1" {
		t.Errorf("assignment fields wrong: %+v", tpa)
	}

	if _, err := svc.AssignPlay(ctx, "team-1", "play-1", "Offense", "coach-2"); !errors.Is(err, ErrAlreadyAssigned) {
		t.Errorf("expected ErrAlreadyAssigned, got %v", err)
	}

	// A different team may assign the same play.
	if _, err := svc.AssignPlay(ctx, "team-2", "play-1", "Offense", "coach-3"); err != nil {
		t.Errorf("second team should be able to assign: %v", err)
	}
}

func TestAssignPositionPersistsAndOverwrites(t *testing.T) {
	st := testutil.NewTestStore(t)
	svc := NewService(st)
	ctx := context.Background()

	seedRoster(t, st, "team-1",
		roster.Player{ID: "p1", Name: "Alex Moore", Number: "7"},
		roster.Player{ID: "p2", Name: "Sam Diaz", Number: "22"},
	)
	tpa, err := svc.AssignPlay(ctx, "team-1", "play-1", "Offense", "coach-1")
	if err != nil {
		t.Fatalf("assign play: %v", err)
	}

	req := AssignRequest{ElementID: "e1", PrimaryID: "p1", SecondaryID: "p2"}
	if _, err := svc.AssignPosition(ctx, tpa.ID, req); err != nil {
		t.Fatalf("assign position: %v", err)
	}
	// Same request again overwrites in place: still one document.
	if _, err := svc.AssignPosition(ctx, tpa.ID, req); err != nil {
		t.Fatalf("assign position again: %v", err)
	}

	positions, err := svc.Positions(ctx, tpa.ID)
	if err != nil {
		t.Fatalf("positions: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("expected 1 position document, got %d", len(positions))
	}
	if positions[0].Primary.Name != "Alex Moore" || positions[0].Secondary.Number != "22" {
		t.Errorf("denormalized fields wrong: %+v", positions[0])
	}

	// Changing the primary replaces the prior value.
	if _, err := svc.AssignPosition(ctx, tpa.ID, AssignRequest{ElementID: "e1", PrimaryID: "p2"}); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	positions, _ = svc.Positions(ctx, tpa.ID)
	if len(positions) != 1 || positions[0].Primary.ID != "p2" || positions[0].Secondary != nil {
		t.Errorf("overwrite not applied: %+v", positions)
	}
}

func TestAssignPositionEnforcesPrimaryUniqueness(t *testing.T) {
	st := testutil.NewTestStore(t)
	svc := NewService(st)
	ctx := context.Background()

	seedRoster(t, st, "team-1", roster.Player{ID: "p1", Name: "Alex Moore", Number: "7"})
	tpa, err := svc.AssignPlay(ctx, "team-1", "play-1", "Offense", "coach-1")
	if err != nil {
		t.Fatalf("assign play: %v", err)
	}

	if _, err := svc.AssignPosition(ctx, tpa.ID, AssignRequest{ElementID: "e1", PrimaryID: "p1"}); err != nil {
		t.Fatalf("assign position: %v", err)
	}
	if _, err := svc.AssignPosition(ctx, tpa.ID, AssignRequest{ElementID: "e2", PrimaryID: "p1"}); !errors.Is(err, ErrPrimaryTaken) {
		t.Errorf("expected ErrPrimaryTaken, got %v", err)
	}
	if _, err := svc.AssignPosition(ctx, tpa.ID, AssignRequest{ElementID: "e2", PrimaryID: "p1", Force: true}); err != nil {
		t.Errorf("forced write should pass: %v", err)
	}
}

func TestUnassignDeletesPositions(t *testing.T) {
	st := testutil.NewTestStore(t)
	svc := NewService(st)
	ctx := context.Background()

	seedRoster(t, st, "team-1", roster.Player{ID: "p1", Name: "Alex Moore", Number: "7"})
	tpa, err := svc.AssignPlay(ctx, "team-1", "play-1", "Offense", "coach-1")
	if err != nil {
		t.Fatalf("assign play: %v", err)
	}
	if _, err := svc.AssignPosition(ctx, tpa.ID, AssignRequest{ElementID: "e1", PrimaryID: "p1"}); err != nil {
		t.Fatalf("assign position: %v", err)
	}

	if err := svc.Unassign(ctx, tpa.ID); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if _, err := svc.Get(ctx, tpa.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("assignment should be gone, got %v", err)
	}
	positions, err := svc.Positions(ctx, tpa.ID)
	if err != nil {
		t.Fatalf("positions: %v", err)
	}
	if len(positions) != 0 {
		t.Errorf("positions should be bulk deleted, got %d", len(positions))
	}
}

func TestDeleteForTeam(t *testing.T) {
	st := testutil.NewTestStore(t)
	svc := NewService(st)
	ctx := context.Background()

	if _, err := svc.AssignPlay(ctx, "team-1", "play-1", "Offense", "coach-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.AssignPlay(ctx, "team-1", "play-2", "Defense", "coach-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	keep, err := svc.AssignPlay(ctx, "team-2", "play-1", "Offense", "coach-2")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := svc.DeleteForTeam(ctx, "team-1"); err != nil {
		t.Fatalf("delete for team: %v", err)
	}
	gone, err := svc.ListForTeam(ctx, "team-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(gone) != 0 {
		t.Errorf("team-1 assignments should be gone, got %d", len(gone))
	}
	if _, err := svc.Get(ctx, keep.ID); err != nil {
		t.Errorf("team-2 assignment should survive: %v", err)
	}
}
