// Package roster is the read-only view of team roster documents consumed by
// the assignment engine. Roster maintenance itself lives in the
// registration module, not here.
package roster

import (
	"context"

	"github.com/Dtheapp/lockerroomlink/internal/store"
)

// Collection is the roster document collection.
const Collection = "roster"

// Player is one roster member.
type Player struct {
	ID       string `json:"id"`
	TeamID   string `json:"teamId"`
	Name     string `json:"name"`
	Number   string `json:"number"`
	Position string `json:"position,omitempty"`
}

// Snapshot is an id-keyed view of a team's roster, taken once per
// assignment operation so the engine never reads ambient state.
type Snapshot map[string]Player

// List returns a team's roster, oldest entry first.
func List(ctx context.Context, st *store.Store, teamID string) ([]Player, error) {
	return store.QueryAs[Player](ctx, st, Collection, store.Filter{"teamId": teamID})
}

// LoadSnapshot loads a team's roster keyed by player id.
func LoadSnapshot(ctx context.Context, st *store.Store, teamID string) (Snapshot, error) {
	players, err := List(ctx, st, teamID)
	if err != nil {
		return nil, err
	}
	snap := make(Snapshot, len(players))
	for _, p := range players {
		snap[p.ID] = p
	}
	return snap, nil
}
