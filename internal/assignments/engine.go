// Package assignments maps a play's abstract positions onto a team's actual
// roster, one team-play assignment at a time.
package assignments

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dtheapp/lockerroomlink/internal/diagram"
	"github.com/Dtheapp/lockerroomlink/internal/roster"
)

// Store collections.
const (
	CollectionTeamPlays = "team_play_assignments"
	CollectionPositions = "position_assignments"
)

var (
	// ErrPrimaryTaken is returned when the requested primary player is
	// already the primary on another position in the same team-play
	// assignment. Pass Force to take the legacy last-write-wins behavior.
	ErrPrimaryTaken = errors.New("player is already the primary on another position")

	// ErrUnknownPlayer is returned when a player id is not on the roster.
	ErrUnknownPlayer = errors.New("player is not on the team roster")
)

// TeamPlayAssignment links one team to one play. At most one exists per
// (team, play) pair.
type TeamPlayAssignment struct {
	ID         string    `json:"id"`
	TeamID     string    `json:"teamId"`
	PlayID     string    `json:"playId"`
	Category   string    `json:"category"`
	AssignedBy string    `json:"assignedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PlayerRef is a denormalized roster reference stored on a position so the
// viewer renders without a roster join.
type PlayerRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// PositionAssignment staffs one play element within a team-play assignment.
type PositionAssignment struct {
	AssignmentID string     `json:"assignmentId"`
	ElementID    string     `json:"elementId"`
	Primary      *PlayerRef `json:"primary,omitempty"`
	Secondary    *PlayerRef `json:"secondary,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// AssignRequest is one staffing decision for a play element. Empty player
// ids mean "unset". Force accepts a primary that conflicts with another
// position, preserving last-write-wins for callers that ask for it.
type AssignRequest struct {
	ElementID   string
	PrimaryID   string
	SecondaryID string
	Force       bool
}

// Assign resolves a staffing request against a roster snapshot and the
// other positions already assigned in the same team-play assignment. It is
// pure: persistence is the caller's job, and calling it twice with the same
// inputs yields the same result.
func Assign(req AssignRequest, snap roster.Snapshot, existing []PositionAssignment) (PositionAssignment, error) {
	pa := PositionAssignment{ElementID: req.ElementID}
	if pa.ElementID == "" {
		return PositionAssignment{}, errors.New("element id is required")
	}

	primaryID := strings.TrimSpace(req.PrimaryID)
	secondaryID := strings.TrimSpace(req.SecondaryID)

	if primaryID != "" {
		player, ok := snap[primaryID]
		if !ok {
			return PositionAssignment{}, fmt.Errorf("primary %s: %w", primaryID, ErrUnknownPlayer)
		}
		if !req.Force {
			for _, other := range existing {
				if other.ElementID == req.ElementID || other.Primary == nil {
					continue
				}
				if other.Primary.ID == primaryID {
					return PositionAssignment{}, fmt.Errorf("primary %s on element %s: %w",
						primaryID, other.ElementID, ErrPrimaryTaken)
				}
			}
		}
		pa.Primary = &PlayerRef{ID: player.ID, Name: player.Name, Number: player.Number}
	}

	// Secondary occupancy is unconstrained; the same player may back up
	// any number of positions.
	if secondaryID != "" {
		player, ok := snap[secondaryID]
		if !ok {
			return PositionAssignment{}, fmt.Errorf("secondary %s: %w", secondaryID, ErrUnknownPlayer)
		}
		pa.Secondary = &PlayerRef{ID: player.ID, Name: player.Name, Number: player.Number}
	}

	return pa, nil
}

// FullyStaffed reports whether every play element has a primary player.
func FullyStaffed(elements []diagram.PlayElement, positions []PositionAssignment) bool {
	byElement := make(map[string]*PlayerRef, len(positions))
	for _, pa := range positions {
		byElement[pa.ElementID] = pa.Primary
	}
	for _, e := range elements {
		if byElement[e.ID] == nil {
			return false
		}
	}
	return true
}

// ClaimedPrimaries returns the player ids already used as a primary,
// excluding the given element. The selection UI uses this to omit claimed
// players from the primary picker.
func ClaimedPrimaries(positions []PositionAssignment, excludeElementID string) map[string]string {
	claimed := make(map[string]string)
	for _, pa := range positions {
		if pa.ElementID == excludeElementID || pa.Primary == nil {
			continue
		}
		claimed[pa.Primary.ID] = pa.ElementID
	}
	return claimed
}
