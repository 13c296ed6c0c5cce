package assignments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Dtheapp/lockerroomlink/internal/roster"
	"github.com/Dtheapp/lockerroomlink/internal/store"
)

// ErrAlreadyAssigned is returned when the team already has an assignment
// for the play.
var ErrAlreadyAssigned = errors.New("play is already assigned to this team")

// Service persists team-play assignments and their position staffing.
type Service struct {
	st *store.Store
}

// NewService creates an assignment service over the document store.
func NewService(st *store.Store) *Service {
	return &Service{st: st}
}

// AssignPlay links a play to a team. A play has zero or one assignment per
// team; assigning twice returns ErrAlreadyAssigned.
func (s *Service) AssignPlay(ctx context.Context, teamID, playID, category, assignedBy string) (TeamPlayAssignment, error) {
	existing, err := store.QueryAs[TeamPlayAssignment](ctx, s.st, CollectionTeamPlays,
		store.Filter{"teamId": teamID, "playId": playID})
	if err != nil {
		return TeamPlayAssignment{}, err
	}
	if len(existing) > 0 {
		return TeamPlayAssignment{}, ErrAlreadyAssigned
	}

	now := time.Now().UTC()
	tpa := TeamPlayAssignment{
		ID:         uuid.NewString(),
		TeamID:     teamID,
		PlayID:     playID,
		Category:   category,
		AssignedBy: assignedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.st.Create(ctx, CollectionTeamPlays, tpa.ID, tpa); err != nil {
		return TeamPlayAssignment{}, err
	}
	log.Info().
		Str("assignment_id", tpa.ID).
		Str("team_id", teamID).
		Str("play_id", playID).
		Msg("Play assigned to team")
	return tpa, nil
}

// Get returns one team-play assignment by id.
func (s *Service) Get(ctx context.Context, id string) (TeamPlayAssignment, error) {
	var tpa TeamPlayAssignment
	if err := s.st.Get(ctx, CollectionTeamPlays, id, &tpa); err != nil {
		return TeamPlayAssignment{}, err
	}
	return tpa, nil
}

// ListForTeam returns a team's play assignments.
func (s *Service) ListForTeam(ctx context.Context, teamID string) ([]TeamPlayAssignment, error) {
	return store.QueryAs[TeamPlayAssignment](ctx, s.st, CollectionTeamPlays,
		store.Filter{"teamId": teamID})
}

// Positions returns the position staffing recorded under an assignment.
func (s *Service) Positions(ctx context.Context, assignmentID string) ([]PositionAssignment, error) {
	return store.QueryAs[PositionAssignment](ctx, s.st, CollectionPositions,
		store.Filter{"assignmentId": assignmentID})
}

// AssignPosition staffs one element of an assigned play. The roster
// snapshot and the sibling positions are loaded fresh, the engine resolves
// the request, and the result overwrites any prior value for the element.
func (s *Service) AssignPosition(ctx context.Context, assignmentID string, req AssignRequest) (PositionAssignment, error) {
	tpa, err := s.Get(ctx, assignmentID)
	if err != nil {
		return PositionAssignment{}, err
	}
	snap, err := roster.LoadSnapshot(ctx, s.st, tpa.TeamID)
	if err != nil {
		return PositionAssignment{}, err
	}
	existing, err := s.Positions(ctx, assignmentID)
	if err != nil {
		return PositionAssignment{}, err
	}

	pa, err := Assign(req, snap, existing)
	if err != nil {
		return PositionAssignment{}, err
	}
	pa.AssignmentID = assignmentID
	pa.UpdatedAt = time.Now().UTC()

	if err := s.st.Put(ctx, CollectionPositions, PositionDocID(assignmentID, pa.ElementID), pa); err != nil {
		return PositionAssignment{}, err
	}
	return pa, nil
}

// Unassign removes a team-play assignment and all of its positions.
func (s *Service) Unassign(ctx context.Context, assignmentID string) error {
	return s.st.RunInTx(ctx, func(tx *store.Store) error {
		return deleteAssignment(ctx, tx, assignmentID)
	})
}

// DeleteForPlay removes every team's assignment of a play, positions
// included. Called when the play itself is deleted.
func DeleteForPlay(ctx context.Context, st *store.Store, playID string) error {
	tpas, err := store.QueryAs[TeamPlayAssignment](ctx, st, CollectionTeamPlays,
		store.Filter{"playId": playID})
	if err != nil {
		return err
	}
	for _, tpa := range tpas {
		if err := deleteAssignment(ctx, st, tpa.ID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteForTeam removes all of a team's play assignments, positions
// included. Called when the team is removed.
func (s *Service) DeleteForTeam(ctx context.Context, teamID string) error {
	return s.st.RunInTx(ctx, func(tx *store.Store) error {
		tpas, err := store.QueryAs[TeamPlayAssignment](ctx, tx, CollectionTeamPlays,
			store.Filter{"teamId": teamID})
		if err != nil {
			return err
		}
		for _, tpa := range tpas {
			if err := deleteAssignment(ctx, tx, tpa.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func deleteAssignment(ctx context.Context, st *store.Store, assignmentID string) error {
	positions, err := store.QueryAs[PositionAssignment](ctx, st, CollectionPositions,
		store.Filter{"assignmentId": assignmentID})
	if err != nil {
		return err
	}
	for _, pa := range positions {
		if err := st.Delete(ctx, CollectionPositions, PositionDocID(assignmentID, pa.ElementID)); err != nil {
			return err
		}
	}
	return st.Delete(ctx, CollectionTeamPlays, assignmentID)
}

// PositionDocID derives a deterministic document id so re-assigning the
// same element overwrites rather than duplicates.
func PositionDocID(assignmentID, elementID string) string {
	return fmt.Sprintf("%s:%s", assignmentID, elementID)
}
