package playbook

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Dtheapp/lockerroomlink/internal/assignments"
	"github.com/Dtheapp/lockerroomlink/internal/store"
)

// ValidationError blocks a save. It surfaces to the editor as a message and
// never propagates as a server fault.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

// Validate checks the save rules for a formation.
func (f Formation) Validate() error {
	if f.Name == "" {
		return ValidationError{Msg: "formation name is required"}
	}
	if _, err := ParseCategory(string(f.Category)); err != nil {
		return ValidationError{Msg: "formation category is invalid"}
	}
	if len(f.Elements) == 0 {
		return ValidationError{Msg: "formation has no players"}
	}
	return nil
}

// Validate checks the save rules for a play.
func (p Play) Validate() error {
	if p.Name == "" {
		return ValidationError{Msg: "play name is required"}
	}
	if _, err := ParseCategory(string(p.Category)); err != nil {
		return ValidationError{Msg: "play category is invalid"}
	}
	if p.FormationID == "" {
		return ValidationError{Msg: "a formation must be selected"}
	}
	if len(p.Elements) == 0 {
		return ValidationError{Msg: "play has no players"}
	}
	switch p.Category {
	case CategoryOffense:
		if p.OffenseType != OffenseRun && p.OffenseType != OffensePass {
			return ValidationError{Msg: "offense plays need a Run or Pass type"}
		}
	case CategoryDefense:
		if p.DefenseType != DefenseNormal && p.DefenseType != DefenseBlitz {
			return ValidationError{Msg: "defense plays need a Normal or Blitz type"}
		}
	}
	return nil
}

// Service persists formations and plays against the document store.
type Service struct {
	st *store.Store
}

// NewService creates a playbook service over the document store.
func NewService(st *store.Store) *Service {
	return &Service{st: st}
}

// CreateFormation validates and stores a new formation, minting its id.
func (s *Service) CreateFormation(ctx context.Context, f Formation) (Formation, error) {
	if err := f.Validate(); err != nil {
		return Formation{}, err
	}
	f.ID = uuid.NewString()
	if err := s.st.Create(ctx, CollectionFormations, f.ID, f); err != nil {
		return Formation{}, err
	}
	return f, nil
}

// GetFormation loads a formation by id.
func (s *Service) GetFormation(ctx context.Context, id string) (Formation, error) {
	var f Formation
	if err := s.st.Get(ctx, CollectionFormations, id, &f); err != nil {
		return Formation{}, err
	}
	return f, nil
}

// ListFormations returns formations, optionally limited to a category.
func (s *Service) ListFormations(ctx context.Context, category Category) ([]Formation, error) {
	filter := store.Filter{}
	if category != "" {
		filter["category"] = string(category)
	}
	return store.QueryAs[Formation](ctx, s.st, CollectionFormations, filter)
}

// UpdateFormation validates and resaves an edited formation. Plays already
// instantiated from it keep their own element copies and are unaffected.
func (s *Service) UpdateFormation(ctx context.Context, f Formation) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return s.st.Update(ctx, CollectionFormations, f.ID, f)
}

// DeleteFormation removes a formation and cascades to its dependent plays
// and their team assignments. Callers who want to keep dependent plays must
// migrate them to another formation first.
func (s *Service) DeleteFormation(ctx context.Context, id string) error {
	return s.st.RunInTx(ctx, func(tx *store.Store) error {
		dependents, err := store.QueryAs[Play](ctx, tx, CollectionPlays,
			store.Filter{"formationId": id})
		if err != nil {
			return err
		}
		for _, p := range dependents {
			log.Warn().
				Str("formation_id", id).
				Str("play_id", p.ID).
				Str("play_name", p.Name).
				Msg("Cascading play delete with formation")
			if err := assignments.DeleteForPlay(ctx, tx, p.ID); err != nil {
				return err
			}
			if err := tx.Delete(ctx, CollectionPlays, p.ID); err != nil {
				return err
			}
		}
		return tx.Delete(ctx, CollectionFormations, id)
	})
}

// CreatePlay seeds a play from a formation, applies the editor's fields and
// content, validates, and stores it.
func (s *Service) CreatePlay(ctx context.Context, p Play) (Play, error) {
	if p.FormationID != "" && len(p.Elements) == 0 {
		f, err := s.GetFormation(ctx, p.FormationID)
		if err != nil {
			return Play{}, fmt.Errorf("formation %s: %w", p.FormationID, err)
		}
		p.FormationName = f.Name
		p.Category = f.Category
		p.Elements = Instantiate(f)
	}
	if err := p.Validate(); err != nil {
		return Play{}, err
	}
	p.ID = uuid.NewString()
	if err := s.st.Create(ctx, CollectionPlays, p.ID, p); err != nil {
		return Play{}, err
	}
	return p, nil
}

// GetPlay loads a play by id.
func (s *Service) GetPlay(ctx context.Context, id string) (Play, error) {
	var p Play
	if err := s.st.Get(ctx, CollectionPlays, id, &p); err != nil {
		return Play{}, err
	}
	return p, nil
}

// ListPlays returns plays, optionally limited to a category.
func (s *Service) ListPlays(ctx context.Context, category Category) ([]Play, error) {
	filter := store.Filter{}
	if category != "" {
		filter["category"] = string(category)
	}
	return store.QueryAs[Play](ctx, s.st, CollectionPlays, filter)
}

// UpdatePlay validates and resaves an edited play. If the editor switched
// formations, ApplyFormation has already replaced the content; persistence
// is whole-document, last write wins.
func (s *Service) UpdatePlay(ctx context.Context, p Play) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.st.Update(ctx, CollectionPlays, p.ID, p)
}

// DeletePlay removes a play and every team assignment of it.
func (s *Service) DeletePlay(ctx context.Context, id string) error {
	return s.st.RunInTx(ctx, func(tx *store.Store) error {
		if err := assignments.DeleteForPlay(ctx, tx, id); err != nil {
			return err
		}
		return tx.Delete(ctx, CollectionPlays, id)
	})
}
