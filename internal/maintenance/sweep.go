// Package maintenance runs the background sweep that prunes dangling
// references left behind by cascading deletes: routes whose start element
// is gone and position assignments pointing at deleted elements or players.
package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Dtheapp/lockerroomlink/internal/assignments"
	"github.com/Dtheapp/lockerroomlink/internal/playbook"
	"github.com/Dtheapp/lockerroomlink/internal/roster"
	"github.com/Dtheapp/lockerroomlink/internal/store"
)

const sweepTimeout = 2 * time.Minute

// Sweeper owns the scheduled sweep job.
type Sweeper struct {
	st        *store.Store
	scheduler gocron.Scheduler
}

// New creates a sweeper that runs every interval once started.
func New(st *store.Store, interval time.Duration) (*Sweeper, error) {
	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					log.Error().
						Str("job_id", jobID.String()).
						Str("job_name", jobName).
						Interface("panic", recoverData).
						Msg("Maintenance job panicked")
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}

	s := &Sweeper{st: st, scheduler: sched}
	if _, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.run),
		gocron.WithName("orphan-sweep"),
	); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins running the sweep on its schedule.
func (s *Sweeper) Start() {
	s.scheduler.Start()
	log.Info().Msg("Maintenance sweeper started")
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (s *Sweeper) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	routes, err := SweepOrphanedRoutes(ctx, s.st)
	if err != nil {
		log.Error().Err(err).Msg("Orphaned route sweep failed")
	}
	positions, err := SweepPositions(ctx, s.st)
	if err != nil {
		log.Error().Err(err).Msg("Position sweep failed")
	}
	if routes > 0 || positions > 0 {
		log.Info().
			Int("routes_removed", routes).
			Int("positions_cleaned", positions).
			Msg("Maintenance sweep completed")
	}
}

// SweepOrphanedRoutes removes routes whose start element no longer exists
// in their play. Returns the number of routes removed.
func SweepOrphanedRoutes(ctx context.Context, st *store.Store) (int, error) {
	plays, err := store.QueryAs[playbook.Play](ctx, st, playbook.CollectionPlays, nil)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, p := range plays {
		scene := p.Scene()
		orphans := scene.OrphanedRoutes()
		if len(orphans) == 0 {
			continue
		}
		for _, o := range orphans {
			if err := scene.RemoveRoute(o.ID); err != nil {
				return removed, err
			}
		}
		p.SetScene(scene)
		if err := st.Update(ctx, playbook.CollectionPlays, p.ID, p); err != nil {
			return removed, err
		}
		removed += len(orphans)
		log.Info().
			Str("play_id", p.ID).
			Int("routes", len(orphans)).
			Msg("Pruned orphaned routes")
	}
	return removed, nil
}

// SweepPositions cleans position assignments under every team-play
// assignment: positions for deleted elements or departed primary players
// are removed, and a departed secondary is cleared in place. Assignments of
// plays that no longer exist are removed entirely. Returns the number of
// position documents changed or removed.
func SweepPositions(ctx context.Context, st *store.Store) (int, error) {
	tpas, err := store.QueryAs[assignments.TeamPlayAssignment](ctx, st, assignments.CollectionTeamPlays, nil)
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for _, tpa := range tpas {
		positions, err := store.QueryAs[assignments.PositionAssignment](ctx, st,
			assignments.CollectionPositions, store.Filter{"assignmentId": tpa.ID})
		if err != nil {
			return cleaned, err
		}

		var play playbook.Play
		err = st.Get(ctx, playbook.CollectionPlays, tpa.PlayID, &play)
		if errors.Is(err, store.ErrNotFound) {
			n, err := removeAssignment(ctx, st, tpa, positions)
			if err != nil {
				return cleaned, err
			}
			cleaned += n
			continue
		}
		if err != nil {
			return cleaned, err
		}

		elements := make(map[string]bool, len(play.Elements))
		for _, e := range play.Elements {
			elements[e.ID] = true
		}
		snap, err := roster.LoadSnapshot(ctx, st, tpa.TeamID)
		if err != nil {
			return cleaned, err
		}

		for _, pa := range positions {
			docID := assignments.PositionDocID(tpa.ID, pa.ElementID)
			primaryGone := pa.Primary != nil && !onRoster(snap, pa.Primary.ID)
			if !elements[pa.ElementID] || primaryGone {
				if err := st.Delete(ctx, assignments.CollectionPositions, docID); err != nil {
					return cleaned, err
				}
				cleaned++
				continue
			}
			if pa.Secondary != nil && !onRoster(snap, pa.Secondary.ID) {
				pa.Secondary = nil
				pa.UpdatedAt = time.Now().UTC()
				if err := st.Put(ctx, assignments.CollectionPositions, docID, pa); err != nil {
					return cleaned, err
				}
				cleaned++
			}
		}
	}
	return cleaned, nil
}

func removeAssignment(ctx context.Context, st *store.Store, tpa assignments.TeamPlayAssignment, positions []assignments.PositionAssignment) (int, error) {
	for _, pa := range positions {
		if err := st.Delete(ctx, assignments.CollectionPositions, assignments.PositionDocID(tpa.ID, pa.ElementID)); err != nil {
			return 0, err
		}
	}
	if err := st.Delete(ctx, assignments.CollectionTeamPlays, tpa.ID); err != nil {
		return 0, err
	}
	log.Warn().
		Str("assignment_id", tpa.ID).
		Str("play_id", tpa.PlayID).
		Msg("Removed assignment of deleted play")
	return len(positions) + 1, nil
}

func onRoster(snap roster.Snapshot, playerID string) bool {
	_, ok := snap[playerID]
	return ok
}
