package leaderboardservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/scoring"
	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
	leaderboarddb "github.com/eventsports/minha-inscricao/app/modules/leaderboard/infrastructure/repositories"
	"github.com/eventsports/minha-inscricao/internal/groupcache"
	"github.com/eventsports/minha-inscricao/internal/lockmap"
	"github.com/eventsports/minha-inscricao/internal/metrics"
)

// TxRunner runs a function inside a database transaction. The bun.IDB
// passed to fn is the open transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, idb bun.IDB) error) error
}

// LeaderboardService implements Service. Every mutation recomputes the
// affected workout ranking and participant totals inside one transaction,
// serialized per (category, workout) group by the lock map.
type LeaderboardService struct {
	db           TxRunner
	results      leaderboarddb.ResultDB
	catalog      leaderboarddb.CatalogDB
	participants leaderboarddb.ParticipantDB

	locks     *lockmap.KeyedMutex
	cache     *groupcache.Cache
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tiePolicy scoring.TiePolicy
}

var _ Service = (*LeaderboardService)(nil)

// NewLeaderboardService wires the service. tiePolicy controls how ranking
// ties are placed; TiePolicyCompetition is the production default.
func NewLeaderboardService(
	db TxRunner,
	results leaderboarddb.ResultDB,
	catalog leaderboarddb.CatalogDB,
	participants leaderboarddb.ParticipantDB,
	cache *groupcache.Cache,
	m *metrics.Metrics,
	logger *slog.Logger,
	tiePolicy scoring.TiePolicy,
) *LeaderboardService {
	return &LeaderboardService{
		db:           db,
		results:      results,
		catalog:      catalog,
		participants: participants,
		locks:        lockmap.New(),
		cache:        cache,
		metrics:      m,
		logger:       logger,
		tiePolicy:    tiePolicy,
	}
}

func groupLockKey(categoryID, workoutID int64) string {
	return fmt.Sprintf("%d/%d", categoryID, workoutID)
}

// loadGroup fetches the category and workout and verifies the workout is
// associated with the category.
func (s *LeaderboardService) loadGroup(ctx context.Context, idb bun.IDB, categoryID, workoutID int64) (*leaderboarddb.Category, *leaderboarddb.Workout, error) {
	category, err := s.catalog.GetCategory(ctx, idb, categoryID)
	if err != nil {
		if errors.Is(err, leaderboarddb.ErrNotFound) {
			return nil, nil, &CategoryNotFoundError{CategoryID: categoryID}
		}
		return nil, nil, fmt.Errorf("failed to load category %d: %w", categoryID, err)
	}

	workout, err := s.catalog.GetWorkout(ctx, idb, workoutID)
	if err != nil {
		if errors.Is(err, leaderboarddb.ErrNotFound) {
			return nil, nil, &WorkoutNotFoundError{WorkoutID: workoutID}
		}
		return nil, nil, fmt.Errorf("failed to load workout %d: %w", workoutID, err)
	}

	belongs, err := s.catalog.WorkoutBelongsToCategory(ctx, idb, workoutID, categoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check workout membership: %w", err)
	}
	if !belongs {
		return nil, nil, &WorkoutNotFoundError{WorkoutID: workoutID, CategoryID: categoryID}
	}

	return category, workout, nil
}

// resolveParticipant validates the team/athlete pair against the category's
// participation kind and registration, returning the tagged reference.
func (s *LeaderboardService) resolveParticipant(ctx context.Context, idb bun.IDB, category *leaderboarddb.Category, teamID, athleteID *int64) (leaderboardtypes.Participant, error) {
	switch {
	case teamID != nil && athleteID == nil:
		if !category.IsTeam() {
			return nil, &ParticipantCategoryMismatchError{
				CategoryID:  category.ID,
				Participant: leaderboardtypes.TeamID(*teamID),
				Reason:      "category takes individual athletes",
			}
		}
		team, err := s.participants.GetTeam(ctx, idb, *teamID)
		if err != nil {
			if errors.Is(err, leaderboarddb.ErrNotFound) {
				return nil, &ParticipantCategoryMismatchError{
					CategoryID:  category.ID,
					Participant: leaderboardtypes.TeamID(*teamID),
					Reason:      "team not found",
				}
			}
			return nil, fmt.Errorf("failed to load team %d: %w", *teamID, err)
		}
		if team.CategoryID != category.ID {
			return nil, &ParticipantCategoryMismatchError{
				CategoryID:  category.ID,
				Participant: leaderboardtypes.TeamID(*teamID),
				Reason:      "team is registered in another category",
			}
		}
		return leaderboardtypes.TeamID(*teamID), nil

	case athleteID != nil && teamID == nil:
		if category.IsTeam() {
			return nil, &ParticipantCategoryMismatchError{
				CategoryID:  category.ID,
				Participant: leaderboardtypes.AthleteID(*athleteID),
				Reason:      "category takes teams",
			}
		}
		athlete, err := s.participants.GetAthlete(ctx, idb, *athleteID)
		if err != nil {
			if errors.Is(err, leaderboarddb.ErrNotFound) {
				return nil, &ParticipantCategoryMismatchError{
					CategoryID:  category.ID,
					Participant: leaderboardtypes.AthleteID(*athleteID),
					Reason:      "athlete not found",
				}
			}
			return nil, fmt.Errorf("failed to load athlete %d: %w", *athleteID, err)
		}
		if athlete.CategoryID != category.ID {
			return nil, &ParticipantCategoryMismatchError{
				CategoryID:  category.ID,
				Participant: leaderboardtypes.AthleteID(*athleteID),
				Reason:      "athlete is registered in another category",
			}
		}
		return leaderboardtypes.AthleteID(*athleteID), nil

	default:
		return nil, fmt.Errorf("%w: exactly one of team_id and athlete_id must be set", scoring.ErrInvalidResultFormat)
	}
}

// recomputeGroup reranks one (category, workout) group and refreshes the
// total score of every participant in it. Must run inside the caller's
// transaction while the group lock is held.
func (s *LeaderboardService) recomputeGroup(ctx context.Context, idb bun.IDB, category *leaderboarddb.Category, workout *leaderboarddb.Workout) error {
	start := time.Now()

	rows, err := s.results.ListByGroup(ctx, idb, category.ID, workout.ID)
	if err != nil {
		return fmt.Errorf("failed to list group for recompute: %w", err)
	}

	entries := make([]scoring.Entry, 0, len(rows))
	for _, row := range rows {
		p, err := row.Participant()
		if err != nil {
			return fmt.Errorf("failed to resolve participant during recompute: %w", err)
		}
		entries = append(entries, scoring.Entry{
			ResultID:    row.ID,
			Participant: p,
			Value:       row.Value(workout.ResultKind),
			Finalized:   row.Finalized,
		})
	}

	placements := scoring.Rank(entries, s.tiePolicy)
	positions := make(map[int64]*int, len(placements))
	for _, pl := range placements {
		positions[pl.ResultID] = pl.Position
	}
	if err := s.results.UpdatePositions(ctx, idb, positions); err != nil {
		return fmt.Errorf("failed to write positions: %w", err)
	}

	for _, row := range rows {
		p, err := row.Participant()
		if err != nil {
			return err
		}
		if err := s.refreshTotal(ctx, idb, category.ID, p); err != nil {
			return err
		}
	}

	s.metrics.Recomputes.Inc()
	s.metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
	s.logger.DebugContext(ctx, "recomputed group ranking",
		slog.Int64("category_id", category.ID),
		slog.Int64("workout_id", workout.ID),
		slog.Int("entries", len(entries)),
	)
	return nil
}

// refreshTotal re-sums a participant's positions and stores the aggregate.
func (s *LeaderboardService) refreshTotal(ctx context.Context, idb bun.IDB, categoryID int64, p leaderboardtypes.Participant) error {
	total, err := s.results.SumPositions(ctx, idb, categoryID, p)
	if err != nil {
		return fmt.Errorf("failed to sum positions for %s: %w", p, err)
	}
	if p.IsTeam() {
		err = s.participants.UpdateTeamScore(ctx, idb, p.ID(), total)
	} else {
		err = s.participants.UpdateAthleteScore(ctx, idb, p.ID(), total)
	}
	if err != nil && !errors.Is(err, leaderboarddb.ErrNoRowsAffected) {
		return fmt.Errorf("failed to store total for %s: %w", p, err)
	}
	return nil
}

// participantView resolves the display name for a participant reference.
func (s *LeaderboardService) participantView(ctx context.Context, idb bun.IDB, p leaderboardtypes.Participant) (ParticipantView, error) {
	view := ParticipantView{Kind: p.Kind(), ID: p.ID()}
	if p.IsTeam() {
		team, err := s.participants.GetTeam(ctx, idb, p.ID())
		if err != nil {
			if errors.Is(err, leaderboarddb.ErrNotFound) {
				return view, nil
			}
			return view, fmt.Errorf("failed to load team %d: %w", p.ID(), err)
		}
		view.Name = team.Name
		return view, nil
	}
	athlete, err := s.participants.GetAthlete(ctx, idb, p.ID())
	if err != nil {
		if errors.Is(err, leaderboarddb.ErrNotFound) {
			return view, nil
		}
		return view, fmt.Errorf("failed to load athlete %d: %w", p.ID(), err)
	}
	view.Name = athlete.Name
	return view, nil
}

// resultView converts a stored row into its API shape.
func (s *LeaderboardService) resultView(ctx context.Context, idb bun.IDB, row *leaderboarddb.LeaderboardResult, kind leaderboardtypes.ResultKind) (*ResultView, error) {
	p, err := row.Participant()
	if err != nil {
		return nil, err
	}
	pv, err := s.participantView(ctx, idb, p)
	if err != nil {
		return nil, err
	}
	return &ResultView{
		ResultID:    row.ID,
		CategoryID:  row.CategoryID,
		WorkoutID:   row.WorkoutID,
		Participant: pv,
		Kind:        kind,
		Value:       row.FormattedValue(kind),
		Position:    row.WorkoutPosition,
		Finalized:   row.Finalized,
		Notes:       row.Notes,
	}, nil
}
