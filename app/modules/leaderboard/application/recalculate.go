package leaderboardservice

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/uptrace/bun"

	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
	leaderboarddb "github.com/eventsports/minha-inscricao/app/modules/leaderboard/infrastructure/repositories"
)

// RecalculateCategory reranks every workout of the category from the raw
// stored values and then refreshes every participant's total. Rankings are
// recomputed before totals so the sums read the fresh positions. Intended
// as an administrative repair after manual data fixes.
//
// Each group is reranked under its own (category, workout) lock so that
// concurrent result registrations never interleave with the repair. Groups
// are taken one at a time in ascending workout id, the same order every
// caller uses, so two concurrent recalculations cannot deadlock.
func (s *LeaderboardService) RecalculateCategory(ctx context.Context, categoryID int64) error {
	var (
		category *leaderboarddb.Category
		workouts []*leaderboarddb.Workout
	)
	err := s.db.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		var err error
		category, err = s.catalog.GetCategory(ctx, idb, categoryID)
		if err != nil {
			if errors.Is(err, leaderboarddb.ErrNotFound) {
				return &CategoryNotFoundError{CategoryID: categoryID}
			}
			return err
		}
		workouts, err = s.catalog.ListWorkoutsByCategory(ctx, idb, category.ID)
		return err
	})
	if err != nil {
		return err
	}

	sort.Slice(workouts, func(i, j int) bool { return workouts[i].ID < workouts[j].ID })

	for _, workout := range workouts {
		key := groupLockKey(category.ID, workout.ID)
		s.locks.Lock(key)
		err := s.db.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
			return s.recomputeGroup(ctx, idb, category, workout)
		})
		s.locks.Unlock(key)
		if err != nil {
			return err
		}
	}

	err = s.db.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		// recomputeGroup only refreshes participants present in each group;
		// sweep everyone so participants with no rows end at zero.
		if category.IsTeam() {
			teams, err := s.participants.ListActiveTeams(ctx, idb, category.ID)
			if err != nil {
				return err
			}
			for _, t := range teams {
				if err := s.refreshTotal(ctx, idb, category.ID, leaderboardtypes.TeamID(t.ID)); err != nil {
					return err
				}
			}
		} else {
			athletes, err := s.participants.ListAthletes(ctx, idb, category.ID)
			if err != nil {
				return err
			}
			for _, a := range athletes {
				if err := s.refreshTotal(ctx, idb, category.ID, leaderboardtypes.AthleteID(a.ID)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateCategory(categoryID)
	s.logger.InfoContext(ctx, "recalculated category", slog.Int64("category_id", categoryID))
	return nil
}

// ChangeWorkoutResultKind switches how a workout's results are interpreted.
// Only allowed while the workout has no result rows; afterwards the kind is
// locked, since stored raw values would silently change meaning.
func (s *LeaderboardService) ChangeWorkoutResultKind(ctx context.Context, workoutID int64, kind leaderboardtypes.ResultKind) error {
	err := s.db.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		workout, err := s.catalog.GetWorkout(ctx, idb, workoutID)
		if err != nil {
			if errors.Is(err, leaderboarddb.ErrNotFound) {
				return &WorkoutNotFoundError{WorkoutID: workoutID}
			}
			return err
		}
		if workout.ResultKind == kind {
			return nil
		}

		hasResults, err := s.results.ExistsForWorkout(ctx, idb, workoutID)
		if err != nil {
			return err
		}
		if hasResults {
			return &WorkoutKindConflictError{WorkoutID: workoutID, Kind: workout.ResultKind}
		}

		return s.catalog.UpdateWorkoutResultKind(ctx, idb, workoutID, kind)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "changed workout result kind",
		slog.Int64("workout_id", workoutID),
		slog.String("kind", string(kind)),
	)
	return nil
}
