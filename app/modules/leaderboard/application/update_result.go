package leaderboardservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/scoring"
	leaderboarddb "github.com/eventsports/minha-inscricao/app/modules/leaderboard/infrastructure/repositories"
)

// UpdateResult applies a partial update to an existing result row and
// recomputes its group. Passing an empty RawResult clears the registered
// value, which leaves the row unranked.
func (s *LeaderboardService) UpdateResult(ctx context.Context, resultID int64, input UpdateResultInput) (*ResultView, error) {
	// The group key isn't known before the row is read, so locate the row
	// first, then take the lock and re-read inside the transaction.
	var categoryID, workoutID int64
	err := s.db.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		row, err := s.results.GetByID(ctx, idb, resultID)
		if err != nil {
			if errors.Is(err, leaderboarddb.ErrNotFound) {
				return &ResultNotFoundError{ResultID: resultID}
			}
			return err
		}
		categoryID, workoutID = row.CategoryID, row.WorkoutID
		return nil
	})
	if err != nil {
		return nil, err
	}

	key := groupLockKey(categoryID, workoutID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	var view *ResultView
	err = s.db.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		row, err := s.results.GetByID(ctx, idb, resultID)
		if err != nil {
			if errors.Is(err, leaderboarddb.ErrNotFound) {
				return &ResultNotFoundError{ResultID: resultID}
			}
			return err
		}

		category, workout, err := s.loadGroup(ctx, idb, row.CategoryID, row.WorkoutID)
		if err != nil {
			return err
		}

		if input.Result != nil {
			if input.Result.Empty() {
				row.SetValue(nil)
			} else {
				value, err := scoring.Parse(workout.ResultKind, *input.Result)
				if err != nil {
					return err
				}
				row.SetValue(value)
			}
		}
		if input.Finalized != nil {
			row.Finalized = *input.Finalized
		}
		if input.Notes != nil {
			row.Notes = *input.Notes
		}

		if err := s.results.Update(ctx, idb, row); err != nil {
			return fmt.Errorf("failed to store result update: %w", err)
		}

		if err := s.recomputeGroup(ctx, idb, category, workout); err != nil {
			return err
		}

		row, err = s.results.GetByID(ctx, idb, resultID)
		if err != nil {
			return fmt.Errorf("failed to reload updated result: %w", err)
		}
		view, err = s.resultView(ctx, idb, row, workout.ResultKind)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateGroup(categoryID, workoutID)
	s.logger.InfoContext(ctx, "updated result",
		slog.Int64("result_id", resultID),
		slog.Int64("category_id", categoryID),
		slog.Int64("workout_id", workoutID),
	)
	return view, nil
}
