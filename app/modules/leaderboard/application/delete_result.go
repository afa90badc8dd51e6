package leaderboardservice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/uptrace/bun"

	leaderboarddb "github.com/eventsports/minha-inscricao/app/modules/leaderboard/infrastructure/repositories"
)

// DeleteResult removes a result row, reranks its group, and sheds the
// deleted position from the participant's total.
func (s *LeaderboardService) DeleteResult(ctx context.Context, resultID int64) error {
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
		return err
	}

	key := groupLockKey(categoryID, workoutID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

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
		participant, err := row.Participant()
		if err != nil {
			return err
		}

		if err := s.results.Delete(ctx, idb, resultID); err != nil {
			if errors.Is(err, leaderboarddb.ErrNoRowsAffected) {
				return &ResultNotFoundError{ResultID: resultID}
			}
			return err
		}

		if err := s.recomputeGroup(ctx, idb, category, workout); err != nil {
			return err
		}
		// The deleted row's participant is no longer in the group, so the
		// recompute above didn't touch their total.
		return s.refreshTotal(ctx, idb, category.ID, participant)
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateGroup(categoryID, workoutID)
	s.logger.InfoContext(ctx, "deleted result",
		slog.Int64("result_id", resultID),
		slog.Int64("category_id", categoryID),
		slog.Int64("workout_id", workoutID),
	)
	return nil
}
