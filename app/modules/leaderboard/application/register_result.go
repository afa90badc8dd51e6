package leaderboardservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/scoring"
	leaderboarddb "github.com/eventsports/minha-inscricao/app/modules/leaderboard/infrastructure/repositories"
)

// RegisterResult writes one participant's result for a workout and
// recomputes the group ranking. A participant gets at most one row per
// (category, workout); a second registration fails with
// DuplicateResultError.
func (s *LeaderboardService) RegisterResult(ctx context.Context, input RegisterResultInput) (*ResultView, error) {
	key := groupLockKey(input.CategoryID, input.WorkoutID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	var view *ResultView
	err := s.db.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		category, workout, err := s.loadGroup(ctx, idb, input.CategoryID, input.WorkoutID)
		if err != nil {
			return err
		}

		participant, err := s.resolveParticipant(ctx, idb, category, input.TeamID, input.AthleteID)
		if err != nil {
			return err
		}

		exists, err := s.results.ExistsForParticipant(ctx, idb, category.ID, workout.ID, participant)
		if err != nil {
			return fmt.Errorf("failed to check for existing result: %w", err)
		}
		if exists {
			return &DuplicateResultError{
				CategoryID:  category.ID,
				WorkoutID:   workout.ID,
				Participant: participant,
			}
		}

		row := &leaderboarddb.LeaderboardResult{
			EventID:    input.EventID,
			CategoryID: category.ID,
			WorkoutID:  workout.ID,
			Finalized:  input.Finalized,
			Notes:      input.Notes,
		}
		row.SetParticipant(participant)

		if !input.Result.Empty() {
			value, err := scoring.Parse(workout.ResultKind, input.Result)
			if err != nil {
				return err
			}
			row.SetValue(value)
		}

		if err := s.results.Insert(ctx, idb, row); err != nil {
			return err
		}

		if err := s.recomputeGroup(ctx, idb, category, workout); err != nil {
			return err
		}

		// Re-read for the position assigned during recompute.
		row, err = s.results.GetByID(ctx, idb, row.ID)
		if err != nil {
			return fmt.Errorf("failed to reload registered result: %w", err)
		}
		view, err = s.resultView(ctx, idb, row, workout.ResultKind)
		if err != nil {
			return err
		}

		s.metrics.ResultsRegistered.WithLabelValues(string(workout.ResultKind)).Inc()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateGroup(input.CategoryID, input.WorkoutID)
	s.logger.InfoContext(ctx, "registered result",
		slog.Int64("category_id", input.CategoryID),
		slog.Int64("workout_id", input.WorkoutID),
		slog.Int64("result_id", view.ResultID),
	)
	return view, nil
}
