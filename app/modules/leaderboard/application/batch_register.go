package leaderboardservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/scoring"
	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
	leaderboarddb "github.com/eventsports/minha-inscricao/app/modules/leaderboard/infrastructure/repositories"
)

// RegisterResultsBatch registers several results for the same
// (category, workout) group in one transaction. The batch is all or
// nothing: every item is validated before any row is written, and the
// first invalid item aborts the whole batch with a BatchValidationError.
// The group is reranked once at the end.
func (s *LeaderboardService) RegisterResultsBatch(ctx context.Context, inputs []RegisterResultInput) (*BatchRegisterView, error) {
	if len(inputs) == 0 {
		return &BatchRegisterView{Results: []ResultView{}}, nil
	}

	categoryID := inputs[0].CategoryID
	workoutID := inputs[0].WorkoutID
	for i, input := range inputs {
		if input.CategoryID != categoryID || input.WorkoutID != workoutID {
			return nil, &BatchValidationError{
				Index: i,
				Err:   fmt.Errorf("%w: batch items must target the same category and workout", scoring.ErrInvalidResultFormat),
			}
		}
	}

	key := groupLockKey(categoryID, workoutID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	var view *BatchRegisterView
	err := s.db.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		category, workout, err := s.loadGroup(ctx, idb, categoryID, workoutID)
		if err != nil {
			return err
		}

		// Validate everything up front so a late failure can't leave a
		// partial batch behind.
		rows := make([]*leaderboarddb.LeaderboardResult, 0, len(inputs))
		seen := make(map[leaderboardtypes.Participant]bool, len(inputs))
		for i, input := range inputs {
			participant, err := s.resolveParticipant(ctx, idb, category, input.TeamID, input.AthleteID)
			if err != nil {
				return &BatchValidationError{Index: i, Err: err}
			}
			if seen[participant] {
				return &BatchValidationError{Index: i, Err: &DuplicateResultError{
					CategoryID:  category.ID,
					WorkoutID:   workout.ID,
					Participant: participant,
				}}
			}
			seen[participant] = true

			exists, err := s.results.ExistsForParticipant(ctx, idb, category.ID, workout.ID, participant)
			if err != nil {
				return fmt.Errorf("failed to check for existing result: %w", err)
			}
			if exists {
				return &BatchValidationError{Index: i, Err: &DuplicateResultError{
					CategoryID:  category.ID,
					WorkoutID:   workout.ID,
					Participant: participant,
				}}
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
					return &BatchValidationError{Index: i, Err: err}
				}
				row.SetValue(value)
			}
			rows = append(rows, row)
		}

		for _, row := range rows {
			if err := s.results.Insert(ctx, idb, row); err != nil {
				return err
			}
			s.metrics.ResultsRegistered.WithLabelValues(string(workout.ResultKind)).Inc()
		}

		if err := s.recomputeGroup(ctx, idb, category, workout); err != nil {
			return err
		}

		views := make([]ResultView, 0, len(rows))
		for _, row := range rows {
			reloaded, err := s.results.GetByID(ctx, idb, row.ID)
			if err != nil {
				return fmt.Errorf("failed to reload batch result: %w", err)
			}
			rv, err := s.resultView(ctx, idb, reloaded, workout.ResultKind)
			if err != nil {
				return err
			}
			views = append(views, *rv)
		}
		view = &BatchRegisterView{Registered: len(views), Results: views}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateGroup(categoryID, workoutID)
	s.logger.InfoContext(ctx, "registered result batch",
		slog.Int64("category_id", categoryID),
		slog.Int64("workout_id", workoutID),
		slog.Int("count", view.Registered),
	)
	return view, nil
}
