package leaderboardservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
	leaderboarddb "github.com/eventsports/minha-inscricao/app/modules/leaderboard/infrastructure/repositories"
)

// InitializeSlots creates an empty result row for every registered
// participant of the category that doesn't have one yet for the workout.
// Idempotent: participants with an existing row are skipped, so it is safe
// to run again after new registrations.
func (s *LeaderboardService) InitializeSlots(ctx context.Context, categoryID, workoutID int64) (*SlotInitializationView, error) {
	key := groupLockKey(categoryID, workoutID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	var view *SlotInitializationView
	err := s.db.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		category, workout, err := s.loadGroup(ctx, idb, categoryID, workoutID)
		if err != nil {
			return err
		}

		var refs []leaderboardtypes.Participant
		if category.IsTeam() {
			teams, err := s.participants.ListActiveTeams(ctx, idb, category.ID)
			if err != nil {
				return err
			}
			for _, t := range teams {
				refs = append(refs, leaderboardtypes.TeamID(t.ID))
			}
		} else {
			athletes, err := s.participants.ListAthletes(ctx, idb, category.ID)
			if err != nil {
				return err
			}
			for _, a := range athletes {
				refs = append(refs, leaderboardtypes.AthleteID(a.ID))
			}
		}

		created, skipped := 0, 0
		for _, ref := range refs {
			exists, err := s.results.ExistsForParticipant(ctx, idb, category.ID, workout.ID, ref)
			if err != nil {
				return fmt.Errorf("failed to check slot for %s: %w", ref, err)
			}
			if exists {
				skipped++
				continue
			}
			row := &leaderboarddb.LeaderboardResult{
				EventID:    workout.EventID,
				CategoryID: category.ID,
				WorkoutID:  workout.ID,
			}
			row.SetParticipant(ref)
			if err := s.results.Insert(ctx, idb, row); err != nil {
				return err
			}
			created++
		}

		view = &SlotInitializationView{
			CategoryID: category.ID,
			WorkoutID:  workout.ID,
			Created:    created,
			Skipped:    skipped,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Empty rows never rank, so positions are untouched, but the group
	// listing changed.
	s.cache.InvalidateGroup(categoryID, workoutID)
	s.logger.InfoContext(ctx, "initialized result slots",
		slog.Int64("category_id", categoryID),
		slog.Int64("workout_id", workoutID),
		slog.Int("created", view.Created),
		slog.Int("skipped", view.Skipped),
	)
	return view, nil
}
