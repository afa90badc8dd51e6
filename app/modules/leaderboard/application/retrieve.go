package leaderboardservice

import (
	"context"
	"errors"
	"sort"

	"github.com/uptrace/bun"

	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
	leaderboarddb "github.com/eventsports/minha-inscricao/app/modules/leaderboard/infrastructure/repositories"
)

// GetWorkoutLeaderboard returns the ranked listing of one workout within a
// category. Ranked rows come first in position order; rows without a
// ranked result follow in participant order.
func (s *LeaderboardService) GetWorkoutLeaderboard(ctx context.Context, categoryID, workoutID int64) (*WorkoutLeaderboardView, error) {
	if cached, ok := s.cache.GetGroup(categoryID, workoutID); ok {
		s.metrics.CacheHits.Inc()
		return cached.(*WorkoutLeaderboardView), nil
	}
	s.metrics.CacheMisses.Inc()

	// Captured before the snapshot: a mutation committing while the view
	// is being built bumps the epoch and voids the SetGroup below.
	epoch := s.cache.Epoch(categoryID)

	var view *WorkoutLeaderboardView
	err := s.db.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		_, workout, err := s.loadGroup(ctx, idb, categoryID, workoutID)
		if err != nil {
			return err
		}

		rows, err := s.results.ListByGroup(ctx, idb, categoryID, workoutID)
		if err != nil {
			return err
		}

		entries := make([]ResultView, 0, len(rows))
		for _, row := range rows {
			rv, err := s.resultView(ctx, idb, row, workout.ResultKind)
			if err != nil {
				return err
			}
			entries = append(entries, *rv)
		}
		sort.SliceStable(entries, func(i, j int) bool {
			pi, pj := entries[i].Position, entries[j].Position
			switch {
			case pi != nil && pj != nil:
				return *pi < *pj
			case pi != nil:
				return true
			default:
				return false
			}
		})

		view = &WorkoutLeaderboardView{
			CategoryID:  categoryID,
			WorkoutID:   workoutID,
			WorkoutName: workout.Name,
			Kind:        workout.ResultKind,
			Entries:     entries,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.SetGroup(categoryID, workoutID, epoch, view)
	return view, nil
}

// GetCategoryRanking returns the category's overall standing: participants
// ordered by ascending total pontuacao. Only rows that entered a workout
// ranking count as a score, so a finalized row with no registered value
// leaves its participant scoreless. Scoreless participants sort last
// regardless of total; ties break by ascending participant id. The top
// three carry medals.
func (s *LeaderboardService) GetCategoryRanking(ctx context.Context, categoryID int64) (*CategoryRankingView, error) {
	if cached, ok := s.cache.GetCategory(categoryID); ok {
		s.metrics.CacheHits.Inc()
		return cached.(*CategoryRankingView), nil
	}
	s.metrics.CacheMisses.Inc()

	epoch := s.cache.Epoch(categoryID)

	var view *CategoryRankingView
	err := s.db.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		category, err := s.catalog.GetCategory(ctx, idb, categoryID)
		if err != nil {
			if errors.Is(err, leaderboarddb.ErrNotFound) {
				return &CategoryNotFoundError{CategoryID: categoryID}
			}
			return err
		}

		workouts, err := s.catalog.ListWorkoutsByCategory(ctx, idb, category.ID)
		if err != nil {
			return err
		}
		kinds := make(map[int64]leaderboardtypes.ResultKind, len(workouts))
		for _, w := range workouts {
			kinds[w.ID] = w.ResultKind
		}

		var refs []ParticipantView
		if category.IsTeam() {
			teams, err := s.participants.ListActiveTeams(ctx, idb, category.ID)
			if err != nil {
				return err
			}
			for _, t := range teams {
				refs = append(refs, ParticipantView{Kind: leaderboardtypes.ParticipationTeam, ID: t.ID, Name: t.Name})
			}
		} else {
			athletes, err := s.participants.ListAthletes(ctx, idb, category.ID)
			if err != nil {
				return err
			}
			for _, a := range athletes {
				refs = append(refs, ParticipantView{Kind: leaderboardtypes.ParticipationIndividual, ID: a.ID, Name: a.Name})
			}
		}

		standings := make([]RankingEntryView, 0, len(refs))
		for _, pv := range refs {
			var ref leaderboardtypes.Participant
			if pv.Kind == leaderboardtypes.ParticipationTeam {
				ref = leaderboardtypes.TeamID(pv.ID)
			} else {
				ref = leaderboardtypes.AthleteID(pv.ID)
			}

			rows, err := s.results.ListByParticipant(ctx, idb, category.ID, ref)
			if err != nil {
				return err
			}

			entry := RankingEntryView{
				Participant:   pv,
				TotalWorkouts: len(workouts),
				Workouts:      make([]ResultView, 0, len(rows)),
			}
			for _, row := range rows {
				kind := kinds[row.WorkoutID]
				if row.WorkoutPosition != nil {
					entry.WorkoutsFinalized++
					entry.Total += *row.WorkoutPosition
				}
				entry.Workouts = append(entry.Workouts, ResultView{
					ResultID:    row.ID,
					CategoryID:  row.CategoryID,
					WorkoutID:   row.WorkoutID,
					Participant: pv,
					Kind:        kind,
					Value:       row.FormattedValue(kind),
					Position:    row.WorkoutPosition,
					Finalized:   row.Finalized,
					Notes:       row.Notes,
				})
			}
			entry.HasScore = entry.WorkoutsFinalized > 0
			entry.FinishedAll = len(workouts) > 0 && entry.WorkoutsFinalized == len(workouts)
			standings = append(standings, entry)
		}

		sort.SliceStable(standings, func(i, j int) bool {
			si, sj := standings[i], standings[j]
			if si.HasScore != sj.HasScore {
				return si.HasScore
			}
			if si.Total != sj.Total {
				return si.Total < sj.Total
			}
			return si.Participant.ID < sj.Participant.ID
		})

		for i := range standings {
			standings[i].Position = i + 1
			if standings[i].HasScore {
				standings[i].Medal = medalFor(i + 1)
			}
		}

		view = &CategoryRankingView{
			CategoryID:   category.ID,
			CategoryName: category.Name,
			Entries:      standings,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.SetCategory(categoryID, epoch, view)
	return view, nil
}

// GetWorkoutProgress reports how many of the group's rows are finalized
// and who is still pending.
func (s *LeaderboardService) GetWorkoutProgress(ctx context.Context, categoryID, workoutID int64) (*WorkoutProgressView, error) {
	var view *WorkoutProgressView
	err := s.db.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		if _, _, err := s.loadGroup(ctx, idb, categoryID, workoutID); err != nil {
			return err
		}

		total, err := s.results.CountTotal(ctx, idb, categoryID, workoutID)
		if err != nil {
			return err
		}
		pending, err := s.results.ListPending(ctx, idb, categoryID, workoutID)
		if err != nil {
			return err
		}

		pendingFor := make([]ParticipantView, 0, len(pending))
		for _, row := range pending {
			p, err := row.Participant()
			if err != nil {
				return err
			}
			pv, err := s.participantView(ctx, idb, p)
			if err != nil {
				return err
			}
			pendingFor = append(pendingFor, pv)
		}

		view = &WorkoutProgressView{
			CategoryID: categoryID,
			WorkoutID:  workoutID,
			Total:      total,
			Finalized:  total - len(pending),
			Pending:    len(pending),
			PendingFor: pendingFor,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetCategoryStats aggregates registration progress across the category's
// workouts.
func (s *LeaderboardService) GetCategoryStats(ctx context.Context, categoryID int64) (*CategoryStatsView, error) {
	var view *CategoryStatsView
	err := s.db.RunInTx(ctx, func(ctx context.Context, idb bun.IDB) error {
		category, err := s.catalog.GetCategory(ctx, idb, categoryID)
		if err != nil {
			if errors.Is(err, leaderboarddb.ErrNotFound) {
				return &CategoryNotFoundError{CategoryID: categoryID}
			}
			return err
		}

		workouts, err := s.catalog.ListWorkoutsByCategory(ctx, idb, category.ID)
		if err != nil {
			return err
		}

		var participants int
		if category.IsTeam() {
			teams, err := s.participants.ListActiveTeams(ctx, idb, category.ID)
			if err != nil {
				return err
			}
			participants = len(teams)
		} else {
			athletes, err := s.participants.ListAthletes(ctx, idb, category.ID)
			if err != nil {
				return err
			}
			participants = len(athletes)
		}

		rows, err := s.results.ListByCategory(ctx, idb, category.ID)
		if err != nil {
			return err
		}
		finalized := 0
		for _, row := range rows {
			if row.Finalized {
				finalized++
			}
		}

		view = &CategoryStatsView{
			CategoryID:   category.ID,
			Workouts:     len(workouts),
			Participants: participants,
			Results:      len(rows),
			Finalized:    finalized,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
