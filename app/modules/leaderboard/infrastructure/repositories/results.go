package leaderboarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
)

// ResultDBImpl implements ResultDB on top of bun.
type ResultDBImpl struct{}

var _ ResultDB = (*ResultDBImpl)(nil)

func (ResultDBImpl) GetByID(ctx context.Context, idb bun.IDB, id int64) (*LeaderboardResult, error) {
	result := new(LeaderboardResult)
	err := idb.NewSelect().Model(result).Where("lr.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get leaderboard result %d: %w", id, err)
	}
	return result, nil
}

func (ResultDBImpl) ListByCategory(ctx context.Context, idb bun.IDB, categoryID int64) ([]*LeaderboardResult, error) {
	var results []*LeaderboardResult
	err := idb.NewSelect().
		Model(&results).
		Where("lr.category_id = ?", categoryID).
		Order("lr.workout_id ASC", "lr.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for category %d: %w", categoryID, err)
	}
	return results, nil
}

func (ResultDBImpl) ListByGroup(ctx context.Context, idb bun.IDB, categoryID, workoutID int64) ([]*LeaderboardResult, error) {
	var results []*LeaderboardResult
	err := idb.NewSelect().
		Model(&results).
		Where("lr.category_id = ?", categoryID).
		Where("lr.workout_id = ?", workoutID).
		Order("lr.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for category %d workout %d: %w", categoryID, workoutID, err)
	}
	return results, nil
}

func (ResultDBImpl) ListByParticipant(ctx context.Context, idb bun.IDB, categoryID int64, p leaderboardtypes.Participant) ([]*LeaderboardResult, error) {
	var results []*LeaderboardResult
	q := idb.NewSelect().
		Model(&results).
		Where("lr.category_id = ?", categoryID)
	q = whereParticipant(q, p)
	if err := q.Order("lr.workout_id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list results for %s in category %d: %w", p, categoryID, err)
	}
	return results, nil
}

func (ResultDBImpl) ExistsForParticipant(ctx context.Context, idb bun.IDB, categoryID, workoutID int64, p leaderboardtypes.Participant) (bool, error) {
	q := idb.NewSelect().
		Model((*LeaderboardResult)(nil)).
		Where("lr.category_id = ?", categoryID).
		Where("lr.workout_id = ?", workoutID)
	q = whereParticipant(q, p)
	exists, err := q.Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check result existence for %s: %w", p, err)
	}
	return exists, nil
}

func (ResultDBImpl) ExistsForWorkout(ctx context.Context, idb bun.IDB, workoutID int64) (bool, error) {
	exists, err := idb.NewSelect().
		Model((*LeaderboardResult)(nil)).
		Where("lr.workout_id = ?", workoutID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check results for workout %d: %w", workoutID, err)
	}
	return exists, nil
}

func (ResultDBImpl) Insert(ctx context.Context, idb bun.IDB, result *LeaderboardResult) error {
	if _, err := idb.NewInsert().Model(result).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert leaderboard result: %w", err)
	}
	return nil
}

func (ResultDBImpl) Update(ctx context.Context, idb bun.IDB, result *LeaderboardResult) error {
	res, err := idb.NewUpdate().Model(result).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update leaderboard result %d: %w", result.ID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (ResultDBImpl) Delete(ctx context.Context, idb bun.IDB, id int64) error {
	res, err := idb.NewDelete().
		Model((*LeaderboardResult)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete leaderboard result %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// UpdatePositions writes the given position per result id. A nil position
// clears the column.
func (ResultDBImpl) UpdatePositions(ctx context.Context, idb bun.IDB, positions map[int64]*int) error {
	for id, pos := range positions {
		_, err := idb.NewUpdate().
			Model((*LeaderboardResult)(nil)).
			Set("workout_position = ?", pos).
			Set("updated_at = current_timestamp").
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update position for result %d: %w", id, err)
		}
	}
	return nil
}

// SumPositions totals the participant's workout positions in a category.
// Unranked rows contribute nothing.
func (ResultDBImpl) SumPositions(ctx context.Context, idb bun.IDB, categoryID int64, p leaderboardtypes.Participant) (int, error) {
	var total int
	q := idb.NewSelect().
		Model((*LeaderboardResult)(nil)).
		ColumnExpr("COALESCE(SUM(lr.workout_position), 0)").
		Where("lr.category_id = ?", categoryID).
		Where("lr.workout_position IS NOT NULL")
	q = whereParticipant(q, p)
	if err := q.Scan(ctx, &total); err != nil {
		return 0, fmt.Errorf("failed to sum positions for %s in category %d: %w", p, categoryID, err)
	}
	return total, nil
}

func (ResultDBImpl) CountTotal(ctx context.Context, idb bun.IDB, categoryID, workoutID int64) (int, error) {
	count, err := idb.NewSelect().
		Model((*LeaderboardResult)(nil)).
		Where("lr.category_id = ?", categoryID).
		Where("lr.workout_id = ?", workoutID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count results for category %d workout %d: %w", categoryID, workoutID, err)
	}
	return count, nil
}

// ListPending returns the group's rows that still have no registered value
// or are not finalized yet.
func (ResultDBImpl) ListPending(ctx context.Context, idb bun.IDB, categoryID, workoutID int64) ([]*LeaderboardResult, error) {
	var results []*LeaderboardResult
	err := idb.NewSelect().
		Model(&results).
		Where("lr.category_id = ?", categoryID).
		Where("lr.workout_id = ?", workoutID).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("lr.finalized = FALSE").
				WhereOr("lr.result_reps IS NULL AND lr.result_weight_kg IS NULL AND lr.result_time_seconds IS NULL")
		}).
		Order("lr.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending results for category %d workout %d: %w", categoryID, workoutID, err)
	}
	return results, nil
}

func whereParticipant(q *bun.SelectQuery, p leaderboardtypes.Participant) *bun.SelectQuery {
	if p.IsTeam() {
		return q.Where("lr.team_id = ?", p.ID())
	}
	return q.Where("lr.athlete_id = ?", p.ID())
}
