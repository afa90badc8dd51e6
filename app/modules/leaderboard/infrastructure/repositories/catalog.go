package leaderboarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
)

// CatalogDBImpl implements CatalogDB on top of bun.
type CatalogDBImpl struct{}

var _ CatalogDB = (*CatalogDBImpl)(nil)

func (CatalogDBImpl) GetCategory(ctx context.Context, idb bun.IDB, id int64) (*Category, error) {
	category := new(Category)
	err := idb.NewSelect().Model(category).Where("c.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return category, nil
}

func (CatalogDBImpl) GetWorkout(ctx context.Context, idb bun.IDB, id int64) (*Workout, error) {
	workout := new(Workout)
	err := idb.NewSelect().Model(workout).Where("w.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get workout %d: %w", id, err)
	}
	return workout, nil
}

func (CatalogDBImpl) WorkoutBelongsToCategory(ctx context.Context, idb bun.IDB, workoutID, categoryID int64) (bool, error) {
	exists, err := idb.NewSelect().
		Model((*WorkoutCategory)(nil)).
		Where("wc.workout_id = ?", workoutID).
		Where("wc.category_id = ?", categoryID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check workout %d membership in category %d: %w", workoutID, categoryID, err)
	}
	return exists, nil
}

func (CatalogDBImpl) ListWorkoutsByCategory(ctx context.Context, idb bun.IDB, categoryID int64) ([]*Workout, error) {
	var workouts []*Workout
	err := idb.NewSelect().
		Model(&workouts).
		Join("JOIN workout_categories AS wc ON wc.workout_id = w.id").
		Where("wc.category_id = ?", categoryID).
		Order("w.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts for category %d: %w", categoryID, err)
	}
	return workouts, nil
}

func (CatalogDBImpl) UpdateWorkoutResultKind(ctx context.Context, idb bun.IDB, workoutID int64, kind leaderboardtypes.ResultKind) error {
	res, err := idb.NewUpdate().
		Model((*Workout)(nil)).
		Set("result_kind = ?", kind).
		Where("id = ?", workoutID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update result kind for workout %d: %w", workoutID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
