package leaderboardmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Adding leaderboard_results indexes...")

		// One result per participant per workout within a category. Partial
		// unique indexes because team_id and athlete_id are nullable.
		stmts := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS uq_result_team_workout
				ON leaderboard_results (category_id, workout_id, team_id)
				WHERE team_id IS NOT NULL`,
			`CREATE UNIQUE INDEX IF NOT EXISTS uq_result_athlete_workout
				ON leaderboard_results (category_id, workout_id, athlete_id)
				WHERE athlete_id IS NOT NULL`,
			`CREATE INDEX IF NOT EXISTS idx_results_group
				ON leaderboard_results (category_id, workout_id)`,
			`CREATE INDEX IF NOT EXISTS idx_results_category
				ON leaderboard_results (category_id)`,
			`ALTER TABLE leaderboard_results ADD CONSTRAINT chk_result_participant_xor
				CHECK ((team_id IS NULL) <> (athlete_id IS NULL))`,
		}
		for _, stmt := range stmts {
			if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Leaderboard indexes added successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping leaderboard_results indexes...")

		stmts := []string{
			"ALTER TABLE leaderboard_results DROP CONSTRAINT IF EXISTS chk_result_participant_xor",
			"DROP INDEX IF EXISTS idx_results_category",
			"DROP INDEX IF EXISTS idx_results_group",
			"DROP INDEX IF EXISTS uq_result_athlete_workout",
			"DROP INDEX IF EXISTS uq_result_team_workout",
		}
		for _, stmt := range stmts {
			if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Leaderboard indexes dropped successfully!")
		return nil
	})
}
