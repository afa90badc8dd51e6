package leaderboardmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	leaderboarddb "github.com/eventsports/minha-inscricao/app/modules/leaderboard/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating event catalog and leaderboard tables...")

		models := []interface{}{
			(*leaderboarddb.Event)(nil),
			(*leaderboarddb.Category)(nil),
			(*leaderboarddb.Workout)(nil),
			(*leaderboarddb.WorkoutCategory)(nil),
			(*leaderboarddb.Team)(nil),
			(*leaderboarddb.Athlete)(nil),
			(*leaderboarddb.LeaderboardResult)(nil),
		}
		for _, model := range models {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Leaderboard tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping event catalog and leaderboard tables...")

		models := []interface{}{
			(*leaderboarddb.LeaderboardResult)(nil),
			(*leaderboarddb.Athlete)(nil),
			(*leaderboarddb.Team)(nil),
			(*leaderboarddb.WorkoutCategory)(nil),
			(*leaderboarddb.Workout)(nil),
			(*leaderboarddb.Category)(nil),
			(*leaderboarddb.Event)(nil),
		}
		for _, model := range models {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Leaderboard tables dropped successfully!")
		return nil
	})
}
