package leaderboardservice

import (
	"context"

	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
)

// Service is the leaderboard application surface consumed by the HTTP
// handlers.
type Service interface {
	RegisterResult(ctx context.Context, input RegisterResultInput) (*ResultView, error)
	RegisterResultsBatch(ctx context.Context, inputs []RegisterResultInput) (*BatchRegisterView, error)
	UpdateResult(ctx context.Context, resultID int64, input UpdateResultInput) (*ResultView, error)
	DeleteResult(ctx context.Context, resultID int64) error
	InitializeSlots(ctx context.Context, categoryID, workoutID int64) (*SlotInitializationView, error)
	RecalculateCategory(ctx context.Context, categoryID int64) error
	ChangeWorkoutResultKind(ctx context.Context, workoutID int64, kind leaderboardtypes.ResultKind) error

	GetWorkoutLeaderboard(ctx context.Context, categoryID, workoutID int64) (*WorkoutLeaderboardView, error)
	GetWorkoutProgress(ctx context.Context, categoryID, workoutID int64) (*WorkoutProgressView, error)
	GetCategoryRanking(ctx context.Context, categoryID int64) (*CategoryRankingView, error)
	GetCategoryStats(ctx context.Context, categoryID int64) (*CategoryStatsView, error)
}
