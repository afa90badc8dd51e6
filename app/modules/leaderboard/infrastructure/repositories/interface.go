package leaderboarddb

import (
	"context"

	"github.com/uptrace/bun"

	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
)

// ResultDB is the persistence surface for leaderboard result rows. Every
// method takes a bun.IDB so callers can pass either the root DB or an open
// transaction.
type ResultDB interface {
	GetByID(ctx context.Context, idb bun.IDB, id int64) (*LeaderboardResult, error)
	ListByCategory(ctx context.Context, idb bun.IDB, categoryID int64) ([]*LeaderboardResult, error)
	ListByGroup(ctx context.Context, idb bun.IDB, categoryID, workoutID int64) ([]*LeaderboardResult, error)
	ListByParticipant(ctx context.Context, idb bun.IDB, categoryID int64, p leaderboardtypes.Participant) ([]*LeaderboardResult, error)
	ExistsForParticipant(ctx context.Context, idb bun.IDB, categoryID, workoutID int64, p leaderboardtypes.Participant) (bool, error)
	ExistsForWorkout(ctx context.Context, idb bun.IDB, workoutID int64) (bool, error)
	Insert(ctx context.Context, idb bun.IDB, result *LeaderboardResult) error
	Update(ctx context.Context, idb bun.IDB, result *LeaderboardResult) error
	Delete(ctx context.Context, idb bun.IDB, id int64) error
	UpdatePositions(ctx context.Context, idb bun.IDB, positions map[int64]*int) error
	SumPositions(ctx context.Context, idb bun.IDB, categoryID int64, p leaderboardtypes.Participant) (int, error)
	CountTotal(ctx context.Context, idb bun.IDB, categoryID, workoutID int64) (int, error)
	ListPending(ctx context.Context, idb bun.IDB, categoryID, workoutID int64) ([]*LeaderboardResult, error)
}

// CatalogDB reads and maintains the event catalog rows the leaderboard
// depends on.
type CatalogDB interface {
	GetCategory(ctx context.Context, idb bun.IDB, id int64) (*Category, error)
	GetWorkout(ctx context.Context, idb bun.IDB, id int64) (*Workout, error)
	WorkoutBelongsToCategory(ctx context.Context, idb bun.IDB, workoutID, categoryID int64) (bool, error)
	ListWorkoutsByCategory(ctx context.Context, idb bun.IDB, categoryID int64) ([]*Workout, error)
	UpdateWorkoutResultKind(ctx context.Context, idb bun.IDB, workoutID int64, kind leaderboardtypes.ResultKind) error
}

// ParticipantDB reads team and athlete rows and maintains their aggregated
// totals.
type ParticipantDB interface {
	ListActiveTeams(ctx context.Context, idb bun.IDB, categoryID int64) ([]*Team, error)
	ListAthletes(ctx context.Context, idb bun.IDB, categoryID int64) ([]*Athlete, error)
	GetTeam(ctx context.Context, idb bun.IDB, id int64) (*Team, error)
	GetAthlete(ctx context.Context, idb bun.IDB, id int64) (*Athlete, error)
	UpdateTeamScore(ctx context.Context, idb bun.IDB, teamID int64, total int) error
	UpdateAthleteScore(ctx context.Context, idb bun.IDB, athleteID int64, total int) error
}
