package leaderboardservice

import (
	"io"
	"log/slog"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/scoring"
	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
	leaderboarddb "github.com/eventsports/minha-inscricao/app/modules/leaderboard/infrastructure/repositories"
	"github.com/eventsports/minha-inscricao/internal/groupcache"
	"github.com/eventsports/minha-inscricao/internal/metrics"
)

const (
	testEventID = int64(1)

	individualCategoryID = int64(10)
	teamCategoryID       = int64(20)

	repsWorkoutID   = int64(100)
	timeWorkoutID   = int64(101)
	weightWorkoutID = int64(200)
)

type testEnv struct {
	svc          *LeaderboardService
	results      *FakeResultDB
	catalog      *FakeCatalogDB
	participants *FakeParticipantDB
	cache        *groupcache.Cache
}

func newTestEnv(tiePolicy scoring.TiePolicy) *testEnv {
	results := NewFakeResultDB()
	catalog := NewFakeCatalogDB()
	participants := NewFakeParticipantDB()
	cache := groupcache.New()

	svc := NewLeaderboardService(
		fakeTxRunner{},
		results,
		catalog,
		participants,
		cache,
		metrics.NewUnregistered(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		tiePolicy,
	)
	return &testEnv{
		svc:          svc,
		results:      results,
		catalog:      catalog,
		participants: participants,
		cache:        cache,
	}
}

// seedFixtures populates an individual category with three athletes and a
// team category with two teams, plus one workout of each result kind.
func (e *testEnv) seedFixtures() {
	e.catalog.SeedCategory(&leaderboarddb.Category{
		ID:                individualCategoryID,
		EventID:           testEventID,
		Name:              "RX Individual",
		ParticipationKind: leaderboardtypes.ParticipationIndividual,
	})
	e.catalog.SeedCategory(&leaderboarddb.Category{
		ID:                teamCategoryID,
		EventID:           testEventID,
		Name:              "RX Teams",
		ParticipationKind: leaderboardtypes.ParticipationTeam,
	})

	e.catalog.SeedWorkout(&leaderboarddb.Workout{
		ID:         repsWorkoutID,
		EventID:    testEventID,
		Name:       "AMRAP 12",
		ResultKind: leaderboardtypes.ResultKindReps,
	}, individualCategoryID)
	e.catalog.SeedWorkout(&leaderboarddb.Workout{
		ID:         timeWorkoutID,
		EventID:    testEventID,
		Name:       "Chipper",
		ResultKind: leaderboardtypes.ResultKindTime,
	}, individualCategoryID)
	e.catalog.SeedWorkout(&leaderboarddb.Workout{
		ID:         weightWorkoutID,
		EventID:    testEventID,
		Name:       "Max Clean",
		ResultKind: leaderboardtypes.ResultKindWeight,
	}, teamCategoryID)

	for _, id := range []int64{1, 2, 3} {
		e.participants.SeedAthlete(&leaderboarddb.Athlete{
			ID:         id,
			CategoryID: individualCategoryID,
			Name:       gofakeit.Name(),
		})
	}
	for _, id := range []int64{5, 6} {
		e.participants.SeedTeam(&leaderboarddb.Team{
			ID:         id,
			CategoryID: teamCategoryID,
			Name:       gofakeit.Company(),
			Active:     true,
		})
	}
}

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }
