package leaderboardservice

import (
	"github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/scoring"
	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
)

// RegisterResultInput carries one result registration. Exactly one of
// TeamID and AthleteID must be set.
type RegisterResultInput struct {
	EventID    int64             `json:"event_id"`
	CategoryID int64             `json:"category_id"`
	WorkoutID  int64             `json:"workout_id"`
	TeamID     *int64            `json:"team_id,omitempty"`
	AthleteID  *int64            `json:"athlete_id,omitempty"`
	Result     scoring.RawResult `json:"result"`
	Finalized  bool              `json:"finalized"`
	Notes      string            `json:"notes,omitempty"`
}

// UpdateResultInput carries a partial update of an existing result row.
// Nil fields keep their current value.
type UpdateResultInput struct {
	Result    *scoring.RawResult `json:"result,omitempty"`
	Finalized *bool              `json:"finalized,omitempty"`
	Notes     *string            `json:"notes,omitempty"`
}

// ParticipantView identifies a team or athlete in API responses.
type ParticipantView struct {
	Kind leaderboardtypes.ParticipationKind `json:"kind"`
	ID   int64                              `json:"id"`
	Name string                             `json:"name"`
}

// ResultView is one result row as exposed by the API. Value is the
// formatted raw value ("150 reps", "120.50 kg", "2:30"), empty when none
// has been registered.
type ResultView struct {
	ResultID    int64                       `json:"result_id"`
	CategoryID  int64                       `json:"category_id"`
	WorkoutID   int64                       `json:"workout_id"`
	Participant ParticipantView             `json:"participant"`
	Kind        leaderboardtypes.ResultKind `json:"kind"`
	Value       string                      `json:"value,omitempty"`
	Position    *int                        `json:"position,omitempty"`
	Finalized   bool                        `json:"finalized"`
	Notes       string                      `json:"notes,omitempty"`
}

// WorkoutLeaderboardView is the ranked listing of a single workout within a
// category. Ranked entries come first in position order; participants
// without a ranked result follow.
type WorkoutLeaderboardView struct {
	CategoryID  int64                       `json:"category_id"`
	WorkoutID   int64                       `json:"workout_id"`
	WorkoutName string                      `json:"workout_name"`
	Kind        leaderboardtypes.ResultKind `json:"kind"`
	Entries     []ResultView                `json:"entries"`
}

// RankingEntryView is one participant's standing in the category ranking.
// Medal is set for the top three positions. WorkoutsFinalized counts the
// participant's results that actually entered a workout ranking; a
// finalized row without a registered value never does. Workouts carries
// the participant's per-workout rows in workout order.
type RankingEntryView struct {
	Position          int             `json:"position"`
	Medal             string          `json:"medal,omitempty"`
	Participant       ParticipantView `json:"participant"`
	Total             int             `json:"total"`
	TotalWorkouts     int             `json:"total_workouts"`
	WorkoutsFinalized int             `json:"workouts_finalized"`
	FinishedAll       bool            `json:"finished_all"`
	HasScore          bool            `json:"has_score"`
	Workouts          []ResultView    `json:"workouts,omitempty"`
}

// CategoryRankingView is the overall ranking of a category, ordered by
// ascending total pontuacao.
type CategoryRankingView struct {
	CategoryID   int64              `json:"category_id"`
	CategoryName string             `json:"category_name"`
	Entries      []RankingEntryView `json:"entries"`
}

// WorkoutProgressView summarises how far result registration has advanced
// for one (category, workout) pair.
type WorkoutProgressView struct {
	CategoryID int64             `json:"category_id"`
	WorkoutID  int64             `json:"workout_id"`
	Total      int               `json:"total"`
	Finalized  int               `json:"finalized"`
	Pending    int               `json:"pending"`
	PendingFor []ParticipantView `json:"pending_for,omitempty"`
}

// CategoryStatsView aggregates registration progress across a category's
// workouts.
type CategoryStatsView struct {
	CategoryID   int64 `json:"category_id"`
	Workouts     int   `json:"workouts"`
	Participants int   `json:"participants"`
	Results      int   `json:"results"`
	Finalized    int   `json:"finalized"`
}

// SlotInitializationView reports how many placeholder rows a slot
// initialization created and how many already existed.
type SlotInitializationView struct {
	CategoryID int64 `json:"category_id"`
	WorkoutID  int64 `json:"workout_id"`
	Created    int   `json:"created"`
	Skipped    int   `json:"skipped"`
}

// BatchRegisterView reports the outcome of a batch registration.
type BatchRegisterView struct {
	Registered int          `json:"registered"`
	Results    []ResultView `json:"results"`
}

const (
	medalGold   = "\U0001F947"
	medalSilver = "\U0001F948"
	medalBronze = "\U0001F949"
)

func medalFor(position int) string {
	switch position {
	case 1:
		return medalGold
	case 2:
		return medalSilver
	case 3:
		return medalBronze
	}
	return ""
}
