package leaderboarddb

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/scoring"
	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
)

// Event is a competition hosting categories and workouts.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:ev"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Category is a competition bracket within an event, configured for either
// individual or team participation.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID                int64                              `bun:"id,pk,autoincrement"`
	EventID           int64                              `bun:"event_id,notnull"`
	Name              string                             `bun:"name,notnull"`
	ParticipationKind leaderboardtypes.ParticipationKind `bun:"participation_kind,notnull"`
	CreatedAt         time.Time                          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// IsTeam reports whether the category takes team participants.
func (c *Category) IsTeam() bool {
	return c.ParticipationKind == leaderboardtypes.ParticipationTeam
}

// Workout is a single test within an event, associated to categories via
// workout_categories. ResultKind governs how raw values compare and is
// immutable once any result row references the workout.
type Workout struct {
	bun.BaseModel `bun:"table:workouts,alias:w"`

	ID         int64                       `bun:"id,pk,autoincrement"`
	EventID    int64                       `bun:"event_id,notnull"`
	Name       string                      `bun:"name,notnull"`
	ResultKind leaderboardtypes.ResultKind `bun:"result_kind,notnull"`
	CreatedAt  time.Time                   `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// WorkoutCategory is the workout<->category association row.
type WorkoutCategory struct {
	bun.BaseModel `bun:"table:workout_categories,alias:wc"`

	WorkoutID  int64 `bun:"workout_id,pk"`
	CategoryID int64 `bun:"category_id,pk"`
}

// Team is a team participant registered in a category. TotalScore carries
// the aggregated pontuacao so ranking reads don't re-sum on every request.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID         int64  `bun:"id,pk,autoincrement"`
	CategoryID int64  `bun:"category_id,notnull"`
	Name       string `bun:"name,notnull"`
	Active     bool   `bun:"active,notnull,default:true"`
	TotalScore int    `bun:"total_score,notnull,default:0"`
}

// Athlete is an individual participant registered in a category.
type Athlete struct {
	bun.BaseModel `bun:"table:athletes,alias:a"`

	ID         int64  `bun:"id,pk,autoincrement"`
	CategoryID int64  `bun:"category_id,notnull"`
	Name       string `bun:"name,notnull"`
	TotalScore int    `bun:"total_score,notnull,default:0"`
}

// LeaderboardResult is one participant's outcome in one (category, workout)
// pair. TeamID and AthleteID are nullable at the storage layer; exactly one
// is set, and the Participant/SetParticipant accessors expose the pair as a
// tagged union so the XOR invariant can't leak past this package.
type LeaderboardResult struct {
	bun.BaseModel `bun:"table:leaderboard_results,alias:lr"`

	ID         int64  `bun:"id,pk,autoincrement"`
	EventID    int64  `bun:"event_id,notnull"`
	CategoryID int64  `bun:"category_id,notnull"`
	WorkoutID  int64  `bun:"workout_id,notnull"`
	TeamID     *int64 `bun:"team_id"`
	AthleteID  *int64 `bun:"athlete_id"`

	ResultReps        *int     `bun:"result_reps"`
	ResultWeightKg    *float64 `bun:"result_weight_kg"`
	ResultTimeSeconds *int     `bun:"result_time_seconds"`

	WorkoutPosition *int   `bun:"workout_position"`
	Finalized       bool   `bun:"finalized,notnull,default:false"`
	Notes           string `bun:"notes"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeAppendModelHook = (*LeaderboardResult)(nil)

// BeforeAppendModel maintains the created/updated timestamps.
func (r *LeaderboardResult) BeforeAppendModel(_ context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		r.CreatedAt = now
		r.UpdatedAt = now
	case *bun.UpdateQuery:
		r.UpdatedAt = now
	}
	return nil
}

// Participant returns the row's participant as a tagged union. It errors if
// the stored pair violates the XOR invariant, which indicates data written
// outside this service.
func (r *LeaderboardResult) Participant() (leaderboardtypes.Participant, error) {
	switch {
	case r.TeamID != nil && r.AthleteID == nil:
		return leaderboardtypes.TeamID(*r.TeamID), nil
	case r.AthleteID != nil && r.TeamID == nil:
		return leaderboardtypes.AthleteID(*r.AthleteID), nil
	default:
		return nil, fmt.Errorf("leaderboard result %d: team/athlete XOR violated (team=%v athlete=%v)",
			r.ID, r.TeamID, r.AthleteID)
	}
}

// SetParticipant stores the participant reference into the nullable pair.
func (r *LeaderboardResult) SetParticipant(p leaderboardtypes.Participant) {
	id := p.ID()
	if p.IsTeam() {
		r.TeamID = &id
		r.AthleteID = nil
		return
	}
	r.AthleteID = &id
	r.TeamID = nil
}

// Value returns the typed result value for the given workout kind, or nil
// when no value has been registered yet.
func (r *LeaderboardResult) Value(kind leaderboardtypes.ResultKind) leaderboardtypes.ResultValue {
	switch kind {
	case leaderboardtypes.ResultKindReps:
		if r.ResultReps != nil {
			return leaderboardtypes.Reps(*r.ResultReps)
		}
	case leaderboardtypes.ResultKindWeight:
		if r.ResultWeightKg != nil {
			return leaderboardtypes.Weight(*r.ResultWeightKg)
		}
	case leaderboardtypes.ResultKindTime:
		if r.ResultTimeSeconds != nil {
			return leaderboardtypes.Time(time.Duration(*r.ResultTimeSeconds) * time.Second)
		}
	}
	return nil
}

// SetValue stores a typed value into the column matching its kind, clearing
// the other value columns.
func (r *LeaderboardResult) SetValue(v leaderboardtypes.ResultValue) {
	r.ResultReps = nil
	r.ResultWeightKg = nil
	r.ResultTimeSeconds = nil

	switch val := v.(type) {
	case leaderboardtypes.Reps:
		n := int(val)
		r.ResultReps = &n
	case leaderboardtypes.Weight:
		w := float64(val)
		r.ResultWeightKg = &w
	case leaderboardtypes.Time:
		s := int(val.Duration() / time.Second)
		r.ResultTimeSeconds = &s
	}
}

// HasValue reports whether any raw value is registered.
func (r *LeaderboardResult) HasValue() bool {
	return r.ResultReps != nil || r.ResultWeightKg != nil || r.ResultTimeSeconds != nil
}

// FormattedValue renders the stored value for display, or "" when empty.
func (r *LeaderboardResult) FormattedValue(kind leaderboardtypes.ResultKind) string {
	v := r.Value(kind)
	if v == nil {
		return ""
	}
	return scoring.Format(v)
}
