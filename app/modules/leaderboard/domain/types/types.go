// Package leaderboardtypes holds the domain vocabulary shared by the
// leaderboard service, its repositories, and the scoring engine.
package leaderboardtypes

import (
	"fmt"
	"time"
)

// ResultKind determines how a workout's raw results are compared.
type ResultKind string

const (
	// ResultKindReps counts repetitions; higher is better.
	ResultKindReps ResultKind = "REPS"
	// ResultKindWeight is a lifted load in kilograms; higher is better.
	ResultKindWeight ResultKind = "WEIGHT"
	// ResultKindTime is a completion time; lower is better.
	ResultKindTime ResultKind = "TIME"
)

// Valid reports whether k is one of the known result kinds.
func (k ResultKind) Valid() bool {
	switch k {
	case ResultKindReps, ResultKindWeight, ResultKindTime:
		return true
	}
	return false
}

// ParticipationKind determines which participant type a category accepts.
// A category is configured for exactly one kind, never both.
type ParticipationKind string

const (
	ParticipationIndividual ParticipationKind = "INDIVIDUAL"
	ParticipationTeam       ParticipationKind = "TEAM"
)

// Participant identifies who owns a leaderboard result: a team or an
// athlete, never both. The two concrete types are TeamID and AthleteID;
// the sealed interface makes the XOR invariant a compile-time property.
type Participant interface {
	// ID is the team or athlete primary key.
	ID() int64
	// IsTeam reports whether the participant is a team.
	IsTeam() bool
	// Kind is the participation kind the participant satisfies.
	Kind() ParticipationKind

	sealedParticipant()
}

// TeamID is a team participant reference.
type TeamID int64

func (t TeamID) ID() int64 { return int64(t) }

func (TeamID) IsTeam() bool { return true }

func (TeamID) Kind() ParticipationKind { return ParticipationTeam }

func (TeamID) sealedParticipant() {}

func (t TeamID) String() string { return fmt.Sprintf("team:%d", int64(t)) }

// AthleteID is an individual participant reference.
type AthleteID int64

func (a AthleteID) ID() int64 { return int64(a) }

func (AthleteID) IsTeam() bool { return false }

func (AthleteID) Kind() ParticipationKind { return ParticipationIndividual }

func (AthleteID) sealedParticipant() {}

func (a AthleteID) String() string { return fmt.Sprintf("athlete:%d", int64(a)) }

// ResultValue is the raw outcome of a participant in a workout, tagged by
// the workout's result kind. Concrete types: Reps, Weight, Time.
type ResultValue interface {
	Kind() ResultKind

	sealedResultValue()
}

// Reps is a repetition count.
type Reps int

func (Reps) Kind() ResultKind { return ResultKindReps }

func (Reps) sealedResultValue() {}

// Weight is a load in kilograms with two-decimal precision.
type Weight float64

func (Weight) Kind() ResultKind { return ResultKindWeight }

func (Weight) sealedResultValue() {}

// Time is a completion time.
type Time time.Duration

func (Time) Kind() ResultKind { return ResultKindTime }

func (Time) sealedResultValue() {}

// Duration returns the value as a time.Duration.
func (t Time) Duration() time.Duration { return time.Duration(t) }
