package leaderboardservice

import (
	"fmt"

	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
)

// DuplicateResultError is returned when a participant already has a result
// row for the workout.
type DuplicateResultError struct {
	CategoryID  int64
	WorkoutID   int64
	Participant leaderboardtypes.Participant
}

func (e *DuplicateResultError) Error() string {
	return fmt.Sprintf("%s already has a result for workout %d in category %d",
		e.Participant, e.WorkoutID, e.CategoryID)
}

// ResultNotFoundError is returned when the referenced result row does not
// exist.
type ResultNotFoundError struct {
	ResultID int64
}

func (e *ResultNotFoundError) Error() string {
	return fmt.Sprintf("leaderboard result %d not found", e.ResultID)
}

// CategoryNotFoundError is returned when the referenced category does not
// exist.
type CategoryNotFoundError struct {
	CategoryID int64
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category %d not found", e.CategoryID)
}

// WorkoutNotFoundError is returned when the referenced workout does not
// exist or is not associated with the category.
type WorkoutNotFoundError struct {
	WorkoutID  int64
	CategoryID int64
}

func (e *WorkoutNotFoundError) Error() string {
	if e.CategoryID != 0 {
		return fmt.Sprintf("workout %d not found in category %d", e.WorkoutID, e.CategoryID)
	}
	return fmt.Sprintf("workout %d not found", e.WorkoutID)
}

// ParticipantCategoryMismatchError is returned when the participant's kind
// does not match the category's participation kind, or the participant is
// registered in a different category.
type ParticipantCategoryMismatchError struct {
	CategoryID  int64
	Participant leaderboardtypes.Participant
	Reason      string
}

func (e *ParticipantCategoryMismatchError) Error() string {
	return fmt.Sprintf("%s does not belong in category %d: %s",
		e.Participant, e.CategoryID, e.Reason)
}

// WorkoutKindConflictError is returned when a workout's result kind cannot
// change because results already reference it.
type WorkoutKindConflictError struct {
	WorkoutID int64
	Kind      leaderboardtypes.ResultKind
}

func (e *WorkoutKindConflictError) Error() string {
	return fmt.Sprintf("workout %d already has registered results; result kind is locked to %s",
		e.WorkoutID, e.Kind)
}

// BatchValidationError is returned when a batch registration fails
// validation. No rows are written when it is returned.
type BatchValidationError struct {
	Index int
	Err   error
}

func (e *BatchValidationError) Error() string {
	return fmt.Sprintf("batch item %d: %v", e.Index, e.Err)
}

func (e *BatchValidationError) Unwrap() error { return e.Err }
