// Package scoring converts raw workout results into sortable keys and
// display strings, and computes workout rankings.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
)

// ErrInvalidResultFormat is wrapped by every parse failure so callers can
// match the whole class with errors.Is.
var ErrInvalidResultFormat = errors.New("invalid result format")

// RawResult is the untyped wire shape of a result value. Exactly one field
// matching the workout's result kind must be set.
type RawResult struct {
	Reps     *int     `json:"reps,omitempty"`
	WeightKg *float64 `json:"weightKg,omitempty"`
	Time     *string  `json:"time,omitempty"`
}

// Empty reports whether no value is present at all.
func (r RawResult) Empty() bool {
	return r.Reps == nil && r.WeightKg == nil && r.Time == nil
}

// Parse converts a raw result into the typed value for the workout's kind.
// The field matching kind must be set and well formed; fields for other
// kinds must be absent.
func Parse(kind leaderboardtypes.ResultKind, raw RawResult) (leaderboardtypes.ResultValue, error) {
	switch kind {
	case leaderboardtypes.ResultKindReps:
		if raw.Reps == nil {
			return nil, fmt.Errorf("%w: reps value required for REPS workout", ErrInvalidResultFormat)
		}
		if raw.WeightKg != nil || raw.Time != nil {
			return nil, fmt.Errorf("%w: only reps may be set for REPS workout", ErrInvalidResultFormat)
		}
		if *raw.Reps < 0 {
			return nil, fmt.Errorf("%w: reps must be >= 0, got %d", ErrInvalidResultFormat, *raw.Reps)
		}
		return leaderboardtypes.Reps(*raw.Reps), nil

	case leaderboardtypes.ResultKindWeight:
		if raw.WeightKg == nil {
			return nil, fmt.Errorf("%w: weight value required for WEIGHT workout", ErrInvalidResultFormat)
		}
		if raw.Reps != nil || raw.Time != nil {
			return nil, fmt.Errorf("%w: only weight may be set for WEIGHT workout", ErrInvalidResultFormat)
		}
		w := *raw.WeightKg
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight must be a finite value >= 0", ErrInvalidResultFormat)
		}
		// Two-decimal precision is the storage contract.
		return leaderboardtypes.Weight(math.Round(w*100) / 100), nil

	case leaderboardtypes.ResultKindTime:
		if raw.Time == nil {
			return nil, fmt.Errorf("%w: time value required for TIME workout", ErrInvalidResultFormat)
		}
		if raw.Reps != nil || raw.WeightKg != nil {
			return nil, fmt.Errorf("%w: only time may be set for TIME workout", ErrInvalidResultFormat)
		}
		d, err := ParseTime(*raw.Time)
		if err != nil {
			return nil, err
		}
		return leaderboardtypes.Time(d), nil

	default:
		return nil, fmt.Errorf("%w: unknown result kind %q", ErrInvalidResultFormat, kind)
	}
}

// ParseTime parses "mm:ss" or "hh:mm:ss" into a duration. Seconds must be
// below 60; in the three-part form minutes must be below 60 as well.
func ParseTime(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")

	switch len(parts) {
	case 2:
		minutes, err1 := parseTimePart(parts[0])
		seconds, err2 := parseTimePart(parts[1])
		if err1 != nil || err2 != nil || seconds > 59 {
			return 0, fmt.Errorf("%w: time must be mm:ss or hh:mm:ss, got %q", ErrInvalidResultFormat, s)
		}
		return time.Duration(minutes*60+seconds) * time.Second, nil
	case 3:
		hours, err1 := parseTimePart(parts[0])
		minutes, err2 := parseTimePart(parts[1])
		seconds, err3 := parseTimePart(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || minutes > 59 || seconds > 59 {
			return 0, fmt.Errorf("%w: time must be mm:ss or hh:mm:ss, got %q", ErrInvalidResultFormat, s)
		}
		return time.Duration(hours*3600+minutes*60+seconds) * time.Second, nil
	default:
		return 0, fmt.Errorf("%w: time must be mm:ss or hh:mm:ss, got %q", ErrInvalidResultFormat, s)
	}
}

func parseTimePart(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: bad time component %q", ErrInvalidResultFormat, s)
	}
	return n, nil
}

// SortKey maps a value to an integer key where LOWER IS ALWAYS BETTER,
// regardless of kind. REPS and WEIGHT are negated so that bigger results
// produce smaller keys; TIME is its duration in seconds. Centralizing the
// direction here keeps the ranking engine kind-agnostic.
func SortKey(v leaderboardtypes.ResultValue) int64 {
	switch val := v.(type) {
	case leaderboardtypes.Reps:
		return -int64(val)
	case leaderboardtypes.Weight:
		// Centigrams preserve the two-decimal precision in integer space.
		return -int64(math.Round(float64(val) * 100))
	case leaderboardtypes.Time:
		return int64(val.Duration() / time.Second)
	default:
		return math.MaxInt64
	}
}

// Format renders a value for display: "150 reps", "120.50 kg", "2:30".
func Format(v leaderboardtypes.ResultValue) string {
	switch val := v.(type) {
	case leaderboardtypes.Reps:
		return fmt.Sprintf("%d reps", int(val))
	case leaderboardtypes.Weight:
		return fmt.Sprintf("%.2f kg", float64(val))
	case leaderboardtypes.Time:
		return FormatDuration(val.Duration())
	default:
		return ""
	}
}

// FormatDuration renders a duration as "m:ss", or "h:mm:ss" from one hour up.
func FormatDuration(d time.Duration) string {
	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
