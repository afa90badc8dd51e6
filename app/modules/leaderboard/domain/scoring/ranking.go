package scoring

import (
	"sort"

	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
)

// TiePolicy controls how equal sort keys are placed.
type TiePolicy int

const (
	// TiePolicyCompetition gives equal keys the same position and skips the
	// following positions ("1, 2, 2, 4"). This is the default, matching
	// standard competition leaderboards.
	TiePolicyCompetition TiePolicy = iota
	// TiePolicyOrdinal assigns strictly increasing positions, breaking ties
	// by ascending participant id.
	TiePolicyOrdinal
)

// Entry is one leaderboard result as seen by the ranking engine.
type Entry struct {
	ResultID    int64
	Participant leaderboardtypes.Participant
	// Value is nil when no result has been registered yet.
	Value     leaderboardtypes.ResultValue
	Finalized bool
}

// Eligible reports whether the entry competes for a position: it must have
// a registered value and be finalized.
func (e Entry) Eligible() bool {
	return e.Value != nil && e.Finalized
}

// Placement is the computed position for one result row. Position is nil
// for ineligible entries (pending or empty results).
type Placement struct {
	ResultID int64
	Position *int
}

// Rank computes 1-based positions for a full (category, workout) group.
// Every entry of the group must be passed in: the output contains one
// placement per input entry, with ineligible entries explicitly reset to a
// nil position so a prior position cannot survive a finalized flag being
// cleared. Rank is deterministic and idempotent.
func Rank(entries []Entry, policy TiePolicy) []Placement {
	eligible := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Eligible() {
			eligible = append(eligible, e)
		}
	}

	// Secondary key keeps equal-key ordering stable across recomputes.
	sort.Slice(eligible, func(i, j int) bool {
		ki, kj := SortKey(eligible[i].Value), SortKey(eligible[j].Value)
		if ki != kj {
			return ki < kj
		}
		return eligible[i].Participant.ID() < eligible[j].Participant.ID()
	})

	placements := make([]Placement, 0, len(entries))

	position := 0
	var prevKey int64
	for i, e := range eligible {
		switch policy {
		case TiePolicyOrdinal:
			position = i + 1
		default:
			key := SortKey(e.Value)
			if i == 0 || key != prevKey {
				position = i + 1
			}
			prevKey = key
		}
		p := position
		placements = append(placements, Placement{ResultID: e.ResultID, Position: &p})
	}

	for _, e := range entries {
		if !e.Eligible() {
			placements = append(placements, Placement{ResultID: e.ResultID})
		}
	}

	return placements
}
