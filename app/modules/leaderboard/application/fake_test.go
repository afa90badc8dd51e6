package leaderboardservice

import (
	"context"
	"sort"

	"github.com/uptrace/bun"

	leaderboardtypes "github.com/eventsports/minha-inscricao/app/modules/leaderboard/domain/types"
	leaderboarddb "github.com/eventsports/minha-inscricao/app/modules/leaderboard/infrastructure/repositories"
)

// ------------------------
// Fake transaction runner
// ------------------------

// fakeTxRunner invokes fn directly. The fakes below ignore the bun.IDB
// argument, so nil is fine.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, idb bun.IDB) error) error {
	return fn(ctx, nil)
}

// ------------------------
// Fake Result Repo
// ------------------------

type FakeResultDB struct {
	trace  []string
	rows   map[int64]*leaderboarddb.LeaderboardResult
	nextID int64

	InsertFunc          func(ctx context.Context, idb bun.IDB, result *leaderboarddb.LeaderboardResult) error
	UpdatePositionsFunc func(ctx context.Context, idb bun.IDB, positions map[int64]*int) error
	SumPositionsFunc    func(ctx context.Context, idb bun.IDB, categoryID int64, p leaderboardtypes.Participant) (int, error)
	ListByGroupFunc     func(ctx context.Context, idb bun.IDB, categoryID, workoutID int64) ([]*leaderboarddb.LeaderboardResult, error)
}

func NewFakeResultDB() *FakeResultDB {
	return &FakeResultDB{
		rows:   map[int64]*leaderboarddb.LeaderboardResult{},
		nextID: 1,
	}
}

func (f *FakeResultDB) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeResultDB) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Seed inserts a row directly, bypassing the trace.
func (f *FakeResultDB) Seed(row *leaderboarddb.LeaderboardResult) *leaderboarddb.LeaderboardResult {
	if row.ID == 0 {
		row.ID = f.nextID
		f.nextID++
	} else if row.ID >= f.nextID {
		f.nextID = row.ID + 1
	}
	f.rows[row.ID] = row
	return row
}

func (f *FakeResultDB) sorted(match func(*leaderboarddb.LeaderboardResult) bool) []*leaderboarddb.LeaderboardResult {
	var out []*leaderboarddb.LeaderboardResult
	for _, row := range f.rows {
		if match(row) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sameParticipant(row *leaderboarddb.LeaderboardResult, p leaderboardtypes.Participant) bool {
	if p.IsTeam() {
		return row.TeamID != nil && *row.TeamID == p.ID()
	}
	return row.AthleteID != nil && *row.AthleteID == p.ID()
}

func (f *FakeResultDB) GetByID(ctx context.Context, idb bun.IDB, id int64) (*leaderboarddb.LeaderboardResult, error) {
	f.record("GetByID")
	row, ok := f.rows[id]
	if !ok {
		return nil, leaderboarddb.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (f *FakeResultDB) ListByCategory(ctx context.Context, idb bun.IDB, categoryID int64) ([]*leaderboarddb.LeaderboardResult, error) {
	f.record("ListByCategory")
	return f.sorted(func(r *leaderboarddb.LeaderboardResult) bool {
		return r.CategoryID == categoryID
	}), nil
}

func (f *FakeResultDB) ListByGroup(ctx context.Context, idb bun.IDB, categoryID, workoutID int64) ([]*leaderboarddb.LeaderboardResult, error) {
	f.record("ListByGroup")
	if f.ListByGroupFunc != nil {
		return f.ListByGroupFunc(ctx, idb, categoryID, workoutID)
	}
	return f.groupRows(categoryID, workoutID), nil
}

// groupRows is the default ListByGroup behaviour, kept callable so tests
// overriding ListByGroupFunc can still delegate to it.
func (f *FakeResultDB) groupRows(categoryID, workoutID int64) []*leaderboarddb.LeaderboardResult {
	return f.sorted(func(r *leaderboarddb.LeaderboardResult) bool {
		return r.CategoryID == categoryID && r.WorkoutID == workoutID
	})
}

func (f *FakeResultDB) ListByParticipant(ctx context.Context, idb bun.IDB, categoryID int64, p leaderboardtypes.Participant) ([]*leaderboarddb.LeaderboardResult, error) {
	f.record("ListByParticipant")
	return f.sorted(func(r *leaderboarddb.LeaderboardResult) bool {
		return r.CategoryID == categoryID && sameParticipant(r, p)
	}), nil
}

func (f *FakeResultDB) ExistsForParticipant(ctx context.Context, idb bun.IDB, categoryID, workoutID int64, p leaderboardtypes.Participant) (bool, error) {
	f.record("ExistsForParticipant")
	for _, row := range f.rows {
		if row.CategoryID == categoryID && row.WorkoutID == workoutID && sameParticipant(row, p) {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeResultDB) ExistsForWorkout(ctx context.Context, idb bun.IDB, workoutID int64) (bool, error) {
	f.record("ExistsForWorkout")
	for _, row := range f.rows {
		if row.WorkoutID == workoutID {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeResultDB) Insert(ctx context.Context, idb bun.IDB, result *leaderboarddb.LeaderboardResult) error {
	f.record("Insert")
	if f.InsertFunc != nil {
		return f.InsertFunc(ctx, idb, result)
	}
	result.ID = f.nextID
	f.nextID++
	clone := *result
	f.rows[result.ID] = &clone
	return nil
}

func (f *FakeResultDB) Update(ctx context.Context, idb bun.IDB, result *leaderboarddb.LeaderboardResult) error {
	f.record("Update")
	if _, ok := f.rows[result.ID]; !ok {
		return leaderboarddb.ErrNoRowsAffected
	}
	clone := *result
	f.rows[result.ID] = &clone
	return nil
}

func (f *FakeResultDB) Delete(ctx context.Context, idb bun.IDB, id int64) error {
	f.record("Delete")
	if _, ok := f.rows[id]; !ok {
		return leaderboarddb.ErrNoRowsAffected
	}
	delete(f.rows, id)
	return nil
}

func (f *FakeResultDB) UpdatePositions(ctx context.Context, idb bun.IDB, positions map[int64]*int) error {
	f.record("UpdatePositions")
	if f.UpdatePositionsFunc != nil {
		return f.UpdatePositionsFunc(ctx, idb, positions)
	}
	for id, pos := range positions {
		if row, ok := f.rows[id]; ok {
			row.WorkoutPosition = pos
		}
	}
	return nil
}

func (f *FakeResultDB) SumPositions(ctx context.Context, idb bun.IDB, categoryID int64, p leaderboardtypes.Participant) (int, error) {
	f.record("SumPositions")
	if f.SumPositionsFunc != nil {
		return f.SumPositionsFunc(ctx, idb, categoryID, p)
	}
	total := 0
	for _, row := range f.rows {
		if row.CategoryID == categoryID && sameParticipant(row, p) && row.WorkoutPosition != nil {
			total += *row.WorkoutPosition
		}
	}
	return total, nil
}

func (f *FakeResultDB) CountTotal(ctx context.Context, idb bun.IDB, categoryID, workoutID int64) (int, error) {
	f.record("CountTotal")
	count := 0
	for _, row := range f.rows {
		if row.CategoryID == categoryID && row.WorkoutID == workoutID {
			count++
		}
	}
	return count, nil
}

func (f *FakeResultDB) ListPending(ctx context.Context, idb bun.IDB, categoryID, workoutID int64) ([]*leaderboarddb.LeaderboardResult, error) {
	f.record("ListPending")
	return f.sorted(func(r *leaderboarddb.LeaderboardResult) bool {
		return r.CategoryID == categoryID && r.WorkoutID == workoutID &&
			(!r.Finalized || !r.HasValue())
	}), nil
}

// ------------------------
// Fake Catalog Repo
// ------------------------

type FakeCatalogDB struct {
	trace        []string
	categories   map[int64]*leaderboarddb.Category
	workouts     map[int64]*leaderboarddb.Workout
	associations map[[2]int64]bool
}

func NewFakeCatalogDB() *FakeCatalogDB {
	return &FakeCatalogDB{
		categories:   map[int64]*leaderboarddb.Category{},
		workouts:     map[int64]*leaderboarddb.Workout{},
		associations: map[[2]int64]bool{},
	}
}

func (f *FakeCatalogDB) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeCatalogDB) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeCatalogDB) SeedCategory(c *leaderboarddb.Category) *leaderboarddb.Category {
	f.categories[c.ID] = c
	return c
}

func (f *FakeCatalogDB) SeedWorkout(w *leaderboarddb.Workout, categoryIDs ...int64) *leaderboarddb.Workout {
	f.workouts[w.ID] = w
	for _, cid := range categoryIDs {
		f.associations[[2]int64{w.ID, cid}] = true
	}
	return w
}

func (f *FakeCatalogDB) GetCategory(ctx context.Context, idb bun.IDB, id int64) (*leaderboarddb.Category, error) {
	f.record("GetCategory")
	c, ok := f.categories[id]
	if !ok {
		return nil, leaderboarddb.ErrNotFound
	}
	return c, nil
}

func (f *FakeCatalogDB) GetWorkout(ctx context.Context, idb bun.IDB, id int64) (*leaderboarddb.Workout, error) {
	f.record("GetWorkout")
	w, ok := f.workouts[id]
	if !ok {
		return nil, leaderboarddb.ErrNotFound
	}
	return w, nil
}

func (f *FakeCatalogDB) WorkoutBelongsToCategory(ctx context.Context, idb bun.IDB, workoutID, categoryID int64) (bool, error) {
	f.record("WorkoutBelongsToCategory")
	return f.associations[[2]int64{workoutID, categoryID}], nil
}

func (f *FakeCatalogDB) ListWorkoutsByCategory(ctx context.Context, idb bun.IDB, categoryID int64) ([]*leaderboarddb.Workout, error) {
	f.record("ListWorkoutsByCategory")
	var out []*leaderboarddb.Workout
	for key, ok := range f.associations {
		if ok && key[1] == categoryID {
			if w, found := f.workouts[key[0]]; found {
				out = append(out, w)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeCatalogDB) UpdateWorkoutResultKind(ctx context.Context, idb bun.IDB, workoutID int64, kind leaderboardtypes.ResultKind) error {
	f.record("UpdateWorkoutResultKind")
	w, ok := f.workouts[workoutID]
	if !ok {
		return leaderboarddb.ErrNoRowsAffected
	}
	w.ResultKind = kind
	return nil
}

// ------------------------
// Fake Participant Repo
// ------------------------

type FakeParticipantDB struct {
	trace    []string
	teams    map[int64]*leaderboarddb.Team
	athletes map[int64]*leaderboarddb.Athlete
}

func NewFakeParticipantDB() *FakeParticipantDB {
	return &FakeParticipantDB{
		teams:    map[int64]*leaderboarddb.Team{},
		athletes: map[int64]*leaderboarddb.Athlete{},
	}
}

func (f *FakeParticipantDB) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeParticipantDB) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeParticipantDB) SeedTeam(t *leaderboarddb.Team) *leaderboarddb.Team {
	f.teams[t.ID] = t
	return t
}

func (f *FakeParticipantDB) SeedAthlete(a *leaderboarddb.Athlete) *leaderboarddb.Athlete {
	f.athletes[a.ID] = a
	return a
}

func (f *FakeParticipantDB) ListActiveTeams(ctx context.Context, idb bun.IDB, categoryID int64) ([]*leaderboarddb.Team, error) {
	f.record("ListActiveTeams")
	var out []*leaderboarddb.Team
	for _, t := range f.teams {
		if t.CategoryID == categoryID && t.Active {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeParticipantDB) ListAthletes(ctx context.Context, idb bun.IDB, categoryID int64) ([]*leaderboarddb.Athlete, error) {
	f.record("ListAthletes")
	var out []*leaderboarddb.Athlete
	for _, a := range f.athletes {
		if a.CategoryID == categoryID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeParticipantDB) GetTeam(ctx context.Context, idb bun.IDB, id int64) (*leaderboarddb.Team, error) {
	f.record("GetTeam")
	t, ok := f.teams[id]
	if !ok {
		return nil, leaderboarddb.ErrNotFound
	}
	return t, nil
}

func (f *FakeParticipantDB) GetAthlete(ctx context.Context, idb bun.IDB, id int64) (*leaderboarddb.Athlete, error) {
	f.record("GetAthlete")
	a, ok := f.athletes[id]
	if !ok {
		return nil, leaderboarddb.ErrNotFound
	}
	return a, nil
}

func (f *FakeParticipantDB) UpdateTeamScore(ctx context.Context, idb bun.IDB, teamID int64, total int) error {
	f.record("UpdateTeamScore")
	t, ok := f.teams[teamID]
	if !ok {
		return leaderboarddb.ErrNoRowsAffected
	}
	t.TotalScore = total
	return nil
}

func (f *FakeParticipantDB) UpdateAthleteScore(ctx context.Context, idb bun.IDB, athleteID int64, total int) error {
	f.record("UpdateAthleteScore")
	a, ok := f.athletes[athleteID]
	if !ok {
		return leaderboarddb.ErrNoRowsAffected
	}
	a.TotalScore = total
	return nil
}
