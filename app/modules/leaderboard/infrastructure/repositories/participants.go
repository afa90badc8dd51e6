package leaderboarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// ParticipantDBImpl implements ParticipantDB on top of bun.
type ParticipantDBImpl struct{}

var _ ParticipantDB = (*ParticipantDBImpl)(nil)

func (ParticipantDBImpl) ListActiveTeams(ctx context.Context, idb bun.IDB, categoryID int64) ([]*Team, error) {
	var teams []*Team
	err := idb.NewSelect().
		Model(&teams).
		Where("t.category_id = ?", categoryID).
		Where("t.active = TRUE").
		Order("t.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active teams for category %d: %w", categoryID, err)
	}
	return teams, nil
}

func (ParticipantDBImpl) ListAthletes(ctx context.Context, idb bun.IDB, categoryID int64) ([]*Athlete, error) {
	var athletes []*Athlete
	err := idb.NewSelect().
		Model(&athletes).
		Where("a.category_id = ?", categoryID).
		Order("a.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list athletes for category %d: %w", categoryID, err)
	}
	return athletes, nil
}

func (ParticipantDBImpl) GetTeam(ctx context.Context, idb bun.IDB, id int64) (*Team, error) {
	team := new(Team)
	err := idb.NewSelect().Model(team).Where("t.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	return team, nil
}

func (ParticipantDBImpl) GetAthlete(ctx context.Context, idb bun.IDB, id int64) (*Athlete, error) {
	athlete := new(Athlete)
	err := idb.NewSelect().Model(athlete).Where("a.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get athlete %d: %w", id, err)
	}
	return athlete, nil
}

func (ParticipantDBImpl) UpdateTeamScore(ctx context.Context, idb bun.IDB, teamID int64, total int) error {
	res, err := idb.NewUpdate().
		Model((*Team)(nil)).
		Set("total_score = ?", total).
		Where("id = ?", teamID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update total score for team %d: %w", teamID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (ParticipantDBImpl) UpdateAthleteScore(ctx context.Context, idb bun.IDB, athleteID int64, total int) error {
	res, err := idb.NewUpdate().
		Model((*Athlete)(nil)).
		Set("total_score = ?", total).
		Where("id = ?", athleteID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update total score for athlete %d: %w", athleteID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
