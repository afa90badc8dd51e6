package bundb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	leaderboarddb "github.com/eventsports/minha-inscricao/app/modules/leaderboard/infrastructure/repositories"
	"github.com/eventsports/minha-inscricao/config"
)

// DBService owns the bun connection pool and the repository
// implementations bound to it.
type DBService struct {
	ResultDB      *leaderboarddb.ResultDBImpl
	CatalogDB     *leaderboarddb.CatalogDBImpl
	ParticipantDB *leaderboarddb.ParticipantDBImpl

	db *bun.DB
}

// GetDB returns the underlying database connection pool.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// RunInTx runs fn inside a transaction, committing on nil and rolling back
// on error.
func (s *DBService) RunInTx(ctx context.Context, fn func(ctx context.Context, idb bun.IDB) error) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// Close releases the connection pool.
func (s *DBService) Close() error {
	return s.db.Close()
}

// NewBunDBService initializes a DBService against the configured Postgres.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig) (*DBService, error) {
	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	db.RegisterModel((*leaderboarddb.WorkoutCategory)(nil))
	db.RegisterModel((*leaderboarddb.Event)(nil))
	db.RegisterModel((*leaderboarddb.Category)(nil))
	db.RegisterModel((*leaderboarddb.Workout)(nil))
	db.RegisterModel((*leaderboarddb.Team)(nil))
	db.RegisterModel((*leaderboarddb.Athlete)(nil))
	db.RegisterModel((*leaderboarddb.LeaderboardResult)(nil))

	return &DBService{
		ResultDB:      &leaderboarddb.ResultDBImpl{},
		CatalogDB:     &leaderboarddb.CatalogDBImpl{},
		ParticipantDB: &leaderboarddb.ParticipantDBImpl{},
		db:            db,
	}, nil
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
