package leaderboarddb

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoRowsAffected is returned when an update or delete matched nothing.
	ErrNoRowsAffected = errors.New("no rows affected")
)
