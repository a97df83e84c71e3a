// Package store persists Taskboard state in SQLite. Projects are stored as
// whole aggregate documents (one JSON column per row) so every save is a
// single-statement replace; users live in a normalized table.
package store

import (
	"database/sql"
	"errors"
)

type Store struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")
