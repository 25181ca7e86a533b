// Package persistence stores highscores and match records in PostgreSQL.
// Two implementations exist: GORM (default) and plain database/sql.
package persistence

import (
	"fmt"

	"github.com/wfunc/yamb/models"
)

// Database is the storage surface the relay needs. The server runs without
// one: scores then live only in memory.
type Database interface {
	SaveScore(name string, score int) error
	TopScores(limit int) ([]models.ScoreEntry, error)
	SaveMatchRecord(record models.MatchRecord) error
	Close() error
}

var ErrRecordNotFound = fmt.Errorf("record not found")
