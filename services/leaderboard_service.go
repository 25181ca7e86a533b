// Package services holds the business logic above persistence.
package services

import (
	"sort"
	"sync"

	"github.com/wfunc/yamb/models"
	"github.com/wfunc/yamb/persistence"
)

// Seed entries keep a fresh install's board from looking empty.
var seedScores = []models.ScoreEntry{
	{Name: "YambMaster", Score: 1250},
	{Name: "Bot_Hard", Score: 1000},
	{Name: "Srećko", Score: 950},
}

// LeaderboardService keeps the top scores in memory and writes through to
// the database when one is configured. The in-memory board answers every
// read, so a database outage never blocks play.
type LeaderboardService struct {
	db      persistence.Database // nil when running without storage
	size    int
	entries []models.ScoreEntry // sorted by score, descending
	mutex   sync.RWMutex
}

// NewLeaderboardService builds a board capped at size entries. Persisted
// scores replace the seeds when the database has any.
func NewLeaderboardService(db persistence.Database, size int) (*LeaderboardService, error) {
	s := &LeaderboardService{
		db:   db,
		size: size,
	}

	s.entries = append(s.entries, seedScores...)
	if db != nil {
		stored, err := db.TopScores(size)
		if err != nil {
			return nil, err
		}
		if len(stored) > 0 {
			s.entries = stored
		}
	}

	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Score > s.entries[j].Score
	})
	s.trim()

	return s, nil
}

// Top returns a copy of the current board.
func (s *LeaderboardService) Top() []models.ScoreEntry {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	top := make([]models.ScoreEntry, len(s.entries))
	copy(top, s.entries)
	return top
}

// Submit records a finished game's total. It returns the refreshed board and
// whether the score actually entered it; clients only need a push when it
// did. The database write error is reported but the in-memory board is
// updated regardless.
func (s *LeaderboardService) Submit(name string, score int) ([]models.ScoreEntry, bool, error) {
	var dbErr error
	if s.db != nil {
		dbErr = s.db.SaveScore(name, score)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.entries) >= s.size && score <= s.entries[len(s.entries)-1].Score {
		top := make([]models.ScoreEntry, len(s.entries))
		copy(top, s.entries)
		return top, false, dbErr
	}

	s.entries = append(s.entries, models.ScoreEntry{Name: name, Score: score})
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Score > s.entries[j].Score
	})
	s.trim()

	top := make([]models.ScoreEntry, len(s.entries))
	copy(top, s.entries)
	return top, true, dbErr
}

// RecordMatch archives a finished head-to-head game.
func (s *LeaderboardService) RecordMatch(record models.MatchRecord) error {
	if s.db == nil {
		return nil
	}
	return s.db.SaveMatchRecord(record)
}

func (s *LeaderboardService) trim() {
	if len(s.entries) > s.size {
		s.entries = s.entries[:s.size]
	}
}
