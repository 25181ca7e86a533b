package services

import (
	"testing"

	"github.com/wfunc/yamb/models"
)

// MockDatabase is a test double for the persistence.Database interface.
type MockDatabase struct {
	Stored  []models.ScoreEntry
	Matches []models.MatchRecord
}

func (m *MockDatabase) SaveScore(name string, score int) error {
	m.Stored = append(m.Stored, models.ScoreEntry{Name: name, Score: score})
	return nil
}

func (m *MockDatabase) TopScores(limit int) ([]models.ScoreEntry, error) {
	if len(m.Stored) > limit {
		return m.Stored[:limit], nil
	}
	return m.Stored, nil
}

func (m *MockDatabase) SaveMatchRecord(record models.MatchRecord) error {
	m.Matches = append(m.Matches, record)
	return nil
}

func (m *MockDatabase) Close() error { return nil }

func TestLeaderboard_SeededWhenEmpty(t *testing.T) {
	s, err := NewLeaderboardService(nil, 20)
	if err != nil {
		t.Fatalf("NewLeaderboardService failed: %v", err)
	}

	top := s.Top()
	if len(top) != 3 {
		t.Fatalf("Expected 3 seed entries, got %d", len(top))
	}
	if top[0].Name != "YambMaster" || top[0].Score != 1250 {
		t.Errorf("Unexpected leader: %+v", top[0])
	}
	for i := 1; i < len(top); i++ {
		if top[i].Score > top[i-1].Score {
			t.Fatalf("Board not sorted at %d: %v", i, top)
		}
	}
}

func TestLeaderboard_StoredScoresReplaceSeeds(t *testing.T) {
	db := &MockDatabase{Stored: []models.ScoreEntry{
		{Name: "Vesna", Score: 1400},
		{Name: "Luka", Score: 1100},
	}}

	s, err := NewLeaderboardService(db, 20)
	if err != nil {
		t.Fatalf("NewLeaderboardService failed: %v", err)
	}

	top := s.Top()
	if len(top) != 2 || top[0].Name != "Vesna" {
		t.Errorf("Stored scores should replace the seeds, got %v", top)
	}
}

func TestLeaderboard_SubmitEntersBoard(t *testing.T) {
	db := &MockDatabase{}
	s, err := NewLeaderboardService(db, 20)
	if err != nil {
		t.Fatalf("NewLeaderboardService failed: %v", err)
	}

	top, changed, err := s.Submit("Ana", 1100)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !changed {
		t.Fatal("A score above the cutoff should change the board")
	}

	if top[1].Name != "Ana" || top[1].Score != 1100 {
		t.Errorf("Expected Ana in second place, got %v", top)
	}

	// Write-through even when the board is not full.
	if len(db.Stored) != 1 || db.Stored[0].Name != "Ana" {
		t.Errorf("Score should be written through to storage, got %v", db.Stored)
	}
}

func TestLeaderboard_SubmitBelowCutoff(t *testing.T) {
	s, err := NewLeaderboardService(nil, 3)
	if err != nil {
		t.Fatalf("NewLeaderboardService failed: %v", err)
	}

	// The seeds already fill a 3-entry board; 100 is below all of them.
	top, changed, err := s.Submit("Ana", 100)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if changed {
		t.Error("A score below the cutoff must not change a full board")
	}
	if len(top) != 3 {
		t.Errorf("Board size should stay capped at 3, got %d", len(top))
	}
	for _, entry := range top {
		if entry.Name == "Ana" {
			t.Error("Ana should not appear on the board")
		}
	}
}

func TestLeaderboard_CapRespected(t *testing.T) {
	s, err := NewLeaderboardService(nil, 3)
	if err != nil {
		t.Fatalf("NewLeaderboardService failed: %v", err)
	}

	top, changed, _ := s.Submit("Ana", 2000)
	if !changed {
		t.Fatal("A new record should change the board")
	}
	if len(top) != 3 {
		t.Fatalf("Expected the board capped at 3, got %d", len(top))
	}
	if top[0].Name != "Ana" {
		t.Errorf("Expected Ana on top, got %+v", top[0])
	}
	// Srećko (950) falls off the board.
	for _, entry := range top {
		if entry.Name == "Srećko" {
			t.Error("The lowest seed should have been pushed off")
		}
	}
}

func TestLeaderboard_RecordMatch(t *testing.T) {
	db := &MockDatabase{}
	s, err := NewLeaderboardService(db, 20)
	if err != nil {
		t.Fatalf("NewLeaderboardService failed: %v", err)
	}

	record := models.MatchRecord{
		RoomID: "r1",
		Players: []models.MatchPlayer{
			{Name: "Ana", Score: 890, Outcome: "win"},
			{Name: "Marko", Score: 760, Outcome: "lose"},
		},
	}
	if err := s.RecordMatch(record); err != nil {
		t.Fatalf("RecordMatch failed: %v", err)
	}

	if len(db.Matches) != 1 || db.Matches[0].RoomID != "r1" {
		t.Errorf("Match record should reach storage, got %v", db.Matches)
	}
}
