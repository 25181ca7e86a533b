package game

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SnapshotVersion guards the save format. Loading a snapshot with a
// different version fails instead of guessing.
const SnapshotVersion = 1

var ErrCorruptSnapshot = errors.New("corrupt game snapshot")

// Snapshot is the canonical serializable game record. The same shape backs
// local resume, share-as-text and online rejoin resync, so the field set is
// a contract: players, sheets, current index, AI flag+difficulty, online
// flag, room id, seat, dice, held mask, roll count and announcement state.
type Snapshot struct {
	Version    int                          `json:"version"`
	Players    []string                     `json:"players"`
	AIMode     bool                         `json:"aiMode"`
	Difficulty string                       `json:"difficulty,omitempty"`
	Online     bool                         `json:"online"`
	RoomID     string                       `json:"roomId,omitempty"`
	Seat       int                          `json:"seat"`
	Current    int                          `json:"current"`
	Sheets     []map[string]map[string]*int `json:"sheets"`
	Dice       [6]int                       `json:"dice"`
	Held       [6]bool                      `json:"held"`
	Rolls      int                          `json:"rolls"`
	Announcing bool                         `json:"announcing"`
	Announced  *announcedCell               `json:"announced,omitempty"`
}

type announcedCell struct {
	Col string `json:"col"`
	Cat string `json:"cat"`
}

// Snapshot captures the full game state.
func (g *Game) Snapshot() *Snapshot {
	s := &Snapshot{
		Version: SnapshotVersion,
		Online:  g.Online,
		RoomID:  g.RoomID,
		Seat:    g.LocalSeat,
		Current: g.Current,
		Dice:    g.turn.Dice,
		Held:    g.turn.Held,
		Rolls:   g.turn.RollCount,
	}
	for _, p := range g.Players {
		s.Players = append(s.Players, p.Name)
		if p.Kind == AI {
			s.AIMode = true
			s.Difficulty = string(p.Difficulty)
		}
	}
	for _, sheet := range g.Sheets {
		cols := make(map[string]map[string]*int, NumColumns)
		for col := Column(0); col < NumColumns; col++ {
			rows := make(map[string]*int, NumCategories)
			for cat := Category(0); cat < NumCategories; cat++ {
				if v, ok := sheet.Value(col, cat); ok {
					pts := v
					rows[cat.String()] = &pts
				} else {
					rows[cat.String()] = nil
				}
			}
			cols[col.String()] = rows
		}
		s.Sheets = append(s.Sheets, cols)
	}
	s.Announcing = g.turn.AnnouncementActive
	if g.turn.AnnouncedCell != nil {
		s.Announced = &announcedCell{
			Col: g.turn.AnnouncedCell.Col.String(),
			Cat: g.turn.AnnouncedCell.Cat.String(),
		}
	}
	return s
}

// Restore rebuilds a game from a snapshot, validating every field. A failed
// restore returns ErrCorruptSnapshot (wrapped) and no game, so the caller's
// prior state stays intact.
func Restore(s *Snapshot) (*Game, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: empty", ErrCorruptSnapshot)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, s.Version)
	}
	if len(s.Players) < 1 || len(s.Players) > 2 || len(s.Sheets) != len(s.Players) {
		return nil, fmt.Errorf("%w: player/sheet mismatch", ErrCorruptSnapshot)
	}
	if s.Current < 0 || s.Current >= len(s.Players) {
		return nil, fmt.Errorf("%w: current index %d", ErrCorruptSnapshot, s.Current)
	}
	if s.Rolls < 0 || s.Rolls > 3 {
		return nil, fmt.Errorf("%w: roll count %d", ErrCorruptSnapshot, s.Rolls)
	}
	for _, d := range s.Dice {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: die value %d", ErrCorruptSnapshot, d)
		}
	}

	players := make([]Player, len(s.Players))
	for i, name := range s.Players {
		players[i] = Player{Name: name, Kind: Human}
	}
	if s.AIMode {
		diff := Difficulty(s.Difficulty)
		if !diff.Valid() {
			return nil, fmt.Errorf("%w: difficulty %q", ErrCorruptSnapshot, s.Difficulty)
		}
		if len(players) != 2 {
			return nil, fmt.Errorf("%w: AI mode needs two players", ErrCorruptSnapshot)
		}
		players[1].Kind = AI
		players[1].Difficulty = diff
	}

	g, err := NewGame(players, Options{Online: s.Online, LocalSeat: s.Seat, RoomID: s.RoomID})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	g.Current = s.Current

	for i, cols := range s.Sheets {
		for colName, rows := range cols {
			col, ok := ColumnFromString(colName)
			if !ok {
				return nil, fmt.Errorf("%w: unknown column %q", ErrCorruptSnapshot, colName)
			}
			for catName, v := range rows {
				cat, ok := CategoryFromString(catName)
				if !ok {
					return nil, fmt.Errorf("%w: unknown category %q", ErrCorruptSnapshot, catName)
				}
				if v != nil {
					g.Sheets[i].values[col][cat] = *v
					g.Sheets[i].filled[col][cat] = true
				}
			}
		}
	}

	g.turn.Dice = s.Dice
	g.turn.Held = s.Held
	g.turn.RollCount = s.Rolls
	g.turn.AnnouncementActive = s.Announcing
	if s.Announced != nil {
		col, okCol := ColumnFromString(s.Announced.Col)
		cat, okCat := CategoryFromString(s.Announced.Cat)
		if !okCol || !okCat || col != Announced {
			return nil, fmt.Errorf("%w: announced cell %v", ErrCorruptSnapshot, s.Announced)
		}
		g.turn.AnnouncedCell = &CellRef{Col: col, Cat: cat}
	}

	done := true
	for _, sheet := range g.Sheets {
		if !sheet.Complete() {
			done = false
		}
	}
	g.over = done
	return g, nil
}

// EncodeSnapshot renders the snapshot as the shareable JSON text.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// DecodeSnapshot parses shared snapshot text without restoring it.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return &s, nil
}
