package game

import (
	"errors"
	"math/rand"
	"time"
)

var (
	ErrGameOver            = errors.New("game is over")
	ErrNotYourTurn         = errors.New("not the acting player's turn")
	ErrNoRollsLeft         = errors.New("no rolls left this turn")
	ErrNotRolled           = errors.New("dice have not been rolled yet")
	ErrAnnouncementPending = errors.New("announcement pending, pick the announced cell first")
	ErrAnnounceUnavailable = errors.New("announcing is only possible right after the first roll")
	ErrAnnouncedOnly       = errors.New("only the announced cell may be written this turn")
	ErrAnnounceTarget      = errors.New("a pending announcement must target the Announced column")
	ErrManualNeedsConfirm  = errors.New("writing Manual after the first roll scores zero and needs confirmation")
	ErrNothingToUndo       = errors.New("nothing to undo")
	ErrUndoUnavailable     = errors.New("undo is not available in online games")
	ErrInvalidDie          = errors.New("die index out of range")
	ErrPlayerCount         = errors.New("a game takes one or two players")
)

// PlayerKind tags a player as human or AI. Turn control branches on this tag,
// never on the display name.
type PlayerKind int

const (
	Human PlayerKind = iota
	AI
)

func (k PlayerKind) String() string {
	if k == AI {
		return "ai"
	}
	return "human"
}

// Difficulty selects the AI flavor.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
	Insane Difficulty = "insane"
)

func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard, Insane:
		return true
	}
	return false
}

type Player struct {
	Name       string
	Kind       PlayerKind
	Difficulty Difficulty
}

// TurnState is the live state of the current player's turn: dice, held mask,
// roll count and the announcement bookkeeping. One exists at a time and it is
// discarded when a write commits.
type TurnState struct {
	Dice               [6]int
	Held               [6]bool
	RollCount          int
	AnnouncementActive bool
	AnnouncedCell      *CellRef
}

// undoRecord is the single-slot compensating buffer: the cell that was
// written plus the full pre-write turn state.
type undoRecord struct {
	player int
	cell   CellRef
	turn   TurnState
}

// WriteResult tells the caller what a successful Write did.
type WriteResult struct {
	Points    int
	Bound     bool // the write bound a pending announcement instead of scoring
	TurnEnded bool
	GameOver  bool
}

// Game owns the players, their sheets and the one active turn.
type Game struct {
	Players   []Player
	Sheets    []*Sheet
	Current   int
	Online    bool
	LocalSeat int
	RoomID    string

	turn TurnState
	undo *undoRecord
	over bool
	rng  *rand.Rand
}

// Options tweak game construction. Rand defaults to a time-seeded source.
type Options struct {
	Online    bool
	LocalSeat int
	RoomID    string
	Rand      *rand.Rand
}

func NewGame(players []Player, opts Options) (*Game, error) {
	if len(players) < 1 || len(players) > 2 {
		return nil, ErrPlayerCount
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g := &Game{
		Players:   append([]Player(nil), players...),
		Online:    opts.Online,
		LocalSeat: opts.LocalSeat,
		RoomID:    opts.RoomID,
		rng:       rng,
	}
	for range players {
		g.Sheets = append(g.Sheets, NewSheet())
	}
	return g, nil
}

// Turn returns a copy of the live turn state.
func (g *Game) Turn() TurnState {
	t := g.turn
	if g.turn.AnnouncedCell != nil {
		cell := *g.turn.AnnouncedCell
		t.AnnouncedCell = &cell
	}
	return t
}

func (g *Game) CurrentPlayer() Player { return g.Players[g.Current] }

func (g *Game) Sheet(player int) *Sheet { return g.Sheets[player] }

func (g *Game) Over() bool { return g.over }

// LocalActing reports whether the seat driving this process may act now.
// Offline every seat is local.
func (g *Game) LocalActing() bool {
	if g.over {
		return false
	}
	if g.Online {
		return g.Current == g.LocalSeat
	}
	return true
}

// Roll rerolls every non-held die. Blocked after the third roll and while an
// announcement is pending but unbound.
func (g *Game) Roll() ([6]int, error) {
	if g.over {
		return g.turn.Dice, ErrGameOver
	}
	if g.turn.RollCount >= 3 {
		return g.turn.Dice, ErrNoRollsLeft
	}
	if g.turn.AnnouncementActive {
		return g.turn.Dice, ErrAnnouncementPending
	}
	// A new roll starts the next action; the last write can no longer be
	// taken back.
	g.undo = nil
	for i := range g.turn.Dice {
		if !g.turn.Held[i] {
			g.turn.Dice[i] = g.rng.Intn(6) + 1
		}
	}
	g.turn.RollCount++
	return g.turn.Dice, nil
}

// ToggleHold flips one die's held flag. Dice values are untouched.
func (g *Game) ToggleHold(die int) error {
	if g.over {
		return ErrGameOver
	}
	if die < 0 || die >= len(g.turn.Dice) {
		return ErrInvalidDie
	}
	if g.turn.RollCount == 0 {
		return ErrNotRolled
	}
	g.turn.Held[die] = !g.turn.Held[die]
	return nil
}

// SetHeld replaces the whole held mask. Used by AI turns and remote hints.
func (g *Game) SetHeld(mask [6]bool) error {
	if g.turn.RollCount == 0 {
		return ErrNotRolled
	}
	g.turn.Held = mask
	return nil
}

// ToggleAnnounce switches the announcement-pending mode on or off. Only
// possible right after the first roll and before a cell is bound.
func (g *Game) ToggleAnnounce() error {
	if g.over {
		return ErrGameOver
	}
	if g.turn.RollCount != 1 || g.turn.AnnouncedCell != nil {
		return ErrAnnounceUnavailable
	}
	g.turn.AnnouncementActive = !g.turn.AnnouncementActive
	return nil
}

// Write commits the current dice into a cell, or binds a pending
// announcement when one is active. confirmZero acknowledges the forced zero
// of a late Manual write; human callers should prompt before passing true.
func (g *Game) Write(col Column, cat Category, confirmZero bool) (WriteResult, error) {
	var res WriteResult
	if g.over {
		return res, ErrGameOver
	}
	if g.turn.RollCount == 0 {
		return res, ErrNotRolled
	}
	sheet := g.Sheets[g.Current]

	if g.turn.AnnouncementActive {
		if col != Announced {
			return res, ErrAnnounceTarget
		}
		if err := sheet.CanWrite(col, cat); err != nil {
			return res, err
		}
		g.turn.AnnouncedCell = &CellRef{Col: col, Cat: cat}
		g.turn.AnnouncementActive = false
		res.Bound = true
		return res, nil
	}

	if g.turn.AnnouncedCell != nil {
		if col != g.turn.AnnouncedCell.Col || cat != g.turn.AnnouncedCell.Cat {
			return res, ErrAnnouncedOnly
		}
	} else if col == Announced {
		return res, ErrAnnounceTarget
	}

	forcedZero := col == Manual && g.turn.RollCount > 1
	if forcedZero && !confirmZero {
		return res, ErrManualNeedsConfirm
	}

	if err := sheet.CanWrite(col, cat); err != nil {
		return res, err
	}

	points := ScoreRoll(cat, g.turn.Dice, g.turn.RollCount)
	if forcedZero {
		points = 0
	}

	if !g.Online && g.Players[g.Current].Kind == Human {
		g.undo = &undoRecord{player: g.Current, cell: CellRef{Col: col, Cat: cat}, turn: g.Turn()}
	} else {
		g.undo = nil
	}

	if err := sheet.Write(col, cat, points); err != nil {
		return res, err
	}

	res.Points = points
	res.TurnEnded = true
	g.advance()
	res.GameOver = g.over
	return res, nil
}

// ApplyRemoteMove records the opponent's self-reported write. The relay does
// not referee, so the points are trusted. Moves aimed at any sheet other
// than the remote player's own are ignored.
func (g *Game) ApplyRemoteMove(seat int, col Column, cat Category, points int) error {
	if g.over {
		return ErrGameOver
	}
	if !g.Online || seat == g.LocalSeat || seat < 0 || seat >= len(g.Sheets) {
		return nil
	}
	if !col.Valid() || !cat.Valid() {
		return ErrInvalidCell
	}
	sheet := g.Sheets[seat]
	if _, filled := sheet.Value(col, cat); filled {
		return nil
	}
	sheet.values[col][cat] = points
	sheet.filled[col][cat] = true
	g.undo = nil
	g.advance()
	return nil
}

// Undo reverts the most recent local write: the cell is cleared and the
// pre-write dice, held mask, roll count and announcement state come back.
// Offline human turns only, and only until the next roll.
func (g *Game) Undo() error {
	if g.Online {
		return ErrUndoUnavailable
	}
	if g.undo == nil {
		return ErrNothingToUndo
	}
	rec := g.undo
	g.Sheets[rec.player].Clear(rec.cell.Col, rec.cell.Cat)
	g.Current = rec.player
	g.turn = rec.turn
	g.undo = nil
	g.over = false
	return nil
}

// advance ends the turn: game over once every sheet is complete, otherwise
// the next player starts a fresh turn.
func (g *Game) advance() {
	done := true
	for _, s := range g.Sheets {
		if !s.Complete() {
			done = false
			break
		}
	}
	if done {
		g.over = true
		g.turn = TurnState{}
		return
	}
	g.Current = (g.Current + 1) % len(g.Players)
	g.turn = TurnState{}
}

// Totals returns each player's grand total, index-aligned with Players.
func (g *Game) Totals() []int {
	totals := make([]int, len(g.Sheets))
	for i, s := range g.Sheets {
		totals[i] = s.Total()
	}
	return totals
}
