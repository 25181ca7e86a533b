package game

import (
	"errors"
	"math/rand"
	"testing"
)

func newTestGame(t *testing.T, players ...Player) *Game {
	t.Helper()
	if len(players) == 0 {
		players = []Player{{Name: "A", Kind: Human}, {Name: "B", Kind: Human}}
	}
	g, err := NewGame(players, Options{Rand: rand.New(rand.NewSource(1))})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// setDice forces the dice for deterministic write tests.
func setDice(g *Game, dice [6]int, rolls int) {
	g.turn.Dice = dice
	g.turn.RollCount = rolls
}

func TestRollLimits(t *testing.T) {
	g := newTestGame(t)

	if _, err := g.Write(Free, Ones, false); !errors.Is(err, ErrNotRolled) {
		t.Errorf("write before rolling: want ErrNotRolled, got %v", err)
	}
	if err := g.ToggleHold(0); !errors.Is(err, ErrNotRolled) {
		t.Errorf("hold before rolling: want ErrNotRolled, got %v", err)
	}

	for i := 0; i < 3; i++ {
		dice, err := g.Roll()
		if err != nil {
			t.Fatalf("roll %d: %v", i+1, err)
		}
		for _, d := range dice {
			if d < 1 || d > 6 {
				t.Fatalf("die out of range: %v", dice)
			}
		}
	}
	if _, err := g.Roll(); !errors.Is(err, ErrNoRollsLeft) {
		t.Errorf("fourth roll: want ErrNoRollsLeft, got %v", err)
	}
}

func TestHeldDiceSurviveRoll(t *testing.T) {
	g := newTestGame(t)
	g.Roll()
	setDice(g, [6]int{6, 6, 1, 1, 1, 1}, 1)

	g.ToggleHold(0)
	g.ToggleHold(1)
	g.Roll()

	dice := g.Turn().Dice
	if dice[0] != 6 || dice[1] != 6 {
		t.Errorf("held dice must not change, got %v", dice)
	}
}

func TestAnnouncementFlow(t *testing.T) {
	g := newTestGame(t)

	if err := g.ToggleAnnounce(); !errors.Is(err, ErrAnnounceUnavailable) {
		t.Errorf("announce before first roll: want ErrAnnounceUnavailable, got %v", err)
	}

	g.Roll()
	if err := g.ToggleAnnounce(); err != nil {
		t.Fatalf("announce after first roll: %v", err)
	}

	if _, err := g.Roll(); !errors.Is(err, ErrAnnouncementPending) {
		t.Errorf("rolling while pending: want ErrAnnouncementPending, got %v", err)
	}

	// The binding write must target the Announced column.
	if _, err := g.Write(Free, Yamb, false); !errors.Is(err, ErrAnnounceTarget) {
		t.Errorf("bind outside Announced: want ErrAnnounceTarget, got %v", err)
	}

	res, err := g.Write(Announced, Yamb, false)
	if err != nil {
		t.Fatalf("binding write: %v", err)
	}
	if !res.Bound || res.TurnEnded {
		t.Fatalf("binding must not end the turn: %+v", res)
	}

	// Once bound, every other cell is off limits this turn.
	setDice(g, [6]int{5, 5, 5, 5, 5, 1}, 2)
	if _, err := g.Write(Free, Poker, false); !errors.Is(err, ErrAnnouncedOnly) {
		t.Errorf("non-announced write: want ErrAnnouncedOnly, got %v", err)
	}

	res, err = g.Write(Announced, Yamb, false)
	if err != nil {
		t.Fatalf("announced write: %v", err)
	}
	if res.Points != 75 {
		t.Errorf("Yamb of 5s scores 75, got %d", res.Points)
	}
	if got, _ := g.Sheet(0).Value(Announced, Yamb); got != 75 {
		t.Errorf("cell not committed, got %d", got)
	}
	if g.Turn().AnnouncedCell != nil || g.Turn().AnnouncementActive {
		t.Error("announcement state must clear with the new turn")
	}
}

func TestAnnounceToggleOff(t *testing.T) {
	g := newTestGame(t)
	g.Roll()
	g.ToggleAnnounce()
	if err := g.ToggleAnnounce(); err != nil {
		t.Fatalf("cancelling an unbound announcement: %v", err)
	}
	if _, err := g.Roll(); err != nil {
		t.Errorf("rolling after cancel: %v", err)
	}
}

func TestAnnouncedColumnNeedsAnnouncement(t *testing.T) {
	g := newTestGame(t)
	g.Roll()
	if _, err := g.Write(Announced, Ones, false); !errors.Is(err, ErrAnnounceTarget) {
		t.Errorf("Announced without announcement: want ErrAnnounceTarget, got %v", err)
	}
}

func TestManualLateWriteForcedZero(t *testing.T) {
	g := newTestGame(t)
	g.Roll()
	g.Roll()
	setDice(g, [6]int{6, 6, 6, 6, 6, 6}, 2)

	if _, err := g.Write(Manual, Yamb, false); !errors.Is(err, ErrManualNeedsConfirm) {
		t.Fatalf("late Manual write needs confirmation, got %v", err)
	}
	res, err := g.Write(Manual, Yamb, true)
	if err != nil {
		t.Fatalf("confirmed late Manual write: %v", err)
	}
	if res.Points != 0 {
		t.Errorf("late Manual write always scores 0, got %d", res.Points)
	}
}

func TestManualFirstRollPaysFull(t *testing.T) {
	g := newTestGame(t)
	g.Roll()
	setDice(g, [6]int{6, 6, 6, 6, 6, 1}, 1)

	res, err := g.Write(Manual, Yamb, false)
	if err != nil {
		t.Fatalf("first-roll Manual write: %v", err)
	}
	if res.Points != 80 {
		t.Errorf("Yamb of 6s on roll one scores 80, got %d", res.Points)
	}
}

func TestWriteAdvancesTurn(t *testing.T) {
	g := newTestGame(t)
	g.Roll()
	res, err := g.Write(Free, Max, false)
	if err != nil {
		t.Fatal(err)
	}
	if !res.TurnEnded {
		t.Error("a scoring write ends the turn")
	}
	if g.Current != 1 {
		t.Errorf("turn must pass to player 1, got %d", g.Current)
	}
	if g.Turn().RollCount != 0 {
		t.Error("new turn starts unrolled")
	}
}

func TestUndoRestoresEverything(t *testing.T) {
	g := newTestGame(t)
	g.Roll()
	setDice(g, [6]int{4, 4, 2, 3, 1, 6}, 1)
	g.ToggleHold(0)
	g.ToggleHold(1)
	before := g.Turn()

	if _, err := g.Write(Free, Fours, false); err != nil {
		t.Fatal(err)
	}
	if err := g.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}

	if _, filled := g.Sheet(0).Value(Free, Fours); filled {
		t.Error("undo must clear the written cell")
	}
	after := g.Turn()
	if after.Dice != before.Dice || after.Held != before.Held || after.RollCount != before.RollCount {
		t.Errorf("undo must restore the pre-write turn: %+v vs %+v", after, before)
	}
	if g.Current != 0 {
		t.Errorf("undo returns control to the writer, got player %d", g.Current)
	}

	if err := g.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("second undo: want ErrNothingToUndo, got %v", err)
	}
}

func TestUndoRejectedAfterNextRoll(t *testing.T) {
	g := newTestGame(t)
	g.Roll()
	setDice(g, [6]int{4, 4, 2, 3, 1, 6}, 1)
	if _, err := g.Write(Free, Fours, false); err != nil {
		t.Fatal(err)
	}

	// The next player has already rolled; taking back the write would
	// silently discard their roll.
	if _, err := g.Roll(); err != nil {
		t.Fatal(err)
	}
	if err := g.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("undo after the next roll: want ErrNothingToUndo, got %v", err)
	}

	if _, filled := g.Sheet(0).Value(Free, Fours); !filled {
		t.Error("the committed write must stay on the sheet")
	}
	if g.Current != 1 || g.Turn().RollCount != 1 {
		t.Errorf("the new turn must be untouched, player %d roll %d", g.Current, g.Turn().RollCount)
	}
}

func TestUndoBlockedOnline(t *testing.T) {
	g, err := NewGame([]Player{{Name: "A"}, {Name: "B"}}, Options{
		Online: true, LocalSeat: 0, Rand: rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatal(err)
	}
	g.Roll()
	if _, err := g.Write(Free, Max, false); err != nil {
		t.Fatal(err)
	}
	if err := g.Undo(); !errors.Is(err, ErrUndoUnavailable) {
		t.Errorf("online undo: want ErrUndoUnavailable, got %v", err)
	}
}

func TestRemoteMoveOnlyOpponentSlot(t *testing.T) {
	g, err := NewGame([]Player{{Name: "A"}, {Name: "B"}}, Options{
		Online: true, LocalSeat: 0, Rand: rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatal(err)
	}

	// A move claiming to be ours is dropped without error.
	if err := g.ApplyRemoteMove(0, Free, Ones, 5); err != nil {
		t.Fatalf("self-targeted remote move should be ignored: %v", err)
	}
	if _, filled := g.Sheet(0).Value(Free, Ones); filled {
		t.Error("ignored move must not touch our sheet")
	}

	if err := g.ApplyRemoteMove(1, Free, Yamb, 80); err != nil {
		t.Fatal(err)
	}
	if v, ok := g.Sheet(1).Value(Free, Yamb); !ok || v != 80 {
		t.Errorf("remote points are trusted as reported, got %d (%v)", v, ok)
	}
}

func TestGameOverWhenAllSheetsFull(t *testing.T) {
	g := newTestGame(t, Player{Name: "Solo", Kind: Human})

	for col := Column(0); col < NumColumns; col++ {
		for cat := Category(0); cat < NumCategories; cat++ {
			g.Sheets[0].values[col][cat] = 1
			g.Sheets[0].filled[col][cat] = true
		}
	}
	// Leave one cell open, then write it through the turn machine.
	g.Sheets[0].Clear(Free, Max)
	g.Roll()
	res, err := g.Write(Free, Max, false)
	if err != nil {
		t.Fatal(err)
	}
	if !res.GameOver || !g.Over() {
		t.Error("filling the last cell ends the game")
	}
	if _, err := g.Roll(); !errors.Is(err, ErrGameOver) {
		t.Errorf("rolling after game over: want ErrGameOver, got %v", err)
	}
}
