// Package ai implements the heuristic opponent. The engine is stateless
// between calls: every decision is computed from the current dice, the roll
// number and the AI's own scoresheet, plus both totals for risk tuning.
package ai

import (
	"math/rand"
	"time"

	"github.com/wfunc/yamb/game"
)

type DecisionType int

const (
	// Hold keeps the given dice and rolls again.
	Hold DecisionType = iota
	// Write commits the current dice into Cell.
	Write
	// Announce declares Cell in the Announced column, holds the given
	// dice and rolls toward it.
	Announce
	// Pass means no legal move exists; only reachable on a corrupt sheet.
	Pass
)

// Decision is one AI turn-step.
type Decision struct {
	Type DecisionType
	Cell game.CellRef
	Hold [6]bool
}

// Engine picks roll/hold/announce/write actions for one AI player.
type Engine struct {
	difficulty game.Difficulty
	rng        *rand.Rand
}

func New(difficulty game.Difficulty) *Engine {
	return &Engine{
		difficulty: difficulty,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (e *Engine) Difficulty() game.Difficulty { return e.difficulty }

// baseWeights reflect how dangerous it is to leave each column for later.
// The ordered columns and the announcement column are weighted most
// aggressively.
var baseWeights = map[game.Column]float64{
	game.TopDown:   2.5,
	game.BottomUp:  2.5,
	game.Announced: 2.2,
	game.Manual:    1.7,
	game.Middle:    1.1,
	game.Free:      1.0,
}

// hand is the per-roll dice analysis.
type hand struct {
	counts    [7]int
	maxCount  int
	dominant  int   // face with the highest count
	pairs     []int // faces appearing at least twice
	triples   []int // faces appearing at least three times
	straight  bool
	runFaces  []int // members of the longer partial straight
	sum       int
}

func analyze(dice [6]int) hand {
	var h hand
	for _, d := range dice {
		h.counts[d]++
		h.sum += d
	}
	for v := 1; v <= 6; v++ {
		c := h.counts[v]
		if c > h.maxCount {
			h.maxCount = c
			h.dominant = v
		}
		if c >= 2 {
			h.pairs = append(h.pairs, v)
		}
		if c >= 3 {
			h.triples = append(h.triples, v)
		}
	}

	runs := [2][5]int{{1, 2, 3, 4, 5}, {2, 3, 4, 5, 6}}
	for _, run := range runs {
		var present []int
		for _, v := range run {
			if h.counts[v] > 0 {
				present = append(present, v)
			}
		}
		// Fewer than three straight members is not a partial straight worth
		// keeping; chasing it would hold junk dice.
		if len(present) >= 3 && len(present) > len(h.runFaces) {
			h.runFaces = present
		}
		if len(present) == 5 {
			h.straight = true
		}
	}
	return h
}

// Decide computes the next action for the AI's turn-step. announced is the
// already-bound announcement cell, or nil.
func (e *Engine) Decide(dice [6]int, rollCount int, sheet *game.Sheet, announced *game.CellRef, myScore, oppScore int) Decision {
	h := analyze(dice)
	progress := sheet.FilledFraction()
	scoreDiff := myScore - oppScore

	weights := make(map[game.Column]float64, len(baseWeights))
	for col, w := range baseWeights {
		weights[col] = w
	}
	// Losing late in the game: chase variance through the risky columns.
	if progress > 0.6 && scoreDiff < -50 {
		weights[game.Manual] = 3.0
		weights[game.Announced] = 3.0
	}

	if rollCount == 1 {
		if cat, ok := manualWin(h, sheet); ok {
			return Decision{Type: Write, Cell: game.CellRef{Col: game.Manual, Cat: cat}}
		}
		if announced == nil {
			if cat, ok := evaluateAnnouncement(h, sheet, progress, scoreDiff); ok {
				return Decision{
					Type: Announce,
					Cell: game.CellRef{Col: game.Announced, Cat: cat},
					Hold: holdForTarget(dice, cat, h),
				}
			}
		}
	}

	if rollCount >= 3 {
		return e.bestWrite(dice, rollCount, sheet, announced, weights)
	}
	return Decision{Type: Hold, Hold: decideHold(dice, sheet, announced, h)}
}

// manualWin checks the first roll for an immediate qualifying write into the
// Manual column, in fixed priority order.
func manualWin(h hand, sheet *game.Sheet) (game.Category, bool) {
	type candidate struct {
		cat game.Category
		hit bool
	}
	for _, c := range []candidate{
		{game.Yamb, h.maxCount >= 5},
		{game.Kenta, h.straight},
		{game.Poker, h.maxCount >= 4},
		{game.Max, h.sum >= 26},
		{game.Min, h.sum <= 8},
	} {
		if c.hit && sheet.CanWrite(game.Manual, c.cat) == nil {
			return c.cat, true
		}
	}
	return 0, false
}

func announceable(sheet *game.Sheet, cat game.Category) bool {
	return sheet.CanWrite(game.Announced, cat) == nil
}

// evaluateAnnouncement decides whether to declare after the first roll.
// Strong hands announce the matching category; middling hands announce
// conditionally on progress and a risk factor that loosens when behind;
// late-game pressure forces a filler announcement.
func evaluateAnnouncement(h hand, sheet *game.Sheet, progress float64, scoreDiff int) (game.Category, bool) {
	risk := 1.0
	if scoreDiff < -30 {
		risk = 0.8
	}

	if h.maxCount >= 4 {
		if h.maxCount >= 5 && announceable(sheet, game.Yamb) {
			return game.Yamb, true
		}
		if announceable(sheet, game.Poker) {
			return game.Poker, true
		}
		if cat := game.Category(h.dominant - 1); announceable(sheet, cat) {
			return cat, true
		}
	}
	if h.maxCount == 3 {
		if progress < 0.7/risk {
			if h.dominant >= 4 {
				if cat := game.Category(h.dominant - 1); announceable(sheet, cat) {
					return cat, true
				}
			}
			if announceable(sheet, game.Triling) {
				return game.Triling, true
			}
		} else if h.dominant >= 4 && announceable(sheet, game.Yamb) {
			return game.Yamb, true
		}
	}

	// Forced filler: announcements are the only slack left.
	emptyAnnounced := sheet.EmptyInColumn(game.Announced)
	emptyOthers := sheet.EmptyInColumn(game.Free) +
		sheet.EmptyInColumn(game.TopDown) +
		sheet.EmptyInColumn(game.BottomUp)
	if emptyAnnounced > 0 && (emptyOthers < 4 || progress > 0.85) {
		if cat := game.Category(h.dominant - 1); announceable(sheet, cat) {
			return cat, true
		}
		if announceable(sheet, game.Min) {
			return game.Min, true
		}
		if announceable(sheet, game.Max) {
			return game.Max, true
		}
		for cat := game.Category(0); cat < game.NumCategories; cat++ {
			if announceable(sheet, cat) {
				return cat, true
			}
		}
	}
	return 0, false
}

// holdForTarget keeps the dice that work toward an announced category.
func holdForTarget(dice [6]int, target game.Category, h hand) [6]bool {
	var mask [6]bool
	switch {
	case target.IsNumeric(), target == game.Triling, target == game.Poker, target == game.Yamb:
		face := target.Face()
		if face == 0 {
			face = h.dominant
		}
		for i, d := range dice {
			mask[i] = d == face
		}
	case target == game.Kenta:
		needed := h.runFaces
		if len(needed) == 0 {
			needed = []int{1, 2, 3, 4, 5}
		}
		used := make(map[int]bool)
		for i, d := range dice {
			if contains(needed, d) && !used[d] {
				used[d] = true
				mask[i] = true
			}
		}
	case target == game.Ful:
		second := 0
		for _, p := range h.pairs {
			if p != h.dominant {
				second = p
			}
		}
		for i, d := range dice {
			mask[i] = d == h.dominant || (h.maxCount >= 3 && second != 0 && d == second)
		}
	case target == game.Max:
		for i, d := range dice {
			mask[i] = d >= 4
		}
	case target == game.Min:
		for i, d := range dice {
			mask[i] = d <= 2
		}
	}
	return mask
}

// decideHold picks the held mask for rolls one and two when nothing is
// decided yet.
func decideHold(dice [6]int, sheet *game.Sheet, announced *game.CellRef, h hand) [6]bool {
	if announced != nil {
		return holdForTarget(dice, announced.Cat, h)
	}

	// Completing an upper-section bonus beats everything else.
	if h.dominant >= 4 && h.maxCount >= 2 {
		cat := game.Category(h.dominant - 1)
		for _, col := range []game.Column{game.Free, game.TopDown, game.BottomUp} {
			if sheet.UpperSum(col) < 60 && sheet.CanWrite(col, cat) == nil {
				return matchFace(dice, h.dominant)
			}
		}
	}

	maxOpen := sheet.CanWrite(game.Free, game.Max) == nil || sheet.CanWrite(game.TopDown, game.Max) == nil
	if h.sum >= 22 && maxOpen {
		var mask [6]bool
		for i, d := range dice {
			mask[i] = d >= 5
		}
		return mask
	}
	minOpen := sheet.CanWrite(game.Free, game.Min) == nil || sheet.CanWrite(game.BottomUp, game.Min) == nil
	if h.sum <= 10 && minOpen {
		var mask [6]bool
		for i, d := range dice {
			mask[i] = d <= 2
		}
		return mask
	}

	if h.maxCount >= 3 {
		return matchFace(dice, h.dominant)
	}
	if len(h.runFaces) >= 4 && sheet.CanWrite(game.Free, game.Kenta) == nil {
		var mask [6]bool
		used := make(map[int]bool)
		for i, d := range dice {
			if contains(h.runFaces, d) && !used[d] {
				used[d] = true
				mask[i] = true
			}
		}
		return mask
	}
	if h.maxCount == 2 && h.dominant >= 4 {
		return matchFace(dice, h.dominant)
	}
	return [6]bool{}
}

// bestWrite enumerates every open, order-valid cell on the third roll,
// prices it, weighs it by column and applies the category adjustments, then
// takes the best option or falls back to the least-bad scratch.
func (e *Engine) bestWrite(dice [6]int, rollCount int, sheet *game.Sheet, announced *game.CellRef, weights map[game.Column]float64) Decision {
	if announced != nil {
		return Decision{Type: Write, Cell: *announced}
	}

	type option struct {
		val  float64
		cell game.CellRef
	}
	var best *option

	for col := game.Column(0); col < game.NumColumns; col++ {
		if col == game.Manual || col == game.Announced {
			continue
		}
		upper := sheet.UpperSum(col)
		for cat := game.Category(0); cat < game.NumCategories; cat++ {
			if sheet.CanWrite(col, cat) != nil {
				continue
			}
			raw := game.ScoreRoll(cat, dice, rollCount)
			val := float64(raw) * weights[col]

			switch {
			case cat.IsNumeric():
				face := cat.Face()
				if upper < 60 && upper+raw >= 60 {
					val += 200 // crossing the bonus threshold
				}
				if raw >= 3*face {
					val += 30
				}
				if upper < 60 && raw < 2*face {
					val -= 100
				}
			case cat == game.Max:
				if raw >= 25 {
					val += 50
				}
			case cat == game.Min:
				if raw <= 8 {
					val += 80
				}
			case cat == game.Yamb && raw > 0:
				val += 150
			case cat == game.Poker && raw > 0:
				val += 80
			case cat == game.Kenta && raw > 0:
				val += 70
			case cat == game.Ful && raw > 0:
				val += 40
			}
			if raw == 0 {
				if col == game.TopDown || col == game.BottomUp {
					val -= 1000 // dead cell in an ordered column, unrecoverable
				} else {
					val -= 200
				}
			}

			if best == nil || val > best.val {
				best = &option{val: val, cell: game.CellRef{Col: col, Cat: cat}}
			}
		}
	}

	if best != nil && best.val > -100 {
		return Decision{Type: Write, Cell: best.cell}
	}
	return leastBadScratch(sheet)
}

// leastBadScratch walks a fixed priority list of sacrificial cells, then any
// open cell by column order. Announced cells are unreachable without an
// announcement and are skipped.
func leastBadScratch(sheet *game.Sheet) Decision {
	preferred := []game.CellRef{
		{Col: game.Free, Cat: game.Ones},
		{Col: game.Middle, Cat: game.Ones},
		{Col: game.Free, Cat: game.Twos},
		{Col: game.Middle, Cat: game.Min},
		{Col: game.Free, Cat: game.Min},
	}
	for _, cell := range preferred {
		if sheet.CanWrite(cell.Col, cell.Cat) == nil {
			return Decision{Type: Write, Cell: cell}
		}
	}
	for col := game.Column(0); col < game.NumColumns; col++ {
		if col == game.Announced {
			continue
		}
		for cat := game.Category(0); cat < game.NumCategories; cat++ {
			if sheet.CanWrite(col, cat) == nil {
				return Decision{Type: Write, Cell: game.CellRef{Col: col, Cat: cat}}
			}
		}
	}
	return Decision{Type: Pass}
}

// Reaction returns a short chat line for a just-written score, or "".
func (e *Engine) Reaction(points int) string {
	switch {
	case points >= 60:
		return "Sjajno!"
	case points >= 40:
		return "Dobar potez."
	}
	return ""
}

// ThinkDelay spaces AI actions so turns read naturally. Cosmetic only.
func (e *Engine) ThinkDelay() time.Duration {
	return time.Duration(800+e.rng.Intn(1000)) * time.Millisecond
}

func matchFace(dice [6]int, face int) [6]bool {
	var mask [6]bool
	for i, d := range dice {
		mask[i] = d == face
	}
	return mask
}

func contains(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
