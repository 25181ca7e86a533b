package game

import "sort"

// straights lists the two runs that count as a Kenta. The 2-6 run is checked
// first; it is worth the same but uses the higher dice.
var straights = [2][5]int{
	{2, 3, 4, 5, 6},
	{1, 2, 3, 4, 5},
}

func diceCounts(dice []int) (counts [7]int) {
	for _, d := range dice {
		if d >= 1 && d <= 6 {
			counts[d]++
		}
	}
	return
}

func containsRun(counts [7]int, run [5]int) bool {
	for _, v := range run {
		if counts[v] == 0 {
			return false
		}
	}
	return true
}

func sumDice(dice []int) int {
	s := 0
	for _, d := range dice {
		s += d
	}
	return s
}

// SelectScoringDice picks the five of the six rolled dice that count toward
// the given category. The returned slice always has five elements.
func SelectScoringDice(cat Category, dice [6]int) []int {
	d := make([]int, 6)
	copy(d, dice[:])

	switch {
	case cat == Min:
		sort.Ints(d)
		return d[:5]
	case cat == Max:
		sort.Sort(sort.Reverse(sort.IntSlice(d)))
		return d[:5]
	case cat == Kenta:
		counts := diceCounts(d)
		for _, run := range straights {
			if containsRun(counts, run) {
				sel := make([]int, 5)
				copy(sel, run[:])
				return sel
			}
		}
		sort.Sort(sort.Reverse(sort.IntSlice(d)))
		return d[:5]
	case cat == Ful:
		if sel, ok := selectFullHouse(d); ok {
			return sel
		}
		// No house in the hand; the default pick scores zero anyway.
	case cat.IsNumeric():
		face := cat.Face()
		sel := make([]int, 0, 6)
		rest := make([]int, 0, 6)
		for _, v := range d {
			if v == face {
				sel = append(sel, v)
			} else {
				rest = append(rest, v)
			}
		}
		sort.Sort(sort.Reverse(sort.IntSlice(rest)))
		sel = append(sel, rest...)
		return sel[:5]
	}

	// Default for Triling, Poker, Yamb and the Ful fallback: frequency
	// first, then face value.
	counts := diceCounts(d)
	sort.Slice(d, func(i, j int) bool {
		if counts[d[i]] != counts[d[j]] {
			return counts[d[i]] > counts[d[j]]
		}
		return d[i] > d[j]
	})
	return d[:5]
}

// selectFullHouse returns the best 3+2 split with distinct values, or five of
// a kind when one value covers all slots.
func selectFullHouse(d []int) ([]int, bool) {
	counts := diceCounts(d)
	for v := 6; v >= 1; v-- {
		if counts[v] >= 5 {
			return []int{v, v, v, v, v}, true
		}
	}

	best := 0
	var sel []int
	for t := 1; t <= 6; t++ {
		if counts[t] < 3 {
			continue
		}
		for p := 1; p <= 6; p++ {
			if p == t || counts[p] < 2 {
				continue
			}
			if s := 3*t + 2*p; s > best {
				best = s
				sel = []int{t, t, t, p, p}
			}
		}
	}
	return sel, sel != nil
}

// Score prices a five-dice selection for a category. Kenta pays by the roll
// the straight was achieved on, so the current roll count is part of the
// input. The result is never negative.
func Score(cat Category, sel []int, rollCount int) int {
	counts := diceCounts(sel)

	switch {
	case cat.IsNumeric():
		return counts[cat.Face()] * cat.Face()
	case cat == Max || cat == Min:
		return sumDice(sel)
	case cat == Triling:
		for v := 6; v >= 1; v-- {
			if counts[v] >= 3 {
				return 3*v + 20
			}
		}
		return 0
	case cat == Kenta:
		for _, run := range straights {
			if containsRun(counts, run) {
				switch rollCount {
				case 1:
					return 66
				case 2:
					return 56
				default:
					return 46
				}
			}
		}
		return 0
	case cat == Ful:
		hasFive := false
		hasThree := false
		hasPair := false
		for v := 1; v <= 6; v++ {
			switch counts[v] {
			case 5:
				hasFive = true
			case 3:
				hasThree = true
			case 2:
				hasPair = true
			}
		}
		if hasFive || (hasThree && hasPair) {
			return sumDice(sel) + 30
		}
		return 0
	case cat == Poker:
		for v := 6; v >= 1; v-- {
			if counts[v] >= 4 {
				return 4*v + 40
			}
		}
		return 0
	case cat == Yamb:
		for v := 6; v >= 1; v-- {
			if counts[v] >= 5 {
				return 5*v + 50
			}
		}
		return 0
	}
	return 0
}

// ScoreRoll is the convenience composition used when pricing a write: select
// the scoring dice, then price them.
func ScoreRoll(cat Category, dice [6]int, rollCount int) int {
	return Score(cat, SelectScoringDice(cat, dice), rollCount)
}
