package game

import "errors"

var (
	ErrCellOccupied  = errors.New("cell already written")
	ErrOrderViolated = errors.New("column fill order violated")
	ErrInvalidCell   = errors.New("invalid cell reference")
)

// Sheet is one player's grid of columns by categories. A cell goes from empty
// to written exactly once; Clear exists only for the single-level undo.
type Sheet struct {
	values [NumColumns][NumCategories]int
	filled [NumColumns][NumCategories]bool
}

func NewSheet() *Sheet {
	return &Sheet{}
}

// Value returns the cell's score and whether it has been written.
func (s *Sheet) Value(col Column, cat Category) (int, bool) {
	if !col.Valid() || !cat.Valid() {
		return 0, false
	}
	return s.values[col][cat], s.filled[col][cat]
}

// CanWrite checks that the cell is empty and that the column's fill-order
// rule allows it.
func (s *Sheet) CanWrite(col Column, cat Category) error {
	if !col.Valid() || !cat.Valid() {
		return ErrInvalidCell
	}
	if s.filled[col][cat] {
		return ErrCellOccupied
	}
	if !s.orderSatisfied(col, cat) {
		return ErrOrderViolated
	}
	return nil
}

func (s *Sheet) orderSatisfied(col Column, cat Category) bool {
	switch col {
	case TopDown:
		return cat == Ones || s.filled[col][cat-1]
	case BottomUp:
		return cat == Yamb || s.filled[col][cat+1]
	case Middle:
		for _, side := range [][]Category{middleNumericSide, middleComboSide} {
			for i, c := range side {
				if c != cat {
					continue
				}
				return i == 0 || s.filled[col][side[i-1]]
			}
		}
		return true
	default:
		return true
	}
}

// Write stores a score. The caller is expected to have passed CanWrite; the
// occupancy check is repeated so a sheet can never be corrupted.
func (s *Sheet) Write(col Column, cat Category, points int) error {
	if err := s.CanWrite(col, cat); err != nil {
		return err
	}
	s.values[col][cat] = points
	s.filled[col][cat] = true
	return nil
}

// Clear reverts a cell to empty. Only the undo path uses it.
func (s *Sheet) Clear(col Column, cat Category) {
	if col.Valid() && cat.Valid() {
		s.values[col][cat] = 0
		s.filled[col][cat] = false
	}
}

// UpperSum is the raw total of categories 1-6 in a column, without the bonus.
func (s *Sheet) UpperSum(col Column) int {
	total := 0
	for cat := Ones; cat <= Sixes; cat++ {
		if s.filled[col][cat] {
			total += s.values[col][cat]
		}
	}
	return total
}

// Sum1 is the upper-section total including the +30 bonus awarded at 60.
func (s *Sheet) Sum1(col Column) int {
	total := s.UpperSum(col)
	if total >= 60 {
		total += 30
	}
	return total
}

// Sum2 is (Max - Min) x ones, available only once all three cells are in.
func (s *Sheet) Sum2(col Column) int {
	vMax, okMax := s.Value(col, Max)
	vMin, okMin := s.Value(col, Min)
	vOnes, okOnes := s.Value(col, Ones)
	if !okMax || !okMin || !okOnes {
		return 0
	}
	return (vMax - vMin) * vOnes
}

// Sum3 totals the combination section (Triling through Yamb).
func (s *Sheet) Sum3(col Column) int {
	total := 0
	for cat := Triling; cat <= Yamb; cat++ {
		if s.filled[col][cat] {
			total += s.values[col][cat]
		}
	}
	return total
}

// ColumnTotal is Sum1+Sum2+Sum3 for one column.
func (s *Sheet) ColumnTotal(col Column) int {
	return s.Sum1(col) + s.Sum2(col) + s.Sum3(col)
}

// Total is the player's grand total across all columns.
func (s *Sheet) Total() int {
	total := 0
	for col := Column(0); col < NumColumns; col++ {
		total += s.ColumnTotal(col)
	}
	return total
}

// Complete reports whether every cell has been written.
func (s *Sheet) Complete() bool {
	return s.FilledCount() == NumColumns*NumCategories
}

func (s *Sheet) FilledCount() int {
	n := 0
	for col := Column(0); col < NumColumns; col++ {
		for cat := Category(0); cat < NumCategories; cat++ {
			if s.filled[col][cat] {
				n++
			}
		}
	}
	return n
}

// FilledFraction is the sheet's fill progress in [0,1].
func (s *Sheet) FilledFraction() float64 {
	return float64(s.FilledCount()) / float64(NumColumns*NumCategories)
}

// EmptyInColumn counts the unwritten cells of one column.
func (s *Sheet) EmptyInColumn(col Column) int {
	n := 0
	for cat := Category(0); cat < NumCategories; cat++ {
		if !s.filled[col][cat] {
			n++
		}
	}
	return n
}
