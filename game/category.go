package game

import "fmt"

// Category is a scoresheet row. The declaration order is the top-to-bottom
// sheet order and drives the TopDown/BottomUp fill rules.
type Category int

const (
	Ones Category = iota
	Twos
	Threes
	Fours
	Fives
	Sixes
	Max
	Min
	Triling
	Kenta
	Ful
	Poker
	Yamb
)

const NumCategories = 13

// Face returns the die face a numeric category counts, or 0 for the rest.
func (c Category) Face() int {
	if c >= Ones && c <= Sixes {
		return int(c) + 1
	}
	return 0
}

// IsNumeric reports whether the category belongs to the upper section (1-6).
func (c Category) IsNumeric() bool {
	return c >= Ones && c <= Sixes
}

func (c Category) Valid() bool {
	return c >= Ones && c <= Yamb
}

var categoryNames = [NumCategories]string{
	"1", "2", "3", "4", "5", "6",
	"Max", "Min", "Triling", "Kenta", "Ful", "Poker", "Yamb",
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// CategoryFromString resolves a sheet row name, as used in snapshots and on
// the wire.
func CategoryFromString(s string) (Category, bool) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), true
		}
	}
	return 0, false
}

// Column is one of the six scoresheet columns, each with its own fill-order
// rule.
type Column int

const (
	// TopDown must be filled row by row from category 1 downward.
	TopDown Column = iota
	// BottomUp must be filled row by row from Yamb upward.
	BottomUp
	// Free has no ordering rule.
	Free
	// Middle converges: Max,6..1 from Max inward and Min,Triling..Yamb from
	// Min inward, each side independent.
	Middle
	// Manual only pays for first-roll writes; a later write is legal but
	// scores zero.
	Manual
	// Announced is only reachable through a bound announcement.
	Announced
)

const NumColumns = 6

func (c Column) Valid() bool {
	return c >= TopDown && c <= Announced
}

var columnNames = [NumColumns]string{
	"TopDown", "BottomUp", "Free", "Middle", "Manual", "Announced",
}

func (c Column) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Column(%d)", int(c))
	}
	return columnNames[c]
}

// ColumnFromString resolves a column name, as used in snapshots and on the
// wire.
func ColumnFromString(s string) (Column, bool) {
	for i, name := range columnNames {
		if name == s {
			return Column(i), true
		}
	}
	return 0, false
}

// CellRef addresses one scoresheet cell.
type CellRef struct {
	Col Column   `json:"col"`
	Cat Category `json:"cat"`
}

func (r CellRef) String() string {
	return r.Col.String() + "/" + r.Cat.String()
}

// Fill orders for the Middle column. Each side is checked independently;
// index i may only be written once index i-1 is filled.
var (
	middleNumericSide = []Category{Max, Sixes, Fives, Fours, Threes, Twos, Ones}
	middleComboSide   = []Category{Min, Triling, Kenta, Ful, Poker, Yamb}
)
