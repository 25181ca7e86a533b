package game

import (
	"errors"
	"testing"
)

func TestTopDownOrder(t *testing.T) {
	s := NewSheet()

	if err := s.CanWrite(TopDown, Twos); !errors.Is(err, ErrOrderViolated) {
		t.Errorf("writing 2 before 1 in TopDown: want ErrOrderViolated, got %v", err)
	}

	if err := s.Write(TopDown, Ones, 3); err != nil {
		t.Fatalf("writing 1 first should succeed: %v", err)
	}
	if err := s.CanWrite(TopDown, Twos); err != nil {
		t.Errorf("2 after 1 should be writable: %v", err)
	}
}

func TestBottomUpOrder(t *testing.T) {
	s := NewSheet()

	if err := s.CanWrite(BottomUp, Poker); !errors.Is(err, ErrOrderViolated) {
		t.Errorf("BottomUp starts at Yamb: want ErrOrderViolated, got %v", err)
	}
	if err := s.Write(BottomUp, Yamb, 0); err != nil {
		t.Fatalf("Yamb first in BottomUp: %v", err)
	}
	if err := s.CanWrite(BottomUp, Poker); err != nil {
		t.Errorf("Poker after Yamb should be writable: %v", err)
	}
}

func TestMiddleOrderTwoSides(t *testing.T) {
	s := NewSheet()

	// Numeric side starts at Max, combination side at Min; the sides are
	// independent.
	if err := s.CanWrite(Middle, Sixes); !errors.Is(err, ErrOrderViolated) {
		t.Errorf("6 before Max in Middle: want ErrOrderViolated, got %v", err)
	}
	if err := s.Write(Middle, Max, 28); err != nil {
		t.Fatalf("Max opens the numeric side: %v", err)
	}
	if err := s.CanWrite(Middle, Sixes); err != nil {
		t.Errorf("6 after Max: %v", err)
	}

	if err := s.CanWrite(Middle, Triling); !errors.Is(err, ErrOrderViolated) {
		t.Errorf("Triling before Min: want ErrOrderViolated, got %v", err)
	}
	if err := s.Write(Middle, Min, 7); err != nil {
		t.Fatalf("Min opens the combination side: %v", err)
	}
	if err := s.CanWrite(Middle, Triling); err != nil {
		t.Errorf("Triling after Min: %v", err)
	}
}

func TestFreeColumnNoOrder(t *testing.T) {
	s := NewSheet()
	if err := s.CanWrite(Free, Poker); err != nil {
		t.Errorf("Free column has no order rule: %v", err)
	}
}

func TestCellWrittenOnce(t *testing.T) {
	s := NewSheet()
	if err := s.Write(Free, Ones, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Write(Free, Ones, 3); !errors.Is(err, ErrCellOccupied) {
		t.Errorf("second write: want ErrCellOccupied, got %v", err)
	}
	if v, ok := s.Value(Free, Ones); !ok || v != 2 {
		t.Errorf("cell must keep its first value, got %d (%v)", v, ok)
	}
}

func TestUpperBonusThreshold(t *testing.T) {
	s := NewSheet()
	// 59 points before the bonus: 4+8+12+16+19... use exact fills.
	for cat, pts := range map[Category]int{Ones: 4, Twos: 8, Threes: 12, Fours: 16, Fives: 15, Sixes: 4} {
		if err := s.Write(Free, cat, pts); err != nil {
			t.Fatal(err)
		}
	}
	if got := s.Sum1(Free); got != 59 {
		t.Errorf("at 59 no bonus applies, got %d", got)
	}

	s2 := NewSheet()
	for cat, pts := range map[Category]int{Ones: 5, Twos: 8, Threes: 12, Fours: 16, Fives: 15, Sixes: 4} {
		if err := s2.Write(Free, cat, pts); err != nil {
			t.Fatal(err)
		}
	}
	if got := s2.Sum1(Free); got != 90 {
		t.Errorf("at exactly 60 the bonus lifts Sum1 to 90, got %d", got)
	}
}

func TestSum2NeedsAllThreeCells(t *testing.T) {
	s := NewSheet()
	s.Write(Free, Max, 28)
	s.Write(Free, Min, 8)
	if got := s.Sum2(Free); got != 0 {
		t.Errorf("Sum2 without the 1s cell must be 0, got %d", got)
	}
	s.Write(Free, Ones, 3)
	if got := s.Sum2(Free); got != 60 {
		t.Errorf("Sum2 = (28-8)*3 = 60, got %d", got)
	}
}

func TestGrandTotal(t *testing.T) {
	s := NewSheet()
	s.Write(Free, Ones, 3)
	s.Write(Free, Max, 25)
	s.Write(Free, Min, 10)
	s.Write(Free, Yamb, 75)
	// Max and Min only count through Sum2.
	want := 3 + (25-10)*3 + 75
	if got := s.Total(); got != want {
		t.Errorf("grand total: want %d, got %d", want, got)
	}
}

func TestCompleteAndProgress(t *testing.T) {
	s := NewSheet()
	if s.Complete() {
		t.Fatal("fresh sheet must not be complete")
	}
	for col := Column(0); col < NumColumns; col++ {
		for cat := Category(0); cat < NumCategories; cat++ {
			s.values[col][cat] = 1
			s.filled[col][cat] = true
		}
	}
	if !s.Complete() {
		t.Error("fully filled sheet must be complete")
	}
	if s.FilledFraction() != 1 {
		t.Errorf("progress of a full sheet is 1, got %f", s.FilledFraction())
	}
}
