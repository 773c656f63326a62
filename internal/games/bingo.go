package games

import (
	"math/rand/v2"

	"github.com/fastprodman/wagerledger/internal/model"
)

const (
	CardSide    = 5
	CardCells   = CardSide * CardSide
	FreeCell    = 12
	BallsPerCol = 15
	MaxBall     = CardSide * BallsPerCol
)

// NewCard deals a 5x5 card stored row major. Column c holds five distinct
// numbers from 15c+1..15c+15 and the centre cell is free (0). perm must
// behave like rand.Perm; nil uses the global source.
func NewCard(perm func(n int) []int) []int {
	if perm == nil {
		perm = rand.Perm
	}

	card := make([]int, CardCells)

	for col := range CardSide {
		p := perm(BallsPerCol)
		for row := range CardSide {
			card[row*CardSide+col] = col*BallsPerCol + p[row] + 1
		}
	}

	card[FreeCell] = 0

	return card
}

// ValidateCard reports whether card has the shape NewCard produces.
func ValidateCard(card []int) error {
	if len(card) != CardCells {
		return model.Invalid("card", "must have %d cells", CardCells)
	}

	seen := make(map[int]struct{}, CardCells)

	for i, n := range card {
		if i == FreeCell {
			if n != 0 {
				return model.Invalid("card", "centre cell must be free")
			}

			continue
		}

		col := i % CardSide
		lo, hi := col*BallsPerCol+1, col*BallsPerCol+BallsPerCol
		if n < lo || n > hi {
			return model.Invalid("card", "cell %d holds %d outside %d..%d", i, n, lo, hi)
		}
		if _, dup := seen[n]; dup {
			return model.Invalid("card", "%d appears twice", n)
		}

		seen[n] = struct{}{}
	}

	return nil
}

// ValidateCall checks a called ball number.
func ValidateCall(n int) error {
	if n < 1 || n > MaxBall {
		return model.Invalid("number", "must be between 1 and %d", MaxBall)
	}

	return nil
}

// HasBingo reports whether any row, column or diagonal of card is fully
// covered by called. The free centre always counts as covered.
func HasBingo(card []int, called []int) bool {
	if len(card) != CardCells {
		return false
	}

	set := make(map[int]struct{}, len(called))
	for _, n := range called {
		set[n] = struct{}{}
	}

	marked := func(i int) bool {
		if i == FreeCell {
			return true
		}

		_, ok := set[card[i]]

		return ok
	}

	line := func(start, step int) bool {
		for k := range CardSide {
			if !marked(start + k*step) {
				return false
			}
		}

		return true
	}

	for i := range CardSide {
		if line(i*CardSide, 1) || line(i, CardSide) {
			return true
		}
	}

	return line(0, CardSide+1) || line(CardSide-1, CardSide-1)
}
