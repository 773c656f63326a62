package games

import "github.com/fastprodman/wagerledger/internal/model"

var beats = map[model.Move]model.Move{
	model.MoveRock:     model.MoveScissors,
	model.MovePaper:    model.MoveRock,
	model.MoveScissors: model.MovePaper,
}

// Beats reports whether a defeats b.
func Beats(a, b model.Move) bool {
	return beats[a] == b
}

// Duel returns 1 when a wins, -1 when b wins and 0 on a draw.
func Duel(a, b model.Move) int {
	switch {
	case a == b:
		return 0
	case Beats(a, b):
		return 1
	default:
		return -1
	}
}
