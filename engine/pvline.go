package engine

import (
	"strings"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// PVLine is a principal variation, best move first.
type PVLine struct {
	Moves []gm.Move
}

// Clear the principal variation line.
func (pvLine *PVLine) Clear() {
	pvLine.Moves = pvLine.Moves[:0]
}

// Update the principal variation line with a new best move,
// and a new line of best play after the best move.
func (pvLine *PVLine) Update(move gm.Move, newPVLine PVLine) {
	pvLine.Clear()
	pvLine.Moves = append(pvLine.Moves, move)
	pvLine.Moves = append(pvLine.Moves, newPVLine.Moves...)
}

// GetPVMove returns the first move of the line, or NoMove when empty.
func (pvLine *PVLine) GetPVMove() gm.Move {
	if len(pvLine.Moves) == 0 {
		return NoMove
	}
	return pvLine.Moves[0]
}

// GetPonderMove returns the expected reply to the best move.
func (pvLine *PVLine) GetPonderMove() gm.Move {
	if len(pvLine.Moves) < 2 {
		return NoMove
	}
	return pvLine.Moves[1]
}

func (pvLine PVLine) Clone() PVLine {
	return PVLine{Moves: append([]gm.Move(nil), pvLine.Moves...)}
}

func (pvLine PVLine) String() string {
	parts := make([]string, len(pvLine.Moves))
	for i, m := range pvLine.Moves {
		parts[i] = UCIMove(m)
	}
	return strings.Join(parts, " ")
}
