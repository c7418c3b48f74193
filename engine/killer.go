package engine

import (
	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

type KillerTable struct {
	KillerMoves [MaxDepth + 1][2]gm.Move
}

func (k *KillerTable) Insert(move gm.Move, ply int) {
	if move != k.KillerMoves[ply][0] {
		k.KillerMoves[ply][1] = k.KillerMoves[ply][0]
		k.KillerMoves[ply][0] = move
	}
}

// Get returns the primary killer for ply.
func (k *KillerTable) Get(ply int) gm.Move {
	return k.KillerMoves[ply][0]
}

func (k *KillerTable) IsKiller(move gm.Move, ply int) bool {
	return move != NoMove && (k.KillerMoves[ply][0] == move || k.KillerMoves[ply][1] == move)
}

// Clear the killer moves table.
func (k *KillerTable) Clear() {
	k.KillerMoves = [MaxDepth + 1][2]gm.Move{}
}

// CounterTable remembers the quiet reply that refuted a move, keyed by the
// refuted move's piece and destination.
type CounterTable struct {
	moves [16][64]gm.Move
}

func (c *CounterTable) Store(prev, move gm.Move) {
	if prev == NoMove {
		return
	}
	c.moves[prev.MovedPiece()][prev.To()] = move
}

func (c *CounterTable) Get(prev gm.Move) gm.Move {
	if prev == NoMove {
		return NoMove
	}
	return c.moves[prev.MovedPiece()][prev.To()]
}

func (c *CounterTable) Clear() {
	c.moves = [16][64]gm.Move{}
}
