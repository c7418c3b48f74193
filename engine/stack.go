package engine

import (
	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// stackGuard entries sit before ply 0 so that ply-1 and ply-2 lookups are
// always in range.
const stackGuard = 2

// MaxDepth bounds search ply.
const MaxDepth = 100

type stackEntry struct {
	move       gm.Move
	staticEval int32
	// cont is the continuation table selected by move. Guards and null
	// moves point at zeroContinuation.
	cont *PieceToHistory
}

type searchStack [MaxDepth + stackGuard + 1]stackEntry

// zeroContinuation is never written: entries pointing at it carry NoMove.
var zeroContinuation PieceToHistory

func (s *searchStack) clear() {
	*s = searchStack{}
	for i := 0; i < stackGuard; i++ {
		s[i].cont = &zeroContinuation
	}
}

// at maps a search ply to its stack index.
func at(ply int) int {
	return ply + stackGuard
}
