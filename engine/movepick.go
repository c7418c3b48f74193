package engine

import (
	"fmt"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// Stage is a phase of the move picker. Stages only move forward, except that
// skipping quiets jumps straight from StageGoodNoisy to StagePreBadNoisy.
type Stage uint8

const (
	StageNone Stage = iota
	StageHashMove
	StageGenNoisy
	StageGoodNoisy
	StageCounter
	StageKiller
	StageGenQuiets
	StageQuiets
	StagePreBadNoisy
	StageBadNoisy
	StageDone
)

var stageNames = [...]string{
	StageNone:        "none",
	StageHashMove:    "hash",
	StageGenNoisy:    "gen-noisy",
	StageGoodNoisy:   "good-noisy",
	StageCounter:     "counter",
	StageKiller:      "killer",
	StageGenQuiets:   "gen-quiets",
	StageQuiets:      "quiets",
	StagePreBadNoisy: "pre-bad-noisy",
	StageBadNoisy:    "bad-noisy",
	StageDone:        "done",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

// PickerContext carries the read-only inputs a picker scores with.
type PickerContext struct {
	Pos  Position
	Hist *History
	// Cont holds the continuation tables of the previous two plies.
	Cont   [2]*PieceToHistory
	Params *Params
}

// MovePicker hands out the legal moves of one node, best first. A picker is
// used by one goroutine and thrown away when the node is done.
type MovePicker struct {
	ctx   PickerContext
	stage Stage

	hashMove, killer, counter gm.Move
	threshold                 int

	moves    [MaxMoves]gm.Move
	scores   [MaxMoves]int
	badNoisy [MaxMoves]gm.Move
	scratch  [MaxMoves]gm.Move

	nrNoisy, nrQuiets, nrBadNoisy int
	index                         int

	// emitted is the stage that produced the last move; lastScore its score.
	emitted   Stage
	lastScore int
}

// NewMovePicker builds a picker for the position in ctx.
func NewMovePicker(ctx PickerContext, hashMove, killer, counter gm.Move, threshold int) *MovePicker {
	mp := &MovePicker{}
	mp.Init(ctx, hashMove, killer, counter, threshold)
	return mp
}

// Init resets mp in place so the search can keep pickers on its own stack.
func (mp *MovePicker) Init(ctx PickerContext, hashMove, killer, counter gm.Move, threshold int) {
	mp.ctx = ctx
	if mp.ctx.Cont[0] == nil {
		mp.ctx.Cont[0] = &zeroContinuation
	}
	if mp.ctx.Cont[1] == nil {
		mp.ctx.Cont[1] = &zeroContinuation
	}
	mp.stage = StageHashMove
	mp.hashMove = hashMove
	if killer == hashMove {
		killer = NoMove
	}
	if counter == hashMove || counter == killer {
		counter = NoMove
	}
	mp.killer = killer
	mp.counter = counter
	mp.threshold = threshold
	mp.nrNoisy, mp.nrQuiets, mp.nrBadNoisy, mp.index = 0, 0, 0, 0
	mp.emitted, mp.lastScore = StageNone, 0
}

// Stage reports the stage the next call to Next starts from.
func (mp *MovePicker) Stage() Stage { return mp.stage }

// LastStage reports which stage produced the most recent move.
func (mp *MovePicker) LastStage() Stage { return mp.emitted }

// LastScore is the ordering score of the most recent move. It is zero for
// moves that are not scored (hash, counter, killer, bad noisy).
func (mp *MovePicker) LastScore() int { return mp.lastScore }

// Next returns the next move or NoMove once the picker is exhausted.
// noisyOnly implies skipQuiets and also suppresses losing captures.
func (mp *MovePicker) Next(skipQuiets, noisyOnly bool) gm.Move {
	skip := skipQuiets || noisyOnly
	for {
		prev := mp.stage
		next, m, emit := mp.step(skip, noisyOnly)
		mp.stage = next
		if emit {
			if m != NoMove {
				mp.emitted = prev
			}
			return m
		}
	}
}

// step runs one stage. It returns the following stage and, when emit is
// set, the move to hand out (possibly NoMove).
func (mp *MovePicker) step(skip, noisyOnly bool) (next Stage, m gm.Move, emit bool) {
	switch mp.stage {
	case StageHashMove:
		mp.lastScore = 0
		if mp.hashMove != NoMove && (!noisyOnly || isNoisy(mp.hashMove)) &&
			isLegalMove(mp.ctx.Pos, mp.hashMove, mp.scratch[:0]) {
			return StageGenNoisy, mp.hashMove, true
		}
		return StageGenNoisy, NoMove, false

	case StageGenNoisy:
		mp.nrNoisy = mp.scoreNoisy(genNoisy(mp.ctx.Pos, mp.moves[:0], mp.scratch[:0]))
		mp.index = 0
		return StageGoodNoisy, NoMove, false

	case StageGoodNoisy:
		if mp.index < mp.nrNoisy {
			mp.pickBest(mp.index, mp.nrNoisy)
			m, score := mp.moves[mp.index], mp.scores[mp.index]
			mp.index++
			if SEE(mp.ctx.Pos, m, mp.threshold, mp.ctx.Params) {
				mp.lastScore = score
				return StageGoodNoisy, m, true
			}
			mp.badNoisy[mp.nrBadNoisy] = m
			mp.nrBadNoisy++
			return StageGoodNoisy, NoMove, false
		}
		if skip {
			return StagePreBadNoisy, NoMove, false
		}
		return StageCounter, NoMove, false

	case StageCounter:
		mp.lastScore = 0
		if !skip && mp.counter != NoMove && isLegalMove(mp.ctx.Pos, mp.counter, mp.scratch[:0]) {
			return StageKiller, mp.counter, true
		}
		return StageKiller, NoMove, false

	case StageKiller:
		mp.lastScore = 0
		if !skip && mp.killer != NoMove && isLegalMove(mp.ctx.Pos, mp.killer, mp.scratch[:0]) {
			return StageGenQuiets, mp.killer, true
		}
		return StageGenQuiets, NoMove, false

	case StageGenQuiets:
		mp.nrQuiets = 0
		if !skip {
			mp.nrQuiets = mp.scoreQuiets(genQuiets(mp.ctx.Pos, mp.moves[:0]))
		}
		mp.index = 0
		return StageQuiets, NoMove, false

	case StageQuiets:
		if !skip && mp.index < mp.nrQuiets {
			mp.pickBest(mp.index, mp.nrQuiets)
			m := mp.moves[mp.index]
			mp.lastScore = mp.scores[mp.index]
			mp.index++
			return StageQuiets, m, true
		}
		return StagePreBadNoisy, NoMove, false

	case StagePreBadNoisy:
		if noisyOnly {
			return StagePreBadNoisy, NoMove, true
		}
		mp.index = 0
		return StageBadNoisy, NoMove, false

	case StageBadNoisy:
		mp.lastScore = 0
		if mp.index < mp.nrBadNoisy {
			m := mp.badNoisy[mp.index]
			mp.index++
			return StageBadNoisy, m, true
		}
		return StageDone, NoMove, true

	case StageDone:
		return StageDone, NoMove, true
	}
	panic(fmt.Sprintf("movepick: undefined stage %v", mp.stage))
}
