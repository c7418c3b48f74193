package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// errSearchStopped unwinds a worker's recursion once a stop is observed.
var errSearchStopped = errors.New("search stopped")

// SearchInfo is one progress report of the principal worker.
type SearchInfo struct {
	Depth    int
	SelDepth int
	Score    int32
	Nodes    uint64
	Time     time.Duration
	Hashfull int
	PV       PVLine
}

// String formats the report as a UCI info line.
func (info SearchInfo) String() string {
	ms := info.Time.Milliseconds()
	nps := info.Nodes * 1000 / uint64(Max(ms, 1))
	return fmt.Sprintf("info depth %d seldepth %d score %s nodes %d nps %d hashfull %d time %d pv %s",
		info.Depth, info.SelDepth, getMateOrCPScore(info.Score), info.Nodes, nps, info.Hashfull, ms, info.PV.String())
}

// SearchWorker runs one lazy-SMP search thread. Everything but ctl is owned
// by the worker's goroutine while a search is running.
type SearchWorker struct {
	id        int
	principal bool
	ctl       *control
	ctx       context.Context

	board    gm.Board
	hist     History
	killers  KillerTable
	counters CounterTable
	stack    searchStack
	states   stateStack
	pvs      [MaxDepth + 1]PVLine
	pickers  [MaxDepth + 1]MovePicker
	stats    CutStatistics

	nodes          atomic.Uint64
	selDepth       int
	rootDepth      int
	completedDepth int
	bestScore      int32
	pv             PVLine
}

func newSearchWorker(id int, ctl *control) *SearchWorker {
	w := &SearchWorker{id: id, principal: id == 0, ctl: ctl}
	w.stack.clear()
	return w
}

// ID is the worker's index; zero is the principal.
func (w *SearchWorker) ID() int { return w.id }

// Nodes is safe to call from any goroutine.
func (w *SearchWorker) Nodes() uint64 { return w.nodes.Load() }

// Clear resets every table a search mutates. Nothing is reallocated.
func (w *SearchWorker) Clear() {
	w.ClearHistory()
	w.ClearKillers()
	w.ClearStack()
	w.nodes.Store(0)
	w.stats = CutStatistics{}
	w.selDepth, w.rootDepth, w.completedDepth = 0, 0, 0
	w.bestScore = 0
	w.pv.Clear()
}

func (w *SearchWorker) ClearKillers() {
	w.killers.Clear()
	w.counters.Clear()
}

func (w *SearchWorker) ClearHistory() {
	w.hist.Clear()
}

func (w *SearchWorker) ClearStack() {
	w.stack.clear()
	for i := range w.pvs {
		w.pvs[i].Clear()
	}
}

// setup copies the root position and game history into the worker.
func (w *SearchWorker) setup(pos *gm.Board, history []State) {
	w.board = *pos
	w.Clear()
	w.states.reset(history)
	if len(w.states.states) == 0 || w.states.states[len(w.states.states)-1].Hash != pos.Hash() {
		w.states.push(pos)
		w.states.rootIndex = len(w.states.states) - 1
	}
}

// BestMove returns the first move of the last completed iteration.
func (w *SearchWorker) BestMove() gm.Move { return w.pv.GetPVMove() }

// checkForStop counts a node and, once every StopCheckInterval nodes, polls
// the shared stop state. The principal also enforces the limits.
func (w *SearchWorker) checkForStop() {
	n := w.nodes.Add(1)
	if n&w.ctl.checkMask != 0 {
		return
	}
	if w.principal && w.ctl.timer.HardExceeded(w.ctl.totalNodes()) {
		w.ctl.terminate(TerminatedByLimits)
	}
	if w.ctl.shouldStop(w.principal) || w.ctx.Err() != nil {
		panic(errSearchStopped)
	}
}

// Run performs iterative deepening until a limit or a stop is reached.
// Helpers skew their starting depth so that threads spread over depths.
func (w *SearchWorker) Run(ctx context.Context) {
	w.ctx = ctx
	log.Debug().Int("thread", w.id).Msg("worker-started")

	startDepth := 1
	if !w.principal {
		startDepth += w.id % 2
	}

	var prevScore int32
	for depth := startDepth; depth <= w.ctl.timer.MaxDepth(); depth++ {
		if w.principal && depth > 1 && w.ctl.timer.SoftExceeded() {
			w.ctl.terminate(TerminatedByLimits)
			break
		}
		w.rootDepth = depth
		w.selDepth = 0

		score, ok := w.aspiration(int8(depth), prevScore)
		if !ok {
			break
		}
		prevScore = score
		w.bestScore = score
		w.completedDepth = depth
		w.pv = w.pvs[0].Clone()

		if w.principal {
			w.ctl.reportInfo(SearchInfo{
				Depth:    depth,
				SelDepth: w.selDepth,
				Score:    score,
				Nodes:    w.ctl.totalNodes(),
				Time:     w.ctl.timer.Elapsed(),
				Hashfull: w.ctl.tt.Hashfull(),
				PV:       w.pv,
			})
		}
		if isMateScore(score) && !w.ctl.limits.Infinite {
			break
		}
	}

	log.Debug().
		Int("thread", w.id).
		Int("depth", w.completedDepth).
		Uint64("nodes", w.nodes.Load()).
		Msg("worker-done")
}

// aspiration searches depth with a window around prev, widening on failure.
// ok is false when the iteration was cut short by a stop.
func (w *SearchWorker) aspiration(depth int8, prev int32) (score int32, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if r != errSearchStopped {
				panic(r)
			}
			score, ok = 0, false
		}
	}()

	window := w.ctl.params.AspirationWindow
	alpha, beta := -MaxScore, MaxScore
	if depth >= 4 && !isMateScore(prev) {
		alpha = Max(prev-window, -MaxScore)
		beta = Min(prev+window, MaxScore)
	}

	for {
		score = w.alphabeta(alpha, beta, depth, 0, false)
		if (score > alpha && score < beta) || (alpha == -MaxScore && beta == MaxScore) {
			return score, true
		}
		window *= 2
		if score <= alpha {
			alpha = Max(score-window, -MaxScore)
		} else {
			beta = Min(score+window, MaxScore)
		}
		if window > MaxScore {
			alpha, beta = -MaxScore, MaxScore
		}
	}
}
