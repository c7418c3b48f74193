package engine

import (
	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// =============================================================================
// SCORE CONSTANTS
// =============================================================================
const (
	MaxScore  int32 = 32500
	Checkmate int32 = 20000
	DrawScore int32 = 0
)

// =============================================================================
// MARGINS
// =============================================================================
var FutilityMargins = [8]int32{0, 120, 220, 320, 420, 520, 620, 720}

const DeltaMargin int32 = 200

func (w *SearchWorker) pickerContext(ply int) PickerContext {
	i := at(ply)
	return PickerContext{
		Pos:    &w.board,
		Hist:   &w.hist,
		Cont:   [2]*PieceToHistory{w.stack[i-1].cont, w.stack[i-2].cont},
		Params: w.ctl.params,
	}
}

// makeMove plays m and records it on the search stack. It reports false if
// the board rejected the move.
func (w *SearchWorker) makeMove(m gm.Move, ply int) (bool, gm.MoveState) {
	ok, st := w.board.MakeMove(m)
	if !ok {
		return false, st
	}
	e := &w.stack[at(ply)]
	e.move = m
	e.cont = w.hist.Continuation(m.MovedPiece(), m.To())
	w.states.push(&w.board)
	return true, st
}

func (w *SearchWorker) unmakeMove(m gm.Move, st gm.MoveState) {
	w.states.pop()
	w.board.UnmakeMove(m, st)
}

func (w *SearchWorker) alphabeta(alpha, beta int32, depth int8, ply int, didNull bool) int32 {
	w.checkForStop()

	b := &w.board
	p := w.ctl.params
	pvLine := &w.pvs[ply]
	pvLine.Clear()
	w.selDepth = Max(w.selDepth, ply)

	isRoot := ply == 0
	isPVNode := beta-alpha > 1

	if ply >= MaxDepth-1 {
		return Evaluate(b)
	}

	if !isRoot {
		if w.states.isDraw() {
			return DrawScore
		}
		// Mate distance pruning
		alpha = Max(alpha, -MaxScore+int32(ply))
		beta = Min(beta, MaxScore-int32(ply)-1)
		if alpha >= beta {
			return alpha
		}
	}

	us := b.SideToMove()
	inCheck := b.InCheck(us)

	// Check extension
	if inCheck {
		depth++
	}

	if depth <= 0 {
		return w.quiescence(alpha, beta, ply)
	}

	/*
		TRANSPOSITION TABLE LOOKUP
	*/
	posHash := b.Hash()
	var ttMove gm.Move
	if ttEntry, ttHit := w.ctl.tt.Probe(posHash); ttHit {
		ttMove = ttEntry.Move
		if !isRoot && !isPVNode {
			if usable, ttScore := ttEntry.useEntry(depth, alpha, beta, ply); usable {
				w.stats.TTCutoffs++
				return ttScore
			}
		}
	}

	i := at(ply)
	staticEval := -MaxScore
	if !inCheck {
		staticEval = Evaluate(b)
	}
	w.stack[i].staticEval = staticEval
	improving := !inCheck && ply >= 2 && staticEval > w.stack[i-2].staticEval

	/*
		If our position is so good that even after giving a margin to the opponent,
		we still beat beta, we can safely prune.
	*/
	if !inCheck && !isPVNode && !isRoot && depth <= 7 && abs(beta) < Checkmate {
		rfpMargin := p.RFPMargin * int32(depth)
		if improving {
			rfpMargin -= p.RFPMargin / 2
		}
		if staticEval-rfpMargin >= beta {
			w.stats.StaticNullCutoffs++
			return staticEval - rfpMargin
		}
	}

	/*
		NULL MOVE PRUNING
	*/
	if !inCheck && !isPVNode && !isRoot && !didNull && depth >= p.NullMoveMinDepth &&
		staticEval >= beta && hasNonPawnMaterial(b) {
		R := Min(3+depth/3, depth-1)

		w.stack[i].move = NoMove
		w.stack[i].cont = &zeroContinuation
		st := b.MakeNullMove()
		w.states.push(b)
		score := -w.alphabeta(-beta, -beta+1, depth-1-R, ply+1, true)
		w.states.pop()
		b.UnmakeNullMove(st)

		if score >= beta {
			w.stats.NullMoveCutoffs++
			if score > Checkmate {
				score = beta
			}
			return score
		}
	}

	killer := w.killers.Get(ply)
	counter := w.counters.Get(w.stack[i-1].move)
	mp := &w.pickers[ply]
	mp.Init(w.pickerContext(ply), ttMove, killer, counter, 0)

	lmpLimit := p.LMPBase + int(depth)*int(depth)
	if !improving {
		lmpLimit /= 2
	}

	var quiets, noisies [64]gm.Move
	nrQuiets, nrNoisies := 0, 0

	bestScore := -MaxScore
	bestMove := NoMove
	var ttFlag int8 = AlphaFlag
	legalMoves := 0
	skipQuiets := false

	for move := mp.Next(skipQuiets, false); move != NoMove; move = mp.Next(skipQuiets, false) {
		noisy := isNoisy(move)

		/*
			LATE MOVE PRUNING and FUTILITY PRUNING: once a quiet move is
			hopeless, every later quiet move is skipped too.
		*/
		if !isRoot && !isPVNode && !inCheck && !noisy && bestScore > -Checkmate {
			if depth <= 8 && legalMoves >= lmpLimit {
				w.stats.LateMovePrunes++
				skipQuiets = true
				continue
			}
			if depth < int8(len(FutilityMargins)) && abs(alpha) < Checkmate && staticEval+FutilityMargins[depth] <= alpha {
				w.stats.FutilityPrunes++
				skipQuiets = true
				continue
			}
		}

		startNodes := w.nodes.Load()
		ok, st := w.makeMove(move, ply)
		if !ok {
			continue
		}
		legalMoves++

		/*
			PRINCIPAL VARIATION SEARCH with LATE MOVE REDUCTIONS
		*/
		var score int32
		if legalMoves == 1 {
			score = -w.alphabeta(-beta, -alpha, depth-1, ply+1, false)
		} else {
			var reduct int8
			if !noisy && !inCheck {
				histScore := w.hist.Quiet(us, move)
				reduct = computeLMRReduction(depth, legalMoves, isPVNode, histScore, improving)
				if reduct > 0 && (move == killer || move == counter) {
					reduct--
				}
			}
			score = -w.alphabeta(-alpha-1, -alpha, depth-1-reduct, ply+1, false)
			if score > alpha && reduct > 0 {
				score = -w.alphabeta(-alpha-1, -alpha, depth-1, ply+1, false)
			}
			if score > alpha && score < beta {
				score = -w.alphabeta(-beta, -alpha, depth-1, ply+1, false)
			}
		}

		w.unmakeMove(move, st)

		kind := nodesQuiet
		if noisy {
			kind = nodesNoisy
		}
		w.hist.addNodes(kind, move, w.nodes.Load()-startNodes)

		if score > bestScore {
			bestScore = score
			if score > alpha {
				bestMove = move
				alpha = score
				ttFlag = ExactFlag
				pvLine.Update(move, w.pvs[ply+1])
			}
		}

		// Beta cutoff
		if alpha >= beta {
			ttFlag = BetaFlag
			w.stats.BetaCutoffs++
			if legalMoves == 1 {
				w.stats.FirstMoveCutoffs++
			}
			w.updateHistories(ply, depth, move, quiets[:nrQuiets], noisies[:nrNoisies])
			break
		}

		if noisy {
			if nrNoisies < len(noisies) {
				noisies[nrNoisies] = move
				nrNoisies++
			}
		} else if nrQuiets < len(quiets) {
			quiets[nrQuiets] = move
			nrQuiets++
		}
	}

	// Checkmate/stalemate check
	if legalMoves == 0 {
		if inCheck {
			return -MaxScore + int32(ply)
		}
		return DrawScore
	}

	w.ctl.tt.Store(posHash, depth, ply, bestMove, bestScore, ttFlag)
	return bestScore
}

// updateHistories rewards the move that caused a cutoff and penalizes the
// moves of the same kind tried before it.
func (w *SearchWorker) updateHistories(ply int, depth int8, best gm.Move, quiets, noisies []gm.Move) {
	bonus := statBonus(depth)
	limit := w.ctl.params.HistoryMax
	us := w.board.SideToMove()
	i := at(ply)
	ss := w.stack[:]

	if !isNoisy(best) {
		w.killers.Insert(best, ply)
		w.counters.Store(w.stack[i-1].move, best)
		w.hist.updateQuiet(us, best, bonus, limit)
		updateContinuation(ss, i, best, bonus, limit)
		for _, m := range quiets {
			w.hist.updateQuiet(us, m, -bonus, limit)
			updateContinuation(ss, i, m, -bonus, limit)
		}
	} else {
		w.hist.updateCapture(best, bonus, limit)
	}
	for _, m := range noisies {
		w.hist.updateCapture(m, -bonus, limit)
	}
}

func (w *SearchWorker) quiescence(alpha, beta int32, ply int) int32 {
	w.checkForStop()

	b := &w.board
	pvLine := &w.pvs[ply]
	pvLine.Clear()
	w.selDepth = Max(w.selDepth, ply)

	if ply >= MaxDepth-1 {
		return Evaluate(b)
	}
	if w.states.isDraw() {
		return DrawScore
	}

	inCheck := b.InCheck(b.SideToMove())
	posHash := b.Hash()
	var ttMove gm.Move
	if ttEntry, ttHit := w.ctl.tt.Probe(posHash); ttHit {
		if usable, ttScore := ttEntry.useEntry(0, alpha, beta, ply); usable && beta-alpha == 1 {
			w.stats.TTCutoffs++
			return ttScore
		}
		ttMove = ttEntry.Move
	}

	bestScore := -MaxScore + int32(ply)
	standpat := -MaxScore
	if !inCheck {
		standpat = Evaluate(b)
		// Stand-pat pruning (not when in check)
		if standpat >= beta {
			w.stats.QStandPatCutoffs++
			return standpat
		}
		alpha = Max(alpha, standpat)
		bestScore = standpat
	}
	w.stack[at(ply)].staticEval = standpat

	// Out of check only captures and promotions are searched.
	noisyOnly := !inCheck
	mp := &w.pickers[ply]
	mp.Init(w.pickerContext(ply), ttMove, NoMove, NoMove, w.ctl.params.QuiescenceSEEMargin)

	bestMove := NoMove
	var ttFlag int8 = AlphaFlag
	movesSearched := 0

	for move := mp.Next(noisyOnly, noisyOnly); move != NoMove; move = mp.Next(noisyOnly, noisyOnly) {
		// Delta pruning
		if noisyOnly && !isPromotion(move) &&
			standpat+int32(pieceValueEG[capturedType(move)])+DeltaMargin < alpha {
			continue
		}

		ok, st := w.makeMove(move, ply)
		if !ok {
			continue
		}
		movesSearched++
		score := -w.quiescence(-beta, -alpha, ply+1)
		w.unmakeMove(move, st)

		if score > bestScore {
			bestScore = score
			if score > alpha {
				alpha = score
				bestMove = move
				ttFlag = ExactFlag
				pvLine.Update(move, w.pvs[ply+1])
			}
		}
		if alpha >= beta {
			w.stats.QBetaCutoffs++
			ttFlag = BetaFlag
			break
		}
	}

	// If in check and no moves, it's checkmate
	if inCheck && movesSearched == 0 {
		return -MaxScore + int32(ply)
	}

	w.ctl.tt.Store(posHash, 0, ply, bestMove, bestScore, ttFlag)
	return bestScore
}
