package engine

import (
	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// pickBest swaps the highest scored move in [from, to) to index from. The
// first of equal scores wins, which keeps the order deterministic.
func (mp *MovePicker) pickBest(from, to int) {
	bestIndex := from
	bestScore := mp.scores[from]
	for i := from + 1; i < to; i++ {
		if mp.scores[i] > bestScore {
			bestIndex = i
			bestScore = mp.scores[i]
		}
	}
	mp.moves[from], mp.moves[bestIndex] = mp.moves[bestIndex], mp.moves[from]
	mp.scores[from], mp.scores[bestIndex] = mp.scores[bestIndex], mp.scores[from]
}

func (mp *MovePicker) isSpecial(m gm.Move) bool {
	return m == mp.hashMove || m == mp.killer || m == mp.counter
}

// scoreNoisy copies list into mp.moves, dropping hash/killer/counter, and
// scores each capture or promotion. It returns the number kept.
func (mp *MovePicker) scoreNoisy(list []gm.Move) int {
	p := mp.ctx.Params
	h := mp.ctx.Hist
	n := 0
	for _, m := range list {
		if mp.isSpecial(m) {
			continue
		}
		score := 10 * p.SEEValues[capturedType(m)]
		if m.PromotionPieceType() == gm.PieceTypeQueen {
			score += p.QueenPromoBonus
		}
		score += h.Capture(m) + p.OrderingBias
		score += int(h.Nodes(nodesNoisy, m) / p.NodesSearchedDiv)

		mp.moves[n] = m
		mp.scores[n] = score
		n++
	}
	return n
}

// scoreQuiets is the quiet counterpart of scoreNoisy.
func (mp *MovePicker) scoreQuiets(list []gm.Move) int {
	p := mp.ctx.Params
	h := mp.ctx.Hist
	pos := mp.ctx.Pos
	cont0, cont1 := mp.ctx.Cont[0], mp.ctx.Cont[1]

	us := pos.SideToMove()
	them := us ^ 1
	enemyPawns := pos.Bitboards(them).Pawns
	pawnAttacks := pawnAttacksBB(them, enemyPawns)
	occ := pos.AllOccupancy()
	var kingRing uint64
	if ksq := kingSquare(pos, them); ksq != gm.NoSquare {
		kingRing = KingMoves[ksq] &^ pawnDoubleAttacks(them, enemyPawns)
	}

	n := 0
	for _, m := range list {
		if mp.isSpecial(m) {
			continue
		}
		piece := m.MovedPiece()
		pt := piece.Type()
		to := m.To()

		score := h.Quiet(us, m)
		score += int(cont0[piece][to]) + int(cont1[piece][to])

		if pt != gm.PieceTypePawn && pawnAttacks&PositionBB[to] != 0 {
			score -= p.PawnAttackedCoef * p.SEEValues[pt]
		}
		if pt == gm.PieceTypePawn {
			score += p.PawnPushBonus
		}
		if pt != gm.PieceTypeKing && pt != gm.PieceTypePawn {
			score += p.KingAttackBonus * popcount(attacksFrom(pt, us, to, occ)&kingRing)
		}
		score += int(h.Nodes(nodesQuiet, m)/p.NodesSearchedDiv) + p.OrderingBias

		mp.moves[n] = m
		mp.scores[n] = score
		n++
	}
	return n
}

// OrderedMove is one line of an ordering report.
type OrderedMove struct {
	Move  gm.Move
	Stage Stage
	Score int
}

// OrderingReport runs a picker over pos with empty history and no hash,
// killer or counter move, and returns every move in the order produced.
func OrderingReport(pos Position, params *Params) []OrderedMove {
	mp := NewMovePicker(PickerContext{Pos: pos, Hist: new(History), Params: params}, NoMove, NoMove, NoMove, 0)

	var out []OrderedMove
	for m := mp.Next(false, false); m != NoMove; m = mp.Next(false, false) {
		out = append(out, OrderedMove{Move: m, Stage: mp.LastStage(), Score: mp.LastScore()})
	}
	return out
}
