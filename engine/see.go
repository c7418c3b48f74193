package engine

import (
	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// SEE reports whether the exchange started by m on its destination square
// nets at least threshold material for the side to move.
func SEE(pos Position, m gm.Move, threshold int, p *Params) bool {
	from, to := m.From(), m.To()
	flag := m.Flags()

	nextVictim := pos.PieceAt(from).Type()
	captured := pos.PieceAt(to).Type()
	if flag == gm.FlagEnPassant {
		captured = gm.PieceTypePawn
	}

	score := p.SEEValues[captured] - threshold
	if isPromotion(m) {
		promo := m.PromotionPieceType()
		score += p.SEEValues[promo] - p.SEEValues[gm.PieceTypePawn]
		nextVictim = promo
	}
	if score < 0 {
		return false
	}

	score -= p.SEEValues[nextVictim]
	if score >= 0 {
		return true
	}

	w := pos.Bitboards(gm.White)
	b := pos.Bitboards(gm.Black)
	diag := w.Bishops | w.Queens | b.Bishops | b.Queens
	orth := w.Rooks | w.Queens | b.Rooks | b.Queens
	colors := [2]uint64{w.All, b.All}
	byType := [2][7]uint64{
		{0, w.Pawns, w.Knights, w.Bishops, w.Rooks, w.Queens, w.Kings},
		{0, b.Pawns, b.Knights, b.Bishops, b.Rooks, b.Queens, b.Kings},
	}

	occ := (pos.AllOccupancy() ^ PositionBB[from]) | PositionBB[to]
	if flag == gm.FlagEnPassant {
		occ &^= PositionBB[epCaptureSquare(to, pos.SideToMove())]
	}

	att := attackersTo(pos, to, occ) & occ
	stm := pos.SideToMove()
	col := stm ^ 1

	for {
		myAtt := att & colors[col]
		if myAtt == 0 {
			break
		}

		victim := gm.PieceTypePawn
		for ; victim < gm.PieceTypeKing; victim++ {
			if myAtt&byType[col][victim] != 0 {
				break
			}
		}
		occ ^= PositionBB[lsb(myAtt&byType[col][victim])]

		if victim == gm.PieceTypePawn || victim == gm.PieceTypeBishop || victim == gm.PieceTypeQueen {
			att |= bishopAttacks(to, occ) & diag
		}
		if victim == gm.PieceTypeRook || victim == gm.PieceTypeQueen {
			att |= rookAttacks(to, occ) & orth
		}
		att &= occ
		col ^= 1

		score = -score - 1 - p.SEEValues[victim]
		if score >= 0 {
			// A king cannot capture into a square the opponent still attacks.
			if victim == gm.PieceTypeKing && att&colors[col] != 0 {
				col ^= 1
			}
			break
		}
	}

	return stm != col
}

// epCaptureSquare is the square of the pawn removed by an en-passant capture.
func epCaptureSquare(to gm.Square, mover gm.Color) gm.Square {
	if mover == gm.White {
		return to - 8
	}
	return to + 8
}
