package engine

import (
	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// Game phase weights for interpolation
const (
	PawnPhase   = 0
	KnightPhase = 1
	BishopPhase = 1
	RookPhase   = 2
	QueenPhase  = 4
	TotalPhase  = PawnPhase*16 + KnightPhase*4 + BishopPhase*4 + RookPhase*4 + QueenPhase*2
)

var pieceValueMG = [7]int{
	gm.PieceTypeKing: 0, gm.PieceTypePawn: 88, gm.PieceTypeKnight: 316, gm.PieceTypeBishop: 331, gm.PieceTypeRook: 494, gm.PieceTypeQueen: 993,
}
var pieceValueEG = [7]int{
	gm.PieceTypeKing: 0, gm.PieceTypePawn: 111, gm.PieceTypeKnight: 305, gm.PieceTypeBishop: 333, gm.PieceTypeRook: 535, gm.PieceTypeQueen: 963,
}
var mobilityValueMG = [7]int{
	gm.PieceTypeKnight: 2, gm.PieceTypeBishop: 3, gm.PieceTypeRook: 2, gm.PieceTypeQueen: 1,
}
var mobilityValueEG = [7]int{
	gm.PieceTypeKnight: 3, gm.PieceTypeBishop: 2, gm.PieceTypeRook: 4, gm.PieceTypeQueen: 4,
}
var phaseWeight = [7]int{
	gm.PieceTypeKnight: KnightPhase, gm.PieceTypeBishop: BishopPhase, gm.PieceTypeRook: RookPhase, gm.PieceTypeQueen: QueenPhase,
}

// TempoBonus is added for the side to move.
const TempoBonus = 10

// Evaluate scores pos from the side to move's point of view: tapered material
// plus mobility into squares not covered by enemy pawns.
func Evaluate(pos Position) int32 {
	var mg, eg [2]int
	phase := 0
	occ := pos.AllOccupancy()

	for c := gm.White; c <= gm.Black; c++ {
		bbs := pos.Bitboards(c)
		enemyPawnAttacks := pawnAttacksBB(c^1, pos.Bitboards(c^1).Pawns)
		byType := [7]uint64{0, bbs.Pawns, bbs.Knights, bbs.Bishops, bbs.Rooks, bbs.Queens, 0}

		for pt := gm.PieceTypePawn; pt <= gm.PieceTypeQueen; pt++ {
			for x := byType[pt]; x != 0; x &= x - 1 {
				sq := lsb(x)
				mg[c] += pieceValueMG[pt]
				eg[c] += pieceValueEG[pt]
				phase += phaseWeight[pt]
				if pt == gm.PieceTypePawn {
					continue
				}
				mobility := popcount(attacksFrom(pt, c, sq, occ) &^ bbs.All &^ enemyPawnAttacks)
				mg[c] += mobility * mobilityValueMG[pt]
				eg[c] += mobility * mobilityValueEG[pt]
			}
		}
	}

	phase = Min(phase, TotalPhase)
	mgScore := mg[gm.White] - mg[gm.Black]
	egScore := eg[gm.White] - eg[gm.Black]
	score := (mgScore*phase + egScore*(TotalPhase-phase)) / TotalPhase

	if pos.SideToMove() == gm.Black {
		score = -score
	}
	return int32(score + TempoBonus)
}
