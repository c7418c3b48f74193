package engine

import (
	"math/bits"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
	"github.com/dylhunn/dragontoothmg"
)

const (
	bitboardFileA uint64 = 0x0101010101010101
	bitboardFileH uint64 = 0x8080808080808080
)

var PositionBB [65]uint64
var KingMoves [64]uint64
var KnightMasks [64]uint64
var PawnAttacks [2][64]uint64

func init() {
	initPositionBB()
	InitLMRTable()
}

func initPositionBB() {
	for i := 0; i < 64; i++ {
		PositionBB[i] = uint64(1) << uint(i)
		sqBB := PositionBB[i]

		// a1 = 0, so one rank up is a left shift by 8.
		left := (sqBB >> 1) &^ bitboardFileH
		right := (sqBB << 1) &^ bitboardFileA
		row := sqBB | left | right
		KingMoves[i] = (row | row<<8 | row>>8) &^ sqBB

		l2 := (sqBB >> 2) &^ (bitboardFileH | bitboardFileH>>1)
		r2 := (sqBB << 2) &^ (bitboardFileA | bitboardFileA<<1)
		h1 := left | right
		h2 := l2 | r2
		KnightMasks[i] = h1<<16 | h1>>16 | h2<<8 | h2>>8

		PawnAttacks[gm.White][i] = pawnAttacksBB(gm.White, sqBB)
		PawnAttacks[gm.Black][i] = pawnAttacksBB(gm.Black, sqBB)
	}
	// Index 64 is a sentinel for "no square" and stays empty.
	PositionBB[64] = 0
}

// pawnAttacksBB returns every square attacked by the given pawns.
func pawnAttacksBB(color gm.Color, pawns uint64) uint64 {
	east, west := pawnCaptureBitboards(color, pawns)
	return east | west
}

// pawnCaptureBitboards splits pawn attacks into the east and west capture sets.
func pawnCaptureBitboards(color gm.Color, pawns uint64) (east, west uint64) {
	if color == gm.White {
		east = (pawns << 9) &^ bitboardFileA
		west = (pawns << 7) &^ bitboardFileH
		return east, west
	}
	east = (pawns >> 7) &^ bitboardFileA
	west = (pawns >> 9) &^ bitboardFileH
	return east, west
}

// pawnDoubleAttacks returns squares hit by two pawns of the same colour.
func pawnDoubleAttacks(color gm.Color, pawns uint64) uint64 {
	east, west := pawnCaptureBitboards(color, pawns)
	return east & west
}

func bishopAttacks(sq gm.Square, occ uint64) uint64 {
	return dragontoothmg.CalculateBishopMoveBitboard(uint8(sq), occ)
}

func rookAttacks(sq gm.Square, occ uint64) uint64 {
	return dragontoothmg.CalculateRookMoveBitboard(uint8(sq), occ)
}

// attacksFrom returns the attack set of a piece of type pt standing on sq.
func attacksFrom(pt gm.PieceType, color gm.Color, sq gm.Square, occ uint64) uint64 {
	switch pt {
	case gm.PieceTypePawn:
		return PawnAttacks[color][sq]
	case gm.PieceTypeKnight:
		return KnightMasks[sq]
	case gm.PieceTypeBishop:
		return bishopAttacks(sq, occ)
	case gm.PieceTypeRook:
		return rookAttacks(sq, occ)
	case gm.PieceTypeQueen:
		return bishopAttacks(sq, occ) | rookAttacks(sq, occ)
	case gm.PieceTypeKing:
		return KingMoves[sq]
	}
	return 0
}

func popcount(bb uint64) int {
	return bits.OnesCount64(bb)
}

func lsb(bb uint64) gm.Square {
	return gm.Square(bits.TrailingZeros64(bb))
}
