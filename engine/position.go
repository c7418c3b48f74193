package engine

import (
	"strings"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// NoMove is the "no move" sentinel returned by the picker once exhausted.
const NoMove gm.Move = 0

// MaxMoves bounds the number of legal moves in any position.
const MaxMoves = 256

// Position is the board collaborator consumed by the picker, SEE and the
// search. *gm.Board satisfies it.
type Position interface {
	SideToMove() gm.Color
	PieceAt(sq gm.Square) gm.Piece
	Bitboards(color gm.Color) gm.Bitboards
	AllOccupancy() uint64
	ColorOccupancy(c gm.Color) uint64
	EnPassantSquare() gm.Square
	Hash() uint64
	HalfmoveClock() int
	InCheck(color gm.Color) bool

	GenerateMovesInto(dst []gm.Move) []gm.Move
	GenerateCapturesInto(dst []gm.Move) []gm.Move
	GenerateQuietsInto(dst []gm.Move) []gm.Move
}

var _ Position = (*gm.Board)(nil)

func isPromotion(m gm.Move) bool {
	return m.PromotionPieceType() != gm.PieceTypeNone
}

func isCapture(m gm.Move) bool {
	return m.CapturedPiece() != gm.NoPiece || m.Flags() == gm.FlagEnPassant
}

// isNoisy reports whether m belongs to the noisy set: captures and promotions.
func isNoisy(m gm.Move) bool {
	return isCapture(m) || isPromotion(m)
}

// genNoisy appends all legal captures (en passant and capture-promotions
// included) and all non-capturing promotions to dst. The generators truncate
// the slice they are given, so quiets are produced in scratch and only the
// promotions are copied over.
func genNoisy(pos Position, dst, scratch []gm.Move) []gm.Move {
	dst = append(dst, pos.GenerateCapturesInto(dst[len(dst):])...)
	for _, m := range pos.GenerateQuietsInto(scratch[:0]) {
		if isPromotion(m) {
			dst = append(dst, m)
		}
	}
	return dst
}

// genQuiets appends all legal non-capturing, non-promoting moves to dst.
func genQuiets(pos Position, dst []gm.Move) []gm.Move {
	for _, m := range pos.GenerateQuietsInto(dst[len(dst):]) {
		if !isPromotion(m) {
			dst = append(dst, m)
		}
	}
	return dst
}

// isLegalMove checks a move taken from a table (hash, killer, counter) against
// the current position. Such moves may come from another position entirely.
func isLegalMove(pos Position, m gm.Move, scratch []gm.Move) bool {
	if m == NoMove {
		return false
	}
	piece := m.MovedPiece()
	if piece == gm.NoPiece || pos.PieceAt(m.From()) != piece || piece.Color() != pos.SideToMove() {
		return false
	}
	if m.Flags() == gm.FlagEnPassant {
		if pos.EnPassantSquare() != m.To() {
			return false
		}
	} else if pos.PieceAt(m.To()) != m.CapturedPiece() {
		return false
	}
	for _, legal := range pos.GenerateMovesInto(scratch[:0]) {
		if legal == m {
			return true
		}
	}
	return false
}

func kingSquare(pos Position, color gm.Color) gm.Square {
	kings := pos.Bitboards(color).Kings
	if kings == 0 {
		return gm.NoSquare
	}
	return lsb(kings)
}

// attackersTo returns pieces of both colours attacking sq under occupancy occ.
func attackersTo(pos Position, sq gm.Square, occ uint64) uint64 {
	w := pos.Bitboards(gm.White)
	b := pos.Bitboards(gm.Black)
	diag := w.Bishops | w.Queens | b.Bishops | b.Queens
	orth := w.Rooks | w.Queens | b.Rooks | b.Queens
	return (PawnAttacks[gm.Black][sq] & w.Pawns) |
		(PawnAttacks[gm.White][sq] & b.Pawns) |
		(KnightMasks[sq] & (w.Knights | b.Knights)) |
		(KingMoves[sq] & (w.Kings | b.Kings)) |
		(bishopAttacks(sq, occ) & diag) |
		(rookAttacks(sq, occ) & orth)
}

// UCIMove formats a move in lowercase long algebraic notation.
func UCIMove(m gm.Move) string {
	if m == NoMove {
		return "0000"
	}
	return strings.ToLower(m.String())
}

// ParseUCIMove resolves a UCI move string against the legal moves of b.
func ParseUCIMove(b *gm.Board, s string) (gm.Move, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range b.GenerateMoves() {
		if UCIMove(m) == s {
			return m, true
		}
	}
	return NoMove, false
}
