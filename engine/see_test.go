package engine

import (
	"math/rand"
	"testing"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

var testFENs = []string{
	gm.FENStartPos,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pn1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
}

func mustFEN(t testing.TB, fen string) *gm.Board {
	t.Helper()
	b, err := gm.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse FEN %q: %v", fen, err)
	}
	return b
}

func mustMove(t testing.TB, b *gm.Board, uci string) gm.Move {
	t.Helper()
	m, ok := ParseUCIMove(b, uci)
	if !ok {
		t.Fatalf("move %s is not legal in %s", uci, b.ToFEN())
	}
	return m
}

func TestSEEQueenTakesPawnDefendedByPawn(t *testing.T) {
	b := mustFEN(t, "4k3/8/2p5/3p4/8/8/3Q4/4K3 w - - 0 1")
	m := mustMove(t, b, "d2d5")
	if SEE(b, m, 0, DefaultParams()) {
		t.Fatalf("Qxd5 defended by a pawn should fail SEE at threshold 0")
	}
}

func TestSEERookTakesPawnDefendedByBishop(t *testing.T) {
	p := DefaultParams()
	b := mustFEN(t, "4k3/8/2b5/3p4/8/8/8/3RK3 w - - 0 1")
	m := mustMove(t, b, "d1d5")

	// The bishop recaptures, so Rxd5 is a losing trade and fails at
	// threshold 0. Only thresholds down to the rook-for-pawn loss pass.
	// Rook for pawn nets P - R = -428 with the default values.
	loss := p.SEEValues[gm.PieceTypePawn] - p.SEEValues[gm.PieceTypeRook]
	if SEE(b, m, 0, p) {
		t.Fatalf("Rxd5 should fail SEE at threshold 0")
	}
	if !SEE(b, m, loss, p) {
		t.Fatalf("Rxd5 should pass SEE at threshold %d", loss)
	}
	if SEE(b, m, loss+1, p) {
		t.Fatalf("Rxd5 should fail SEE at threshold %d", loss+1)
	}
}

func TestSEEAccountsForRevealedSlider(t *testing.T) {
	p := DefaultParams()
	b := mustFEN(t, "6k1/4q1p1/4n3/8/2B5/8/8/6K1 w - - 0 1")
	m := mustMove(t, b, "c4e6")

	// The queen recaptures, so the trade is bishop for knight.
	diff := p.SEEValues[gm.PieceTypeKnight] - p.SEEValues[gm.PieceTypeBishop]
	if SEE(b, m, diff+1, p) {
		t.Fatalf("expected SEE to fail at threshold %d", diff+1)
	}
	if !SEE(b, m, diff, p) {
		t.Fatalf("expected SEE to pass at threshold %d", diff)
	}
}

func TestSEEHandlesEnPassantCapture(t *testing.T) {
	p := DefaultParams()
	b := mustFEN(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	m := mustMove(t, b, "e5d6")
	if m.Flags() != gm.FlagEnPassant {
		t.Fatalf("expected en passant flag, got %d", m.Flags())
	}

	pawn := p.SEEValues[gm.PieceTypePawn]
	if !SEE(b, m, pawn, p) {
		t.Fatalf("undefended en passant should win a pawn")
	}
	if SEE(b, m, pawn+1, p) {
		t.Fatalf("en passant cannot win more than a pawn")
	}
}

func TestSEEEnPassantRecapturedByRook(t *testing.T) {
	p := DefaultParams()
	b := mustFEN(t, "3rk3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	m := mustMove(t, b, "e5d6")
	if !SEE(b, m, 0, p) {
		t.Fatalf("pawn for pawn should break even")
	}
	if SEE(b, m, 1, p) {
		t.Fatalf("recapture by the rook should keep the gain at zero")
	}
}

func TestSEEKingCannotRecaptureDefendedSquare(t *testing.T) {
	p := DefaultParams()
	// Nxf7: the king may not take back because the bishop on c4 guards f7.
	b := mustFEN(t, "4k3/5p2/8/6N1/2B5/8/8/4K3 w - - 0 1")
	m := mustMove(t, b, "g5f7")
	if !SEE(b, m, p.SEEValues[gm.PieceTypePawn], p) {
		t.Fatalf("Nxf7 should win a clean pawn")
	}
}

func TestSEEKingRecaptureRevertedWhenSquareAttacked(t *testing.T) {
	p := DefaultParams()
	// A cheap king makes Kxf7 look like a winning recapture.
	p.SEEValues[gm.PieceTypeKing] = 0
	pawn := p.SEEValues[gm.PieceTypePawn]

	// The bishop on c4 still hits f7, so the king capture is not allowed.
	b := mustFEN(t, "4k3/5p2/8/6N1/2B5/8/8/4K3 w - - 0 1")
	if !SEE(b, mustMove(t, b, "g5f7"), pawn, p) {
		t.Fatalf("Nxf7 should win the pawn: Kxf7 walks into the bishop")
	}

	// Without the bishop the king takes back and the knight is lost.
	b = mustFEN(t, "4k3/5p2/8/6N1/8/8/8/4K3 w - - 0 1")
	if SEE(b, mustMove(t, b, "g5f7"), pawn, p) {
		t.Fatalf("Nxf7 should fail when the king can recapture safely")
	}
}

func TestSEEPromotion(t *testing.T) {
	p := DefaultParams()
	b := mustFEN(t, "4k3/1P6/8/8/8/8/8/4K3 w - - 0 1")
	m := mustMove(t, b, "b7b8q")
	gain := p.SEEValues[gm.PieceTypeQueen] - p.SEEValues[gm.PieceTypePawn]
	if !SEE(b, m, gain, p) {
		t.Fatalf("unopposed promotion should gain %d", gain)
	}
	if SEE(b, m, gain+1, p) {
		t.Fatalf("unopposed promotion cannot gain more than %d", gain)
	}
}

// seeSwap is a plain swap-list evaluation of the exchange on m's target
// square with the same attacker order, x-ray and king rules as SEE.
func seeSwap(pos Position, m gm.Move, p *Params) int {
	from, to := m.From(), m.To()
	captured := pos.PieceAt(to).Type()
	if m.Flags() == gm.FlagEnPassant {
		captured = gm.PieceTypePawn
	}

	var gain [40]int
	gain[0] = p.SEEValues[captured]
	onSquare := pos.PieceAt(from).Type()
	if isPromotion(m) {
		onSquare = m.PromotionPieceType()
		gain[0] += p.SEEValues[onSquare] - p.SEEValues[gm.PieceTypePawn]
	}

	w := pos.Bitboards(gm.White)
	bl := pos.Bitboards(gm.Black)
	diag := w.Bishops | w.Queens | bl.Bishops | bl.Queens
	orth := w.Rooks | w.Queens | bl.Rooks | bl.Queens
	colors := [2]uint64{w.All, bl.All}
	byType := [2][7]uint64{
		{0, w.Pawns, w.Knights, w.Bishops, w.Rooks, w.Queens, w.Kings},
		{0, bl.Pawns, bl.Knights, bl.Bishops, bl.Rooks, bl.Queens, bl.Kings},
	}

	occ := (pos.AllOccupancy() ^ PositionBB[from]) | PositionBB[to]
	if m.Flags() == gm.FlagEnPassant {
		occ &^= PositionBB[epCaptureSquare(to, pos.SideToMove())]
	}
	att := attackersTo(pos, to, occ) & occ
	side := pos.SideToMove() ^ 1

	d := 0
	for {
		mine := att & colors[side]
		if mine == 0 {
			break
		}
		var pt gm.PieceType
		for pt = gm.PieceTypePawn; pt <= gm.PieceTypeKing; pt++ {
			if mine&byType[side][pt] != 0 {
				break
			}
		}
		nextOcc := occ ^ PositionBB[lsb(mine&byType[side][pt])]
		nextAtt := att
		if pt == gm.PieceTypePawn || pt == gm.PieceTypeBishop || pt == gm.PieceTypeQueen {
			nextAtt |= bishopAttacks(to, nextOcc) & diag
		}
		if pt == gm.PieceTypeRook || pt == gm.PieceTypeQueen {
			nextAtt |= rookAttacks(to, nextOcc) & orth
		}
		nextAtt &= nextOcc
		if pt == gm.PieceTypeKing && nextAtt&colors[side^1] != 0 {
			break
		}

		d++
		gain[d] = p.SEEValues[onSquare] - gain[d-1]
		onSquare = pt
		occ, att = nextOcc, nextAtt
		side ^= 1
	}
	for ; d > 0; d-- {
		gain[d-1] = -Max(-gain[d-1], gain[d])
	}
	return gain[0]
}

func TestSEEMatchesSwapList(t *testing.T) {
	p := DefaultParams()
	rng := rand.New(rand.NewSource(7))
	checked := 0

	for _, fen := range testFENs {
		b := mustFEN(t, fen)
		for ply := 0; ply < 60; ply++ {
			for _, m := range genNoisy(b, nil, nil) {
				want := seeSwap(b, m, p) >= 0
				if got := SEE(b, m, 0, p); got != want {
					t.Fatalf("%s: SEE(%s, 0) = %v, swap list says %v (%d)",
						b.ToFEN(), UCIMove(m), got, want, seeSwap(b, m, p))
				}
				checked++
			}
			moves := b.GenerateMoves()
			if len(moves) == 0 {
				break
			}
			if ok, _ := b.MakeMove(moves[rng.Intn(len(moves))]); !ok {
				t.Fatalf("random walk hit an illegal move in %s", b.ToFEN())
			}
		}
	}
	if checked == 0 {
		t.Fatalf("no captures were checked")
	}
}

func square(coord string) gm.Square {
	if len(coord) != 2 {
		panic("invalid coordinate")
	}
	file := int(coord[0] - 'a')
	rank := int(coord[1] - '1')
	return gm.Square(rank*8 + file)
}
