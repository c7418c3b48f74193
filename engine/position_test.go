package engine

import (
	"testing"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
	"github.com/dylhunn/dragontoothmg"
)

func TestNoisyQuietPartition(t *testing.T) {
	for _, fen := range testFENs {
		b := mustFEN(t, fen)

		all := map[gm.Move]bool{}
		for _, m := range b.GenerateMoves() {
			all[m] = true
		}
		noisy := genNoisy(b, nil, nil)
		quiet := genQuiets(b, nil)
		if len(noisy)+len(quiet) != len(all) {
			t.Fatalf("%s: %d noisy + %d quiet != %d legal", fen, len(noisy), len(quiet), len(all))
		}
		for _, m := range noisy {
			if !isNoisy(m) || !all[m] {
				t.Fatalf("%s: bad noisy move %s", fen, UCIMove(m))
			}
		}
		for _, m := range quiet {
			if isNoisy(m) || !all[m] {
				t.Fatalf("%s: bad quiet move %s", fen, UCIMove(m))
			}
		}

		// An independent generator agrees on the legal move count.
		dt := dragontoothmg.ParseFen(fen)
		if n := len(dt.GenerateLegalMoves()); n != len(all) {
			t.Fatalf("%s: goosemg has %d legal moves, dragontoothmg %d", fen, len(all), n)
		}
	}
}

func TestGenNoisyKeepsCapturesWithFewQuiets(t *testing.T) {
	// One capture, one pawn push, four promotions and a handful of king moves.
	b := mustFEN(t, "4k3/P7/8/3p4/4P3/8/8/4K3 w - - 0 1")

	got := map[string]bool{}
	for _, m := range genNoisy(b, nil, nil) {
		if got[UCIMove(m)] {
			t.Fatalf("%s generated twice", UCIMove(m))
		}
		got[UCIMove(m)] = true
	}
	for _, want := range []string{"e4d5", "a7a8q", "a7a8r", "a7a8b", "a7a8n"} {
		if !got[want] {
			t.Fatalf("noisy list %v is missing %s", got, want)
		}
	}
	if len(got) != 5 {
		t.Fatalf("noisy list %v has quiet moves", got)
	}

	push := false
	for _, m := range genQuiets(b, nil) {
		if isNoisy(m) {
			t.Fatalf("quiet list has %s", UCIMove(m))
		}
		push = push || UCIMove(m) == "e4e5"
	}
	if !push {
		t.Fatalf("e4e5 missing from the quiet list")
	}
}

func TestGenNoisyAppendsToDst(t *testing.T) {
	b := mustFEN(t, "4k3/P7/8/3p4/4P3/8/8/4K3 w - - 0 1")
	prefix := mustMove(t, b, "e1d1")
	dst := make([]gm.Move, 1, MaxMoves)
	dst[0] = prefix
	scratch := make([]gm.Move, 0, MaxMoves)

	dst = genNoisy(b, dst, scratch)
	if dst[0] != prefix || len(dst) != 6 {
		t.Fatalf("genNoisy clobbered dst: %d moves, first %s", len(dst), UCIMove(dst[0]))
	}
	dst = genQuiets(b, dst[:1])
	if dst[0] != prefix || len(dst) != 1+len(genQuiets(b, nil)) {
		t.Fatalf("genQuiets clobbered dst: %d moves, first %s", len(dst), UCIMove(dst[0]))
	}
}

func TestIsLegalMove(t *testing.T) {
	b := mustFEN(t, gm.FENStartPos)
	scratch := make([]gm.Move, 0, MaxMoves)
	e4 := mustMove(t, b, "e2e4")
	if !isLegalMove(b, e4, scratch) {
		t.Fatalf("e2e4 should be legal")
	}
	if isLegalMove(b, NoMove, scratch) {
		t.Fatalf("NoMove should never be legal")
	}

	// A black move is not legal with white to move.
	black := mustFEN(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	e5 := mustMove(t, black, "e7e5")
	if isLegalMove(b, e5, scratch) {
		t.Fatalf("e7e5 should not be legal for white")
	}

	// Pinned piece: the knight on d2 shields the king from the bishop on b4.
	pinned := mustFEN(t, "4k3/8/8/8/1b6/8/3N4/4K3 w - - 0 1")
	nf3 := gm.NewMove(square("d2"), square("f3"), gm.WhiteKnight, gm.NoPiece, gm.NoPiece, gm.FlagNone)
	if isLegalMove(pinned, nf3, scratch) {
		t.Fatalf("pinned knight move accepted")
	}
}

func TestAttackersTo(t *testing.T) {
	b := mustFEN(t, "4k3/8/2p5/3p4/8/8/3Q4/4K3 w - - 0 1")
	att := attackersTo(b, square("d5"), b.AllOccupancy())
	want := PositionBB[square("c6")] | PositionBB[square("d2")]
	if att != want {
		t.Fatalf("attackers of d5 = %x, want %x", att, want)
	}
}

func TestUCIMoveRoundTrip(t *testing.T) {
	b := mustFEN(t, "4k3/1P6/8/8/8/8/8/4K3 w - - 0 1")
	for _, m := range b.GenerateMoves() {
		s := UCIMove(m)
		back, ok := ParseUCIMove(b, s)
		if !ok || back != m {
			t.Fatalf("round trip of %s failed", s)
		}
	}
	if UCIMove(NoMove) != "0000" {
		t.Fatalf("NoMove should print as 0000")
	}
}
