package engine

import (
	"fmt"
	"math/rand"
	"testing"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

type pickedMove struct {
	move  gm.Move
	stage Stage
	score int
}

func drain(mp *MovePicker, skipQuiets, noisyOnly bool) []pickedMove {
	var out []pickedMove
	for m := mp.Next(skipQuiets, noisyOnly); m != NoMove; m = mp.Next(skipQuiets, noisyOnly) {
		out = append(out, pickedMove{m, mp.LastStage(), mp.LastScore()})
		if len(out) > MaxMoves {
			panic("picker did not terminate")
		}
	}
	return out
}

func randomHistory(rng *rand.Rand) *History {
	h := new(History)
	for c := range h.quiet {
		for f := range h.quiet[c] {
			for t := range h.quiet[c][f] {
				h.quiet[c][f][t] = rng.Intn(32768) - 16384
			}
		}
	}
	for p := range h.capture {
		for sq := range h.capture[p] {
			for k := range h.capture[p][sq] {
				h.capture[p][sq][k] = rng.Intn(32768) - 16384
			}
		}
	}
	for k := range h.nodes {
		for f := range h.nodes[k] {
			for t := range h.nodes[k][f] {
				h.nodes[k][f][t] = uint64(rng.Intn(1 << 20))
			}
		}
	}
	return h
}

func randomCont(rng *rand.Rand) *PieceToHistory {
	var c PieceToHistory
	for p := range c {
		for sq := range c[p] {
			c[p][sq] = int32(rng.Intn(8192) - 4096)
		}
	}
	return &c
}

// pickerCase builds a picker for one position with hash, killer and counter
// drawn from its legal moves.
type pickerCase struct {
	board                 *gm.Board
	hist                  *History
	cont                  [2]*PieceToHistory
	hash, killer, counter gm.Move
	threshold             int
}

func (pc pickerCase) picker() *MovePicker {
	ctx := PickerContext{Pos: pc.board, Hist: pc.hist, Cont: pc.cont, Params: DefaultParams()}
	return NewMovePicker(ctx, pc.hash, pc.killer, pc.counter, pc.threshold)
}

func randomPickerCases(t *testing.T, n int) []pickerCase {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	hist := randomHistory(rng)
	var cases []pickerCase
	for _, fen := range testFENs {
		b := mustFEN(t, fen)
		for ply := 0; ply < n; ply++ {
			moves := b.GenerateMoves()
			if len(moves) == 0 {
				break
			}
			pick := func() gm.Move {
				if rng.Intn(4) == 0 {
					return NoMove
				}
				return moves[rng.Intn(len(moves))]
			}
			board := *b
			cases = append(cases, pickerCase{
				board:     &board,
				hist:      hist,
				cont:      [2]*PieceToHistory{randomCont(rng), randomCont(rng)},
				hash:      pick(),
				killer:    pick(),
				counter:   pick(),
				threshold: 0,
			})
			if ok, _ := b.MakeMove(moves[rng.Intn(len(moves))]); !ok {
				t.Fatalf("random walk hit an illegal move")
			}
		}
	}
	return cases
}

func TestMovePickerEnumeratesEveryLegalMoveOnce(t *testing.T) {
	for i, pc := range randomPickerCases(t, 12) {
		legal := map[gm.Move]bool{}
		for _, m := range pc.board.GenerateMoves() {
			legal[m] = true
		}

		seen := map[gm.Move]bool{}
		for _, pm := range drain(pc.picker(), false, false) {
			if !legal[pm.move] {
				t.Fatalf("case %d (%s): illegal move %s", i, pc.board.ToFEN(), UCIMove(pm.move))
			}
			if seen[pm.move] {
				t.Fatalf("case %d (%s): %s returned twice", i, pc.board.ToFEN(), UCIMove(pm.move))
			}
			seen[pm.move] = true
		}
		if len(seen) != len(legal) {
			t.Fatalf("case %d (%s): got %d moves, want %d", i, pc.board.ToFEN(), len(seen), len(legal))
		}
	}
}

func TestMovePickerOrdering(t *testing.T) {
	p := DefaultParams()
	for i, pc := range randomPickerCases(t, 12) {
		picked := drain(pc.picker(), false, false)
		where := fmt.Sprintf("case %d (%s)", i, pc.board.ToFEN())

		if pc.hash != NoMove && picked[0].move != pc.hash {
			t.Fatalf("%s: hash move %s not first, got %s", where, UCIMove(pc.hash), UCIMove(picked[0].move))
		}

		lastStage := StageNone
		lastQuiet := 0
		seenQuiet := false
		var bad []gm.Move
		for _, pm := range picked {
			if pm.stage < lastStage {
				t.Fatalf("%s: stage went back from %v to %v", where, lastStage, pm.stage)
			}
			lastStage = pm.stage

			switch pm.stage {
			case StageGoodNoisy:
				if !isNoisy(pm.move) || !SEE(pc.board, pm.move, pc.threshold, p) {
					t.Fatalf("%s: %s in good noisy stage", where, UCIMove(pm.move))
				}
			case StageQuiets:
				if isNoisy(pm.move) {
					t.Fatalf("%s: noisy %s in quiet stage", where, UCIMove(pm.move))
				}
				if seenQuiet && pm.score > lastQuiet {
					t.Fatalf("%s: quiet scores increase: %d then %d", where, lastQuiet, pm.score)
				}
				seenQuiet, lastQuiet = true, pm.score
			case StageBadNoisy:
				if SEE(pc.board, pm.move, pc.threshold, p) {
					t.Fatalf("%s: %s passes SEE but came out as bad noisy", where, UCIMove(pm.move))
				}
				bad = append(bad, pm.move)
			}
		}

		// Bad noisy moves come out in the order the good stage rejected them,
		// which is the good stage's best-first order.
		mp := pc.picker()
		var rejected []gm.Move
		for m := mp.Next(true, false); m != NoMove; m = mp.Next(true, false) {
			if mp.LastStage() == StageBadNoisy {
				rejected = append(rejected, m)
			}
		}
		if len(rejected) != len(bad) {
			t.Fatalf("%s: %d bad noisy moves with skipQuiets, %d without", where, len(rejected), len(bad))
		}
		for j := range bad {
			if bad[j] != rejected[j] {
				t.Fatalf("%s: bad noisy order differs at %d", where, j)
			}
		}
	}
}

func TestMovePickerNoisyOnly(t *testing.T) {
	for i, pc := range randomPickerCases(t, 12) {
		mp := pc.picker()
		for m := mp.Next(false, true); m != NoMove; m = mp.Next(false, true) {
			if !isNoisy(m) {
				t.Fatalf("case %d (%s): quiet move %s with noisyOnly", i, pc.board.ToFEN(), UCIMove(m))
			}
			if mp.LastStage() == StageBadNoisy || mp.LastStage() == StageKiller || mp.LastStage() == StageCounter {
				t.Fatalf("case %d: stage %v with noisyOnly", i, mp.LastStage())
			}
		}
		if mp.Stage() != StagePreBadNoisy {
			t.Fatalf("case %d: noisyOnly picker stopped in stage %v", i, mp.Stage())
		}
		if m := mp.Next(false, true); m != NoMove {
			t.Fatalf("case %d: exhausted noisyOnly picker returned %s", i, UCIMove(m))
		}
	}
}

func TestMovePickerDeterministic(t *testing.T) {
	for i, pc := range randomPickerCases(t, 8) {
		a := drain(pc.picker(), false, false)
		b := drain(pc.picker(), false, false)
		if len(a) != len(b) {
			t.Fatalf("case %d: lengths differ %d vs %d", i, len(a), len(b))
		}
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("case %d: outputs differ at %d", i, j)
			}
		}
	}
}

func TestMovePickerDeduplicatesSpecialMoves(t *testing.T) {
	b := mustFEN(t, gm.FENStartPos)
	e4 := mustMove(t, b, "e2e4")
	nf3 := mustMove(t, b, "g1f3")
	ctx := PickerContext{Pos: b, Hist: new(History), Params: DefaultParams()}

	mp := NewMovePicker(ctx, e4, e4, e4, 0)
	picked := drain(mp, false, false)
	if len(picked) != 20 {
		t.Fatalf("got %d moves, want 20", len(picked))
	}
	if picked[0].move != e4 || picked[0].stage != StageHashMove {
		t.Fatalf("expected e2e4 from the hash stage first")
	}

	mp = NewMovePicker(ctx, NoMove, nf3, nf3, 0)
	picked = drain(mp, false, false)
	if len(picked) != 20 {
		t.Fatalf("got %d moves, want 20", len(picked))
	}
	if picked[0].move != nf3 || picked[0].stage != StageKiller {
		t.Fatalf("expected g1f3 from the killer stage first, got %s (%v)", UCIMove(picked[0].move), picked[0].stage)
	}
}

func TestMovePickerRejectsStaleHashMove(t *testing.T) {
	from := mustFEN(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	stale := mustMove(t, from, "e5f7")

	b := mustFEN(t, gm.FENStartPos)
	ctx := PickerContext{Pos: b, Hist: new(History), Params: DefaultParams()}
	picked := drain(NewMovePicker(ctx, stale, stale, stale, 0), false, false)
	if len(picked) != 20 {
		t.Fatalf("got %d moves, want 20", len(picked))
	}
	for _, pm := range picked {
		if pm.move == stale {
			t.Fatalf("stale move %s was returned", UCIMove(stale))
		}
	}
}

func TestMovePickerSkipQuiets(t *testing.T) {
	b := mustFEN(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	killer := mustMove(t, b, "a2a3")
	ctx := PickerContext{Pos: b, Hist: new(History), Params: DefaultParams()}
	for _, pm := range drain(NewMovePicker(ctx, NoMove, killer, NoMove, 0), true, false) {
		if !isNoisy(pm.move) {
			t.Fatalf("quiet move %s returned with skipQuiets", UCIMove(pm.move))
		}
	}
}

func TestMovePickerUndefinedStagePanics(t *testing.T) {
	b := mustFEN(t, gm.FENStartPos)
	mp := NewMovePicker(PickerContext{Pos: b, Hist: new(History), Params: DefaultParams()}, NoMove, NoMove, NoMove, 0)
	mp.stage = Stage(200)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for an undefined stage")
		}
	}()
	mp.Next(false, false)
}

func TestMovePickerStepTransitions(t *testing.T) {
	b := mustFEN(t, gm.FENStartPos)
	mp := NewMovePicker(PickerContext{Pos: b, Hist: new(History), Params: DefaultParams()}, NoMove, NoMove, NoMove, 0)

	tests := []struct {
		from        Stage
		skip, noisy bool
		want        Stage
	}{
		{StageHashMove, false, false, StageGenNoisy},
		{StageGenNoisy, false, false, StageGoodNoisy},
		{StageCounter, false, false, StageKiller},
		{StageKiller, false, false, StageGenQuiets},
		{StageGenQuiets, true, false, StageQuiets},
		{StageQuiets, true, false, StagePreBadNoisy},
		{StagePreBadNoisy, false, false, StageBadNoisy},
		{StagePreBadNoisy, true, true, StagePreBadNoisy},
		{StageDone, false, false, StageDone},
	}
	for _, tt := range tests {
		mp.stage = tt.from
		mp.index, mp.nrNoisy, mp.nrQuiets, mp.nrBadNoisy = 0, 0, 0, 0
		next, _, _ := mp.step(tt.skip, tt.noisy)
		if next != tt.want {
			t.Errorf("step from %v (skip=%v noisyOnly=%v) = %v, want %v", tt.from, tt.skip, tt.noisy, next, tt.want)
		}
	}
}

func TestOrderingReportStartPos(t *testing.T) {
	b := mustFEN(t, gm.FENStartPos)
	report := OrderingReport(b, DefaultParams())
	if len(report) != 20 {
		t.Fatalf("got %d moves, want 20", len(report))
	}
	// Pawn pushes carry the push bonus, so they lead the quiet moves.
	first := report[0].Move.MovedPiece().Type()
	if first != gm.PieceTypePawn {
		t.Fatalf("expected a pawn move first, got %s", UCIMove(report[0].Move))
	}
}
