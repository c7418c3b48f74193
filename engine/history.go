package engine

import (
	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// PieceToHistory scores a move by (moving piece, destination) in the context
// of an earlier move.
type PieceToHistory [16][64]int32

// History holds the move-ordering statistics learned by one worker. Only the
// owning worker reads or writes it.
type History struct {
	quiet   [2][64][64]int
	capture [16][64][7]int
	cont    [16][64]PieceToHistory
	nodes   [2][64][64]uint64
}

const (
	nodesQuiet = 0
	nodesNoisy = 1
)

// Clear zeroes every table in place.
func (h *History) Clear() {
	h.quiet = [2][64][64]int{}
	h.capture = [16][64][7]int{}
	for p := range h.cont {
		for sq := range h.cont[p] {
			h.cont[p][sq] = PieceToHistory{}
		}
	}
	h.nodes = [2][64][64]uint64{}
}

// Continuation returns the table reached after piece p landed on sq.
func (h *History) Continuation(p gm.Piece, sq gm.Square) *PieceToHistory {
	return &h.cont[p][sq]
}

func (h *History) Quiet(side gm.Color, m gm.Move) int {
	return h.quiet[side][m.From()][m.To()]
}

func (h *History) Capture(m gm.Move) int {
	return h.capture[m.MovedPiece()][m.To()][capturedType(m)]
}

func (h *History) Nodes(noisy int, m gm.Move) uint64 {
	return h.nodes[noisy][m.From()][m.To()]
}

func (h *History) addNodes(noisy int, m gm.Move, n uint64) {
	h.nodes[noisy][m.From()][m.To()] += n
}

// gravity keeps entries inside [-limit, limit].
func gravity(entry *int, bonus, limit int) {
	*entry += bonus - *entry*abs(bonus)/limit
}

func gravity32(entry *int32, bonus, limit int) {
	v := int(*entry)
	gravity(&v, bonus, limit)
	*entry = int32(v)
}

func (h *History) updateQuiet(side gm.Color, m gm.Move, bonus, limit int) {
	gravity(&h.quiet[side][m.From()][m.To()], bonus, limit)
}

func (h *History) updateCapture(m gm.Move, bonus, limit int) {
	gravity(&h.capture[m.MovedPiece()][m.To()][capturedType(m)], bonus, limit)
}

func updateContinuation(ss []stackEntry, i int, m gm.Move, bonus, limit int) {
	for _, back := range [2]int{1, 2} {
		if e := &ss[i-back]; e.move != NoMove {
			gravity32(&e.cont[m.MovedPiece()][m.To()], bonus, limit)
		}
	}
}

func statBonus(depth int8) int {
	d := int(depth)
	return Min(16*d*d+32*d+16, 1200)
}

func capturedType(m gm.Move) gm.PieceType {
	if m.Flags() == gm.FlagEnPassant {
		return gm.PieceTypePawn
	}
	return m.CapturedPiece().Type()
}
