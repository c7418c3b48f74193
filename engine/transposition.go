package engine

import (
	"sync/atomic"
	"unsafe"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

const (
	// Flags
	AlphaFlag = iota
	BetaFlag
	ExactFlag

	// In MB
	DefaultTTSize = 64
	clusterSize   = 4
)

// TransTable is shared by every worker. Slots are written without locks: a
// slot stores key^data next to data, so a torn write fails the key check and
// reads as a miss.
type TransTable struct {
	slots        []ttSlot
	clusterCount uint64
}

type ttSlot struct {
	key  atomic.Uint64
	data atomic.Uint64
}

type TTEntry struct {
	Hash  uint64
	Depth int8
	Move  gm.Move
	Score int16
	Flag  int8
}

// data layout: move 26 bits | score 16 bits | depth 8 bits | flag 2 bits |
// valid 1 bit. The valid bit keeps a stored entry from ever packing to zero.
func packEntry(move gm.Move, score int16, depth int8, flag int8) uint64 {
	return uint64(move)&(1<<26-1) |
		uint64(uint16(score))<<26 |
		uint64(uint8(depth))<<42 |
		uint64(flag&3)<<50 |
		1<<52
}

func unpackEntry(hash, data uint64) TTEntry {
	return TTEntry{
		Hash:  hash,
		Move:  gm.Move(data & (1<<26 - 1)),
		Score: int16(uint16(data >> 26)),
		Depth: int8(uint8(data >> 42)),
		Flag:  int8((data >> 50) & 3),
	}
}

func NewTransTable(sizeMB int) *TransTable {
	tt := &TransTable{}
	tt.Resize(sizeMB)
	return tt
}

// Resize reallocates the table. Callers must make sure no search is running.
func (tt *TransTable) Resize(sizeMB int) {
	if sizeMB < 1 {
		sizeMB = 1
	}
	slotSize := uint64(unsafe.Sizeof(ttSlot{}))
	clusterCount := uint64(sizeMB) * 1024 * 1024 / (slotSize * clusterSize)
	if clusterCount == 0 {
		clusterCount = 1
	}
	tt.clusterCount = clusterCount
	tt.slots = make([]ttSlot, clusterCount*clusterSize)
}

// Clear wipes all entries. Callers must make sure no search is running.
func (tt *TransTable) Clear() {
	for i := range tt.slots {
		tt.slots[i].key.Store(0)
		tt.slots[i].data.Store(0)
	}
}

func (tt *TransTable) cluster(hash uint64) []ttSlot {
	base := (hash % tt.clusterCount) * clusterSize
	return tt.slots[base : base+clusterSize]
}

// Probe returns the entry stored for hash, if any.
func (tt *TransTable) Probe(hash uint64) (TTEntry, bool) {
	if tt.clusterCount == 0 {
		return TTEntry{}, false
	}
	cl := tt.cluster(hash)
	for i := range cl {
		s := &cl[i]
		data := s.data.Load()
		if data != 0 && s.key.Load()^data == hash {
			return unpackEntry(hash, data), true
		}
	}
	return TTEntry{}, false
}

// Store records a search result. Mate scores are stored relative to the
// node, not the root.
func (tt *TransTable) Store(hash uint64, depth int8, ply int, move gm.Move, score int32, flag int8) {
	if tt.clusterCount == 0 {
		return
	}
	if score > Checkmate {
		score += int32(ply)
	} else if score < -Checkmate {
		score -= int32(ply)
	}

	cl := tt.cluster(hash)
	target := -1
	for i := range cl {
		data := cl[i].data.Load()
		if data != 0 && cl[i].key.Load()^data == hash {
			target = i
			// Keep the old move when the new result has none.
			if move == NoMove {
				move = unpackEntry(hash, data).Move
			}
			break
		}
	}
	if target == -1 {
		for i := range cl {
			if cl[i].data.Load() == 0 {
				target = i
				break
			}
		}
	}
	if target == -1 {
		target = 0
		minDepth := unpackEntry(0, cl[0].data.Load()).Depth
		for i := 1; i < len(cl); i++ {
			if d := unpackEntry(0, cl[i].data.Load()).Depth; d < minDepth {
				minDepth = d
				target = i
			}
		}
	}

	data := packEntry(move, int16(score), depth, flag)
	cl[target].key.Store(hash ^ data)
	cl[target].data.Store(data)
}

// useEntry decides whether e can cut the search at this node.
func (e *TTEntry) useEntry(depth int8, alpha, beta int32, ply int) (usable bool, score int32) {
	if e.Depth < depth {
		return false, 0
	}
	score = scoreFromTT(e.Score, ply)
	switch e.Flag {
	case ExactFlag:
		return true, score
	case AlphaFlag:
		if score <= alpha {
			return true, alpha
		}
	case BetaFlag:
		if score >= beta {
			return true, beta
		}
	}
	return false, 0
}

func scoreFromTT(s int16, ply int) int32 {
	score := int32(s)
	if score > Checkmate {
		score -= int32(ply)
	} else if score < -Checkmate {
		score += int32(ply)
	}
	return score
}

// Hashfull estimates table usage in permille from the first thousand slots.
func (tt *TransTable) Hashfull() int {
	n := Min(len(tt.slots), 1000)
	if n == 0 {
		return 0
	}
	used := 0
	for i := 0; i < n; i++ {
		if tt.slots[i].data.Load() != 0 {
			used++
		}
	}
	return used * 1000 / n
}
