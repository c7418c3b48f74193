package engine

import (
	"time"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// Limits are the stop conditions of one search, as given by "go".
type Limits struct {
	Depth     int
	Nodes     uint64
	MoveTime  int // ms
	WTime     int
	BTime     int
	WInc      int
	BInc      int
	MovesToGo int
	Infinite  bool
}

// TimeHandler turns Limits into soft and hard deadlines. It is written once
// before workers start and only read afterwards.
type TimeHandler struct {
	start    time.Time
	soft     time.Time
	hard     time.Time
	timed    bool
	maxDepth int
	maxNodes uint64
}

func (th *TimeHandler) Init(limits Limits, pos Position) {
	th.start = time.Now()
	th.timed = false
	th.maxDepth = MaxDepth - 1
	if limits.Depth > 0 {
		th.maxDepth = Min(limits.Depth, MaxDepth-1)
	}
	th.maxNodes = limits.Nodes

	if limits.Infinite {
		return
	}
	if limits.MoveTime > 0 {
		th.timed = true
		th.soft = th.start.Add(time.Duration(limits.MoveTime) * time.Millisecond)
		th.hard = th.soft
		return
	}

	rem, inc := limits.WTime, limits.WInc
	if pos.SideToMove() == gm.Black {
		rem, inc = limits.BTime, limits.BInc
	}
	if rem <= 0 {
		return
	}
	th.timed = true

	movesLeft := limits.MovesToGo
	if movesLeft <= 0 {
		movesLeft = estimateMovesRemaining(piecePhase(pos))
	}

	const overheadMs = 30      // reserve for UCI/IO jitter
	const minMoveMs = 5        // never less than this
	const maxFrac = 0.7        // never spend >70% of remaining time
	const panicThreshMs = 1000 // switch to increment-only play below this
	const panicFrac = 0.90

	var moveTime int
	if inc > 0 && rem < panicThreshMs {
		moveTime = int(float64(inc) * panicFrac)
	} else {
		moveTime = rem/movesLeft + inc
	}
	moveTime = Min(moveTime, int(float64(rem)*maxFrac))
	moveTime = Min(moveTime, rem-overheadMs)
	moveTime = Max(moveTime, minMoveMs)

	hardTime := Max(Min(moveTime*3, int(float64(rem)*maxFrac)), moveTime)
	th.soft = th.start.Add(time.Duration(moveTime) * time.Millisecond)
	th.hard = th.start.Add(time.Duration(hardTime) * time.Millisecond)
}

// HardExceeded reports that the search must stop now.
func (th *TimeHandler) HardExceeded(nodes uint64) bool {
	if th.maxNodes > 0 && nodes >= th.maxNodes {
		return true
	}
	return th.timed && time.Now().After(th.hard)
}

// SoftExceeded reports that no new iteration should be started.
func (th *TimeHandler) SoftExceeded() bool {
	return th.timed && time.Now().After(th.soft)
}

func (th *TimeHandler) Elapsed() time.Duration {
	return time.Since(th.start)
}

func (th *TimeHandler) MaxDepth() int { return th.maxDepth }

// piecePhase counts remaining non-pawn material in phase units.
func piecePhase(pos Position) int {
	phase := 0
	for c := gm.White; c <= gm.Black; c++ {
		bbs := pos.Bitboards(c)
		phase += popcount(bbs.Knights)*KnightPhase + popcount(bbs.Bishops)*BishopPhase +
			popcount(bbs.Rooks)*RookPhase + popcount(bbs.Queens)*QueenPhase
	}
	return Min(phase, TotalPhase)
}

func estimateMovesRemaining(phase int) int {
	// Linearly interpolate between 20 (endgame) and 45 (opening/midgame)
	return (phase*25)/24 + 20
}
