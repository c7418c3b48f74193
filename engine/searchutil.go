package engine

import (
	"fmt"
)

// LMR holds base late-move reductions indexed by depth and move number.
// It is filled once at init and only read afterwards.
var LMR = [MaxDepth + 1][100]int8{}

const (
	LMRDepthLimit            int8 = 2
	LMRMoveLimit                  = 2
	LMRHistoryReductionScale      = 4096
	LMRHistoryLowThreshold        = -2048
	LMRLegalMovesLimit            = 12
)

func InitLMRTable() {
	for d := 1; d < len(LMR); d++ {
		for m := 1; m < len(LMR[d]); m++ {
			r := 1 + d/8 + m/16 // gentle growth with depth & lateness
			if r > d-2 {
				r = d - 2
			} // keep depth-1-r >= 1
			if r < 0 {
				r = 0
			}
			LMR[d][m] = int8(r)
		}
	}
}

func computeLMRReduction(depth int8, legalMoves int, isPVNode bool, historyScore int, improving bool) int8 {
	if int(depth) < int(LMRDepthLimit) || legalMoves <= LMRMoveLimit {
		return 0
	}

	d := Clamp(int(depth), 0, len(LMR)-1)
	m := Clamp(legalMoves-1, 0, len(LMR[d])-1)
	r := LMR[d][m]

	if isPVNode && r > 0 {
		r--
	}
	if !improving {
		r++
	}

	// Good history earns back up to two plies
	if r > 0 && historyScore > 0 {
		bonus := int8(Min(historyScore/LMRHistoryReductionScale, 2))
		r -= Min(bonus, r)
	}
	if historyScore <= LMRHistoryLowThreshold && legalMoves > LMRLegalMovesLimit {
		r++
	}

	return Clamp(r, 0, depth-1)
}

func isMateScore(score int32) bool {
	return score > Checkmate || score < -Checkmate
}

// getMateOrCPScore formats a score for UCI "info ... score".
func getMateOrCPScore(score int32) string {
	mateValue := int(MaxScore)
	s := int(score)

	if score > Checkmate {
		pliesToMate := Max(mateValue-s, 0)
		return fmt.Sprintf("mate %d", (pliesToMate+1)/2)
	} else if score < -Checkmate {
		pliesToMate := Max(mateValue+s, 0)
		return fmt.Sprintf("mate %d", -(pliesToMate+1)/2)
	}

	return fmt.Sprintf("cp %d", s)
}

// hasNonPawnMaterial guards null-move pruning against zugzwang.
func hasNonPawnMaterial(pos Position) bool {
	bbs := pos.Bitboards(pos.SideToMove())
	return bbs.Knights|bbs.Bishops|bbs.Rooks|bbs.Queens != 0
}
