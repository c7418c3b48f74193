package engine

const fiftyMoveLimit = 100

// State captures the information we need to reason about repetitions and draws.
type State struct {
	Hash   uint64
	Rule50 int
}

// stateStack is one worker's game history: the positions played before the
// root, followed by the positions on the current search path.
type stateStack struct {
	states    []State
	rootIndex int
}

// reset loads the game history and marks its last entry as the root.
func (s *stateStack) reset(history []State) {
	s.states = append(s.states[:0], history...)
	s.rootIndex = len(s.states) - 1
}

func (s *stateStack) push(pos Position) {
	s.states = append(s.states, State{Hash: pos.Hash(), Rule50: pos.HalfmoveClock()})
}

func (s *stateStack) pop() {
	if len(s.states) > 0 {
		s.states = s.states[:len(s.states)-1]
	}
}

// isDraw reports a fifty-move draw, a threefold repetition, or a single
// repetition of a position reached after the root.
func (s *stateStack) isDraw() bool {
	if len(s.states) == 0 {
		return false
	}
	curr := s.states[len(s.states)-1]
	if curr.Rule50 >= fiftyMoveLimit {
		return true
	}

	matchCount, firstIdx := s.repetitionInfo(curr.Hash, curr.Rule50)
	if matchCount >= 2 {
		return true
	}
	return matchCount >= 1 && firstIdx >= s.rootIndex
}

func (s *stateStack) repetitionInfo(hash uint64, rule50 int) (count int, firstIdx int) {
	firstIdx = -1
	n := len(s.states)
	if n <= 1 {
		return 0, firstIdx
	}
	start := Max(n-1-rule50, 0)
	// Only positions with the same side to move can repeat.
	for i := n - 3; i >= start; i -= 2 {
		if s.states[i].Hash == hash {
			count++
			firstIdx = i
		}
	}
	return count, firstIdx
}
