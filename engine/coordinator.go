package engine

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
	"github.com/klauspost/cpuid/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Termination records why a search stopped. Both bits may be set.
type Termination uint32

const (
	TerminatedByUser   Termination = 1
	TerminatedByLimits Termination = 2
	TerminatedSearch               = TerminatedByUser | TerminatedByLimits
)

func (t Termination) String() string {
	switch t {
	case 0:
		return "running"
	case TerminatedByUser:
		return "user"
	case TerminatedByLimits:
		return "limits"
	case TerminatedSearch:
		return "user+limits"
	}
	return "unknown"
}

const MaxThreads = 256

var (
	ErrSearchInProgress = errors.New("search in progress")
	ErrInvalidThreads   = errors.New("invalid thread count")
)

// DefaultThreads is the number of physical cores, or the logical CPU count
// when cpuid cannot tell.
func DefaultThreads() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return Min(n, MaxThreads)
	}
	return Min(runtime.NumCPU(), MaxThreads)
}

// control is the state shared by all workers of one search. Only terminated,
// helpersExit and the node counters change while workers run.
type control struct {
	terminated  atomic.Uint32
	helpersExit atomic.Bool
	stopOnce    sync.Once
	stopCh      chan struct{}

	checkMask uint64
	timer     TimeHandler
	limits    Limits
	tt        *TransTable
	params    *Params
	workers   []*SearchWorker
	report    func(SearchInfo)
}

func (c *control) terminate(reason Termination) {
	for {
		old := c.terminated.Load()
		if c.terminated.CompareAndSwap(old, old|uint32(reason)) {
			break
		}
	}
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func (c *control) shouldStop(principal bool) bool {
	return c.terminated.Load() != 0 || (!principal && c.helpersExit.Load())
}

func (c *control) totalNodes() uint64 {
	var n uint64
	for _, w := range c.workers {
		n += w.Nodes()
	}
	return n
}

func (c *control) reportInfo(info SearchInfo) {
	if c.report != nil {
		c.report(info)
	}
}

// SearchResult is what a finished search hands back.
type SearchResult struct {
	BestMove    gm.Move
	PonderMove  gm.Move
	Score       int32
	Depth       int
	Nodes       uint64
	Termination Termination
	Stats       CutStatistics
}

// ThreadCoordinator owns the workers of a lazy-SMP search. Workers search the
// same root independently and share nothing but the transposition table.
//
// A search goes StartPrincipal -> (principal calls StartHelpers) -> Stop or
// limits -> Wait. Configure and Close may only be used between searches.
type ThreadCoordinator struct {
	mu      sync.Mutex
	tt      *TransTable
	params  *Params
	ctl     *control
	workers []*SearchWorker

	running atomic.Bool
	ready   chan struct{}
	gate    chan struct{}
	exit    chan struct{}
	gateMu  sync.Mutex
	gateSet bool

	principal *errgroup.Group
	helpers   *errgroup.Group
	cancel    context.CancelFunc
	result    SearchResult
}

func NewThreadCoordinator(tt *TransTable, params *Params) *ThreadCoordinator {
	tc := &ThreadCoordinator{
		tt:     tt,
		params: params,
		ctl:    &control{stopCh: make(chan struct{})},
	}
	return tc
}

// Configure sets the number of workers. Existing workers are reused.
func (tc *ThreadCoordinator) Configure(threads int) error {
	if threads < 1 || threads > MaxThreads {
		return errors.Wrapf(ErrInvalidThreads, "threads=%d", threads)
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.running.Load() {
		return ErrSearchInProgress
	}
	tc.join()

	for len(tc.workers) < threads {
		tc.workers = append(tc.workers, newSearchWorker(len(tc.workers), tc.ctl))
	}
	for i := threads; i < len(tc.workers); i++ {
		tc.workers[i] = nil
	}
	tc.workers = tc.workers[:threads]
	log.Info().Int("threads", threads).Msg("threads-configured")
	return nil
}

// Threads returns the configured worker count.
func (tc *ThreadCoordinator) Threads() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.workers)
}

// SetParams swaps the tuning used by later searches.
func (tc *ThreadCoordinator) SetParams(p *Params) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.running.Load() {
		return ErrSearchInProgress
	}
	tc.params = p
	return nil
}

// mustIdle panics when a search is in flight. Callers hold tc.mu.
func (tc *ThreadCoordinator) mustIdle(op string) {
	if tc.running.Load() {
		panic(errors.Wrap(ErrSearchInProgress, op))
	}
	tc.join()
}

// ResizeHash reallocates the shared transposition table.
func (tc *ThreadCoordinator) ResizeHash(sizeMB int) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.mustIdle("resize hash")
	tc.tt.Resize(sizeMB)
	log.Info().Int("mb", sizeMB).Msg("hash-resized")
}

// NewGame forgets everything learned in earlier searches.
func (tc *ThreadCoordinator) NewGame() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.mustIdle("new game")
	tc.tt.Clear()
	for _, w := range tc.workers {
		w.Clear()
	}
}

// Hashfull samples the shared table's fill in permille.
func (tc *ThreadCoordinator) Hashfull() int {
	return tc.tt.Hashfull()
}

// Worker exposes worker i between searches.
func (tc *ThreadCoordinator) Worker(i int) *SearchWorker {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.workers[i]
}

// StartPrincipal copies the root into every worker, starts the principal
// goroutine and returns once it is initialized. Helper goroutines are spawned
// here too but stay parked until StartHelpers opens the gate.
func (tc *ThreadCoordinator) StartPrincipal(ctx context.Context, pos *gm.Board, history []State, limits Limits, report func(SearchInfo)) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if len(tc.workers) == 0 {
		return errors.Wrap(ErrInvalidThreads, "coordinator not configured")
	}
	if !tc.running.CompareAndSwap(false, true) {
		return ErrSearchInProgress
	}
	tc.join()

	ctl := tc.ctl
	ctl.terminated.Store(0)
	ctl.helpersExit.Store(false)
	ctl.stopOnce = sync.Once{}
	ctl.stopCh = make(chan struct{})
	ctl.checkMask = tc.params.StopCheckInterval - 1
	ctl.limits = limits
	ctl.timer.Init(limits, pos)
	ctl.tt = tc.tt
	ctl.params = tc.params
	ctl.workers = tc.workers
	ctl.report = report

	for _, w := range tc.workers {
		w.setup(pos, history)
	}
	tc.result = SearchResult{}

	ctx, tc.cancel = context.WithCancel(ctx)
	tc.ready = make(chan struct{})
	tc.gate = make(chan struct{})
	tc.exit = make(chan struct{})
	tc.gateSet = false

	tc.helpers = &errgroup.Group{}
	for _, w := range tc.workers[1:] {
		w := w
		tc.helpers.Go(func() error {
			select {
			case <-tc.gate:
			case <-tc.exit:
				return nil
			}
			w.Run(ctx)
			return nil
		})
	}

	tc.principal = &errgroup.Group{}
	tc.principal.Go(func() error {
		return tc.runPrincipal(ctx, pos)
	})

	<-tc.ready
	return nil
}

func (tc *ThreadCoordinator) runPrincipal(ctx context.Context, pos *gm.Board) error {
	w := tc.workers[0]
	ctl := tc.ctl
	defer tc.running.Store(false)

	close(tc.ready)

	// A root without moves has nothing to search.
	if !pos.HasLegalMoves() {
		ctl.terminate(TerminatedByLimits)
		tc.StopHelpers()
		tc.result = SearchResult{Termination: Termination(ctl.terminated.Load())}
		return nil
	}

	tc.StartHelpers()
	w.Run(ctx)

	// "go infinite" keeps the best move until the GUI says stop.
	if ctl.limits.Infinite {
		select {
		case <-ctl.stopCh:
		case <-ctx.Done():
		}
	}
	if ctl.terminated.Load() == 0 {
		if ctx.Err() != nil {
			// The caller cancelled the search.
			ctl.terminate(TerminatedByUser)
		} else {
			// Depth limit reached or a mate was found.
			ctl.terminate(TerminatedByLimits)
		}
	}
	tc.StopHelpers()

	tc.result = tc.collect(pos)
	log.Debug().
		Str("bestmove", UCIMove(tc.result.BestMove)).
		Int("depth", tc.result.Depth).
		Uint64("nodes", tc.result.Nodes).
		Stringer("termination", tc.result.Termination).
		Msg("search-finished")
	return nil
}

func (tc *ThreadCoordinator) collect(pos *gm.Board) SearchResult {
	w := tc.workers[0]
	res := SearchResult{
		BestMove:    w.pv.GetPVMove(),
		PonderMove:  w.pv.GetPonderMove(),
		Score:       w.bestScore,
		Depth:       w.completedDepth,
		Nodes:       tc.ctl.totalNodes(),
		Termination: Termination(tc.ctl.terminated.Load()),
	}
	for _, h := range tc.workers {
		res.Stats.add(&h.stats)
	}
	if res.BestMove == NoMove {
		// Stopped before the first iteration finished.
		if moves := pos.GenerateMoves(); len(moves) > 0 {
			res.BestMove = moves[0]
		}
	}
	return res
}

// StartHelpers releases every parked helper at once. Calling it twice is a
// no-op.
func (tc *ThreadCoordinator) StartHelpers() {
	tc.gateMu.Lock()
	defer tc.gateMu.Unlock()
	if !tc.gateSet {
		tc.gateSet = true
		close(tc.gate)
	}
}

// StopHelpers signals all helpers together and joins them.
func (tc *ThreadCoordinator) StopHelpers() {
	tc.ctl.helpersExit.Store(true)
	tc.gateMu.Lock()
	select {
	case <-tc.exit:
	default:
		close(tc.exit)
	}
	tc.gateMu.Unlock()
	if err := tc.helpers.Wait(); err != nil {
		log.Error().Err(err).Msg("helper-failed")
	}
}

// Stop asks the running search to finish. It does not wait.
func (tc *ThreadCoordinator) Stop() {
	tc.ctl.terminate(TerminatedByUser)
}

// Terminated reports the termination bits of the current or last search.
func (tc *ThreadCoordinator) Terminated() Termination {
	return Termination(tc.ctl.terminated.Load())
}

// Running reports whether a search is in flight.
func (tc *ThreadCoordinator) Running() bool {
	return tc.running.Load()
}

// Wait joins the search and returns its result.
func (tc *ThreadCoordinator) Wait() SearchResult {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.join()
	return tc.result
}

// IsReady blocks until no search is running.
func (tc *ThreadCoordinator) IsReady() {
	tc.Wait()
}

// join waits for the principal goroutine, which itself joins the helpers.
// Callers hold tc.mu.
func (tc *ThreadCoordinator) join() {
	if tc.principal == nil {
		return
	}
	if err := tc.principal.Wait(); err != nil {
		log.Error().Err(err).Msg("principal-failed")
	}
	tc.principal = nil
	if tc.cancel != nil {
		tc.cancel()
		tc.cancel = nil
	}
}

// Close stops any search, joins every goroutine and drops the workers. The
// coordinator can be used again after Configure.
func (tc *ThreadCoordinator) Close() {
	tc.Stop()
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.join()
	for i := range tc.workers {
		tc.workers[i] = nil
	}
	tc.workers = nil
	tc.ctl.workers = nil
	log.Debug().Msg("coordinator-closed")
}
