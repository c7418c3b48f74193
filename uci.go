package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"chess-smp/engine"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	engineName   = "chess-smp 0.3"
	engineAuthor = "Goose"

	defaultHashMB = 64
	maxHashMB     = 4096
)

func main() {
	logLevel := flag.String("loglevel", os.Getenv("CHESS_SMP_LOGLEVEL"), "zerolog level (debug, info, warn, error)")
	paramsFile := flag.String("params", "", "JSON file with search parameters")
	threads := flag.Int("threads", 0, "worker threads (0 = physical cores)")
	hashMB := flag.Int("hash", defaultHashMB, "transposition table size in MB")
	flag.Parse()

	setupLogging(*logLevel)

	params := engine.DefaultParams()
	if *paramsFile != "" {
		p, err := engine.LoadParams(*paramsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("load-params")
		}
		params = p
	}
	if *threads <= 0 {
		*threads = engine.DefaultThreads()
	}

	u, err := newUCI(os.Stdout, *hashMB, *threads, params)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	defer u.close()
	u.loop(os.Stdin)
}

func setupLogging(level string) {
	lvl := zerolog.WarnLevel
	if level != "" {
		l, err := zerolog.ParseLevel(level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad log level %q: %v\n", level, err)
		} else {
			lvl = l
		}
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// uci drives a ThreadCoordinator from UCI commands. Searches run in the
// background; protocol output is serialized through outMu.
type uci struct {
	outMu sync.Mutex
	out   io.Writer

	tc      *engine.ThreadCoordinator
	params  *engine.Params
	board   *gm.Board
	history []engine.State

	cutStats bool
	pending  sync.WaitGroup
}

func newUCI(out io.Writer, hashMB, threads int, params *engine.Params) (*uci, error) {
	u := &uci{
		out:    out,
		tc:     engine.NewThreadCoordinator(engine.NewTransTable(hashMB), params),
		params: params,
	}
	if err := u.tc.Configure(threads); err != nil {
		return nil, err
	}
	if err := u.setPosition([]string{"startpos"}); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *uci) println(a ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintln(u.out, a...)
}

func (u *uci) printf(format string, a ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, a...)
}

func (u *uci) loop(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if !u.handle(scanner.Text()) {
			return
		}
	}
}

// handle runs one command and reports whether the loop should continue.
func (u *uci) handle(line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return true
	}
	switch strings.ToLower(tokens[0]) {
	case "uci":
		u.println("id name", engineName)
		u.println("id author", engineAuthor)
		u.printf("option name Threads type spin default %d min 1 max %d\n", engine.DefaultThreads(), engine.MaxThreads)
		u.printf("option name Hash type spin default %d min 1 max %d\n", defaultHashMB, maxHashMB)
		u.println("option name ParamsFile type string default <empty>")
		u.println("option name CutStats type check default false")
		u.println("uciok")
	case "isready":
		if !u.tc.Running() {
			u.tc.IsReady()
		}
		u.println("readyok")
	case "ucinewgame":
		u.finish()
		u.tc.NewGame()
		if err := u.setPosition([]string{"startpos"}); err != nil {
			u.println("info string", err)
		}
	case "position":
		if u.tc.Running() {
			u.println("info string position ignored: search in progress")
			return true
		}
		if err := u.setPosition(tokens[1:]); err != nil {
			u.println("info string", err)
		}
	case "go":
		if err := u.goCommand(tokens[1:]); err != nil {
			u.println("info string", err)
		}
	case "stop":
		u.tc.Stop()
		u.pending.Wait()
	case "setoption":
		u.finish()
		if err := u.setOption(tokens[1:]); err != nil {
			u.println("info string", err)
		}
	case "moveordering":
		for i, om := range engine.OrderingReport(u.board, u.params) {
			u.printf("info string %2d. %-6s %-14s %d\n", i+1, engine.UCIMove(om.Move), om.Stage, om.Score)
		}
	case "quit":
		u.finish()
		return false
	default:
		u.println("info string Unknown command:", line)
	}
	return true
}

// finish stops any search and waits for its bestmove to be printed.
func (u *uci) finish() {
	if u.tc.Running() {
		u.tc.Stop()
	}
	u.pending.Wait()
}

func (u *uci) close() {
	u.finish()
	u.tc.Close()
}

// setPosition handles "startpos|fen <fen> [moves m1 m2 ...]".
func (u *uci) setPosition(args []string) error {
	if len(args) == 0 {
		return errors.New("malformed position command")
	}

	var fen string
	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "startpos":
		fen = gm.FENStartPos
	case "fen":
		i := 0
		for i < len(rest) && strings.ToLower(rest[i]) != "moves" {
			i++
		}
		if i == 0 {
			return errors.New("invalid fen position")
		}
		fen = strings.Join(rest[:i], " ")
		rest = rest[i:]
	default:
		return errors.Errorf("invalid position subcommand %q", args[0])
	}

	board, err := gm.ParseFEN(fen)
	if err != nil {
		return errors.Wrapf(err, "parse fen %q", fen)
	}
	history := []engine.State{{Hash: board.Hash(), Rule50: board.HalfmoveClock()}}

	if len(rest) > 0 && strings.ToLower(rest[0]) == "moves" {
		for _, s := range rest[1:] {
			m, ok := engine.ParseUCIMove(board, s)
			if !ok {
				return errors.Errorf("move %s not legal in %s", s, board.ToFEN())
			}
			if ok, _ := board.MakeMove(m); !ok {
				return errors.Errorf("move %s rejected in %s", s, board.ToFEN())
			}
			history = append(history, engine.State{Hash: board.Hash(), Rule50: board.HalfmoveClock()})
		}
	}

	u.board = board
	u.history = history
	return nil
}

func parseLimits(args []string) (engine.Limits, error) {
	var limits engine.Limits
	for i := 0; i < len(args); i++ {
		key := strings.ToLower(args[i])
		if key == "infinite" {
			limits.Infinite = true
			continue
		}
		if i+1 >= len(args) {
			return limits, errors.Errorf("malformed go command option %s", key)
		}
		i++
		v, err := strconv.ParseUint(args[i], 10, 63)
		if err != nil {
			return limits, errors.Wrapf(err, "could not convert %s", key)
		}
		switch key {
		case "depth":
			limits.Depth = int(v)
		case "nodes":
			limits.Nodes = v
		case "movetime":
			limits.MoveTime = int(v)
		case "wtime":
			limits.WTime = int(v)
		case "btime":
			limits.BTime = int(v)
		case "winc":
			limits.WInc = int(v)
		case "binc":
			limits.BInc = int(v)
		case "movestogo":
			limits.MovesToGo = int(v)
		default:
			return limits, errors.Errorf("unknown go subcommand %s", key)
		}
	}
	return limits, nil
}

func (u *uci) goCommand(args []string) error {
	limits, err := parseLimits(args)
	if err != nil {
		return err
	}
	if u.tc.Running() {
		return engine.ErrSearchInProgress
	}
	u.pending.Wait()

	report := func(info engine.SearchInfo) { u.println(info.String()) }
	if err := u.tc.StartPrincipal(context.Background(), u.board, u.history, limits, report); err != nil {
		return err
	}

	u.pending.Add(1)
	go func() {
		defer u.pending.Done()
		res := u.tc.Wait()
		if u.cutStats {
			u.outMu.Lock()
			res.Stats.Dump(u.out)
			u.outMu.Unlock()
		}
		if res.PonderMove != engine.NoMove {
			u.println("bestmove", engine.UCIMove(res.BestMove), "ponder", engine.UCIMove(res.PonderMove))
		} else {
			u.println("bestmove", engine.UCIMove(res.BestMove))
		}
	}()
	return nil
}

// setOption handles "name <id> [value <x>]". Names may contain spaces.
func (u *uci) setOption(args []string) error {
	var name, value []string
	cur := &name
	for _, a := range args {
		switch strings.ToLower(a) {
		case "name":
			cur = &name
		case "value":
			cur = &value
		default:
			*cur = append(*cur, a)
		}
	}
	val := strings.Join(value, " ")

	switch strings.ToLower(strings.Join(name, " ")) {
	case "threads":
		n, err := strconv.Atoi(val)
		if err != nil {
			return errors.Wrap(err, "threads")
		}
		return u.tc.Configure(n)
	case "hash":
		mb, err := strconv.Atoi(val)
		if err != nil {
			return errors.Wrap(err, "hash")
		}
		u.tc.ResizeHash(engine.Clamp(mb, 1, maxHashMB))
	case "paramsfile":
		if val == "" || val == "<empty>" {
			u.params = engine.DefaultParams()
		} else {
			p, err := engine.LoadParams(val)
			if err != nil {
				return err
			}
			u.params = p
		}
		return u.tc.SetParams(u.params)
	case "cutstats":
		u.cutStats = strings.EqualFold(val, "true")
	default:
		return errors.Errorf("unknown option %q", strings.Join(name, " "))
	}
	return nil
}
