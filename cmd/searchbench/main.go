package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"chess-smp/engine"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// benchFENs is the default suite when -fen is empty.
var benchFENs = []string{
	gm.FENStartPos,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
}

func main() {
	depthFlag := flag.Int("depth", 10, "search depth in plies")
	threadsFlag := flag.Int("threads", 1, "worker threads")
	hashFlag := flag.Int("hash", 64, "transposition table size in MB")
	repeatFlag := flag.Int("repeat", 1, "number of passes over the suite")
	fenFlag := flag.String("fen", "", "FEN to search (empty = built-in suite)")
	paramsFlag := flag.String("params", "", "JSON file with search parameters")
	statsFlag := flag.Bool("stats", false, "print cut statistics per position")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	logLevel := flag.String("loglevel", "warn", "zerolog level")
	flag.Parse()

	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *depthFlag <= 0 {
		log.Fatal().Int("depth", *depthFlag).Msg("depth must be positive")
	}

	params := engine.DefaultParams()
	if *paramsFlag != "" {
		p, err := engine.LoadParams(*paramsFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("load params")
		}
		params = p
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
		}()
	}

	fens := benchFENs
	if *fenFlag != "" {
		fens = []string{*fenFlag}
	}

	tt := engine.NewTransTable(*hashFlag)
	tc := engine.NewThreadCoordinator(tt, params)
	if err := tc.Configure(*threadsFlag); err != nil {
		log.Fatal().Err(err).Msg("configure")
	}
	defer tc.Close()

	fmt.Printf("searchbench: positions=%d depth=%d threads=%d hash=%dMB repeat=%d\n",
		len(fens), *depthFlag, *threadsFlag, *hashFlag, *repeatFlag)

	var totalNodes uint64
	startAll := time.Now()
	for r := 0; r < *repeatFlag; r++ {
		for i, fen := range fens {
			board, err := gm.ParseFEN(fen)
			if err != nil {
				log.Fatal().Err(err).Str("fen", fen).Msg("parse fen")
			}
			tc.NewGame()

			iterStart := time.Now()
			if err := tc.StartPrincipal(context.Background(), board, nil, engine.Limits{Depth: *depthFlag}, nil); err != nil {
				log.Fatal().Err(err).Msg("start search")
			}
			res := tc.Wait()
			elapsed := time.Since(iterStart)
			totalNodes += res.Nodes

			fmt.Printf("%2d: bestmove %-5s depth %2d nodes %12s  nps %10s  time=%v\n",
				i+1, engine.UCIMove(res.BestMove), res.Depth,
				humanize.Comma(int64(res.Nodes)), humanize.Comma(int64(nps(res.Nodes, elapsed))), elapsed)
			if *statsFlag {
				res.Stats.Dump(os.Stdout)
			}
		}
	}
	totalElapsed := time.Since(startAll)
	fmt.Printf("total: nodes %s (%s) nps %s time %v\n",
		humanize.Comma(int64(totalNodes)), humanize.SIWithDigits(float64(totalNodes), 2, ""),
		humanize.Comma(int64(nps(totalNodes, totalElapsed))), totalElapsed)

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create memory profile")
		}
		defer f.Close()

		runtime.GC() // get up-to-date heap info
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not write memory profile")
		}
	}
}

func nps(nodes uint64, d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(float64(nodes) / d.Seconds())
}
