package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"sort"
	"time"

	"chess-smp/engine"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
)

func main() {
	fen := flag.String("fen", gm.FENStartPos, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	repeat := flag.Int("repeat", 1, "Repeat perft N times and report aggregate (for steadier timings)")
	label := flag.String("label", "", "Optional label prefix for one-line output")
	check := flag.Bool("check", true, "Cross-check picker counts against goosemg perft")
	cpuProf := flag.String("cpuprofile", "", "Write CPU profile to file during run")
	flag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	board, err := gm.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ParseFEN error: %v\n", err)
		os.Exit(2)
	}
	params := engine.DefaultParams()

	if *divide {
		div := engine.PickerPerftDivide(board, *depth, params)
		var ref map[gm.Move]uint64
		if *check {
			ref = gm.PerftDivide(board, *depth)
		}
		moves := lo.Keys(div)
		sort.Slice(moves, func(i, j int) bool { return engine.UCIMove(moves[i]) < engine.UCIMove(moves[j]) })
		sum := lo.Sum(lo.Values(div))
		for _, m := range moves {
			if ref != nil && ref[m] != div[m] {
				fmt.Printf("%s: %d (movegen %d) MISMATCH\n", engine.UCIMove(m), div[m], ref[m])
				continue
			}
			fmt.Printf("%s: %d\n", engine.UCIMove(m), div[m])
		}
		if ref != nil && len(ref) != len(div) {
			fmt.Printf("root move count %d, movegen %d MISMATCH\n", len(div), len(ref))
		}
		fmt.Printf("Total: %d\n", sum)
		return
	}

	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating cpuprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "start cpu profile: %v\n", err)
			os.Exit(2)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	var totalNodes uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		totalNodes += engine.PickerPerft(board, *depth, params)
	}
	elapsed := time.Since(start)
	nps := uint64(float64(totalNodes) / elapsed.Seconds())

	fmt.Printf("%s \t%d \t\t%s \t\t%s \t%s\n", *label, *depth, humanize.Comma(int64(totalNodes)), elapsed, humanize.Comma(int64(nps)))

	if *check {
		want := gm.Perft(board, *depth) * uint64(*repeat)
		if want != totalNodes {
			fmt.Fprintf(os.Stderr, "picker perft %d != movegen perft %d\n", totalNodes, want)
			os.Exit(1)
		}
	}
}
