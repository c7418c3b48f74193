package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
)

// run executes a command and prints its combined output. Returns exit code.
func run(name string, args ...string) int {
	cmd := exec.Command(name, args...)
	cmd.Env = os.Environ()
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	fmt.Print(out.String())
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode()
	}
	fmt.Fprintf(os.Stderr, "error running %s: %v\n", name, err)
	return 1
}

func main() {
	// Usage: go run ./cmd/benchrun
	fmt.Println("Columns: BENCHMARK  N  ns/op  B/op  allocs/op")
	code := run("go", "test", "./bench", "-run", "^$", "-bench", ".", "-benchmem", "-benchtime=1s")
	if code != 0 {
		os.Exit(code)
	}

	// Picker perft: enumerates the tree through the move picker and checks
	// the counts against the generator.
	fmt.Println("\nPicker Perft:")
	fmt.Println("TEST \t\tDepth \t\tNodes \t\tTime \tNPS")
	failed := false
	for _, depth := range []string{"3", "4", "5"} {
		if run("go", "run", "./cmd/perft", "-depth", depth, "-label", "Initial") != 0 {
			failed = true
		}
	}
	if run("go", "run", "./cmd/perft", "-fen",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"-depth", "3", "-label", "Kiwipete") != 0 {
		failed = true
	}

	// Short lazy-SMP scaling run.
	fmt.Println("\nSearch:")
	for _, threads := range []string{"1", "2", "4"} {
		if run("go", "run", "./cmd/searchbench", "-depth", "8", "-threads", threads) != 0 {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
